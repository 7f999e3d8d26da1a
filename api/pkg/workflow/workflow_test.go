package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/roomkeeper/roomkeeper/api/pkg/allocator"
	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/simulator"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roomkeeper.db")
	st, err := store.New(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testPredictionConfig() config.Prediction {
	return config.Prediction{
		TimeSlotRegex:               `^\d{2}-\d{2}$`,
		RollingWindowDays:           7,
		DefaultOccupancyProbability: 0.5,
		MinTrainingRows:             1,
		ModelMaxIter:                100,
		RandomState:                 42,
		ModelVersion:                "logreg-v1-test",
	}
}

func testAllocationConfig() config.Allocation {
	return config.Allocation{
		IdleProbabilityThreshold: 0.4,
		StakeholderUsageCap:      0.6,
		SolverMaxTimeSeconds:     1,
		ObjectiveScale:           1000,
		CPSATWorkers:             0,
		ForecastHistoryDays:      30,
	}
}

func newTestWorkflow(t *testing.T, st *store.Store) *Workflow {
	t.Helper()
	w, _ := newTestWorkflowWithPredictor(t, st)
	return w
}

func newTestWorkflowWithPredictor(t *testing.T, st *store.Store) (*Workflow, *predictor.Predictor) {
	t.Helper()
	pred := predictor.New(st, testPredictionConfig())
	alloc := allocator.New(st, testAllocationConfig())
	sim := simulator.New(st, pred, testAllocationConfig(), testPredictionConfig(), config.Simulation{CPSATWorkers: 0})
	return New(st, pred, alloc, sim), pred
}

func seedRoomAndRequest(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)
	_, err = st.CreatePrediction(ctx, types.IdlePrediction{RoomID: 1, Date: "2026-02-02", Slot: "09-11", IdleProbability: 0.9})
	require.NoError(t, err)
	_, err = st.CreateRequest(ctx, types.Request{RequestedCapacity: 2, RequestedDate: "2026-02-02", RequestedTimeSlot: "09-11", PriorityWeight: 1.0, StakeholderID: "dept-a"})
	require.NoError(t, err)
}

func TestPredict_DefaultsToAllRooms(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)
	_, err = st.CreateRoom(ctx, types.Room{RoomID: 2, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)
	require.NoError(t, st.CreateBookingRecords(ctx, []types.BookingRecord{
		{RoomID: 1, Date: "2026-01-01", Slot: "09-11", Occupied: 0, RoomType: "meeting"},
	}))

	w, pred := newTestWorkflowWithPredictor(t, st)
	require.NoError(t, pred.Train(ctx))

	results, err := w.Predict(ctx, "2026-02-02", "09-11", nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestPredict_PersistsEachPrediction(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)
	require.NoError(t, st.CreateBookingRecords(ctx, []types.BookingRecord{
		{RoomID: 1, Date: "2026-01-01", Slot: "09-11", Occupied: 0, RoomType: "meeting"},
	}))

	w, pred := newTestWorkflowWithPredictor(t, st)
	require.NoError(t, pred.Train(ctx))

	before, err := st.CountPredictions(ctx)
	require.NoError(t, err)

	_, err = w.Predict(ctx, "2026-02-02", "09-11", []int64{1})
	require.NoError(t, err)

	after, err := st.CountPredictions(ctx)
	require.NoError(t, err)
	require.Equal(t, before+1, after)
}

func TestApprove_WithoutPriorPreviewReturnsErrDraftNotFound(t *testing.T) {
	st := newTestStore(t)
	w := newTestWorkflow(t, st)

	_, err := w.Approve(context.Background())
	require.True(t, errors.Is(err, ErrDraftNotFound))
}

func TestPreviewAllocation_DoesNotPersist(t *testing.T) {
	st := newTestStore(t)
	seedRoomAndRequest(t, st)
	w := newTestWorkflow(t, st)

	_, err := w.PreviewAllocation(context.Background(), "2026-02-02", "09-11", nil, nil)
	require.NoError(t, err)

	logs, err := st.CountAllocationLogs(context.Background())
	require.NoError(t, err)
	require.Zero(t, logs, "preview_allocation must not persist allocation outputs")
}

func TestApprove_ReplaysStashedDraftAndPersists(t *testing.T) {
	st := newTestStore(t)
	seedRoomAndRequest(t, st)
	w := newTestWorkflow(t, st)

	preview, err := w.PreviewAllocation(context.Background(), "2026-02-02", "09-11", nil, nil)
	require.NoError(t, err)

	approval, err := w.Approve(context.Background())
	require.NoError(t, err)
	require.Equal(t, preview, approval.Result, "approve must re-run the exact parameters stashed by preview_allocation")

	logs, err := st.CountAllocationLogs(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(len(preview.Decisions)), logs)
}

func TestApprove_ClearsDraftAfterSuccess(t *testing.T) {
	st := newTestStore(t)
	seedRoomAndRequest(t, st)
	w := newTestWorkflow(t, st)

	_, err := w.PreviewAllocation(context.Background(), "2026-02-02", "09-11", nil, nil)
	require.NoError(t, err)
	_, err = w.Approve(context.Background())
	require.NoError(t, err)

	_, err = w.Approve(context.Background())
	require.True(t, errors.Is(err, ErrDraftNotFound), "a second approve without a new preview must fail")
}

func TestPreviewAllocation_OverridesTakeEffect(t *testing.T) {
	st := newTestStore(t)
	seedRoomAndRequest(t, st)
	w := newTestWorkflow(t, st)

	veryHigh := 0.99
	result, err := w.PreviewAllocation(context.Background(), "2026-02-02", "09-11", &veryHigh, nil)
	require.NoError(t, err)
	require.Empty(t, result.Decisions, "an idle threshold above the stored prediction must prune every candidate")
}

func TestRunSimulation_CachesLastMetrics(t *testing.T) {
	st := newTestStore(t)
	seedRoomAndRequest(t, st)
	w := newTestWorkflow(t, st)

	_, ok := w.LastMetrics()
	require.False(t, ok)

	summary, err := w.RunSimulation(context.Background(), types.ScenarioConstraints{})
	require.NoError(t, err)

	cached, ok := w.LastMetrics()
	require.True(t, ok)
	require.Equal(t, summary, cached)
}

func TestRunSimulation_DerivedFieldsMatchRawMetrics(t *testing.T) {
	st := newTestStore(t)
	seedRoomAndRequest(t, st)
	w := newTestWorkflow(t, st)

	summary, err := w.RunSimulation(context.Background(), types.ScenarioConstraints{})
	require.NoError(t, err)
	require.Equal(t, summary.Result.Baseline.UtilizationRate, summary.BaselineIdleActivationRate)
	require.Equal(t, summary.Result.Simulation.UtilizationRate, summary.SimulatedIdleActivationRate)
	require.Equal(t, summary.Result.Simulation.ObjectiveValue, summary.AllocationEfficiencyScore)
	require.InDelta(t, summary.Result.Delta.UtilizationChange*100, summary.UtilizationDeltaPercentage, 1e-9)
}
