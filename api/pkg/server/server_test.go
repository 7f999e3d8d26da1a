package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/roomkeeper/roomkeeper/api/pkg/allocator"
	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/simulator"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"github.com/roomkeeper/roomkeeper/api/pkg/workflow"
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

func newTestServer(t *testing.T, st *store.Store, adminToken string) *Server {
	t.Helper()
	predCfg := config.Prediction{
		TimeSlotRegex:               `^\d{2}-\d{2}$`,
		RollingWindowDays:           7,
		DefaultOccupancyProbability: 0.5,
		MinTrainingRows:             1,
		ModelMaxIter:                100,
		RandomState:                 42,
		ModelVersion:                "logreg-v1-test",
	}
	allocCfg := config.Allocation{
		IdleProbabilityThreshold: 0.4,
		StakeholderUsageCap:      0.6,
		SolverMaxTimeSeconds:     1,
		ObjectiveScale:           1000,
		CPSATWorkers:             0,
		ForecastHistoryDays:      30,
	}

	pred := predictor.New(st, predCfg)
	alloc := allocator.New(st, allocCfg)
	sim := simulator.New(st, pred, allocCfg, predCfg, config.Simulation{CPSATWorkers: 0})
	wf := workflow.New(st, pred, alloc, sim)

	srv, err := NewServer(config.App{Port: 8080}, config.Auth{AdminToken: adminToken}, st, pred, alloc, sim, wf)
	require.NoError(t, err)
	return srv
}

func doRequest(srv *Server, method, path string, body interface{}, bearer string) *httptest.ResponseRecorder {
	var r *http.Request
	if body != nil {
		buf, _ := json.Marshal(body)
		r = httptest.NewRequest(method, path, bytes.NewReader(buf))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		r.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, r)
	return rec
}

func TestGuardedRoute_RequiresAuthWhenTokenConfigured(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "s3cret")

	rec := doRequest(srv, http.MethodGet, "/demo_context", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGuardedRoute_AcceptsRawAdminToken(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "s3cret")

	rec := doRequest(srv, http.MethodGet, "/demo_context", nil, "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardedRoute_OpenWhenNoAdminTokenConfigured(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "")

	rec := doRequest(srv, http.MethodGet, "/demo_context", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_IssuesSessionTokenUsableOnGuardedRoute(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "s3cret")

	loginRec := doRequest(srv, http.MethodPost, "/login", loginRequest{AdminToken: "s3cret"}, "")
	require.Equal(t, http.StatusOK, loginRec.Code)

	var loginResp loginResponse
	require.NoError(t, json.Unmarshal(loginRec.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.AccessToken)

	rec := doRequest(srv, http.MethodGet, "/demo_context", nil, loginResp.AccessToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_RejectsWrongAdminToken(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "s3cret")

	rec := doRequest(srv, http.MethodPost, "/login", loginRequest{AdminToken: "wrong"}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPredictAvailability_ModelNotReadyIsServiceUnavailable(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)

	srv := newTestServer(t, st, "")
	rec := doRequest(srv, http.MethodPost, "/predict_availability", predictAvailabilityRequest{
		RoomID: 1, Date: "2026-02-02", TimeSlot: "09-11",
	}, "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPredictAvailability_RoomNotFoundIs404(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)
	require.NoError(t, st.CreateBookingRecords(ctx, []types.BookingRecord{
		{RoomID: 1, Date: "2026-01-01", Slot: "09-11", Occupied: 0, RoomType: "meeting"},
	}))

	srv := newTestServer(t, st, "")
	require.NoError(t, srv.predictor.Train(ctx))

	rec := doRequest(srv, http.MethodPost, "/predict_availability", predictAvailabilityRequest{
		RoomID: 999, Date: "2026-02-02", TimeSlot: "09-11",
	}, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPredictAvailability_MalformedBodyIs400(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "")

	r := httptest.NewRequest(http.MethodPost, "/predict_availability", bytes.NewReader([]byte(`{"room_id": "not-a-number"}`)))
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, r)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeAllocation_FillsGapsAndPersists(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)
	require.NoError(t, st.CreateBookingRecords(ctx, []types.BookingRecord{
		{RoomID: 1, Date: "2026-01-01", Slot: "09-11", Occupied: 0, RoomType: "meeting"},
	}))
	_, err = st.CreateRequest(ctx, types.Request{RequestedCapacity: 2, RequestedDate: "2026-02-02", RequestedTimeSlot: "09-11", PriorityWeight: 1.0, StakeholderID: "dept-a"})
	require.NoError(t, err)

	srv := newTestServer(t, st, "")
	require.NoError(t, srv.predictor.Train(ctx))

	rec := doRequest(srv, http.MethodPost, "/optimize_allocation", optimizeAllocationRequest{
		RequestedDate: "2026-02-02", RequestedTimeSlot: "09-11",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	count, err := st.CountPredictions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "optimize_allocation must fill the missing prediction before solving")
}

func TestWorkflowApprove_WithoutPreviewIs400(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "")

	rec := doRequest(srv, http.MethodPost, "/approve", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWorkflowAllocateThenApprove_PersistsResult(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)
	_, err = st.CreatePrediction(ctx, types.IdlePrediction{RoomID: 1, Date: "2026-02-02", Slot: "09-11", IdleProbability: 0.9})
	require.NoError(t, err)
	_, err = st.CreateRequest(ctx, types.Request{RequestedCapacity: 2, RequestedDate: "2026-02-02", RequestedTimeSlot: "09-11", PriorityWeight: 1.0, StakeholderID: "dept-a"})
	require.NoError(t, err)

	srv := newTestServer(t, st, "")

	previewRec := doRequest(srv, http.MethodPost, "/allocate", workflowAllocateRequest{
		Date: "2026-02-02", TimeSlot: "09-11",
	}, "")
	require.Equal(t, http.StatusOK, previewRec.Code)

	logsBefore, err := st.CountAllocationLogs(ctx)
	require.NoError(t, err)
	require.Zero(t, logsBefore)

	approveRec := doRequest(srv, http.MethodPost, "/approve", nil, "")
	require.Equal(t, http.StatusOK, approveRec.Code)

	logsAfter, err := st.CountAllocationLogs(ctx)
	require.NoError(t, err)
	require.Greater(t, logsAfter, int64(0))
}

func TestMetrics_404BeforeAnySimulation(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "")

	rec := doRequest(srv, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_ReflectsLastSimulateCall(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)

	srv := newTestServer(t, st, "")

	simRec := doRequest(srv, http.MethodPost, "/simulate", simulateRequest{}, "")
	require.Equal(t, http.StatusOK, simRec.Code)

	rec := doRequest(srv, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSimulate_InvalidIdleThresholdIs400(t *testing.T) {
	st := newTestStore(t)
	srv := newTestServer(t, st, "")

	bad := 2.0
	rec := doRequest(srv, http.MethodPost, "/simulate", simulateRequest{IdleProbabilityThreshold: &bad}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDemoContext_ReportsModelReadyAndRooms(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 4, RoomType: "meeting"})
	require.NoError(t, err)

	srv := newTestServer(t, st, "")

	rec := doRequest(srv, http.MethodGet, "/demo_context", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp demoContextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.ModelReady)
}
