package predictor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/roomkeeper/roomkeeper/api/pkg/config"
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

func defaultTestConfig() config.Prediction {
	return config.Prediction{
		TimeSlotRegex:               `^\d{2}-\d{2}$`,
		RollingWindowDays:           7,
		DefaultOccupancyProbability: 0.5,
		MinTrainingRows:             10,
		ModelMaxIter:                100,
		RandomState:                 42,
		ModelVersion:                "logreg-v1-test",
	}
}

func seedBookingHistory(t *testing.T, st *store.Store, roomID int64, roomType string) {
	t.Helper()
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: roomID, Capacity: 8, RoomType: roomType})
	require.NoError(t, err)

	var records []types.BookingRecord
	dates := []string{
		"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04", "2026-01-05",
		"2026-01-06", "2026-01-07", "2026-01-08", "2026-01-09", "2026-01-10",
		"2026-01-11", "2026-01-12",
	}
	for i, d := range dates {
		occupied := i % 2
		records = append(records, types.BookingRecord{
			RoomID: roomID, Date: d, Slot: "09-11", Occupied: occupied, RoomType: roomType,
		})
	}
	require.NoError(t, st.CreateBookingRecords(ctx, records))
}

func TestPredict_BeforeTrain_ErrModelNotReady(t *testing.T) {
	st := newTestStore(t)
	seedBookingHistory(t, st, 1, "meeting")
	p := New(st, defaultTestConfig())

	_, err := p.Predict(context.Background(), 1, "2026-01-13", "09-11", false)
	require.ErrorIs(t, err, ErrModelNotReady)
}

func TestTrain_InsufficientRows(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 8, RoomType: "meeting"})
	require.NoError(t, err)
	require.NoError(t, st.CreateBookingRecords(ctx, []types.BookingRecord{
		{RoomID: 1, Date: "2026-01-01", Slot: "09-11", Occupied: 1, RoomType: "meeting"},
	}))

	p := New(st, defaultTestConfig())
	err = p.Train(ctx)
	require.ErrorIs(t, err, ErrModelNotReady)
}

func TestTrainAndPredict(t *testing.T) {
	st := newTestStore(t)
	seedBookingHistory(t, st, 1, "meeting")
	p := New(st, defaultTestConfig())

	require.NoError(t, p.Train(context.Background()))
	require.True(t, p.IsReady())

	result, err := p.Predict(context.Background(), 1, "2026-01-13", "09-11", false)
	require.NoError(t, err)
	require.GreaterOrEqual(t, result.IdleProbability, 0.0)
	require.LessOrEqual(t, result.IdleProbability, 1.0)
	require.GreaterOrEqual(t, result.Confidence, 0.0)
	require.LessOrEqual(t, result.Confidence, 1.0)

	meta, ok, err := st.GetModelMetadata(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "logreg-v1-test", meta.ModelVersion)
}

func TestTrain_SingleClassFallsBackToConstantModel(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	_, err := st.CreateRoom(ctx, types.Room{RoomID: 1, Capacity: 8, RoomType: "meeting"})
	require.NoError(t, err)

	var records []types.BookingRecord
	for i := 0; i < 15; i++ {
		records = append(records, types.BookingRecord{
			RoomID: 1, Date: fmt.Sprintf("2026-01-%02d", i+1), Slot: "09-11", Occupied: 1, RoomType: "meeting",
		})
	}
	require.NoError(t, st.CreateBookingRecords(ctx, records))

	p := New(st, defaultTestConfig())
	require.NoError(t, p.Train(ctx))

	result, err := p.Predict(ctx, 1, "2026-02-01", "09-11", false)
	require.NoError(t, err)
	require.Equal(t, 0.0, result.IdleProbability, "all-occupied history should predict idle probability 0")
}

func TestPredict_RoomNotFound(t *testing.T) {
	st := newTestStore(t)
	seedBookingHistory(t, st, 1, "meeting")
	p := New(st, defaultTestConfig())
	require.NoError(t, p.Train(context.Background()))

	_, err := p.Predict(context.Background(), 999, "2026-01-13", "09-11", false)
	require.ErrorIs(t, err, ErrRoomNotFound)
}

func TestPredict_ValidationErrors(t *testing.T) {
	st := newTestStore(t)
	seedBookingHistory(t, st, 1, "meeting")
	p := New(st, defaultTestConfig())
	require.NoError(t, p.Train(context.Background()))

	cases := []struct {
		name   string
		roomID int64
		date   string
		slot   string
	}{
		{"non-positive room id", 0, "2026-01-13", "09-11"},
		{"malformed date", 1, "01-13-2026", "09-11"},
		{"malformed slot", 1, "2026-01-13", "9-11"},
		{"start after end", 1, "2026-01-13", "11-09"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Predict(context.Background(), tc.roomID, tc.date, tc.slot, false)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected a ValidationError, got %v", err)
		})
	}
}

func TestPredict_PersistAppendsAuditRow(t *testing.T) {
	st := newTestStore(t)
	seedBookingHistory(t, st, 1, "meeting")
	p := New(st, defaultTestConfig())
	require.NoError(t, p.Train(context.Background()))

	before, err := st.CountPredictions(context.Background())
	require.NoError(t, err)

	_, err = p.Predict(context.Background(), 1, "2026-01-13", "09-11", true)
	require.NoError(t, err)

	after, err := st.CountPredictions(context.Background())
	require.NoError(t, err)
	require.Equal(t, before+1, after)
}
