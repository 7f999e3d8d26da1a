package simulator

import (
	"context"
	"fmt"
	"sort"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

// slotKey identifies one pending (date, time_slot) window.
type slotKey struct {
	date string
	slot string
}

// scenarioDataset is an in-memory, deep-copyable snapshot of everything the
// Allocator needs across every pending window: rooms, requests grouped by
// window, and the latest idle prediction per room per window. Deep-copying
// this before mutating it for a scenario run is what keeps simulation
// non-destructive: no slice or map is ever shared between baseline and
// scenario runs.
type scenarioDataset struct {
	rooms       []types.Room
	windows     map[slotKey][]types.Request
	predictions map[slotKey]map[int64]types.IdlePrediction
}

// sortedWindows returns the dataset's (date, slot) windows in deterministic
// ascending order, so repeated runs over the same dataset always execute
// windows in the same sequence.
func (d *scenarioDataset) sortedWindows() []slotKey {
	keys := make([]slotKey, 0, len(d.windows))
	for k := range d.windows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].slot < keys[j].slot
	})
	return keys
}

// clone deep-copies the dataset so a scenario run can apply temporary
// constraints without any mutation leaking back into the baseline, or into
// the persisted store.
func (d *scenarioDataset) clone() *scenarioDataset {
	out := &scenarioDataset{
		rooms:       make([]types.Room, len(d.rooms)),
		windows:     make(map[slotKey][]types.Request, len(d.windows)),
		predictions: make(map[slotKey]map[int64]types.IdlePrediction, len(d.predictions)),
	}
	copy(out.rooms, d.rooms)
	for k, reqs := range d.windows {
		cp := make([]types.Request, len(reqs))
		copy(cp, reqs)
		out.windows[k] = cp
	}
	for k, preds := range d.predictions {
		cp := make(map[int64]types.IdlePrediction, len(preds))
		for roomID, p := range preds {
			cp[roomID] = p
		}
		out.predictions[k] = cp
	}
	return out
}

// roomsSource is the subset of the store the dataset loader needs.
type roomsSource interface {
	ListRooms(ctx context.Context) ([]types.Room, error)
	ListAllPendingRequests(ctx context.Context) ([]types.Request, error)
	GetLatestPredictionsForSlot(ctx context.Context, date, slot string) (map[int64]types.IdlePrediction, error)
}

// gapFiller is the subset of the Predictor the dataset loader needs to fill
// in a missing (room, date, slot) prediction without persisting it.
type gapFiller interface {
	Predict(ctx context.Context, roomID int64, date, slot string, persist bool) (types.PredictionResult, error)
}

// loadDataset lists all rooms, groups every PENDING request by (date, slot),
// and for each window resolves the latest idle prediction per room — calling
// the Predictor (without persisting) to fill any gap, and falling back to
// 1-defaultOccupancyProbability if inference itself fails.
func loadDataset(ctx context.Context, st roomsSource, pred gapFiller, defaultOccupancyProbability float64) (*scenarioDataset, error) {
	rooms, err := st.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	requests, err := st.ListAllPendingRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}

	windows := map[slotKey][]types.Request{}
	for _, req := range requests {
		k := slotKey{date: req.RequestedDate, slot: req.RequestedTimeSlot}
		windows[k] = append(windows[k], req)
	}

	predictions := make(map[slotKey]map[int64]types.IdlePrediction, len(windows))
	for k := range windows {
		stored, err := st.GetLatestPredictionsForSlot(ctx, k.date, k.slot)
		if err != nil {
			return nil, fmt.Errorf("failed to load predictions for %s/%s: %w", k.date, k.slot, err)
		}
		slotPreds := make(map[int64]types.IdlePrediction, len(rooms))
		for roomID, p := range stored {
			slotPreds[roomID] = p
		}
		for _, room := range rooms {
			if _, ok := slotPreds[room.RoomID]; ok {
				continue
			}
			idle := 1 - defaultOccupancyProbability
			result, err := pred.Predict(ctx, room.RoomID, k.date, k.slot, false)
			if err == nil {
				idle = result.IdleProbability
			}
			slotPreds[room.RoomID] = types.IdlePrediction{
				RoomID:          room.RoomID,
				Date:            k.date,
				Slot:            k.slot,
				IdleProbability: idle,
			}
		}
		predictions[k] = slotPreds
	}

	return &scenarioDataset{rooms: rooms, windows: windows, predictions: predictions}, nil
}
