package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/roomkeeper/roomkeeper/api/pkg/allocator"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/simulator"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

// Workflow is the thin operator-facing coordinator: predict,
// preview_allocation, run_simulation, approve. It holds no business logic
// of its own beyond sequencing calls into the Predictor, Allocator, and
// Simulator, and guarding its own draft/metrics slots.
//
// Concurrent preview_allocation/approve access is serialised through a
// single coarse mutex rather than per-field locks.
type Workflow struct {
	store     *store.Store
	predictor *predictor.Predictor
	allocator *allocator.Allocator
	simulator *simulator.Simulator

	mu      sync.Mutex
	draft   *allocationDraft
	metrics *SimulationSummary
}

// New wires a Workflow to its four collaborators.
func New(st *store.Store, pred *predictor.Predictor, alloc *allocator.Allocator, sim *simulator.Simulator) *Workflow {
	return &Workflow{store: st, predictor: pred, allocator: alloc, simulator: sim}
}

// Predict returns the Predictor's output for each of roomIDs (or every room,
// if roomIDs is empty), persisting each prediction.
func (w *Workflow) Predict(ctx context.Context, date, slot string, roomIDs []int64) ([]types.PredictionResult, error) {
	ids := roomIDs
	if len(ids) == 0 {
		rooms, err := w.store.ListRooms(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list rooms: %w", err)
		}
		ids = make([]int64, 0, len(rooms))
		for _, r := range rooms {
			ids = append(ids, r.RoomID)
		}
	}

	results := make([]types.PredictionResult, 0, len(ids))
	for _, roomID := range ids {
		result, err := w.predictor.Predict(ctx, roomID, date, slot, true)
		if err != nil {
			return nil, fmt.Errorf("failed to predict room %d: %w", roomID, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// PreviewAllocation invokes the Allocator with persistence disabled, and
// stashes the exact parameters used as the single in-memory draft that
// Approve later replays.
func (w *Workflow) PreviewAllocation(ctx context.Context, date, slot string, idle, stakeholderCap *float64) (types.AllocationResult, error) {
	cfg := w.allocator.DefaultConfig()
	if idle != nil {
		cfg.IdleProbabilityThreshold = *idle
	}
	if stakeholderCap != nil {
		cfg.StakeholderUsageCap = *stakeholderCap
	}
	cfg.PersistOutputs = false

	result, err := w.allocator.Allocate(ctx, date, slot, cfg)
	if err != nil {
		return types.AllocationResult{}, err
	}

	w.mu.Lock()
	w.draft = &allocationDraft{date: date, slot: slot, cfg: cfg}
	w.mu.Unlock()

	return result, nil
}

// RunSimulation forwards to the Simulator and caches the derived metrics
// payload for later retrieval.
func (w *Workflow) RunSimulation(ctx context.Context, constraints types.ScenarioConstraints) (SimulationSummary, error) {
	result, err := w.simulator.Run(ctx, constraints)
	if err != nil {
		return SimulationSummary{}, err
	}

	summary := SimulationSummary{
		Result:                      result,
		BaselineIdleActivationRate:  result.Baseline.UtilizationRate,
		SimulatedIdleActivationRate: result.Simulation.UtilizationRate,
		AllocationEfficiencyScore:   result.Simulation.ObjectiveValue,
		UtilizationDeltaPercentage:  result.Delta.UtilizationChange * 100,
	}

	w.mu.Lock()
	w.metrics = &summary
	w.mu.Unlock()

	return summary, nil
}

// Approve requires a stashed draft from PreviewAllocation, re-runs the
// Allocator with the draft's exact parameters and persistence enabled, and
// clears the draft. Fails with ErrDraftNotFound if no draft exists.
func (w *Workflow) Approve(ctx context.Context) (ApprovalSummary, error) {
	w.mu.Lock()
	draft := w.draft
	w.mu.Unlock()

	if draft == nil {
		return ApprovalSummary{}, ErrDraftNotFound
	}

	cfg := draft.cfg
	cfg.PersistOutputs = true

	result, err := w.allocator.Allocate(ctx, draft.date, draft.slot, cfg)
	if err != nil {
		return ApprovalSummary{}, err
	}

	w.mu.Lock()
	w.draft = nil
	w.mu.Unlock()

	return ApprovalSummary{Date: draft.date, Slot: draft.slot, Result: result}, nil
}

// LastMetrics returns the most recently cached run_simulation payload, if
// any.
func (w *Workflow) LastMetrics() (SimulationSummary, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.metrics == nil {
		return SimulationSummary{}, false
	}
	return *w.metrics, true
}
