package allocator

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/types"
	"github.com/rs/zerolog/log"
)

var slotRegex = regexp.MustCompile(`^\d{2}-\d{2}$`)

// Allocator owns the store-backed half of one-shot constrained room
// assignment: loading inputs for a (date, slot) window, delegating to the
// pure Solve function, and persisting outputs when asked.
type Allocator struct {
	store *store.Store
	cfg   config.Allocation
}

// New constructs an Allocator bound to its default configuration.
func New(st *store.Store, cfg config.Allocation) *Allocator {
	return &Allocator{store: st, cfg: cfg}
}

// DefaultConfig returns the types.AllocationConfig derived from the
// Allocator's default configuration, which callers can override field by
// field (e.g. for operator-supplied idle threshold / stakeholder cap).
func (a *Allocator) DefaultConfig() types.AllocationConfig {
	return types.AllocationConfig{
		IdleProbabilityThreshold: a.cfg.IdleProbabilityThreshold,
		StakeholderUsageCap:      a.cfg.StakeholderUsageCap,
		SolverMaxTimeSeconds:     a.cfg.SolverMaxTimeSeconds,
		SolverRandomSeed:         a.cfg.SolverRandomSeed,
		ObjectiveScale:           a.cfg.ObjectiveScale,
		CPSATWorkers:             a.cfg.CPSATWorkers,
		ForecastHistoryDays:      a.cfg.ForecastHistoryDays,
	}
}

func validateConfig(cfg types.AllocationConfig) error {
	if cfg.IdleProbabilityThreshold < 0 || cfg.IdleProbabilityThreshold > 1 {
		return &ValidationError{Reason: "idle_probability_threshold must be in [0,1]"}
	}
	if cfg.StakeholderUsageCap <= 0 || cfg.StakeholderUsageCap > 1 {
		return &ValidationError{Reason: "stakeholder_usage_cap must be in (0,1]"}
	}
	if cfg.SolverMaxTimeSeconds <= 0 {
		return &ValidationError{Reason: "solver_max_time_seconds must be positive"}
	}
	if cfg.ObjectiveScale <= 0 {
		return &ValidationError{Reason: "objective_scale must be positive"}
	}
	return nil
}

func validateDateSlot(date, slot string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("date %q is not in YYYY-MM-DD format", date)}
	}
	if !slotRegex.MatchString(slot) {
		return &ValidationError{Reason: fmt.Sprintf("time_slot %q does not match HH-HH", slot)}
	}
	return nil
}

// Allocate loads rooms, pending requests, and latest predictions for
// (date, slot) from the store, solves the assignment, and — when
// cfg.PersistOutputs is true — persists the demand forecast, allocation
// logs, and request status transitions in a single transaction.
func (a *Allocator) Allocate(ctx context.Context, date, slot string, cfg types.AllocationConfig) (types.AllocationResult, error) {
	if err := validateDateSlot(date, slot); err != nil {
		return types.AllocationResult{}, err
	}
	if err := validateConfig(cfg); err != nil {
		return types.AllocationResult{}, err
	}

	rooms, err := a.store.ListRooms(ctx)
	if err != nil {
		return types.AllocationResult{}, fmt.Errorf("failed to list rooms: %w", err)
	}
	requests, err := a.store.ListPendingRequestsForSlot(ctx, date, slot)
	if err != nil {
		return types.AllocationResult{}, fmt.Errorf("failed to list pending requests: %w", err)
	}
	predictions, err := a.store.GetLatestPredictionsForSlot(ctx, date, slot)
	if err != nil {
		return types.AllocationResult{}, fmt.Errorf("failed to load predictions: %w", err)
	}

	result, err := Solve(rooms, requests, predictions, cfg)
	if err != nil {
		return types.AllocationResult{}, err
	}

	forecastRows, err := a.computeDemandForecast(ctx, date)
	if err != nil {
		return types.AllocationResult{}, fmt.Errorf("failed to compute demand forecast: %w", err)
	}

	if cfg.PersistOutputs {
		if err := a.store.PersistAllocationOutputs(ctx, forecastRows, result.Decisions, time.Now().UTC()); err != nil {
			return types.AllocationResult{}, fmt.Errorf("failed to persist allocation outputs: %w", err)
		}
	}

	return result, nil
}

// computeDemandForecast computes, for each slot appearing in historical
// Requests over the last forecast_history_days, the historical_count and
// demand_intensity_score, a side output alongside the allocation decisions.
func (a *Allocator) computeDemandForecast(ctx context.Context, date string) ([]types.DemandForecast, error) {
	windowStart, err := dateMinusDays(date, a.cfg.ForecastHistoryDays)
	if err != nil {
		return nil, err
	}
	requests, err := a.store.ListRequestsSince(ctx, windowStart)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	maxCount := 0
	for _, r := range requests {
		counts[r.RequestedTimeSlot]++
		if counts[r.RequestedTimeSlot] > maxCount {
			maxCount = counts[r.RequestedTimeSlot]
		}
	}

	rows := make([]types.DemandForecast, 0, len(counts))
	for slot, count := range counts {
		intensity := 0.0
		if maxCount > 0 {
			intensity = float64(count) / float64(maxCount)
		}
		rows = append(rows, types.DemandForecast{
			TimeSlot:             slot,
			HistoricalCount:      count,
			DemandIntensityScore: intensity,
		})
	}
	return rows, nil
}

func dateMinusDays(date string, days int) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t.AddDate(0, 0, -days).Format("2006-01-02"), nil
}

// Solve is the pure constrained-assignment core: no store access, no
// persistence. It is shared between Allocator.Allocate and the Simulator so
// both run byte-for-byte the same solve logic.
func Solve(rooms []types.Room, requests []types.Request, predictions map[int64]types.IdlePrediction, cfg types.AllocationConfig) (types.AllocationResult, error) {
	if err := validateConfig(cfg); err != nil {
		return types.AllocationResult{}, err
	}

	var candidates []candidate
	for _, req := range requests {
		for _, room := range rooms {
			pred, ok := predictions[room.RoomID]
			idle := 0.0
			if ok {
				idle = pred.IdleProbability
			}
			if idle <= cfg.IdleProbabilityThreshold {
				continue
			}
			if room.Capacity < req.RequestedCapacity {
				continue
			}
			score := int64(math.Round(idle * req.PriorityWeight * float64(cfg.ObjectiveScale)))
			candidates = append(candidates, candidate{
				roomID:         room.RoomID,
				requestID:      req.RequestID,
				stakeholderID:  req.StakeholderID,
				priorityWeight: req.PriorityWeight,
				score:          score,
			})
		}
	}

	capScaled := int64(math.Round(cfg.StakeholderUsageCap * float64(cfg.ObjectiveScale)))
	capCfg := stakeholderCapConfig{
		objectiveScale: cfg.ObjectiveScale,
		capScaled:      capScaled,
		maxNodes:       solverNodeBudget(cfg.SolverMaxTimeSeconds),
		randomSeed:     cfg.SolverRandomSeed,
	}

	var s solver
	switch {
	case cfg.CPSATWorkers > 0:
		s = exactSolver{}
	case cfg.CPSATWorkers == 0:
		s = greedySolver{}
	default:
		// A negative worker count is the explicit "no exact solver, and the
		// deterministic fallback is disabled too" sentinel.
		return types.AllocationResult{}, ErrSolverUnavailable
	}

	out := s.solve(candidates, len(requests), capCfg)
	if out.status == statusInfeasible {
		log.Warn().Msg("allocator solver returned infeasible, returning empty allocation")
		return emptyResult(requests), nil
	}

	decisions := make([]types.AllocationDecision, 0, len(out.selected))
	assignedRequests := map[int64]bool{}
	for _, c := range out.selected {
		decisions = append(decisions, types.AllocationDecision{
			RequestID:      c.requestID,
			RoomID:         c.roomID,
			StakeholderID:  c.stakeholderID,
			PriorityWeight: c.priorityWeight,
			Score:          float64(c.score) / float64(cfg.ObjectiveScale),
		})
		assignedRequests[c.requestID] = true
	}

	var unassigned []int64
	for _, req := range requests {
		if !assignedRequests[req.RequestID] {
			unassigned = append(unassigned, req.RequestID)
		}
	}

	return types.AllocationResult{
		Decisions:            decisions,
		UnassignedRequestIDs: unassigned,
		ObjectiveValue:       float64(out.objective) / float64(cfg.ObjectiveScale),
		FairnessMetric:       JainsFairnessIndex(decisions, requests),
	}, nil
}

func emptyResult(requests []types.Request) types.AllocationResult {
	unassigned := make([]int64, 0, len(requests))
	for _, r := range requests {
		unassigned = append(unassigned, r.RequestID)
	}
	return types.AllocationResult{
		Decisions:            nil,
		UnassignedRequestIDs: unassigned,
		ObjectiveValue:       0,
		FairnessMetric:       0,
	}
}

// solverNodeBudget translates the configured wall-clock budget into a
// deterministic search-node budget for the exact solver, since this pure-Go
// implementation has no native CP-SAT timer to delegate to.
func solverNodeBudget(maxTimeSeconds float64) int {
	nodes := int(maxTimeSeconds * 20000)
	if nodes < 2000 {
		nodes = 2000
	}
	if nodes > 2_000_000 {
		nodes = 2_000_000
	}
	return nodes
}
