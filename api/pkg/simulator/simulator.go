package simulator

import (
	"context"
	"fmt"

	"github.com/roomkeeper/roomkeeper/api/pkg/allocator"
	"github.com/roomkeeper/roomkeeper/api/pkg/config"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

// Simulator runs baseline-versus-scenario comparisons across every pending
// (date, slot) window without ever writing to the store. It shares the
// Allocator's pure Solve function so a simulated run and a persisted run
// apply identical solve semantics.
type Simulator struct {
	store     *store.Store
	predictor *predictor.Predictor
	allocCfg  config.Allocation
	predCfg   config.Prediction
	simCfg    config.Simulation
}

// New constructs a Simulator bound to its own solver configuration,
// independent of the Allocator's.
func New(st *store.Store, pred *predictor.Predictor, allocCfg config.Allocation, predCfg config.Prediction, simCfg config.Simulation) *Simulator {
	return &Simulator{store: st, predictor: pred, allocCfg: allocCfg, predCfg: predCfg, simCfg: simCfg}
}

// Run loads the current dataset, validates the scenario's temporary
// constraints against it, and runs both a baseline pass (no overrides) and a
// scenario pass (overrides applied to a deep copy of the dataset) across
// every pending window, returning both metrics sets and their delta.
func (s *Simulator) Run(ctx context.Context, constraints types.ScenarioConstraints) (types.SimulationResult, error) {
	if err := validateConstraints(constraints); err != nil {
		return types.SimulationResult{}, err
	}

	baseline, err := loadDataset(ctx, s.store, s.predictor, s.predCfg.DefaultOccupancyProbability)
	if err != nil {
		return types.SimulationResult{}, fmt.Errorf("failed to load simulation dataset: %w", err)
	}

	if err := s.validateAgainstDataset(baseline, constraints); err != nil {
		return types.SimulationResult{}, err
	}

	scenario := baseline.clone()
	applyConstraints(scenario, constraints)

	baseCfg := s.baseAllocationConfig()
	scenarioCfg := baseCfg
	if constraints.IdleThreshold != nil {
		scenarioCfg.IdleProbabilityThreshold = *constraints.IdleThreshold
	}
	if constraints.StakeholderCap != nil {
		scenarioCfg.StakeholderUsageCap = *constraints.StakeholderCap
	}

	baselineMetrics, err := s.runScenario(baseline, baseCfg)
	if err != nil {
		return types.SimulationResult{}, fmt.Errorf("failed to run baseline scenario: %w", err)
	}
	scenarioMetrics, err := s.runScenario(scenario, scenarioCfg)
	if err != nil {
		return types.SimulationResult{}, fmt.Errorf("failed to run what-if scenario: %w", err)
	}

	return types.SimulationResult{
		Baseline:   baselineMetrics,
		Simulation: scenarioMetrics,
		Delta:      delta(baselineMetrics, scenarioMetrics),
	}, nil
}

func (s *Simulator) baseAllocationConfig() types.AllocationConfig {
	return types.AllocationConfig{
		IdleProbabilityThreshold: s.allocCfg.IdleProbabilityThreshold,
		StakeholderUsageCap:      s.allocCfg.StakeholderUsageCap,
		SolverMaxTimeSeconds:     s.allocCfg.SolverMaxTimeSeconds,
		SolverRandomSeed:         s.simCfg.SolverRandomSeed,
		ObjectiveScale:           s.allocCfg.ObjectiveScale,
		CPSATWorkers:             s.simCfg.CPSATWorkers,
		ForecastHistoryDays:      s.allocCfg.ForecastHistoryDays,
		PersistOutputs:           false,
	}
}

// runScenario iterates the dataset's pending windows in sorted order,
// invoking allocator.Solve once per window, and aggregates the per-window
// results into one SimulationMetrics value.
func (s *Simulator) runScenario(dataset *scenarioDataset, cfg types.AllocationConfig) (types.SimulationMetrics, error) {
	var (
		objectiveSum     float64
		satisfied        int
		usedRooms        = map[int64]bool{}
		allDecisions     []types.AllocationDecision
		allRequests      []types.Request
		idleProbSum      float64
		idleProbCount    int
	)

	for _, k := range dataset.sortedWindows() {
		requests := dataset.windows[k]
		predictions := dataset.predictions[k]
		allRequests = append(allRequests, requests...)

		result, err := allocator.Solve(dataset.rooms, requests, predictions, cfg)
		if err != nil {
			return types.SimulationMetrics{}, err
		}

		objectiveSum += result.ObjectiveValue
		satisfied += len(result.Decisions)
		allDecisions = append(allDecisions, result.Decisions...)

		for _, d := range result.Decisions {
			usedRooms[d.RoomID] = true
			if pred, ok := predictions[d.RoomID]; ok {
				idleProbSum += pred.IdleProbability
				idleProbCount++
			}
		}
	}

	utilizationRate := 0.0
	if len(dataset.rooms) > 0 {
		utilizationRate = float64(len(usedRooms)) / float64(len(dataset.rooms))
	}
	avgIdle := 0.0
	if idleProbCount > 0 {
		avgIdle = idleProbSum / float64(idleProbCount)
	}

	return types.SimulationMetrics{
		UtilizationRate:                utilizationRate,
		RequestsSatisfied:              satisfied,
		ObjectiveValue:                 objectiveSum,
		TotalRoomsUtilized:             len(usedRooms),
		AverageIdleProbabilityUtilized: avgIdle,
		FairnessMetric:                 allocator.JainsFairnessIndex(allDecisions, allRequests),
	}, nil
}

func delta(baseline, scenario types.SimulationMetrics) types.SimulationDelta {
	return types.SimulationDelta{
		UtilizationChange:            scenario.UtilizationRate - baseline.UtilizationRate,
		RequestsSatisfiedChange:      scenario.RequestsSatisfied - baseline.RequestsSatisfied,
		ObjectiveValueChange:         scenario.ObjectiveValue - baseline.ObjectiveValue,
		TotalRoomsUtilizedChange:     scenario.TotalRoomsUtilized - baseline.TotalRoomsUtilized,
		AverageIdleProbabilityChange: scenario.AverageIdleProbabilityUtilized - baseline.AverageIdleProbabilityUtilized,
		FairnessMetricChange:         scenario.FairnessMetric - baseline.FairnessMetric,
	}
}
