package workflow

import "github.com/roomkeeper/roomkeeper/api/pkg/types"

// SimulationSummary is the cached payload of the last run_simulation call,
// carrying derived operator-facing fields alongside the raw
// baseline/simulation/delta metrics.
type SimulationSummary struct {
	Result                      types.SimulationResult `json:"result"`
	BaselineIdleActivationRate  float64                `json:"baseline_idle_activation_rate"`
	SimulatedIdleActivationRate float64                `json:"simulated_idle_activation_rate"`
	AllocationEfficiencyScore   float64                `json:"allocation_efficiency_score"`
	UtilizationDeltaPercentage  float64                `json:"utilization_delta_percentage"`
}

// ApprovalSummary is returned by Approve once the stashed draft has been
// re-run with persistence enabled.
type ApprovalSummary struct {
	Date   string                 `json:"date"`
	Slot   string                 `json:"time_slot"`
	Result types.AllocationResult `json:"result"`
}

// allocationDraft is the exact parameter set stashed by PreviewAllocation so
// Approve can replay it with persist_outputs=true.
type allocationDraft struct {
	date string
	slot string
	cfg  types.AllocationConfig
}
