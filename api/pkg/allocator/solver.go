package allocator

// candidate is one admitted (room, request) pair, surviving the pruning
// rules, carrying its integer-scaled objective coefficient.
type candidate struct {
	roomID        int64
	requestID     int64
	stakeholderID string
	priorityWeight float64
	score         int64 // round(idle_probability * priority_weight * objective_scale)
}

// solverStatus mirrors the status vocabulary a CP-SAT-style solver returns.
type solverStatus int

const (
	statusOptimal solverStatus = iota
	statusFeasible
	statusInfeasible
)

// solveOutput is the raw result of one solver pass, before translation back
// into types.AllocationResult.
type solveOutput struct {
	status    solverStatus
	selected  []candidate
	objective int64 // sum of selected scaled scores
}

// solver is the small capability interface both implementations satisfy.
// Both are deterministic given the same candidates, config, and random seed.
type solver interface {
	solve(candidates []candidate, totalRequests int, cfg stakeholderCapConfig) solveOutput
}

// stakeholderCapConfig carries the integer-scaled stakeholder fairness cap,
// capScaled = round(cap * objectiveScale), which capSatisfied checks in its
// ceiling form, plus the exact solver's node budget and the random seed.
type stakeholderCapConfig struct {
	objectiveScale int64
	capScaled      int64
	maxNodes       int
	randomSeed     int64
}

// capSatisfied reports whether assigning one more pair to stakeholder s
// (bringing its count to nextCount, out of nextTotal total assignments)
// keeps count_allocated(s) <= ceil(stakeholder_usage_cap * nextTotal). A
// plain linear inequality (nextCount*scale <= capScaled*nextTotal) would
// reject even the very first assignment whenever the cap is below 1.0,
// since one assignment out of one total is always 100%; the ceiling gives
// every stakeholder room for at least its fair share rounded up.
func capSatisfied(nextCount, nextTotal int64, cfg stakeholderCapConfig) bool {
	limit := (cfg.capScaled*nextTotal + cfg.objectiveScale - 1) / cfg.objectiveScale
	return nextCount <= limit
}
