package allocator

import "sort"

// exactSolver is a branch-and-bound search over the pruned (room, request)
// pairs. It stands in for a CP-SAT style exact solver: exact for the
// problem sizes this system handles (one (date, slot) window; tens of rooms
// and requests), deterministic by construction: a node budget stands in for
// max_time_seconds, and ties in branch order break on room_id / request_id.
// The configured random seed is not used by this search. See DESIGN.md for
// why no vendored CP-SAT binding is used.
type exactSolver struct{}

type requestCandidates struct {
	requestID int64
	options   []candidate // sorted by score desc, then room_id asc
}

func (exactSolver) solve(candidates []candidate, _ int, cfg stakeholderCapConfig) solveOutput {
	if len(candidates) == 0 {
		return solveOutput{status: statusOptimal}
	}

	byRequest := map[int64][]candidate{}
	for _, c := range candidates {
		byRequest[c.requestID] = append(byRequest[c.requestID], c)
	}

	requests := make([]requestCandidates, 0, len(byRequest))
	for reqID, opts := range byRequest {
		sorted := make([]candidate, len(opts))
		copy(sorted, opts)
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].score != sorted[j].score {
				return sorted[i].score > sorted[j].score
			}
			return sorted[i].roomID < sorted[j].roomID
		})
		requests = append(requests, requestCandidates{requestID: reqID, options: sorted})
	}
	// Process requests with the most valuable best-option first: a good
	// branching order finds strong incumbents early, which makes the upper
	// bound prune harder. Ties break on request_id for determinism.
	sort.Slice(requests, func(i, j int) bool {
		bi, bj := requests[i].options[0].score, requests[j].options[0].score
		if bi != bj {
			return bi > bj
		}
		return requests[i].requestID < requests[j].requestID
	})

	suffixBestBound := make([]int64, len(requests)+1)
	for i := len(requests) - 1; i >= 0; i-- {
		suffixBestBound[i] = suffixBestBound[i+1] + requests[i].options[0].score
	}

	search := &branchAndBound{
		requests:  requests,
		suffixMax: suffixBestBound,
		cfg:       cfg,
		maxNodes:  cfg.maxNodes,
	}
	search.usedRooms = map[int64]bool{}
	search.stakeholderCounts = map[string]int64{}

	search.run(0, 0, 0, nil)

	status := statusOptimal
	if len(search.best) == 0 && len(candidates) > 0 {
		status = statusFeasible
	}
	if search.nodes >= search.maxNodes && search.maxNodes > 0 {
		status = statusFeasible
	}

	return solveOutput{status: status, selected: search.best, objective: search.bestObjective}
}

type branchAndBound struct {
	requests  []requestCandidates
	suffixMax []int64
	cfg       stakeholderCapConfig
	maxNodes  int

	nodes             int
	usedRooms         map[int64]bool
	stakeholderCounts map[string]int64
	total             int64

	best          []candidate
	bestObjective int64
}

func (b *branchAndBound) run(idx int, objective int64, total int64, partial []candidate) {
	if b.maxNodes > 0 && b.nodes >= b.maxNodes {
		return
	}
	b.nodes++

	if objective > b.bestObjective || (objective == b.bestObjective && len(partial) > len(b.best)) {
		b.best = append([]candidate(nil), partial...)
		b.bestObjective = objective
	}

	if idx >= len(b.requests) {
		return
	}
	if objective+b.suffixMax[idx] <= b.bestObjective {
		return // can't possibly beat the incumbent from here
	}

	req := b.requests[idx]

	// Branch 1: skip this request entirely.
	b.run(idx+1, objective, total, partial)

	// Branch 2: try each admitted room for this request, in score order.
	for _, opt := range req.options {
		if b.usedRooms[opt.roomID] {
			continue
		}
		nextCount := b.stakeholderCounts[opt.stakeholderID] + 1
		nextTotal := total + 1
		if !capSatisfied(nextCount, nextTotal, b.cfg) {
			continue
		}

		b.usedRooms[opt.roomID] = true
		prevCount := b.stakeholderCounts[opt.stakeholderID]
		b.stakeholderCounts[opt.stakeholderID] = nextCount

		b.run(idx+1, objective+opt.score, nextTotal, append(partial, opt))

		b.stakeholderCounts[opt.stakeholderID] = prevCount
		b.usedRooms[opt.roomID] = false
	}
}
