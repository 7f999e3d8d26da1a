package allocator

import "sort"

// greedySolver is the deterministic sort-and-greedy fallback used when no
// exact solver is configured. It produces byte-identical results across
// repeated runs with the same inputs, which falls out of the fixed sort key
// and the absence of any non-deterministic iteration (maps are never ranged
// over for ordering decisions here).
type greedySolver struct{}

func (greedySolver) solve(candidates []candidate, _ int, cfg stakeholderCapConfig) solveOutput {
	ordered := make([]candidate, len(candidates))
	copy(ordered, candidates)

	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		if ordered[i].requestID != ordered[j].requestID {
			return ordered[i].requestID < ordered[j].requestID
		}
		return ordered[i].roomID < ordered[j].roomID
	})

	usedRooms := map[int64]bool{}
	usedRequests := map[int64]bool{}
	stakeholderCounts := map[string]int64{}
	var selected []candidate
	var total int64
	var objective int64

	for _, c := range ordered {
		if usedRooms[c.roomID] || usedRequests[c.requestID] {
			continue
		}
		nextCount := stakeholderCounts[c.stakeholderID] + 1
		nextTotal := total + 1
		if !capSatisfied(nextCount, nextTotal, cfg) {
			continue
		}

		usedRooms[c.roomID] = true
		usedRequests[c.requestID] = true
		stakeholderCounts[c.stakeholderID] = nextCount
		total = nextTotal
		objective += c.score
		selected = append(selected, c)
	}

	status := statusOptimal
	if len(selected) == 0 && len(candidates) > 0 {
		status = statusFeasible
	}
	return solveOutput{status: status, selected: selected, objective: objective}
}
