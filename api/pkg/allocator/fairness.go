package allocator

import "github.com/roomkeeper/roomkeeper/api/pkg/types"

// JainsFairnessIndex computes Jain's fairness index over the per-stakeholder
// allocation counts for every stakeholder present in allRequests (including
// those that received zero allocations). Returns 0 when there are no
// allocations or no stakeholders. Exported so the simulator can compute the
// same index over a combined, cross-window decision set.
func JainsFairnessIndex(decisions []types.AllocationDecision, allRequests []types.Request) float64 {
	if len(decisions) == 0 || len(allRequests) == 0 {
		return 0
	}

	stakeholders := map[string]struct{}{}
	for _, r := range allRequests {
		stakeholders[r.StakeholderID] = struct{}{}
	}
	if len(stakeholders) == 0 {
		return 0
	}

	counts := make(map[string]int, len(stakeholders))
	for s := range stakeholders {
		counts[s] = 0
	}
	for _, d := range decisions {
		counts[d.StakeholderID]++
	}

	var sum, sumSquares float64
	for _, c := range counts {
		sum += float64(c)
		sumSquares += float64(c) * float64(c)
	}
	if sumSquares == 0 {
		return 0
	}
	n := float64(len(counts))
	return (sum * sum) / (n * sumSquares)
}
