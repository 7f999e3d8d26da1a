package server

import (
	"errors"
	"net/http"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

var errNoMetricsYet = errors.New("no run_simulation metrics have been recorded yet")

// scenarioConstraintsDTO mirrors types.ScenarioConstraints over the wire.
type scenarioConstraintsDTO struct {
	IdleThreshold      *float64       `json:"idle_threshold,omitempty"`
	StakeholderCap     *float64       `json:"stakeholder_cap,omitempty"`
	CapacityOverride   map[int64]int  `json:"capacity_override,omitempty"`
	PriorityAdjustment map[string]float64 `json:"priority_adjustment,omitempty"`
}

// stakeholderWeightDTO is a single (stakeholder, multiplier) override,
// folded into the scenario's priority_adjustment map.
type stakeholderWeightDTO struct {
	StakeholderID string  `json:"stakeholder_id"`
	Multiplier    float64 `json:"multiplier"`
}

// simulateRequest is the body of POST /simulate. idle_probability_threshold
// and stakeholder_usage_cap are flat convenience overrides that, when
// present, take precedence over the matching field nested inside
// temporary_constraints.
type simulateRequest struct {
	TemporaryConstraints      *scenarioConstraintsDTO `json:"temporary_constraints,omitempty"`
	StakeholderPriorityWeight *stakeholderWeightDTO   `json:"stakeholder_priority_weight,omitempty"`
	IdleProbabilityThreshold  *float64                `json:"idle_probability_threshold,omitempty"`
	StakeholderUsageCap       *float64                `json:"stakeholder_usage_cap,omitempty"`
}

func (req simulateRequest) toScenarioConstraints() types.ScenarioConstraints {
	var constraints types.ScenarioConstraints
	if req.TemporaryConstraints != nil {
		constraints.IdleThreshold = req.TemporaryConstraints.IdleThreshold
		constraints.StakeholderCap = req.TemporaryConstraints.StakeholderCap
		constraints.CapacityOverride = req.TemporaryConstraints.CapacityOverride
		constraints.PriorityAdjustment = req.TemporaryConstraints.PriorityAdjustment
	}
	if req.IdleProbabilityThreshold != nil {
		constraints.IdleThreshold = req.IdleProbabilityThreshold
	}
	if req.StakeholderUsageCap != nil {
		constraints.StakeholderCap = req.StakeholderUsageCap
	}
	if req.StakeholderPriorityWeight != nil {
		if constraints.PriorityAdjustment == nil {
			constraints.PriorityAdjustment = map[string]float64{}
		}
		constraints.PriorityAdjustment[req.StakeholderPriorityWeight.StakeholderID] = req.StakeholderPriorityWeight.Multiplier
	}
	return constraints
}

// simulateHandler godoc
// @Summary     Run a non-destructive baseline-versus-scenario comparison
// @Description Never writes to the store; returns baseline, simulation, and delta metrics
// @Router      /simulate [post]
// @Security    BearerAuth
func (s *Server) simulateHandler(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrResponse(w, err, http.StatusBadRequest)
		return
	}

	summary, err := s.workflow.RunSimulation(r.Context(), req.toScenarioConstraints())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary.Result)
}

// metricsHandler godoc
// @Summary     Return the most recently cached run_simulation payload
// @Router      /metrics [get]
// @Security    BearerAuth
func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	summary, ok := s.workflow.LastMetrics()
	if !ok {
		writeErrResponse(w, errNoMetricsYet, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
