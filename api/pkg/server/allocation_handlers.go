package server

import "net/http"

// optimizeAllocationRequest is the body of POST /optimize_allocation.
type optimizeAllocationRequest struct {
	RequestedDate            string   `json:"requested_date"`
	RequestedTimeSlot        string   `json:"requested_time_slot"`
	IdleProbabilityThreshold *float64 `json:"idle_probability_threshold,omitempty"`
	StakeholderUsageCap      *float64 `json:"stakeholder_usage_cap,omitempty"`
}

// optimizeAllocationHandler godoc
// @Summary     Solve and persist an allocation for one (date, slot) window
// @Description Fills in any missing idle-probability predictions first, then solves with persist_outputs=true
// @Router      /optimize_allocation [post]
// @Security    BearerAuth
func (s *Server) optimizeAllocationHandler(w http.ResponseWriter, r *http.Request) {
	var req optimizeAllocationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrResponse(w, err, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	if err := s.ensurePredictionsForSlot(ctx, req.RequestedDate, req.RequestedTimeSlot); err != nil {
		writeErr(w, err)
		return
	}

	cfg := s.allocator.DefaultConfig()
	if req.IdleProbabilityThreshold != nil {
		cfg.IdleProbabilityThreshold = *req.IdleProbabilityThreshold
	}
	if req.StakeholderUsageCap != nil {
		cfg.StakeholderUsageCap = *req.StakeholderUsageCap
	}
	cfg.PersistOutputs = true

	result, err := s.allocator.Allocate(ctx, req.RequestedDate, req.RequestedTimeSlot, cfg)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// workflowAllocateRequest is the body of POST /allocate (the Workflow's
// preview_allocation step: solves without persisting and stashes a draft).
type workflowAllocateRequest struct {
	Date                 string   `json:"date"`
	TimeSlot             string   `json:"time_slot"`
	IdleProbabilityThreshold *float64 `json:"idle_probability_threshold,omitempty"`
	StakeholderUsageCap      *float64 `json:"stakeholder_usage_cap,omitempty"`
}

// workflowAllocateHandler godoc
// @Summary     Preview an allocation without persisting it
// @Description Workflow surface: stashes the exact parameters as a draft for a subsequent /approve
// @Router      /allocate [post]
// @Security    BearerAuth
func (s *Server) workflowAllocateHandler(w http.ResponseWriter, r *http.Request) {
	var req workflowAllocateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrResponse(w, err, http.StatusBadRequest)
		return
	}

	result, err := s.workflow.PreviewAllocation(r.Context(), req.Date, req.TimeSlot, req.IdleProbabilityThreshold, req.StakeholderUsageCap)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// workflowApproveHandler godoc
// @Summary     Approve the last previewed allocation
// @Description Workflow surface: re-runs the Allocator with the draft's exact parameters and persist_outputs=true
// @Router      /approve [post]
// @Security    BearerAuth
func (s *Server) workflowApproveHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.workflow.Approve(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":                      summary.Date,
		"time_slot":                 summary.Slot,
		"approved_allocations_count": len(summary.Result.Decisions),
		"result":                    summary.Result,
	})
}
