package server

import "net/http"

// demoContextResponse is a bootstrap payload for an operator console: the
// room inventory, the last trained model's metadata (if any), whether the
// predictor currently holds a trained model, and the last cached simulation
// metrics (if any).
type demoContextResponse struct {
	Rooms          interface{} `json:"rooms"`
	ModelMetadata  interface{} `json:"model_metadata,omitempty"`
	ModelReady     bool        `json:"model_ready"`
	LastMetrics    interface{} `json:"last_metrics,omitempty"`
}

// demoContextHandler godoc
// @Summary     Bootstrap payload for an operator console
// @Description Rooms, trained-model metadata, and the last cached simulation metrics
// @Router      /demo_context [get]
// @Security    BearerAuth
func (s *Server) demoContextHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		writeErr(w, err)
		return
	}

	resp := demoContextResponse{
		Rooms:      rooms,
		ModelReady: s.predictor.IsReady(),
	}

	if meta, ok, err := s.store.GetModelMetadata(ctx); err == nil && ok {
		resp.ModelMetadata = meta
	}

	if summary, ok := s.workflow.LastMetrics(); ok {
		resp.LastMetrics = summary
	}

	writeJSON(w, http.StatusOK, resp)
}
