package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/roomkeeper/roomkeeper/api/pkg/allocator"
	"github.com/roomkeeper/roomkeeper/api/pkg/predictor"
	"github.com/roomkeeper/roomkeeper/api/pkg/simulator"
	"github.com/roomkeeper/roomkeeper/api/pkg/store"
	"github.com/roomkeeper/roomkeeper/api/pkg/workflow"
	"github.com/rs/zerolog/log"
)

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response body")
	}
}

// writeErrResponse writes err as a JSON {"error": "..."} body with status.
func writeErrResponse(w http.ResponseWriter, err error, status int) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// statusForError classifies err against the package sentinel errors and
// validation types so handlers can call writeErrResponse with a consistent
// status, without duplicating the classification at every call site.
func statusForError(err error) int {
	var predictorValidation *predictor.ValidationError
	var allocatorValidation *allocator.ValidationError
	var simulatorValidation *simulator.ValidationError

	switch {
	case errors.As(err, &predictorValidation),
		errors.As(err, &allocatorValidation),
		errors.As(err, &simulatorValidation),
		errors.Is(err, workflow.ErrDraftNotFound):
		return http.StatusBadRequest
	case errors.Is(err, predictor.ErrRoomNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, predictor.ErrModelNotReady),
		errors.Is(err, allocator.ErrSolverUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeErr is the common path: classify err and write the mapped status.
func writeErr(w http.ResponseWriter, err error) {
	writeErrResponse(w, err, statusForError(err))
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
