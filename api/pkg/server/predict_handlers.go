package server

import (
	"context"
	"net/http"

	"github.com/roomkeeper/roomkeeper/api/pkg/types"
)

// predictAvailabilityRequest is the body of POST /predict_availability.
type predictAvailabilityRequest struct {
	RoomID   int64  `json:"room_id"`
	Date     string `json:"date"`
	TimeSlot string `json:"time_slot"`
}

// predictAvailabilityResponse is the body of POST /predict_availability.
type predictAvailabilityResponse struct {
	IdleProbability float64 `json:"idle_probability"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// predictAvailabilityHandler godoc
// @Summary     Predict one room's idle probability for a slot
// @Description Runs the trained model for (room_id, date, time_slot) and persists the prediction
// @Router      /predict_availability [post]
// @Security    BearerAuth
func (s *Server) predictAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	var req predictAvailabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrResponse(w, err, http.StatusBadRequest)
		return
	}

	result, err := s.predictor.Predict(r.Context(), req.RoomID, req.Date, req.TimeSlot, true)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, predictAvailabilityResponse{
		IdleProbability: result.IdleProbability,
		ConfidenceScore: result.Confidence,
	})
}

// workflowPredictRequest is the body of POST /predict.
type workflowPredictRequest struct {
	Date     string  `json:"date"`
	TimeSlot string  `json:"time_slot"`
	RoomIDs  []int64 `json:"room_ids,omitempty"`
}

// workflowPredictHandler godoc
// @Summary     Predict idle probability for one or every room in a slot
// @Description Workflow surface: defaults to every room when room_ids is omitted
// @Router      /predict [post]
// @Security    BearerAuth
func (s *Server) workflowPredictHandler(w http.ResponseWriter, r *http.Request) {
	var req workflowPredictRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrResponse(w, err, http.StatusBadRequest)
		return
	}

	results, err := s.workflow.Predict(r.Context(), req.Date, req.TimeSlot, req.RoomIDs)
	if err != nil {
		writeErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]types.PredictionResult{"predictions": results})
}

// ensurePredictionsForSlot fills in a prediction for every room missing one
// in (date, slot), persisting each, so optimize_allocation can run against a
// complete prediction set even when the operator never called
// predict_availability first.
func (s *Server) ensurePredictionsForSlot(ctx context.Context, date, slot string) error {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return err
	}
	existing, err := s.store.GetLatestPredictionsForSlot(ctx, date, slot)
	if err != nil {
		return err
	}
	for _, room := range rooms {
		if _, ok := existing[room.RoomID]; ok {
			continue
		}
		if _, err := s.predictor.Predict(ctx, room.RoomID, date, slot, true); err != nil {
			return err
		}
	}
	return nil
}
