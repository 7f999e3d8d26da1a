package predictor

import "errors"

// ErrModelNotReady is returned by Predict when no model has been trained
// yet, and by Train when there are not enough rows to train on.
var ErrModelNotReady = errors.New("model not ready")

// ErrRoomNotFound is returned by Predict when the referenced room does not
// exist.
var ErrRoomNotFound = errors.New("room not found")

// ValidationError wraps an operator-visible input validation failure.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation error: " + e.Reason }
