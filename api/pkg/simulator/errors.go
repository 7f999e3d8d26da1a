package simulator

import "fmt"

// ValidationError reports an invalid scenario constraint: an out-of-range
// value, or a room or stakeholder unknown to the loaded dataset.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid simulation scenario: %s", e.Reason)
}
