package workflow

import "errors"

// ErrDraftNotFound is returned by Approve when no preview_allocation draft
// has been stashed yet.
var ErrDraftNotFound = errors.New("workflow: no allocation draft found, call preview_allocation first")
