package qualificationservice

import "errors"

// Workflow error taxonomy. Unauthorized and NotFound mutate nothing;
// Conflict surfaces a rejection with an explanation.
var (
	ErrUnauthorized = errors.New("caller is not authorized for this operation")
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("conflicting workflow state")
)
