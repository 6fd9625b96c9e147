package nurture

import "errors"

var (
	// ErrSequenceNotFound is returned when the sequence does not exist or
	// belongs to another organization
	ErrSequenceNotFound = errors.New("sequence not found")
	// ErrLeadNotFound is returned when the lead does not exist
	ErrLeadNotFound = errors.New("lead not found")
	// ErrEmptySequence is returned when enrolling into a sequence with no
	// steps; such an enrollment would never auto-complete
	ErrEmptySequence = errors.New("sequence has no steps")
)
