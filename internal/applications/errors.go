package applications

import "errors"

var (
	ErrNotFound   = errors.New("application not found")
	ErrConflict   = errors.New("application state conflict")
	ErrValidation = errors.New("application validation failed")
)

const (
	ErrorCodeDuplicate       = "DUPLICATE_APPLICATION"
	ErrorCodeInvalidState    = "INVALID_STATE_TRANSITION"
	ErrorCodeMissingSections = "MISSING_REQUIRED_SECTIONS"
	ErrorCodeInternal        = "INTERNAL_ERROR"
)
