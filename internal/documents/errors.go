package documents

import "errors"

var (
	ErrNotFound   = errors.New("document not found")
	ErrConflict   = errors.New("document state conflict")
	ErrValidation = errors.New("document validation failed")
)
