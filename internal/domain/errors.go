package domain

import "errors"

// Sentinel errors for the domain layer. Callers match with errors.Is.
var (
	ErrNotFound          = errors.New("domain: not found")
	ErrInvalidParams     = errors.New("domain: invalid parameters")
	ErrIllegalTransition = errors.New("domain: illegal transition")
	ErrForbidden         = errors.New("domain: forbidden")
	ErrConflict          = errors.New("domain: conflict")
	ErrStorage           = errors.New("domain: storage failure")
)
