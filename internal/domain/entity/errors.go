package entity

import "errors"

// Domain error taxonomy. Services wrap these with context via fmt.Errorf("%w: ...").
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")

	// ErrOutOfRange is a business-rule bound violation (dates, amounts).
	// It also matches ErrInvalidState so callers that only care about
	// "request rejected by business rules" can check one sentinel.
	ErrOutOfRange = &outOfRange{}
)

type outOfRange struct{}

func (*outOfRange) Error() string        { return "out of range" }
func (*outOfRange) Is(target error) bool { return target == ErrInvalidState }
