package auv

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidPayload ErrorKind = "INVALID_PAYLOAD"
	KindUnknownDevice  ErrorKind = "UNKNOWN_DEVICE"
	KindUnknownCommand ErrorKind = "UNKNOWN_COMMAND"
	KindBadState       ErrorKind = "BAD_STATE"
	KindPlanMismatch   ErrorKind = "PLAN_MISMATCH"
	KindStale          ErrorKind = "STALE"
	KindConflict       ErrorKind = "CONFLICT"
	KindUnavailable    ErrorKind = "UNAVAILABLE"
)

type DomainError struct {
	Kind    ErrorKind
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func NewDomainError(kind ErrorKind, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the domain kind from an error chain. Anything that is not
// a DomainError is plumbing, and the database is the only plumbing that can
// fail here, so it maps to UNAVAILABLE.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnavailable
}
