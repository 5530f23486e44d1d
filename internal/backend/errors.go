package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind string

const (
	// KindAuthenticationRequired is a 401. The stored token has been cleared.
	KindAuthenticationRequired Kind = "authentication_required"

	// KindAccessForbidden is a 403.
	KindAccessForbidden Kind = "access_forbidden"

	// KindRequestFailed is any other non-2xx status.
	KindRequestFailed Kind = "request_failed"

	// KindTransportFailure means no response was received.
	KindTransportFailure Kind = "transport_failure"

	// KindDecodeFailure means a response declared JSON but did not parse.
	KindDecodeFailure Kind = "decode_failure"
)

// Error is the single error type returned by Client for backend failures.
type Error struct {
	Kind       Kind
	Status     int
	StatusText string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("backend [%s]: %d %s: %v", e.Kind, e.Status, e.StatusText, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("backend [%s]: %d %s", e.Kind, e.Status, e.StatusText)
	case e.Err != nil:
		return fmt.Sprintf("backend [%s]: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("backend [%s]", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below, so callers can write
// errors.Is(err, backend.ErrAuthenticationRequired).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Status == 0 && t.Err == nil && t.Kind == e.Kind
}

// Retryable reports whether another attempt may succeed. Authorization
// failures are terminal so the caller can re-authenticate instead.
func (e *Error) Retryable() bool {
	switch e.Kind {
	case KindRequestFailed, KindTransportFailure, KindDecodeFailure:
		return true
	}
	return false
}

var (
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired}
	ErrAccessForbidden        = &Error{Kind: KindAccessForbidden}
	ErrRequestFailed          = &Error{Kind: KindRequestFailed}
	ErrTransportFailure       = &Error{Kind: KindTransportFailure}
	ErrDecodeFailure          = &Error{Kind: KindDecodeFailure}
)

// IsRetryable checks whether err is a retryable backend error.
func IsRetryable(err error) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Retryable()
	}
	return false
}

// KindOf extracts the kind of a backend error.
func KindOf(err error) (Kind, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return "", false
}
