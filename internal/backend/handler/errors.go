package handler

import (
	"context"
	"errors"
	"net/http"

	"gfe/internal/backend"
	dErrors "gfe/pkg/domain-errors"
)

// translateError maps a backend failure to the domain code surfaced to the
// page. Authorization failures keep their meaning so the page can force a
// fresh login; everything else is an upstream problem.
func translateError(err error) error {
	var be *backend.Error
	switch {
	case errors.Is(err, backend.ErrAuthenticationRequired):
		return dErrors.Wrap(err, dErrors.CodeUnauthorized, "authentication required")
	case errors.Is(err, backend.ErrAccessForbidden):
		return dErrors.Wrap(err, dErrors.CodeForbidden, "access forbidden")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "backend did not answer in time")
	case errors.As(err, &be) && be.Status == http.StatusNotFound:
		return dErrors.Wrap(err, dErrors.CodeNotFound, "not found")
	case errors.As(err, &be):
		return dErrors.Wrap(err, dErrors.CodeUpstream, "backend request failed")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "request failed")
}
