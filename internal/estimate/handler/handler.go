package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gfe/internal/backend"
	"gfe/internal/estimate"
	"gfe/internal/session"
	"gfe/internal/tenant/models"
	dErrors "gfe/pkg/domain-errors"
	"gfe/pkg/platform/httputil"
	request "gfe/pkg/platform/middleware/request"
	"gfe/pkg/requestcontext"
)

// Service computes estimates.
type Service interface {
	Estimate(ctx context.Context, est estimate.Estimator, features models.Features, req estimate.Request) (*estimate.Result, error)
}

type Handler struct {
	service Service
	backend *backend.Factory
	logger  *slog.Logger
}

func New(service Service, backendFactory *backend.Factory, logger *slog.Logger) *Handler {
	return &Handler{service: service, backend: backendFactory, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/estimate", h.HandleEstimate)
}

// HandleEstimate answers with a backend estimate or a degraded placeholder.
func (h *Handler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	cfg, ok := models.TenantFromContext(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "tenant not resolved"))
		return
	}
	handle, ok := session.FromContext(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "session not established"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[estimate.Request](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	client := h.backend.For(requestcontext.Host(ctx), handle)
	result, err := h.service.Estimate(ctx, client, cfg.FeatureFlags(), *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "estimate failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
