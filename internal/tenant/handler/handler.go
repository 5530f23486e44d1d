package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gfe/internal/tenant/metrics"
	"gfe/internal/tenant/models"
	"gfe/internal/tenant/resolver"
	dErrors "gfe/pkg/domain-errors"
	"gfe/pkg/platform/httputil"
	request "gfe/pkg/platform/middleware/request"
	"gfe/pkg/requestcontext"
)

// Resolver maps a serving host to its tenant. It never fails.
type Resolver interface {
	Resolve(host string) models.TenantConfig
}

type Handler struct {
	resolver Resolver
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

type Option func(*Handler)

func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

func New(resolver Resolver, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{resolver: resolver, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/site", h.HandleSite)
}

// Middleware resolves the tenant for the request host and stores both in the
// request context.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := resolver.NormalizeHost(r.Host)
		ctx := requestcontext.WithHost(r.Context(), host)
		cfg := h.resolver.Resolve(host)
		h.metrics.IncResolution(resolver.Environment(host), strings.Contains(host, cfg.Domain))
		ctx = models.WithTenant(ctx, cfg)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HandleSite returns the read-only configuration surface for the serving host.
func (h *Handler) HandleSite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, ok := models.TenantFromContext(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "tenant middleware not installed", "request_id", request.GetRequestID(ctx))
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "tenant not resolved"))
		return
	}
	host := requestcontext.Host(ctx)
	httputil.WriteJSON(w, http.StatusOK, toSiteResponse(host, cfg))
}
