package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gfe/internal/backend"
	"gfe/internal/oauth"
	"gfe/internal/session"
	"gfe/internal/tenant/models"
	dErrors "gfe/pkg/domain-errors"
	"gfe/pkg/platform/httputil"
	request "gfe/pkg/platform/middleware/request"
	"gfe/pkg/requestcontext"
)

// Handler serves the browser side of the authorization-code flow.
// It expects the tenant and session middleware to have run.
type Handler struct {
	endpoints  models.OAuthEndpoints
	httpClient *http.Client
	backend    *backend.Factory
	metrics    *oauth.Metrics
	logger     *slog.Logger
}

func New(endpoints models.OAuthEndpoints, httpClient *http.Client, backendFactory *backend.Factory, metrics *oauth.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		endpoints:  endpoints,
		httpClient: httpClient,
		backend:    backendFactory,
		metrics:    metrics,
		logger:     logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/login", h.HandleLogin)
	r.Get("/auth/callback", h.HandleCallback)
	r.Post("/auth/logout", h.HandleLogout)
	r.Get("/auth/status", h.HandleStatus)
}

// StatusResponse reports whether the browsing context holds a token.
type StatusResponse struct {
	Authenticated bool        `json:"authenticated"`
	Phase         oauth.Phase `json:"phase"`
}

func (h *Handler) flow(r *http.Request) (*oauth.Flow, *session.Handle, error) {
	cfg, ok := models.TenantFromContext(r.Context())
	if !ok {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "tenant not resolved")
	}
	handle, ok := session.FromContext(r.Context())
	if !ok {
		return nil, nil, dErrors.New(dErrors.CodeInternal, "session not established")
	}
	return oauth.New(cfg, h.endpoints, handle, oauth.WithHTTPClient(h.httpClient)), handle, nil
}

// HandleLogin starts a round trip and redirects to the identity provider.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)

	flow, _, err := h.flow(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authURL, err := flow.GetAuthorizationURL(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to start authorization", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to start authorization"))
		return
	}
	h.metrics.IncAuthorizationStarted()
	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleCallback validates the provider redirect, installs the access token
// and sends the browser home.
func (h *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := request.GetRequestID(ctx)
	q := r.URL.Query()

	flow, handle, err := h.flow(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	// The state is checked before anything else the redirect carries.
	if err := flow.ValidateState(ctx, q.Get("state")); err != nil {
		h.callbackStateError(w, r, err)
		return
	}
	if providerErr := q.Get("error"); providerErr != "" {
		h.metrics.IncCallback(oauth.OutcomeError)
		h.logger.WarnContext(ctx, "identity provider returned an error", "error", providerErr, "request_id", requestID)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "authorization was not granted"))
		return
	}
	code := q.Get("code")
	if code == "" {
		h.metrics.IncCallback(oauth.OutcomeError)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing authorization code"))
		return
	}

	tok, err := flow.HandleCallback(ctx, code, q.Get("state"))
	switch {
	case errors.Is(err, oauth.ErrInvalidState):
		h.callbackStateError(w, r, err)
		return
	case errors.Is(err, oauth.ErrTokenExchangeFailed):
		h.metrics.IncCallback(oauth.OutcomeExchangeFailed)
		h.logger.ErrorContext(ctx, "token exchange failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUpstream, "failed to exchange authorization code for token"))
		return
	case err != nil:
		h.metrics.IncCallback(oauth.OutcomeError)
		h.logger.ErrorContext(ctx, "oauth callback failed", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "oauth callback failed"))
		return
	}

	if err := handle.Rotate(ctx); err != nil {
		h.metrics.IncCallback(oauth.OutcomeError)
		h.logger.ErrorContext(ctx, "failed to rotate browsing context", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session"))
		return
	}
	if err := handle.SetToken(ctx, tok.AccessToken); err != nil {
		h.metrics.IncCallback(oauth.OutcomeError)
		h.logger.ErrorContext(ctx, "failed to store access token", "error", err, "request_id", requestID)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session"))
		return
	}
	h.metrics.IncCallback(oauth.OutcomeSuccess)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *Handler) callbackStateError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	if !errors.Is(err, oauth.ErrInvalidState) {
		h.metrics.IncCallback(oauth.OutcomeError)
		h.logger.ErrorContext(ctx, "oauth callback failed", "error", err, "request_id", request.GetRequestID(ctx))
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "oauth callback failed"))
		return
	}
	h.metrics.IncCallback(oauth.OutcomeInvalidState)
	h.logger.WarnContext(ctx, "oauth callback state mismatch",
		"request_id", request.GetRequestID(ctx),
		"host", requestcontext.Host(ctx),
	)
	httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInvalidState, "invalid oauth state parameter"))
}

// HandleLogout tells the backend and drops the token. The token is gone even
// when the backend call fails.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	handle, ok := session.FromContext(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "session not established"))
		return
	}

	err := h.backend.For(requestcontext.Host(ctx), handle).Logout(ctx)
	if err != nil {
		if _, stillThere, readErr := handle.GetToken(ctx); readErr != nil || stillThere {
			h.logger.ErrorContext(ctx, "logout failed to clear token", "error", err, "request_id", request.GetRequestID(ctx))
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "logout failed"))
			return
		}
		h.logger.WarnContext(ctx, "backend logout failed", "error", err, "request_id", request.GetRequestID(ctx))
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Authenticated: false, Phase: oauth.PhaseIdle})
}

func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	flow, _, err := h.flow(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	authenticated, err := flow.IsAuthenticated(ctx)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read session"))
		return
	}
	phase, err := flow.Phase(ctx)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read session"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{Authenticated: authenticated, Phase: phase})
}
