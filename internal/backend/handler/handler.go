// Package handler exposes the backend API to the page, gated by the tenant's
// feature flags.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gfe/internal/backend"
	"gfe/internal/session"
	"gfe/internal/tenant/models"
	dErrors "gfe/pkg/domain-errors"
	"gfe/pkg/platform/httputil"
	request "gfe/pkg/platform/middleware/request"
	"gfe/pkg/requestcontext"
)

type Handler struct {
	backend *backend.Factory
	logger  *slog.Logger
}

func New(backendFactory *backend.Factory, logger *slog.Logger) *Handler {
	return &Handler{backend: backendFactory, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/auth/login", h.HandleLogin)
	r.Post("/api/auth/register", h.HandleRegister)

	r.Get("/api/quotes", h.HandleQuotes)
	r.Post("/api/quotes", h.HandleCreateQuote)
	r.Get("/api/quotes/{id}", h.HandleQuote)
	r.Put("/api/quotes/{id}", h.HandleUpdateQuote)
	r.Post("/api/leads", h.HandleCreateLead)

	r.Group(func(r chi.Router) {
		r.Use(RequireFeature(models.FeatureProductCatalog))
		r.Get("/api/products", h.HandleProducts)
		r.Get("/api/products/{id}", h.HandleProduct)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireFeature(models.FeatureChatSupport))
		r.Post("/api/chat", h.HandleChat)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireFeature(models.FeatureCustomerPortal))
		r.Get("/api/customer/profile", h.HandleCustomerProfile)
		r.Put("/api/customer/profile", h.HandleUpdateCustomerProfile)
		r.Get("/api/customer/projects", h.HandleCustomerProjects)
	})
}

// RequireFeature answers 404 when the serving tenant has f switched off.
func RequireFeature(f models.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg, ok := models.TenantFromContext(r.Context())
			if !ok || !cfg.Features.Enabled(f) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeFeatureDisabled, string(f)+" is not available on this site"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) client(w http.ResponseWriter, r *http.Request) (*backend.Client, *session.Handle, bool) {
	handle, ok := session.FromContext(r.Context())
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "session not established"))
		return nil, nil, false
	}
	return h.backend.For(requestcontext.Host(r.Context()), handle), handle, true
}

func (h *Handler) readJSON(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	ctx := r.Context()
	raw, ok := httputil.DecodeJSON[json.RawMessage](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return nil, false
	}
	return *raw, true
}

// respond relays a backend answer, or translates its failure.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, body *backend.Body, err error) {
	if err != nil {
		ctx := r.Context()
		h.logger.ErrorContext(ctx, "backend call failed",
			"error", err,
			"path", r.URL.Path,
			"request_id", request.GetRequestID(ctx),
		)
		httputil.WriteError(w, translateError(err))
		return
	}
	if raw := body.JSON(); raw != nil {
		httputil.WriteJSON(w, status, raw)
		return
	}
	if body.IsJSON() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	contentType := body.ContentType()
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body.Text()))
}

// HandleLogin relays a password login and installs the returned token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.relayCredentials(w, r, (*backend.Client).Login)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.relayCredentials(w, r, (*backend.Client).Register)
}

type tokenEnvelope struct {
	AccessToken string `json:"access_token"`
	Token       string `json:"token"`
}

func (h *Handler) relayCredentials(w http.ResponseWriter, r *http.Request, call func(*backend.Client, context.Context, any) (*backend.Body, error)) {
	ctx := r.Context()
	client, handle, ok := h.client(w, r)
	if !ok {
		return
	}
	payload, ok := h.readJSON(w, r)
	if !ok {
		return
	}

	body, err := call(client, ctx, payload)
	if err == nil && body.IsJSON() {
		var env tokenEnvelope
		if decodeErr := body.Decode(&env); decodeErr == nil {
			token := env.AccessToken
			if token == "" {
				token = env.Token
			}
			if token != "" {
				setErr := handle.Rotate(ctx)
				if setErr == nil {
					setErr = handle.SetToken(ctx, token)
				}
				if setErr != nil {
					h.logger.ErrorContext(ctx, "failed to store access token", "error", setErr, "request_id", request.GetRequestID(ctx))
					httputil.WriteError(w, dErrors.Wrap(setErr, dErrors.CodeInternal, "failed to store session"))
					return
				}
			}
		}
	}
	h.respond(w, r, http.StatusOK, body, err)
}

func (h *Handler) HandleQuotes(w http.ResponseWriter, r *http.Request) {
	if client, _, ok := h.client(w, r); ok {
		body, err := client.Quotes(r.Context())
		h.respond(w, r, http.StatusOK, body, err)
	}
}

func (h *Handler) HandleCreateQuote(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	payload, ok := h.readJSON(w, r)
	if !ok {
		return
	}
	body, err := client.CreateQuote(r.Context(), payload)
	h.respond(w, r, http.StatusCreated, body, err)
}

func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	if client, _, ok := h.client(w, r); ok {
		body, err := client.Quote(r.Context(), chi.URLParam(r, "id"))
		h.respond(w, r, http.StatusOK, body, err)
	}
}

func (h *Handler) HandleUpdateQuote(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	payload, ok := h.readJSON(w, r)
	if !ok {
		return
	}
	body, err := client.UpdateQuote(r.Context(), chi.URLParam(r, "id"), payload)
	h.respond(w, r, http.StatusOK, body, err)
}

func (h *Handler) HandleCreateLead(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	payload, ok := h.readJSON(w, r)
	if !ok {
		return
	}
	body, err := client.CreateLead(r.Context(), payload)
	h.respond(w, r, http.StatusCreated, body, err)
}

func (h *Handler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	if client, _, ok := h.client(w, r); ok {
		body, err := client.Products(r.Context())
		h.respond(w, r, http.StatusOK, body, err)
	}
}

func (h *Handler) HandleProduct(w http.ResponseWriter, r *http.Request) {
	if client, _, ok := h.client(w, r); ok {
		body, err := client.Product(r.Context(), chi.URLParam(r, "id"))
		h.respond(w, r, http.StatusOK, body, err)
	}
}

// ChatRequest is the page's chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

func (c *ChatRequest) Normalize() {
	c.Message = strings.TrimSpace(c.Message)
}

func (c *ChatRequest) Validate() error {
	if c.Message == "" {
		return dErrors.New(dErrors.CodeValidation, "message is required")
	}
	return nil
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ChatRequest](w, r, h.logger, ctx, request.GetRequestID(ctx))
	if !ok {
		return
	}
	body, err := client.SendChatMessage(ctx, req.Message)
	h.respond(w, r, http.StatusOK, body, err)
}

func (h *Handler) HandleCustomerProfile(w http.ResponseWriter, r *http.Request) {
	if client, _, ok := h.client(w, r); ok {
		body, err := client.CustomerProfile(r.Context())
		h.respond(w, r, http.StatusOK, body, err)
	}
}

func (h *Handler) HandleUpdateCustomerProfile(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.client(w, r)
	if !ok {
		return
	}
	payload, ok := h.readJSON(w, r)
	if !ok {
		return
	}
	body, err := client.UpdateCustomerProfile(r.Context(), payload)
	h.respond(w, r, http.StatusOK, body, err)
}

func (h *Handler) HandleCustomerProjects(w http.ResponseWriter, r *http.Request) {
	if client, _, ok := h.client(w, r); ok {
		body, err := client.CustomerProjects(r.Context())
		h.respond(w, r, http.StatusOK, body, err)
	}
}
