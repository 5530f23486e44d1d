package session

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"gfe/pkg/platform/middleware/request"
)

type contextKeyHandle struct{}

// WithHandle attaches h to ctx.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, contextKeyHandle{}, h)
}

// FromContext returns the Handle installed by the middleware.
func FromContext(ctx context.Context) (*Handle, bool) {
	h, ok := ctx.Value(contextKeyHandle{}).(*Handle)
	return h, ok && h != nil
}

// CookieConfig holds the browsing-context cookie settings.
type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

// Middleware issues and reads the browsing-context cookie and installs a
// Handle for the context into the request.
//
// A missing or malformed cookie starts a new context. Cookie ids are UUIDs so
// a client cannot choose a key that collides with another context.
func Middleware(store Store, cfg CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := cookieID(r, cfg.Name)
			if !ok {
				id = uuid.NewString()
				setCookie(w, cfg, id)
				logger.InfoContext(r.Context(), "browsing context started",
					"request_id", request.GetRequestID(r.Context()),
					"device", DeviceLabel(r.UserAgent()),
				)
			}

			handle := NewHandle(store, id, cfg.TTL)
			handle.onRotate = func(newID string) {
				setCookie(w, cfg, newID)
				logger.InfoContext(r.Context(), "browsing context rotated",
					"request_id", request.GetRequestID(r.Context()),
				)
			}
			next.ServeHTTP(w, r.WithContext(WithHandle(r.Context(), handle)))
		})
	}
}

// setCookie replaces any context cookie already queued on w.
func setCookie(w http.ResponseWriter, cfg CookieConfig, id string) {
	prefix := cfg.Name + "="
	var kept []string
	for _, v := range w.Header().Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	w.Header().Del("Set-Cookie")
	for _, v := range kept {
		w.Header().Add("Set-Cookie", v)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func cookieID(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	parsed, err := uuid.Parse(cookie.Value)
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
