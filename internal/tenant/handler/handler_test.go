package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gfe/internal/tenant/resolver"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	res, err := resolver.Default()
	require.NoError(t, err)
	h := New(res, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r := chi.NewRouter()
	r.Use(h.Middleware)
	h.Register(r)
	return r
}

func getSite(t *testing.T, router http.Handler, host string) map[string]any {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/site", nil)
	req.Host = host
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleSite(t *testing.T) {
	router := newRouter(t)

	t.Run("test brand", func(t *testing.T) {
		body := getSite(t, router, "goodfaithwindows.com")
		assert.Equal(t, "test", body["environment"])
	})

	t.Run("production brand", func(t *testing.T) {
		body := getSite(t, router, "goodfaithexteriors.com")
		assert.Equal(t, "goodfaithexteriors.com", body["host"])
		assert.Equal(t, "production", body["environment"])
		assert.Equal(t, "Good Faith Exteriors", body["branding"].(map[string]any)["name"])
		assert.Equal(t, true, body["features"].(map[string]any)["aiEstimation"])
		assert.Equal(t, "GA_MEASUREMENT_ID_EXTERIORS", body["analytics"].(map[string]any)["analyticsId"])
	})

	t.Run("subdomain with port resolves to the brand", func(t *testing.T) {
		body := getSite(t, router, "WWW.GoodFaithWindows.com:443")
		assert.Equal(t, "www.goodfaithwindows.com", body["host"])
		// environment names exact hosts only
		assert.Equal(t, "unknown", body["environment"])
		assert.Equal(t, "Good Faith Windows", body["branding"].(map[string]any)["name"])
	})

	t.Run("development host has null analytics", func(t *testing.T) {
		body := getSite(t, router, "app.localhost:5173")
		assert.Equal(t, "development", body["environment"])
		analytics := body["analytics"].(map[string]any)
		assert.Contains(t, analytics, "analyticsId")
		assert.Nil(t, analytics["analyticsId"])
		assert.Nil(t, analytics["sentryDsn"])
	})

	t.Run("unknown host falls back to the default tenant", func(t *testing.T) {
		body := getSite(t, router, "example.org")
		assert.Equal(t, "unknown", body["environment"])
		assert.Equal(t, "Good Faith Exteriors (Dev)", body["branding"].(map[string]any)["name"])
	})
}

func TestHandleSiteWithoutMiddleware(t *testing.T) {
	res, err := resolver.Default()
	require.NoError(t, err)
	h := New(res, slog.New(slog.NewTextHandler(io.Discard, nil)))

	w := httptest.NewRecorder()
	h.HandleSite(w, httptest.NewRequest(http.MethodGet, "/api/site", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
