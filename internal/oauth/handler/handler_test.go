package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"gfe/internal/backend"
	"gfe/internal/oauth"
	"gfe/internal/session"
	tenanthandler "gfe/internal/tenant/handler"
	"gfe/internal/tenant/models"
	"gfe/internal/tenant/resolver"
)

type HandlerSuite struct {
	suite.Suite
	idp           *httptest.Server
	api           *httptest.Server
	idpStatus     int
	logoutStatus  int
	logoutAuthHdr string
	store         *session.InMemoryStore
	metrics       *oauth.Metrics
	router        http.Handler
	cookie        *http.Cookie
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.idpStatus = http.StatusOK
	s.logoutStatus = http.StatusOK
	s.cookie = nil
	s.idp = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(s.idpStatus)
		if s.idpStatus == http.StatusOK {
			_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer"}`))
			return
		}
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	s.api = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logoutAuthHdr = r.Header.Get("Authorization")
		w.WriteHeader(s.logoutStatus)
	}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res, err := resolver.Default()
	s.Require().NoError(err)
	tenants := tenanthandler.New(res, logger)
	s.store = session.NewInMemory()
	s.metrics = &oauth.Metrics{
		AuthorizationsStarted: prometheus.NewCounter(prometheus.CounterOpts{Name: "test_authorizations_started_total"}),
		Callbacks:             prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_callbacks_total"}, []string{"outcome"}),
	}

	factory := backend.NewFactory(models.BackendSettings{
		BaseURL: s.api.URL,
		Timeout: time.Second,
		Retries: 1,
	}, backend.WithLogger(logger))
	h := New(models.OAuthEndpoints{
		AuthorizeURL: "https://idp.example/oauth/authorize",
		TokenURL:     s.idp.URL + "/token",
		Scope:        "offline_access",
	}, s.idp.Client(), factory, s.metrics, logger)

	r := chi.NewRouter()
	r.Use(tenants.Middleware)
	r.Use(session.Middleware(s.store, session.CookieConfig{Name: "gfe_session", TTL: time.Hour}, logger))
	h.Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.idp.Close()
	s.api.Close()
}

func (s *HandlerSuite) do(method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.Host = "goodfaithexteriors.com"
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "gfe_session" {
			s.cookie = c
		}
	}
	return w
}

func (s *HandlerSuite) login() string {
	w := s.do(http.MethodGet, "/auth/login")
	s.Require().Equal(http.StatusFound, w.Code)
	u, err := url.Parse(w.Header().Get("Location"))
	s.Require().NoError(err)
	return u.Query().Get("state")
}

func (s *HandlerSuite) status() StatusResponse {
	w := s.do(http.MethodGet, "/auth/status")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp StatusResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) TestLoginRedirects() {
	w := s.do(http.MethodGet, "/auth/login")

	s.Equal(http.StatusFound, w.Code)
	u, err := url.Parse(w.Header().Get("Location"))
	s.Require().NoError(err)
	s.Equal("idp.example", u.Host)
	s.Equal("code", u.Query().Get("response_type"))
	s.NotEmpty(u.Query().Get("state"))
	s.Equal("authorization_requested", string(s.status().Phase))
}

func (s *HandlerSuite) callbacks(outcome string) float64 {
	return testutil.ToFloat64(s.metrics.Callbacks.WithLabelValues(outcome))
}

func (s *HandlerSuite) TestCallbackInstallsToken() {
	state := s.login()
	preLogin := s.cookie.Value

	w := s.do(http.MethodGet, "/auth/callback?code=abc&state="+url.QueryEscape(state))

	s.Equal(http.StatusFound, w.Code)
	s.Equal("/", w.Header().Get("Location"))
	s.Equal(float64(1), s.callbacks(oauth.OutcomeSuccess))
	st := s.status()
	s.True(st.Authenticated)
	s.Equal("idle", string(st.Phase))

	s.NotEqual(preLogin, s.cookie.Value, "login must issue a fresh context id")
	old := session.NewHandle(s.store, preLogin, time.Hour)
	_, ok, err := old.GetToken(context.Background())
	s.Require().NoError(err)
	s.False(ok, "the pre-login id must not carry the token")
}

func (s *HandlerSuite) TestCallbackRejectsWrongState() {
	s.login()

	w := s.do(http.MethodGet, "/auth/callback?code=abc&state=forged")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "invalid_state")
	s.False(s.status().Authenticated)
}

func (s *HandlerSuite) TestCallbackForgedStateWithoutCode() {
	s.login()

	w := s.do(http.MethodGet, "/auth/callback?state=forged")

	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "invalid_state")
	s.Equal(float64(1), s.callbacks(oauth.OutcomeInvalidState))
	s.Zero(s.callbacks(oauth.OutcomeError))
	s.Equal("authorization_requested", string(s.status().Phase), "a rejected callback leaves the pending state alone")
}

func (s *HandlerSuite) TestCallbackWithoutLogin() {
	w := s.do(http.MethodGet, "/auth/callback?code=abc&state=whatever")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestCallbackMissingCode() {
	state := s.login()
	w := s.do(http.MethodGet, "/auth/callback?state="+url.QueryEscape(state))
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(float64(1), s.callbacks(oauth.OutcomeError))
}

func (s *HandlerSuite) TestCallbackExchangeFailure() {
	state := s.login()
	s.idpStatus = http.StatusBadRequest

	w := s.do(http.MethodGet, "/auth/callback?code=abc&state="+url.QueryEscape(state))

	s.Equal(http.StatusBadGateway, w.Code)
	s.False(s.status().Authenticated)
}

func (s *HandlerSuite) TestLogoutClearsTokenEvenWhenBackendFails() {
	state := s.login()
	s.do(http.MethodGet, "/auth/callback?code=abc&state="+url.QueryEscape(state))
	s.Require().True(s.status().Authenticated)
	s.logoutStatus = http.StatusInternalServerError

	w := s.do(http.MethodPost, "/auth/logout")

	s.Equal(http.StatusOK, w.Code)
	s.Equal("Bearer at-1", s.logoutAuthHdr)
	s.False(s.status().Authenticated)
}
