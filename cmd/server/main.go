package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"gfe/internal/backend"
	backendhandler "gfe/internal/backend/handler"
	"gfe/internal/backend/tracer"
	"gfe/internal/estimate"
	estimatehandler "gfe/internal/estimate/handler"
	"gfe/internal/oauth"
	oauthhandler "gfe/internal/oauth/handler"
	"gfe/internal/platform/config"
	"gfe/internal/platform/health"
	"gfe/internal/platform/logger"
	"gfe/internal/platform/redis"
	"gfe/internal/session"
	tenanthandler "gfe/internal/tenant/handler"
	tenantmetrics "gfe/internal/tenant/metrics"
	"gfe/internal/tenant/models"
	"gfe/internal/tenant/resolver"
	"gfe/pkg/platform/circuit"
	"gfe/pkg/platform/middleware/metadata"
	"gfe/pkg/platform/middleware/request"
	"gfe/pkg/platform/middleware/requesttime"
)

const (
	maxBodyBytes           = 1 << 20
	maxEstimateBodyBytes   = 10 << 20
	poolStatsInterval      = 15 * time.Second
	sessionCleanupInterval = 5 * time.Minute
)

// main wires the resolver, session store and backend client into the site
// router and keeps the server lifecycle small.
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.SlogLevel())

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("initializing gfe site",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"backend", cfg.Backend.BaseURL,
		"retries", cfg.Backend.Retries,
	)

	trusted, err := metadata.ParsePrefixes(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	domains, err := resolver.Default()
	if err != nil {
		return err
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	var (
		store  session.Store
		memory *session.InMemoryStore
	)
	if rdb != nil {
		defer rdb.Close() //nolint:errcheck // process is exiting
		store = session.NewRedis(rdb.Client)
		log.Info("session store", "backend", "redis")
	} else {
		memory = session.NewInMemory()
		store = memory
		log.Warn("session store", "backend", "memory")
	}

	backendFactory := backend.NewFactory(models.BackendSettings{
		BaseURL:       cfg.Backend.BaseURL,
		Timeout:       cfg.Backend.Timeout,
		Retries:       cfg.Backend.Retries,
		ClientVersion: cfg.Backend.ClientVersion,
	},
		backend.WithDoer(&http.Client{}),
		backend.WithTracer(tracer.NewOTel()),
		backend.WithMetrics(backend.NewMetrics()),
		backend.WithLogger(log),
	)

	breaker := circuit.New("estimate",
		circuit.WithFailureThreshold(cfg.Estimate.FailureThreshold),
		circuit.WithCooldown(cfg.Estimate.Cooldown),
	)
	estimates := estimate.New(log,
		estimate.WithBreaker(breaker),
		estimate.WithMetrics(estimate.NewMetrics()),
	)

	tenants := tenanthandler.New(domains, log, tenanthandler.WithMetrics(tenantmetrics.New()))
	oauthHandler := oauthhandler.New(models.OAuthEndpoints{
		AuthorizeURL: cfg.OAuth.AuthorizeURL,
		TokenURL:     cfg.OAuth.TokenURL,
		Scope:        cfg.OAuth.Scope,
	}, &http.Client{Timeout: cfg.OAuth.ExchangeTimeout}, backendFactory, oauth.NewMetrics(), log)

	healthHandler := health.New(cfg.Environment)
	if rdb != nil {
		healthHandler.RegisterCheck("redis", rdb.Health)
	}

	latency := request.NewMetrics()
	r := chi.NewRouter()
	r.Use(request.Recovery(log))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientIP(trusted))
	r.Use(request.Logger(log))
	r.Use(request.LatencyMiddleware(latency, routePattern))

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(tenants.Middleware)
		r.Use(session.Middleware(store, session.CookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			TTL:    cfg.Session.TTL,
		}, log))

		r.Group(func(r chi.Router) {
			r.Use(request.BodyLimit(maxEstimateBodyBytes))
			estimatehandler.New(estimates, backendFactory, log).Register(r)
		})
		r.Group(func(r chi.Router) {
			r.Use(request.BodyLimit(maxBodyBytes))
			tenants.Register(r)
			oauthHandler.Register(r)
			backendhandler.New(backendFactory, log).Register(r)
		})
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if rdb != nil {
		g.Go(func() error {
			return rdb.RunPoolStats(gctx, poolStatsInterval)
		})
	}
	if memory != nil {
		g.Go(func() error {
			return memory.RunCleanup(gctx, sessionCleanupInterval, log)
		})
	}
	return g.Wait()
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
