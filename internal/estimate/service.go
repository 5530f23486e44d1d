// Package estimate asks the backend for an AI estimate and falls back to a
// locally synthesized placeholder when the backend cannot answer.
package estimate

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"gfe/internal/backend"
	"gfe/internal/tenant/models"
	dErrors "gfe/pkg/domain-errors"
	"gfe/pkg/platform/circuit"
	"gfe/pkg/platform/middleware/requesttime"
)

// Estimator is the backend call the service wraps.
type Estimator interface {
	AIEstimate(ctx context.Context, request any) (*backend.Body, error)
}

// Service is process-wide: the breaker and random source are shared by all
// requests while the Estimator is per request.
type Service struct {
	breaker *circuit.Breaker
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

type Option func(*Service)

func WithBreaker(b *circuit.Breaker) Option {
	return func(s *Service) { s.breaker = b }
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		breaker: circuit.New("ai-estimate"),
		logger:  logger,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Estimate returns the backend estimate, or a degraded placeholder when the
// backend fails for any reason other than authorization. Authorization
// failures propagate so the page can force a fresh login.
func (s *Service) Estimate(ctx context.Context, est Estimator, features models.Features, req Request) (*Result, error) {
	if !features.Enabled(models.FeatureAIEstimation) {
		return nil, dErrors.New(dErrors.CodeFeatureDisabled, "ai estimation is not available on this site")
	}
	req.Timestamp = s.timestamp(ctx).UTC().Format(time.RFC3339)

	if !s.breaker.Allow() {
		s.metrics.incFallback("circuit_open")
		return s.fallback(req), nil
	}

	result, err := s.fromBackend(ctx, est, req)
	switch {
	case err == nil:
		if change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.InfoContext(ctx, "estimate circuit closed", "breaker", s.breaker.Name())
		}
		s.metrics.incBackend()
		return result, nil
	case errors.Is(err, backend.ErrAuthenticationRequired):
		s.breaker.RecordSuccess()
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "authentication required")
	case errors.Is(err, backend.ErrAccessForbidden):
		s.breaker.RecordSuccess()
		return nil, dErrors.Wrap(err, dErrors.CodeForbidden, "access forbidden")
	}

	if change := s.breaker.RecordFailure(); change.Opened {
		s.logger.WarnContext(ctx, "estimate circuit opened", "breaker", s.breaker.Name())
	}
	s.logger.WarnContext(ctx, "estimate fell back to local pricing", "error", err)
	s.metrics.incFallback("backend_error")
	return s.fallback(req), nil
}

// timestamp is the request's arrival time unless a clock was injected.
func (s *Service) timestamp(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requesttime.Now(ctx)
}

func (s *Service) fromBackend(ctx context.Context, est Estimator, req Request) (*Result, error) {
	body, err := est.AIEstimate(ctx, req)
	if err != nil {
		return nil, err
	}
	var result Result
	if err := body.Decode(&result); err != nil {
		return nil, err
	}
	result.Degraded = false
	result.Source = SourceBackend
	return &result, nil
}

// fallback synthesizes a plausible placeholder in the ranges the site has
// always used: unit and total in [300,800) per unit, labor in [100,300),
// material in [200,500), confidence in [80,100).
func (s *Service) fallback(req Request) *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	units := float64(req.Units())
	return &Result{
		UnitPrice:    round2(s.rng.Float64()*500 + 300),
		TotalPrice:   round2((s.rng.Float64()*500 + 300) * units),
		LaborCost:    round2(s.rng.Float64()*200 + 100),
		MaterialCost: round2(s.rng.Float64()*300 + 200),
		Confidence:   round2(s.rng.Float64()*20 + 80),
		Notes:        FallbackNote,
		Degraded:     true,
		Source:       SourceFallback,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
