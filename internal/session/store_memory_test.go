package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"gfe/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s.store = NewInMemory()
	s.store.now = func() time.Time { return s.now }
}

func (s *InMemoryStoreSuite) TestSetAndGet() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "ctx-a", KeyAccessToken, "tok", 0))

	value, err := s.store.Get(ctx, "ctx-a", KeyAccessToken)
	s.Require().NoError(err)
	s.Equal("tok", value)
}

func (s *InMemoryStoreSuite) TestGetAbsent() {
	_, err := s.store.Get(context.Background(), "ctx-a", KeyAccessToken)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestContextsAreIsolated() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "ctx-a", KeyAccessToken, "tok-a", 0))

	_, err := s.store.Get(ctx, "ctx-b", KeyAccessToken)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestExpiry() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "ctx-a", KeyOAuthState, "st", time.Minute))

	s.now = s.now.Add(59 * time.Second)
	_, err := s.store.Get(ctx, "ctx-a", KeyOAuthState)
	s.NoError(err)

	s.now = s.now.Add(time.Second)
	_, err = s.store.Get(ctx, "ctx-a", KeyOAuthState)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(s.store.Set(ctx, "ctx-a", KeyAccessToken, "tok", 0))
	s.Require().NoError(s.store.Delete(ctx, "ctx-a", KeyAccessToken))
	s.Require().NoError(s.store.Delete(ctx, "ctx-a", KeyAccessToken))
	s.Require().NoError(s.store.Delete(ctx, "never-seen", KeyAccessToken))

	_, err := s.store.Get(ctx, "ctx-a", KeyAccessToken)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteExpiredReclaimsContexts() {
	ctx := context.Background()
	for i := range 10000 {
		h := NewHandle(s.store, fmt.Sprintf("ctx-%d", i), time.Hour)
		s.Require().NoError(h.SetPendingState(ctx, "st"))
	}
	s.Require().NoError(s.store.Set(ctx, "kept", KeyAccessToken, "tok", 48*time.Hour))
	s.Require().NoError(s.store.Set(ctx, "mixed", KeyAccessToken, "tok", 48*time.Hour))
	s.Require().NoError(s.store.Set(ctx, "mixed", KeyOAuthState, "st", time.Minute))

	s.now = s.now.Add(24 * time.Hour)
	deleted, err := s.store.DeleteExpired(ctx, s.now)

	s.Require().NoError(err)
	s.Equal(10000, deleted)
	s.Len(s.store.contexts, 2)
	s.Len(s.store.contexts["mixed"], 1)
	value, err := s.store.Get(ctx, "kept", KeyAccessToken)
	s.Require().NoError(err)
	s.Equal("tok", value)
}

func (s *InMemoryStoreSuite) TestRunCleanupStopsWithContext() {
	s.Require().NoError(s.store.Set(context.Background(), "ctx-a", KeyOAuthState, "st", time.Minute))
	s.now = s.now.Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.store.RunCleanup(ctx, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	}()

	s.Eventually(func() bool {
		s.store.mu.RLock()
		defer s.store.mu.RUnlock()
		return len(s.store.contexts) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.NoError(<-done)
}
