//go:build integration

package session_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"gfe/internal/session"
	"gfe/pkg/platform/sentinel"
)

type RedisStoreSuite struct {
	suite.Suite
	client *redis.Client
	store  *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("GFE_TEST_REDIS_URL") == "" {
		t.Skip("GFE_TEST_REDIS_URL not set")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	opts, err := redis.ParseURL(os.Getenv("GFE_TEST_REDIS_URL"))
	s.Require().NoError(err)
	s.client = redis.NewClient(opts)
	s.Require().NoError(s.client.Ping(context.Background()).Err())
	s.store = session.NewRedis(s.client)
}

func (s *RedisStoreSuite) TearDownSuite() {
	s.client.Close() //nolint:errcheck // test cleanup
}

func (s *RedisStoreSuite) TestRoundTripAndDelete() {
	ctx := context.Background()
	id := uuid.NewString()

	s.Require().NoError(s.store.Set(ctx, id, session.KeyAccessToken, "tok", time.Minute))
	value, err := s.store.Get(ctx, id, session.KeyAccessToken)
	s.Require().NoError(err)
	s.Equal("tok", value)

	ttl, err := s.client.TTL(ctx, "gfe:session:"+id+":"+session.KeyAccessToken).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	s.Require().NoError(s.store.Delete(ctx, id, session.KeyAccessToken))
	_, err = s.store.Get(ctx, id, session.KeyAccessToken)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestHandleOverRedis() {
	ctx := context.Background()
	h := session.NewHandle(s.store, uuid.NewString(), time.Hour)

	s.Require().NoError(h.SetPendingState(ctx, "state-1"))
	state, ok, err := h.GetPendingState(ctx)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal("state-1", state)

	s.Require().NoError(h.ClearPendingState(ctx))
	_, ok, err = h.GetPendingState(ctx)
	s.Require().NoError(err)
	s.False(ok)
}
