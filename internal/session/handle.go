package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gfe/pkg/platform/sentinel"
)

// pendingStateTTL bounds how long an authorization round trip may take.
const pendingStateTTL = 15 * time.Minute

// Handle is the session view of one browsing context. It is safe to share
// between the goroutines serving the same context; the Store serializes access.
type Handle struct {
	store    Store
	ttl      time.Duration
	now      func() time.Time
	onRotate func(id string)

	mu sync.RWMutex
	id string
}

// NewHandle binds store to the browsing context id. ttl is the lifetime of a
// stored token when the token itself carries no earlier expiry.
func NewHandle(store Store, id string, ttl time.Duration) *Handle {
	return &Handle{store: store, id: id, ttl: ttl, now: time.Now, onRotate: func(string) {}}
}

// ID returns the browsing-context id.
func (h *Handle) ID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

// Rotate moves the context to a fresh id, carrying the token over and
// dropping everything stored under the old id. Call it whenever the context
// becomes authenticated so an id chosen before login is never promoted.
func (h *Handle) Rotate(ctx context.Context) error {
	token, hasToken, err := h.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("read token for rotation: %w", err)
	}

	h.mu.Lock()
	oldID := h.id
	h.id = uuid.NewString()
	newID := h.id
	h.mu.Unlock()

	if hasToken {
		if err := h.SetToken(ctx, token); err != nil {
			return fmt.Errorf("move token to rotated context: %w", err)
		}
	}
	for _, key := range []string{KeyAccessToken, KeyOAuthState} {
		if err := h.store.Delete(ctx, oldID, key); err != nil {
			return fmt.Errorf("drop rotated context: %w", err)
		}
	}
	h.onRotate(newID)
	return nil
}

// GetToken returns the stored access token. ok is false when none is stored.
func (h *Handle) GetToken(ctx context.Context) (token string, ok bool, err error) {
	return h.get(ctx, KeyAccessToken)
}

// SetToken stores token. When the token is a JWT with an exp claim the entry
// expires with it.
func (h *Handle) SetToken(ctx context.Context, token string) error {
	return h.store.Set(ctx, h.ID(), KeyAccessToken, token, h.tokenTTL(token))
}

// ClearToken removes the stored token. Clearing an absent token succeeds.
func (h *Handle) ClearToken(ctx context.Context) error {
	return h.store.Delete(ctx, h.ID(), KeyAccessToken)
}

// GetPendingState returns the OAuth state of an authorization in flight.
func (h *Handle) GetPendingState(ctx context.Context) (state string, ok bool, err error) {
	return h.get(ctx, KeyOAuthState)
}

// SetPendingState records state, replacing any earlier one.
func (h *Handle) SetPendingState(ctx context.Context, state string) error {
	return h.store.Set(ctx, h.ID(), KeyOAuthState, state, pendingStateTTL)
}

// ClearPendingState forgets the pending state.
func (h *Handle) ClearPendingState(ctx context.Context) error {
	return h.store.Delete(ctx, h.ID(), KeyOAuthState)
}

func (h *Handle) get(ctx context.Context, key string) (string, bool, error) {
	value, err := h.store.Get(ctx, h.ID(), key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, value != "", nil
}

// tokenTTL never trusts the token for anything but its own lifetime; the
// signature is the backend's business.
func (h *Handle) tokenTTL(token string) time.Duration {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return h.ttl
	}
	if claims.ExpiresAt == nil {
		return h.ttl
	}
	remaining := claims.ExpiresAt.Sub(h.now())
	if remaining <= 0 || (h.ttl > 0 && remaining >= h.ttl) {
		return h.ttl
	}
	return remaining
}
