// Package session keeps per-browsing-context state: the backend access token
// and the pending OAuth state. A browsing context is identified by an opaque
// cookie id; values never cross contexts.
package session

import (
	"context"
	"time"
)

// Persisted keys. These names are shared with the browser-side storage the
// site used before the server existed and must not change.
const (
	KeyAccessToken = "gfe_access_token"
	KeyOAuthState  = "oauth_state"
)

// Store is a keyed string store scoped by browsing-context id.
//
// Error Contract:
// - Get returns sentinel.ErrNotFound (wrapped) when the key is absent or expired
// - Delete of an absent key is not an error
// - Infrastructure failures are returned wrapped with context
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID, key string) error
}
