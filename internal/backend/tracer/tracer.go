// Package tracer is the tracing seam of the backend client.
//
// Calls and attempts are spans; the client never touches OpenTelemetry
// directly so tests can run against NoopTracer.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks it failed.
	// End must be called exactly once.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans and events.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// TokenFingerprint lets traces correlate calls made with the same bearer
// token without recording the token.
func TokenFingerprint(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:8])
}

const (
	SpanBackendCall    = "backend.call"
	SpanBackendAttempt = "backend.attempt"
)

const (
	AttrMethod           = "http.method"
	AttrPath             = "http.path"
	AttrStatus           = "http.status_code"
	AttrAttempt          = "backend.attempt"
	AttrRetries          = "backend.retries"
	AttrErrorKind        = "backend.error_kind"
	AttrTenantDomain     = "tenant.domain"
	AttrTokenFingerprint = "auth.token_fingerprint"
	AttrBackoff          = "backend.backoff_ms"
)

const (
	EventBackoff      = "backend.backoff"
	EventTokenCleared = "auth.token_cleared"
)
