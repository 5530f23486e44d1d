// Package requestcontext carries per-request values through context.Context.
package requestcontext

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestID returns the request ID stored in ctx, or "" when absent.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

const hostKey contextKey = "host"

// WithHost returns a copy of ctx carrying the normalized serving host.
func WithHost(ctx context.Context, host string) context.Context {
	return context.WithValue(ctx, hostKey, host)
}

// Host returns the serving host stored in ctx, or "" when absent.
func Host(ctx context.Context) string {
	if v, ok := ctx.Value(hostKey).(string); ok {
		return v
	}
	return ""
}

const clientIPKey contextKey = "client_ip"

// WithClientIP returns a copy of ctx carrying the client address.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client address stored in ctx, or "" when absent.
func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok {
		return v
	}
	return ""
}
