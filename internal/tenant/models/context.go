package models

import "context"

type contextKeyTenant struct{}

// WithTenant attaches the tenant resolved for the current request.
func WithTenant(ctx context.Context, cfg TenantConfig) context.Context {
	return context.WithValue(ctx, contextKeyTenant{}, cfg)
}

// TenantFromContext returns the tenant installed by the resolution middleware.
func TenantFromContext(ctx context.Context) (TenantConfig, bool) {
	cfg, ok := ctx.Value(contextKeyTenant{}).(TenantConfig)
	return cfg, ok
}
