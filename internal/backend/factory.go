package backend

import "gfe/internal/tenant/models"

// Factory builds per-request clients that share transport, tracer, metrics
// and logger.
type Factory struct {
	settings models.BackendSettings
	opts     []Option
}

func NewFactory(settings models.BackendSettings, opts ...Option) *Factory {
	return &Factory{settings: settings, opts: opts}
}

// For returns a client for a request served on host, acting for tokens.
func (f *Factory) For(host string, tokens TokenStore) *Client {
	return New(models.NewAPIBase(host, f.settings), tokens, f.opts...)
}
