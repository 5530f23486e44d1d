// Package resolver maps the host a request arrived on to its tenant record.
package resolver

import (
	_ "embed"
	"fmt"
	"net"
	"strings"

	"gopkg.in/yaml.v3"

	"gfe/internal/tenant/models"
)

const (
	// ProductionHost serves the live brand.
	ProductionHost = "goodfaithexteriors.com"
	// TestHost serves the testing brand.
	TestHost = "goodfaithwindows.com"
	// DevelopmentMarker identifies local development hosts.
	DevelopmentMarker = "localhost"
)

//go:embed tenants.yaml
var defaultTable []byte

// Table is the on-disk shape of the tenant table.
type Table struct {
	Default string                `yaml:"default"`
	Tenants []models.TenantConfig `yaml:"tenants"`
}

// Resolver is an immutable host → tenant lookup. It is safe for concurrent use.
type Resolver struct {
	byDomain map[string]models.TenantConfig
	// canonical domains in table order, default excluded
	order    []string
	fallback models.TenantConfig
}

// New builds a Resolver from table. The default domain must be present.
func New(table Table) (*Resolver, error) {
	r := &Resolver{byDomain: make(map[string]models.TenantConfig, len(table.Tenants))}
	defaultDomain := strings.ToLower(table.Default)

	for _, t := range table.Tenants {
		domain := strings.ToLower(strings.TrimSpace(t.Domain))
		if domain == "" {
			return nil, fmt.Errorf("tenant %q has no domain", t.Name)
		}
		if _, dup := r.byDomain[domain]; dup {
			return nil, fmt.Errorf("duplicate tenant domain %q", domain)
		}
		t.Domain = domain
		r.byDomain[domain] = t
		if domain != defaultDomain {
			r.order = append(r.order, domain)
		}
	}

	fallback, ok := r.byDomain[defaultDomain]
	if !ok {
		return nil, fmt.Errorf("default tenant %q is not in the table", table.Default)
	}
	r.fallback = fallback
	return r, nil
}

// Parse decodes a YAML tenant table and builds a Resolver from it.
func Parse(data []byte) (*Resolver, error) {
	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("decode tenant table: %w", err)
	}
	return New(table)
}

// Default returns a Resolver over the built-in tenant table.
func Default() (*Resolver, error) {
	return Parse(defaultTable)
}

// Resolve returns the tenant for host. Matching order: exact domain, then the
// first canonical domain contained in host, then the default record. It never
// fails.
func (r *Resolver) Resolve(host string) models.TenantConfig {
	if t, ok := r.byDomain[host]; ok {
		return t
	}
	for _, domain := range r.order {
		if strings.Contains(host, domain) {
			return r.byDomain[domain]
		}
	}
	return r.fallback
}

// Domains lists the canonical domains in table order, default last.
func (r *Resolver) Domains() []string {
	out := make([]string, 0, len(r.order)+1)
	out = append(out, r.order...)
	return append(out, r.fallback.Domain)
}

// NormalizeHost lowercases a Host header value and strips its port and any
// trailing dot.
func NormalizeHost(hostport string) string {
	host := strings.TrimSpace(hostport)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}

// Environment classifies host. Only the two brand domains are named
// explicitly; anything containing "localhost" is development.
func Environment(host string) models.Environment {
	switch {
	case host == ProductionHost:
		return models.EnvironmentProduction
	case host == TestHost:
		return models.EnvironmentTest
	case strings.Contains(host, DevelopmentMarker):
		return models.EnvironmentDevelopment
	default:
		return models.EnvironmentUnknown
	}
}

// IsProduction reports whether host is one of the live brand domains.
func IsProduction(host string) bool {
	return host == ProductionHost || host == TestHost
}

// IsTestEnvironment reports whether host serves test traffic.
func IsTestEnvironment(host string) bool {
	return host == TestHost || strings.Contains(host, "test") || strings.Contains(host, "staging")
}
