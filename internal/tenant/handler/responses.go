package handler

import (
	"gfe/internal/tenant/models"
	"gfe/internal/tenant/resolver"
)

// SiteResponse is everything presentation code reads about the tenant.
type SiteResponse struct {
	Host        string             `json:"host"`
	Environment models.Environment `json:"environment"`
	Branding    models.Branding    `json:"branding"`
	Features    models.Features    `json:"features"`
	SEO         models.SEO         `json:"seo"`
	Analytics   AnalyticsResponse  `json:"analytics"`
}

// AnalyticsResponse renders absent ids as null.
type AnalyticsResponse struct {
	AnalyticsID *string `json:"analyticsId"`
	SentryDSN   *string `json:"sentryDsn"`
}

func toSiteResponse(host string, cfg models.TenantConfig) SiteResponse {
	a := cfg.AnalyticsIDs()
	return SiteResponse{
		Host:        host,
		Environment: resolver.Environment(host),
		Branding:    cfg.Branding(),
		Features:    cfg.FeatureFlags(),
		SEO:         cfg.SEOMetadata(),
		Analytics: AnalyticsResponse{
			AnalyticsID: optional(a.GoogleAnalyticsID),
			SentryDSN:   optional(a.SentryDSN),
		},
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
