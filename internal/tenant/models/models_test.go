package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTenant() TenantConfig {
	return TenantConfig{
		Domain:         "goodfaithexteriors.com",
		Name:           "Good Faith Exteriors",
		Tagline:        "Premium Window & Door Solutions",
		PrimaryColor:   "#d4af37",
		SecondaryColor: "#1a2332",
		Logo:           "https://cdn.example/logo.png",
		Favicon:        "https://cdn.example/favicon.png",
		Contact:        Contact{Phone: "(555) 123-4567", Email: "info@goodfaithexteriors.com"},
		OAuth:          OAuthClient{ClientID: "client-1", RedirectURI: "https://goodfaithexteriors.com/auth/callback"},
		Analytics:      Analytics{GoogleAnalyticsID: "GA-1"},
		Features:       Features{AIEstimation: true, ChatSupport: false, ProductCatalog: true},
		SEO:            SEO{Title: "GFE", Description: "Windows", Keywords: "windows, doors"},
	}
}

func TestBranding(t *testing.T) {
	b := sampleTenant().Branding()

	assert.Equal(t, "Good Faith Exteriors", b.Name)
	assert.Equal(t, Colors{Primary: "#d4af37", Secondary: "#1a2332"}, b.Colors)
	assert.Equal(t, "info@goodfaithexteriors.com", b.Contact.Email)
}

func TestFeatures(t *testing.T) {
	f := sampleTenant().FeatureFlags()

	assert.True(t, f.Enabled(FeatureAIEstimation))
	assert.True(t, f.Enabled(FeatureProductCatalog))
	assert.False(t, f.Enabled(FeatureChatSupport))
	assert.False(t, f.Enabled(Feature("teleportation")))
}

func TestAnalyticsAbsentValues(t *testing.T) {
	a := sampleTenant().AnalyticsIDs()
	assert.Equal(t, "GA-1", a.GoogleAnalyticsID)
	assert.Empty(t, a.SentryDSN)
}

func TestAPIBase(t *testing.T) {
	base := NewAPIBase("goodfaithwindows.com", BackendSettings{
		BaseURL:       "https://backend.example",
		Timeout:       10 * time.Second,
		Retries:       3,
		ClientVersion: "1.0.0",
	})

	assert.Equal(t, 10*time.Second, base.Timeout)
	assert.Equal(t, 3, base.Retries)
	h := base.Headers()
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "goodfaithwindows.com", h.Get(HeaderDomain))
	assert.Equal(t, "1.0.0", h.Get(HeaderClientVersion))

	t.Run("headers handed out are copies", func(t *testing.T) {
		h.Set(HeaderDomain, "evil.example")
		h.Set("Authorization", "Bearer stolen")
		fresh := base.Headers()
		assert.Equal(t, "goodfaithwindows.com", fresh.Get(HeaderDomain))
		assert.Empty(t, fresh.Get("Authorization"))
		assert.Len(t, fresh, 3)
	})
}

func TestOAuthProjection(t *testing.T) {
	endpoints := OAuthEndpoints{
		AuthorizeURL: "https://idp.example/authorize",
		TokenURL:     "https://idp.example/token",
		Scope:        "offline_access",
	}

	t.Run("draws a fresh state per call", func(t *testing.T) {
		n := 0
		next := func() (string, error) {
			n++
			return []string{"s1", "s2"}[n-1], nil
		}
		first, err := sampleTenant().OAuthProjection(endpoints, next)
		require.NoError(t, err)
		second, err := sampleTenant().OAuthProjection(endpoints, next)
		require.NoError(t, err)

		assert.Equal(t, "s1", first.State)
		assert.Equal(t, "s2", second.State)
		assert.Equal(t, "client-1", first.ClientID)
		assert.Equal(t, "offline_access", first.Scope)
		assert.Equal(t, "https://goodfaithexteriors.com/auth/callback", first.RedirectURI)
	})

	t.Run("propagates state generation failure", func(t *testing.T) {
		boom := errors.New("entropy exhausted")
		_, err := sampleTenant().OAuthProjection(endpoints, func() (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)
	})
}
