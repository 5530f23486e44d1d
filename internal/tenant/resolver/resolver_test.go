package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"gfe/internal/tenant/models"
)

type ResolverSuite struct {
	suite.Suite
	resolver *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupSuite() {
	r, err := Default()
	s.Require().NoError(err)
	s.resolver = r
}

func (s *ResolverSuite) TestExactMatch() {
	for _, domain := range s.resolver.Domains() {
		s.Equal(domain, s.resolver.Resolve(domain).Domain, "exact host %s", domain)
	}
}

func (s *ResolverSuite) TestSubdomainAliasing() {
	cases := map[string]string{
		"www.goodfaithexteriors.com":      ProductionHost,
		"staging.goodfaithwindows.com":    TestHost,
		"preview-42.goodfaithwindows.com": TestHost,
	}
	for host, want := range cases {
		s.Equal(want, s.resolver.Resolve(host).Domain, host)
	}
}

func (s *ResolverSuite) TestFallback() {
	for _, host := range []string{"", "example.org", "app.localhost", "10.0.0.7"} {
		got := s.resolver.Resolve(host)
		s.Equal("localhost", got.Domain, host)
		s.Equal("Good Faith Exteriors (Dev)", got.Name)
	}
}

func (s *ResolverSuite) TestTableContents() {
	prod := s.resolver.Resolve(ProductionHost)
	s.Equal("Good Faith Exteriors", prod.Name)
	s.Equal("https://goodfaithexteriors.com/auth/callback", prod.OAuth.RedirectURI)
	s.True(prod.Features.AIEstimation)
	s.True(prod.Features.ChatSupport)

	dev := s.resolver.Resolve("localhost")
	s.Empty(dev.Analytics.GoogleAnalyticsID)
	s.Empty(dev.Analytics.SentryDSN)
	s.True(dev.Features.CustomerPortal, "anchored feature set applies to every tenant")
}

func (s *ResolverSuite) TestReturnedRecordsAreCopies() {
	first := s.resolver.Resolve(ProductionHost)
	first.Name = "Tampered"
	first.Features.AIEstimation = false

	again := s.resolver.Resolve(ProductionHost)
	s.Equal("Good Faith Exteriors", again.Name)
	s.True(again.Features.AIEstimation)
}

func TestFirstContainedDomainWins(t *testing.T) {
	r, err := New(Table{
		Default: "fallback.test",
		Tenants: []models.TenantConfig{
			{Domain: "alpha.com", Name: "Alpha"},
			{Domain: "beta.com", Name: "Beta"},
			{Domain: "fallback.test", Name: "Fallback"},
		},
	})
	require.NoError(t, err)

	// contains both canonical domains; table order breaks the tie
	assert.Equal(t, "Alpha", r.Resolve("beta.com.alpha.com.cdn.net").Name)
	assert.Equal(t, "Beta", r.Resolve("shop.beta.com").Name)
}

func TestNewRejectsBadTables(t *testing.T) {
	_, err := New(Table{Default: "missing", Tenants: []models.TenantConfig{{Domain: "a.com"}}})
	assert.Error(t, err)

	_, err = New(Table{Default: "a.com", Tenants: []models.TenantConfig{{Domain: "a.com"}, {Domain: "A.com"}}})
	assert.Error(t, err)

	_, err = New(Table{Default: "a.com", Tenants: []models.TenantConfig{{Name: "nameless"}}})
	assert.Error(t, err)

	_, err = Parse([]byte("tenants: [oops"))
	assert.Error(t, err)
}

func TestEnvironment(t *testing.T) {
	assert.Equal(t, models.EnvironmentTest, Environment("goodfaithwindows.com"))
	assert.Equal(t, models.EnvironmentProduction, Environment("goodfaithexteriors.com"))
	assert.Equal(t, models.EnvironmentDevelopment, Environment("app.localhost"))
	assert.Equal(t, models.EnvironmentDevelopment, Environment("localhost"))
	assert.Equal(t, models.EnvironmentUnknown, Environment("www.goodfaithexteriors.com"))
	assert.Equal(t, models.EnvironmentUnknown, Environment("example.org"))
}

func TestEnvironmentHelpers(t *testing.T) {
	assert.True(t, IsProduction("goodfaithexteriors.com"))
	assert.True(t, IsProduction("goodfaithwindows.com"))
	assert.False(t, IsProduction("localhost"))

	assert.True(t, IsTestEnvironment("goodfaithwindows.com"))
	assert.True(t, IsTestEnvironment("staging.goodfaithexteriors.com"))
	assert.True(t, IsTestEnvironment("qa-test.example"))
	assert.False(t, IsTestEnvironment("goodfaithexteriors.com"))
}

func TestNormalizeHost(t *testing.T) {
	assert.Equal(t, "localhost", NormalizeHost("localhost:5174"))
	assert.Equal(t, "goodfaithwindows.com", NormalizeHost("GoodFaithWindows.com."))
	assert.Equal(t, "::1", NormalizeHost("[::1]:8080"))
	assert.Equal(t, "goodfaithexteriors.com", NormalizeHost(" goodfaithexteriors.com "))
}
