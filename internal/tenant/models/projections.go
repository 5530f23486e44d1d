package models

import (
	"net/http"
	"time"
)

// Branding is the presentation-facing identity of a tenant.
type Branding struct {
	Name    string  `json:"name"`
	Tagline string  `json:"tagline"`
	Logo    string  `json:"logo"`
	Favicon string  `json:"favicon"`
	Colors  Colors  `json:"colors"`
	Contact Contact `json:"contact"`
}

type Colors struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

func (c TenantConfig) Branding() Branding {
	return Branding{
		Name:    c.Name,
		Tagline: c.Tagline,
		Logo:    c.Logo,
		Favicon: c.Favicon,
		Colors:  Colors{Primary: c.PrimaryColor, Secondary: c.SecondaryColor},
		Contact: c.Contact,
	}
}

func (c TenantConfig) FeatureFlags() Features {
	return c.Features
}

func (c TenantConfig) SEOMetadata() SEO {
	return c.SEO
}

// AnalyticsIDs returns the analytics and error-reporting ids; either may be empty.
func (c TenantConfig) AnalyticsIDs() Analytics {
	return c.Analytics
}

// Header names sent on every backend request.
const (
	HeaderDomain        = "X-Domain"
	HeaderClientVersion = "X-Client-Version"
)

// BackendSettings are the deployment-wide backend parameters.
type BackendSettings struct {
	BaseURL       string
	Timeout       time.Duration
	Retries       int
	ClientVersion string
}

// APIBase is everything the backend client needs for one serving host.
type APIBase struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	headers http.Header
}

// NewAPIBase projects the backend settings for a request arriving on host.
func NewAPIBase(host string, s BackendSettings) APIBase {
	h := make(http.Header, 3)
	h.Set("Content-Type", "application/json")
	h.Set(HeaderDomain, host)
	h.Set(HeaderClientVersion, s.ClientVersion)
	return APIBase{
		BaseURL: s.BaseURL,
		Timeout: s.Timeout,
		Retries: s.Retries,
		headers: h,
	}
}

// Headers returns a copy of the static header set.
func (a APIBase) Headers() http.Header {
	return a.headers.Clone()
}

// OAuthEndpoints are the identity provider's fixed endpoints and scope.
type OAuthEndpoints struct {
	AuthorizeURL string
	TokenURL     string
	Scope        string
}

// OAuthParams is the OAuth projection for one authorization round trip.
type OAuthParams struct {
	ClientID     string `json:"client_id"`
	AuthorizeURL string `json:"authorization_url"`
	TokenURL     string `json:"token_url"`
	Scope        string `json:"scope"`
	RedirectURI  string `json:"redirect_uri"`
	State        string `json:"state"`
}

// OAuthProjection builds OAuth parameters with a state drawn from newState.
// Every call draws a fresh state.
func (c TenantConfig) OAuthProjection(e OAuthEndpoints, newState func() (string, error)) (OAuthParams, error) {
	state, err := newState()
	if err != nil {
		return OAuthParams{}, err
	}
	return OAuthParams{
		ClientID:     c.OAuth.ClientID,
		AuthorizeURL: e.AuthorizeURL,
		TokenURL:     e.TokenURL,
		Scope:        e.Scope,
		RedirectURI:  c.OAuth.RedirectURI,
		State:        state,
	}, nil
}
