package models

// TenantConfig is the static configuration record of one served brand.
// Records are built once at startup and handed out by value; nothing mutates
// them afterwards.
type TenantConfig struct {
	Domain         string      `yaml:"domain" json:"domain"`
	Name           string      `yaml:"name" json:"name"`
	Tagline        string      `yaml:"tagline" json:"tagline"`
	PrimaryColor   string      `yaml:"primary_color" json:"primary_color"`
	SecondaryColor string      `yaml:"secondary_color" json:"secondary_color"`
	Logo           string      `yaml:"logo" json:"logo"`
	Favicon        string      `yaml:"favicon" json:"favicon"`
	HeroBackground string      `yaml:"hero_background" json:"hero_background"`
	Contact        Contact     `yaml:"contact" json:"contact"`
	OAuth          OAuthClient `yaml:"oauth" json:"oauth"`
	Analytics      Analytics   `yaml:"analytics" json:"analytics"`
	Features       Features    `yaml:"features" json:"features"`
	SEO            SEO         `yaml:"seo" json:"seo"`
}

type Contact struct {
	Phone   string `yaml:"phone" json:"phone"`
	Email   string `yaml:"email" json:"email"`
	Address string `yaml:"address" json:"address"`
}

// OAuthClient holds the per-tenant OAuth registration.
type OAuthClient struct {
	ClientID    string `yaml:"client_id" json:"client_id"`
	RedirectURI string `yaml:"redirect_uri" json:"redirect_uri"`
}

// Analytics ids. Empty means the tenant has none configured.
type Analytics struct {
	GoogleAnalyticsID string `yaml:"google_analytics_id" json:"google_analytics_id,omitempty"`
	SentryDSN         string `yaml:"sentry_dsn" json:"sentry_dsn,omitempty"`
}

// Features is the per-tenant capability flag set.
type Features struct {
	AIEstimation          bool `yaml:"ai_estimation" json:"aiEstimation"`
	WindowMeasurement     bool `yaml:"window_measurement" json:"windowMeasurement"`
	ProductCatalog        bool `yaml:"product_catalog" json:"productCatalog"`
	CustomerPortal        bool `yaml:"customer_portal" json:"customerPortal"`
	AppointmentScheduling bool `yaml:"appointment_scheduling" json:"appointmentScheduling"`
	ChatSupport           bool `yaml:"chat_support" json:"chatSupport"`
}

// Feature names one capability flag.
type Feature string

const (
	FeatureAIEstimation          Feature = "aiEstimation"
	FeatureWindowMeasurement     Feature = "windowMeasurement"
	FeatureProductCatalog        Feature = "productCatalog"
	FeatureCustomerPortal        Feature = "customerPortal"
	FeatureAppointmentScheduling Feature = "appointmentScheduling"
	FeatureChatSupport           Feature = "chatSupport"
)

// Enabled reports whether f is switched on. Unknown features are off.
func (f Features) Enabled(feature Feature) bool {
	switch feature {
	case FeatureAIEstimation:
		return f.AIEstimation
	case FeatureWindowMeasurement:
		return f.WindowMeasurement
	case FeatureProductCatalog:
		return f.ProductCatalog
	case FeatureCustomerPortal:
		return f.CustomerPortal
	case FeatureAppointmentScheduling:
		return f.AppointmentScheduling
	case FeatureChatSupport:
		return f.ChatSupport
	default:
		return false
	}
}

type SEO struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Keywords    string `yaml:"keywords" json:"keywords"`
}

// Environment labels the deployment a host belongs to.
type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentTest        Environment = "test"
	EnvironmentDevelopment Environment = "development"
	EnvironmentUnknown     Environment = "unknown"
)
