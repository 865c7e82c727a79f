package config

import "time"

type Config struct {
	App            AppConfig            `mapstructure:"app"`
	HTTP           HTTPConfig           `mapstructure:"http"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Datasets       DatasetsConfig       `mapstructure:"datasets"`
	Catalog        CatalogConfig        `mapstructure:"catalog"`
	Costs          CostsConfig          `mapstructure:"costs"`
	Analytics      AnalyticsConfig      `mapstructure:"analytics"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	BodyLimit    int           `mapstructure:"body_limit"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
	ExposeHeaders  []string `mapstructure:"expose_headers"`
	MaxAge         int      `mapstructure:"max_age"`
	Credentials    bool     `mapstructure:"credentials"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatasetsConfig points at the externally published CSV datasets used by the
// read-only dashboard endpoints. Fetch failures fall back to bundled samples.
type DatasetsConfig struct {
	OrdersURL      string        `mapstructure:"orders_url"`
	ActiveUsersURL string        `mapstructure:"active_users_url"`
	FetchTimeout   time.Duration `mapstructure:"fetch_timeout"`
}

// CatalogConfig is the immutable SKU/vertical lookup data injected into the
// normalizer. Defaults cover the production catalog; tests supply their own.
type CatalogConfig struct {
	// Verticals is the closed set of vertical labels, e.g. "pom hl".
	Verticals []string `mapstructure:"verticals"`
	// SKUVerticals maps a lower-case SKU label to its vertical.
	SKUVerticals map[string]string `mapstructure:"sku_verticals"`
	// CompactVerticals maps no-space variants ("pomhl") to vertical labels.
	CompactVerticals map[string]string `mapstructure:"compact_verticals"`
	// SubscriptionVerticals are the verticals whose purchase implies a
	// multi-month coverage window; everything else is one-time.
	SubscriptionVerticals []string `mapstructure:"subscription_verticals"`
	// VerticalPriority orders verticals for first-category cohort assignment.
	VerticalPriority []string `mapstructure:"vertical_priority"`
	// PlaceholderOrderIDs are order id values that must not be trusted as
	// dedup identity ("stripe" imports reuse one id for a whole batch).
	PlaceholderOrderIDs []string `mapstructure:"placeholder_order_ids"`
}

// CostsConfig carries the two per-SKU cost-of-goods tables and the month at
// which the pricing regime switches from Legacy to Current.
type CostsConfig struct {
	Legacy        map[string]float64 `mapstructure:"legacy"`
	Current       map[string]float64 `mapstructure:"current"`
	CutoverMonth  string             `mapstructure:"cutover_month"` // YYYY-MM
	RepricedLabel string             `mapstructure:"repriced_label"`
}

type AnalyticsConfig struct {
	// MaxOffsetMonths caps cohort offsets (m = 0..MaxOffsetMonths).
	MaxOffsetMonths int `mapstructure:"max_offset_months"`
	// OnetimeWindowDays is the coverage window of a one-time purchase.
	OnetimeWindowDays int `mapstructure:"onetime_window_days"`
	// AsOfMonth optionally pins the as-of month (YYYY-MM) instead of
	// deriving it from the clock; used for reproducible batch runs.
	AsOfMonth string `mapstructure:"as_of_month"`
}

type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	FailureThreshold uint32        `mapstructure:"failure_threshold"`
	SuccessThreshold uint32        `mapstructure:"success_threshold"`
}

// IsSubscriptionVertical reports whether the vertical implies a subscription
// coverage window.
func (c CatalogConfig) IsSubscriptionVertical(vertical string) bool {
	for _, v := range c.SubscriptionVerticals {
		if v == vertical {
			return true
		}
	}
	return false
}

// IsPlaceholderOrderID reports whether the raw order id is a known batch
// placeholder rather than a real identity.
func (c CatalogConfig) IsPlaceholderOrderID(id string) bool {
	for _, v := range c.PlaceholderOrderIDs {
		if v == id {
			return true
		}
	}
	return false
}
