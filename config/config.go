package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fliplens/backend/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	RapidAPI  RapidAPIConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	Budget    BudgetConfig
	Extractor ExtractorConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RapidAPIConfig holds the shared provider credential and the per-provider
// host identifiers. Both upstream feeds are consumed through the same
// RapidAPI subscription.
type RapidAPIConfig struct {
	APIKey   string `mapstructure:"api_key"`
	AliHost  string `mapstructure:"ali_host"`
	EbayHost string `mapstructure:"ebay_host"`
}

// CacheConfig holds the TTLs for the three process-wide caches. Failed
// sold-price lookups are cached on a shorter TTL so a rate-limited upstream
// is not re-hit immediately.
type CacheConfig struct {
	ResponseTTL    time.Duration `mapstructure:"response_ttl"`
	ItemSearchTTL  time.Duration `mapstructure:"item_search_ttl"`
	SoldQuoteTTL   time.Duration `mapstructure:"sold_quote_ttl"`
	FailedQuoteTTL time.Duration `mapstructure:"failed_quote_ttl"`
}

// RateLimitConfig holds the fixed-window client rate limit
type RateLimitConfig struct {
	PerClient int           `mapstructure:"per_client"`
	Window    time.Duration `mapstructure:"window"`
}

// BudgetConfig holds the per-request defaults and hard caps that protect
// paid upstream quota. Request parameters are clamped to the caps no matter
// what the caller asks for.
type BudgetConfig struct {
	DefaultTop       int `mapstructure:"default_top"`
	MaxTop           int `mapstructure:"max_top"`
	DefaultSeeds     int `mapstructure:"default_seeds"`
	MaxSeeds         int `mapstructure:"max_seeds"`
	DefaultPerSeed   int `mapstructure:"default_per_seed"`
	MaxPerSeed       int `mapstructure:"max_per_seed"`
	DefaultEbayCalls int `mapstructure:"default_ebay_calls"`
	MaxEbayCalls     int `mapstructure:"max_ebay_calls"`

	// SeedQueries overrides the built-in mixed seed list when set.
	SeedQueries []string `mapstructure:"seed_queries"`
}

// ExtractorConfig holds the heuristic bounds used by field extraction and
// price normalization. The defaults are tuned for consumer-gadget catalogs;
// other catalogs may need different bounds, which is why these are policy
// rather than constants.
type ExtractorConfig struct {
	MaxNodes           int     `mapstructure:"max_nodes"`
	CentsMin           int64   `mapstructure:"cents_min"`
	CentsMax           int64   `mapstructure:"cents_max"`
	StructuredPriceMax float64 `mapstructure:"structured_price_max"`
	StringPriceMax     float64 `mapstructure:"string_price_max"`
	EnableDebugLogging bool    `mapstructure:"enable_debug_logging"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/fliplens/")

	// Environment variable settings
	v.SetEnvPrefix("FLIPLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Provider defaults. The key has no usable default but must be
	// registered so the env binding is picked up during Unmarshal.
	v.SetDefault("rapidapi.api_key", "")
	v.SetDefault("rapidapi.ali_host", "aliexpress-datahub.p.rapidapi.com")
	v.SetDefault("rapidapi.ebay_host", "ebay-average-selling-price.p.rapidapi.com")

	// Cache defaults
	v.SetDefault("cache.response_ttl", "30m")
	v.SetDefault("cache.item_search_ttl", "6h")
	v.SetDefault("cache.sold_quote_ttl", "24h")
	v.SetDefault("cache.failed_quote_ttl", "30m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_client", 10)
	v.SetDefault("ratelimit.window", "10m")

	// Budget defaults
	v.SetDefault("budget.default_top", 25)
	v.SetDefault("budget.max_top", 50)
	v.SetDefault("budget.default_seeds", 2)
	v.SetDefault("budget.max_seeds", 2)
	v.SetDefault("budget.default_per_seed", 10)
	v.SetDefault("budget.max_per_seed", 10)
	v.SetDefault("budget.default_ebay_calls", 8)
	v.SetDefault("budget.max_ebay_calls", 10)

	// Extractor defaults
	v.SetDefault("extractor.max_nodes", 7000)
	v.SetDefault("extractor.cents_min", 1000)
	v.SetDefault("extractor.cents_max", 500000)
	v.SetDefault("extractor.structured_price_max", 5000)
	v.SetDefault("extractor.string_price_max", 10000)
	v.SetDefault("extractor.enable_debug_logging", false)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.RapidAPI.APIKey == "" {
		return fmt.Errorf("%w: RapidAPI key is required (set FLIPLENS_RAPIDAPI_API_KEY)", domain.ErrMissingCredentials)
	}

	if config.RapidAPI.AliHost == "" || config.RapidAPI.EbayHost == "" {
		return fmt.Errorf("provider hosts must not be empty")
	}

	if config.RateLimit.PerClient <= 0 || config.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit must be positive, got %d per %s",
			config.RateLimit.PerClient, config.RateLimit.Window)
	}

	if config.Budget.MaxSeeds <= 0 || config.Budget.MaxEbayCalls <= 0 {
		return fmt.Errorf("upstream call caps must be positive")
	}

	if config.Extractor.MaxNodes <= 0 {
		return fmt.Errorf("extractor max_nodes must be positive, got %d", config.Extractor.MaxNodes)
	}

	if config.Extractor.StructuredPriceMax <= 0 || config.Extractor.StringPriceMax <= 0 {
		return fmt.Errorf("price bounds must be positive")
	}

	return nil
}
