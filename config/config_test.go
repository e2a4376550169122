package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		os.Unsetenv("FLIPLENS_SERVER_PORT")
		os.Unsetenv("FLIPLENS_SERVER_ENVIRONMENT")
		os.Unsetenv("FLIPLENS_RAPIDAPI_API_KEY")
		os.Unsetenv("FLIPLENS_RAPIDAPI_ALI_HOST")
		os.Unsetenv("FLIPLENS_RAPIDAPI_EBAY_HOST")
		os.Unsetenv("FLIPLENS_CACHE_RESPONSE_TTL")
		os.Unsetenv("FLIPLENS_CACHE_ITEM_SEARCH_TTL")
		os.Unsetenv("FLIPLENS_CACHE_SOLD_QUOTE_TTL")
		os.Unsetenv("FLIPLENS_CACHE_FAILED_QUOTE_TTL")
		os.Unsetenv("FLIPLENS_RATELIMIT_PER_CLIENT")
		os.Unsetenv("FLIPLENS_RATELIMIT_WINDOW")
		os.Unsetenv("FLIPLENS_BUDGET_MAX_EBAY_CALLS")
		os.Unsetenv("FLIPLENS_EXTRACTOR_MAX_NODES")
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		// Set required API key
		os.Setenv("FLIPLENS_RAPIDAPI_API_KEY", "test-key")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		// Check defaults
		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.RapidAPI.AliHost != "aliexpress-datahub.p.rapidapi.com" {
			t.Errorf("RapidAPI.AliHost = %s, want aliexpress-datahub.p.rapidapi.com", cfg.RapidAPI.AliHost)
		}
		if cfg.RapidAPI.EbayHost != "ebay-average-selling-price.p.rapidapi.com" {
			t.Errorf("RapidAPI.EbayHost = %s, want ebay-average-selling-price.p.rapidapi.com", cfg.RapidAPI.EbayHost)
		}
		if cfg.Cache.ResponseTTL != 30*time.Minute {
			t.Errorf("Cache.ResponseTTL = %v, want 30m", cfg.Cache.ResponseTTL)
		}
		if cfg.Cache.ItemSearchTTL != 6*time.Hour {
			t.Errorf("Cache.ItemSearchTTL = %v, want 6h", cfg.Cache.ItemSearchTTL)
		}
		if cfg.Cache.SoldQuoteTTL != 24*time.Hour {
			t.Errorf("Cache.SoldQuoteTTL = %v, want 24h", cfg.Cache.SoldQuoteTTL)
		}
		if cfg.Cache.FailedQuoteTTL != 30*time.Minute {
			t.Errorf("Cache.FailedQuoteTTL = %v, want 30m", cfg.Cache.FailedQuoteTTL)
		}
		if cfg.RateLimit.PerClient != 10 {
			t.Errorf("RateLimit.PerClient = %d, want 10", cfg.RateLimit.PerClient)
		}
		if cfg.RateLimit.Window != 10*time.Minute {
			t.Errorf("RateLimit.Window = %v, want 10m", cfg.RateLimit.Window)
		}
		if cfg.Budget.DefaultTop != 25 || cfg.Budget.MaxTop != 50 {
			t.Errorf("Budget top = %d/%d, want 25/50", cfg.Budget.DefaultTop, cfg.Budget.MaxTop)
		}
		if cfg.Budget.DefaultSeeds != 2 || cfg.Budget.MaxSeeds != 2 {
			t.Errorf("Budget seeds = %d/%d, want 2/2", cfg.Budget.DefaultSeeds, cfg.Budget.MaxSeeds)
		}
		if cfg.Budget.DefaultEbayCalls != 8 || cfg.Budget.MaxEbayCalls != 10 {
			t.Errorf("Budget ebay calls = %d/%d, want 8/10", cfg.Budget.DefaultEbayCalls, cfg.Budget.MaxEbayCalls)
		}
		if cfg.Extractor.MaxNodes != 7000 {
			t.Errorf("Extractor.MaxNodes = %d, want 7000", cfg.Extractor.MaxNodes)
		}
		if cfg.Extractor.StructuredPriceMax != 5000 {
			t.Errorf("Extractor.StructuredPriceMax = %v, want 5000", cfg.Extractor.StructuredPriceMax)
		}
		if cfg.Extractor.StringPriceMax != 10000 {
			t.Errorf("Extractor.StringPriceMax = %v, want 10000", cfg.Extractor.StringPriceMax)
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FLIPLENS_SERVER_PORT", "9090")
		os.Setenv("FLIPLENS_SERVER_ENVIRONMENT", "production")
		os.Setenv("FLIPLENS_RAPIDAPI_API_KEY", "custom-api-key")
		os.Setenv("FLIPLENS_RAPIDAPI_ALI_HOST", "custom-ali.example.com")
		os.Setenv("FLIPLENS_CACHE_RESPONSE_TTL", "5m")
		os.Setenv("FLIPLENS_RATELIMIT_PER_CLIENT", "20")
		os.Setenv("FLIPLENS_EXTRACTOR_MAX_NODES", "500")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.RapidAPI.APIKey != "custom-api-key" {
			t.Errorf("RapidAPI.APIKey = %s, want custom-api-key", cfg.RapidAPI.APIKey)
		}
		if cfg.RapidAPI.AliHost != "custom-ali.example.com" {
			t.Errorf("RapidAPI.AliHost = %s, want custom-ali.example.com", cfg.RapidAPI.AliHost)
		}
		if cfg.Cache.ResponseTTL != 5*time.Minute {
			t.Errorf("Cache.ResponseTTL = %v, want 5m", cfg.Cache.ResponseTTL)
		}
		if cfg.RateLimit.PerClient != 20 {
			t.Errorf("RateLimit.PerClient = %d, want 20", cfg.RateLimit.PerClient)
		}
		if cfg.Extractor.MaxNodes != 500 {
			t.Errorf("Extractor.MaxNodes = %d, want 500", cfg.Extractor.MaxNodes)
		}
	})

	t.Run("fails validation when API key is missing", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for missing API key")
		}
		if err != nil && !strings.Contains(err.Error(), "RapidAPI key is required") {
			t.Errorf("Load() error = %v, want 'RapidAPI key is required'", err)
		}
	})

	t.Run("fails validation for non-positive rate limit", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FLIPLENS_RAPIDAPI_API_KEY", "test-key")
		os.Setenv("FLIPLENS_RATELIMIT_PER_CLIENT", "0")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for zero rate limit")
		}
	})

	t.Run("fails validation for non-positive extractor node budget", func(t *testing.T) {
		cleanupEnv()
		os.Setenv("FLIPLENS_RAPIDAPI_API_KEY", "test-key")
		os.Setenv("FLIPLENS_EXTRACTOR_MAX_NODES", "-1")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for negative node budget")
		}
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			RapidAPI: RapidAPIConfig{
				APIKey:   "key",
				AliHost:  "ali.example.com",
				EbayHost: "ebay.example.com",
			},
			RateLimit: RateLimitConfig{PerClient: 10, Window: 10 * time.Minute},
			Budget:    BudgetConfig{MaxSeeds: 2, MaxEbayCalls: 10},
			Extractor: ExtractorConfig{
				MaxNodes:           7000,
				StructuredPriceMax: 5000,
				StringPriceMax:     10000,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"missing api key", func(c *Config) { c.RapidAPI.APIKey = "" }, true},
		{"empty ali host", func(c *Config) { c.RapidAPI.AliHost = "" }, true},
		{"empty ebay host", func(c *Config) { c.RapidAPI.EbayHost = "" }, true},
		{"zero rate window", func(c *Config) { c.RateLimit.Window = 0 }, true},
		{"zero seed cap", func(c *Config) { c.Budget.MaxSeeds = 0 }, true},
		{"zero quote budget cap", func(c *Config) { c.Budget.MaxEbayCalls = 0 }, true},
		{"zero node budget", func(c *Config) { c.Extractor.MaxNodes = 0 }, true},
		{"zero string bound", func(c *Config) { c.Extractor.StringPriceMax = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
