package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/fliplens/backend/config"
	httpDelivery "github.com/fliplens/backend/internal/delivery/http"
	"github.com/fliplens/backend/internal/infrastructure/aliexpress"
	"github.com/fliplens/backend/internal/infrastructure/cache"
	"github.com/fliplens/backend/internal/infrastructure/ebay"
	"github.com/fliplens/backend/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting FlipLens Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Three independent process-wide caches: final responses, item
	// searches, and sold-price quotes.
	responseCache := cache.NewMemoryCache()
	itemCache := cache.NewMemoryCache()
	quoteCache := cache.NewMemoryCache()
	log.Printf("Cache TTLs: response=%s items=%s quotes=%s (failed=%s)",
		cfg.Cache.ResponseTTL, cfg.Cache.ItemSearchTTL, cfg.Cache.SoldQuoteTTL, cfg.Cache.FailedQuoteTTL)

	aliClient := aliexpress.NewClient(cfg.RapidAPI.APIKey, cfg.RapidAPI.AliHost)
	ebayClient := ebay.NewClient(cfg.RapidAPI.APIKey, cfg.RapidAPI.EbayHost)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		aliClient.SetDebug(true)
		ebayClient.SetDebug(true)
		log.Printf("Provider client debug mode enabled")
	}

	keyPreview := cfg.RapidAPI.APIKey
	if len(keyPreview) > 8 {
		keyPreview = keyPreview[:8]
	}
	log.Printf("Providers: %s, %s (key: %s...)",
		cfg.RapidAPI.AliHost, cfg.RapidAPI.EbayHost, keyPreview)

	extractor := usecase.NewExtractor(usecase.ExtractorConfig{
		MaxNodes: cfg.Extractor.MaxNodes,
		Bounds: usecase.PriceBounds{
			CentsMin:      cfg.Extractor.CentsMin,
			CentsMax:      cfg.Extractor.CentsMax,
			StructuredMax: cfg.Extractor.StructuredPriceMax,
			StringMax:     cfg.Extractor.StringPriceMax,
		},
		EnableDebugLogging: cfg.Extractor.EnableDebugLogging,
	})

	// Initialize usecase layer
	arbitrageService := usecase.NewArbitrageService(
		responseCache,
		itemCache,
		quoteCache,
		aliClient,
		ebayClient,
		extractor,
		usecase.ArbitrageServiceConfig{
			ResponseTTL:        cfg.Cache.ResponseTTL,
			ItemSearchTTL:      cfg.Cache.ItemSearchTTL,
			SoldQuoteTTL:       cfg.Cache.SoldQuoteTTL,
			FailedQuoteTTL:     cfg.Cache.FailedQuoteTTL,
			EnableDebugLogging: cfg.Extractor.EnableDebugLogging,
			SeedQueries:        cfg.Budget.SeedQueries,
		},
	)

	limiter := httpDelivery.NewClientLimiter(cfg.RateLimit.PerClient, cfg.RateLimit.Window)
	log.Printf("Rate limit: %d requests per %s per client", cfg.RateLimit.PerClient, cfg.RateLimit.Window)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(arbitrageService, cfg.Budget)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, limiter)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
