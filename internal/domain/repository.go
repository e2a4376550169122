package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AliexpressClient defines the interface for the AliExpress item-search provider
type AliexpressClient interface {
	SearchItems(ctx context.Context, query string, page int) (*ItemSearchResult, error)
}

// EbayClient defines the interface for the eBay completed-sales price provider
type EbayClient interface {
	AverageSoldPrice(ctx context.Context, keywords string) (*SoldQuote, error)
}
