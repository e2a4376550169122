package ebay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/fliplens/backend/internal/domain"
	"golang.org/x/time/rate"
)

// DefaultLink is returned when the provider does not supply a search URL
const DefaultLink = "https://www.ebay.com"

// Client handles communication with the eBay completed-sales average-price
// provider on RapidAPI.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	host        string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool

	// MaxSearchResults is the sample size requested per keyword lookup
	MaxSearchResults int
}

// soldRequest is the provider's request body
type soldRequest struct {
	Keywords         string `json:"keywords"`
	MaxSearchResults int    `json:"max_search_results"`
	SiteID           string `json:"site_id"`
}

// NewClient creates a new completed-sales price client for the given
// RapidAPI host
func NewClient(apiKey, host string) *Client {
	limiter := rate.NewLimiter(rate.Limit(0.278), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:           apiKey,
		host:             host,
		baseURL:          "https://" + host,
		rateLimiter:      limiter,
		MaxSearchResults: 30,
	}
}

// SetDebug enables verbose logging of provider responses
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetBaseURL overrides the provider endpoint (used by tests)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// AverageSoldPrice looks up the average completed-sale price for a keyword
// phrase. A denied or malformed upstream response degrades to a zero quote
// carrying the HTTP status so callers can cache it on the failure TTL;
// only transport-level failures return an error.
func (c *Client) AverageSoldPrice(ctx context.Context, keywords string) (*domain.SoldQuote, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	payload, err := json.Marshal(soldRequest{
		Keywords:         keywords,
		MaxSearchResults: c.MaxSearchResults,
		SiteID:           "0",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/findCompletedItems", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("User-Agent", "FlipLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Rate-limited or denied upstream: hand back a zero quote rather
		// than an error so the caller can cache it briefly and move on.
		log.Printf("[EBAY] keywords=%q denied with status %d", keywords, resp.StatusCode)
		return &domain.SoldQuote{AvgPrice: 0, Link: DefaultLink, HTTPStatus: resp.StatusCode}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamFailure, err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		log.Printf("[EBAY] keywords=%q unparsable body", keywords)
		return &domain.SoldQuote{AvgPrice: 0, Link: DefaultLink, HTTPStatus: resp.StatusCode}, nil
	}

	quote := &domain.SoldQuote{
		AvgPrice: averagePrice(decoded),
		Link:     searchLink(decoded),
	}

	if c.debug {
		log.Printf("[EBAY] keywords=%q avg=%.2f", keywords, quote.AvgPrice)
	}

	return quote, nil
}

// averagePriceKeys are the fields the average has been observed under
// across provider revisions.
var averagePriceKeys = []string{"average_price", "avg_price"}

// averagePrice digs the average sold price out of the response, tolerating
// both numeric and string representations.
func averagePrice(decoded map[string]interface{}) float64 {
	for _, key := range averagePriceKeys {
		if v, ok := decoded[key]; ok {
			if p := coerceFloat(v); p > 0 {
				return p
			}
		}
	}
	if data, ok := decoded["data"].(map[string]interface{}); ok {
		if v, ok := data["average_price"]; ok {
			if p := coerceFloat(v); p > 0 {
				return p
			}
		}
	}
	return 0
}

func searchLink(decoded map[string]interface{}) string {
	if s, ok := decoded["search_url"].(string); ok && s != "" {
		return s
	}
	return DefaultLink
}

func coerceFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
