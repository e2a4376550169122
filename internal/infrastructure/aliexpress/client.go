package aliexpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/fliplens/backend/internal/domain"
	"golang.org/x/time/rate"
)

const rawHeadLen = 200

// Client handles communication with the AliExpress item-search provider
// on RapidAPI. Responses are parsed permissively: the provider's schema
// drifts between revisions, so anything that is not obviously a list of
// items degrades to an empty result instead of an error.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	host        string
	baseURL     string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new AliExpress search client for the given RapidAPI
// host
func NewClient(apiKey, host string) *Client {
	// Paid plan allows ~1000 requests per hour; the per-request budgets are
	// the real guard, this just smooths bursts across requests.
	limiter := rate.NewLimiter(rate.Limit(0.278), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		host:        host,
		baseURL:     "https://" + host,
		rateLimiter: limiter,
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

// SearchItems performs one item-search call for a query and page.
// A non-2xx status or unparsable body yields a result with zero items;
// only transport-level failures return an error.
func (c *Client) SearchItems(ctx context.Context, query string, page int) (*domain.ItemSearchResult, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	params := url.Values{}
	params.Add("q", query)
	params.Add("page", fmt.Sprintf("%d", page))
	params.Add("sort", "default")

	reqURL := fmt.Sprintf("%s/item_search_2?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("User-Agent", "FlipLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrUpstreamFailure, err)
	}

	result := &domain.ItemSearchResult{
		Status:  resp.StatusCode,
		URL:     reqURL,
		RawHead: rawHead(body),
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		// Malformed payload: keep the raw head for diagnostics, no items
		log.Printf("[ALI] Unparsable body for query %q (status %d)", query, resp.StatusCode)
		return result, nil
	}

	result.Items = locateItems(decoded)
	result.ProviderStatusCode = providerStatusCode(decoded)

	if c.debug {
		log.Printf("[ALI] query=%q page=%d status=%d items=%d provider_status=%s",
			query, page, resp.StatusCode, len(result.Items), result.ProviderStatusCode)
	}

	return result, nil
}

// itemPaths are the containers the provider has been observed to nest the
// item list under, across schema revisions.
var itemPaths = [][]string{
	{"result", "items"},
	{"result", "resultList"},
	{"data", "items"},
	{"items"},
}

// locateItems finds the item list in a decoded payload, trying each known
// container path in order.
func locateItems(decoded interface{}) []domain.RawItem {
	root, ok := decoded.(map[string]interface{})
	if !ok {
		return nil
	}

	for _, path := range itemPaths {
		raw, ok := lookupPath(root, path).([]interface{})
		if !ok {
			continue
		}
		items := make([]domain.RawItem, 0, len(raw))
		for _, it := range raw {
			items = append(items, domain.RawItem(it))
		}
		return items
	}

	return nil
}

// providerStatusCode pulls the provider's own status code out of the
// payload when present (result.status.code, or a scalar result.status).
func providerStatusCode(decoded interface{}) string {
	root, ok := decoded.(map[string]interface{})
	if !ok {
		return ""
	}

	status := lookupPath(root, []string{"result", "status"})
	if status == nil {
		return ""
	}

	if obj, ok := status.(map[string]interface{}); ok {
		if code, ok := obj["code"]; ok {
			return scalarString(code)
		}
		return ""
	}

	return scalarString(status)
}

// lookupPath walks nested objects by key; nil if any hop is missing or not
// an object.
func lookupPath(root map[string]interface{}, path []string) interface{} {
	var cur interface{} = root
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = obj[key]
		if !ok {
			return nil
		}
	}
	return cur
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; codes are integers
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}

func rawHead(body []byte) string {
	if len(body) > rawHeadLen {
		return string(body[:rawHeadLen])
	}
	return string(body)
}
