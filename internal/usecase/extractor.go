package usecase

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/fliplens/backend/internal/domain"
)

// Candidate field names per extracted attribute, matched case-insensitively
// anywhere in the payload tree. Order within a matched node follows sorted
// key order, so extraction is deterministic regardless of map iteration.
var (
	idFieldNames = []string{
		"itemId", "item_id", "productId", "product_id", "id", "offerId", "offer_id",
	}

	titleFieldNames = []string{
		"title", "productTitle", "product_title", "name", "itemTitle", "item_title",
	}

	linkFieldNames = []string{
		"product_url", "productUrl", "item_url", "itemUrl", "detail_url", "detailUrl", "url",
	}

	priceFieldNames = []string{
		"sale_price_format", "price_format", "price_str",
		"salePrice", "sale_price",
		"currentPrice", "current_price",
		"price",
		"minPrice", "min_price",
		"final_price", "finalPrice",
	}

	innerAmountFieldNames = []string{"value", "amount", "current", "min", "max", "price"}
)

// Structured sub-paths where the dominant provider payload shape nests the
// item price. Tried before the generic key search as a fast path.
var priceFastPaths = [][]string{
	{"sku", "def", "promotionPrice"},
	{"sku", "def", "price"},
	{"prices", "sale_price", "formattedPrice"},
}

var (
	itemDetailURLRegex = regexp.MustCompile(`(?i)aliexpress\.com/item/`)
	marketplaceRegex   = regexp.MustCompile(`(?i)aliexpress\.com`)
)

// ExtractorConfig holds tunables for the field extractor
type ExtractorConfig struct {
	MaxNodes           int
	Bounds             PriceBounds
	EnableDebugLogging bool
}

// Extractor recovers identity, title, link, and price fields from raw
// provider items whose schema is untrusted and drifts between revisions.
// It works by bounded depth-first search over the decoded JSON tree with
// prioritized key-name matching, so it never depends on any single payload
// shape.
type Extractor struct {
	maxNodes           int
	bounds             PriceBounds
	enableDebugLogging bool
}

// NewExtractor creates an extractor with the given configuration
func NewExtractor(config ExtractorConfig) *Extractor {
	maxNodes := config.MaxNodes
	if maxNodes <= 0 {
		maxNodes = 7000 // safety valve against pathological payloads
	}

	bounds := config.Bounds
	if bounds.StructuredMax <= 0 {
		bounds = DefaultPriceBounds()
	}

	return &Extractor{
		maxNodes:           maxNodes,
		bounds:             bounds,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Product extracts the full normalized view of one raw item
func (e *Extractor) Product(item domain.RawItem) domain.ExtractedProduct {
	product := domain.ExtractedProduct{
		ID:    e.ID(item),
		Title: e.Title(item),
		Price: e.Price(item),
		Link:  e.Link(item),
	}
	if e.enableDebugLogging {
		log.Printf("[ALI] Extracted id=%q price=%.2f title=%q", product.ID, product.Price, product.Title)
	}
	return product
}

// ID extracts the item identity; empty string means no identity
func (e *Extractor) ID(item domain.RawItem) string {
	v := e.deepGetByKey(item, idFieldNames)
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// identifiers arrive as JSON numbers in some revisions
		return strconv64(t)
	default:
		return ""
	}
}

// Title extracts the item title, trimmed; empty string means unextractable
func (e *Extractor) Title(item domain.RawItem) string {
	v := e.deepGetByKey(item, titleFieldNames)
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// Link extracts the canonical listing link. Strings matching the item
// detail URL pattern win over anything merely on the marketplace domain,
// which wins over conventionally named url fields.
func (e *Extractor) Link(item domain.RawItem) string {
	if s := e.deepFindString(item, func(s string) bool {
		return itemDetailURLRegex.MatchString(s)
	}); s != "" {
		return NormalizeLink(s)
	}

	if s := e.deepFindString(item, func(s string) bool {
		return marketplaceRegex.MatchString(s)
	}); s != "" {
		return NormalizeLink(s)
	}

	if s, ok := e.deepGetByKey(item, linkFieldNames).(string); ok {
		return NormalizeLink(s)
	}
	return ""
}

// Price extracts the item price, or 0 when no plausible price is found.
// Tiers: structured fast paths for the dominant payload shape, then the
// generic prioritized key search, then a last-resort scan for any string
// that looks like a price.
func (e *Extractor) Price(item domain.RawItem) float64 {
	for _, path := range priceFastPaths {
		switch t := digPath(item, path).(type) {
		case float64:
			if p := e.bounds.NormalizeNumeric(t); p > 0 {
				return p
			}
		case string:
			if p := e.clampStructured(e.bounds.ParsePriceString(t)); p > 0 {
				return p
			}
		}
	}

	// A matched numeric or string field is final even when it normalizes
	// to zero: scanning further would risk promoting an unrelated number.
	// Only an object with no recognizable inner amount falls through.
	switch t := e.deepGetByKey(item, priceFieldNames).(type) {
	case float64:
		return e.bounds.NormalizeNumeric(t)
	case string:
		return e.clampStructured(e.bounds.ParsePriceString(t))
	case map[string]interface{}:
		switch inner := e.deepGetByKey(t, innerAmountFieldNames).(type) {
		case float64:
			return e.bounds.NormalizeNumeric(inner)
		case string:
			return e.clampStructured(e.bounds.ParsePriceString(inner))
		}
	}

	priceLike := e.deepFindString(item, e.bounds.LooksLikePrice)
	if priceLike == "" {
		return 0
	}
	return e.clampStructured(e.bounds.ParsePriceString(priceLike))
}

// clampStructured zeroes string-parsed amounts that exceed the structured
// sanity bound
func (e *Extractor) clampStructured(n float64) float64 {
	if n > 0 && n < e.bounds.StructuredMax {
		return n
	}
	return 0
}

// deepGetByKey finds the first object node anywhere in the tree that owns
// at least one of the candidate keys (case-insensitive) and returns that
// key's value. Candidate order is a preference only within the key set;
// the first matching node in traversal order decides.
func (e *Extractor) deepGetByKey(root interface{}, keys []string) interface{} {
	keySet := make(map[string]bool, len(keys))
	for _, k := range keys {
		keySet[strings.ToLower(k)] = true
	}

	found := e.deepFindFirst(root, func(v interface{}) bool {
		obj, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		for k := range obj {
			if keySet[strings.ToLower(k)] {
				return true
			}
		}
		return false
	})

	obj, ok := found.(map[string]interface{})
	if !ok {
		return nil
	}
	for _, k := range sortedKeys(obj) {
		if keySet[strings.ToLower(k)] {
			return obj[k]
		}
	}
	return nil
}

// deepFindFirst runs an iterative depth-first search over the JSON tree
// and returns the first value satisfying the predicate, or nil. Traversal
// stops silently once maxNodes values have been visited.
func (e *Extractor) deepFindFirst(root interface{}, predicate func(interface{}) bool) interface{} {
	stack := []interface{}{root}
	nodes := 0

	for len(stack) > 0 && nodes < e.maxNodes {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		if predicate(cur) {
			return cur
		}

		switch t := cur.(type) {
		case []interface{}:
			// push reversed so elements pop in order
			for i := len(t) - 1; i >= 0; i-- {
				stack = append(stack, t[i])
			}
		case map[string]interface{}:
			keys := sortedKeys(t)
			for i := len(keys) - 1; i >= 0; i-- {
				stack = append(stack, t[keys[i]])
			}
		}
	}
	return nil
}

// deepFindString finds the first string value satisfying the predicate
func (e *Extractor) deepFindString(root interface{}, predicate func(string) bool) string {
	found := e.deepFindFirst(root, func(v interface{}) bool {
		s, ok := v.(string)
		return ok && predicate(s)
	})
	if s, ok := found.(string); ok {
		return s
	}
	return ""
}

// digPath walks a fixed object path; nil if any hop is missing
func digPath(root interface{}, path []string) interface{} {
	cur := root
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

// NormalizeLink completes scheme-relative and bare www links so every
// extracted link is an absolute https URL.
func NormalizeLink(link string) string {
	s := strings.TrimSpace(link)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "//") {
		return "https:" + s
	}
	if strings.HasPrefix(s, "www.") {
		return "https://" + s
	}
	return s
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// strconv64 renders a JSON number as an identifier string without the
// float64 exponent notation kicking in for long ids.
func strconv64(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", f)
}
