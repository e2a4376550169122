package usecase

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/fliplens/backend/internal/domain"
	"github.com/fliplens/backend/internal/infrastructure/ebay"
)

// candidateFloor is the minimum number of deduplicated candidates carried
// into ranking even on small quote budgets
const candidateFloor = 12

// keywordTokenCount is how many leading title tokens form the completed
// sales search phrase
const keywordTokenCount = 6

// categorySeeds are the named seed-query sets selectable per request
var categorySeeds = map[string][]string{
	"electronics":   {"bluetooth earbuds", "usb c hub", "wireless charger", "mini projector"},
	"automotive":    {"dash cam", "car phone holder", "tire inflator", "obd2 scanner"},
	"health_beauty": {"hair trimmer", "nail drill", "massage gun"},
	"home_garden":   {"led strip lights", "handheld vacuum", "storage organizer"},
}

// defaultSeeds is the mixed set used when no known category is requested
var defaultSeeds = []string{
	"bluetooth earbuds", "usb c hub", "wireless charger",
	"dash cam", "car phone holder", "hair trimmer",
}

// ArbitrageServiceConfig holds configuration for the arbitrage service
type ArbitrageServiceConfig struct {
	ResponseTTL        time.Duration
	ItemSearchTTL      time.Duration
	SoldQuoteTTL       time.Duration
	FailedQuoteTTL     time.Duration
	EnableDebugLogging bool

	// SeedQueries replaces the built-in mixed seed list when non-empty.
	// Named category sets are unaffected.
	SeedQueries []string
}

// RequestStats carries per-request accounting that the delivery layer
// surfaces as response headers.
type RequestStats struct {
	CacheHit  bool
	AliCalls  int
	EbayCalls int
}

// requestBudgets tracks the upstream calls used by one logical request.
// The counters live for a single FindOpportunities call and are touched
// only by that call's sequential fetch loop, so plain ints suffice.
type requestBudgets struct {
	aliCalls  int
	aliCap    int
	ebayCalls int
	ebayCap   int
}

// ArbitrageService pairs wholesale marketplace listings with completed
// sale price signals and ranks the pairs by potential profit, spending as
// little paid upstream quota as the caches and per-request budgets allow.
type ArbitrageService struct {
	responseCache domain.CacheRepository
	itemCache     domain.CacheRepository
	quoteCache    domain.CacheRepository
	aliClient     domain.AliexpressClient
	ebayClient    domain.EbayClient
	extractor     *Extractor

	responseTTL        time.Duration
	itemSearchTTL      time.Duration
	soldQuoteTTL       time.Duration
	failedQuoteTTL     time.Duration
	enableDebugLogging bool
	seedQueries        []string
}

// NewArbitrageService creates a new arbitrage service with dependencies.
// The three caches are independent and must not be shared with each other.
func NewArbitrageService(
	responseCache domain.CacheRepository,
	itemCache domain.CacheRepository,
	quoteCache domain.CacheRepository,
	aliClient domain.AliexpressClient,
	ebayClient domain.EbayClient,
	extractor *Extractor,
	config ArbitrageServiceConfig,
) *ArbitrageService {
	responseTTL := config.ResponseTTL
	if responseTTL == 0 {
		responseTTL = 30 * time.Minute
	}
	itemSearchTTL := config.ItemSearchTTL
	if itemSearchTTL == 0 {
		itemSearchTTL = 6 * time.Hour
	}
	soldQuoteTTL := config.SoldQuoteTTL
	if soldQuoteTTL == 0 {
		soldQuoteTTL = 24 * time.Hour
	}
	failedQuoteTTL := config.FailedQuoteTTL
	if failedQuoteTTL == 0 {
		failedQuoteTTL = 30 * time.Minute
	}
	seedQueries := config.SeedQueries
	if len(seedQueries) == 0 {
		seedQueries = defaultSeeds
	}

	return &ArbitrageService{
		responseCache:      responseCache,
		itemCache:          itemCache,
		quoteCache:         quoteCache,
		aliClient:          aliClient,
		ebayClient:         ebayClient,
		extractor:          extractor,
		responseTTL:        responseTTL,
		itemSearchTTL:      itemSearchTTL,
		soldQuoteTTL:       soldQuoteTTL,
		failedQuoteTTL:     failedQuoteTTL,
		enableDebugLogging: config.EnableDebugLogging,
		seedQueries:        seedQueries,
	}
}

// FindOpportunities resolves seed queries, fetches wholesale listings and
// completed sale quotes within the per-request budgets, and returns the
// profit-ranked result payload.
// Flow: check response cache -> fetch per seed -> dedupe -> quote and rank
// candidates -> cache payload -> return.
func (s *ArbitrageService) FindOpportunities(
	ctx context.Context,
	query domain.ArbitrageQuery,
) (*domain.ArbitragePayload, *RequestStats, error) {
	if query.SeedCap <= 0 || query.EbayBudget <= 0 || query.Top <= 0 {
		return nil, nil, domain.ErrInvalidRequest
	}

	cacheKey := responseCacheKey(query)
	if cached, err := s.responseCache.Get(ctx, cacheKey); err == nil {
		if payload, ok := cached.(*domain.ArbitragePayload); ok {
			return payload, &RequestStats{CacheHit: true}, nil
		}
	}

	budgets := &requestBudgets{aliCap: query.SeedCap, ebayCap: query.EbayBudget}
	seeds := resolveSeeds(query.Category, query.SeedCap, s.seedQueries)

	var all []domain.RawItem
	var seedDebug []domain.SeedFetchDebug

	for _, seed := range seeds {
		result, err := s.fetchItems(ctx, seed, 1, budgets)
		if err != nil {
			return nil, nil, err
		}
		if result.BudgetExceeded {
			break
		}

		seedDebug = append(seedDebug, domain.SeedFetchDebug{
			Seed:               seed,
			Status:             result.Status,
			URL:                result.URL,
			ItemsCount:         len(result.Items),
			ProviderStatusCode: result.ProviderStatusCode,
			RawHead:            result.RawHead,
		})

		items := result.Items
		if len(items) > query.PerSeed {
			items = items[:query.PerSeed]
		}
		all = append(all, items...)
	}

	unique := s.extractor.Dedupe(all)

	// No point carrying more candidates than the quote budget could ever
	// cover, plus a little slack for zero-price rejections.
	maxCandidates := query.EbayBudget * 2
	if maxCandidates < candidateFloor {
		maxCandidates = candidateFloor
	}
	candidates := unique
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	ranked, counters, err := s.rankCandidates(ctx, candidates, budgets)
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Profit > ranked[j].Profit })

	filtered := make([]domain.Opportunity, 0, len(ranked))
	for _, r := range ranked {
		if r.Profit > query.MinProfit {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) > query.Top {
		filtered = filtered[:query.Top]
	}

	payload := &domain.ArbitragePayload{Items: filtered}
	if query.Debug {
		payload.Debug = s.buildDebugInfo(query, seeds, seedDebug, all, unique, candidates, budgets, counters, len(ranked), len(filtered))
	}

	if s.enableDebugLogging {
		log.Printf("[ARB] seeds=%d fetched=%d unique=%d results=%d profitable=%d ali_calls=%d ebay_calls=%d",
			len(seeds), len(all), len(unique), len(ranked), len(filtered), budgets.aliCalls, budgets.ebayCalls)
	}

	if err := s.responseCache.Set(ctx, cacheKey, payload, s.responseTTL); err != nil {
		log.Printf("[ARB] Failed to cache response: %v", err)
	}

	return payload, &RequestStats{AliCalls: budgets.aliCalls, EbayCalls: budgets.ebayCalls}, nil
}

// rankCounters tallies candidate rejections for diagnostics
type rankCounters struct {
	zeroPrice          int
	zeroQuote          int
	budgetExceededStop int
}

// rankCandidates produces one opportunity per viable candidate, in input
// order. A budget-exceeded quote stops the loop entirely: every remaining
// candidate would hit the same spent budget.
func (s *ArbitrageService) rankCandidates(
	ctx context.Context,
	candidates []domain.RawItem,
	budgets *requestBudgets,
) ([]domain.Opportunity, rankCounters, error) {
	var results []domain.Opportunity
	var counters rankCounters

	for _, item := range candidates {
		title := s.extractor.Title(item)
		price := s.extractor.Price(item)
		link := s.extractor.Link(item)

		if title == "" || link == "" {
			continue
		}
		if price == 0 {
			counters.zeroPrice++
			continue
		}

		quote, err := s.fetchQuote(ctx, keywordPhrase(title), budgets)
		if err != nil {
			return nil, counters, err
		}

		if quote.BudgetExceeded {
			counters.budgetExceededStop++
			break
		}

		if quote.AvgPrice == 0 {
			counters.zeroQuote++
			continue
		}

		results = append(results, domain.Opportunity{
			Title:      title,
			Aliexpress: domain.MarketSide{Price: price, Link: link},
			Ebay:       domain.MarketSide{Price: quote.AvgPrice, Link: quote.Link},
			Profit:     quote.AvgPrice - price,
		})
	}

	return results, counters, nil
}

// fetchItems returns wholesale listings for one seed query and page,
// consulting the item-search cache first and the per-request budget second.
// Upstream failures degrade to an empty, uncached result so the next
// request retries.
func (s *ArbitrageService) fetchItems(
	ctx context.Context,
	query string,
	page int,
	budgets *requestBudgets,
) (*domain.ItemSearchResult, error) {
	key := fmt.Sprintf("%s::%d", query, page)

	if cached, err := s.itemCache.Get(ctx, key); err == nil {
		if result, ok := cached.(*domain.ItemSearchResult); ok {
			return result, nil
		}
	}

	if budgets.aliCalls >= budgets.aliCap {
		return &domain.ItemSearchResult{BudgetExceeded: true}, nil
	}
	budgets.aliCalls++

	result, err := s.aliClient.SearchItems(ctx, query, page)
	if err != nil {
		// Transport failure: degrade to zero items rather than failing
		// the whole request over one seed.
		log.Printf("[ARB] Item search failed for %q: %v", query, err)
		return &domain.ItemSearchResult{}, nil
	}

	if err := s.itemCache.Set(ctx, key, result, s.itemSearchTTL); err != nil {
		log.Printf("[ARB] Failed to cache item search %q: %v", key, err)
	}

	return result, nil
}

// fetchQuote returns the completed-sale average price for a keyword
// phrase, consulting the quote cache first and the per-request budget
// second. Failed quotes are cached on the shorter failure TTL so a denied
// upstream is not hammered.
func (s *ArbitrageService) fetchQuote(
	ctx context.Context,
	keywords string,
	budgets *requestBudgets,
) (*domain.SoldQuote, error) {
	if cached, err := s.quoteCache.Get(ctx, keywords); err == nil {
		if quote, ok := cached.(*domain.SoldQuote); ok {
			return quote, nil
		}
	}

	if budgets.ebayCalls >= budgets.ebayCap {
		return &domain.SoldQuote{AvgPrice: 0, Link: ebay.DefaultLink, BudgetExceeded: true}, nil
	}
	budgets.ebayCalls++

	quote, err := s.ebayClient.AverageSoldPrice(ctx, keywords)
	if err != nil {
		return nil, err
	}

	ttl := s.soldQuoteTTL
	if quote.HTTPStatus != 0 {
		ttl = s.failedQuoteTTL
	}
	if err := s.quoteCache.Set(ctx, keywords, quote, ttl); err != nil {
		log.Printf("[ARB] Failed to cache quote %q: %v", keywords, err)
	}

	return quote, nil
}

// buildDebugInfo assembles the diagnostics block for debug requests
func (s *ArbitrageService) buildDebugInfo(
	query domain.ArbitrageQuery,
	seeds []string,
	seedDebug []domain.SeedFetchDebug,
	all []domain.RawItem,
	unique []domain.RawItem,
	candidates []domain.RawItem,
	budgets *requestBudgets,
	counters rankCounters,
	resultsTotal int,
	profitableCount int,
) *domain.DebugInfo {
	sampleSize := 3
	if len(candidates) < sampleSize {
		sampleSize = len(candidates)
	}
	sample := make([]domain.ExtractedProduct, 0, sampleSize)
	for _, item := range candidates[:sampleSize] {
		sample = append(sample, s.extractor.Product(item))
	}

	return &domain.DebugInfo{
		SeedsUsed:               seeds,
		AliFetches:              seedDebug,
		AliTotalFetched:         len(all),
		AliUnique:               len(unique),
		AliCallsUsed:            budgets.aliCalls,
		AliCallCap:              budgets.aliCap,
		EbayCallsUsed:           budgets.ebayCalls,
		EbayBudget:              budgets.ebayCap,
		EbayBudgetExceededCount: counters.budgetExceededStop,
		AliZeroPriceCount:       counters.zeroPrice,
		EbayZeroAvgCount:        counters.zeroQuote,
		ResultsTotal:            resultsTotal,
		ProfitableCount:         profitableCount,
		AliParsedSample:         sample,
	}
}

// resolveSeeds picks the seed-query set for a category and caps it. An
// unknown or absent category falls back to the mixed set.
func resolveSeeds(category string, limit int, fallback []string) []string {
	seeds, ok := categorySeeds[category]
	if !ok {
		seeds = fallback
	}
	if len(seeds) > limit {
		seeds = seeds[:limit]
	}
	return seeds
}

// keywordPhrase derives the completed-sales search phrase from a listing
// title: the first few whitespace-separated tokens.
func keywordPhrase(title string) string {
	tokens := strings.Fields(title)
	if len(tokens) > keywordTokenCount {
		tokens = tokens[:keywordTokenCount]
	}
	return strings.Join(tokens, " ")
}

// responseCacheKey folds every request parameter that shapes the payload
// into the final-response cache key.
func responseCacheKey(query domain.ArbitrageQuery) string {
	return fmt.Sprintf("arb:%d:%d:%d:%d:%s:%g:%t",
		query.Top, query.SeedCap, query.PerSeed, query.EbayBudget,
		query.Category, query.MinProfit, query.Debug)
}
