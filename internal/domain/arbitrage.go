package domain

// RawItem is one product record as returned by the AliExpress feed.
// The provider's schema drifts between revisions, so the value is kept as
// the decoded JSON tree (maps, slices, scalars) and mined by the extractor.
type RawItem interface{}

// ExtractedProduct is the normalized view of a RawItem after extraction.
// Empty strings and a zero price mean the corresponding field could not be
// recovered from the payload.
type ExtractedProduct struct {
	ID    string  `json:"id,omitempty"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Link  string  `json:"link"`
}

// MarketSide is one half of an arbitrage pairing: the price and listing
// link on a single marketplace.
type MarketSide struct {
	Price float64 `json:"price"`
	Link  string  `json:"link"`
}

// Opportunity pairs an AliExpress listing with the average eBay sold price
// for similar keywords. Profit is ebay price minus aliexpress price and may
// be negative before filtering.
type Opportunity struct {
	Title      string     `json:"title"`
	Aliexpress MarketSide `json:"aliexpress"`
	Ebay       MarketSide `json:"ebay"`
	Profit     float64    `json:"profit"`
}

// ArbitrageQuery holds the parsed request parameters for one arbitrage
// lookup. Values are already clamped to their hard caps by the delivery
// layer.
type ArbitrageQuery struct {
	Top        int     `json:"top"`
	SeedCap    int     `json:"seeds"`
	PerSeed    int     `json:"perSeed"`
	EbayBudget int     `json:"ebayBudget"`
	Category   string  `json:"category,omitempty"`
	MinProfit  float64 `json:"minProfit"`
	Debug      bool    `json:"debug,omitempty"`
}

// ArbitragePayload is the response body for one arbitrage lookup.
type ArbitragePayload struct {
	Debug *DebugInfo    `json:"debug,omitempty"`
	Items []Opportunity `json:"items"`
}

// SeedFetchDebug records how a single seed query fared against the
// AliExpress feed.
type SeedFetchDebug struct {
	Seed               string `json:"seed"`
	Status             int    `json:"status"`
	URL                string `json:"url"`
	ItemsCount         int    `json:"items_count"`
	ProviderStatusCode string `json:"provider_status_code,omitempty"`
	RawHead            string `json:"raw_head,omitempty"`
}

// DebugInfo is the diagnostics block included when debug=1 is requested.
// It exists for manual verification of the extraction heuristics against
// live payloads.
type DebugInfo struct {
	SeedsUsed               []string           `json:"seeds_used"`
	AliFetches              []SeedFetchDebug   `json:"ali_fetches"`
	AliTotalFetched         int                `json:"ali_total_fetched"`
	AliUnique               int                `json:"ali_unique"`
	AliCallsUsed            int                `json:"ali_calls_used"`
	AliCallCap              int                `json:"ali_call_cap"`
	EbayCallsUsed           int                `json:"ebay_calls_used"`
	EbayBudget              int                `json:"ebay_budget"`
	EbayBudgetExceededCount int                `json:"ebay_budget_exceeded_count"`
	AliZeroPriceCount       int                `json:"ali_zero_price_count"`
	EbayZeroAvgCount        int                `json:"ebay_zero_avg_count"`
	ResultsTotal            int                `json:"results_total"`
	ProfitableCount         int                `json:"profitable_count"`
	AliParsedSample         []ExtractedProduct `json:"ali_parsed_sample"`
}
