package domain

// ItemSearchResult is the outcome of one AliExpress item-search fetch.
// A failed or malformed upstream response degrades to an empty Items slice
// rather than an error: partial data beats a failed request against a
// noisy provider ecosystem.
type ItemSearchResult struct {
	Status             int       `json:"status"`
	URL                string    `json:"url"`
	ProviderStatusCode string    `json:"provider_status_code,omitempty"`
	RawHead            string    `json:"raw_head,omitempty"`
	Items              []RawItem `json:"items"`

	// BudgetExceeded marks the sentinel returned when the per-request
	// AliExpress call budget is spent. No upstream call was made.
	BudgetExceeded bool `json:"budget_exceeded,omitempty"`
}

// SoldQuote is the outcome of one eBay completed-sales average-price
// lookup. AvgPrice of zero means no usable signal (not found, denied, or
// malformed response).
type SoldQuote struct {
	AvgPrice float64 `json:"avgPrice"`
	Link     string  `json:"link"`

	// HTTPStatus carries the upstream status for failed lookups so
	// failure quotes can be told apart from genuine zero averages.
	HTTPStatus int `json:"httpStatus,omitempty"`

	// BudgetExceeded marks the sentinel returned when the per-request
	// eBay call budget is spent. No upstream call was made.
	BudgetExceeded bool `json:"budget_exceeded,omitempty"`
}
