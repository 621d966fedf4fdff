package rules

import "time"

// Detector input shapes. These are the forms the external data adapters are
// expected to deliver; optional readings use pointers, and a nil reading
// skips the corresponding check rather than erroring.

// FXPairStats carries one currency pair's latest rate and percent changes.
type FXPairStats struct {
	Rate      float64  `json:"rate"`
	Change1h  *float64 `json:"change_1h"`
	Change24h *float64 `json:"change_24h"`
}

// FXSnapshot maps pair (e.g. "USD/JPY") to its latest stats.
type FXSnapshot map[string]FXPairStats

// YieldCurve maps tenor label ("3M", "2Y", "10Y") to its yield in percent.
type YieldCurve map[string]float64

// CreditIndexStats carries one credit index's spread readings.
type CreditIndexStats struct {
	SpreadBps    *float64 `json:"spread_bps"`
	Percentile90 *float64 `json:"percentile_90d"`
	Change1d     *float64 `json:"change_1d"`
}

// CreditSnapshot maps index name (e.g. "HY_OAS") to its latest stats.
type CreditSnapshot map[string]CreditIndexStats

// EconomicRelease is one published economic data point.
type EconomicRelease struct {
	Indicator string   `json:"indicator"`
	Country   string   `json:"country"`
	Actual    *float64 `json:"actual"`
	Consensus *float64 `json:"consensus"`
	Previous  *float64 `json:"previous"`
}

// NewsArticle is one tagged headline from the news aggregator.
type NewsArticle struct {
	Headline    string    `json:"headline"`
	Source      string    `json:"source"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"published_at"`
	CountryTags []string  `json:"country_tags"`
}
