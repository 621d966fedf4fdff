package rules

import (
	"strings"
	"time"

	"macro-risk-alerts/internal/alert"
)

// Credibility is the coarse trust tier of a news source. It gates the maximum
// severity a keyword hit can produce.
type Credibility string

const (
	CredibilityHigh   Credibility = "HIGH"
	CredibilityMedium Credibility = "MEDIUM"
	CredibilityLow    Credibility = "LOW"
)

func credibilityRank(c Credibility) int {
	switch c {
	case CredibilityHigh:
		return 2
	case CredibilityMedium:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether this tier meets the given minimum.
func (c Credibility) AtLeast(min Credibility) bool {
	return credibilityRank(c) >= credibilityRank(min)
}

// Threshold pairs the HIGH and CRITICAL trigger levels for one check.
type Threshold struct {
	High     float64
	Critical float64
}

// KeywordRule maps a keyword set to a resulting severity, gated by the
// minimum source credibility required for the severity to apply. Rules are
// evaluated top-down; the first match wins.
type KeywordRule struct {
	Keywords       []string
	Severity       alert.Severity
	MinCredibility Credibility
	Title          string
}

// Config holds the static rule tables every detector consults: priority
// orders, severity thresholds with per-currency overrides, cooldown windows,
// and the keyword/credibility tables for news. Pure data.
type Config struct {
	// TypePriority orders risk types for cross-domain sorting (lower first).
	TypePriority map[alert.Type]int
	// CountryPriority orders countries for alert routing (lower first).
	CountryPriority map[string]int

	// FX 1-hour percent-change thresholds; FXOverrides keys on the quote
	// currency and falls back to FX when absent.
	FX          Threshold
	FXOverrides map[string]Threshold

	// Yield spread thresholds in basis points. Inversion levels are absolute
	// spread values (0 and a deeper negative); steepening levels bound the
	// magnitude of the spread change between snapshots.
	YieldInversion  Threshold
	YieldSteepening Threshold

	// Credit thresholds: percentile rank vs the 90-day window, and one-day
	// spread change magnitude in basis points.
	CreditPercentile Threshold
	CreditWidening   Threshold

	// Economic surprise thresholds in percent deviation from consensus.
	EconSurprise Threshold

	// Cooldowns are the per-type duplicate-suppression windows.
	Cooldowns map[alert.Type]time.Duration

	// MaxActive caps simultaneous active alerts per type. Carried for read
	// side consumers; the admission path does not enforce it.
	MaxActive map[alert.Type]int

	// KeywordRules drive news severity, evaluated top-down.
	KeywordRules []KeywordRule

	// Source credibility tiers. A source matching neither list is LOW.
	HighCredibilitySources   []string
	MediumCredibilitySources []string
}

// Default returns the built-in rule tables.
func Default() *Config {
	return &Config{
		TypePriority: map[alert.Type]int{
			alert.TypeEcon:      1,
			alert.TypeFX:        2,
			alert.TypePolitical: 3,
			alert.TypeCredit:    4,
			alert.TypeCat:       5,
		},
		CountryPriority: map[string]int{
			"US": 1, "JP": 2, "CA": 3, "MX": 4, "EU": 5, "BR": 6,
			"AR": 7, "GB": 8, "AU": 9, "NZ": 10, "TW": 11,
		},
		FX: Threshold{High: 1.0, Critical: 2.0},
		FXOverrides: map[string]Threshold{
			"ARS": {High: 3.0, Critical: 5.0},
			"BRL": {High: 1.5, Critical: 3.0},
		},
		YieldInversion:   Threshold{High: 0, Critical: -50},
		YieldSteepening:  Threshold{High: 25, Critical: 50},
		CreditPercentile: Threshold{High: 90, Critical: 95},
		CreditWidening:   Threshold{High: 50, Critical: 100},
		EconSurprise:     Threshold{High: 30, Critical: 50},
		Cooldowns: map[alert.Type]time.Duration{
			alert.TypeFX:        time.Hour,
			alert.TypeYields:    time.Hour,
			alert.TypeCredit:    time.Hour,
			alert.TypePolitical: 30 * time.Minute,
			alert.TypeEcon:      2 * time.Hour,
			alert.TypeCat:       time.Hour,
		},
		MaxActive: map[alert.Type]int{
			alert.TypeFX:        5,
			alert.TypeYields:    3,
			alert.TypeCredit:    3,
			alert.TypePolitical: 10,
			alert.TypeEcon:      5,
			alert.TypeCat:       5,
		},
		KeywordRules: []KeywordRule{
			{Keywords: criticalKeywords, Severity: alert.SeverityCritical, MinCredibility: CredibilityHigh, Title: "Geopolitical Alert"},
			{Keywords: criticalKeywords, Severity: alert.SeverityHigh, MinCredibility: CredibilityLow, Title: "Geopolitical Alert"},
			{Keywords: highKeywords, Severity: alert.SeverityHigh, MinCredibility: CredibilityMedium, Title: "Market-Moving News"},
		},
		HighCredibilitySources: []string{
			"Bloomberg", "Reuters", "WSJ", "Wall Street Journal", "FT",
			"Financial Times", "NYT", "New York Times", "AP",
			"Associated Press", "CNBC", "Federal Reserve", "Treasury",
			"BLS", "ECB", "BOJ", "BOE",
		},
		MediumCredibilitySources: []string{
			"MarketWatch", "Barrons", "Business Insider", "Yahoo Finance",
			"Seeking Alpha", "The Economist", "Forbes",
		},
	}
}

var criticalKeywords = []string{
	// military / conflict
	"missile strike", "nuclear", "NATO article 5", "declaration of war",
	"military escalation", "invasion", "bombing", "troops deployed",
	"air strike", "ground invasion", "martial law",
	// trade and economic policy
	"25% tariff", "universal tariff", "USMCA withdrawal", "trade war escalation",
	"SCOTUS denies", "IEEPA", "emergency powers", "executive order tariff",
	"blanket tariff", "retaliatory tariff", "trade embargo",
	// central bank
	"Fed independence threat", "Powell fired", "emergency rate cut",
	"extraordinary measures", "quantitative easing restart", "QE restart",
	"Fed chair removal", "monetary policy interference",
	// market structure
	"trading halt", "circuit breaker", "market closure",
	"systemic risk", "liquidity crisis", "flash crash",
	"market suspended", "clearing failure",
	// catastrophic events
	"major hurricane landfall", "earthquake magnitude 7", "tsunami warning",
	"terrorist attack", "infrastructure failure", "cyberattack",
	"category 5 hurricane", "massive earthquake",
	// political crisis
	"government shutdown", "debt ceiling breach", "constitutional crisis",
	"impeachment", "election contested", "coup attempt",
}

var highKeywords = []string{
	"tariff announced", "trade restriction", "export ban", "import ban",
	"sanctions expansion", "trade negotiation breakdown",
	"recession indicator", "GDP contraction", "employment shock",
	"inflation surge", "deflation warning",
	"policy reversal", "cabinet resignation", "diplomatic incident",
	"embassy closure", "sanctions announced",
	"volatility spike", "bond selloff", "equity correction",
	"currency intervention", "rate decision surprise",
}

// FXThresholds resolves the thresholds for a quote currency, layered lookup:
// the currency-specific override first, then the global default.
func (c *Config) FXThresholds(currency string) Threshold {
	if t, ok := c.FXOverrides[strings.ToUpper(currency)]; ok {
		return t
	}
	return c.FX
}

// Cooldown returns the duplicate-suppression window for an alert type,
// defaulting to one hour.
func (c *Config) Cooldown(t alert.Type) time.Duration {
	if d, ok := c.Cooldowns[t]; ok {
		return d
	}
	return alert.DefaultCooldown
}

// CountryRank returns the routing priority of a country, unknown last.
func (c *Config) CountryRank(country string) int {
	if p, ok := c.CountryPriority[country]; ok {
		return p
	}
	return 99
}

// TypeRank returns the detection priority of an alert type, unknown last.
func (c *Config) TypeRank(t alert.Type) int {
	if p, ok := c.TypePriority[t]; ok {
		return p
	}
	return 99
}

// SourceCredibility classifies a news source by substring match against the
// configured tiers. Unknown sources land on LOW: keyword hits from them can
// never escalate to CRITICAL.
func (c *Config) SourceCredibility(source string) Credibility {
	lower := strings.ToLower(source)
	for _, s := range c.HighCredibilitySources {
		if strings.Contains(lower, strings.ToLower(s)) {
			return CredibilityHigh
		}
	}
	for _, s := range c.MediumCredibilitySources {
		if strings.Contains(lower, strings.ToLower(s)) {
			return CredibilityMedium
		}
	}
	return CredibilityLow
}

func matchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}
