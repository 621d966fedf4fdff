package rules

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"macro-risk-alerts/internal/alert"
)

var currencyCountries = map[string]string{
	"EUR": "EU",
	"GBP": "GB",
	"JPY": "JP",
	"CAD": "CA",
	"AUD": "AU",
	"NZD": "NZ",
	"MXN": "MX",
	"BRL": "BR",
	"ARS": "AR",
	"TWD": "TW",
}

// DetectFX flags pairs whose 1-hour percent change breaches the thresholds
// for the quote currency. Pairs without a 1-hour reading are skipped. The
// move's direction only shapes the message, never the alert identity.
// Results are ordered by country priority.
func DetectFX(cfg *Config, snapshot FXSnapshot) []alert.Candidate {
	var candidates []alert.Candidate

	for pair, stats := range snapshot {
		if stats.Change1h == nil {
			continue
		}
		change := *stats.Change1h
		magnitude := math.Abs(change)

		currency := quoteCurrency(pair)
		thresholds := cfg.FXThresholds(currency)

		var severity alert.Severity
		var threshold float64
		switch {
		case magnitude >= thresholds.Critical:
			severity = alert.SeverityCritical
			threshold = thresholds.Critical
		case magnitude >= thresholds.High:
			severity = alert.SeverityHigh
			threshold = thresholds.High
		default:
			continue
		}

		// Pairs are quoted base/quote: a rising rate means the base currency
		// buys more of the quote, i.e. the base weakened.
		direction := "weakened"
		if change < 0 {
			direction = "strengthened"
		}

		country := currencyCountry(currency)
		details := map[string]any{
			"change_1h":        change,
			"rate":             stats.Rate,
			"direction":        direction,
			"country_priority": cfg.CountryRank(country),
		}
		if stats.Change24h != nil {
			details["change_24h"] = *stats.Change24h
		}

		candidates = append(candidates, alert.Candidate{
			Type:           alert.TypeFX,
			Severity:       severity,
			Title:          fmt.Sprintf("%s %s Move", pair, severity),
			Message:        fmt.Sprintf("%s %s %.2f%% in 1 hour", pair, direction, magnitude),
			RelatedEntity:  pair,
			RelatedValue:   decimal.NewFromFloat(stats.Rate),
			ThresholdValue: decimal.NewFromFloat(threshold),
			Country:        country,
			Details:        details,
			TriggeredAt:    time.Now().UTC(),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := cfg.CountryRank(candidates[i].Country), cfg.CountryRank(candidates[j].Country)
		if ri != rj {
			return ri < rj
		}
		return candidates[i].RelatedEntity < candidates[j].RelatedEntity
	})

	return candidates
}

func quoteCurrency(pair string) string {
	if _, quote, ok := strings.Cut(pair, "/"); ok {
		return quote
	}
	return pair
}

func currencyCountry(currency string) string {
	if country, ok := currencyCountries[strings.ToUpper(currency)]; ok {
		return country
	}
	return "US"
}
