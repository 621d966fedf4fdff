package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"macro-risk-alerts/internal/alert"
)

// DetectEconomic flags releases whose actual deviates from consensus by more
// than the surprise thresholds. Whether the release beat or missed is
// recorded as detail only; severity depends purely on magnitude. Releases
// without both actual and a non-zero consensus are skipped.
func DetectEconomic(cfg *Config, releases []EconomicRelease) []alert.Candidate {
	var candidates []alert.Candidate

	for _, release := range releases {
		if release.Actual == nil || release.Consensus == nil || *release.Consensus == 0 {
			continue
		}
		actual := *release.Actual
		consensus := *release.Consensus

		surprisePct := (actual - consensus) / math.Abs(consensus) * 100
		magnitude := math.Abs(surprisePct)

		var severity alert.Severity
		var threshold float64
		switch {
		case magnitude >= cfg.EconSurprise.Critical:
			severity = alert.SeverityCritical
			threshold = cfg.EconSurprise.Critical
		case magnitude >= cfg.EconSurprise.High:
			severity = alert.SeverityHigh
			threshold = cfg.EconSurprise.High
		default:
			continue
		}

		direction := "beat"
		if actual < consensus {
			direction = "miss"
		}

		country := release.Country
		if country == "" {
			country = "US"
		}

		details := map[string]any{
			"actual":       actual,
			"consensus":    consensus,
			"surprise_pct": surprisePct,
			"direction":    direction,
			"is_downside":  actual < consensus,
		}
		if release.Previous != nil {
			details["previous"] = *release.Previous
		}

		candidates = append(candidates, alert.Candidate{
			Type:           alert.TypeEcon,
			Severity:       severity,
			Title:          fmt.Sprintf("%s %s", release.Indicator, titleCase(direction)),
			Message:        fmt.Sprintf("%s: Actual %v vs Consensus %v (%+.1f%%)", release.Indicator, actual, consensus, surprisePct),
			RelatedEntity:  release.Indicator,
			RelatedValue:   decimal.NewFromFloat(actual),
			ThresholdValue: decimal.NewFromFloat(threshold),
			Country:        country,
			Details:        details,
			TriggeredAt:    time.Now().UTC(),
		})
	}

	return candidates
}
