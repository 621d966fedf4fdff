package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"macro-risk-alerts/internal/alert"
)

// DetectCredit flags credit indices whose spread sits high in its 90-day
// distribution or moved sharply within a day. The percentile check and the
// widening check are independent and may both fire for the same index.
// Missing readings skip their check only.
func DetectCredit(cfg *Config, snapshot CreditSnapshot) []alert.Candidate {
	var candidates []alert.Candidate

	for index, stats := range snapshot {
		spreadBps := 0.0
		if stats.SpreadBps != nil {
			spreadBps = *stats.SpreadBps
		}

		if stats.Percentile90 != nil {
			pct := *stats.Percentile90
			switch {
			case pct >= cfg.CreditPercentile.Critical:
				candidates = append(candidates, alert.Candidate{
					Type:           alert.TypeCredit,
					Severity:       alert.SeverityCritical,
					Title:          fmt.Sprintf("%s at Extreme Levels", index),
					Message:        fmt.Sprintf("%s spread at %.0f bps (%.0fth percentile)", index, spreadBps, pct),
					RelatedEntity:  index,
					RelatedValue:   decimal.NewFromFloat(spreadBps),
					ThresholdValue: decimal.NewFromFloat(cfg.CreditPercentile.Critical),
					Country:        "US",
					Details: map[string]any{
						"spread_bps":     spreadBps,
						"percentile_90d": pct,
					},
					TriggeredAt: time.Now().UTC(),
				})
			case pct >= cfg.CreditPercentile.High:
				candidates = append(candidates, alert.Candidate{
					Type:           alert.TypeCredit,
					Severity:       alert.SeverityHigh,
					Title:          fmt.Sprintf("%s Elevated", index),
					Message:        fmt.Sprintf("%s spread at %.0f bps (%.0fth percentile)", index, spreadBps, pct),
					RelatedEntity:  index,
					RelatedValue:   decimal.NewFromFloat(spreadBps),
					ThresholdValue: decimal.NewFromFloat(cfg.CreditPercentile.High),
					Country:        "US",
					Details: map[string]any{
						"spread_bps":     spreadBps,
						"percentile_90d": pct,
					},
					TriggeredAt: time.Now().UTC(),
				})
			}
		}

		if stats.Change1d != nil {
			change := *stats.Change1d
			magnitude := math.Abs(change)

			direction := "widening"
			if change < 0 {
				direction = "tightening"
			}

			switch {
			case magnitude >= cfg.CreditWidening.Critical:
				candidates = append(candidates, alert.Candidate{
					Type:           alert.TypeCredit,
					Severity:       alert.SeverityCritical,
					Title:          fmt.Sprintf("%s Rapid %s", index, titleCase(direction)),
					Message:        fmt.Sprintf("%s %s %.0f bps in 1 day", index, direction, magnitude),
					RelatedEntity:  index,
					RelatedValue:   decimal.NewFromFloat(spreadBps),
					ThresholdValue: decimal.NewFromFloat(cfg.CreditWidening.Critical),
					Country:        "US",
					Details: map[string]any{
						"change_1d":  change,
						"spread_bps": spreadBps,
						"direction":  direction,
					},
					TriggeredAt: time.Now().UTC(),
				})
			case magnitude >= cfg.CreditWidening.High:
				candidates = append(candidates, alert.Candidate{
					Type:           alert.TypeCredit,
					Severity:       alert.SeverityHigh,
					Title:          fmt.Sprintf("%s %s", index, titleCase(direction)),
					Message:        fmt.Sprintf("%s %s %.0f bps today", index, direction, magnitude),
					RelatedEntity:  index,
					RelatedValue:   decimal.NewFromFloat(spreadBps),
					ThresholdValue: decimal.NewFromFloat(cfg.CreditWidening.High),
					Country:        "US",
					Details: map[string]any{
						"change_1d":  change,
						"spread_bps": spreadBps,
						"direction":  direction,
					},
					TriggeredAt: time.Now().UTC(),
				})
			}
		}
	}

	return candidates
}

// PercentileRank returns the percentile (0-100) of value within the history
// window: the share of historical values strictly below it. An empty window
// yields the median by convention.
func PercentileRank(value float64, history []float64) float64 {
	if len(history) == 0 {
		return 50.0
	}
	below := 0
	for _, v := range history {
		if v < value {
			below++
		}
	}
	return float64(below) / float64(len(history)) * 100
}
