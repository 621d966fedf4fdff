package rules

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"macro-risk-alerts/internal/alert"
)

// DetectYields checks the curve for inversions and, when a prior snapshot is
// available, for rapid steepening or flattening of the 10Y-2Y spread. The
// level check and the change check are independent and may fire together.
// A nil prior skips the change check; missing tenors skip their spread.
func DetectYields(cfg *Config, curve YieldCurve, prior YieldCurve) []alert.Candidate {
	var candidates []alert.Candidate

	y10, has10 := curve["10Y"]
	y2, has2 := curve["2Y"]
	y3m, has3m := curve["3M"]

	if has10 && has2 {
		spread := y10 - y2
		spreadBps := spread * 100

		switch {
		case spreadBps < cfg.YieldInversion.Critical:
			candidates = append(candidates, inversionCandidate(
				alert.SeverityCritical,
				"Deep Yield Curve Inversion",
				fmt.Sprintf("10Y-2Y spread at %.0f bps - deep inversion signals recession risk", spreadBps),
				"10Y-2Y", spread, cfg.YieldInversion.Critical,
				map[string]any{
					"spread_bps":  spreadBps,
					"yield_10y":   y10,
					"yield_2y":    y2,
					"is_inverted": true,
				},
			))
		case spreadBps < cfg.YieldInversion.High:
			candidates = append(candidates, inversionCandidate(
				alert.SeverityHigh,
				"Yield Curve Inverted",
				fmt.Sprintf("10Y-2Y spread inverted at %.0f bps", spreadBps),
				"10Y-2Y", spread, cfg.YieldInversion.High,
				map[string]any{
					"spread_bps":  spreadBps,
					"yield_10y":   y10,
					"yield_2y":    y2,
					"is_inverted": true,
				},
			))
		}
	}

	// The 10Y-3M spread is an alternative recession signal; it only fires on
	// a deep inversion and never escalates past HIGH.
	if has10 && has3m {
		spread := y10 - y3m
		spreadBps := spread * 100
		if spreadBps < cfg.YieldInversion.Critical {
			candidates = append(candidates, inversionCandidate(
				alert.SeverityHigh,
				"10Y-3M Spread Inverted",
				fmt.Sprintf("10Y-3M spread at %.0f bps - alternative recession signal", spreadBps),
				"10Y-3M", spread, cfg.YieldInversion.Critical,
				map[string]any{
					"spread_bps": spreadBps,
					"yield_10y":  y10,
					"yield_3m":   y3m,
				},
			))
		}
	}

	if prior != nil && has10 && has2 {
		p10, hasP10 := prior["10Y"]
		p2, hasP2 := prior["2Y"]
		if hasP10 && hasP2 {
			current := y10 - y2
			previous := p10 - p2
			changeBps := (current - previous) * 100
			magnitude := math.Abs(changeBps)

			direction := "steepening"
			if changeBps < 0 {
				direction = "flattening"
			}

			switch {
			case magnitude >= cfg.YieldSteepening.Critical:
				candidates = append(candidates, alert.Candidate{
					Type:           alert.TypeYields,
					Severity:       alert.SeverityCritical,
					Title:          fmt.Sprintf("Rapid Curve %s", titleCase(direction)),
					Message:        fmt.Sprintf("10Y-2Y spread changed %+.0f bps - significant %s", changeBps, direction),
					RelatedEntity:  "10Y-2Y",
					RelatedValue:   decimal.NewFromFloat(current),
					ThresholdValue: decimal.NewFromFloat(cfg.YieldSteepening.Critical),
					Country:        "US",
					Details: map[string]any{
						"change_bps":          changeBps,
						"direction":           direction,
						"current_spread_bps":  current * 100,
						"previous_spread_bps": previous * 100,
					},
					TriggeredAt: time.Now().UTC(),
				})
			case magnitude >= cfg.YieldSteepening.High:
				candidates = append(candidates, alert.Candidate{
					Type:           alert.TypeYields,
					Severity:       alert.SeverityHigh,
					Title:          fmt.Sprintf("Curve %s", titleCase(direction)),
					Message:        fmt.Sprintf("10Y-2Y spread changed %+.0f bps", changeBps),
					RelatedEntity:  "10Y-2Y",
					RelatedValue:   decimal.NewFromFloat(current),
					ThresholdValue: decimal.NewFromFloat(cfg.YieldSteepening.High),
					Country:        "US",
					Details: map[string]any{
						"change_bps": changeBps,
						"direction":  direction,
					},
					TriggeredAt: time.Now().UTC(),
				})
			}
		}
	}

	return candidates
}

func inversionCandidate(severity alert.Severity, title, message, entity string, spread, threshold float64, details map[string]any) alert.Candidate {
	return alert.Candidate{
		Type:           alert.TypeYields,
		Severity:       severity,
		Title:          title,
		Message:        message,
		RelatedEntity:  entity,
		RelatedValue:   decimal.NewFromFloat(spread),
		ThresholdValue: decimal.NewFromFloat(threshold),
		Country:        "US",
		Details:        details,
		TriggeredAt:    time.Now().UTC(),
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
