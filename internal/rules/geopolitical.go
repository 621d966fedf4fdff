package rules

import (
	"sort"
	"time"

	"macro-risk-alerts/internal/alert"
)

// DetectGeopolitical scans headlines against the ordered keyword rules. The
// first rule whose keywords match and whose credibility floor the source
// meets decides the severity; later rules are not consulted. A headline from
// an unknown source can therefore never produce a CRITICAL alert on keywords
// alone. Results are ordered by country priority.
func DetectGeopolitical(cfg *Config, articles []NewsArticle) []alert.Candidate {
	var candidates []alert.Candidate

	for _, article := range articles {
		credibility := cfg.SourceCredibility(article.Source)

		for _, rule := range cfg.KeywordRules {
			matched := matchKeywords(article.Headline, rule.Keywords)
			if len(matched) == 0 || !credibility.AtLeast(rule.MinCredibility) {
				continue
			}

			country := primaryCountry(cfg, article.CountryTags)

			candidates = append(candidates, alert.Candidate{
				Type:          alert.TypePolitical,
				Severity:      rule.Severity,
				Title:         rule.Title,
				Message:       truncate(article.Headline, 200),
				RelatedEntity: article.Source,
				Country:       country,
				Details: map[string]any{
					"headline":           article.Headline,
					"source":             article.Source,
					"source_credibility": string(credibility),
					"url":                article.URL,
					"country_tags":       article.CountryTags,
					"published_at":       article.PublishedAt,
					"matched_keywords":   matched,
				},
				TriggeredAt: time.Now().UTC(),
			})
			break
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return cfg.CountryRank(candidates[i].Country) < cfg.CountryRank(candidates[j].Country)
	})

	return candidates
}

func primaryCountry(cfg *Config, tags []string) string {
	if len(tags) == 0 {
		return "US"
	}
	best := tags[0]
	for _, tag := range tags[1:] {
		if cfg.CountryRank(tag) < cfg.CountryRank(best) {
			best = tag
		}
	}
	return best
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
