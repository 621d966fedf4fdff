package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"macro-risk-alerts/internal/alert"
)

func TestDetectEconomicSurprise(t *testing.T) {
	cfg := Default()

	releases := []EconomicRelease{
		{Indicator: "NFP_US", Country: "US", Actual: floatPtr(145), Consensus: floatPtr(100), Previous: floatPtr(180)},
		{Indicator: "CPI_US", Country: "US", Actual: floatPtr(3.1), Consensus: floatPtr(3.0)},
		{Indicator: "GDP_JP", Country: "JP", Actual: floatPtr(0.4), Consensus: floatPtr(1.0)},
	}

	candidates := DetectEconomic(cfg, releases)
	require.Len(t, candidates, 2)

	byEntity := make(map[string]alert.Candidate)
	for _, c := range candidates {
		byEntity[c.RelatedEntity] = c
	}

	// +45% surprise lands between the 30 and 50 thresholds.
	nfp := byEntity["NFP_US"]
	require.Equal(t, alert.TypeEcon, nfp.Type)
	require.Equal(t, alert.SeverityHigh, nfp.Severity)
	require.Equal(t, "NFP_US Beat", nfp.Title)
	require.Equal(t, "beat", nfp.Details["direction"])
	require.Equal(t, false, nfp.Details["is_downside"])
	require.Equal(t, 180.0, nfp.Details["previous"])

	// -60% surprise is CRITICAL; a miss is graded by magnitude alone.
	gdp := byEntity["GDP_JP"]
	require.Equal(t, alert.SeverityCritical, gdp.Severity)
	require.Equal(t, "GDP_JP Miss", gdp.Title)
	require.Equal(t, "JP", gdp.Country)
	require.Equal(t, true, gdp.Details["is_downside"])
}

func TestDetectEconomicNegativeConsensus(t *testing.T) {
	cfg := Default()

	// Consensus -1.0, actual -0.5: surprise is +50% of |consensus|.
	releases := []EconomicRelease{
		{Indicator: "GDP_DE", Country: "EU", Actual: floatPtr(-0.5), Consensus: floatPtr(-1.0)},
	}
	candidates := DetectEconomic(cfg, releases)
	require.Len(t, candidates, 1)
	require.Equal(t, alert.SeverityCritical, candidates[0].Severity)
	require.Equal(t, "beat", candidates[0].Details["direction"])
}

func TestDetectEconomicSkipsIncompleteReleases(t *testing.T) {
	cfg := Default()

	releases := []EconomicRelease{
		{Indicator: "PMI_DE", Consensus: floatPtr(52)},
		{Indicator: "CPI_UK", Actual: floatPtr(4.0)},
		{Indicator: "ZEW_EU", Actual: floatPtr(10), Consensus: floatPtr(0)},
	}
	require.Empty(t, DetectEconomic(cfg, releases))
}

func TestDetectEconomicDefaultsCountry(t *testing.T) {
	cfg := Default()

	releases := []EconomicRelease{
		{Indicator: "ISM", Actual: floatPtr(35), Consensus: floatPtr(55)},
	}
	candidates := DetectEconomic(cfg, releases)
	require.Len(t, candidates, 1)
	require.Equal(t, "US", candidates[0].Country)
}
