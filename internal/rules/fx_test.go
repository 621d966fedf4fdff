package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"macro-risk-alerts/internal/alert"
)

func floatPtr(v float64) *float64 {
	return &v
}

func TestDetectFXThresholds(t *testing.T) {
	cfg := Default()

	snapshot := FXSnapshot{
		"USD/JPY": {Rate: 155.2, Change1h: floatPtr(1.5)},
		"EUR/USD": {Rate: 1.08, Change1h: floatPtr(-2.5), Change24h: floatPtr(-3.1)},
		"USD/CAD": {Rate: 1.36, Change1h: floatPtr(0.4)},
		"USD/CHF": {Rate: 0.88},
	}

	candidates := DetectFX(cfg, snapshot)
	require.Len(t, candidates, 2)

	byEntity := make(map[string]alert.Candidate)
	for _, c := range candidates {
		byEntity[c.RelatedEntity] = c
	}

	jpy := byEntity["USD/JPY"]
	require.Equal(t, alert.TypeFX, jpy.Type)
	require.Equal(t, alert.SeverityHigh, jpy.Severity)
	require.Equal(t, "JP", jpy.Country)
	require.Equal(t, "weakened", jpy.Details["direction"])

	eur := byEntity["EUR/USD"]
	require.Equal(t, alert.SeverityCritical, eur.Severity)
	require.Equal(t, "US", eur.Country)
	require.Equal(t, "strengthened", eur.Details["direction"])
	require.Equal(t, -3.1, eur.Details["change_24h"])
}

func TestDetectFXVolatileCurrencyOverride(t *testing.T) {
	cfg := Default()

	// A 4% move triggers CRITICAL for a G10 pair but only HIGH for ARS,
	// whose override sets 3/5.
	snapshot := FXSnapshot{
		"USD/ARS": {Rate: 1030.0, Change1h: floatPtr(4.0)},
		"USD/JPY": {Rate: 155.2, Change1h: floatPtr(4.0)},
	}

	candidates := DetectFX(cfg, snapshot)
	require.Len(t, candidates, 2)

	byEntity := make(map[string]alert.Candidate)
	for _, c := range candidates {
		byEntity[c.RelatedEntity] = c
	}
	require.Equal(t, alert.SeverityHigh, byEntity["USD/ARS"].Severity)
	require.Equal(t, alert.SeverityCritical, byEntity["USD/JPY"].Severity)

	// Below the override's HIGH level nothing fires for ARS.
	snapshot = FXSnapshot{"USD/ARS": {Rate: 1030.0, Change1h: floatPtr(2.5)}}
	require.Empty(t, DetectFX(cfg, snapshot))
}

func TestDetectFXOrdersByCountryPriority(t *testing.T) {
	cfg := Default()

	snapshot := FXSnapshot{
		"USD/BRL": {Rate: 5.4, Change1h: floatPtr(2.0)},
		"USD/JPY": {Rate: 155.2, Change1h: floatPtr(1.5)},
		"USD/MXN": {Rate: 18.7, Change1h: floatPtr(1.5)},
	}

	candidates := DetectFX(cfg, snapshot)
	require.Len(t, candidates, 3)
	require.Equal(t, "USD/JPY", candidates[0].RelatedEntity)
	require.Equal(t, "USD/MXN", candidates[1].RelatedEntity)
	require.Equal(t, "USD/BRL", candidates[2].RelatedEntity)
}

func TestDetectFXSkipsMissingChange(t *testing.T) {
	cfg := Default()
	snapshot := FXSnapshot{
		"USD/JPY": {Rate: 155.2},
	}
	require.Empty(t, DetectFX(cfg, snapshot))
}

func TestQuoteCurrency(t *testing.T) {
	require.Equal(t, "JPY", quoteCurrency("USD/JPY"))
	require.Equal(t, "ARS", quoteCurrency("USD/ARS"))
	require.Equal(t, "DXY", quoteCurrency("DXY"))
}
