package rules

import (
	"testing"

	"github.com/stretchr/testify/require"

	"macro-risk-alerts/internal/alert"
)

func TestDetectYieldsInversion(t *testing.T) {
	cfg := Default()

	// Spread of -5 bps: inverted but shallow.
	curve := YieldCurve{"10Y": 4.00, "2Y": 4.05}
	candidates := DetectYields(cfg, curve, nil)
	require.Len(t, candidates, 1)
	require.Equal(t, alert.TypeYields, candidates[0].Type)
	require.Equal(t, alert.SeverityHigh, candidates[0].Severity)
	require.Equal(t, "Yield Curve Inverted", candidates[0].Title)
	require.Equal(t, "10Y-2Y", candidates[0].RelatedEntity)
	require.Equal(t, "US", candidates[0].Country)

	// Spread of -60 bps: deep inversion.
	curve = YieldCurve{"10Y": 3.50, "2Y": 4.10}
	candidates = DetectYields(cfg, curve, nil)
	require.Len(t, candidates, 1)
	require.Equal(t, alert.SeverityCritical, candidates[0].Severity)
	require.Equal(t, "Deep Yield Curve Inversion", candidates[0].Title)

	// Positive spread: nothing fires.
	curve = YieldCurve{"10Y": 4.50, "2Y": 4.00}
	require.Empty(t, DetectYields(cfg, curve, nil))
}

func TestDetectYields10Y3MOnlyDeepInversion(t *testing.T) {
	cfg := Default()

	// 10Y-3M at -80 bps fires, but never above HIGH.
	curve := YieldCurve{"10Y": 4.00, "3M": 4.80}
	candidates := DetectYields(cfg, curve, nil)
	require.Len(t, candidates, 1)
	require.Equal(t, alert.SeverityHigh, candidates[0].Severity)
	require.Equal(t, "10Y-3M Spread Inverted", candidates[0].Title)
	require.Equal(t, "10Y-3M", candidates[0].RelatedEntity)

	// Shallow 10Y-3M inversion stays quiet.
	curve = YieldCurve{"10Y": 4.00, "3M": 4.10}
	require.Empty(t, DetectYields(cfg, curve, nil))
}

func TestDetectYieldsSteepening(t *testing.T) {
	cfg := Default()

	// Spread moved from +10 bps to +70 bps: +60 bps change, CRITICAL.
	curve := YieldCurve{"10Y": 4.70, "2Y": 4.00}
	prior := YieldCurve{"10Y": 4.10, "2Y": 4.00}
	candidates := DetectYields(cfg, curve, prior)
	require.Len(t, candidates, 1)
	require.Equal(t, alert.SeverityCritical, candidates[0].Severity)
	require.Equal(t, "Rapid Curve Steepening", candidates[0].Title)
	require.Equal(t, "steepening", candidates[0].Details["direction"])

	// -30 bps change: HIGH flattening.
	curve = YieldCurve{"10Y": 4.20, "2Y": 4.00}
	prior = YieldCurve{"10Y": 4.50, "2Y": 4.00}
	candidates = DetectYields(cfg, curve, prior)
	require.Len(t, candidates, 1)
	require.Equal(t, alert.SeverityHigh, candidates[0].Severity)
	require.Equal(t, "Curve Flattening", candidates[0].Title)

	// +10 bps change: below threshold.
	curve = YieldCurve{"10Y": 4.60, "2Y": 4.00}
	prior = YieldCurve{"10Y": 4.50, "2Y": 4.00}
	require.Empty(t, DetectYields(cfg, curve, prior))
}

func TestDetectYieldsLevelAndChangeCoFire(t *testing.T) {
	cfg := Default()

	// Curve inverted to -55 bps after being flat: both the level check and
	// the change check fire in the same pass.
	curve := YieldCurve{"10Y": 3.45, "2Y": 4.00}
	prior := YieldCurve{"10Y": 4.00, "2Y": 4.00}
	candidates := DetectYields(cfg, curve, prior)
	require.Len(t, candidates, 2)
	require.Equal(t, "Deep Yield Curve Inversion", candidates[0].Title)
	require.Equal(t, "Rapid Curve Flattening", candidates[1].Title)
}

func TestDetectYieldsMissingTenors(t *testing.T) {
	cfg := Default()

	require.Empty(t, DetectYields(cfg, YieldCurve{"10Y": 4.00}, nil))
	require.Empty(t, DetectYields(cfg, YieldCurve{"2Y": 4.00, "3M": 4.00}, nil))
	require.Empty(t, DetectYields(cfg, YieldCurve{}, nil))

	// A prior snapshot missing the tenors skips only the change check.
	curve := YieldCurve{"10Y": 3.50, "2Y": 4.10}
	candidates := DetectYields(cfg, curve, YieldCurve{"10Y": 4.00})
	require.Len(t, candidates, 1)
	require.Equal(t, alert.SeverityCritical, candidates[0].Severity)
}
