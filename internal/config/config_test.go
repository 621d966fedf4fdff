package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"macro-risk-alerts/internal/alert"
	"macro-risk-alerts/internal/rules"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	_ = cfg

	cfg, err = Load(writeConfigFile(t, "app:\n  name: riskwatch\n"))
	require.NoError(t, err)

	require.Equal(t, "riskwatch", cfg.App.Name)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, 5*time.Minute, cfg.Scheduler.FXInterval)
	require.Equal(t, 24*time.Hour, cfg.Scheduler.ExpireHorizon)
	require.Equal(t, 2160*time.Hour, cfg.Scheduler.CleanupRetention)
	require.Equal(t, "@every 1h", cfg.Scheduler.SweepSpec)
	require.True(t, cfg.Scheduler.AlignToBucket)
	require.Equal(t, 10*time.Second, cfg.Feed.RequestTimeout)
	require.False(t, cfg.Alerting.Webhook.Enabled)
	require.Equal(t, 100000, cfg.Export.MaxDataPoints)
	require.Equal(t, 1.0, cfg.Rules.FXHigh)
	require.Equal(t, 2.0, cfg.Rules.FXCritical)
}

func TestLoadOverridesFromFile(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
scheduler:
  fx_interval: 1m
  expire_horizon: 12h
rules:
  fx_high: 0.5
  fx_critical: 1.5
  fx_overrides:
    try:
      high: 4.0
      critical: 8.0
  cooldown_seconds:
    fx: 600
`))
	require.NoError(t, err)

	require.Equal(t, time.Minute, cfg.Scheduler.FXInterval)
	require.Equal(t, 12*time.Hour, cfg.Scheduler.ExpireHorizon)

	rc := cfg.RuleConfig()
	require.Equal(t, rules.Threshold{High: 0.5, Critical: 1.5}, rc.FX)
	require.Equal(t, rules.Threshold{High: 4.0, Critical: 8.0}, rc.FXThresholds("TRY"))
	// Built-in overrides survive alongside configured ones.
	require.Equal(t, rules.Threshold{High: 3.0, Critical: 5.0}, rc.FXThresholds("ARS"))
	require.Equal(t, 10*time.Minute, rc.Cooldown(alert.TypeFX))
	require.Equal(t, 30*time.Minute, rc.Cooldown(alert.TypePolitical))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	_, err := Load(writeConfigFile(t, "scheduler:\n  expire_horizon: 0s\n"))
	require.ErrorContains(t, err, "expire_horizon")

	_, err = Load(writeConfigFile(t, "rules:\n  fx_high: 3.0\n  fx_critical: 1.0\n"))
	require.ErrorContains(t, err, "fx_critical")

	_, err = Load(writeConfigFile(t, "alerting:\n  webhook:\n    enabled: true\n"))
	require.ErrorContains(t, err, "bot_token")
}

func TestRuleConfigKeywordOverrides(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
rules:
  high_keywords:
    - "custom market keyword"
`))
	require.NoError(t, err)

	rc := cfg.RuleConfig()
	require.Len(t, rc.KeywordRules, 3)
	// The critical rules keep the built-in keyword set.
	require.Equal(t, alert.SeverityCritical, rc.KeywordRules[0].Severity)
	require.NotEmpty(t, rc.KeywordRules[0].Keywords)
	require.Equal(t, []string{"custom market keyword"}, rc.KeywordRules[2].Keywords)
	require.Equal(t, "Market-Moving News", rc.KeywordRules[2].Title)
}
