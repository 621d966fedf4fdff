package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"macro-risk-alerts/internal/alert"
	"macro-risk-alerts/internal/logging"
	"macro-risk-alerts/internal/rules"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Feed      FeedConfig      `mapstructure:"feed"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Export    ExportConfig    `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsPath  string        `mapstructure:"migrations_path"`
}

// FeedConfig covers the dashboard data service the detectors read from.
type FeedConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// SchedulerConfig governs detection cadence and the lifecycle sweeps.
type SchedulerConfig struct {
	FXInterval       time.Duration `mapstructure:"fx_interval"`
	YieldsInterval   time.Duration `mapstructure:"yields_interval"`
	CreditInterval   time.Duration `mapstructure:"credit_interval"`
	EconomicInterval time.Duration `mapstructure:"economic_interval"`
	NewsInterval     time.Duration `mapstructure:"news_interval"`
	AlignToBucket    bool          `mapstructure:"align_to_bucket"`
	StartupDelay     time.Duration `mapstructure:"startup_delay"`

	SweepSpec        string        `mapstructure:"sweep_spec"`
	CleanupSpec      string        `mapstructure:"cleanup_spec"`
	DigestSpec       string        `mapstructure:"digest_spec"`
	ExpireHorizon    time.Duration `mapstructure:"expire_horizon"`
	CleanupRetention time.Duration `mapstructure:"cleanup_retention"`
}

// AlertingConfig defines notification routing.
type AlertingConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Channels []string      `mapstructure:"channels"`
	Webhook  WebhookConfig `mapstructure:"webhook"`
}

// WebhookConfig describes the Telegram-compatible webhook channel.
type WebhookConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// ThresholdOverride carries a HIGH/CRITICAL pair from configuration.
type ThresholdOverride struct {
	High     float64 `mapstructure:"high"`
	Critical float64 `mapstructure:"critical"`
}

// RulesConfig surfaces the rule tables for file/env override. Scalar
// thresholds always apply (their defaults mirror the built-in tables); list
// fields replace the built-ins only when non-empty.
type RulesConfig struct {
	FXHigh                   float64                      `mapstructure:"fx_high"`
	FXCritical               float64                      `mapstructure:"fx_critical"`
	FXOverrides              map[string]ThresholdOverride `mapstructure:"fx_overrides"`
	YieldInversionHigh       float64                      `mapstructure:"yield_inversion_high"`
	YieldInversionCritical   float64                      `mapstructure:"yield_inversion_critical"`
	YieldSteepeningHigh      float64                      `mapstructure:"yield_steepening_high"`
	YieldSteepeningCritical  float64                      `mapstructure:"yield_steepening_critical"`
	CreditPercentileHigh     float64                      `mapstructure:"credit_percentile_high"`
	CreditPercentileCritical float64                      `mapstructure:"credit_percentile_critical"`
	CreditWideningHigh       float64                      `mapstructure:"credit_widening_high"`
	CreditWideningCritical   float64                      `mapstructure:"credit_widening_critical"`
	EconSurpriseHigh         float64                      `mapstructure:"econ_surprise_high"`
	EconSurpriseCritical     float64                      `mapstructure:"econ_surprise_critical"`
	CooldownSeconds          map[string]int               `mapstructure:"cooldown_seconds"`
	CriticalKeywords         []string                     `mapstructure:"critical_keywords"`
	HighKeywords             []string                     `mapstructure:"high_keywords"`
	HighCredibilitySources   []string                     `mapstructure:"high_credibility_sources"`
	MediumCredibilitySources []string                     `mapstructure:"medium_credibility_sources"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("RISKWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "riskwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.migrations_path", "migrations")

	v.SetDefault("feed.request_timeout", "10s")
	v.SetDefault("feed.user_agent", "riskwatch/1.0")

	v.SetDefault("scheduler.fx_interval", "5m")
	v.SetDefault("scheduler.yields_interval", "15m")
	v.SetDefault("scheduler.credit_interval", "15m")
	v.SetDefault("scheduler.economic_interval", "30m")
	v.SetDefault("scheduler.news_interval", "10m")
	v.SetDefault("scheduler.align_to_bucket", true)
	v.SetDefault("scheduler.startup_delay", "0s")
	v.SetDefault("scheduler.sweep_spec", "@every 1h")
	v.SetDefault("scheduler.cleanup_spec", "@daily")
	v.SetDefault("scheduler.digest_spec", "@every 30m")
	v.SetDefault("scheduler.expire_horizon", "24h")
	v.SetDefault("scheduler.cleanup_retention", "2160h")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.channels", []string{"webhook"})
	v.SetDefault("alerting.webhook.enabled", false)
	v.SetDefault("alerting.webhook.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	defaults := rules.Default()
	v.SetDefault("rules.fx_high", defaults.FX.High)
	v.SetDefault("rules.fx_critical", defaults.FX.Critical)
	v.SetDefault("rules.yield_inversion_high", defaults.YieldInversion.High)
	v.SetDefault("rules.yield_inversion_critical", defaults.YieldInversion.Critical)
	v.SetDefault("rules.yield_steepening_high", defaults.YieldSteepening.High)
	v.SetDefault("rules.yield_steepening_critical", defaults.YieldSteepening.Critical)
	v.SetDefault("rules.credit_percentile_high", defaults.CreditPercentile.High)
	v.SetDefault("rules.credit_percentile_critical", defaults.CreditPercentile.Critical)
	v.SetDefault("rules.credit_widening_high", defaults.CreditWidening.High)
	v.SetDefault("rules.credit_widening_critical", defaults.CreditWidening.Critical)
	v.SetDefault("rules.econ_surprise_high", defaults.EconSurprise.High)
	v.SetDefault("rules.econ_surprise_critical", defaults.EconSurprise.Critical)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Scheduler.ExpireHorizon <= 0 {
		return fmt.Errorf("scheduler.expire_horizon must be greater than zero")
	}
	if c.Scheduler.CleanupRetention <= 0 {
		return fmt.Errorf("scheduler.cleanup_retention must be greater than zero")
	}
	for name, interval := range map[string]time.Duration{
		"scheduler.fx_interval":       c.Scheduler.FXInterval,
		"scheduler.yields_interval":   c.Scheduler.YieldsInterval,
		"scheduler.credit_interval":   c.Scheduler.CreditInterval,
		"scheduler.economic_interval": c.Scheduler.EconomicInterval,
		"scheduler.news_interval":     c.Scheduler.NewsInterval,
	} {
		if interval <= 0 {
			return fmt.Errorf("%s must be greater than zero", name)
		}
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	if c.Rules.FXCritical < c.Rules.FXHigh {
		return fmt.Errorf("rules.fx_critical cannot be below rules.fx_high")
	}
	if c.Alerting.Webhook.Enabled {
		if c.Alerting.Webhook.BotToken == "" {
			return fmt.Errorf("alerting.webhook.bot_token is required when the webhook channel is enabled")
		}
		if c.Alerting.Webhook.ChatID == "" {
			return fmt.Errorf("alerting.webhook.chat_id is required when the webhook channel is enabled")
		}
	}
	return nil
}

// RuleConfig materialises the rule tables with configuration overrides
// applied on top of the built-in defaults.
func (c *Config) RuleConfig() *rules.Config {
	rc := rules.Default()

	rc.FX = rules.Threshold{High: c.Rules.FXHigh, Critical: c.Rules.FXCritical}
	rc.YieldInversion = rules.Threshold{High: c.Rules.YieldInversionHigh, Critical: c.Rules.YieldInversionCritical}
	rc.YieldSteepening = rules.Threshold{High: c.Rules.YieldSteepeningHigh, Critical: c.Rules.YieldSteepeningCritical}
	rc.CreditPercentile = rules.Threshold{High: c.Rules.CreditPercentileHigh, Critical: c.Rules.CreditPercentileCritical}
	rc.CreditWidening = rules.Threshold{High: c.Rules.CreditWideningHigh, Critical: c.Rules.CreditWideningCritical}
	rc.EconSurprise = rules.Threshold{High: c.Rules.EconSurpriseHigh, Critical: c.Rules.EconSurpriseCritical}

	for currency, override := range c.Rules.FXOverrides {
		rc.FXOverrides[strings.ToUpper(currency)] = rules.Threshold{
			High:     override.High,
			Critical: override.Critical,
		}
	}
	for name, seconds := range c.Rules.CooldownSeconds {
		rc.Cooldowns[alert.Type(strings.ToUpper(name))] = time.Duration(seconds) * time.Second
	}

	if len(c.Rules.CriticalKeywords) > 0 || len(c.Rules.HighKeywords) > 0 {
		critical := c.Rules.CriticalKeywords
		if len(critical) == 0 {
			critical = rc.KeywordRules[0].Keywords
		}
		high := c.Rules.HighKeywords
		if len(high) == 0 {
			high = rc.KeywordRules[2].Keywords
		}
		rc.KeywordRules = []rules.KeywordRule{
			{Keywords: critical, Severity: alert.SeverityCritical, MinCredibility: rules.CredibilityHigh, Title: "Geopolitical Alert"},
			{Keywords: critical, Severity: alert.SeverityHigh, MinCredibility: rules.CredibilityLow, Title: "Geopolitical Alert"},
			{Keywords: high, Severity: alert.SeverityHigh, MinCredibility: rules.CredibilityMedium, Title: "Market-Moving News"},
		}
	}
	if len(c.Rules.HighCredibilitySources) > 0 {
		rc.HighCredibilitySources = c.Rules.HighCredibilitySources
	}
	if len(c.Rules.MediumCredibilitySources) > 0 {
		rc.MediumCredibilitySources = c.Rules.MediumCredibilitySources
	}

	return rc
}
