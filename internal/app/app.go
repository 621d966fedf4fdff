package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"macro-risk-alerts/internal/alert"
	"macro-risk-alerts/internal/alerting"
	"macro-risk-alerts/internal/config"
	"macro-risk-alerts/internal/feed"
	"macro-risk-alerts/internal/service"
	"macro-risk-alerts/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, errors.New("database.dsn not configured")
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

func (a *App) newManager(store *storage.Store) *alert.Manager {
	return alert.NewManager(store, alert.ManagerOptions{
		Cooldowns: a.Config.RuleConfig().Cooldowns,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Webhook.Enabled {
		cfg := a.Config.Alerting.Webhook
		return alerting.NewWebhookNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) newProviders() service.Providers {
	if a.Config.Feed.BaseURL == "" {
		return service.Providers{}
	}
	client := feed.NewClient(feed.Options{
		BaseURL:   a.Config.Feed.BaseURL,
		Timeout:   a.Config.Feed.RequestTimeout,
		UserAgent: a.Config.Feed.UserAgent,
	}, a.Logger)
	return service.Providers{
		FX:       client,
		Yields:   client,
		Credit:   client,
		Economic: client,
		News:     client,
	}
}

// Run executes the long-running detection service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	manager := a.newManager(store)
	notifier := a.newNotifier()
	providers := a.newProviders()
	ruleCfg := a.Config.RuleConfig()

	svc := service.New(a.Config, ruleCfg, providers, manager, notifier, a.Logger)

	a.Logger.Info().Msg("starting risk detection service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("risk detection service stopped")
	return nil
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit      int
	ActiveOnly bool
	Type       string
	Severity   string
}

// ExportOptions hold parameters for exporting alert history.
type ExportOptions struct {
	From      *time.Time
	To        *time.Time
	PNGPath   string
	CSVPath   string
	MaxPoints int
}

// SweepOptions configure the one-shot sweep.
type SweepOptions struct {
	SkipExpire  bool
	SkipCleanup bool
}
