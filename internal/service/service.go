package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"macro-risk-alerts/internal/alert"
	"macro-risk-alerts/internal/alerting"
	"macro-risk-alerts/internal/config"
	"macro-risk-alerts/internal/feed"
	"macro-risk-alerts/internal/rules"
	"macro-risk-alerts/internal/scheduler"
)

// Providers groups the per-domain snapshot sources. A nil provider disables
// that domain's detection loop.
type Providers struct {
	FX       feed.FXProvider
	Yields   feed.YieldProvider
	Credit   feed.CreditProvider
	Economic feed.EconomicProvider
	News     feed.NewsProvider
}

// Service fans detection cycles out over the risk domains and feeds every
// detector's candidates into the shared alert manager. Each domain runs on
// its own loop: one domain failing never blocks the others.
type Service struct {
	cfg       *config.Config
	rules     *rules.Config
	providers Providers
	manager   *alert.Manager
	notifier  alerting.Notifier
	logger    zerolog.Logger

	// The steepening check needs the previous curve; kept in memory only,
	// like the mute registry.
	mu         sync.Mutex
	prevYields rules.YieldCurve
}

// New constructs the detection service.
func New(cfg *config.Config, ruleCfg *rules.Config, providers Providers, manager *alert.Manager, notifier alerting.Notifier, logger zerolog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		rules:     ruleCfg,
		providers: providers,
		manager:   manager,
		notifier:  notifier,
		logger:    logger.With().Str("component", "service").Logger(),
	}
}

// Run starts one interval loop per configured domain plus the cron sweeps,
// blocking until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	loops := []struct {
		name     string
		interval time.Duration
		enabled  bool
		tick     scheduler.TickFunc
	}{
		{"fx", s.cfg.Scheduler.FXInterval, s.providers.FX != nil, s.runFXCycle},
		{"yields", s.cfg.Scheduler.YieldsInterval, s.providers.Yields != nil, s.runYieldsCycle},
		{"credit", s.cfg.Scheduler.CreditInterval, s.providers.Credit != nil, s.runCreditCycle},
		{"economic", s.cfg.Scheduler.EconomicInterval, s.providers.Economic != nil, s.runEconomicCycle},
		{"news", s.cfg.Scheduler.NewsInterval, s.providers.News != nil, s.runNewsCycle},
	}

	var wg sync.WaitGroup
	started := 0
	for _, l := range loops {
		if !l.enabled {
			s.logger.Warn().Str("domain", l.name).Msg("no provider configured; detection loop disabled")
			continue
		}
		loop := scheduler.NewLoop(scheduler.Options{
			Name:         l.name,
			Interval:     l.interval,
			AlignToStart: s.cfg.Scheduler.AlignToBucket,
			StartupDelay: s.cfg.Scheduler.StartupDelay,
		}, s.logger)
		tick := l.tick

		wg.Add(1)
		started++
		go func() {
			defer wg.Done()
			_ = loop.Run(ctx, tick)
		}()
	}
	if started == 0 {
		return fmt.Errorf("no detection loops enabled")
	}

	sweeper := scheduler.NewSweeper(s.logger)
	jobs := []struct {
		spec string
		job  scheduler.Job
	}{
		{s.cfg.Scheduler.SweepSpec, jobFunc{"expire_old_alerts", func() error {
			_, err := s.Expire(ctx)
			return err
		}}},
		{s.cfg.Scheduler.CleanupSpec, jobFunc{"cleanup_old_alerts", func() error {
			_, err := s.Cleanup(ctx)
			return err
		}}},
		{s.cfg.Scheduler.DigestSpec, jobFunc{"alert_digest", func() error {
			return s.SendDigest(ctx)
		}}},
	}
	for _, j := range jobs {
		if err := sweeper.AddJob(j.spec, j.job); err != nil {
			return fmt.Errorf("register %s job: %w", j.job.Name(), err)
		}
	}
	sweeper.Start()
	defer sweeper.Stop()

	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

func (s *Service) runFXCycle(ctx context.Context, _ time.Time) error {
	snapshot, err := s.providers.FX.FetchFX(ctx)
	if err != nil {
		return fmt.Errorf("fetch fx snapshot: %w", err)
	}
	return s.dispatch(ctx, rules.DetectFX(s.rules, snapshot), "fx_monitor")
}

func (s *Service) runYieldsCycle(ctx context.Context, _ time.Time) error {
	curve, err := s.providers.Yields.FetchYields(ctx)
	if err != nil {
		return fmt.Errorf("fetch yield curve: %w", err)
	}

	s.mu.Lock()
	prior := s.prevYields
	s.prevYields = curve
	s.mu.Unlock()

	return s.dispatch(ctx, rules.DetectYields(s.rules, curve, prior), "yields_monitor")
}

func (s *Service) runCreditCycle(ctx context.Context, _ time.Time) error {
	snapshot, err := s.providers.Credit.FetchCredit(ctx)
	if err != nil {
		return fmt.Errorf("fetch credit snapshot: %w", err)
	}
	return s.dispatch(ctx, rules.DetectCredit(s.rules, snapshot), "credit_monitor")
}

func (s *Service) runEconomicCycle(ctx context.Context, _ time.Time) error {
	releases, err := s.providers.Economic.FetchEconomic(ctx)
	if err != nil {
		return fmt.Errorf("fetch economic releases: %w", err)
	}
	return s.dispatch(ctx, rules.DetectEconomic(s.rules, releases), "economic_calendar")
}

func (s *Service) runNewsCycle(ctx context.Context, _ time.Time) error {
	articles, err := s.providers.News.FetchNews(ctx)
	if err != nil {
		return fmt.Errorf("fetch news articles: %w", err)
	}
	return s.dispatch(ctx, rules.DetectGeopolitical(s.rules, articles), "news_aggregator")
}

// dispatch runs candidates through the admission path and pushes newly
// admitted criticals to the notifier. Notification failures are logged, not
// propagated: delivery problems must not look like detection failures.
func (s *Service) dispatch(ctx context.Context, candidates []alert.Candidate, source string) error {
	if len(candidates) == 0 {
		return nil
	}

	batch, processErr := s.manager.Process(ctx, candidates, source)

	if s.notifier != nil && s.cfg.Alerting.Enabled && batch.HasCritical() {
		var critical []alert.Candidate
		for _, a := range batch.Alerts {
			if a.Severity == alert.SeverityCritical {
				critical = append(critical, a)
			}
		}
		note := alerting.Notification{
			Subject: "Critical Risk Alerts",
			Source:  source,
			Alerts:  critical,
			SentAt:  batch.Timestamp,
		}
		if err := s.notifier.Notify(ctx, note); err != nil {
			s.logger.Error().Err(err).Str("source", source).Msg("failed to deliver critical notification")
		}
	}

	return processErr
}

// Expire bulk-resolves active alerts older than the configured horizon.
func (s *Service) Expire(ctx context.Context) (int64, error) {
	return s.manager.ExpireOldAlerts(ctx, s.cfg.Scheduler.ExpireHorizon)
}

// Cleanup permanently deletes resolved alerts past the retention horizon.
func (s *Service) Cleanup(ctx context.Context) (int64, error) {
	return s.manager.CleanupOldAlerts(ctx, s.cfg.Scheduler.CleanupRetention)
}

// SendDigest delivers the pending critical/high digest and stamps the
// included alerts as sent. No pending alerts means no delivery.
func (s *Service) SendDigest(ctx context.Context) error {
	if s.notifier == nil || !s.cfg.Alerting.Enabled {
		return nil
	}

	pending, err := s.manager.AlertsForEmail(ctx, true)
	if err != nil {
		return err
	}
	if len(pending.Critical) == 0 && len(pending.High) == 0 {
		return nil
	}

	var ids []int64
	var alerts []alert.Candidate
	for _, rec := range pending.Critical {
		ids = append(ids, rec.ID)
		alerts = append(alerts, rec.AsCandidate())
	}
	for _, rec := range pending.High {
		ids = append(ids, rec.ID)
		alerts = append(alerts, rec.AsCandidate())
	}

	note := alerting.Notification{
		Subject: "Risk Alert Digest",
		Alerts:  alerts,
		SentAt:  time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, note); err != nil {
		return fmt.Errorf("deliver digest: %w", err)
	}

	return s.manager.MarkEmailSent(ctx, ids)
}

type jobFunc struct {
	name string
	fn   func() error
}

func (j jobFunc) Name() string { return j.name }
func (j jobFunc) Run() error   { return j.fn() }
