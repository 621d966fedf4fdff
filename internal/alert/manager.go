package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCooldown applies to alert types without a configured window.
const DefaultCooldown = time.Hour

// ManagerOptions tune the alert manager.
type ManagerOptions struct {
	// Cooldowns maps alert types to their duplicate-suppression windows.
	Cooldowns map[Type]time.Duration
	// Clock overrides time.Now, injected by tests.
	Clock func() time.Time
}

// Manager owns the lifecycle of risk alerts: admission (mute check, duplicate
// check, persistence), resolution, acknowledgement, expiry sweeps, retention
// cleanup, and read-side aggregation.
type Manager struct {
	gateway   Gateway
	mutes     *MuteRegistry
	cooldowns map[Type]time.Duration
	now       func() time.Time
	logger    zerolog.Logger

	// Serialises Process calls within this instance. The duplicate check and
	// the insert have no isolation at the store level, so overlapping batches
	// from another process could still double-admit within a cooldown window.
	mu sync.Mutex
}

// NewManager constructs a Manager on top of a persistence gateway.
func NewManager(gateway Gateway, opts ManagerOptions, logger zerolog.Logger) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Manager{
		gateway:   gateway,
		mutes:     NewMuteRegistry(clock),
		cooldowns: opts.Cooldowns,
		now:       clock,
		logger:    logger.With().Str("component", "alert_manager").Logger(),
	}
}

// Cooldown returns the duplicate-suppression window for an alert type.
func (m *Manager) Cooldown(t Type) time.Duration {
	if d, ok := m.cooldowns[t]; ok {
		return d
	}
	return DefaultCooldown
}

// Process runs the admission path over a batch of candidates. Each candidate
// is evaluated independently: muted identities are discarded, identities seen
// within their type's cooldown window are discarded, survivors are persisted
// as new active alerts. The returned batch contains only newly admitted
// alerts. A persistence failure surfaces to the caller without rolling back
// alerts already admitted in the same batch.
func (m *Manager) Process(ctx context.Context, candidates []Candidate, sourceModule string) (Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	batch := Batch{
		Timestamp:    m.now().UTC(),
		SourceModule: sourceModule,
	}

	for _, cand := range candidates {
		hash := cand.ContentHash()

		if m.mutes.IsMuted(hash) {
			m.logger.Debug().
				Str("type", string(cand.Type)).
				Str("entity", cand.RelatedEntity).
				Msg("skipping muted alert")
			continue
		}

		cutoff := m.now().Add(-m.Cooldown(cand.Type))
		existing, err := m.gateway.FindByHashSince(ctx, hash, cutoff)
		if err != nil {
			return batch, fmt.Errorf("duplicate check %s/%s: %w", cand.Type, cand.RelatedEntity, err)
		}
		if existing != nil {
			m.logger.Debug().
				Str("type", string(cand.Type)).
				Str("entity", cand.RelatedEntity).
				Msg("skipping duplicate alert")
			continue
		}

		if _, err := m.gateway.Insert(ctx, m.newRecord(cand, hash)); err != nil {
			return batch, fmt.Errorf("persist alert %s/%s: %w", cand.Type, cand.RelatedEntity, err)
		}
		batch.Alerts = append(batch.Alerts, cand)

		m.logger.Info().
			Str("severity", string(cand.Severity)).
			Str("type", string(cand.Type)).
			Str("title", cand.Title).
			Msg("new alert admitted")
	}

	return batch, nil
}

func (m *Manager) newRecord(cand Candidate, hash string) Record {
	triggered := cand.TriggeredAt
	if triggered.IsZero() {
		triggered = m.now().UTC()
	}
	return Record{
		Type:           cand.Type,
		Severity:       cand.Severity,
		Title:          cand.Title,
		Message:        cand.Message,
		RelatedEntity:  cand.RelatedEntity,
		RelatedValue:   cand.RelatedValue,
		ThresholdValue: cand.ThresholdValue,
		Country:        cand.Country,
		Details:        cand.Details,
		ContentHash:    hash,
		TriggeredAt:    triggered,
		IsActive:       true,
	}
}

// Resolve transitions an active alert to resolved, stamping ResolvedAt.
// Resolving an already-resolved or unknown alert is a no-op returning false.
func (m *Manager) Resolve(ctx context.Context, id int64) (bool, error) {
	count, err := m.gateway.UpdateWhere(ctx,
		Filter{IDs: []int64{id}, Active: boolPtr(true)},
		Fields{IsActive: boolPtr(false), ResolvedAt: timePtr(m.now().UTC())},
	)
	if err != nil {
		return false, fmt.Errorf("resolve alert %d: %w", id, err)
	}
	return count > 0, nil
}

// Acknowledge marks an alert as acknowledged, independent of whether it is
// still active. Returns false when no such alert exists.
func (m *Manager) Acknowledge(ctx context.Context, id int64) (bool, error) {
	ok, err := m.gateway.Update(ctx, id, Fields{
		Acknowledged:   boolPtr(true),
		AcknowledgedAt: timePtr(m.now().UTC()),
	})
	if err != nil {
		return false, fmt.Errorf("acknowledge alert %d: %w", id, err)
	}
	return ok, nil
}

// Mute suppresses the candidate's identity for the given duration. Muting is
// independent of history-based dedup and applies even to identities never
// admitted before.
func (m *Manager) Mute(cand Candidate, duration time.Duration) {
	m.mutes.Mute(cand.ContentHash(), duration)
	m.logger.Info().
		Str("type", string(cand.Type)).
		Str("entity", cand.RelatedEntity).
		Dur("duration", duration).
		Msg("alert muted")
}

// ExpireOldAlerts bulk-resolves every active alert triggered before
// now-horizon, returning the number transitioned.
func (m *Manager) ExpireOldAlerts(ctx context.Context, horizon time.Duration) (int64, error) {
	now := m.now().UTC()
	count, err := m.gateway.UpdateWhere(ctx,
		Filter{Active: boolPtr(true), TriggeredBefore: timePtr(now.Add(-horizon))},
		Fields{IsActive: boolPtr(false), ResolvedAt: timePtr(now)},
	)
	if err != nil {
		return 0, fmt.Errorf("expire old alerts: %w", err)
	}
	if count > 0 {
		m.logger.Info().Int64("count", count).Msg("expired old alerts")
	}
	return count, nil
}

// CleanupOldAlerts permanently deletes resolved alerts whose resolution is
// older than the retention horizon. Active alerts are never deleted here,
// whatever their age.
func (m *Manager) CleanupOldAlerts(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := m.now().UTC().Add(-retention)
	count, err := m.gateway.DeleteWhere(ctx, Filter{
		Active:         boolPtr(false),
		ResolvedBefore: timePtr(cutoff),
	})
	if err != nil {
		return 0, fmt.Errorf("cleanup old alerts: %w", err)
	}
	if count > 0 {
		m.logger.Info().Int64("count", count).Msg("cleaned up old alerts")
	}
	return count, nil
}

// ActiveAlerts lists active alerts, optionally narrowed by type and severity.
// Empty strings mean no constraint.
func (m *Manager) ActiveAlerts(ctx context.Context, t Type, s Severity) ([]Record, error) {
	f := Filter{Active: boolPtr(true)}
	if t != "" {
		f.Type = &t
	}
	if s != "" {
		f.Severity = &s
	}
	recs, err := m.gateway.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list active alerts: %w", err)
	}
	return recs, nil
}

// EmailAlerts partitions active alerts into critical and high buckets for
// digest delivery. With unsentOnly set, alerts already emailed are skipped.
type EmailAlerts struct {
	Critical []Record
	High     []Record
}

// AlertsForEmail gathers active alerts pending notification.
func (m *Manager) AlertsForEmail(ctx context.Context, unsentOnly bool) (EmailAlerts, error) {
	recs, err := m.gateway.List(ctx, Filter{Active: boolPtr(true), EmailUnsent: unsentOnly})
	if err != nil {
		return EmailAlerts{}, fmt.Errorf("list alerts for email: %w", err)
	}

	var out EmailAlerts
	for _, rec := range recs {
		switch rec.Severity {
		case SeverityCritical:
			out.Critical = append(out.Critical, rec)
		case SeverityHigh:
			out.High = append(out.High, rec)
		}
	}
	return out, nil
}

// MarkEmailSent stamps the given alerts as emailed.
func (m *Manager) MarkEmailSent(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := m.gateway.UpdateWhere(ctx,
		Filter{IDs: ids},
		Fields{EmailSent: boolPtr(true), EmailSentAt: timePtr(m.now().UTC())},
	)
	if err != nil {
		return fmt.Errorf("mark email sent: %w", err)
	}
	return nil
}

// GetSummary recomputes the active-alert summary from the store. Nothing is
// cached between calls.
func (m *Manager) GetSummary(ctx context.Context) (Summary, error) {
	active, err := m.ActiveAlerts(ctx, "", "")
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{
		Timestamp:   m.now().UTC(),
		TotalActive: len(active),
		BySeverity:  make(map[Severity]int),
		ByType:      make(map[Type]int),
	}
	for _, rec := range active {
		summary.BySeverity[rec.Severity]++
		summary.ByType[rec.Type]++
		switch rec.Severity {
		case SeverityCritical:
			summary.Critical = append(summary.Critical, rec)
		case SeverityHigh:
			summary.High = append(summary.High, rec)
		}
	}
	return summary, nil
}
