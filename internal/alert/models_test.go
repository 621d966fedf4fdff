package alert

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestContentHashStability(t *testing.T) {
	base := Candidate{
		Type:          TypeFX,
		Severity:      SeverityHigh,
		RelatedEntity: "USD/JPY",
		Title:         "FX Alert: USD/JPY",
		Message:       "USD/JPY moved 1.8% in 1h",
		RelatedValue:  decimal.NewFromFloat(1.8),
		TriggeredAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	require.Equal(t, "c5224ad8d4fe9aa1e39aa93097a5957c", base.ContentHash())

	reworded := base
	reworded.Title = "different title"
	reworded.Message = "different message"
	reworded.Details = map[string]any{"extra": true}
	reworded.TriggeredAt = base.TriggeredAt.Add(48 * time.Hour)
	require.Equal(t, base.ContentHash(), reworded.ContentHash())

	escalated := base
	escalated.Severity = SeverityCritical
	require.NotEqual(t, base.ContentHash(), escalated.ContentHash())

	otherPair := base
	otherPair.RelatedEntity = "EUR/USD"
	require.NotEqual(t, base.ContentHash(), otherPair.ContentHash())

	otherType := base
	otherType.Type = TypeCredit
	require.NotEqual(t, base.ContentHash(), otherType.ContentHash())
}

func TestBatchCounts(t *testing.T) {
	batch := Batch{
		Alerts: []Candidate{
			{Type: TypeFX, Severity: SeverityCritical},
			{Type: TypeYields, Severity: SeverityHigh},
			{Type: TypeCredit, Severity: SeverityHigh},
			{Type: TypeEcon, Severity: SeverityMedium},
		},
	}

	require.Equal(t, 1, batch.CriticalCount())
	require.Equal(t, 2, batch.HighCount())
	require.True(t, batch.HasCritical())

	require.False(t, Batch{}.HasCritical())
	require.Equal(t, 0, Batch{}.CriticalCount())
}

func TestRecordAsCandidate(t *testing.T) {
	rec := Record{
		ID:            7,
		Type:          TypePolitical,
		Severity:      SeverityCritical,
		Title:         "Geopolitical Alert",
		Message:       "invasion reported",
		RelatedEntity: "news:abc",
		Country:       "UA",
		Details:       map[string]any{"source": "Reuters"},
		ContentHash:   "ignored",
		TriggeredAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		IsActive:      true,
	}

	cand := rec.AsCandidate()
	require.Equal(t, rec.Type, cand.Type)
	require.Equal(t, rec.Severity, cand.Severity)
	require.Equal(t, rec.Title, cand.Title)
	require.Equal(t, rec.Country, cand.Country)
	require.Equal(t, rec.TriggeredAt, cand.TriggeredAt)

	// The projection recomputes its identity from the triple, not the stored
	// hash column.
	rehashed := Candidate{Type: rec.Type, RelatedEntity: rec.RelatedEntity, Severity: rec.Severity}
	require.Equal(t, rehashed.ContentHash(), cand.ContentHash())
}
