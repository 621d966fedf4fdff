package alert

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies the risk domain an alert originates from.
type Type string

const (
	TypeFX        Type = "FX"
	TypeYields    Type = "YIELDS"
	TypeCredit    Type = "CREDIT"
	TypePolitical Type = "POLITICAL"
	TypeEcon      Type = "ECON"
	TypeCat       Type = "CAT"
)

// Severity grades alert urgency.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Candidate is an unsaved alert proposal produced by a detector. It only
// lives within a single Process call; admitted candidates become Records.
type Candidate struct {
	Type           Type
	Severity       Severity
	Title          string
	Message        string
	RelatedEntity  string
	RelatedValue   decimal.Decimal
	ThresholdValue decimal.Decimal
	Country        string
	Details        map[string]any
	TriggeredAt    time.Time
}

// ContentHash derives the deduplication identity for the candidate. It is a
// pure function of (type, entity, severity); title, message, and details do
// not participate, so re-wording an alert never changes dedup behaviour.
func (c Candidate) ContentHash() string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%s:%s", c.Type, c.RelatedEntity, c.Severity)))
	return hex.EncodeToString(sum[:])
}

// Batch carries the newly admitted alerts from one Process call.
type Batch struct {
	Alerts       []Candidate
	Timestamp    time.Time
	SourceModule string
}

// CriticalCount counts CRITICAL alerts in the batch.
func (b Batch) CriticalCount() int {
	return b.countSeverity(SeverityCritical)
}

// HighCount counts HIGH alerts in the batch.
func (b Batch) HighCount() int {
	return b.countSeverity(SeverityHigh)
}

// HasCritical reports whether the batch contains a CRITICAL alert.
func (b Batch) HasCritical() bool {
	return b.CriticalCount() > 0
}

func (b Batch) countSeverity(s Severity) int {
	n := 0
	for _, a := range b.Alerts {
		if a.Severity == s {
			n++
		}
	}
	return n
}

// Record is a persisted alert owned by the Manager.
//
// Invariants: ResolvedAt is non-nil exactly when IsActive is false, and
// AcknowledgedAt is non-nil exactly when Acknowledged is true.
// Acknowledgement does not imply resolution.
type Record struct {
	ID             int64
	Type           Type
	Severity       Severity
	Title          string
	Message        string
	RelatedEntity  string
	RelatedValue   decimal.Decimal
	ThresholdValue decimal.Decimal
	Country        string
	Details        map[string]any
	ContentHash    string
	TriggeredAt    time.Time
	IsActive       bool
	Acknowledged   bool
	AcknowledgedAt *time.Time
	ResolvedAt     *time.Time
	EmailSent      bool
	EmailSentAt    *time.Time
	CreatedAt      time.Time
}

// AsCandidate projects the display fields of a stored alert back into the
// candidate shape consumed by notifiers and summaries.
func (r Record) AsCandidate() Candidate {
	return Candidate{
		Type:           r.Type,
		Severity:       r.Severity,
		Title:          r.Title,
		Message:        r.Message,
		RelatedEntity:  r.RelatedEntity,
		RelatedValue:   r.RelatedValue,
		ThresholdValue: r.ThresholdValue,
		Country:        r.Country,
		Details:        r.Details,
		TriggeredAt:    r.TriggeredAt,
	}
}

// Summary is an active-alert snapshot, recomputed fresh on every call.
type Summary struct {
	Timestamp   time.Time
	TotalActive int
	BySeverity  map[Severity]int
	ByType      map[Type]int
	Critical    []Record
	High        []Record
}

// HasCritical reports whether any active CRITICAL alert exists.
func (s Summary) HasCritical() bool {
	return len(s.Critical) > 0
}
