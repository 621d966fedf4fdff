package alert

import (
	"context"
	"time"
)

// Filter narrows gateway queries. Nil fields are ignored; zero-length IDs
// means "no ID constraint".
type Filter struct {
	Type            *Type
	Severity        *Severity
	Active          *bool
	TriggeredAfter  *time.Time
	TriggeredBefore *time.Time
	ResolvedBefore  *time.Time
	EmailUnsent     bool
	IDs             []int64
}

// Fields enumerates the mutable columns of a persisted alert. Nil fields are
// left untouched.
type Fields struct {
	IsActive       *bool
	ResolvedAt     *time.Time
	Acknowledged   *bool
	AcknowledgedAt *time.Time
	EmailSent      *bool
	EmailSentAt    *time.Time
}

// Gateway is the persistence contract the Manager depends on. The concrete
// implementation lives in internal/storage; tests substitute an in-memory one.
type Gateway interface {
	// Insert persists a new alert and returns its assigned ID.
	Insert(ctx context.Context, rec Record) (int64, error)
	// FindByHashSince returns the most recent alert with the given content
	// hash triggered at or after cutoff, or nil when none exists.
	FindByHashSince(ctx context.Context, contentHash string, cutoff time.Time) (*Record, error)
	// List returns alerts matching the filter, most recently triggered first.
	List(ctx context.Context, f Filter) ([]Record, error)
	// Update applies fields to a single alert, reporting whether a row matched.
	Update(ctx context.Context, id int64, fields Fields) (bool, error)
	// UpdateWhere applies fields to every alert matching the filter.
	UpdateWhere(ctx context.Context, f Filter, fields Fields) (int64, error)
	// DeleteWhere permanently removes every alert matching the filter.
	DeleteWhere(ctx context.Context, f Filter) (int64, error)
}

func boolPtr(v bool) *bool { return &v }

func timePtr(v time.Time) *time.Time { return &v }
