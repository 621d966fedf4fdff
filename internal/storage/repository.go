package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"macro-risk-alerts/internal/alert"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
	// ErrUnfilteredWrite guards bulk updates and deletes against running
	// without a single WHERE condition.
	ErrUnfilteredWrite = errors.New("storage: refusing bulk write without filter")
)

const alertColumns = `id,
        alert_type,
        severity,
        title,
        message,
        related_entity,
        related_value,
        threshold_value,
        country,
        details,
        content_hash,
        triggered_at,
        is_active,
        acknowledged,
        acknowledged_at,
        resolved_at,
        email_sent,
        email_sent_at,
        created_at`

const (
	insertAlertSQL = `INSERT INTO risk_alerts (
        alert_type,
        severity,
        title,
        message,
        related_entity,
        related_value,
        threshold_value,
        country,
        details,
        content_hash,
        triggered_at,
        is_active
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
    )
    RETURNING id;`

	findByHashSinceSQL = `SELECT ` + alertColumns + `
    FROM risk_alerts
    WHERE content_hash = $1
      AND triggered_at >= $2
    ORDER BY triggered_at DESC
    LIMIT 1;`
)

// Store persists alerts in PostgreSQL and implements alert.Gateway.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// Insert persists a new alert and returns its assigned ID.
func (s *Store) Insert(ctx context.Context, rec alert.Record) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	details, err := json.Marshal(rec.Details)
	if err != nil {
		return 0, fmt.Errorf("marshal alert details: %w", err)
	}
	if rec.Details == nil {
		details = []byte(`{}`)
	}

	var id int64
	scanErr := pool.QueryRow(ctx, insertAlertSQL,
		string(rec.Type),
		string(rec.Severity),
		rec.Title,
		rec.Message,
		rec.RelatedEntity,
		rec.RelatedValue.String(),
		rec.ThresholdValue.String(),
		rec.Country,
		details,
		rec.ContentHash,
		rec.TriggeredAt,
		rec.IsActive,
	).Scan(&id)
	if scanErr != nil {
		return 0, fmt.Errorf("insert alert: %w", scanErr)
	}
	return id, nil
}

// FindByHashSince returns the most recent alert with the hash triggered at or
// after cutoff, or nil when no such alert exists.
func (s *Store) FindByHashSince(ctx context.Context, contentHash string, cutoff time.Time) (*alert.Record, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, findByHashSinceSQL, contentHash, cutoff)
	if queryErr != nil {
		return nil, fmt.Errorf("find alert by hash: %w", queryErr)
	}
	defer rows.Close()

	if !rows.Next() {
		if rows.Err() != nil {
			return nil, rows.Err()
		}
		return nil, nil
	}
	rec, scanErr := scanAlert(rows)
	if scanErr != nil {
		return nil, scanErr
	}
	return &rec, nil
}

// List returns alerts matching the filter, most recently triggered first.
func (s *Store) List(ctx context.Context, f alert.Filter) ([]alert.Record, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	where, args := buildFilter(f)
	query := `SELECT ` + alertColumns + ` FROM risk_alerts`
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY triggered_at DESC;"

	rows, queryErr := pool.Query(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("list alerts: %w", queryErr)
	}
	defer rows.Close()

	records := make([]alert.Record, 0)
	for rows.Next() {
		rec, scanErr := scanAlert(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

// Update applies fields to a single alert, reporting whether a row matched.
func (s *Store) Update(ctx context.Context, id int64, fields alert.Fields) (bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return false, err
	}

	set, args := buildFields(fields, 1)
	if set == "" {
		return false, nil
	}
	args = append([]any{id}, args...)

	cmdTag, execErr := pool.Exec(ctx, `UPDATE risk_alerts SET `+set+` WHERE id = $1;`, args...)
	if execErr != nil {
		return false, fmt.Errorf("update alert: %w", execErr)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// UpdateWhere applies fields to every alert matching the filter.
func (s *Store) UpdateWhere(ctx context.Context, f alert.Filter, fields alert.Fields) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	where, whereArgs := buildFilter(f)
	if where == "" {
		return 0, ErrUnfilteredWrite
	}
	set, setArgs := buildFields(fields, len(whereArgs))
	if set == "" {
		return 0, nil
	}

	query := `UPDATE risk_alerts SET ` + set + ` WHERE ` + where + `;`
	cmdTag, execErr := pool.Exec(ctx, query, append(whereArgs, setArgs...)...)
	if execErr != nil {
		return 0, fmt.Errorf("update alerts where: %w", execErr)
	}
	return cmdTag.RowsAffected(), nil
}

// DeleteWhere permanently removes every alert matching the filter.
func (s *Store) DeleteWhere(ctx context.Context, f alert.Filter) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}

	where, args := buildFilter(f)
	if where == "" {
		return 0, ErrUnfilteredWrite
	}

	cmdTag, execErr := pool.Exec(ctx, `DELETE FROM risk_alerts WHERE `+where+`;`, args...)
	if execErr != nil {
		return 0, fmt.Errorf("delete alerts where: %w", execErr)
	}
	return cmdTag.RowsAffected(), nil
}

// buildFilter renders the filter as a WHERE fragment with $n placeholders
// numbered from 1.
func buildFilter(f alert.Filter) (string, []any) {
	var clauses []string
	var args []any

	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Type != nil {
		add("alert_type = $%d", string(*f.Type))
	}
	if f.Severity != nil {
		add("severity = $%d", string(*f.Severity))
	}
	if f.Active != nil {
		add("is_active = $%d", *f.Active)
	}
	if f.TriggeredAfter != nil {
		add("triggered_at >= $%d", *f.TriggeredAfter)
	}
	if f.TriggeredBefore != nil {
		add("triggered_at < $%d", *f.TriggeredBefore)
	}
	if f.ResolvedBefore != nil {
		add("resolved_at < $%d", *f.ResolvedBefore)
	}
	if f.EmailUnsent {
		clauses = append(clauses, "email_sent = FALSE")
	}
	if len(f.IDs) > 0 {
		add("id = ANY($%d)", f.IDs)
	}

	return strings.Join(clauses, " AND "), args
}

// buildFields renders the fields as a SET fragment with placeholders starting
// after the given offset.
func buildFields(fields alert.Fields, offset int) (string, []any) {
	var clauses []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, offset+len(args)))
	}

	if fields.IsActive != nil {
		add("is_active", *fields.IsActive)
	}
	if fields.ResolvedAt != nil {
		add("resolved_at", *fields.ResolvedAt)
	}
	if fields.Acknowledged != nil {
		add("acknowledged", *fields.Acknowledged)
	}
	if fields.AcknowledgedAt != nil {
		add("acknowledged_at", *fields.AcknowledgedAt)
	}
	if fields.EmailSent != nil {
		add("email_sent", *fields.EmailSent)
	}
	if fields.EmailSentAt != nil {
		add("email_sent_at", *fields.EmailSentAt)
	}

	return strings.Join(clauses, ", "), args
}

func scanAlert(rows pgx.Rows) (alert.Record, error) {
	var (
		rec            alert.Record
		alertType      string
		severity       string
		relatedValue   sql.NullString
		thresholdValue sql.NullString
		country        sql.NullString
		details        []byte
		acknowledgedAt sql.NullTime
		resolvedAt     sql.NullTime
		emailSentAt    sql.NullTime
	)

	if err := rows.Scan(
		&rec.ID,
		&alertType,
		&severity,
		&rec.Title,
		&rec.Message,
		&rec.RelatedEntity,
		&relatedValue,
		&thresholdValue,
		&country,
		&details,
		&rec.ContentHash,
		&rec.TriggeredAt,
		&rec.IsActive,
		&rec.Acknowledged,
		&acknowledgedAt,
		&resolvedAt,
		&rec.EmailSent,
		&emailSentAt,
		&rec.CreatedAt,
	); err != nil {
		return alert.Record{}, err
	}

	rec.Type = alert.Type(alertType)
	rec.Severity = alert.Severity(severity)
	rec.Country = country.String

	if relatedValue.Valid {
		value, err := decimal.NewFromString(relatedValue.String)
		if err != nil {
			return alert.Record{}, fmt.Errorf("parse related value: %w", err)
		}
		rec.RelatedValue = value
	}
	if thresholdValue.Valid {
		value, err := decimal.NewFromString(thresholdValue.String)
		if err != nil {
			return alert.Record{}, fmt.Errorf("parse threshold value: %w", err)
		}
		rec.ThresholdValue = value
	}

	if len(details) > 0 {
		if err := json.Unmarshal(details, &rec.Details); err != nil {
			return alert.Record{}, fmt.Errorf("decode alert details: %w", err)
		}
	}

	if acknowledgedAt.Valid {
		t := acknowledgedAt.Time
		rec.AcknowledgedAt = &t
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		rec.ResolvedAt = &t
	}
	if emailSentAt.Valid {
		t := emailSentAt.Time
		rec.EmailSentAt = &t
	}

	return rec, nil
}

var _ alert.Gateway = (*Store)(nil)
