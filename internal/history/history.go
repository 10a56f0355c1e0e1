// Package history journals dispatched hook events so the state machine's
// decisions can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one journalled dispatch.
type Entry struct {
	ID            string
	SessionID     string
	Event         string
	Payload       string
	PendingBefore bool
	PendingAfter  bool
	SessionReset  bool
	CreatedAt     time.Time
}

// Filter narrows List. Zero values mean no restriction.
type Filter struct {
	SessionID string
	Limit     int
}

type Service interface {
	Record(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, filter Filter) ([]Entry, error)
}

type service struct {
	db *sql.DB
}

func NewService(db *sql.DB) Service {
	return &service{db: db}
}

func (s *service) Record(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO dispatches (id, session_id, event, payload, pending_before, pending_after, session_reset, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.SessionID,
		entry.Event,
		entry.Payload,
		entry.PendingBefore,
		entry.PendingAfter,
		entry.SessionReset,
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("db.InsertDispatch: %w", err)
	}
	return entry, nil
}

// List returns entries newest first.
func (s *service) List(ctx context.Context, filter Filter) ([]Entry, error) {
	query := `SELECT id, session_id, event, payload, pending_before, pending_after, session_reset, created_at FROM dispatches`
	var args []any
	if filter.SessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, filter.SessionID)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ListDispatches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry     Entry
			createdAt string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.SessionID,
			&entry.Event,
			&entry.Payload,
			&entry.PendingBefore,
			&entry.PendingAfter,
			&entry.SessionReset,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("db.ListDispatches scan: %w", err)
		}
		entry.CreatedAt = parseTime(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db.ListDispatches: %w", err)
	}
	return entries, nil
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
