package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joeblew999/plat-ingest/internal/service"
)

// ActivityStore is a service.Ledger backed by DuckDB.
type ActivityStore struct {
	conn *sql.DB
}

// NewActivityStore wraps an open connection.
func NewActivityStore(conn *sql.DB) *ActivityStore {
	return &ActivityStore{conn: conn}
}

// Record inserts one row.
func (s *ActivityStore) Record(ctx context.Context, a service.Activity) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO activity (id, kind, subject, outcome, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Kind, a.Subject, a.Outcome, a.Message, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first.
func (s *ActivityStore) Recent(ctx context.Context, limit int) ([]service.Activity, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, kind, subject, outcome, COALESCE(message, ''), created_at
		 FROM activity ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	out := []service.Activity{}
	for rows.Next() {
		var a service.Activity
		if err := rows.Scan(&a.ID, &a.Kind, &a.Subject, &a.Outcome, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		a.CreatedAt = a.CreatedAt.UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}
