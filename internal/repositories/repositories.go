package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// NavidromeTimestamp is the layout Navidrome uses for TEXT timestamp columns.
const NavidromeTimestamp = "2006-01-02 15:04:05.000+00:00"

// FormatTimestamp renders t in UTC using [NavidromeTimestamp].
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(NavidromeTimestamp)
}

// nullableTimestamp returns nil for the zero time so the column is stored as NULL.
func nullableTimestamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTimestamp(t)
}

// withTx runs fn in a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
