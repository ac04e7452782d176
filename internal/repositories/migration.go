package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// MigrationRepository stores iTunes migration bookkeeping in the local database.
//
// Correlations are replaced wholesale by every import; playlist migrations accumulate.
type MigrationRepository struct {
	db *sql.DB
}

// NewMigrationRepository creates a new MigrationRepository with the given database connection
func NewMigrationRepository(db *sql.DB) *MigrationRepository {
	return &MigrationRepository{db: db}
}

// SaveCorrelations records run and replaces all stored correlations with correlations.
func (r *MigrationRepository) SaveCorrelations(ctx context.Context, run *models.ImportRun, correlations []models.Correlation) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO import_runs (id, itunes_xml, navidrome_db, track_count, created_at) VALUES (?, ?, ?, ?, ?)`,
			run.ID, run.ITunesXML, run.NavidromeDB, run.TrackCount, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert import run: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM correlations`); err != nil {
			return fmt.Errorf("failed to clear correlations: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO correlations (itunes_id, media_file_id, run_id, created_at) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare correlation insert: %w", err)
		}
		defer stmt.Close()

		for _, c := range correlations {
			if _, err := stmt.ExecContext(ctx, c.ITunesID, c.MediaFileID, run.ID, run.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert correlation %d: %w", c.ITunesID, err)
			}
		}
		return nil
	})
}

// Correlations returns the stored iTunes Track ID to media_file ID mapping.
func (r *MigrationRepository) Correlations(ctx context.Context) (map[int]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT itunes_id, media_file_id FROM correlations`)
	if err != nil {
		return nil, fmt.Errorf("failed to query correlations: %w", err)
	}
	defer rows.Close()

	correlations := make(map[int]string)
	for rows.Next() {
		var (
			itunesID    int
			mediaFileID string
		)
		if err := rows.Scan(&itunesID, &mediaFileID); err != nil {
			return nil, fmt.Errorf("failed to scan correlation: %w", err)
		}
		correlations[itunesID] = mediaFileID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return correlations, nil
}

// LatestRun returns the most recent import run, or nil when no import has been recorded.
func (r *MigrationRepository) LatestRun(ctx context.Context) (*models.ImportRun, error) {
	var run models.ImportRun
	err := r.db.QueryRowContext(ctx, `
		SELECT id, itunes_xml, navidrome_db, track_count, created_at
		FROM import_runs
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&run.ID, &run.ITunesXML, &run.NavidromeDB, &run.TrackCount, &run.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import run: %w", err)
	}
	return &run, nil
}

// PlaylistMigration returns the migration recorded for persistentID, or nil when there is none.
func (r *MigrationRepository) PlaylistMigration(ctx context.Context, persistentID string) (*models.PlaylistMigration, error) {
	query := `
		SELECT persistent_id, name, navidrome_id, song_count, skipped_count, migrated_at
		FROM playlist_migrations
		WHERE persistent_id = ?
	`

	m, err := scanPlaylistMigration(r.db.QueryRowContext(ctx, query, persistentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist migration: %w", err)
	}
	return m, nil
}

// RecordPlaylistMigration inserts m, replacing an earlier record for the same playlist.
func (r *MigrationRepository) RecordPlaylistMigration(ctx context.Context, m *models.PlaylistMigration) error {
	if m.MigratedAt.IsZero() {
		m.MigratedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO playlist_migrations (persistent_id, name, navidrome_id, song_count, skipped_count, migrated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(persistent_id) DO UPDATE SET
			name = excluded.name,
			navidrome_id = excluded.navidrome_id,
			song_count = excluded.song_count,
			skipped_count = excluded.skipped_count,
			migrated_at = excluded.migrated_at
	`, m.PersistentID, m.Name, m.NavidromeID, m.SongCount, m.SkippedCount, m.MigratedAt)
	if err != nil {
		return fmt.Errorf("failed to record playlist migration: %w", err)
	}
	return nil
}

// ListPlaylistMigrations returns every recorded playlist migration, newest first.
func (r *MigrationRepository) ListPlaylistMigrations(ctx context.Context) ([]models.PlaylistMigration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT persistent_id, name, navidrome_id, song_count, skipped_count, migrated_at
		FROM playlist_migrations
		ORDER BY migrated_at DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlist migrations: %w", err)
	}
	defer rows.Close()

	var migrations []models.PlaylistMigration
	for rows.Next() {
		m, err := scanPlaylistMigration(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist migration: %w", err)
		}
		migrations = append(migrations, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return migrations, nil
}

// DeletePlaylistMigration forgets the migration of persistentID so it can be migrated again.
func (r *MigrationRepository) DeletePlaylistMigration(ctx context.Context, persistentID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM playlist_migrations WHERE persistent_id = ?`, persistentID)
	if err != nil {
		return fmt.Errorf("failed to delete playlist migration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: no migration recorded for %s", shared.ErrPlaylistNotFound, persistentID)
	}
	return nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanPlaylistMigration(s scanner) (*models.PlaylistMigration, error) {
	var m models.PlaylistMigration
	if err := s.Scan(&m.PersistentID, &m.Name, &m.NavidromeID, &m.SongCount, &m.SkippedCount, &m.MigratedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
