package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// FindMediaFile returns the media file stored at the library-relative path.
func (r *LibraryRepository) FindMediaFile(ctx context.Context, path string) (*models.MediaFile, error) {
	mf := models.MediaFile{Path: path}
	var artistID, albumID sql.NullString

	err := r.db.QueryRowContext(ctx,
		`SELECT id, artist_id, album_id FROM media_file WHERE path = ?`, path,
	).Scan(&mf.ID, &artistID, &albumID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query media file: %w", err)
	}

	mf.ArtistID = artistID.String
	mf.AlbumID = albumID.String
	return &mf, nil
}

// ApplyStats replaces every annotation with update for userID in a single transaction:
// it clears the annotation table, rewrites media file timestamps, inserts the new
// annotations and then aligns each album's dates with its oldest media file.
//
// It returns the number of albums whose timestamps were synchronised.
func (r *LibraryRepository) ApplyStats(ctx context.Context, userID string, update *models.LibraryUpdate) (int64, error) {
	var synced int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM annotation`); err != nil {
			return fmt.Errorf("failed to clear annotations: %w", err)
		}

		if err := updateTimestamps(ctx, tx, update.Timestamps); err != nil {
			return err
		}

		if err := insertAnnotations(ctx, tx, userID, update.Stats); err != nil {
			return err
		}

		n, err := syncAlbumTimestamps(ctx, tx)
		if err != nil {
			return err
		}
		synced = n
		return nil
	})
	return synced, err
}

func updateTimestamps(ctx context.Context, tx *sql.Tx, timestamps []models.MediaTimestamp) error {
	stmt, err := tx.PrepareContext(ctx, `UPDATE media_file SET created_at = ?, updated_at = ?, birth_time = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare timestamp update: %w", err)
	}
	defer stmt.Close()

	for _, ts := range timestamps {
		at := FormatTimestamp(ts.At)
		if _, err := stmt.ExecContext(ctx, at, at, at, ts.MediaFileID); err != nil {
			return fmt.Errorf("failed to update timestamps of %s: %w", ts.MediaFileID, err)
		}
	}
	return nil
}

func insertAnnotations(ctx context.Context, tx *sql.Tx, userID string, stats []models.PlayStats) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO annotation (user_id, item_id, item_type, play_count, play_date, rating, starred, starred_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare annotation insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range stats {
		_, err := stmt.ExecContext(ctx, userID, s.ItemID, s.ItemType, s.PlayCount, nullableTimestamp(s.PlayDate), s.Rating)
		if err != nil {
			return fmt.Errorf("failed to insert %s annotation %s: %w", s.ItemType, s.ItemID, err)
		}
	}
	return nil
}

func syncAlbumTimestamps(ctx context.Context, tx *sql.Tx) (int64, error) {
	result, err := tx.ExecContext(ctx, `
		UPDATE album
		SET
			created_at = (SELECT MIN(created_at) FROM media_file WHERE media_file.album_id = album.id),
			updated_at = (SELECT MIN(created_at) FROM media_file WHERE media_file.album_id = album.id),
			imported_at = (SELECT MIN(created_at) FROM media_file WHERE media_file.album_id = album.id)
		WHERE EXISTS (SELECT 1 FROM media_file WHERE media_file.album_id = album.id)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to synchronise album timestamps: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}
