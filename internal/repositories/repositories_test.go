package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// navidromeSchema is the subset of the Navidrome schema touched by [LibraryRepository].
const navidromeSchema = `
CREATE TABLE user (id TEXT PRIMARY KEY, user_name TEXT NOT NULL);
CREATE TABLE album (id TEXT PRIMARY KEY, name TEXT, created_at TEXT, updated_at TEXT, imported_at TEXT);
CREATE TABLE media_file (
	id TEXT PRIMARY KEY,
	path TEXT NOT NULL,
	artist_id TEXT,
	album_id TEXT,
	created_at TEXT,
	updated_at TEXT,
	birth_time TEXT
);
CREATE TABLE annotation (
	user_id TEXT NOT NULL,
	item_id TEXT NOT NULL,
	item_type TEXT NOT NULL,
	play_count INTEGER DEFAULT 0,
	play_date TEXT,
	rating INTEGER DEFAULT 0,
	starred BOOLEAN DEFAULT FALSE,
	starred_at TEXT,
	UNIQUE (user_id, item_id, item_type)
);
`

// openMemoryDB opens an in-memory database on a single connection so every query sees the same data.
func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	shared.ConfigureDatabase(db, 1, 1)
	t.Cleanup(func() { db.Close() })
	return db
}

// setupNavidromeDB creates a Navidrome-like library with one user, one album and two media files.
func setupNavidromeDB(t *testing.T) *sql.DB {
	t.Helper()

	db := openMemoryDB(t)
	if _, err := db.Exec(navidromeSchema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	fixtures := []string{
		`INSERT INTO user (id, user_name) VALUES ('u1', 'admin')`,
		`INSERT INTO album (id, name, created_at) VALUES ('al-opera', 'A Night at the Opera', '2023-01-01 00:00:00.000+00:00')`,
		`INSERT INTO album (id, name, created_at) VALUES ('al-empty', 'Empty', '2023-01-01 00:00:00.000+00:00')`,
		`INSERT INTO media_file (id, path, artist_id, album_id, created_at) VALUES
			('mf-1', 'Queen/A Night at the Opera/11 Bohemian Rhapsody.mp3', 'ar-queen', 'al-opera', '2023-01-01 00:00:00.000+00:00'),
			('mf-2', 'Queen/A Night at the Opera/09 Love of My Life.mp3', 'ar-queen', 'al-opera', '2023-01-01 00:00:00.000+00:00')`,
		`INSERT INTO annotation (user_id, item_id, item_type, play_count) VALUES ('u1', 'stale', 'media_file', 9)`,
	}
	for _, q := range fixtures {
		if _, err := db.Exec(q); err != nil {
			t.Fatalf("failed to insert fixture: %v", err)
		}
	}
	return db
}

// setupTestDB creates an in-memory local database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db := openMemoryDB(t)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := shared.RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func TestFormatTimestamp(t *testing.T) {
	at := time.Date(2012, 5, 4, 10, 11, 12, 345_000_000, time.FixedZone("CEST", 2*60*60))
	if got := FormatTimestamp(at); got != "2012-05-04 08:11:12.345+00:00" {
		t.Errorf("FormatTimestamp() = %q", got)
	}
	if nullableTimestamp(time.Time{}) != nil {
		t.Error("zero time should be stored as NULL")
	}
}

func TestLibraryRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("FindMediaFile", func(t *testing.T) {
		repo := NewLibraryRepository(setupNavidromeDB(t))

		mf, err := repo.FindMediaFile(ctx, "Queen/A Night at the Opera/11 Bohemian Rhapsody.mp3")
		if err != nil {
			t.Fatalf("failed to find media file: %v", err)
		}
		if mf.ID != "mf-1" || mf.ArtistID != "ar-queen" || mf.AlbumID != "al-opera" {
			t.Errorf("unexpected media file %+v", mf)
		}
	})

	t.Run("FindMediaFile not found", func(t *testing.T) {
		repo := NewLibraryRepository(setupNavidromeDB(t))

		_, err := repo.FindMediaFile(ctx, "queen/a night at the opera/11 bohemian rhapsody.mp3")
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("path lookups are exact, expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("SoleUser", func(t *testing.T) {
		db := setupNavidromeDB(t)
		repo := NewLibraryRepository(db)

		user, err := repo.SoleUser(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.ID != "u1" || user.UserName != "admin" {
			t.Errorf("unexpected user %+v", user)
		}

		if _, err := db.Exec(`INSERT INTO user (id, user_name) VALUES ('u2', 'guest')`); err != nil {
			t.Fatalf("failed to insert user: %v", err)
		}
		if _, err := repo.SoleUser(ctx); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for two users, got %v", err)
		}

		if _, err := db.Exec(`DELETE FROM user`); err != nil {
			t.Fatalf("failed to delete users: %v", err)
		}
		if _, err := repo.SoleUser(ctx); !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("ApplyStats", func(t *testing.T) {
		db := setupNavidromeDB(t)
		repo := NewLibraryRepository(db)
		played := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		update := &models.LibraryUpdate{
			Timestamps: []models.MediaTimestamp{
				{MediaFileID: "mf-1", At: time.Date(2012, 5, 4, 10, 11, 12, 0, time.UTC)},
				{MediaFileID: "mf-2", At: time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)},
			},
			Stats: []models.PlayStats{
				{ItemID: "ar-queen", ItemType: models.ItemArtist, PlayCount: 42, PlayDate: played},
				{ItemID: "mf-1", ItemType: models.ItemMediaFile, PlayCount: 42, PlayDate: played, Rating: 5},
				{ItemID: "mf-2", ItemType: models.ItemMediaFile, Rating: 3},
				{ItemID: "al-opera", ItemType: models.ItemAlbum, PlayCount: 42, PlayDate: played},
			},
		}

		synced, err := repo.ApplyStats(ctx, "u1", update)
		if err != nil {
			t.Fatalf("failed to apply stats: %v", err)
		}
		if synced != 1 {
			t.Errorf("expected one synchronised album, got %d", synced)
		}

		var count int
		if err := db.QueryRow(`SELECT COUNT(*) FROM annotation`).Scan(&count); err != nil {
			t.Fatalf("failed to count annotations: %v", err)
		}
		if count != 4 {
			t.Errorf("stale annotations should be replaced, got %d rows", count)
		}

		var (
			playCount, rating int
			playDate          sql.NullString
		)
		err = db.QueryRow(`SELECT play_count, play_date, rating FROM annotation WHERE item_id = 'mf-1'`).Scan(&playCount, &playDate, &rating)
		if err != nil {
			t.Fatalf("failed to read annotation: %v", err)
		}
		if playCount != 42 || rating != 5 || playDate.String != "2020-01-02 03:04:05.000+00:00" {
			t.Errorf("unexpected annotation %d %q %d", playCount, playDate.String, rating)
		}

		err = db.QueryRow(`SELECT play_date FROM annotation WHERE item_id = 'mf-2'`).Scan(&playDate)
		if err != nil {
			t.Fatalf("failed to read annotation: %v", err)
		}
		if playDate.Valid {
			t.Errorf("unplayed track should have NULL play_date, got %q", playDate.String)
		}

		var createdAt, birthTime string
		err = db.QueryRow(`SELECT created_at, birth_time FROM media_file WHERE id = 'mf-1'`).Scan(&createdAt, &birthTime)
		if err != nil {
			t.Fatalf("failed to read media file: %v", err)
		}
		if createdAt != "2012-05-04 10:11:12.000+00:00" || birthTime != createdAt {
			t.Errorf("unexpected timestamps %q %q", createdAt, birthTime)
		}

		var albumCreated, albumImported string
		err = db.QueryRow(`SELECT created_at, imported_at FROM album WHERE id = 'al-opera'`).Scan(&albumCreated, &albumImported)
		if err != nil {
			t.Fatalf("failed to read album: %v", err)
		}
		if albumCreated != "2010-01-01 00:00:00.000+00:00" || albumImported != albumCreated {
			t.Errorf("album should take its oldest media file date, got %q %q", albumCreated, albumImported)
		}
	})

	t.Run("ApplyStats rolls back on failure", func(t *testing.T) {
		db := setupNavidromeDB(t)
		repo := NewLibraryRepository(db)
		update := &models.LibraryUpdate{
			Stats: []models.PlayStats{
				{ItemID: "mf-1", ItemType: models.ItemMediaFile, PlayCount: 1},
				{ItemID: "mf-1", ItemType: models.ItemMediaFile, PlayCount: 2},
			},
		}

		if _, err := repo.ApplyStats(ctx, "u1", update); err == nil {
			t.Fatal("expected unique constraint failure")
		}

		var itemID string
		if err := db.QueryRow(`SELECT item_id FROM annotation`).Scan(&itemID); err != nil {
			t.Fatalf("failed to read annotation: %v", err)
		}
		if itemID != "stale" {
			t.Errorf("original annotations should survive a failed import, got %q", itemID)
		}
	})
}

func TestMigrationRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("SaveCorrelations replaces earlier runs", func(t *testing.T) {
		repo := NewMigrationRepository(setupTestDB(t))

		first := &models.ImportRun{ID: shared.GenerateID(), ITunesXML: "Library.xml", NavidromeDB: "navidrome.db", TrackCount: 2}
		if err := repo.SaveCorrelations(ctx, first, []models.Correlation{{ITunesID: 1, MediaFileID: "a"}, {ITunesID: 2, MediaFileID: "b"}}); err != nil {
			t.Fatalf("failed to save correlations: %v", err)
		}

		second := &models.ImportRun{ID: shared.GenerateID(), ITunesXML: "Library.xml", NavidromeDB: "navidrome.db", TrackCount: 1,
			CreatedAt: first.CreatedAt.Add(time.Minute)}
		if err := repo.SaveCorrelations(ctx, second, []models.Correlation{{ITunesID: 2, MediaFileID: "c"}}); err != nil {
			t.Fatalf("failed to save correlations: %v", err)
		}

		correlations, err := repo.Correlations(ctx)
		if err != nil {
			t.Fatalf("failed to load correlations: %v", err)
		}
		if len(correlations) != 1 || correlations[2] != "c" {
			t.Errorf("unexpected correlations %v", correlations)
		}

		latest, err := repo.LatestRun(ctx)
		if err != nil {
			t.Fatalf("failed to load latest run: %v", err)
		}
		if latest == nil || latest.ID != second.ID || latest.TrackCount != 1 {
			t.Errorf("unexpected latest run %+v", latest)
		}
	})

	t.Run("empty database", func(t *testing.T) {
		repo := NewMigrationRepository(setupTestDB(t))

		correlations, err := repo.Correlations(ctx)
		if err != nil || len(correlations) != 0 {
			t.Errorf("expected no correlations, got %v, %v", correlations, err)
		}
		run, err := repo.LatestRun(ctx)
		if err != nil || run != nil {
			t.Errorf("expected no run, got %+v, %v", run, err)
		}
		m, err := repo.PlaylistMigration(ctx, "missing")
		if err != nil || m != nil {
			t.Errorf("expected no migration, got %+v, %v", m, err)
		}
	})

	t.Run("playlist migrations", func(t *testing.T) {
		repo := NewMigrationRepository(setupTestDB(t))
		at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

		m := &models.PlaylistMigration{PersistentID: "AAAA", Name: "Road Trip", NavidromeID: "nd-1", SongCount: 10, SkippedCount: 2, MigratedAt: at}
		if err := repo.RecordPlaylistMigration(ctx, m); err != nil {
			t.Fatalf("failed to record migration: %v", err)
		}

		m.NavidromeID, m.MigratedAt = "nd-2", at.Add(time.Hour)
		if err := repo.RecordPlaylistMigration(ctx, m); err != nil {
			t.Fatalf("failed to re-record migration: %v", err)
		}
		if err := repo.RecordPlaylistMigration(ctx, &models.PlaylistMigration{PersistentID: "BBBB", Name: "Gym", NavidromeID: "nd-3", MigratedAt: at}); err != nil {
			t.Fatalf("failed to record migration: %v", err)
		}

		got, err := repo.PlaylistMigration(ctx, "AAAA")
		if err != nil {
			t.Fatalf("failed to get migration: %v", err)
		}
		if got.NavidromeID != "nd-2" || got.SongCount != 10 || got.SkippedCount != 2 || !got.MigratedAt.Equal(at.Add(time.Hour)) {
			t.Errorf("unexpected migration %+v", got)
		}

		all, err := repo.ListPlaylistMigrations(ctx)
		if err != nil {
			t.Fatalf("failed to list migrations: %v", err)
		}
		if len(all) != 2 || all[0].PersistentID != "AAAA" {
			t.Errorf("expected newest first, got %+v", all)
		}

		if err := repo.DeletePlaylistMigration(ctx, "AAAA"); err != nil {
			t.Fatalf("failed to delete migration: %v", err)
		}
		if err := repo.DeletePlaylistMigration(ctx, "AAAA"); err == nil {
			t.Error("expected error deleting a missing migration")
		}
	})
}
