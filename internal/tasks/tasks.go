// package tasks implements playlist reconciliation and library migration operations.
//
// The core abstraction is PlaylistEngine, which scans local playlists against the server catalog,
// writes corrected playlists and migrates iTunes metadata into Navidrome.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ndx/internal/m3u"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/services"
	"github.com/desertthunder/ndx/internal/shared"
)

// LibraryStore reads and updates a Navidrome database.
type LibraryStore interface {
	// FindMediaFile returns the media file stored at the library-relative path, or [shared.ErrTrackNotFound].
	FindMediaFile(ctx context.Context, path string) (*models.MediaFile, error)

	// SoleUser returns the only Navidrome user, failing when there are none or several.
	SoleUser(ctx context.Context) (*models.User, error)

	// ApplyStats replaces all annotations for userID with update in one transaction
	// and returns the number of albums whose timestamps were synchronised.
	ApplyStats(ctx context.Context, userID string, update *models.LibraryUpdate) (int64, error)
}

// MigrationStore keeps iTunes migration bookkeeping in the local database.
type MigrationStore interface {
	SaveCorrelations(ctx context.Context, run *models.ImportRun, correlations []models.Correlation) error
	Correlations(ctx context.Context) (map[int]string, error)
	PlaylistMigration(ctx context.Context, persistentID string) (*models.PlaylistMigration, error)
	RecordPlaylistMigration(ctx context.Context, m *models.PlaylistMigration) error
}

// PlaylistEngine runs reconciliation and migration operations.
//
// Dependencies are optional; operations that need a missing one fail with [shared.ErrServiceUnavailable].
type PlaylistEngine struct {
	catalog services.Catalog
	library LibraryStore
	store   MigrationStore
	logger  *log.Logger
}

// EngineOpts holds the dependencies of a [PlaylistEngine].
type EngineOpts struct {
	Catalog services.Catalog
	Library LibraryStore
	Store   MigrationStore
	Logger  *log.Logger
}

// NewPlaylistEngine creates a new PlaylistEngine with the provided dependencies.
func NewPlaylistEngine(opts EngineOpts) *PlaylistEngine {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PlaylistEngine{
		catalog: opts.Catalog,
		library: opts.Library,
		store:   opts.Store,
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// search adapts the catalog to a [SearchFunc], logging failures as misses.
func (e *PlaylistEngine) search(ctx context.Context, query string, maxResults int) ([]models.Song, error) {
	songs, err := e.catalog.Search(ctx, query, maxResults)
	if err != nil {
		e.logger.Debug("search failed, treating as no match", "query", query, "error", err)
	}
	return songs, err
}

// Scan matches every playlist in dir against the catalog and returns fresh results.
//
// Playlists that cannot be read or contain no valid tracks are skipped.
func (e *PlaylistEngine) Scan(ctx context.Context, dir string, progress chan<- ProgressUpdate) (*models.ScanResults, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a valid folder", shared.ErrInvalidInput, dir)
	}

	names, err := m3u.FindPlaylists(dir)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no .m3u files found in %s", shared.ErrPlaylistNotFound, dir)
	}

	results := models.NewScanResults()
	for i, name := range names {
		tracks, err := m3u.ParseFile(filepath.Join(dir, name))
		if err != nil {
			e.logger.Warn("could not read playlist", "file", name, "error", err)
		}
		if len(tracks) == 0 {
			e.sendProgress(progress, skipPlaylistUpdate(i+1, len(names), name))
			continue
		}

		e.logger.Info("checking playlist", "file", name, "tracks", len(tracks))
		e.sendProgress(progress, scanPlaylistUpdate(i+1, len(names), name, len(tracks)))

		items := match(ctx, tracks, e.search, func(pass, step, total int, tr models.Track) {
			e.sendProgress(progress, matchUpdate(pass, step, total, tr))
		})
		results.Set(name, items)

		e.sendProgress(progress, scannedPlaylistUpdate(i+1, len(names), name, items))
	}
	return results, nil
}
