package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ndx/internal/itunes"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// Outcomes of a single playlist migration.
const (
	MigrationCreated  = "created"
	MigrationDryRun   = "dry run"
	MigrationEmpty    = "skipped: playlist is empty"
	MigrationNoSongs  = "skipped: no songs found in navidrome"
	MigrationExisting = "skipped: already migrated"
	MigrationFailed   = "failed"
)

// MigrateOpts selects the playlists to migrate.
type MigrateOpts struct {
	Names  []string // playlist names; ignored when All is set
	All    bool
	DryRun bool // report what would be created without calling the server
	Force  bool // migrate playlists that were already migrated
}

// PlaylistMigrationResult describes one migrated (or skipped) iTunes playlist.
type PlaylistMigrationResult struct {
	Name        string
	Key         string
	Songs       int // songs sent to the server
	Skipped     int // playlist tracks without a correlation
	NavidromeID string
	Status      string
	Err         error
}

// MigrateResult summarizes a playlist migration.
type MigrateResult struct {
	Results []PlaylistMigrationResult
	Created int
	Skipped int
	Failed  int
}

// SelectPlaylists returns the user playlists matching opts, in library order.
func SelectPlaylists(lib *itunes.Library, opts MigrateOpts) ([]*itunes.Playlist, error) {
	playlists := lib.UserPlaylists()
	if opts.All {
		return playlists, nil
	}
	if len(opts.Names) == 0 {
		return nil, fmt.Errorf("%w: select playlists by name or migrate all", shared.ErrMissingArgument)
	}

	wanted := make(map[string]bool, len(opts.Names))
	for _, n := range opts.Names {
		wanted[n] = true
	}

	var selected []*itunes.Playlist
	for _, p := range playlists {
		if wanted[p.Name] {
			selected = append(selected, p)
			delete(wanted, p.Name)
		}
	}
	if len(wanted) > 0 {
		var missing []string
		for _, n := range opts.Names {
			if wanted[n] {
				missing = append(missing, n)
			}
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, strings.Join(missing, ", "))
	}
	return selected, nil
}

// MigratePlaylists recreates iTunes user playlists on the server using the correlations
// saved by [PlaylistEngine.ImportStats].
//
// Playlists whose tracks are all unknown to Navidrome are skipped before anything is created.
// A failure to create one playlist is recorded and the remaining playlists are still migrated.
func (e *PlaylistEngine) MigratePlaylists(
	ctx context.Context,
	lib *itunes.Library,
	opts MigrateOpts,
	progress chan<- ProgressUpdate,
) (*MigrateResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: local database is not open", shared.ErrServiceUnavailable)
	}
	if e.catalog == nil && !opts.DryRun {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}

	correlations, err := e.store.Correlations(ctx)
	if err != nil {
		return nil, err
	}
	if len(correlations) == 0 {
		return nil, fmt.Errorf("%w: run the stats import first", shared.ErrNoCorrelations)
	}

	playlists, err := SelectPlaylists(lib, opts)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		if err := e.catalog.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connection to server failed: %w", err)
		}
	}

	result := &MigrateResult{}
	for i, p := range playlists {
		res := e.migratePlaylist(ctx, p, correlations, opts)
		switch {
		case res.Err != nil:
			result.Failed++
			e.logger.Error("playlist migration failed", "playlist", res.Name, "error", res.Err)
		case res.Status == MigrationCreated:
			result.Created++
		default:
			result.Skipped++
		}
		if res.Skipped > 0 {
			e.logger.Warn("songs not found in navidrome library", "playlist", res.Name, "skipped", res.Skipped)
		}
		e.sendProgress(progress, migratePlaylistUpdate(i+1, len(playlists), res))
		result.Results = append(result.Results, res)
	}
	return result, nil
}

func (e *PlaylistEngine) migratePlaylist(
	ctx context.Context,
	p *itunes.Playlist,
	correlations map[int]string,
	opts MigrateOpts,
) PlaylistMigrationResult {
	res := PlaylistMigrationResult{Name: p.Name, Key: p.Key()}

	if len(p.TrackIDs) == 0 {
		res.Status = MigrationEmpty
		return res
	}

	if !opts.Force {
		existing, err := e.store.PlaylistMigration(ctx, res.Key)
		if err != nil {
			res.Status, res.Err = MigrationFailed, err
			return res
		}
		if existing != nil {
			res.Status, res.NavidromeID = MigrationExisting, existing.NavidromeID
			return res
		}
	}

	songIDs := make([]string, 0, len(p.TrackIDs))
	for _, id := range p.TrackIDs {
		if songID, ok := correlations[id]; ok {
			songIDs = append(songIDs, songID)
		} else {
			res.Skipped++
		}
	}
	res.Songs = len(songIDs)

	if len(songIDs) == 0 {
		res.Status = MigrationNoSongs
		return res
	}
	if opts.DryRun {
		res.Status = MigrationDryRun
		return res
	}

	created, err := e.catalog.CreatePlaylist(ctx, p.Name, songIDs)
	if err != nil {
		res.Status, res.Err = MigrationFailed, err
		return res
	}
	res.Status, res.NavidromeID = MigrationCreated, created.ID

	record := &models.PlaylistMigration{
		PersistentID: res.Key,
		Name:         p.Name,
		NavidromeID:  created.ID,
		SongCount:    res.Songs,
		SkippedCount: res.Skipped,
		MigratedAt:   time.Now().UTC(),
	}
	if err := e.store.RecordPlaylistMigration(ctx, record); err != nil {
		e.logger.Warn("playlist created but not recorded", "playlist", p.Name, "error", err)
	}
	return res
}
