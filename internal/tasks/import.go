package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ndx/internal/itunes"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// ImportOpts describes the sources of a stats import for bookkeeping.
type ImportOpts struct {
	ITunesXML   string
	NavidromeDB string
}

// ImportResult summarizes a stats import.
type ImportResult struct {
	RunID        string
	User         models.User
	Tracks       int   // tracks in the iTunes library
	Matched      int   // tracks found in media_file
	OutsideRoot  int   // tracks without a location under the music root
	NotFound     int   // tracks under the root but missing from media_file
	Timestamps   int   // media files whose dates were rewritten
	Artists      int   // artist annotations written
	Albums       int   // album annotations written
	MediaFiles   int   // media file annotations written
	AlbumsSynced int64 // albums whose timestamps were synchronised
}

// statsAggregate folds per-track plays into artist, album and media file annotations.
type statsAggregate struct {
	itemType string
	byID     map[string]*models.PlayStats
	order    []string
}

func newStatsAggregate(itemType string) *statsAggregate {
	return &statsAggregate{itemType: itemType, byID: make(map[string]*models.PlayStats)}
}

func (a *statsAggregate) add(id string, count int, date time.Time, rating int) {
	if id == "" {
		return
	}
	s, ok := a.byID[id]
	if !ok {
		s = &models.PlayStats{ItemID: id, ItemType: a.itemType}
		a.byID[id] = s
		a.order = append(a.order, id)
	}
	s.Add(count, date)
	s.Rating = rating
}

func (a *statsAggregate) stats() []models.PlayStats {
	out := make([]models.PlayStats, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, *a.byID[id])
	}
	return out
}

// playRecord returns the play count and last play date of t.
// Both values are required; when either is absent the track counts as never played.
func playRecord(t *itunes.Track) (int, time.Time) {
	if t.PlayCount == 0 || t.PlayDateUTC.IsZero() {
		return 0, time.Time{}
	}
	return t.PlayCount, t.PlayDateUTC.UTC()
}

// ImportStats copies ratings, play counts, play dates and date-added timestamps from lib into
// navidrome.db for the only Navidrome user, then records the iTunes to Navidrome track
// correlations for playlist migration.
//
// Existing annotations are replaced. All navidrome.db writes happen in one transaction.
func (e *PlaylistEngine) ImportStats(
	ctx context.Context,
	lib *itunes.Library,
	opts ImportOpts,
	progress chan<- ProgressUpdate,
) (*ImportResult, error) {
	if e.library == nil {
		return nil, fmt.Errorf("%w: navidrome.db is not open", shared.ErrServiceUnavailable)
	}

	root, err := lib.MusicRoot()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	user, err := e.library.SoleUser(ctx)
	if err != nil {
		return nil, err
	}
	e.logger.Info("applying changes to navidrome account", "user", user.UserName)

	tracks := lib.SortedTracks()
	result := &ImportResult{RunID: shared.GenerateID(), User: *user, Tracks: len(tracks)}

	artists := newStatsAggregate(models.ItemArtist)
	albums := newStatsAggregate(models.ItemAlbum)
	files := newStatsAggregate(models.ItemMediaFile)
	update := &models.LibraryUpdate{}
	var correlations []models.Correlation

	for i, t := range tracks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.sendProgress(progress, importTrackUpdate(i+1, len(tracks), t.Name))

		rel, ok := itunes.RelativePath(t.Location, root)
		if !ok {
			result.OutsideRoot++
			continue
		}

		mf, err := e.library.FindMediaFile(ctx, rel)
		if errors.Is(err, shared.ErrTrackNotFound) {
			result.NotFound++
			e.logger.Debug("track not in navidrome", "path", rel)
			continue
		}
		if err != nil {
			return nil, err
		}

		result.Matched++
		correlations = append(correlations, models.Correlation{ITunesID: t.TrackID, MediaFileID: mf.ID})

		if !t.DateAdded.IsZero() {
			update.Timestamps = append(update.Timestamps, models.MediaTimestamp{MediaFileID: mf.ID, At: t.DateAdded.UTC()})
		}

		count, date := playRecord(t)
		artists.add(mf.ArtistID, count, date, 0)
		albums.add(mf.AlbumID, count, date, 0)
		files.add(mf.ID, count, date, t.Stars())
	}

	result.Timestamps = len(update.Timestamps)
	result.Artists = len(artists.order)
	result.MediaFiles = len(files.order)
	result.Albums = len(albums.order)

	update.Stats = append(update.Stats, artists.stats()...)
	update.Stats = append(update.Stats, files.stats()...)
	update.Stats = append(update.Stats, albums.stats()...)

	e.sendProgress(progress, writeAnnotationsUpdate(len(update.Stats)))
	synced, err := e.library.ApplyStats(ctx, user.ID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to write navidrome changes: %w", err)
	}
	result.AlbumsSynced = synced

	if e.store != nil {
		run := &models.ImportRun{
			ID:          result.RunID,
			ITunesXML:   opts.ITunesXML,
			NavidromeDB: opts.NavidromeDB,
			TrackCount:  len(correlations),
			CreatedAt:   time.Now().UTC(),
		}
		if err := e.store.SaveCorrelations(ctx, run, correlations); err != nil {
			return result, fmt.Errorf("navidrome updated but correlations were not saved: %w", err)
		}
	}

	return result, nil
}
