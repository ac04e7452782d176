package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/ndx/internal/m3u"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// DownloadDirPrefix prefixes the default output folder of [PlaylistEngine.DownloadPlaylists].
const DownloadDirPrefix = "navidrome_playlists"

// DownloadResult describes one downloaded server playlist.
type DownloadResult struct {
	Playlist models.Playlist
	Path     string
	Songs    int
	Err      error
}

// PlaylistFilename returns the sanitized "{name}.m3u" file name for a server playlist.
func PlaylistFilename(p models.Playlist) string {
	name := shared.SanitizeFilename(p.Name)
	if name == "" {
		name = "playlist_" + shared.SanitizeFilename(p.ID)
	}
	return name + ".m3u"
}

// DownloadPlaylists fetches each playlist and writes its entry paths, in server order, to outputDir.
//
// A playlist that cannot be retrieved is reported in its result and the remaining ones are still downloaded.
func (e *PlaylistEngine) DownloadPlaylists(
	ctx context.Context,
	playlists []models.Playlist,
	outputDir string,
	progress chan<- ProgressUpdate,
) ([]DownloadResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	results := make([]DownloadResult, 0, len(playlists))
	for i, p := range playlists {
		res := DownloadResult{Playlist: p}

		export, err := e.catalog.GetPlaylist(ctx, p.ID)
		if err != nil {
			res.Err = fmt.Errorf("could not retrieve tracks for %q: %w", p.Name, err)
		} else {
			paths := make([]string, 0, len(export.Songs))
			for _, s := range export.Songs {
				paths = append(paths, s.Path)
			}
			res.Path = filepath.Join(outputDir, PlaylistFilename(p))
			res.Songs = len(paths)
			if err := m3u.WriteFile(res.Path, paths); err != nil {
				res.Err = err
				res.Path = ""
			}
		}

		if res.Err != nil {
			e.logger.Warn("playlist download failed", "playlist", p.Name, "error", res.Err)
		}
		e.sendProgress(progress, downloadUpdate(i+1, len(playlists), p.Name, res.Err))
		results = append(results, res)
	}
	return results, nil
}

// FindPlaylists filters server playlists by exact name, reporting names that do not exist.
func FindPlaylists(all []models.Playlist, names []string) ([]models.Playlist, error) {
	byName := make(map[string]models.Playlist, len(all))
	for _, p := range all {
		if _, ok := byName[p.Name]; !ok {
			byName[p.Name] = p
		}
	}

	selected := make([]models.Playlist, 0, len(names))
	for _, name := range names {
		p, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", shared.ErrPlaylistNotFound, name)
		}
		selected = append(selected, p)
	}
	return selected, nil
}
