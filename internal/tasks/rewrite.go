package tasks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/ndx/internal/m3u"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// FixedPlaylistDirPrefix prefixes the default output folder of [FixAll].
const FixedPlaylistDirPrefix = "fixed_playlists"

// FixResult describes one rewritten playlist.
type FixResult struct {
	Name    string // Original playlist filename
	Path    string // Written file, empty when nothing was written
	Found   int    // Items with found status
	Written int    // Path lines written
	Err     error
}

// FixedName returns "{base}_fixed.m3u" for an original playlist filename.
func FixedName(original string) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	return base + "_fixed.m3u"
}

// FixPlaylist writes the server paths of found items, in their original order, to
// outputDir/{base}_fixed.m3u.
//
// Maybe and missing items are left out. When no item is found, nothing is created and
// [shared.ErrNothingToWrite] is returned.
func FixPlaylist(items []models.ScanItem, originalName, outputDir string) (*FixResult, error) {
	res := &FixResult{Name: originalName}

	var paths []string
	for _, item := range items {
		if item.Status != models.StatusFound {
			continue
		}
		res.Found++
		if p := item.Path(); p != "" {
			paths = append(paths, p)
		}
	}

	if res.Found == 0 {
		res.Err = fmt.Errorf("%w: %s", shared.ErrNothingToWrite, originalName)
		return res, res.Err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		res.Err = fmt.Errorf("failed to create output directory: %w", err)
		return res, res.Err
	}

	path := filepath.Join(outputDir, FixedName(originalName))
	if err := m3u.WriteFile(path, paths); err != nil {
		res.Err = err
		return res, err
	}

	res.Path = path
	res.Written = len(paths)
	return res, nil
}

// FixAll rewrites every scanned playlist in results order.
//
// Playlists without found tracks are reported with [shared.ErrNothingToWrite] and do not stop the run.
func FixAll(results *models.ScanResults, outputDir string) []FixResult {
	var out []FixResult
	for _, name := range results.Names() {
		items, _ := results.Get(name)
		res, _ := FixPlaylist(items, name, outputDir)
		out = append(out, *res)
	}
	return out
}

// Skipped reports whether the playlist was not written because nothing was found.
func (r FixResult) Skipped() bool {
	return errors.Is(r.Err, shared.ErrNothingToWrite)
}
