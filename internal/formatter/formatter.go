// package formatter renders scan statistics and exports reconciliation reports as plain text
package formatter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

// Default report filenames.
const (
	DefaultMissingTracksFile = "missing_tracks.txt"
	DefaultMissingAlbumsFile = "missing_albums.txt"
)

// Statistics counts scan items by status.
type Statistics struct {
	Total   int
	Found   int
	Maybe   int
	Missing int
}

// SuccessRate returns (found+maybe)/total as a percentage, or 0 when nothing was scanned.
func (s Statistics) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Found+s.Maybe) / float64(s.Total) * 100
}

// ComputeStatistics tallies items. Items still pending count towards the total only.
func ComputeStatistics(items []models.ScanItem) Statistics {
	stats := Statistics{Total: len(items)}
	for _, item := range items {
		switch item.Status {
		case models.StatusFound:
			stats.Found++
		case models.StatusMaybe:
			stats.Maybe++
		case models.StatusMissing:
			stats.Missing++
		}
	}
	return stats
}

// Flatten returns the items of every playlist in results order.
func Flatten(results *models.ScanResults) []models.ScanItem {
	var items []models.ScanItem
	for _, name := range results.Names() {
		playlist, _ := results.Get(name)
		items = append(items, playlist...)
	}
	return items
}

// RenderStatistics formats s as a two-column table.
func RenderStatistics(s Statistics) string {
	rows := [][]string{
		{"Total Tracks Scanned", strconv.Itoa(s.Total)},
		{"Found (Exact Match)", strconv.Itoa(s.Found)},
		{"Found (Potential)", strconv.Itoa(s.Maybe)},
		{"Missing", strconv.Itoa(s.Missing)},
		{"Overall Match Rate", fmt.Sprintf("%.2f%%", s.SuccessRate())},
	}
	return Table([]string{"Scan Statistics", ""}, rows, []Alignment{AlignLeft, AlignRight})
}

// partition splits items into missing tracks and maybe items.
func partition(items []models.ScanItem) (missing, maybe []models.ScanItem) {
	for _, item := range items {
		switch item.Status {
		case models.StatusMissing:
			missing = append(missing, item)
		case models.StatusMaybe:
			maybe = append(maybe, item)
		}
	}
	return missing, maybe
}

// RenderMissingTracks writes the missing tracks report for items to w.
//
// Missing tracks are sorted by artist, album and title; maybe items are stably sorted by artist.
// It returns [shared.ErrNothingToExport] without writing when there is nothing to report.
func RenderMissingTracks(w io.Writer, items []models.ScanItem, now time.Time) error {
	missing, maybe := partition(items)
	if len(missing) == 0 && len(maybe) == 0 {
		return fmt.Errorf("%w: all tracks were found", shared.ErrNothingToExport)
	}

	sort.SliceStable(missing, func(i, j int) bool {
		a, b := missing[i].Track, missing[j].Track
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		if a.Album != b.Album {
			return a.Album < b.Album
		}
		return a.Title < b.Title
	})
	sort.SliceStable(maybe, func(i, j int) bool { return maybe[i].Track.Artist < maybe[j].Track.Artist })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Playlist Scan Report - %s\n", now.Format(shared.ReportTimestamp))
	if len(missing) > 0 {
		buf.WriteString("\n--- DEFINITELY MISSING TRACKS ---\n")
		for _, item := range missing {
			fmt.Fprintf(&buf, "Artist: %s\n  Album: %s\n  Title: %s\n\n", item.Track.Artist, item.Track.Album, item.Track.Title)
		}
	}
	if len(maybe) > 0 {
		buf.WriteString("\n--- POTENTIAL MATCHES (MAYBE) ---\n")
		for _, item := range maybe {
			fmt.Fprintf(&buf, "Original: %s by %s\n   Found: %s\n\n", item.Track.Title, item.Track.Artist, item.FoundAs)
		}
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// AlbumKey identifies an album by artist and title.
type AlbumKey struct {
	Artist string
	Album  string
}

func (k AlbumKey) String() string {
	return k.Artist + " - " + k.Album
}

// MissingAlbums returns the distinct albums of missing and maybe items, sorted by artist then album.
func MissingAlbums(items []models.ScanItem) []AlbumKey {
	seen := make(map[AlbumKey]bool)
	var albums []AlbumKey
	for _, item := range items {
		if item.Status != models.StatusMissing && item.Status != models.StatusMaybe {
			continue
		}
		key := AlbumKey{Artist: item.Track.Artist, Album: item.Track.Album}
		if !seen[key] {
			seen[key] = true
			albums = append(albums, key)
		}
	}
	sort.Slice(albums, func(i, j int) bool {
		if albums[i].Artist != albums[j].Artist {
			return albums[i].Artist < albums[j].Artist
		}
		return albums[i].Album < albums[j].Album
	})
	return albums
}

// RenderMissingAlbums writes one "Artist - Album" line per album with missing or maybe tracks.
//
// It returns [shared.ErrNothingToExport] without writing when there is nothing to report.
func RenderMissingAlbums(w io.Writer, items []models.ScanItem, now time.Time) error {
	albums := MissingAlbums(items)
	if len(albums) == 0 {
		return fmt.Errorf("%w: no albums are missing tracks", shared.ErrNothingToExport)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Missing Albums Report - %s\n\n", now.Format(shared.ReportTimestamp))
	for _, a := range albums {
		buf.WriteString(a.String() + "\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// WriteMissingTracks renders the missing tracks report into path, defaulting to [DefaultMissingTracksFile].
//
// No file is created when the report is empty.
func WriteMissingTracks(path string, items []models.ScanItem, now time.Time) (string, error) {
	if path == "" {
		path = DefaultMissingTracksFile
	}
	return path, writeReport(path, func(w io.Writer) error { return RenderMissingTracks(w, items, now) })
}

// WriteMissingAlbums renders the missing albums report into path, defaulting to [DefaultMissingAlbumsFile].
func WriteMissingAlbums(path string, items []models.ScanItem, now time.Time) (string, error) {
	if path == "" {
		path = DefaultMissingAlbumsFile
	}
	return path, writeReport(path, func(w io.Writer) error { return RenderMissingAlbums(w, items, now) })
}

// writeReport renders into memory first so that empty reports never touch the filesystem.
func writeReport(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
