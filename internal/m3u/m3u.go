// package m3u reads and writes M3U playlist files.
//
// Playlist lines are expected to be relative paths of the form
// "Artist/Album/NN - Title.ext". Lines that do not follow this layout are ignored.
package m3u

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/desertthunder/ndx/internal/models"
)

// Header is the first line of every playlist written by this package.
const Header = "#EXTM3U"

var (
	linePattern   = regexp.MustCompile(`(?i)^([^/]+)/([^/]+)/(.+)\.(mp3|flac|m4a|ogg|wav)`)
	trackNoPrefix = regexp.MustCompile(`^\s*\d+\s*[-._]?\s*`)
)

// ParseLine extracts a [models.Track] from a single playlist line.
//
// Blank lines, comments and lines that do not look like "Artist/Album/Title.ext" return false.
func ParseLine(line string) (models.Track, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return models.Track{}, false
	}

	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return models.Track{}, false
	}

	title := strings.TrimSpace(m[3])
	return models.Track{
		Artist: strings.TrimSpace(m[1]),
		Album:  strings.TrimSpace(m[2]),
		Title:  trackNoPrefix.ReplaceAllString(title, ""),
	}, true
}

// Parse reads every track from r in file order.
func Parse(r io.Reader) ([]models.Track, error) {
	var tracks []models.Track

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if track, ok := ParseLine(scanner.Text()); ok {
			tracks = append(tracks, track)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read playlist: %w", err)
	}
	return tracks, nil
}

// ParseFile opens path and parses it with [Parse].
func ParseFile(path string) ([]models.Track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open playlist %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// IsPlaylist reports whether name has an .m3u or .m3u8 extension, ignoring case.
func IsPlaylist(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".m3u", ".m3u8":
		return true
	}
	return false
}

// FindPlaylists lists the playlist files directly inside dir, sorted by name.
func FindPlaylists(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && IsPlaylist(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Write emits the header followed by one path per line.
func Write(w io.Writer, paths []string) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header + "\n"); err != nil {
		return err
	}
	for _, p := range paths {
		if _, err := bw.WriteString(p + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile creates (or truncates) path and writes the playlist into it.
func WriteFile(path string, paths []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create playlist %s: %w", path, err)
	}

	if err := Write(f, paths); err != nil {
		f.Close()
		return fmt.Errorf("failed to write playlist %s: %w", path, err)
	}
	return f.Close()
}
