// package itunes reads iTunes / Apple Music "Library.xml" exports.
//
// Only the fields needed to migrate ratings, play counts, dates and playlists are decoded.
package itunes

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"howett.net/plist"
)

// Library is a decoded iTunes library export.
type Library struct {
	MusicFolder string
	Tracks      map[int]*Track
	Playlists   []*Playlist
}

// Track is a song entry of the library.
type Track struct {
	TrackID     int
	Name        string
	Artist      string
	Album       string
	Location    string
	DateAdded   time.Time
	PlayCount   int
	PlayDateUTC time.Time
	Rating      int // 0-100, 20 per star
}

// Stars converts the 0-100 rating to Navidrome's 0-5 scale.
func (t *Track) Stars() int {
	return t.Rating / 20
}

// Playlist is a playlist entry of the library.
type Playlist struct {
	PlaylistID        int
	PersistentID      string
	Name              string
	Master            bool
	Folder            bool
	DistinguishedKind int
	Smart             bool
	TrackIDs          []int
}

// Key identifies the playlist for bookkeeping, preferring the persistent ID.
func (p *Playlist) Key() string {
	if p.PersistentID != "" {
		return p.PersistentID
	}
	return fmt.Sprintf("playlist-%d", p.PlaylistID)
}

// systemPlaylists are names iTunes gives to built-in playlists.
var systemPlaylists = map[string]bool{
	"Library":    true,
	"Downloaded": true,
	"Music":      true,
	"Movies":     true,
	"TV Shows":   true,
	"Podcasts":   true,
	"Audiobooks": true,
	"Tagged":     true,
	"Genius":     true,
}

// IsUserPlaylist reports whether p was created by the user rather than by iTunes.
//
// Master, distinguished (built-in), smart and reserved-name playlists are excluded.
func (p *Playlist) IsUserPlaylist() bool {
	if p.Master || p.DistinguishedKind != 0 || p.Smart {
		return false
	}
	return !systemPlaylists[p.Name]
}

type plistLibrary struct {
	MusicFolder string                 `plist:"Music Folder"`
	Tracks      map[string]*plistTrack `plist:"Tracks"`
	Playlists   []*plistPlaylist       `plist:"Playlists"`
}

type plistTrack struct {
	TrackID     int       `plist:"Track ID"`
	Name        string    `plist:"Name"`
	Artist      string    `plist:"Artist"`
	Album       string    `plist:"Album"`
	Location    string    `plist:"Location"`
	DateAdded   time.Time `plist:"Date Added"`
	PlayCount   int       `plist:"Play Count"`
	PlayDateUTC time.Time `plist:"Play Date UTC"`
	Rating      int       `plist:"Rating"`
}

type plistPlaylist struct {
	Name              string              `plist:"Name"`
	PlaylistID        int                 `plist:"Playlist ID"`
	PersistentID      string              `plist:"Playlist Persistent ID"`
	Master            bool                `plist:"Master"`
	Folder            bool                `plist:"Folder"`
	DistinguishedKind int                 `plist:"Distinguished Kind"`
	SmartInfo         []byte              `plist:"Smart Info"`
	Items             []plistPlaylistItem `plist:"Playlist Items"`
}

type plistPlaylistItem struct {
	TrackID int `plist:"Track ID"`
}

// Parse decodes a library from plist XML.
func Parse(data []byte) (*Library, error) {
	var raw plistLibrary
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal plist: %w", err)
	}

	lib := &Library{
		MusicFolder: raw.MusicFolder,
		Tracks:      make(map[int]*Track, len(raw.Tracks)),
		Playlists:   make([]*Playlist, 0, len(raw.Playlists)),
	}

	for _, t := range raw.Tracks {
		if t == nil {
			continue
		}
		lib.Tracks[t.TrackID] = &Track{
			TrackID:     t.TrackID,
			Name:        t.Name,
			Artist:      t.Artist,
			Album:       t.Album,
			Location:    t.Location,
			DateAdded:   t.DateAdded,
			PlayCount:   t.PlayCount,
			PlayDateUTC: t.PlayDateUTC,
			Rating:      t.Rating,
		}
	}

	for _, p := range raw.Playlists {
		if p == nil {
			continue
		}
		ids := make([]int, 0, len(p.Items))
		for _, item := range p.Items {
			ids = append(ids, item.TrackID)
		}
		lib.Playlists = append(lib.Playlists, &Playlist{
			PlaylistID:        p.PlaylistID,
			PersistentID:      p.PersistentID,
			Name:              p.Name,
			Master:            p.Master,
			Folder:            p.Folder,
			DistinguishedKind: p.DistinguishedKind,
			Smart:             p.SmartInfo != nil,
			TrackIDs:          ids,
		})
	}

	return lib, nil
}

// Load reads and parses the library file at path.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read iTunes library: %w", err)
	}
	return Parse(data)
}

// MusicRoot returns the unescaped "Music Folder" URL with "Music/" appended.
func (l *Library) MusicRoot() (string, error) {
	if l.MusicFolder == "" {
		return "", fmt.Errorf("library has no Music Folder key")
	}
	folder, err := url.PathUnescape(l.MusicFolder)
	if err != nil {
		return "", fmt.Errorf("invalid Music Folder %q: %w", l.MusicFolder, err)
	}
	return folder + "Music/", nil
}

// SortedTracks returns tracks ordered by Track ID.
func (l *Library) SortedTracks() []*Track {
	tracks := make([]*Track, 0, len(l.Tracks))
	for _, t := range l.Tracks {
		tracks = append(tracks, t)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].TrackID < tracks[j].TrackID })
	return tracks
}

// UserPlaylists returns the user-created playlists in library order.
func (l *Library) UserPlaylists() []*Playlist {
	var out []*Playlist
	for _, p := range l.Playlists {
		if p.IsUserPlaylist() {
			out = append(out, p)
		}
	}
	return out
}

// RelativePath converts a track Location URL into a path relative to the music root.
//
// The prefix comparison ignores case. It returns false when location is empty or outside root.
func RelativePath(location, root string) (string, bool) {
	if location == "" || root == "" {
		return "", false
	}
	loc, err := url.PathUnescape(location)
	if err != nil {
		return "", false
	}
	if len(loc) < len(root) || !strings.EqualFold(loc[:len(root)], root) {
		return "", false
	}

	rel := strings.TrimLeft(loc[len(root):], "/")
	return strings.ReplaceAll(rel, `\`, "/"), true
}
