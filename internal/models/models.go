// package models defines the data model for playlist reconciliation and library migration
package models

import "fmt"

// Status is the reconciliation outcome for a single [Track].
type Status string

const (
	StatusPending Status = "pending" // between matcher passes, never returned
	StatusFound   Status = "found"
	StatusMaybe   Status = "maybe"
	StatusMissing Status = "missing"
)

// Track is the identity of a song as referenced by a local playlist.
type Track struct {
	Artist string `json:"artist"`
	Album  string `json:"album"`
	Title  string `json:"title"`
}

func (t Track) String() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Song is a catalog entry on the server. It is never modified locally.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Path     string `json:"path"`
	Duration int    `json:"duration"`
}

// ScanItem pairs a [Track] with its match outcome.
//
// Song is set for found and maybe items; FoundAs describes the bound song for maybe items.
type ScanItem struct {
	Track   Track  `json:"track"`
	Song    *Song  `json:"song,omitempty"`
	Status  Status `json:"status"`
	FoundAs string `json:"found_as,omitempty"`
}

// Path returns the server path of the bound song, or "" when none is bound.
func (i ScanItem) Path() string {
	if i.Song == nil {
		return ""
	}
	return i.Song.Path
}

// ScanResults maps playlist filenames to their scan items, keeping insertion order.
type ScanResults struct {
	names []string
	items map[string][]ScanItem
}

// NewScanResults returns empty results.
func NewScanResults() *ScanResults {
	return &ScanResults{items: make(map[string][]ScanItem)}
}

// Set stores items for name, replacing any previous entry without changing its position.
func (r *ScanResults) Set(name string, items []ScanItem) {
	if _, ok := r.items[name]; !ok {
		r.names = append(r.names, name)
	}
	r.items[name] = items
}

// Get returns the items stored for name.
func (r *ScanResults) Get(name string) ([]ScanItem, bool) {
	items, ok := r.items[name]
	return items, ok
}

// Names returns playlist names in insertion order.
func (r *ScanResults) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of playlists.
func (r *ScanResults) Len() int {
	return len(r.names)
}

// All flattens every playlist's items in playlist order.
func (r *ScanResults) All() []ScanItem {
	var all []ScanItem
	for _, name := range r.names {
		all = append(all, r.items[name]...)
	}
	return all
}

// Playlist is a server playlist summary.
type Playlist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner,omitempty"`
	Public    bool   `json:"public"`
	SongCount int    `json:"song_count"`
	Duration  int    `json:"duration"`
}

// PlaylistExport is a server playlist with its ordered songs.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Songs    []Song   `json:"songs"`
}
