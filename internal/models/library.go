package models

import "time"

// Annotation item types used by Navidrome.
const (
	ItemArtist    = "artist"
	ItemAlbum     = "album"
	ItemMediaFile = "media_file"
)

// MediaFile is the subset of a Navidrome media_file row needed to attach stats.
type MediaFile struct {
	ID       string
	Path     string
	ArtistID string
	AlbumID  string
}

// User is a Navidrome account.
type User struct {
	ID       string
	UserName string
}

// PlayStats is an aggregated annotation for one artist, album or media file.
type PlayStats struct {
	ItemID    string
	ItemType  string
	PlayCount int
	PlayDate  time.Time
	Rating    int
}

// Add folds a play record into s: counts are summed and the latest play date is kept.
func (s *PlayStats) Add(count int, date time.Time) {
	s.PlayCount += count
	if date.After(s.PlayDate) {
		s.PlayDate = date
	}
}

// ImportRun records one stats import into navidrome.db.
type ImportRun struct {
	ID          string
	ITunesXML   string
	NavidromeDB string
	TrackCount  int
	CreatedAt   time.Time
}

// Correlation maps an iTunes Track ID to a Navidrome media_file ID.
type Correlation struct {
	ITunesID    int
	MediaFileID string
}

// PlaylistMigration records an iTunes playlist created on the server.
type PlaylistMigration struct {
	PersistentID string
	Name         string
	NavidromeID  string
	SongCount    int
	SkippedCount int
	MigratedAt   time.Time
}

// MediaTimestamp sets created_at, updated_at and birth_time of a media file.
type MediaTimestamp struct {
	MediaFileID string
	At          time.Time
}

// LibraryUpdate is everything a stats import writes to navidrome.db.
type LibraryUpdate struct {
	Timestamps []MediaTimestamp
	Stats      []PlayStats
}
