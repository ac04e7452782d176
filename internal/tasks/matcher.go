package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ndx/internal/models"
)

// SearchResultLimit is the number of catalog entries requested per search.
const SearchResultLimit = 5

// partialTitleWords is the number of leading title words used by the second pass.
const partialTitleWords = 3

// SearchFunc queries the catalog. An error is treated as "no results".
type SearchFunc func(ctx context.Context, query string, maxResults int) ([]models.Song, error)

// Normalize lowercases s and drops every character outside [a-z0-9].
func Normalize(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// artistMatches reports whether the catalog artist contains the playlist artist
// (case-insensitively) or both normalize to the same string.
func artistMatches(trackArtist, songArtist string) bool {
	if strings.Contains(strings.ToLower(songArtist), strings.ToLower(trackArtist)) {
		return true
	}
	return Normalize(trackArtist) == Normalize(songArtist)
}

// strongMatch finds the first song with a matching artist and an identical normalized title.
func strongMatch(track models.Track, songs []models.Song) *models.Song {
	title := Normalize(track.Title)
	for i := range songs {
		if artistMatches(track.Artist, songs[i].Artist) && Normalize(songs[i].Title) == title {
			return &songs[i]
		}
	}
	return nil
}

// partialMatch finds the first song with a matching artist whose normalized title starts with partial.
func partialMatch(track models.Track, partial string, songs []models.Song) *models.Song {
	prefix := Normalize(partial)
	for i := range songs {
		if artistMatches(track.Artist, songs[i].Artist) && strings.HasPrefix(Normalize(songs[i].Title), prefix) {
			return &songs[i]
		}
	}
	return nil
}

// PartialTitle returns the first (at most three) whitespace-separated words of title.
func PartialTitle(title string) string {
	words := strings.Fields(title)
	if len(words) > partialTitleWords {
		words = words[:partialTitleWords]
	}
	return strings.Join(words, " ")
}

// matchStep is called before each search with the pass number (1 or 2),
// the position of the track within that pass and the pass size.
type matchStep func(pass, step, total int, track models.Track)

// Match classifies every track as found, maybe or missing against the catalog.
//
// The first pass searches "{artist} {title}" for every track and binds exact (normalized)
// title matches. The second pass searches "{artist} {partial title}" for the remaining
// tracks and binds songs whose title starts with the partial title. The result has one
// item per track, in input order, and search is called at most twice per track.
func Match(ctx context.Context, tracks []models.Track, search SearchFunc) []models.ScanItem {
	return match(ctx, tracks, search, nil)
}

func match(ctx context.Context, tracks []models.Track, search SearchFunc, onStep matchStep) []models.ScanItem {
	items := make([]models.ScanItem, len(tracks))
	var pending []int

	for i, track := range tracks {
		if onStep != nil {
			onStep(1, i+1, len(tracks), track)
		}

		items[i] = models.ScanItem{Track: track, Status: models.StatusPending}
		songs, err := search(ctx, fmt.Sprintf("%s %s", track.Artist, track.Title), SearchResultLimit)
		if err != nil {
			songs = nil
		}

		if song := strongMatch(track, songs); song != nil {
			bound := *song
			items[i].Song = &bound
			items[i].Status = models.StatusFound
			continue
		}
		pending = append(pending, i)
	}

	for n, i := range pending {
		track := items[i].Track
		if onStep != nil {
			onStep(2, n+1, len(pending), track)
		}

		partial := PartialTitle(track.Title)
		songs, err := search(ctx, fmt.Sprintf("%s %s", track.Artist, partial), SearchResultLimit)
		if err != nil {
			songs = nil
		}

		if song := partialMatch(track, partial, songs); song != nil {
			bound := *song
			items[i].Song = &bound
			items[i].Status = models.StatusMaybe
			items[i].FoundAs = fmt.Sprintf("%s by %s", song.Title, song.Artist)
			continue
		}
		items[i].Status = models.StatusMissing
	}

	return items
}
