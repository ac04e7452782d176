package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/ndx/internal/formatter"
	"github.com/desertthunder/ndx/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = scanItem{}
)

// playlistItem wraps a scanned playlist to implement [list.Item].
type playlistItem struct {
	name  string
	stats formatter.Statistics
}

func (i playlistItem) FilterValue() string { return i.name }
func (i playlistItem) Title() string       { return i.name }
func (i playlistItem) Description() string {
	return fmt.Sprintf("%d tracks • %d found • %d maybe • %d missing",
		i.stats.Total, i.stats.Found, i.stats.Maybe, i.stats.Missing)
}

// scanItem wraps [models.ScanItem] to implement [list.Item].
type scanItem struct {
	item models.ScanItem
}

func (i scanItem) FilterValue() string { return i.item.Track.Title }
func (i scanItem) Title() string {
	return fmt.Sprintf("%s %s", styles.statusBadge(i.item.Status), i.item.Track.Title)
}
func (i scanItem) Description() string {
	desc := i.item.Track.Artist
	if i.item.Track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.item.Track.Album)
	}
	switch i.item.Status {
	case models.StatusFound:
		desc = fmt.Sprintf("%s → %s", desc, i.item.Path())
	case models.StatusMaybe:
		desc = fmt.Sprintf("%s → maybe %s", desc, i.item.FoundAs)
	}
	return desc
}

func playlistItems(results *models.ScanResults) []list.Item {
	names := results.Names()
	items := make([]list.Item, len(names))
	for i, name := range names {
		scanned, _ := results.Get(name)
		items[i] = playlistItem{name: name, stats: formatter.ComputeStatistics(scanned)}
	}
	return items
}

func scanItems(scanned []models.ScanItem) []list.Item {
	items := make([]list.Item, len(scanned))
	for i, item := range scanned {
		items[i] = scanItem{item: item}
	}
	return items
}
