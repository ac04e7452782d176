package tasks

import (
	"fmt"

	"github.com/desertthunder/ndx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanPlaylist Phase = iota
	StrongPass
	PartialPass
	WritePlaylist
	DownloadPlaylist
	ImportTracks
	WriteAnnotations
	MigratePlaylist
)

func (p Phase) String() string {
	switch p {
	case ScanPlaylist:
		return "scan_playlist"
	case StrongPass:
		return "strong_pass"
	case PartialPass:
		return "partial_pass"
	case WritePlaylist:
		return "write_playlist"
	case DownloadPlaylist:
		return "download_playlist"
	case ImportTracks:
		return "import_tracks"
	case WriteAnnotations:
		return "write_annotations"
	case MigratePlaylist:
		return "migrate_playlist"
	default:
		return ""
	}
}

func scanPlaylistUpdate(step, total int, name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Checking %s (%d tracks)", step, total, name, tracks),
	}
}

func skipPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s has no valid tracks, skipping", step, total, name),
	}
}

func matchUpdate(pass, step, total int, tr models.Track) ProgressUpdate {
	phase := StrongPass
	if pass == 2 {
		phase = PartialPass
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("pass %d [%d/%d] %s - %s", pass, step, total, tr.Artist, tr.Title),
	}
}

func scannedPlaylistUpdate(step, total int, name string, items []models.ScanItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
		Data:    items,
	}
}

func downloadUpdate(step, total int, name string, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   DownloadPlaylist,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
		}
	}
	return ProgressUpdate{
		Phase:   DownloadPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, name),
	}
}

func importTrackUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, name),
	}
}

func writeAnnotationsUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteAnnotations,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Writing %d annotations to navidrome.db...", count),
	}
}

func migratePlaylistUpdate(step, total int, res PlaylistMigrationResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MigratePlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s: %s", step, total, res.Name, res.Status),
		Data:    res,
	}
}
