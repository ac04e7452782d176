package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/ndx/internal/itunes"
	"github.com/desertthunder/ndx/internal/shared"
)

// Check is one preflight verification.
type Check struct {
	Name   string
	OK     bool
	Detail string
}

// PreflightReport collects preflight checks in the order they ran.
type PreflightReport struct {
	Checks []Check
}

func (r *PreflightReport) add(name string, ok bool, format string, args ...any) bool {
	r.Checks = append(r.Checks, Check{Name: name, OK: ok, Detail: fmt.Sprintf(format, args...)})
	return ok
}

// OK reports whether every check passed.
func (r *PreflightReport) OK() bool {
	for _, c := range r.Checks {
		if !c.OK {
			return false
		}
	}
	return len(r.Checks) > 0
}

// Err returns [shared.ErrPreflightFailed] naming the failed checks, or nil.
func (r *PreflightReport) Err() error {
	if r.OK() {
		return nil
	}
	var failed []string
	for _, c := range r.Checks {
		if !c.OK {
			failed = append(failed, c.Name)
		}
	}
	return fmt.Errorf("%w: %s", shared.ErrPreflightFailed, strings.Join(failed, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// CheckFiles verifies that the Navidrome database and the iTunes library exist.
func CheckFiles(report *PreflightReport, navidromeDB, itunesXML string) bool {
	dbOK := report.add("navidrome_db", fileExists(navidromeDB), "Navidrome DB at %s", navidromeDB)
	xmlOK := report.add("itunes_xml", fileExists(itunesXML), "iTunes XML at %s", itunesXML)
	return dbOK && xmlOK
}

// CheckLibrary verifies that the library paths line up with navidrome.db: the music root is
// known, a sample track lives under it and its relative path exists in media_file.
//
// The sample is the track with the highest Track ID whose location is under the root.
func (e *PlaylistEngine) CheckLibrary(ctx context.Context, report *PreflightReport, lib *itunes.Library) bool {
	if e.library == nil {
		return report.add("navidrome_db", false, "navidrome.db is not open")
	}

	root, err := lib.MusicRoot()
	if !report.add("music_folder", err == nil, "Music Folder resolved to %q", root) {
		return false
	}

	tracks := lib.SortedTracks()
	var sample, rel string
	for i := len(tracks) - 1; i >= 0; i-- {
		if p, ok := itunes.RelativePath(tracks[i].Location, root); ok {
			sample, rel = tracks[i].Location, p
			break
		}
	}
	if !report.add("sample_track", sample != "", "sample track under music root: %s", sample) {
		return false
	}

	_, err = e.library.FindMediaFile(ctx, rel)
	switch {
	case err == nil:
		return report.add("sample_in_navidrome", true, "found %q in media_file", rel)
	case errors.Is(err, shared.ErrTrackNotFound):
		return report.add("sample_in_navidrome", false, "%q is not in media_file", rel)
	default:
		return report.add("sample_in_navidrome", false, "lookup of %q failed: %v", rel, err)
	}
}
