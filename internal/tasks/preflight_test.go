package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/ndx/internal/itunes"
	"github.com/desertthunder/ndx/internal/shared"
)

func TestCheckFiles(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "navidrome.db")
	if err := os.WriteFile(db, nil, 0644); err != nil {
		t.Fatalf("failed to create db file: %v", err)
	}

	t.Run("both present", func(t *testing.T) {
		report := &PreflightReport{}
		if !CheckFiles(report, db, "../itunes/testdata/Library.xml") {
			t.Errorf("expected checks to pass: %+v", report.Checks)
		}
		if report.Err() != nil {
			t.Errorf("unexpected error %v", report.Err())
		}
	})

	t.Run("missing xml", func(t *testing.T) {
		report := &PreflightReport{}
		if CheckFiles(report, db, filepath.Join(dir, "Library.xml")) {
			t.Error("expected checks to fail")
		}
		if len(report.Checks) != 2 || report.Checks[1].OK {
			t.Errorf("unexpected checks %+v", report.Checks)
		}
		if !errors.Is(report.Err(), shared.ErrPreflightFailed) {
			t.Errorf("expected ErrPreflightFailed, got %v", report.Err())
		}
	})

	t.Run("directory is not a database", func(t *testing.T) {
		report := &PreflightReport{}
		if CheckFiles(report, dir, "../itunes/testdata/Library.xml") {
			t.Error("a directory should not pass as navidrome.db")
		}
	})
}

func TestPreflightReport_Empty(t *testing.T) {
	report := &PreflightReport{}
	if report.OK() {
		t.Error("an empty report should not be OK")
	}
}

func TestPlaylistEngine_CheckLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("sample track found", func(t *testing.T) {
		library := operaLibrary()
		engine := NewPlaylistEngine(EngineOpts{Library: library, Logger: quietLogger()})
		report := &PreflightReport{}

		if !engine.CheckLibrary(ctx, report, loadLibrary(t)) {
			t.Fatalf("expected checks to pass: %+v", report.Checks)
		}
		if len(library.lookups) != 1 || library.lookups[0] != loveOfMyLife {
			t.Errorf("highest track under the root should be sampled, looked up %v", library.lookups)
		}
		if len(report.Checks) != 3 {
			t.Errorf("expected 3 checks, got %d", len(report.Checks))
		}
	})

	t.Run("sample track missing from navidrome", func(t *testing.T) {
		library := operaLibrary()
		delete(library.files, loveOfMyLife)
		engine := NewPlaylistEngine(EngineOpts{Library: library, Logger: quietLogger()})
		report := &PreflightReport{}

		if engine.CheckLibrary(ctx, report, loadLibrary(t)) {
			t.Error("expected checks to fail")
		}
		last := report.Checks[len(report.Checks)-1]
		if last.Name != "sample_in_navidrome" || last.OK {
			t.Errorf("unexpected last check %+v", last)
		}
	})

	t.Run("no track under the music root", func(t *testing.T) {
		lib := &itunes.Library{
			MusicFolder: "file:///Users/sam/Music/",
			Tracks:      map[int]*itunes.Track{1: {TrackID: 1, Location: "file:///Volumes/Other/song.mp3"}},
		}
		engine := NewPlaylistEngine(EngineOpts{Library: operaLibrary(), Logger: quietLogger()})
		report := &PreflightReport{}

		if engine.CheckLibrary(ctx, report, lib) {
			t.Error("expected checks to fail")
		}
		if report.Checks[len(report.Checks)-1].Name != "sample_track" {
			t.Errorf("unexpected checks %+v", report.Checks)
		}
	})

	t.Run("missing music folder", func(t *testing.T) {
		engine := NewPlaylistEngine(EngineOpts{Library: operaLibrary(), Logger: quietLogger()})
		report := &PreflightReport{}

		if engine.CheckLibrary(ctx, report, &itunes.Library{}) {
			t.Error("expected checks to fail")
		}
		if report.Checks[0].Name != "music_folder" {
			t.Errorf("unexpected checks %+v", report.Checks)
		}
	})
}
