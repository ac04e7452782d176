package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ndx/internal/shared"
	tu "github.com/desertthunder/ndx/internal/testing"
)

const bohemianPath = "Queen/A Night at the Opera/11 Bohemian Rhapsody.mp3"

// catalogRoutes answers every search with Bohemian Rhapsody and serves one playlist.
func catalogRoutes() tu.SubsonicRoutes {
	song := map[string]any{
		"id": "mf-1", "title": "Bohemian Rhapsody", "artist": "Queen",
		"album": "A Night at the Opera", "path": bohemianPath,
	}
	return tu.SubsonicRoutes{
		"ping":    nil,
		"search3": {"searchResult3": map[string]any{"song": []map[string]any{song}}},
		"getPlaylists": {"playlists": map[string]any{"playlist": []map[string]any{
			{"id": "pl-1", "name": "Road Trip", "owner": "admin", "songCount": 1},
		}}},
		"getPlaylist": {"playlist": map[string]any{
			"id": "pl-1", "name": "Road Trip", "songCount": 1,
			"entry": []map[string]any{song},
		}},
	}
}

func writePlaylistDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := "#EXTM3U\n" +
		"Queen/A Night at the Opera/11 - Bohemian Rhapsody.mp3\n" +
		"Nobody/Nowhere/01 - Ghost.mp3\n"
	if err := os.WriteFile(filepath.Join(dir, "road.m3u"), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write playlist: %v", err)
	}
	return dir
}

func TestPlaylistsCheck(t *testing.T) {
	t.Run("prints a summary per playlist", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, catalogRoutes())
		dir := writePlaylistDir(t)

		if err := run(runner, "playlists", "check", "--dir", dir); err != nil {
			t.Fatalf("check failed: %v", err)
		}

		got := output.String()
		for _, want := range []string{"Checking road.m3u", "road.m3u", "50.00%"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in output:\n%s", want, got)
			}
		}
	})

	t.Run("accepts the folder as an argument", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, catalogRoutes())

		if err := run(runner, "playlists", "check", writePlaylistDir(t)); err != nil {
			t.Fatalf("check failed: %v", err)
		}
	})

	t.Run("requires a folder", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, catalogRoutes())

		if err := run(runner, "playlists", "check"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("writes JSON", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, catalogRoutes())

		if err := run(runner, "playlists", "check", "--dir", writePlaylistDir(t), "--json"); err != nil {
			t.Fatalf("check failed: %v", err)
		}

		var report checkReport
		if err := json.Unmarshal(output.Bytes(), &report); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, output.String())
		}
		if report.Total != 2 || report.Found != 1 || report.Missing != 1 {
			t.Errorf("unexpected totals %+v", report)
		}
		if len(report.Playlists) != 1 || report.Playlists[0].Name != "road.m3u" {
			t.Errorf("unexpected playlists %+v", report.Playlists)
		}
	})

	t.Run("exports reports and fixed playlists", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, catalogRoutes())
		fixedDir := filepath.Join(t.TempDir(), "fixed")

		err := run(runner, "playlists", "check", "--dir", writePlaylistDir(t),
			"--missing-tracks", "--missing-albums", "--fix", "--output-dir", fixedDir)
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}

		tracks := tu.MustReadFile(t, runner.config.Reports.MissingTracks)
		if !strings.Contains(tracks, "Ghost") {
			t.Errorf("missing tracks report lacks Ghost:\n%s", tracks)
		}
		albums := tu.MustReadFile(t, runner.config.Reports.MissingAlbums)
		if !strings.Contains(albums, "Nobody") {
			t.Errorf("missing albums report lacks Nobody:\n%s", albums)
		}

		fixed := tu.MustReadFile(t, filepath.Join(fixedDir, "road_fixed.m3u"))
		if fixed != "#EXTM3U\n"+bohemianPath+"\n" {
			t.Errorf("unexpected fixed playlist %q", fixed)
		}
		if !strings.Contains(output.String(), "1 of 1 playlists written") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})
}

func TestPlaylistsList(t *testing.T) {
	t.Run("renders a table", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, catalogRoutes())

		if err := run(runner, "playlists", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "Road Trip") || !strings.Contains(output.String(), "pl-1") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("writes JSON", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, catalogRoutes())

		if err := run(runner, "playlists", "list", "--json"); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), `"name":"Road Trip"`) {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestPlaylistsDownload(t *testing.T) {
	t.Run("downloads every playlist", func(t *testing.T) {
		runner, output, _ := newTestRunner(t, catalogRoutes())
		outputDir := filepath.Join(t.TempDir(), "downloads")

		if err := run(runner, "playlists", "download", "--all", "--output-dir", outputDir); err != nil {
			t.Fatalf("download failed: %v", err)
		}

		tu.AssertDirExists(t, outputDir)
		got := tu.MustReadFile(t, filepath.Join(outputDir, "Road Trip.m3u"))
		if got != "#EXTM3U\n"+bohemianPath+"\n" {
			t.Errorf("unexpected playlist %q", got)
		}
		if !strings.Contains(output.String(), "Saved 1 of 1 playlists") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, catalogRoutes())

		err := run(runner, "playlists", "download", "--name", "Nope", "--output-dir", t.TempDir())
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("requires a selection", func(t *testing.T) {
		runner, _, _ := newTestRunner(t, catalogRoutes())

		if err := run(runner, "playlists", "download"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
