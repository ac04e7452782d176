package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/ndx/internal/itunes"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

func correlatedStore() *mockStore {
	store := newMockStore()
	store.correlations = map[int]string{101: "mf-101", 102: "mf-102"}
	return store
}

func TestSelectPlaylists(t *testing.T) {
	lib := loadLibrary(t)

	tc := []struct {
		name    string
		opts    MigrateOpts
		want    []string
		wantErr error
	}{
		{name: "all user playlists", opts: MigrateOpts{All: true}, want: []string{"Road Trip", "Old Stuff"}},
		{name: "by name", opts: MigrateOpts{Names: []string{"Road Trip"}}, want: []string{"Road Trip"}},
		{name: "system playlist is not selectable", opts: MigrateOpts{Names: []string{"Music"}}, wantErr: shared.ErrPlaylistNotFound},
		{name: "no selection", opts: MigrateOpts{}, wantErr: shared.ErrMissingArgument},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectPlaylists(lib, tt.opts)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d playlists, got %d", len(tt.want), len(got))
			}
			for i, p := range got {
				if p.Name != tt.want[i] {
					t.Errorf("playlist %d = %q, want %q", i, p.Name, tt.want[i])
				}
			}
		})
	}
}

func TestPlaylistEngine_MigratePlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("creates playlists in track order", func(t *testing.T) {
		catalog := &mockCatalog{}
		store := correlatedStore()
		engine := NewPlaylistEngine(EngineOpts{Catalog: catalog, Store: store, Logger: quietLogger()})

		result, err := engine.MigratePlaylists(ctx, loadLibrary(t), MigrateOpts{All: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if result.Created != 1 || result.Skipped != 1 || result.Failed != 0 {
			t.Errorf("unexpected summary %+v", result)
		}
		if len(catalog.created) != 1 {
			t.Fatalf("expected one created playlist, got %d", len(catalog.created))
		}
		got := catalog.created[0]
		if got.name != "Road Trip" || len(got.songIDs) != 2 || got.songIDs[0] != "mf-102" || got.songIDs[1] != "mf-101" {
			t.Errorf("unexpected created playlist %+v", got)
		}
		if result.Results[1].Status != MigrationEmpty {
			t.Errorf("folder playlist should be skipped as empty, got %q", result.Results[1].Status)
		}

		record := store.migrations["AAAA000000000004"]
		if record == nil || record.NavidromeID != "nd-1" || record.SongCount != 2 {
			t.Errorf("unexpected migration record %+v", record)
		}
	})

	t.Run("already migrated playlists are skipped unless forced", func(t *testing.T) {
		catalog := &mockCatalog{}
		store := correlatedStore()
		store.migrations["AAAA000000000004"] = &models.PlaylistMigration{PersistentID: "AAAA000000000004", NavidromeID: "old"}
		engine := NewPlaylistEngine(EngineOpts{Catalog: catalog, Store: store, Logger: quietLogger()})
		opts := MigrateOpts{Names: []string{"Road Trip"}}

		result, err := engine.MigratePlaylists(ctx, loadLibrary(t), opts, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Results[0].Status != MigrationExisting || len(catalog.created) != 0 {
			t.Errorf("expected existing skip, got %+v", result.Results[0])
		}

		opts.Force = true
		result, err = engine.MigratePlaylists(ctx, loadLibrary(t), opts, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Created != 1 || len(catalog.created) != 1 {
			t.Errorf("forced migration should create the playlist, got %+v", result)
		}
	})

	t.Run("uncorrelated tracks are skipped", func(t *testing.T) {
		catalog := &mockCatalog{}
		store := newMockStore()
		store.correlations = map[int]string{101: "mf-101"}
		engine := NewPlaylistEngine(EngineOpts{Catalog: catalog, Store: store, Logger: quietLogger()})

		result, err := engine.MigratePlaylists(ctx, loadLibrary(t), MigrateOpts{Names: []string{"Road Trip"}}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		res := result.Results[0]
		if res.Songs != 1 || res.Skipped != 1 || res.Status != MigrationCreated {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("playlists without known songs are never created", func(t *testing.T) {
		catalog := &mockCatalog{}
		store := newMockStore()
		store.correlations = map[int]string{103: "mf-103"}
		engine := NewPlaylistEngine(EngineOpts{Catalog: catalog, Store: store, Logger: quietLogger()})

		result, err := engine.MigratePlaylists(ctx, loadLibrary(t), MigrateOpts{Names: []string{"Road Trip"}}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Results[0].Status != MigrationNoSongs || len(catalog.created) != 0 {
			t.Errorf("expected no-songs skip, got %+v", result.Results[0])
		}
	})

	t.Run("dry run does not touch the server", func(t *testing.T) {
		catalog := &mockCatalog{pingErr: errors.New("unreachable")}
		store := correlatedStore()
		engine := NewPlaylistEngine(EngineOpts{Catalog: catalog, Store: store, Logger: quietLogger()})

		result, err := engine.MigratePlaylists(ctx, loadLibrary(t), MigrateOpts{All: true, DryRun: true}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Results[0].Status != MigrationDryRun || result.Results[0].Songs != 2 {
			t.Errorf("unexpected dry run result %+v", result.Results[0])
		}
		if len(catalog.created) != 0 || len(store.migrations) != 0 {
			t.Error("dry run must not create or record playlists")
		}
	})

	t.Run("create failure does not stop the run", func(t *testing.T) {
		lib := loadLibrary(t)
		lib.Playlists = append(lib.Playlists, &itunes.Playlist{PlaylistID: 9, Name: "Second", TrackIDs: []int{101}})
		catalog := &mockCatalog{createErrFor: map[string]error{"Road Trip": shared.ErrAPIRequest}}
		engine := NewPlaylistEngine(EngineOpts{Catalog: catalog, Store: correlatedStore(), Logger: quietLogger()})
		progress := make(chan ProgressUpdate, 10)

		result, err := engine.MigratePlaylists(ctx, lib, MigrateOpts{All: true}, progress)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		if result.Failed != 1 || result.Created != 1 {
			t.Errorf("unexpected summary %+v", result)
		}
		if !errors.Is(result.Results[0].Err, shared.ErrAPIRequest) {
			t.Errorf("unexpected error %v", result.Results[0].Err)
		}
		if len(progress) != 3 {
			t.Errorf("expected 3 progress updates, got %d", len(progress))
		}
	})

	t.Run("requires correlations", func(t *testing.T) {
		engine := NewPlaylistEngine(EngineOpts{Catalog: &mockCatalog{}, Store: newMockStore(), Logger: quietLogger()})

		_, err := engine.MigratePlaylists(ctx, loadLibrary(t), MigrateOpts{All: true}, nil)
		if !errors.Is(err, shared.ErrNoCorrelations) {
			t.Errorf("expected ErrNoCorrelations, got %v", err)
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		catalog := &mockCatalog{pingErr: shared.ErrServiceUnavailable}
		engine := NewPlaylistEngine(EngineOpts{Catalog: catalog, Store: correlatedStore(), Logger: quietLogger()})

		_, err := engine.MigratePlaylists(ctx, loadLibrary(t), MigrateOpts{All: true}, nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
