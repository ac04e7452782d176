package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

func quietLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

// stubSearch answers queries from a fixed table and records every query.
type stubSearch struct {
	results map[string][]models.Song
	errs    map[string]error
	queries []string
}

func (s *stubSearch) search(ctx context.Context, query string, maxResults int) ([]models.Song, error) {
	s.queries = append(s.queries, query)
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	return s.results[query], nil
}

func (s *stubSearch) count(prefix string) int {
	n := 0
	for _, q := range s.queries {
		if strings.HasPrefix(q, prefix) {
			n++
		}
	}
	return n
}

// mockCatalog is a test double for [services.Catalog].
type mockCatalog struct {
	stub         *stubSearch
	playlists    []models.Playlist
	exports      map[string]*models.PlaylistExport
	created      []createdPlaylist
	pingErr      error
	createErrFor map[string]error
}

type createdPlaylist struct {
	name    string
	songIDs []string
}

func (m *mockCatalog) Name() string                     { return "mock" }
func (m *mockCatalog) Ping(ctx context.Context) error   { return m.pingErr }
func (m *mockCatalog) Verify(ctx context.Context) error { return m.pingErr }

func (m *mockCatalog) Search(ctx context.Context, query string, maxResults int) ([]models.Song, error) {
	if m.stub == nil {
		return nil, nil
	}
	return m.stub.search(ctx, query, maxResults)
}

func (m *mockCatalog) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	return m.playlists, nil
}

func (m *mockCatalog) GetPlaylist(ctx context.Context, id string) (*models.PlaylistExport, error) {
	if export, ok := m.exports[id]; ok {
		return export, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
}

func (m *mockCatalog) CreatePlaylist(ctx context.Context, name string, songIDs []string) (*models.Playlist, error) {
	if err := m.createErrFor[name]; err != nil {
		return nil, err
	}
	m.created = append(m.created, createdPlaylist{name: name, songIDs: songIDs})
	return &models.Playlist{ID: fmt.Sprintf("nd-%d", len(m.created)), Name: name, SongCount: len(songIDs)}, nil
}

func (m *mockCatalog) DeletePlaylist(ctx context.Context, id string) error { return nil }

// mockLibrary is a test double for [LibraryStore].
type mockLibrary struct {
	files    map[string]*models.MediaFile
	users    []models.User
	applyErr error
	lookups  []string
	applied  *models.LibraryUpdate
	userID   string
}

func (m *mockLibrary) FindMediaFile(ctx context.Context, path string) (*models.MediaFile, error) {
	m.lookups = append(m.lookups, path)
	if mf, ok := m.files[path]; ok {
		return mf, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, path)
}

func (m *mockLibrary) SoleUser(ctx context.Context) (*models.User, error) {
	if len(m.users) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one user, found %d", shared.ErrInvalidInput, len(m.users))
	}
	return &m.users[0], nil
}

func (m *mockLibrary) ApplyStats(ctx context.Context, userID string, update *models.LibraryUpdate) (int64, error) {
	if m.applyErr != nil {
		return 0, m.applyErr
	}
	m.userID = userID
	m.applied = update
	return 1, nil
}

// mockStore is a test double for [MigrationStore].
type mockStore struct {
	run          *models.ImportRun
	correlations map[int]string
	migrations   map[string]*models.PlaylistMigration
}

func newMockStore() *mockStore {
	return &mockStore{correlations: map[int]string{}, migrations: map[string]*models.PlaylistMigration{}}
}

func (m *mockStore) SaveCorrelations(ctx context.Context, run *models.ImportRun, correlations []models.Correlation) error {
	m.run = run
	m.correlations = map[int]string{}
	for _, c := range correlations {
		m.correlations[c.ITunesID] = c.MediaFileID
	}
	return nil
}

func (m *mockStore) Correlations(ctx context.Context) (map[int]string, error) {
	return m.correlations, nil
}

func (m *mockStore) PlaylistMigration(ctx context.Context, key string) (*models.PlaylistMigration, error) {
	return m.migrations[key], nil
}

func (m *mockStore) RecordPlaylistMigration(ctx context.Context, pm *models.PlaylistMigration) error {
	m.migrations[pm.PersistentID] = pm
	return nil
}
