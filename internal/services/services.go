// package services defines interface Catalog for interacting with a music server over HTTP
//
// Navidrome (Subsonic API)
package services

import (
	"context"

	"github.com/desertthunder/ndx/internal/models"
)

// Catalog defines the operations ndx needs from a music server: searching songs and managing playlists.
type Catalog interface {
	// Ping checks that the server is reachable and the credentials are accepted.
	Ping(ctx context.Context) error

	// Verify runs [Catalog.Ping] and a minimal search so that search permissions are checked too.
	Verify(ctx context.Context) error

	// Search returns up to maxResults songs matching a free-text query.
	Search(ctx context.Context, query string, maxResults int) ([]models.Song, error)

	// GetPlaylists retrieves all playlists visible to the user.
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)

	// GetPlaylist retrieves a playlist with its songs in server order.
	GetPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error)

	// CreatePlaylist creates a playlist containing songIDs in order.
	CreatePlaylist(ctx context.Context, name string, songIDs []string) (*models.Playlist, error)

	// DeletePlaylist removes a playlist by ID.
	DeletePlaylist(ctx context.Context, playlistID string) error

	// Name returns the name of the service (e.g., "Navidrome")
	Name() string
}
