// Navidrome [Catalog] implementation
//
// Talks to the Subsonic REST API exposed by Navidrome under /rest/. Every request
// is signed with the salted token scheme (t = md5(password + salt)) and asks for JSON.
package services

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
)

const (
	defaultAPIVersion = "1.16.1"
	defaultClientName = "ndx"
	saltLength        = 7
	saltAlphabet      = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NavidromeOpts configures a [NavidromeService].
type NavidromeOpts struct {
	BaseURL    string
	User       string
	Password   string
	ClientName string
	APIVersion string
	Timeout    time.Duration
	// SearchRate limits search requests per second. Zero disables throttling.
	SearchRate float64
	HTTPClient *http.Client
}

// NavidromeService implements [Catalog] for a Navidrome (or any Subsonic compatible) server.
type NavidromeService struct {
	baseURL    string
	user       string
	password   string
	clientName string
	apiVersion string
	httpClient *http.Client
	limiter    *rate.Limiter
	salt       func() string
}

// NewNavidromeService creates a new Navidrome service instance.
func NewNavidromeService(opts NavidromeOpts) *NavidromeService {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
		if opts.Timeout > 0 {
			client.Timeout = opts.Timeout
		}
	}

	n := &NavidromeService{
		baseURL:    NormalizeBaseURL(opts.BaseURL),
		user:       opts.User,
		password:   opts.Password,
		clientName: opts.ClientName,
		apiVersion: opts.APIVersion,
		httpClient: client,
		salt:       randomSalt,
	}
	if n.clientName == "" {
		n.clientName = defaultClientName
	}
	if n.apiVersion == "" {
		n.apiVersion = defaultAPIVersion
	}
	if opts.SearchRate > 0 {
		n.limiter = rate.NewLimiter(rate.Limit(opts.SearchRate), 1)
	}
	return n
}

// NormalizeBaseURL trims raw, defaults the scheme to http and makes sure it ends with "/rest/".
func NormalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	u = strings.TrimRight(u, "/")
	if !strings.HasSuffix(u, "/rest") {
		u += "/rest"
	}
	return u + "/"
}

// Name returns the service name.
func (n *NavidromeService) Name() string {
	return "Navidrome"
}

func randomSalt() string {
	b := make([]byte, saltLength)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("failed to read random salt: %v", err))
	}
	for i := range b {
		b[i] = saltAlphabet[int(b[i])%len(saltAlphabet)]
	}
	return string(b)
}

// Token returns the Subsonic authentication token for password and salt.
func Token(password, salt string) string {
	sum := md5.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// subsonicError is the error object of a failed Subsonic response.
type subsonicError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type subsonicSong struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Path     string `json:"path"`
	Duration int    `json:"duration"`
}

func (s subsonicSong) toModel() models.Song {
	return models.Song{ID: s.ID, Title: s.Title, Artist: s.Artist, Album: s.Album, Path: s.Path, Duration: s.Duration}
}

type subsonicPlaylist struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Owner     string         `json:"owner"`
	Public    bool           `json:"public"`
	SongCount int            `json:"songCount"`
	Duration  int            `json:"duration"`
	Entry     []subsonicSong `json:"entry"`
}

func (p subsonicPlaylist) toModel() models.Playlist {
	return models.Playlist{ID: p.ID, Name: p.Name, Owner: p.Owner, Public: p.Public, SongCount: p.SongCount, Duration: p.Duration}
}

// subsonicResponse is the payload nested under "subsonic-response".
type subsonicResponse struct {
	Status        string         `json:"status"`
	Version       string         `json:"version"`
	Error         *subsonicError `json:"error,omitempty"`
	SearchResult3 *struct {
		Song []subsonicSong `json:"song"`
	} `json:"searchResult3,omitempty"`
	Playlists *struct {
		Playlist []subsonicPlaylist `json:"playlist"`
	} `json:"playlists,omitempty"`
	Playlist *subsonicPlaylist `json:"playlist,omitempty"`
}

// doRequest performs a signed GET to endpoint and decodes the envelope.
//
// Responses whose status is not "ok" are returned as errors wrapping [shared.ErrAPIRequest].
func (n *NavidromeService) doRequest(ctx context.Context, endpoint string, params url.Values) (*subsonicResponse, error) {
	if n.baseURL == "" {
		return nil, fmt.Errorf("%w: navidrome url is empty", shared.ErrMissingConfig)
	}

	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	salt := n.salt()
	q.Set("u", n.user)
	q.Set("t", Token(n.password, salt))
	q.Set("s", salt)
	q.Set("v", n.apiVersion)
	q.Set("c", n.clientName)
	q.Set("f", "json")

	apiURL := n.baseURL + endpoint + ".view?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s: status %d", shared.ErrAPIRequest, endpoint, resp.StatusCode)
	}

	var envelope struct {
		Response *subsonicResponse `json:"subsonic-response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Response == nil {
		return nil, fmt.Errorf("%w: %s: missing subsonic-response", shared.ErrAPIRequest, endpoint)
	}

	r := envelope.Response
	if r.Status != "ok" {
		if r.Error != nil {
			return nil, fmt.Errorf("%w: %s: %s (code %d)", shared.ErrAPIRequest, endpoint, r.Error.Message, r.Error.Code)
		}
		return nil, fmt.Errorf("%w: %s: status %q", shared.ErrAPIRequest, endpoint, r.Status)
	}
	return r, nil
}

// Ping calls the ping endpoint.
func (n *NavidromeService) Ping(ctx context.Context) error {
	_, err := n.doRequest(ctx, "ping", nil)
	return err
}

// Verify pings the server and runs a one-song search.
func (n *NavidromeService) Verify(ctx context.Context) error {
	if err := n.Ping(ctx); err != nil {
		return err
	}
	if _, err := n.doRequest(ctx, "search3", url.Values{"query": {"a"}, "songCount": {"1"}}); err != nil {
		return fmt.Errorf("search check failed: %w", err)
	}
	return nil
}

// Search calls search3 and returns only songs.
//
// Requests are throttled by the configured search rate.
func (n *NavidromeService) Search(ctx context.Context, query string, maxResults int) ([]models.Song, error) {
	if n.limiter != nil {
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{
		"query":       {query},
		"songCount":   {fmt.Sprint(maxResults)},
		"artistCount": {"0"},
		"albumCount":  {"0"},
	}
	r, err := n.doRequest(ctx, "search3", params)
	if err != nil {
		return nil, err
	}
	if r.SearchResult3 == nil {
		return nil, nil
	}

	songs := make([]models.Song, len(r.SearchResult3.Song))
	for i, s := range r.SearchResult3.Song {
		songs[i] = s.toModel()
	}
	return songs, nil
}

// GetPlaylists calls getPlaylists.
func (n *NavidromeService) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	r, err := n.doRequest(ctx, "getPlaylists", nil)
	if err != nil {
		return nil, err
	}
	if r.Playlists == nil {
		return nil, fmt.Errorf("%w: getPlaylists: missing playlists", shared.ErrAPIRequest)
	}

	playlists := make([]models.Playlist, len(r.Playlists.Playlist))
	for i, p := range r.Playlists.Playlist {
		playlists[i] = p.toModel()
	}
	return playlists, nil
}

// GetPlaylist calls getPlaylist and returns its entries in server order.
func (n *NavidromeService) GetPlaylist(ctx context.Context, playlistID string) (*models.PlaylistExport, error) {
	r, err := n.doRequest(ctx, "getPlaylist", url.Values{"id": {playlistID}})
	if err != nil {
		return nil, err
	}
	if r.Playlist == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}

	export := &models.PlaylistExport{
		Playlist: r.Playlist.toModel(),
		Songs:    make([]models.Song, len(r.Playlist.Entry)),
	}
	for i, s := range r.Playlist.Entry {
		export.Songs[i] = s.toModel()
	}
	return export, nil
}

// CreatePlaylist calls createPlaylist with one songId parameter per song.
func (n *NavidromeService) CreatePlaylist(ctx context.Context, name string, songIDs []string) (*models.Playlist, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: playlist name is empty", shared.ErrInvalidInput)
	}

	params := url.Values{"name": {name}}
	for _, id := range songIDs {
		params.Add("songId", id)
	}

	r, err := n.doRequest(ctx, "createPlaylist", params)
	if err != nil {
		return nil, err
	}

	// Servers implementing API 1.14+ return the new playlist; older ones return an empty body.
	if r.Playlist == nil {
		return &models.Playlist{Name: name, SongCount: len(songIDs)}, nil
	}
	p := r.Playlist.toModel()
	return &p, nil
}

// DeletePlaylist calls deletePlaylist.
func (n *NavidromeService) DeletePlaylist(ctx context.Context, playlistID string) error {
	_, err := n.doRequest(ctx, "deletePlaylist", url.Values{"id": {playlistID}})
	return err
}
