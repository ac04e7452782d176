package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ndx/internal/formatter"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
	"github.com/desertthunder/ndx/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ScanView ViewState = iota
	PlaylistListView
	ItemListView
	StatsView
)

// Scanner runs a playlist scan, reporting progress on the channel.
type Scanner interface {
	Scan(ctx context.Context, dir string, progress chan<- tasks.ProgressUpdate) (*models.ScanResults, error)
}

// Options configures where the TUI reads playlists and writes its output.
type Options struct {
	Dir               string // folder of .m3u playlists
	MissingTracksFile string
	MissingAlbumsFile string
	FixedDir          string // defaults to a timestamped fixed_playlists folder
	Now               func() time.Time
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	scanner      Scanner
	opts         Options
	width        int
	height       int
	playlistList list.Model
	itemList     list.Model
	results      *models.ScanResults
	selected     string
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	scan         scanResult
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, scanner Scanner, opts Options) *Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Model{
		ctx:     ctx,
		view:    ScanView,
		scanner: scanner,
		opts:    opts,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts the first scan.
func (m *Model) Init() tea.Cmd {
	return m.startScan()
}

// Results returns the scan results currently held by the model.
func (m *Model) Results() *models.ScanResults {
	return m.results
}

// Err returns the error that stopped the TUI, if any.
func (m *Model) Err() error {
	return m.err
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.results != nil {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.selected != "" {
			m.itemList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ScanView:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case ItemListView:
			return m.handleItemListKeys(msg)
		case StatsView:
			return m.handleStatsKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgScanComplete:
		res := msg.data.(scanResult)
		m.progressChan = nil
		if res.err != nil {
			m.err = res.err
			return m, tea.Quit
		}
		m.setResults(res.results)
		return m, nil

	case MsgReportExported:
		res := msg.data.(exportResult)
		switch {
		case errors.Is(res.err, shared.ErrNothingToExport):
			m.status = styles.warn.Render(fmt.Sprintf("Nothing to export for %s.", res.report))
		case res.err != nil:
			m.status = styles.err.Render(fmt.Sprintf("Export of %s failed: %v", res.report, res.err))
		default:
			m.status = styles.ok.Render(fmt.Sprintf("✓ %s saved to %s", res.report, res.path))
		}
		return m, nil

	case MsgPlaylistsFixed:
		m.status = renderFixResults(msg.data.([]tasks.FixResult))
		return m, nil
	}
	return m, nil
}

// setResults replaces the held results and rebuilds the playlist list.
func (m *Model) setResults(results *models.ScanResults) {
	m.results = results
	m.playlistList = list.New(playlistItems(results), list.NewDefaultDelegate(), 0, 0)
	m.playlistList.Title = fmt.Sprintf("Scanned Playlists (%s)", m.opts.Dir)
	m.playlistList.SetSize(m.width-4, m.height-8)
	m.view = PlaylistListView
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ScanView:
		return m.renderScan()
	case PlaylistListView:
		return m.renderPlaylistList()
	case ItemListView:
		return m.renderItemList()
	case StatsView:
		return m.renderStats()
	default:
		return ""
	}
}

// handleReportKeys handles the keys shared by the playlist and item views.
func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.stats):
		m.view = StatsView
		return nil, true
	case key.Matches(msg, m.keys.missingTracks):
		return m.exportMissingTracks(), true
	case key.Matches(msg, m.keys.missingAlbums):
		return m.exportMissingAlbums(), true
	case key.Matches(msg, m.keys.fixAll):
		return m.fixPlaylists(m.results), true
	}
	return nil, false
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.playlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.playlistList, cmd = m.playlistList.Update(msg)
		return m, cmd
	}

	if cmd, ok := m.handleReportKeys(msg); ok {
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.rescan):
		m.status = ""
		return m, m.startScan()
	case key.Matches(msg, m.keys.fix):
		if name, ok := m.selectedPlaylist(); ok {
			return m, m.fixPlaylists(m.single(name))
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if name, ok := m.selectedPlaylist(); ok {
			m.openPlaylist(name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleItemListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.handleReportKeys(msg); ok {
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = PlaylistListView
		return m, nil
	case key.Matches(msg, m.keys.fix):
		return m, m.fixPlaylists(m.single(m.selected))
	}

	var cmd tea.Cmd
	m.itemList, cmd = m.itemList.Update(msg)
	return m, cmd
}

func (m *Model) handleStatsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.stats):
		m.view = PlaylistListView
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case ItemListView:
		m.itemList, cmd = m.itemList.Update(msg)
	}
	return m, cmd
}

func (m *Model) selectedPlaylist() (string, bool) {
	if pl, ok := m.playlistList.SelectedItem().(playlistItem); ok {
		return pl.name, true
	}
	return "", false
}

func (m *Model) openPlaylist(name string) {
	scanned, _ := m.results.Get(name)
	m.selected = name
	m.itemList = list.New(scanItems(scanned), list.NewDefaultDelegate(), 0, 0)
	m.itemList.Title = fmt.Sprintf("Tracks in '%s'", name)
	m.itemList.SetSize(m.width-4, m.height-8)
	m.view = ItemListView
}

// single returns results holding only the named playlist.
func (m *Model) single(name string) *models.ScanResults {
	one := models.NewScanResults()
	if scanned, ok := m.results.Get(name); ok {
		one.Set(name, scanned)
	}
	return one
}

func (m *Model) startScan() tea.Cmd {
	m.view = ScanView
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	progress := m.progressChan

	go func() {
		results, err := m.scanner.Scan(m.ctx, m.opts.Dir, progress)
		m.scan = scanResult{results: results, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress := m.progressChan
	return func() tea.Msg {
		if progress == nil {
			return scanCompleteMsg(m.scan.results, m.scan.err)
		}

		update, ok := <-progress
		if !ok {
			return scanCompleteMsg(m.scan.results, m.scan.err)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) exportMissingTracks() tea.Cmd {
	items := formatter.Flatten(m.results)
	path, now := m.opts.MissingTracksFile, m.opts.Now()
	return func() tea.Msg {
		written, err := formatter.WriteMissingTracks(path, items, now)
		return reportExportedMsg("missing tracks", written, err)
	}
}

func (m *Model) exportMissingAlbums() tea.Cmd {
	items := formatter.Flatten(m.results)
	path, now := m.opts.MissingAlbumsFile, m.opts.Now()
	return func() tea.Msg {
		written, err := formatter.WriteMissingAlbums(path, items, now)
		return reportExportedMsg("missing albums", written, err)
	}
}

func (m *Model) fixPlaylists(results *models.ScanResults) tea.Cmd {
	dir := m.opts.FixedDir
	if dir == "" {
		dir = shared.TimestampedName(tasks.FixedPlaylistDirPrefix, m.opts.Now())
	}
	return func() tea.Msg {
		return playlistsFixedMsg(tasks.FixAll(results, dir))
	}
}

func renderFixResults(results []tasks.FixResult) string {
	var b strings.Builder
	for _, r := range results {
		switch {
		case r.Skipped():
			b.WriteString(styles.warn.Render(fmt.Sprintf("• %s: no found tracks, skipped", r.Name)))
		case r.Err != nil:
			b.WriteString(styles.err.Render(fmt.Sprintf("✗ %s: %v", r.Name, r.Err)))
		default:
			b.WriteString(styles.ok.Render(fmt.Sprintf("✓ %s: %d tracks → %s", r.Name, r.Written, r.Path)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderScan() string {
	title := styles.title.Render(fmt.Sprintf("Scanning %s", m.opts.Dir))

	var phase string
	switch m.progress.Phase {
	case tasks.StrongPass:
		phase = fmt.Sprintf("Exact search (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.PartialPass:
		phase = fmt.Sprintf("Partial search (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ScanPlaylist:
		phase = fmt.Sprintf("Playlist %d of %d", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) withStatus(body string, keys ...key.Binding) string {
	view := body
	if m.status != "" {
		view = fmt.Sprintf("%s\n\n%s", view, m.status)
	}
	return fmt.Sprintf("%s\n\n%s", view, m.help.ShortHelpView(keys))
}

func (m *Model) renderPlaylistList() string {
	return m.withStatus(m.playlistList.View(),
		m.keys.enter, m.keys.stats, m.keys.missingTracks, m.keys.missingAlbums,
		m.keys.fix, m.keys.fixAll, m.keys.rescan, m.keys.quit)
}

func (m *Model) renderItemList() string {
	return m.withStatus(m.itemList.View(),
		m.keys.back, m.keys.fix, m.keys.missingTracks, m.keys.missingAlbums, m.keys.quit)
}

func (m *Model) renderStats() string {
	title := styles.title.Render("Scan Statistics")
	stats := formatter.ComputeStatistics(formatter.Flatten(m.results))
	if stats.Total == 0 {
		return m.withStatus(fmt.Sprintf("%s\n%s", title, "No tracks were scanned."), m.keys.back, m.keys.quit)
	}
	return m.withStatus(fmt.Sprintf("%s\n%s", title, formatter.RenderStatistics(stats)), m.keys.back, m.keys.quit)
}
