package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgProgressUpdate MsgKind = iota
	MsgScanComplete
	MsgReportExported
	MsgPlaylistsFixed
)

type scanResult struct {
	results *models.ScanResults
	err     error
}

type exportResult struct {
	report string
	path   string
	err    error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// scanCompleteMsg is the constructor for [MsgScanComplete]
func scanCompleteMsg(results *models.ScanResults, err error) Msg {
	return Msg{kind: MsgScanComplete, data: scanResult{results: results, err: err}}
}

// reportExportedMsg is the constructor for [MsgReportExported]
func reportExportedMsg(report, path string, err error) Msg {
	return Msg{kind: MsgReportExported, data: exportResult{report: report, path: path, err: err}}
}

// playlistsFixedMsg is the constructor for [MsgPlaylistsFixed]
func playlistsFixedMsg(results []tasks.FixResult) Msg {
	return Msg{kind: MsgPlaylistsFixed, data: results}
}
