// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI reviews the reconciliation of a folder of playlists:
//  1. [ScanView] : Scan every playlist against the server with live progress
//  2. [PlaylistListView] : Browse scanned playlists with found/maybe/missing counts
//  3. [ItemListView] : Inspect the scan items of one playlist
//  4. [StatsView] : Show overall statistics
//
// From the playlist views the missing tracks and missing albums reports can be exported and
// playlists can be rewritten with their found tracks. The [Model] owns the scan results;
// rescanning replaces them.
//
// Progress updates flow through a channel from the PlaylistEngine, providing non-blocking status reporting during scans.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
