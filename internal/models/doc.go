// Package models defines domain entities for ndx.
//
// The package contains three groups of types:
//
// 1. Reconciliation types: playlist tracks and their match outcome against the catalog
//   - [Track] : artist/album/title parsed from a local playlist line
//   - [Song] : catalog entry returned by the server search
//   - [ScanItem] : one Track paired with its [Status] and bound Song
//   - [ScanResults] : ordered mapping of playlist filename to scan items
//
// 2. Server types: [Playlist] and [PlaylistExport] as returned by the Subsonic API.
//
// 3. Library migration types: rows read from or written to navidrome.db and the local ndx database
//   - [MediaFile], [User] : Navidrome rows
//   - [PlayStats] : aggregated annotation for an artist, album or media file
//   - [ImportRun], [Correlation], [PlaylistMigration] : bookkeeping of iTunes migrations
package models
