// Package tasks reconciles local playlists with a Navidrome catalog and migrates iTunes library data, with real-time progress reporting.
//
// # Reconciliation
//
//  1. [Match] : two-pass matcher
//     - Pass 1 searches "{artist} {title}" and accepts an exact [Normalize]d title with a matching artist (found)
//     - Pass 2 searches "{artist} {first three title words}" for the rest and accepts a title prefix (maybe)
//     - Everything else is missing; output order equals input order
//
//  2. [PlaylistEngine.Scan] : runs [Match] for every playlist of a folder into fresh [models.ScanResults]
//
//  3. [FixPlaylist] / [FixAll] : write "{name}_fixed.m3u" with the server paths of found tracks
//
//  4. [PlaylistEngine.DownloadPlaylists] : save server playlists as M3U files
//
// # Library migration
//
//  1. [CheckFiles] and [PlaylistEngine.CheckLibrary] : preflight checks before touching navidrome.db
//  2. [PlaylistEngine.ImportStats] : ratings, play counts, play dates and timestamps into navidrome.db
//  3. [PlaylistEngine.MigratePlaylists] : recreate iTunes playlists through the Subsonic API
//
// # Progress Reporting
//
// All engine operations accept an optional channel of [ProgressUpdate]. Updates use select with default so
// reporting never blocks the operation.
package tasks
