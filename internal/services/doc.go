// Package services defines the [Catalog] interface for music servers and implements it for Navidrome.
//
// # Catalog Interface
//
// Reconciliation and migration only need a handful of server operations: searching songs,
// listing and reading playlists, and creating or deleting them. Keeping them behind [Catalog]
// lets the tasks package run against in-memory fakes in tests.
//
// # Navidrome Implementation
//
// [NavidromeService] speaks the Subsonic REST API (version 1.16.1 by default) under /rest/.
// Each request carries the user name, a fresh random salt and t = md5(password + salt),
// and asks for the JSON envelope. Searches go through a golang.org/x/time/rate limiter when a search rate is configured.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : transport failure, non-2xx status or a "failed" Subsonic response
//   - [shared.ErrPlaylistNotFound] : getPlaylist returned no playlist
//   - [shared.ErrInvalidInput] : an empty playlist name
package services
