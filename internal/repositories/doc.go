// Package repositories implements SQLite persistence for the Navidrome library and for ndx's own bookkeeping.
//
// Key Implementations:
//   - [LibraryRepository] : reads media files and users from navidrome.db and writes imported annotations
//   - [MigrationRepository] : iTunes correlations and migrated playlists in the local ndx database
//
// navidrome.db is owned by Navidrome, so [LibraryRepository] never creates or migrates tables;
// the local database schema is managed by [shared.RunMigrations].
package repositories
