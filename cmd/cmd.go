package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output as JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func libraryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "navidrome-db",
			Usage: "Path to navidrome.db (defaults to library.navidrome_db)",
		},
		&cli.StringFlag{
			Name:  "itunes-xml",
			Usage: "Path to the iTunes Library.xml export (defaults to library.itunes_xml)",
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Value:   "config.toml",
		Usage:   "Path to config file",
	}
}

// setupCommand creates the config file and the local database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the local database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Create the local database and run migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

func serverCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Navidrome server connection",
		Commands: []*cli.Command{
			{
				Name:   "ping",
				Usage:  "Check that the server is reachable and the credentials work",
				Action: r.ServerPing,
			},
		},
	}
}

// playlistsCommand reconciles local playlists and manages server playlists
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "Check local playlists against the server and manage server playlists",
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Match every track of a folder of .m3u playlists against the server",
				ArgsUsage: "[folder]",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Folder containing .m3u playlists",
					},
					&cli.BoolFlag{
						Name:  "missing-tracks",
						Usage: "Export missing and potential matches to reports.missing_tracks",
					},
					&cli.BoolFlag{
						Name:  "missing-albums",
						Usage: "Export albums with missing tracks to reports.missing_albums",
					},
					&cli.BoolFlag{
						Name:  "fix",
						Usage: "Write {name}_fixed.m3u playlists with server paths of found tracks",
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Folder for fixed playlists (defaults to fixed_playlists_<timestamp>)",
					},
				}, jsonFlags()...),
				Action: r.PlaylistsCheck,
			},
			{
				Name:   "list",
				Usage:  "List playlists on the server",
				Flags:  jsonFlags(),
				Action: r.PlaylistsList,
			},
			{
				Name:  "download",
				Usage: "Download server playlists as .m3u files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Playlist name (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Download every playlist",
					},
					&cli.StringFlag{
						Name:    "output-dir",
						Aliases: []string{"o"},
						Usage:   "Destination folder (defaults to navidrome_playlists_<timestamp>)",
					},
				},
				Action: r.PlaylistsDownload,
			},
		},
	}
}

// itunesCommand migrates an iTunes library into Navidrome
func itunesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "itunes",
		Usage: "Migrate iTunes play statistics and playlists into Navidrome",
		Commands: []*cli.Command{
			{
				Name:   "preflight",
				Usage:  "Verify the iTunes library and navidrome.db before importing",
				Flags:  libraryFlags(),
				Action: r.ITunesPreflight,
			},
			{
				Name:  "import",
				Usage: "Replace Navidrome play counts, ratings and dates with iTunes values",
				Flags: append(libraryFlags(), &cli.BoolFlag{
					Name:    "yes",
					Aliases: []string{"y"},
					Usage:   "Confirm that existing annotations may be replaced",
				}),
				Action: r.ITunesImport,
			},
			{
				Name:  "playlists",
				Usage: "Recreate iTunes playlists on the server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "itunes-xml",
						Usage: "Path to the iTunes Library.xml export (defaults to library.itunes_xml)",
					},
					&cli.StringSliceFlag{
						Name:    "name",
						Aliases: []string{"n"},
						Usage:   "Playlist name (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Migrate every user playlist",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Report what would be created without calling the server",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Migrate playlists again even if they were migrated before",
					},
				},
				Action: r.ITunesPlaylists,
			},
			{
				Name:  "history",
				Usage: "Show the latest import and the migrated playlists",
				Flags: append(jsonFlags(), &cli.StringFlag{
					Name:  "forget",
					Usage: "Forget the migration of the playlist with this iTunes persistent ID",
				}),
				Action: r.ITunesHistory,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Review a playlist folder interactively",
		ArgsUsage: "[folder]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Folder containing .m3u playlists",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Folder for fixed playlists (defaults to fixed_playlists_<timestamp>)",
			},
		},
		Action: r.TUI,
	}
}
