package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/desertthunder/ndx/internal/formatter"
	"github.com/desertthunder/ndx/internal/itunes"
	"github.com/desertthunder/ndx/internal/repositories"
	"github.com/desertthunder/ndx/internal/shared"
	"github.com/desertthunder/ndx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// libraryPaths returns the navidrome.db and iTunes XML paths, flags taking precedence over config.
func (r *Runner) libraryPaths(cmd *cli.Command) (navidromeDB, itunesXML string) {
	navidromeDB, itunesXML = r.config.Library.NavidromeDB, r.config.Library.ITunesXML
	if v := cmd.String("navidrome-db"); v != "" {
		navidromeDB = v
	}
	if v := cmd.String("itunes-xml"); v != "" {
		itunesXML = v
	}
	return navidromeDB, itunesXML
}

func (r *Runner) writePreflight(report *tasks.PreflightReport) {
	r.writePlainHeader("Preflight checks")
	for _, c := range report.Checks {
		mark := "[OK]  "
		if !c.OK {
			mark = "[FAIL]"
		}
		r.writePlain("%s %s\n", mark, c.Detail)
	}
}

// preflight runs every check and leaves the library opened and parsed for the caller.
//
// The returned close function is never nil.
func (r *Runner) preflight(ctx context.Context, navidromeDB, itunesXML string) (*tasks.PreflightReport, *repositories.LibraryRepository, *itunes.Library, func()) {
	report := &tasks.PreflightReport{}
	noop := func() {}

	if !tasks.CheckFiles(report, navidromeDB, itunesXML) {
		return report, nil, nil, noop
	}

	lib, err := itunes.Load(itunesXML)
	if err != nil {
		report.Checks = append(report.Checks, tasks.Check{Name: "itunes_xml", Detail: fmt.Sprintf("could not parse iTunes XML: %v", err)})
		return report, nil, nil, noop
	}
	r.logger.Debug("loaded itunes library", "tracks", len(lib.Tracks), "playlists", len(lib.Playlists))

	library, closeDB, err := r.openLibrary(navidromeDB)
	if err != nil {
		report.Checks = append(report.Checks, tasks.Check{Name: "navidrome_db", Detail: fmt.Sprintf("could not open navidrome.db: %v", err)})
		return report, nil, lib, noop
	}

	r.newEngine(library, nil).CheckLibrary(ctx, report, lib)
	return report, library, lib, closeDB
}

// ITunesPreflight verifies that the iTunes library and navidrome.db line up before an import.
func (r *Runner) ITunesPreflight(ctx context.Context, cmd *cli.Command) error {
	navidromeDB, itunesXML := r.libraryPaths(cmd)

	report, _, _, closeDB := r.preflight(ctx, navidromeDB, itunesXML)
	defer closeDB()

	r.writePreflight(report)
	if err := report.Err(); err != nil {
		return err
	}
	r.writePlainln("All checks passed.")
	return nil
}

// ITunesImport copies play counts, ratings and dates from the iTunes library into navidrome.db.
//
// Existing annotations are replaced, so the import refuses to run without --yes.
func (r *Runner) ITunesImport(ctx context.Context, cmd *cli.Command) error {
	navidromeDB, itunesXML := r.libraryPaths(cmd)

	report, library, lib, closeDB := r.preflight(ctx, navidromeDB, itunesXML)
	defer closeDB()

	r.writePreflight(report)
	if err := report.Err(); err != nil {
		return err
	}

	if !cmd.Bool("yes") {
		r.writePlainln("This replaces every play count, rating and play date in %s.", navidromeDB)
		r.writePlain("Stop Navidrome, back up the database and re-run with --yes.\n")
		return fmt.Errorf("%w: re-run with --yes to import", shared.ErrConfirmationRequired)
	}

	store, closeStore, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	progress, wait := r.watchProgress(tasks.WriteAnnotations)
	result, err := r.newEngine(library, store).ImportStats(ctx, lib, tasks.ImportOpts{
		ITunesXML:   itunesXML,
		NavidromeDB: navidromeDB,
	}, progress)
	wait()
	if err != nil {
		return err
	}

	r.logger.Info("import complete", "run", result.RunID, "matched", result.Matched)
	r.writePlainHeader("Import complete")
	rows := [][]string{
		{"Navidrome user", result.User.UserName},
		{"iTunes tracks", strconv.Itoa(result.Tracks)},
		{"Matched in Navidrome", strconv.Itoa(result.Matched)},
		{"Outside music folder", strconv.Itoa(result.OutsideRoot)},
		{"Not in Navidrome", strconv.Itoa(result.NotFound)},
		{"Date added updated", strconv.Itoa(result.Timestamps)},
		{"Artist annotations", strconv.Itoa(result.Artists)},
		{"Album annotations", strconv.Itoa(result.Albums)},
		{"Track annotations", strconv.Itoa(result.MediaFiles)},
		{"Albums synchronised", strconv.FormatInt(result.AlbumsSynced, 10)},
	}
	r.writePlain("%s\n", formatter.Table([]string{"Import", result.RunID}, rows, []formatter.Alignment{formatter.AlignLeft, formatter.AlignRight}))
	return nil
}

// ITunesPlaylists recreates iTunes user playlists on the server from the saved correlations.
func (r *Runner) ITunesPlaylists(ctx context.Context, cmd *cli.Command) error {
	_, itunesXML := r.libraryPaths(cmd)
	opts := tasks.MigrateOpts{
		Names:  cmd.StringSlice("name"),
		All:    cmd.Bool("all"),
		DryRun: cmd.Bool("dry-run"),
		Force:  cmd.Bool("force"),
	}
	if !opts.All && len(opts.Names) == 0 {
		return fmt.Errorf("%w: --name or --all", shared.ErrMissingArgument)
	}
	if !opts.DryRun {
		if err := r.requireCatalog(); err != nil {
			return err
		}
	}

	lib, err := itunes.Load(itunesXML)
	if err != nil {
		return err
	}

	store, closeStore, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	progress, wait := r.watchProgress(tasks.MigratePlaylist)
	result, err := r.newEngine(nil, store).MigratePlaylists(ctx, lib, opts, progress)
	wait()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Results))
	for _, res := range result.Results {
		status := res.Status
		if res.Err != nil {
			status = fmt.Sprintf("%s: %v", res.Status, res.Err)
		}
		rows = append(rows, []string{res.Name, strconv.Itoa(res.Songs), strconv.Itoa(res.Skipped), status})
	}
	aligns := []formatter.Alignment{formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight}
	r.writePlain("\n%s\n", formatter.Table([]string{"Playlist", "Songs", "Not Found", "Status"}, rows, aligns))

	if opts.DryRun {
		r.writePlain("Dry run: nothing was created on the server.\n")
	}
	r.writePlain("Created: %d, Skipped: %d, Failed: %d\n", result.Created, result.Skipped, result.Failed)
	return nil
}

// ITunesHistory lists the playlists migrated so far. --forget removes one record so that
// the playlist is migrated again on the next run.
func (r *Runner) ITunesHistory(ctx context.Context, cmd *cli.Command) error {
	store, closeStore, err := r.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if id := cmd.String("forget"); id != "" {
		if err := store.DeletePlaylistMigration(ctx, id); err != nil {
			return err
		}
		r.writePlain("✓ Forgot migration of %s\n", id)
		return nil
	}

	run, err := store.LatestRun(ctx)
	if err != nil {
		return err
	}
	migrations, err := store.ListPlaylistMigrations(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{"latest_import": run, "playlists": migrations}, cmd.Bool("pretty"))
	}

	if run == nil {
		r.writePlain("No stats import recorded yet.\n")
	} else {
		r.writePlain("Latest import %s at %s: %d correlated tracks\n", run.ID, run.CreatedAt.Format(shared.ReportTimestamp), run.TrackCount)
	}

	if len(migrations) == 0 {
		r.writePlain("No playlists migrated yet.\n")
		return nil
	}

	rows := make([][]string, 0, len(migrations))
	for _, m := range migrations {
		rows = append(rows, []string{
			m.Name, m.PersistentID, m.NavidromeID,
			strconv.Itoa(m.SongCount), strconv.Itoa(m.SkippedCount),
			m.MigratedAt.Format(shared.ReportTimestamp),
		})
	}
	aligns := []formatter.Alignment{
		formatter.AlignLeft, formatter.AlignLeft, formatter.AlignLeft,
		formatter.AlignRight, formatter.AlignRight, formatter.AlignLeft,
	}
	r.writePlain("\n%s\n", formatter.Table([]string{"Playlist", "iTunes ID", "Navidrome ID", "Songs", "Not Found", "Migrated"}, rows, aligns))
	return nil
}
