package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/desertthunder/ndx/internal/formatter"
	"github.com/desertthunder/ndx/internal/models"
	"github.com/desertthunder/ndx/internal/shared"
	"github.com/desertthunder/ndx/internal/tasks"
	"github.com/urfave/cli/v3"
)

type playlistReport struct {
	Name    string            `json:"name"`
	Found   int               `json:"found"`
	Maybe   int               `json:"maybe"`
	Missing int               `json:"missing"`
	Items   []models.ScanItem `json:"items"`
}

type checkReport struct {
	Playlists   []playlistReport `json:"playlists"`
	Total       int              `json:"total"`
	Found       int              `json:"found"`
	Maybe       int              `json:"maybe"`
	Missing     int              `json:"missing"`
	SuccessRate float64          `json:"success_rate"`
}

func newCheckReport(results *models.ScanResults) checkReport {
	report := checkReport{Playlists: []playlistReport{}}
	for _, name := range results.Names() {
		items, _ := results.Get(name)
		s := formatter.ComputeStatistics(items)
		report.Playlists = append(report.Playlists, playlistReport{
			Name: name, Found: s.Found, Maybe: s.Maybe, Missing: s.Missing, Items: items,
		})
	}
	s := formatter.ComputeStatistics(formatter.Flatten(results))
	report.Total, report.Found, report.Maybe, report.Missing = s.Total, s.Found, s.Maybe, s.Missing
	report.SuccessRate = s.SuccessRate()
	return report
}

// PlaylistsCheck scans a folder of M3U playlists against the server and reports what was found.
//
// Reports and fixed playlists are only written when the matching flags are set.
func (r *Runner) PlaylistsCheck(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if dir == "" {
		dir = cmd.Args().First()
	}
	if dir == "" {
		return fmt.Errorf("%w: playlist folder (--dir)", shared.ErrMissingArgument)
	}
	if err := r.requireCatalog(); err != nil {
		return err
	}

	jsonOut := cmd.Bool("json")
	engine := r.newEngine(nil, nil)

	r.logger.Info("scanning playlists", "dir", dir)
	var results *models.ScanResults
	var err error
	if jsonOut {
		results, err = engine.Scan(ctx, dir, nil)
	} else {
		progress, wait := r.watchProgress(tasks.ScanPlaylist)
		results, err = engine.Scan(ctx, dir, progress)
		wait()
	}
	if err != nil {
		return err
	}

	if jsonOut {
		if err := r.writeJSON(newCheckReport(results), cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.writePlaylistSummary(results)
	}

	items := formatter.Flatten(results)
	now := r.now()

	if cmd.Bool("missing-tracks") {
		r.exportReport(formatter.WriteMissingTracks(r.config.Reports.MissingTracks, items, now))
	}
	if cmd.Bool("missing-albums") {
		r.exportReport(formatter.WriteMissingAlbums(r.config.Reports.MissingAlbums, items, now))
	}

	if cmd.Bool("fix") {
		outputDir := cmd.String("output-dir")
		if outputDir == "" {
			outputDir = shared.TimestampedName(tasks.FixedPlaylistDirPrefix, now)
		}
		r.writeFixResults(tasks.FixAll(results, outputDir), outputDir)
	}
	return nil
}

func (r *Runner) writePlaylistSummary(results *models.ScanResults) {
	if results.Len() == 0 {
		r.writePlainln("No playlists with valid tracks were found.")
		return
	}

	rows := make([][]string, 0, results.Len())
	for _, name := range results.Names() {
		items, _ := results.Get(name)
		s := formatter.ComputeStatistics(items)
		rows = append(rows, []string{name, strconv.Itoa(s.Found), strconv.Itoa(s.Maybe), strconv.Itoa(s.Missing)})
	}

	aligns := []formatter.Alignment{formatter.AlignLeft, formatter.AlignRight, formatter.AlignRight, formatter.AlignRight}
	r.writePlain("\n%s\n\n", formatter.Table([]string{"Playlist", "Found", "Maybe", "Missing"}, rows, aligns))
	r.writePlain("%s\n", formatter.RenderStatistics(formatter.ComputeStatistics(formatter.Flatten(results))))
}

// exportReport prints the outcome of a report export. An empty report is not an error.
func (r *Runner) exportReport(path string, err error) {
	switch {
	case errors.Is(err, shared.ErrNothingToExport):
		r.writePlain("Nothing to export for %s\n", path)
	case err != nil:
		r.logger.Error("report export failed", "path", path, "error", err)
		r.writePlain("✗ Could not write %s: %v\n", path, err)
	default:
		r.writePlain("✓ Report written to %s\n", path)
	}
}

func (r *Runner) writeFixResults(results []tasks.FixResult, outputDir string) {
	written := 0
	r.writePlainln("Fixed playlists (%s):", outputDir)
	for _, res := range results {
		switch {
		case res.Skipped():
			r.writePlain("  - %s: no found tracks, skipped\n", res.Name)
		case res.Err != nil:
			r.logger.Error("playlist rewrite failed", "playlist", res.Name, "error", res.Err)
			r.writePlain("  ✗ %s: %v\n", res.Name, res.Err)
		default:
			written++
			r.writePlain("  ✓ %s (%d tracks)\n", res.Path, res.Written)
		}
	}
	r.writePlain("%d of %d playlists written\n", written, len(results))
}

// PlaylistsList prints the playlists stored on the server.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	playlists, err := r.catalog.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	r.logger.Debug("fetched playlists", "count", len(playlists))

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		r.writePlain("No playlists found on the server.\n")
		return nil
	}

	rows := make([][]string, 0, len(playlists))
	for i, p := range playlists {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.Name, strconv.Itoa(p.SongCount), p.Owner, p.ID})
	}
	aligns := []formatter.Alignment{formatter.AlignRight, formatter.AlignLeft, formatter.AlignRight}
	r.writePlain("%s\n", formatter.Table([]string{"#", "Name", "Songs", "Owner", "ID"}, rows, aligns))
	return nil
}

// PlaylistsDownload saves server playlists as M3U files in a timestamped folder.
func (r *Runner) PlaylistsDownload(ctx context.Context, cmd *cli.Command) error {
	names := cmd.StringSlice("name")
	all := cmd.Bool("all")
	if !all && len(names) == 0 {
		return fmt.Errorf("%w: --name or --all", shared.ErrMissingArgument)
	}
	if err := r.requireCatalog(); err != nil {
		return err
	}

	playlists, err := r.catalog.GetPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	if !all {
		if playlists, err = tasks.FindPlaylists(playlists, names); err != nil {
			return err
		}
	}
	if len(playlists) == 0 {
		r.writePlain("No playlists found on the server.\n")
		return nil
	}

	outputDir := cmd.String("output-dir")
	if outputDir == "" {
		outputDir = shared.TimestampedName(tasks.DownloadDirPrefix, r.now())
	}

	progress, wait := r.watchProgress(tasks.DownloadPlaylist)
	results, err := r.newEngine(nil, nil).DownloadPlaylists(ctx, playlists, outputDir, progress)
	wait()
	if err != nil {
		return err
	}

	saved := 0
	for _, res := range results {
		if res.Err == nil {
			saved++
		}
	}
	r.writePlainln("Saved %d of %d playlists to %s", saved, len(results), outputDir)
	return nil
}
