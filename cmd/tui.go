package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ndx/internal/shared"
	"github.com/desertthunder/ndx/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/ndx-tui.log"

// TUI launches the interactive terminal UI for reviewing a playlist folder.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
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

	// Logs would corrupt the alternate screen, so they go to a file while the program runs.
	fileLogger, logFile, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.newEngine(nil, nil), ui.Options{
		Dir:               dir,
		MissingTracksFile: r.config.Reports.MissingTracks,
		MissingAlbumsFile: r.config.Reports.MissingAlbums,
		FixedDir:          cmd.String("output-dir"),
		Now:               r.now,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return model.Err()
}
