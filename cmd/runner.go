package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ndx/internal/repositories"
	"github.com/desertthunder/ndx/internal/services"
	"github.com/desertthunder/ndx/internal/shared"
	"github.com/desertthunder/ndx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	catalog    services.Catalog
	logger     *log.Logger
	output     io.Writer
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Catalog    services.Catalog
	Logger     *log.Logger
	Output     io.Writer
	Now        func() time.Time
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		catalog:    opts.Catalog,
		logger:     opts.Logger,
		output:     opts.Output,
		now:        opts.Now,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, serverCommand, playlistsCommand, itunesCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by subsequent actions.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// requireCatalog fails when the server connection is not usable.
func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: navidrome service not initialized", shared.ErrServiceUnavailable)
	}
	return r.config.Validate()
}

func (r *Runner) newEngine(library tasks.LibraryStore, store tasks.MigrationStore) *tasks.PlaylistEngine {
	return tasks.NewPlaylistEngine(tasks.EngineOpts{
		Catalog: r.catalog,
		Library: library,
		Store:   store,
		Logger:  r.logger,
	})
}

// openStore opens the local ndx database and brings its schema up to date.
func (r *Runner) openStore(ctx context.Context) (*repositories.MigrationRepository, func(), error) {
	path := r.config.Database.Path
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Debug("opened local database", "path", path)
	return repositories.NewMigrationRepository(db), func() { db.Close() }, nil
}

// openLibrary opens an existing navidrome.db for reading and writing.
func (r *Runner) openLibrary(path string) (*repositories.LibraryRepository, func(), error) {
	db, err := shared.OpenExistingDatabase(path)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Debug("opened navidrome database", "path", path)
	return repositories.NewLibraryRepository(db), func() { db.Close() }, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
