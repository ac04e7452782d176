package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/ndx/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupConfig writes the example configuration to the --config path.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		return err
	}
	r.logger.Info("config file created", "path", configPath)

	r.writePlain("✓ Config written to %s\n", configPath)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set navidrome.url, navidrome.user and navidrome.password (or NDX_NAVIDROME_* in .env)\n")
	r.writePlain("2. Run 'ndx server ping' to test the connection\n")
	return nil
}

// SetupDatabase initializes the local database and runs migrations.
//
// With --rollback the most recent migration is reverted instead.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if configPath != r.configPath {
		if _, err := os.Stat(configPath); err == nil {
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		} else {
			r.logger.Info("config file not found, using current settings", "path", configPath)
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if cmd.Bool("rollback") {
		r.logger.Info("rolling back latest migration")
		if err := shared.RollbackMigration(ctx, db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("✓ Rolled back latest migration in %s\n", config.Database.Path)
		return nil
	}

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	r.writePlain("✓ Database ready at %s\n", config.Database.Path)
	return nil
}

// ServerPing checks that the Navidrome server is reachable and accepts the configured credentials.
func (r *Runner) ServerPing(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	r.logger.Info("pinging server", "url", r.config.Navidrome.URL, "user", r.config.Navidrome.User)
	if err := r.catalog.Verify(ctx); err != nil {
		return fmt.Errorf("connection to %s failed: %w", r.config.Navidrome.URL, err)
	}

	r.writePlain("✓ Connected to %s (%s) as %s\n", r.config.Navidrome.URL, r.catalog.Name(), r.config.Navidrome.User)
	return nil
}
