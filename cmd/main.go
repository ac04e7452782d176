package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/ndx/internal/services"
	"github.com/desertthunder/ndx/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := shared.LoadConfig(configPath); err != nil {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		} else {
			config = loaded
		}
	}

	if err := config.ApplyEnv(); err != nil {
		logger.Warn("failed to apply environment overrides", "error", err)
	}
	shared.SetLogLevel(logger, config.Log.Level)

	navidrome := services.NewNavidromeService(services.NavidromeOpts{
		BaseURL:    config.Navidrome.URL,
		User:       config.Navidrome.User,
		Password:   config.Navidrome.Password,
		ClientName: config.Navidrome.ClientName,
		APIVersion: config.Navidrome.APIVersion,
		Timeout:    config.Navidrome.RequestTimeout(),
		SearchRate: config.Navidrome.SearchRate,
	})

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Catalog:    navidrome,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "ndx",
		Usage:    "Reconcile M3U playlists and migrate iTunes libraries into Navidrome",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrConfirmationRequired) {
			logger.Warn(err.Error())
			os.Exit(2)
		}
		if wrapped := errors.Unwrap(err); wrapped != nil {
			logger.Debug("underlying error", "error", wrapped)
		}
		logger.Fatalf("application error: %v", err)
	}
}
