package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that take precedence over values in config.toml.
const (
	EnvNavidromeURL      = "NDX_NAVIDROME_URL"
	EnvNavidromeUser     = "NDX_NAVIDROME_USER"
	EnvNavidromePassword = "NDX_NAVIDROME_PASSWORD"
	EnvNavidromeDB       = "NDX_NAVIDROME_DB"
	EnvITunesXML         = "NDX_ITUNES_XML"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Navidrome NavidromeConfig `toml:"navidrome"`
	Library   LibraryConfig   `toml:"library"`
	Database  DatabaseConfig  `toml:"database"`
	Reports   ReportsConfig   `toml:"reports"`
	Log       LogConfig       `toml:"log"`
}

// NavidromeConfig contains the Subsonic API endpoint and credentials.
type NavidromeConfig struct {
	URL        string  `toml:"url"`
	User       string  `toml:"user"`
	Password   string  `toml:"password"`
	ClientName string  `toml:"client_name"`
	APIVersion string  `toml:"api_version"`
	Timeout    int     `toml:"timeout"`
	SearchRate float64 `toml:"search_rate"`
}

// RequestTimeout returns the configured timeout as a [time.Duration], falling back to 20 seconds.
func (n NavidromeConfig) RequestTimeout() time.Duration {
	if n.Timeout <= 0 {
		return 20 * time.Second
	}
	return time.Duration(n.Timeout) * time.Second
}

// LibraryConfig points at the files used by the iTunes migration.
type LibraryConfig struct {
	NavidromeDB string `toml:"navidrome_db"`
	ITunesXML   string `toml:"itunes_xml"`
}

// DatabaseConfig contains settings for the local ndx database.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ReportsConfig holds default filenames for exported reports.
type ReportsConfig struct {
	MissingTracks string `toml:"missing_tracks"`
	MissingAlbums string `toml:"missing_albums"`
}

// LogConfig holds the logger level name (debug, info, warn, error).
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads variables from the given .env files (or ./.env when none are given)
// and overrides matching config values. A missing .env file is not an error.
func (c *Config) ApplyEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to load env file: %v", ErrInvalidConfig, err)
	}

	overrides := map[string]*string{
		EnvNavidromeURL:      &c.Navidrome.URL,
		EnvNavidromeUser:     &c.Navidrome.User,
		EnvNavidromePassword: &c.Navidrome.Password,
		EnvNavidromeDB:       &c.Library.NavidromeDB,
		EnvITunesXML:         &c.Library.ITunesXML,
	}
	for key, field := range overrides {
		if value := os.Getenv(key); value != "" {
			*field = value
		}
	}
	return nil
}

// Validate reports whether the Navidrome connection settings are usable.
func (c *Config) Validate() error {
	switch {
	case c.Navidrome.URL == "":
		return fmt.Errorf("%w: navidrome.url is empty", ErrMissingConfig)
	case c.Navidrome.User == "":
		return fmt.Errorf("%w: navidrome.user is empty", ErrMissingCredentials)
	case c.Navidrome.Password == "":
		return fmt.Errorf("%w: navidrome.password is empty", ErrMissingCredentials)
	}
	return nil
}
