// Package config loads the TOML application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Scryfall API client configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Decklist drop-directory watcher configuration
	Watcher WatcherConfig `toml:"watcher"`
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	Addr            string   `toml:"addr"`             // Listen address, e.g. ":8080"
	ShutdownTimeout string   `toml:"shutdown_timeout"` // Graceful shutdown window (e.g. "10s")
	AllowedOrigins  []string `toml:"allowed_origins"`  // CORS origins; empty allows none
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`           // Path to the SQLite database file
	MaxOpenConns int    `toml:"max_open_conns"` // Connection pool size
	BusyTimeout  string `toml:"busy_timeout"`   // SQLite busy timeout (e.g. "5s")
}

// ScryfallConfig contains card lookup settings.
type ScryfallConfig struct {
	BaseURL     string `toml:"base_url"`      // Override for testing; empty uses the public API
	CacheMaxAge string `toml:"cache_max_age"` // How long cached cards are trusted (e.g. "168h")
}

// WatcherConfig contains decklist drop-directory settings.
type WatcherConfig struct {
	Enabled bool   `toml:"enabled"` // Watch a directory for decklist files
	Dir     string `toml:"dir"`     // Directory to watch
	UserID  int    `toml:"user_id"` // Collection that receives dropped lists
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
			AllowedOrigins:  []string{"http://localhost:5173"},
		},
		Database: DatabaseConfig{
			Path:         "",
			MaxOpenConns: 25,
			BusyTimeout:  "5s",
		},
		Scryfall: ScryfallConfig{
			BaseURL:     "",
			CacheMaxAge: "168h",
		},
		Watcher: WatcherConfig{
			Enabled: false,
			Dir:     "",
			UserID:  0,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".cardbox")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// defaultDatabasePath returns where the database lives when the config
// leaves it unset.
func defaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cardbox", "cardbox.db"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads the configuration from an explicit path, falling back to
// defaults when the file doesn't exist.
func LoadFile(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fillDefaults(config)
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return fillDefaults(config)
}

func fillDefaults(c *Config) (*Config, error) {
	if c.Database.Path == "" {
		path, err := defaultDatabasePath()
		if err != nil {
			return nil, err
		}
		c.Database.Path = path
	}
	return c, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown timeout %q: %w", c.Server.ShutdownTimeout, err)
	}
	if _, err := time.ParseDuration(c.Database.BusyTimeout); err != nil {
		return fmt.Errorf("invalid busy timeout %q: %w", c.Database.BusyTimeout, err)
	}
	if _, err := time.ParseDuration(c.Scryfall.CacheMaxAge); err != nil {
		return fmt.Errorf("invalid cache max age %q: %w", c.Scryfall.CacheMaxAge, err)
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("max open connections must be positive: %d", c.Database.MaxOpenConns)
	}
	if c.Watcher.Enabled {
		if c.Watcher.Dir == "" {
			return fmt.Errorf("watcher enabled but no directory configured")
		}
		if c.Watcher.UserID < 1 {
			return fmt.Errorf("watcher enabled but no user configured")
		}
	}
	return nil
}

// GetShutdownTimeout returns the shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Server.ShutdownTimeout)
}

// GetBusyTimeout returns the database busy timeout as a duration.
func (c *Config) GetBusyTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Database.BusyTimeout)
}

// GetCacheMaxAge returns the card cache staleness window as a duration.
func (c *Config) GetCacheMaxAge() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.CacheMaxAge)
}
