package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API         APIConfig         `toml:"api"`
	Credentials CredentialsConfig `toml:"credentials"`
	Session     SessionConfig     `toml:"session"`
	Cache       CacheConfig       `toml:"cache"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
}

// APIConfig contains settings for the statistics proxy service.
type APIConfig struct {
	BaseURL   string  `toml:"base_url"`
	RateLimit float64 `toml:"rate_limit"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains credentials for direct Spotify authorization.
//
// Only required when bypassing the proxy's /login endpoint.
type SpotifyConfig struct {
	ClientID    string `toml:"client_id"`
	RedirectURI string `toml:"redirect_uri"`
}

// SessionConfig contains credential slot settings.
type SessionConfig struct {
	Path       string `toml:"path"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// CacheConfig contains query cache settings.
type CacheConfig struct {
	TTLMinutes int `toml:"ttl_minutes"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains callback server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Environment variables (optionally loaded from a .env file via [LoadEnv]) override file values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads environment variables from a .env file if one exists.
//
// Missing files are not an error; variables already set in the environment win.
func LoadEnv() {
	_ = godotenv.Load()
}

// applyEnv overrides config fields from TEMPO_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("TEMPO_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv("TEMPO_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("TEMPO_SESSION_PATH"); v != "" {
		c.Session.Path = v
	}
	if v := os.Getenv("TEMPO_CACHE_TTL_MINUTES"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLMinutes = ttl
		}
	}
}

// Validate checks that required configuration is present.
//
// A missing API base address is fatal at startup rather than degrading silently.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: set api.base_url in config.toml or TEMPO_API_BASE_URL", ErrMissingBaseURL)
	}
	return nil
}

// LoginURL returns the proxy endpoint that initiates the login redirect flow.
func (c *Config) LoginURL() string {
	return c.API.BaseURL + "/login"
}
