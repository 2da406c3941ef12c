package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables consulted by LoadEnv.
const (
	EnvUser     = "DELGISTS_USER"
	EnvToken    = "DELGISTS_TOKEN"
	EnvAPIRoot  = "DELGISTS_API_ROOT"
	EnvPageSize = "DELGISTS_PAGE_SIZE"
)

// Config holds application configuration.
type Config struct {
	// APIRoot is the base URL of the gists REST API
	APIRoot string `json:"api_root,omitempty"`

	// PageSize is the number of gists shown per page
	PageSize int `json:"page_size,omitempty"`

	// User and Token are the Basic auth credentials. Token may be a password
	// or a personal access token with the gist scope.
	User  string `json:"user,omitempty"`
	Token string `json:"token,omitempty"`

	// TimeoutSeconds bounds a single HTTP exchange.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string `json:"log_level,omitempty"`

	// DisableJournal turns off the local record of deleted gists.
	DisableJournal bool `json:"disable_journal,omitempty"`
}

// Credentials is a username/secret pair for Basic authentication.
type Credentials struct {
	User   string
	Secret string
}

// Valid reports whether both halves of the pair are present.
func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.User) != "" && c.Secret != ""
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		APIRoot:        "https://api.github.com",
		PageSize:       20,
		TimeoutSeconds: 30,
		LogLevel:       "warn",
	}
}

// Credentials returns the configured credential pair.
func (c *Config) Credentials() Credentials {
	return Credentials{User: c.User, Secret: c.Token}
}

// Timeout returns TimeoutSeconds as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.delgists.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// Resolve loads the config file and applies environment overrides on top.
func Resolve(baseDir string) (*Config, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return nil, err
	}
	env, err := LoadEnv(baseDir)
	if err != nil {
		return nil, err
	}
	return Merge(cfg, env), nil
}

// LoadEnv builds a config from environment variables.
// Values from baseDir/.env are used when the process environment does not set them.
func LoadEnv(baseDir string) (*Config, error) {
	dotenv, err := godotenv.Read(filepath.Join(baseDir, ".env"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
		dotenv = map[string]string{}
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(dotenv[key])
	}

	cfg := &Config{
		User:    lookup(EnvUser),
		Token:   lookup(EnvToken),
		APIRoot: lookup(EnvAPIRoot),
	}
	if raw := lookup(EnvPageSize); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return nil, fmt.Errorf("%s must be a positive integer, got %q", EnvPageSize, raw)
		}
		cfg.PageSize = size
	}

	return cfg, nil
}

// Save writes cfg to baseDir/config.json with owner-only permissions.
func Save(baseDir string, cfg *Config) error {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	configPath := filepath.Join(baseDir, "config.json")
	if err := os.WriteFile(configPath, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	_ = os.Chmod(configPath, 0600)

	return nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence when non-zero.
func Merge(base, overlay *Config) *Config {
	result := *base

	if overlay.APIRoot != "" {
		result.APIRoot = strings.TrimRight(overlay.APIRoot, "/")
	}
	if overlay.PageSize != 0 {
		result.PageSize = overlay.PageSize
	}
	if overlay.User != "" {
		result.User = overlay.User
	}
	if overlay.Token != "" {
		result.Token = overlay.Token
	}
	if overlay.TimeoutSeconds != 0 {
		result.TimeoutSeconds = overlay.TimeoutSeconds
	}
	if overlay.LogLevel != "" {
		result.LogLevel = overlay.LogLevel
	}

	// Booleans: overlay wins if true, else base
	result.DisableJournal = base.DisableJournal || overlay.DisableJournal

	return &result
}
