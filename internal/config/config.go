package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"guardfs/internal/logging"
	"guardfs/internal/policy"
	"guardfs/internal/ratelimit"
)

const APP_NAME = "guardfs" // application name used for config directory

// Version is the server version reported to clients.
const Version = "0.1.0"

// Config holds the full guardfs configuration: the access policy plus the
// server settings around it.
type Config struct {
	// AccessPolicy is the declarative rule set every operation is checked
	// against.
	AccessPolicy policy.Policy `yaml:"access_policy"`

	// Server holds name, version and admission settings.
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds the settings of the tool server itself.
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// RateLimit selects the admission gate: one of the preset names
	// (permissive, moderate, strict) or a numeric requests-per-second
	// value. Empty means moderate.
	RateLimit string `yaml:"rate_limit"`

	// CreateDirs makes file writes create missing parent directories.
	CreateDirs bool `yaml:"create_dirs"`
}

// DefaultServerConfig returns the server settings used when the config
// file does not specify them.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Name:      APP_NAME,
		Version:   Version,
		RateLimit: "moderate",
	}
}

// Gate builds the admission gate selected by RateLimit.
func (s ServerConfig) Gate() (*ratelimit.Gate, error) {
	switch strings.ToLower(strings.TrimSpace(s.RateLimit)) {
	case "", "moderate":
		return ratelimit.Moderate(), nil
	case "permissive":
		return ratelimit.Permissive(), nil
	case "strict":
		return ratelimit.Strict(), nil
	default:
		rps, err := strconv.Atoi(strings.TrimSpace(s.RateLimit))
		if err != nil || rps < 1 {
			return nil, fmt.Errorf("invalid rate limit %q: want permissive, moderate, strict or a positive number", s.RateLimit)
		}
		return ratelimit.New(rps), nil
	}
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config paths", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location. A missing file yields
// the default configuration rather than an error, so the server can start
// without any setup.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		cfg := Default()
		return &cfg, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.Server.Name == "" {
		cfg.Server.Name = APP_NAME
	}
	if cfg.Server.Version == "" {
		cfg.Server.Version = Version
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// Default returns the configuration used when no file exists: default
// policy, moderate rate limit, parent-directory creation off.
func Default() Config {
	return Config{
		AccessPolicy: policy.Default(),
		Server:       DefaultServerConfig(),
	}
}

// Restricted returns a configuration confined to a single directory.
func Restricted(dir string) Config {
	return Config{
		AccessPolicy: policy.Restricted(dir),
		Server:       DefaultServerConfig(),
	}
}

// ReadOnly returns a Restricted configuration with writes disabled.
func ReadOnly(dir string) Config {
	return Config{
		AccessPolicy: policy.ReadOnly(dir),
		Server:       DefaultServerConfig(),
	}
}

// Permissive returns a configuration that allows everything.
func Permissive() Config {
	return Config{
		AccessPolicy: policy.Permissive(),
		Server:       DefaultServerConfig(),
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, err := ConfigPath()
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
