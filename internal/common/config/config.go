package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAURURL     = "https://aur.archlinux.org"
	DefaultPacmanPath = "pacman"
	DefaultMaxRetries = 2
)

// EnvAURURL overrides aur.url from the environment
const EnvAURURL = "QMAUR_AUR_URL"

var (
	ErrInvalidMaxRetries = errors.New("aur.max_retries must not be negative")
	ErrInvalidColor      = errors.New("color must be one of auto, always, never")
)

// Config represents the application configuration
type Config struct {
	AUR    AURConfig    `yaml:"aur" toml:"aur"`
	Pacman PacmanConfig `yaml:"pacman" toml:"pacman"`
	Ignore []string     `yaml:"ignore,omitempty" toml:"ignore,omitempty"`
	Color  string       `yaml:"color,omitempty" toml:"color,omitempty"`
}

// AURConfig holds settings for the AUR RPC client
type AURConfig struct {
	URL        string `yaml:"url" toml:"url"`
	MaxRetries int    `yaml:"max_retries" toml:"max_retries"`
	UserAgent  string `yaml:"user_agent,omitempty" toml:"user_agent,omitempty"`
}

// PacmanConfig holds settings for the local package manager
type PacmanConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		AUR: AURConfig{
			URL:        DefaultAURURL,
			MaxRetries: DefaultMaxRetries,
		},
		Pacman: PacmanConfig{
			Path: DefaultPacmanPath,
		},
		Color: "auto",
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/qmaur/config.yaml (XDG standard - priority)
// 2. ~/.config/qmaur/config.toml
// 3. ~/.qmaur/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "qmaur", "config.yaml"),
		filepath.Join(xdgConfig, "qmaur", "config.toml"),
		filepath.Join(home, ".qmaur", "config.yaml"),
	}, nil
}

// FindConfigPath returns the first existing config file path,
// or an empty string when none exists
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// Load reads configuration from the first available config file.
// Missing files are not an error: defaults are returned.
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path.
// The format is TOML when the path ends in .toml, YAML otherwise.
// Unlike Load, a missing file is an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	cfg.fillDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// fillDefaults restores defaults for keys present but left empty
func (c *Config) fillDefaults() {
	if c.AUR.URL == "" {
		c.AUR.URL = DefaultAURURL
	}
	if c.Pacman.Path == "" {
		c.Pacman.Path = DefaultPacmanPath
	}
	if c.Color == "" {
		c.Color = "auto"
	}
}

func (c *Config) applyEnv() {
	if url := os.Getenv(EnvAURURL); url != "" {
		c.AUR.URL = url
	}
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.AUR.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	switch strings.ToLower(c.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidColor, c.Color)
	}
	return nil
}

// IgnoreSet returns the ignore list as a lookup set
func (c *Config) IgnoreSet(extra ...string) map[string]bool {
	set := make(map[string]bool, len(c.Ignore)+len(extra))
	for _, name := range c.Ignore {
		set[name] = true
	}
	for _, name := range extra {
		set[name] = true
	}
	return set
}
