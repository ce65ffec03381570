// Package config stores the chat-completion provider settings used by the
// AI-assisted commands and merges them with the other settings sources.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes the environment overrides, e.g. YEGA_PROVIDER.
const EnvPrefix = "YEGA_"

// Config holds the CLI configuration values.
type Config struct {
	Provider string `yaml:"provider,omitempty"`
	APIKey   string `yaml:"api-key,omitempty"`
	Model    string `yaml:"model,omitempty"`
	BaseURL  string `yaml:"base-url,omitempty"`
}

// ValidKeys lists the allowed config keys in display order.
var ValidKeys = []string{"provider", "api-key", "model", "base-url"}

// Store is a config file on a filesystem.
type Store struct {
	Fs   afero.Fs
	Path string
}

// DefaultStore returns the store at ~/.config/yega/config.yaml.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("finding home directory: %w", err)
	}
	return &Store{
		Fs:   afero.NewOsFs(),
		Path: filepath.Join(home, ".config", "yega", "config.yaml"),
	}, nil
}

// Load reads the config file. A missing file yields an empty Config.
func (s *Store) Load() (*Config, error) {
	data, err := afero.ReadFile(s.Fs, s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes cfg, creating the directory when needed. The file holds an
// API key, so it is only readable by its owner.
func (s *Store) Save(cfg *Config) error {
	if err := s.Fs.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return afero.WriteFile(s.Fs, s.Path, data, 0o600)
}

// Set updates a single key in the config.
func (s *Store) Set(key, value string) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	field, err := cfg.field(key)
	if err != nil {
		return err
	}
	*field = value
	return s.Save(cfg)
}

func (c *Config) field(key string) (*string, error) {
	switch key {
	case "provider":
		return &c.Provider, nil
	case "api-key":
		return &c.APIKey, nil
	case "model":
		return &c.Model, nil
	case "base-url":
		return &c.BaseURL, nil
	}
	return nil, fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys, ", "))
}

// List returns key-value pairs for display, masking the API key.
func (s *Store) List() (map[string]string, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"provider": cfg.Provider,
		"api-key":  maskKey(cfg.APIKey),
		"model":    cfg.Model,
		"base-url": cfg.BaseURL,
	}, nil
}

// Reset removes the config file.
func (s *Store) Reset() error {
	if err := s.Fs.Remove(s.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing config: %w", err)
	}
	return nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}

// Resolved holds the final provider settings after merging all sources.
type Resolved struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// providerKeyEnv names the conventional API key variable per provider.
var providerKeyEnv = map[string]string{
	"anthropic": "ANTHROPIC_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"blackbox":  "BLACKBOX_API_KEY",
}

// Resolve merges provider settings in priority order:
// flags > brief frontmatter > YEGA_ env vars > config file.
// Either of flags and brief may be nil.
func (s *Store) Resolve(flags, brief *Config) (*Resolved, error) {
	cfg, err := s.Load()
	if err != nil {
		return nil, err
	}

	env := &Config{
		Provider: os.Getenv(EnvPrefix + "PROVIDER"),
		APIKey:   os.Getenv(EnvPrefix + "API_KEY"),
		Model:    os.Getenv(EnvPrefix + "MODEL"),
		BaseURL:  os.Getenv(EnvPrefix + "BASE_URL"),
	}
	for _, layer := range []*Config{env, brief, flags} {
		cfg.overlay(layer)
	}

	r := &Resolved{
		Provider: strings.ToLower(cfg.Provider),
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	}
	if r.APIKey == "" {
		if name, ok := providerKeyEnv[r.Provider]; ok {
			r.APIKey = os.Getenv(name)
		}
	}
	return r, nil
}

// overlay copies the non-empty values of o onto c.
func (c *Config) overlay(o *Config) {
	if o == nil {
		return
	}
	for _, key := range ValidKeys {
		src, _ := o.field(key)
		if *src != "" {
			dst, _ := c.field(key)
			*dst = *src
		}
	}
}
