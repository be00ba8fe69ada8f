// Package config loads the portal's site configuration from YAML with
// environment overrides for deploy-specific values like API keys.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-gameportal/pkg/fetch"
)

// Config is the root site configuration.
type Config struct {
	Site      Site      `yaml:"site"`
	Identity  Identity  `yaml:"identity"`
	Stats     Stats     `yaml:"stats"`
	Downloads Downloads `yaml:"downloads"`
	Theme     Theme     `yaml:"theme"`
	Fetch     Fetch     `yaml:"fetch"`
	Session   Session   `yaml:"session"`
}

// Site names the portal and the contract document that defines its forms.
type Site struct {
	Name     string `yaml:"name"`
	Contract string `yaml:"contract"`
}

// Identity points at the account backend.
type Identity struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Stats configures the players-online poller.
type Stats struct {
	URL      string   `yaml:"url"`
	Interval Duration `yaml:"interval"`
}

// Downloads configures client release resolution.
type Downloads struct {
	ManifestURL string `yaml:"manifest_url"`
	Dir         string `yaml:"dir"`
}

// Theme selects the visual theme and variant.
type Theme struct {
	Manifest string `yaml:"manifest"`
	Name     string `yaml:"name"`
	Variant  string `yaml:"variant"`
}

// Fetch overrides the network retry policy.
type Fetch struct {
	MaxAttempts       int      `yaml:"max_attempts"`
	BaseDelay         Duration `yaml:"base_delay"`
	PerAttemptTimeout Duration `yaml:"per_attempt_timeout"`
}

// Session configures local session persistence.
type Session struct {
	Path string `yaml:"path"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Site: Site{Name: "Game Portal"},
		Stats: Stats{
			Interval: Duration(60 * time.Second),
		},
		Downloads: Downloads{
			Dir: defaultDownloadDir(),
		},
		Session: Session{
			Path: defaultSessionPath(),
		},
	}
}

// Load reads a YAML file, layers it over Default, and applies environment
// overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv returns the default configuration with environment overrides only.
func FromEnv() (Config, error) {
	return Load("")
}

// Environment variables recognised by applyEnv.
const (
	EnvIdentityBaseURL = "GAMEPORTAL_IDENTITY_URL"
	EnvIdentityAPIKey  = "GAMEPORTAL_IDENTITY_API_KEY"
	EnvStatsURL        = "GAMEPORTAL_STATS_URL"
	EnvStatsInterval   = "GAMEPORTAL_STATS_INTERVAL"
	EnvManifestURL     = "GAMEPORTAL_DOWNLOAD_MANIFEST_URL"
	EnvSessionPath     = "GAMEPORTAL_SESSION_PATH"
	EnvFetchAttempts   = "GAMEPORTAL_FETCH_MAX_ATTEMPTS"
)

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvIdentityBaseURL); v != "" {
		c.Identity.BaseURL = v
	}
	if v := os.Getenv(EnvIdentityAPIKey); v != "" {
		c.Identity.APIKey = v
	}
	if v := os.Getenv(EnvStatsURL); v != "" {
		c.Stats.URL = v
	}
	if v := os.Getenv(EnvStatsInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.Stats.Interval = Duration(d)
		}
	}
	if v := os.Getenv(EnvManifestURL); v != "" {
		c.Downloads.ManifestURL = v
	}
	if v := os.Getenv(EnvSessionPath); v != "" {
		c.Session.Path = v
	}
	if v := os.Getenv(EnvFetchAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Fetch.MaxAttempts = n
		}
	}
}

// Validate rejects configurations the portal cannot run with.
func (c Config) Validate() error {
	if c.Site.Name == "" {
		return errors.New("config: site name is required")
	}
	for _, entry := range []struct {
		name  string
		value string
	}{
		{"identity.base_url", c.Identity.BaseURL},
		{"stats.url", c.Stats.URL},
		{"downloads.manifest_url", c.Downloads.ManifestURL},
	} {
		if entry.value == "" {
			continue
		}
		if _, err := url.ParseRequestURI(entry.value); err != nil {
			return fmt.Errorf("config: %s: %w", entry.name, err)
		}
	}
	if c.Stats.Interval < 0 {
		return errors.New("config: stats.interval must not be negative")
	}
	return nil
}

// FetchPolicy converts the fetch overrides into a retry policy. Each unset
// field keeps its client default, so a config that only raises the attempt
// count still gets the default backoff and per-attempt timeout.
func (c Config) FetchPolicy() fetch.Policy {
	policy := fetch.DefaultPolicy
	if c.Fetch.MaxAttempts > 0 {
		policy.MaxAttempts = c.Fetch.MaxAttempts
	}
	if c.Fetch.BaseDelay > 0 {
		policy.BaseDelay = c.Fetch.BaseDelay.Std()
	}
	if c.Fetch.PerAttemptTimeout > 0 {
		policy.PerAttemptTimeout = c.Fetch.PerAttemptTimeout.Std()
	}
	return policy
}

func defaultSessionPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "gameportal", "session.db")
}

func defaultDownloadDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Downloads")
}
