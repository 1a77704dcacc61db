// Package config holds the immutable run configuration. It is assembled once
// at startup from the YAML config file and command-line flags, then passed
// into each component; nothing in the core reads ambient state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxBatchSize    = 20
	DefaultMaxConcurrent   = 4
	DefaultFetchTimeoutSec = 300
	DefaultLogLevel        = "info"
)

// Repository describes one mirrored repository.
type Repository struct {
	Name string `yaml:"name"`
	// Path is the artifact directory; defaults to <root_dir>/<name>.
	Path string `yaml:"path,omitempty"`
	// Upstream is the repository id handed to the retrieval tool; defaults
	// to Name.
	Upstream string `yaml:"upstream,omitempty"`
}

// Config is the full run configuration.
type Config struct {
	RootDir      string       `yaml:"root_dir"`
	Repositories []Repository `yaml:"repositories"`

	// ManualRepos lists operator-curated repositories that must never be
	// downloaded into.
	ManualRepos []string `yaml:"manual_repos,omitempty"`

	MaxBatchSize    int `yaml:"max_batch_size"`
	MaxConcurrent   int `yaml:"max_concurrent"`
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`

	Force              bool `yaml:"force,omitempty"`
	DryRun             bool `yaml:"dry_run,omitempty"`
	FullMetadataUpdate bool `yaml:"full_metadata_update,omitempty"`
	DeepScan           bool `yaml:"deep_scan,omitempty"`

	LogLevel string `yaml:"log_level,omitempty"`
}

// SetDefaults fills in zero-valued tunables.
func (c *Config) SetDefaults() {
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = DefaultMaxBatchSize
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.FetchTimeoutSec <= 0 {
		c.FetchTimeoutSec = DefaultFetchTimeoutSec
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// Validate checks the configuration after defaulting.
func (c *Config) Validate() error {
	if c.RootDir == "" {
		return fmt.Errorf("root_dir is required")
	}
	if len(c.Repositories) == 0 {
		return fmt.Errorf("at least one repository is required")
	}
	seen := make(map[string]bool)
	for _, r := range c.Repositories {
		if r.Name == "" {
			return fmt.Errorf("repository with empty name")
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate repository %q", r.Name)
		}
		seen[r.Name] = true
	}
	for _, m := range c.ManualRepos {
		if !seen[m] {
			return fmt.Errorf("manual repository %q is not a configured repository", m)
		}
	}
	return nil
}

// Load reads, defaults and validates the YAML config at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// RepoPath returns the artifact directory for a repository.
func (c *Config) RepoPath(r Repository) string {
	if r.Path != "" {
		return r.Path
	}
	return filepath.Join(c.RootDir, r.Name)
}

// UpstreamID returns the id passed to the retrieval tool for a repository.
func (c *Config) UpstreamID(r Repository) string {
	if r.Upstream != "" {
		return r.Upstream
	}
	return r.Name
}

// FetchTimeout returns the per-call retrieval deadline.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// ManualSet returns manual repository names as a set for membership tests
// during classification.
func (c *Config) ManualSet() map[string]bool {
	set := make(map[string]bool, len(c.ManualRepos))
	for _, m := range c.ManualRepos {
		set[m] = true
	}
	return set
}
