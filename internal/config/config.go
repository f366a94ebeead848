package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML decoding of strings like "15m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the full lolopal configuration.
type Config struct {
	DataDir      string `yaml:"data_dir"`
	RepoDir      string `yaml:"repo_dir"`
	SnapshotFile string `yaml:"snapshot_file"`
	LogFile      string `yaml:"log_file"`

	Producer  ProducerConfig  `yaml:"producer"`
	Git       GitConfig       `yaml:"git"`
	Probe     ProbeConfig     `yaml:"probe"`
	Lease     LeaseConfig     `yaml:"lease"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}

// ProducerConfig configures the external scraper invocation.
type ProducerConfig struct {
	Command []string `yaml:"command"`
	Timeout Duration `yaml:"timeout"`
}

// GitConfig configures the change reconciler.
type GitConfig struct {
	AuthorName    string   `yaml:"author_name"`
	AuthorEmail   string   `yaml:"author_email"`
	Remote        string   `yaml:"remote"`
	MessagePrefix string   `yaml:"message_prefix"`
	Paths         []string `yaml:"paths"`
	Token         string   `yaml:"-"` // env only, never persisted
}

// ProbeConfig configures the scrape-target preflight check.
type ProbeConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// LeaseConfig configures run-level mutual exclusion.
type LeaseConfig struct {
	TTL Duration `yaml:"ttl"`
}

// ArtifactsConfig configures failure diagnostics retention.
type ArtifactsConfig struct {
	Retention Duration `yaml:"retention"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:      "~/.local/share/lolopal",
		RepoDir:      ".",
		SnapshotFile: "today_matches.json",
		LogFile:      "scrape_log.txt",
		Producer: ProducerConfig{
			Command: []string{"python3", "lolopal.py"},
			Timeout: Duration(15 * time.Minute),
		},
		Git: GitConfig{
			AuthorName:    "github-actions[bot]",
			AuthorEmail:   "41898282+github-actions[bot]@users.noreply.github.com",
			Remote:        "origin",
			MessagePrefix: "🔄 Update matches data",
			Paths:         []string{"today_matches.json"},
		},
		Probe: ProbeConfig{
			URL:     "https://www.windrawwin.com/predictions/today/",
			Timeout: Duration(30 * time.Second),
		},
		Lease: LeaseConfig{
			TTL: Duration(30 * time.Minute),
		},
		Artifacts: ArtifactsConfig{
			Retention: Duration(7 * 24 * time.Hour),
		},
	}
}

// Load reads the config file at path, merged over defaults. An empty path or
// a missing file yields the defaults. The git token is taken from the
// environment in all cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.Git.Token = tokenFromEnv()

	expanded, err := expandHome(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	cfg.DataDir = expanded

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func tokenFromEnv() string {
	if tok := os.Getenv("LOLOPAL_GIT_TOKEN"); tok != "" {
		return tok
	}
	return os.Getenv("GITHUB_TOKEN")
}

// expandHome expands a leading ~/ to the user's home directory.
func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

func (c *Config) validate() error {
	if len(c.Producer.Command) == 0 {
		return fmt.Errorf("producer.command must not be empty")
	}
	if c.SnapshotFile == "" {
		return fmt.Errorf("snapshot_file must not be empty")
	}
	if len(c.Git.Paths) == 0 {
		return fmt.Errorf("git.paths must name at least one data artifact")
	}
	for _, p := range c.Git.Paths {
		if filepath.IsAbs(p) {
			return fmt.Errorf("git.paths entries must be repo-relative: %s", p)
		}
	}
	return nil
}

// SnapshotPath returns the snapshot file path inside the repository.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.RepoDir, c.SnapshotFile)
}

// LogPath returns the run log path inside the repository.
func (c *Config) LogPath() string {
	return filepath.Join(c.RepoDir, c.LogFile)
}

// ArtifactsDir returns the directory for failure diagnostic bundles.
func (c *Config) ArtifactsDir() string {
	return filepath.Join(c.DataDir, "artifacts")
}

// LeaseDir returns the directory for run leases.
func (c *Config) LeaseDir() string {
	return filepath.Join(c.DataDir, "leases")
}

// HistoryPath returns the run ledger database path.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}
