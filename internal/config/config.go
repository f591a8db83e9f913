package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file or individual fields are absent.
const (
	DefaultBaseURL    = "https://metergeist.com"
	DefaultDatabase   = "link_audit.db"
	DefaultSummary    = "link_summary.md"
	DefaultTimeout    = 15 * time.Second
	DefaultCheckDelay = 300 * time.Millisecond
)

// DefaultSkipFiles are site files that are tooling rather than published
// content.
var DefaultSkipFiles = []string{"dashboard.html", "film-audit.html"}

// Duration decodes YAML values like "15s" or "300ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the audit settings, normally loaded from linkaudit.yaml at
// the site root.
type Config struct {
	BaseURL    string   `yaml:"base_url"`
	Database   string   `yaml:"database"`
	Summary    string   `yaml:"summary"`
	SkipFiles  []string `yaml:"skip_files"`
	UserAgent  string   `yaml:"user_agent"`
	Timeout    Duration `yaml:"timeout"`
	CheckDelay Duration `yaml:"check_delay"`
}

// Load reads the YAML config at path and applies environment overrides and
// defaults. A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

// applyEnv lets the environment override the file. Values are read after
// the CLI has loaded any .env file.
func (c *Config) applyEnv() {
	if v := os.Getenv("LINKAUDIT_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("LINKAUDIT_DATABASE"); v != "" {
		c.Database = v
	}
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
	if c.Summary == "" {
		c.Summary = DefaultSummary
	}
	if c.SkipFiles == nil {
		c.SkipFiles = append([]string(nil), DefaultSkipFiles...)
	}
	if c.UserAgent == "" {
		c.UserAgent = fmt.Sprintf("linkaudit/1.0 (+%s)", c.BaseURL)
	}
	if c.Timeout <= 0 {
		c.Timeout = Duration(DefaultTimeout)
	}
	if c.CheckDelay <= 0 {
		c.CheckDelay = Duration(DefaultCheckDelay)
	}
}

// DatabasePath resolves the database location against the site root.
func (c *Config) DatabasePath(root string) string {
	return resolvePath(root, c.Database)
}

// SummaryPath resolves the summary location against the site root.
func (c *Config) SummaryPath(root string) string {
	return resolvePath(root, c.Summary)
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
