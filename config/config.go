// Package config loads the skill-search configuration file.
//
// The file lives at ~/.skill-search/config.yaml unless another path is given.
// Every field is optional; values that are not set keep their defaults:
//
//	log_level: warn
//	max_depth: 3
//	exclude:
//	  - "**/node_modules/**"
//	remote:
//	  url: https://skills.sh/api/search
//	  limit: 10
//	  timeout: 10s
//	agents: []
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/deepnoodle-ai/skillsearch/log"
	"github.com/deepnoodle-ai/skillsearch/remote"
	"github.com/deepnoodle-ai/skillsearch/skill"
	"github.com/gobwas/glob"
	"github.com/goccy/go-yaml"
)

const (
	// DirName is the configuration directory under the user's home.
	DirName = ".skill-search"

	// FileName is the configuration file inside DirName.
	FileName = "config.yaml"

	// MaxRemoteLimit caps the number of remote results requested.
	MaxRemoteLimit = 100
)

// Config holds user settings.
type Config struct {
	// LogLevel is one of debug, info, warn, error or none.
	LogLevel string `yaml:"log_level,omitempty" json:"log_level,omitempty"`

	// MaxDepth bounds how deep below a skills directory SKILL.md files are
	// searched for.
	MaxDepth int `yaml:"max_depth,omitempty" json:"max_depth,omitempty"`

	// Exclude holds doublestar patterns for paths that are never scanned,
	// relative to each skills directory.
	Exclude []string `yaml:"exclude" json:"exclude"`

	Remote Remote `yaml:"remote" json:"remote"`

	// Agents optionally restricts scanning to the agents matching these glob
	// patterns. Empty means every known agent.
	Agents []string `yaml:"agents,omitempty" json:"agents,omitempty"`
}

// Remote configures the skills.sh client.
type Remote struct {
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
	Limit   int    `yaml:"limit,omitempty" json:"limit,omitempty"`
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "warn",
		MaxDepth: skill.DefaultMaxDepth,
		Exclude:  []string{"**/node_modules/**"},
		Remote: Remote{
			URL:     remote.DefaultURL,
			Limit:   remote.DefaultLimit,
			Timeout: remote.DefaultTimeout.String(),
		},
	}
}

// DefaultPath returns ~/.skill-search/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DirName, FileName), nil
}

// Load reads the file at path over the defaults and validates the result.
// An empty path means DefaultPath, which is allowed not to exist. An explicit
// path that does not exist is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	parsed, err := ParseFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	config := Merge(Default(), parsed)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks every field and returns all problems joined together.
func (c *Config) Validate() error {
	var errs []error
	if c.LogLevel != "" && !log.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("invalid log_level %q", c.LogLevel))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	for _, p := range c.Exclude {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("invalid exclude pattern %q", p))
		}
	}
	for _, p := range c.Agents {
		if _, err := glob.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("invalid agent pattern %q: %w", p, err))
		}
	}
	if c.Remote.URL != "" {
		u, err := url.Parse(c.Remote.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("remote.url must be an absolute http(s) URL, got %q", c.Remote.URL))
		}
	}
	if c.Remote.Limit < 0 || c.Remote.Limit > MaxRemoteLimit {
		errs = append(errs, fmt.Errorf("remote.limit must be between 0 and %d, got %d", MaxRemoteLimit, c.Remote.Limit))
	}
	if c.Remote.Timeout != "" {
		if d, err := time.ParseDuration(c.Remote.Timeout); err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("remote.timeout must be a positive duration, got %q", c.Remote.Timeout))
		}
	}
	return errors.Join(errs...)
}

// RemoteTimeout returns the parsed remote timeout, or remote.DefaultTimeout
// when it is unset or invalid.
func (c *Config) RemoteTimeout() time.Duration {
	d, err := time.ParseDuration(c.Remote.Timeout)
	if err != nil || d <= 0 {
		return remote.DefaultTimeout
	}
	return d
}

// Save writes the config to path. The extension selects the format: .json
// for JSON, .yml or .yaml for YAML.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	case ".yml", ".yaml":
		data, err = yaml.Marshal(c)
	default:
		return fmt.Errorf("unsupported file extension: %s", ext)
	}
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Write encodes the config to w as YAML.
func (c *Config) Write(w io.Writer) error {
	return yaml.NewEncoder(w).Encode(c)
}
