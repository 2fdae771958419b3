package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"dirdigest/internal/filter"
	"dirdigest/internal/hash"
	"dirdigest/internal/walker"
)

type Config struct {
	// Glob selects candidate files beneath a scanned directory.
	Glob string `yaml:"glob" toml:"glob"`
	// Rules are signed regexes ("+re" / "-re"); the last match wins.
	Rules      []string `yaml:"rules" toml:"rules"`
	Algorithm  string   `yaml:"algorithm" toml:"algorithm"`
	Workers    int      `yaml:"workers" toml:"workers"`
	OutputFile string   `yaml:"output_file" toml:"output_file"`
	LogLevel   string   `yaml:"log_level" toml:"log_level"`
}

func baseConfig() *Config {
	return &Config{
		Glob:      walker.DefaultGlob,
		Algorithm: hash.SHA256.Name,
		Workers:   1,
		LogLevel:  "info",
	}
}

func DefaultConfig() *Config {
	cfg := baseConfig()
	cfg.Rules = []string{
		`-/\.git/`,
		`-/\.svn/`,
		`-/\.hg/`,
		`-\.swp$`,
		`-/\.DS_Store$`,
		`-/Thumbs\.db$`,
	}
	return cfg
}

// LoadConfig reads a YAML config, or TOML when the name ends in .toml.
// A missing file yields DefaultConfig. Fields absent from the file keep
// their defaults, except rules which are empty unless listed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := baseConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	// Initialize Rules slice if nil (for empty configs)
	if cfg.Rules == nil {
		cfg.Rules = []string{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if !doublestar.ValidatePattern(c.Glob) {
		return fmt.Errorf("invalid glob %q", c.Glob)
	}
	if _, err := filter.Compile(c.Rules); err != nil {
		return err
	}
	if _, err := hash.Lookup(c.Algorithm); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return nil
}
