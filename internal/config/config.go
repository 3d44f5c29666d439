package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines configuration for the dezoomify CLI.
type Config struct {
	URL          string        `yaml:"url"`
	Output       string        `yaml:"output"`
	Base         bool          `yaml:"base"`
	List         bool          `yaml:"list"`
	ZoomLevel    int           `yaml:"zoom_level"` // -1 selects the finest level
	Workers      int           `yaml:"workers"`
	PersistTiles bool          `yaml:"persist_tiles"`
	SkipDownload bool          `yaml:"skip_download"`
	Jpegtran     string        `yaml:"jpegtran"`
	Progress     bool          `yaml:"progress"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		ZoomLevel: -1,
		Workers:   16,
	}
}

// yamlConfig is used for YAML unmarshaling: zoom_level needs an "unset"
// state distinct from level 0, and timeout is a duration string.
type yamlConfig struct {
	URL          string `yaml:"url"`
	Output       string `yaml:"output"`
	Base         bool   `yaml:"base"`
	List         bool   `yaml:"list"`
	ZoomLevel    *int   `yaml:"zoom_level"`
	Workers      int    `yaml:"workers"`
	PersistTiles bool   `yaml:"persist_tiles"`
	SkipDownload bool   `yaml:"skip_download"`
	Jpegtran     string `yaml:"jpegtran"`
	Progress     bool   `yaml:"progress"`
	Timeout      string `yaml:"timeout"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.Output != "" {
		cfg.Output = yc.Output
	}
	cfg.Base = yc.Base
	cfg.List = yc.List
	if yc.ZoomLevel != nil {
		cfg.ZoomLevel = *yc.ZoomLevel
	}
	if yc.Workers != 0 {
		cfg.Workers = yc.Workers
	}
	cfg.PersistTiles = yc.PersistTiles
	cfg.SkipDownload = yc.SkipDownload
	if yc.Jpegtran != "" {
		cfg.Jpegtran = yc.Jpegtran
	}
	cfg.Progress = yc.Progress
	if yc.Timeout != "" {
		d, err := time.ParseDuration(yc.Timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout: %w", err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the DEZOOM_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("DEZOOM_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("DEZOOM_OUTPUT"); v != "" {
		c.Output = v
	}
	if v := os.Getenv("DEZOOM_ZOOM_LEVEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse DEZOOM_ZOOM_LEVEL: %w", err)
		}
		c.ZoomLevel = n
	}
	if v := os.Getenv("DEZOOM_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse DEZOOM_WORKERS: %w", err)
		}
		c.Workers = n
	}
	if v := os.Getenv("DEZOOM_PERSIST_TILES"); v != "" {
		c.PersistTiles = v == "true" || v == "1"
	}
	if v := os.Getenv("DEZOOM_JPEGTRAN"); v != "" {
		c.Jpegtran = v
	}
	if v := os.Getenv("DEZOOM_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("DEZOOM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse DEZOOM_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: URL is required")
	}
	if c.Output == "" {
		return errors.New("config: output is required")
	}
	if c.Workers <= 0 {
		return errors.New("config: workers must be positive")
	}
	if c.ZoomLevel < -1 {
		return errors.New("config: zoom_level must be -1 (finest) or non-negative")
	}
	return nil
}

// Merge merges override values into c, returning a new Config. Zero values
// in override are ignored; a ZoomLevel of -1 means "keep".
func (c Config) Merge(override Config) Config {
	if override.URL != "" {
		c.URL = override.URL
	}
	if override.Output != "" {
		c.Output = override.Output
	}
	if override.Base {
		c.Base = override.Base
	}
	if override.List {
		c.List = override.List
	}
	if override.ZoomLevel >= 0 {
		c.ZoomLevel = override.ZoomLevel
	}
	if override.Workers != 0 {
		c.Workers = override.Workers
	}
	if override.PersistTiles {
		c.PersistTiles = override.PersistTiles
	}
	if override.SkipDownload {
		c.SkipDownload = override.SkipDownload
	}
	if override.Jpegtran != "" {
		c.Jpegtran = override.Jpegtran
	}
	if override.Progress {
		c.Progress = override.Progress
	}
	if override.Timeout != 0 {
		c.Timeout = override.Timeout
	}
	return c
}
