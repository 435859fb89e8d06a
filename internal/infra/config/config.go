// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Playlist    PlaylistConfig    `yaml:"playlist"`
	AutoAdvance AutoAdvanceConfig `yaml:"autoadvance"`
	Player      PlayerConfig      `yaml:"player"`
	Log         LogConfig         `yaml:"log"`
}

// PlaylistConfig represents playlist-related configuration.
type PlaylistConfig struct {
	File       string `yaml:"file" validate:"required"`
	Repeat     bool   `yaml:"repeat"`
	Shuffle    bool   `yaml:"shuffle"`
	StartIndex int    `yaml:"start_index" validate:"gte=0"`
}

// AutoAdvanceConfig represents auto-advance configuration.
type AutoAdvanceConfig struct {
	Enabled  bool    `yaml:"enabled" default:"true"`
	DelaySec float64 `yaml:"delay_sec" validate:"gte=0,lte=3600"`
}

// PlayerConfig represents in-memory player configuration.
type PlayerConfig struct {
	PosterMode bool `yaml:"poster_mode"`
	// DefaultDurationSec is used for items without a duration.
	DefaultDurationSec float64 `yaml:"default_duration_sec" default:"5" validate:"gt=0"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn warning error"`
	Output string `yaml:"output" default:"stdout"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from YAML data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() error {
	if v := os.Getenv("PLAYLISTBOX_PLAYLIST_FILE"); v != "" {
		c.Playlist.File = v
	}
	if v := os.Getenv("PLAYLISTBOX_AUTOADVANCE_DELAY"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid PLAYLISTBOX_AUTOADVANCE_DELAY %q", v)
		}
		c.AutoAdvance.Enabled = true
		c.AutoAdvance.DelaySec = d
	}
	if v := os.Getenv("PLAYLISTBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}
