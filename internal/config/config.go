// Package config loads the optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fmueller/voxbridge/internal/models"
	"github.com/fmueller/voxbridge/internal/transcribe"
)

// Config holds settings that can also be given as flags.
type Config struct {
	Model        string `yaml:"model"`
	ModelDir     string `yaml:"model_dir"`
	Language     string `yaml:"language"`
	AutoDownload bool   `yaml:"auto_download"`
	LogLevel     string `yaml:"log_level"`

	Engine  EngineConfig  `yaml:"engine"`
	Silence SilenceConfig `yaml:"silence"`
}

// EngineConfig tunes model loading and decoding.
type EngineConfig struct {
	Threads int  `yaml:"threads"`
	UseGPU  bool `yaml:"use_gpu"`
}

// SilenceConfig controls the silence gate in front of the engine.
type SilenceConfig struct {
	Gate          bool    `yaml:"gate"`
	ThresholdDBFS float64 `yaml:"threshold_dbfs"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	return &Config{
		Model:        models.DefaultModel,
		Language:     "auto",
		AutoDownload: true,
		LogLevel:     "info",
		Engine: EngineConfig{
			Threads: transcribe.DefaultThreads,
			UseGPU:  false,
		},
		Silence: SilenceConfig{
			Gate:          true,
			ThresholdDBFS: -65,
		},
	}
}

// Load reads path over the defaults. Tilde (~) in model and model_dir is
// expanded to the user's home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.Model = expandTilde(cfg.Model)
	cfg.ModelDir = expandTilde(cfg.ModelDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return errors.New("model must not be empty")
	}

	if c.Engine.Threads <= 0 {
		return fmt.Errorf("engine.threads must be > 0, got %d", c.Engine.Threads)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	if c.Silence.ThresholdDBFS > 0 {
		return fmt.Errorf("silence.threshold_dbfs must be <= 0, got %v", c.Silence.ThresholdDBFS)
	}

	return nil
}

func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
