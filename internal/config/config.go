package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config holds all configurable rewind settings.
type Config struct {
	DefaultFormat     string  `json:"default_format"`     // "json" | "csv"
	OutputDir         string  `json:"output_dir"`
	PositionThreshold float64 `json:"position_threshold"` // world units
	RotationThreshold float64 `json:"rotation_threshold"` // degrees
}

// Defaults returns sensible default configuration values. The thresholds
// default to a small epsilon that retains effectively every detectable
// change.
func Defaults() Config {
	return Config{
		DefaultFormat:     "json",
		OutputDir:         ".",
		PositionThreshold: 1e-6,
		RotationThreshold: 1e-6,
	}
}

// LoadGlobal reads ~/.config/rewind/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(home, ".config", "rewind", "config.json")
	return loadFile(path, true)
}

// LoadProject reads .rewindconfig in the current working directory.
// Returns nil (no error) if the file is absent.
func LoadProject() (*Config, error) {
	return loadFile(".rewindconfig", false)
}

// loadFile reads and parses a JSON config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()

	apply := func(c *Config) {
		if c == nil {
			return
		}
		if c.DefaultFormat != "" {
			result.DefaultFormat = c.DefaultFormat
		}
		if c.OutputDir != "" {
			result.OutputDir = c.OutputDir
		}
		if c.PositionThreshold > 0 {
			result.PositionThreshold = c.PositionThreshold
		}
		if c.RotationThreshold > 0 {
			result.RotationThreshold = c.RotationThreshold
		}
	}

	apply(global)
	apply(project)

	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
