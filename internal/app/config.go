package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vk/xcbuddy/internal/dump"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// Path is the directory holding the root manifest.
	Path string

	LogFormat string
	LogLevel  string

	// Format is the dump output format.
	Format string
	// Parallelism bounds concurrent project rendering. Zero means one per CPU.
	Parallelism int
	// User owns non-shared schemes.
	User string
	// Version is the running tool version, checked against required_version.
	Version string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Path == "" {
		return nil, errors.New("Path is a required configuration field and cannot be empty")
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	switch cfg.LogFormat {
	case "":
		cfg.LogFormat = "text"
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	format, err := dump.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	cfg.Format = string(format)

	if cfg.Parallelism < 0 {
		return nil, fmt.Errorf("invalid parallelism %d: must not be negative", cfg.Parallelism)
	}
	if cfg.User != "" && (cfg.User == "." || cfg.User == ".." || strings.ContainsAny(cfg.User, `/\`)) {
		return nil, fmt.Errorf("invalid user %q: must not contain path separators", cfg.User)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &cfg, nil
}
