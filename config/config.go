// Package config reads runtime settings from an optional .env file and
// KERNELCRAWL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults.
const (
	DefaultGameDir     = "games/kernel"
	DefaultLogFile     = "kernelcrawl.log"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultTypingDelay = 15 * time.Millisecond
)

// Config holds process settings. Command-line flags override it in main.
type Config struct {
	GameDir     string
	LogFile     string
	LogLevel    string
	LogFormat   string // "text" or "json"
	Seed        int64  // 0 means seed from the clock
	TypingDelay time.Duration
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		GameDir:     DefaultGameDir,
		LogFile:     DefaultLogFile,
		LogLevel:    DefaultLogLevel,
		LogFormat:   DefaultLogFormat,
		TypingDelay: DefaultTypingDelay,
	}
}

// Load reads envFile into the environment, if it exists, and builds a
// Config from KERNELCRAWL_* variables. Variables already set in the
// environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config using lookup for variable access.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("KERNELCRAWL_GAME_DIR"); ok && v != "" {
		cfg.GameDir = v
	}
	if v, ok := lookup("KERNELCRAWL_LOG_FILE"); ok && v != "" {
		cfg.LogFile = v
	}
	if v, ok := lookup("KERNELCRAWL_LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup("KERNELCRAWL_LOG_FORMAT"); ok && v != "" {
		v = strings.ToLower(v)
		if v != "text" && v != "json" {
			return Config{}, fmt.Errorf("KERNELCRAWL_LOG_FORMAT must be text or json, got %q", v)
		}
		cfg.LogFormat = v
	}
	if v, ok := lookup("KERNELCRAWL_SEED"); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("KERNELCRAWL_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if v, ok := lookup("KERNELCRAWL_TYPING_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("KERNELCRAWL_TYPING_DELAY: %w", err)
		}
		if d < 0 {
			return Config{}, fmt.Errorf("KERNELCRAWL_TYPING_DELAY must not be negative, got %s", d)
		}
		cfg.TypingDelay = d
	}

	return cfg, nil
}
