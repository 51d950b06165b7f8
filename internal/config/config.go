// Package config loads client settings from defaults, an optional YAML file,
// an optional .env file and CLASSROOM_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvAPIURL        = "CLASSROOM_API_URL"
	EnvAPIKey        = "CLASSROOM_API_KEY"
	EnvDataDir       = "CLASSROOM_DATA_DIR"
	EnvTimeout       = "CLASSROOM_TIMEOUT"
	EnvRateLimit     = "CLASSROOM_RATE_LIMIT"
	EnvCommentDelete = "CLASSROOM_COMMENT_DELETE"
	EnvPassphrase    = "CLASSROOM_PASSPHRASE"
)

// API holds remote endpoint settings.
type API struct {
	URL       string        `yaml:"url"`
	Key       string        `yaml:"key"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	Burst     int           `yaml:"burst"`
}

// Features toggles optional server capabilities.
type Features struct {
	CommentDelete bool `yaml:"comment_delete"`
}

// Limiter configures client-side sign-in lockout.
type Limiter struct {
	Window   time.Duration `yaml:"window"`
	MaxFails int           `yaml:"max_fails"`
	BlockFor time.Duration `yaml:"block_for"`
}

// Config is the full client configuration.
type Config struct {
	API      API      `yaml:"api"`
	DataDir  string   `yaml:"data_dir"`
	Features Features `yaml:"features"`
	Limiter  Limiter  `yaml:"limiter"`
	// Passphrase is read from the environment only.
	Passphrase string `yaml:"-"`
}

// Default returns the built-in settings. API.URL is left empty.
func Default() Config {
	dir := ".classroom"
	if base, err := os.UserConfigDir(); err == nil {
		dir = filepath.Join(base, "classroom")
	}
	return Config{
		API: API{
			Timeout:   30 * time.Second,
			RateLimit: 10,
			Burst:     5,
		},
		DataDir: dir,
		Limiter: Limiter{
			Window:   15 * time.Minute,
			MaxFails: 5,
			BlockFor: 15 * time.Minute,
		},
	}
}

// Load builds the configuration. path may be empty; a missing .env is ignored.
func Load(path string, log *zap.Logger) (Config, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return Config{}, fmt.Errorf("in config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.API.URL = strings.TrimRight(strings.TrimSpace(cfg.API.URL), "/")
	if cfg.API.URL == "" {
		return Config{}, fmt.Errorf("api url is required (set %s or api.url)", EnvAPIURL)
	}
	if cfg.API.Key == "" {
		log.Warn("no API key configured", zap.String("env", EnvAPIKey))
	}
	if cfg.API.Timeout <= 0 {
		return Config{}, errors.New("api timeout must be positive")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvAPIURL); ok {
		cfg.API.URL = v
	}
	if v, ok := os.LookupEnv(EnvAPIKey); ok {
		cfg.API.Key = v
	}
	if v, ok := os.LookupEnv(EnvDataDir); ok && v != "" {
		cfg.DataDir = v
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvTimeout, err)
		}
		cfg.API.Timeout = d
	}
	if v, ok := os.LookupEnv(EnvRateLimit); ok && v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvRateLimit, err)
		}
		cfg.API.RateLimit = r
	}
	if v, ok := os.LookupEnv(EnvCommentDelete); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvCommentDelete, err)
		}
		cfg.Features.CommentDelete = b
	}
	if v, ok := os.LookupEnv(EnvPassphrase); ok {
		cfg.Passphrase = v
	}
	return nil
}
