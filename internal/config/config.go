// Package config loads quizrr settings from an optional YAML file and
// QUIZRR_* environment overrides.
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

	"gopkg.in/yaml.v3"

	"github.com/quizrr/quizrr/internal/auth"
	"github.com/quizrr/quizrr/internal/cache"
	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/logging"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/store"
)

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig   `yaml:"server"`
	Store      store.Config   `yaml:"store"`
	Cache      cache.Config   `yaml:"cache"`
	LLM        llm.Config     `yaml:"llm"`
	Auth       auth.Config    `yaml:"auth"`
	Log        logging.Config `yaml:"log"`
	Generation quizgen.Config `yaml:"generation"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
		Store:      store.Config{Driver: store.DriverSQLite},
		Cache:      cache.Config{Backend: cache.BackendMemory, Prefix: cache.DefaultPrefix},
		LLM:        llm.DefaultConfig(),
		Log:        logging.Config{Level: "info", Format: "text"},
		Generation: quizgen.DefaultConfig(),
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/quizrr/config.yaml or its
// ~/.config equivalent.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "quizrr", "config.yaml")
}

// Load reads path (or DefaultPath when path is empty and the file exists)
// over the defaults, then applies environment overrides. An explicit path
// that does not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
			// No config file; defaults apply.
		default:
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	ApplyEnv(&cfg)
	return cfg, nil
}

// ApplyEnv overrides cfg from the environment. When the selected LLM
// provider has no usable key and QUIZRR_LLM_PROVIDER is unset, the first
// provider with a standard API key variable is used instead.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "QUIZRR_ADDR")
	if v := os.Getenv("QUIZRR_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}

	setString(&cfg.Store.Driver, "QUIZRR_STORE_DRIVER")
	setString(&cfg.Store.DSN, "QUIZRR_STORE_DSN")

	if v := os.Getenv("QUIZRR_REDIS_ADDR"); v != "" {
		cfg.Cache.Backend = cache.BackendRedis
		cfg.Cache.Addr = v
	}
	setString(&cfg.Cache.Password, "QUIZRR_REDIS_PASSWORD")

	llm.ApplyEnv(&cfg.LLM)
	if cfg.LLM.Validate() != nil && os.Getenv("QUIZRR_LLM_PROVIDER") == "" {
		if found, ok := llm.DiscoverConfig(); ok {
			found.Retry = cfg.LLM.Retry
			found.Timeout = cfg.LLM.Timeout
			cfg.LLM = found
		}
	}

	setString(&cfg.Auth.JWTSecret, "QUIZRR_JWT_SECRET")
	setString(&cfg.Auth.GoogleClientID, "QUIZRR_GOOGLE_CLIENT_ID")
	setString(&cfg.Auth.GoogleClientSecret, "QUIZRR_GOOGLE_CLIENT_SECRET")
	setString(&cfg.Auth.RedirectURL, "QUIZRR_GOOGLE_REDIRECT_URL")

	setString(&cfg.Log.Level, "QUIZRR_LOG_LEVEL")
	setString(&cfg.Log.Format, "QUIZRR_LOG_FORMAT")

	if v := os.Getenv("QUIZRR_STRUCTURED_OUTPUT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Generation.StructuredOutput = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
