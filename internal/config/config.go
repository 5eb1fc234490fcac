// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/nayidisha/disha/internal/llm"
)

// Environment variables read by Load. LLM settings use the llm.Env* names.
const (
	EnvAPIURL         = "DISHA_API_URL"
	EnvDB             = "DISHA_DB"
	EnvSessionBackend = "DISHA_SESSION_BACKEND"
	EnvRedisAddr      = "DISHA_REDIS_ADDR"
	EnvProgressDSN    = "DISHA_PROGRESS_DSN"
	EnvUserID         = "DISHA_USER_ID"
	EnvQuestionSource = "DISHA_QUESTION_SOURCE"
	EnvRequestTimeout = "DISHA_REQUEST_TIMEOUT"
	EnvLogMode        = "DISHA_LOG_MODE"
)

// Session store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Question sources.
const (
	SourceAPI = "api"
	SourceLLM = "llm"
)

const (
	DefaultAPIURL         = "http://localhost:5000/api"
	DefaultRedisAddr      = "localhost:6379"
	DefaultRequestTimeout = 30 * time.Second
)

// Config is the resolved runtime configuration.
type Config struct {
	APIBaseURL     string
	DBPath         string // empty means the XDG default
	SessionBackend string
	RedisAddr      string
	ProgressDSN    string // empty disables remote progress
	UserID         string // empty means anonymous
	QuestionSource string
	RequestTimeout time.Duration
	LogMode        string
	LLM            llm.Config
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		APIBaseURL:     DefaultAPIURL,
		SessionBackend: BackendSQLite,
		RedisAddr:      DefaultRedisAddr,
		QuestionSource: SourceAPI,
		RequestTimeout: DefaultRequestTimeout,
		LogMode:        "development",
		LLM:            llm.DefaultConfig(),
	}
}

// Load reads envFile (when it exists) into the process environment without
// overriding variables already set, then resolves and validates Config. An
// empty envFile tries ".env" in the working directory.
func Load(envFile string) (Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv resolves Config from the current environment.
func FromEnv() (Config, error) {
	cfg := Default()
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.APIBaseURL, EnvAPIURL)
	set(&cfg.DBPath, EnvDB)
	set(&cfg.SessionBackend, EnvSessionBackend)
	set(&cfg.RedisAddr, EnvRedisAddr)
	set(&cfg.ProgressDSN, EnvProgressDSN)
	set(&cfg.UserID, EnvUserID)
	set(&cfg.QuestionSource, EnvQuestionSource)
	set(&cfg.LogMode, EnvLogMode)

	if v := strings.TrimSpace(os.Getenv(EnvRequestTimeout)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = d
	}
	cfg.SessionBackend = strings.ToLower(cfg.SessionBackend)
	cfg.QuestionSource = strings.ToLower(cfg.QuestionSource)
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.LLM = llm.ConfigFromEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings. LLM credentials are only checked
// when the LLM question source is selected.
func (c Config) Validate() error {
	var errs []error
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", EnvAPIURL, c.APIBaseURL))
	}
	switch c.SessionBackend {
	case BackendSQLite, BackendMemory:
	case BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, fmt.Errorf("%s is required for the redis session backend", EnvRedisAddr))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown backend %q", EnvSessionBackend, c.SessionBackend))
	}
	switch c.QuestionSource {
	case SourceAPI:
	case SourceLLM:
		if err := c.LLM.Validate(); err != nil {
			errs = append(errs, err)
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown source %q", EnvQuestionSource, c.QuestionSource))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive", EnvRequestTimeout))
	}
	return errors.Join(errs...)
}

// SignedIn reports whether a user id is configured.
func (c Config) SignedIn() bool { return c.UserID != "" }

// RemoteProgress reports whether a progress database is configured.
func (c Config) RemoteProgress() bool { return c.ProgressDSN != "" }
