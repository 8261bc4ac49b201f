package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the resolved stash configuration.
type Config struct {
	APIURL          string
	PageSize        int
	StateDir        string
	RefreshInterval time.Duration

	Log     Log
	Session Session
	Tracing Tracing
	Scroll  Scroll
}

// Log controls the zap logger.
type Log struct {
	Level  string
	Format string
	Path   string
}

// Session selects where the token and snapshot are kept.
type Session struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// UseRedis reports whether the redis backend is configured.
func (s Session) UseRedis() bool {
	return s.RedisAddr != ""
}

// Tracing configures the OTLP exporter.
type Tracing struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Scroll tunes when the next page is requested.
type Scroll struct {
	Threshold float64
	Throttle  time.Duration
}

const (
	defaultConfigPath      = "~/.config/stash/config.toml"
	defaultStateDir        = "~/.local/state/stash"
	defaultAPIURL          = "http://localhost:8080"
	defaultPageSize        = 20
	defaultRefreshInterval = 30 * time.Second
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultScrollThreshold = 0.7
	defaultScrollThrottle  = 200 * time.Millisecond
	logFileName            = "stash.log"
)

// Environment overrides, applied after the file.
const (
	EnvAPIURL          = "STASH_API_URL"
	EnvLogLevel        = "STASH_LOG_LEVEL"
	EnvRedisAddr       = "STASH_REDIS_ADDR"
	EnvTracingEndpoint = "STASH_TRACING_ENDPOINT"
)

type rawConfig struct {
	APIURL         string `toml:"api_url"`
	PageSize       int    `toml:"page_size"`
	StateDir       string `toml:"state_dir"`
	RefreshSeconds int    `toml:"refresh_seconds"`

	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
		Path   string `toml:"path"`
	} `toml:"log"`

	Session struct {
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	} `toml:"session"`

	Tracing struct {
		Endpoint    string  `toml:"endpoint"`
		Insecure    *bool   `toml:"insecure"`
		SampleRatio float64 `toml:"sample_ratio"`
	} `toml:"tracing"`

	Scroll struct {
		Threshold  float64 `toml:"threshold"`
		ThrottleMS int     `toml:"throttle_ms"`
	} `toml:"scroll"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	stateDir := mustExpand(defaultStateDir)
	return Config{
		APIURL:          defaultAPIURL,
		PageSize:        defaultPageSize,
		StateDir:        stateDir,
		RefreshInterval: defaultRefreshInterval,
		Log: Log{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Path:   filepath.Join(stateDir, logFileName),
		},
		Tracing: Tracing{Insecure: true, SampleRatio: 1},
		Scroll:  Scroll{Threshold: defaultScrollThreshold, Throttle: defaultScrollThrottle},
	}
}

// Load reads the config at path (or the default location), falling back to
// defaults when the file is missing, then applies environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := merge(&cfg, raw); err != nil {
		return Config{}, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func merge(cfg *Config, raw rawConfig) error {
	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	switch {
	case raw.PageSize < 0:
		return fmt.Errorf("page_size must be positive, got %d", raw.PageSize)
	case raw.PageSize > 0:
		cfg.PageSize = raw.PageSize
	}
	if v := strings.TrimSpace(raw.StateDir); v != "" {
		cfg.StateDir = mustExpand(v)
		cfg.Log.Path = filepath.Join(cfg.StateDir, logFileName)
	}
	if raw.RefreshSeconds > 0 {
		cfg.RefreshInterval = time.Duration(raw.RefreshSeconds) * time.Second
	}

	if v := strings.TrimSpace(raw.Log.Level); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.Log.Format); v != "" {
		if v != "json" && v != "console" {
			return fmt.Errorf("log.format must be json or console, got %q", v)
		}
		cfg.Log.Format = v
	}
	if v := strings.TrimSpace(raw.Log.Path); v != "" {
		cfg.Log.Path = mustExpand(v)
	}

	cfg.Session.RedisAddr = strings.TrimSpace(raw.Session.RedisAddr)
	cfg.Session.RedisPassword = raw.Session.RedisPassword
	cfg.Session.RedisDB = raw.Session.RedisDB

	cfg.Tracing.Endpoint = strings.TrimSpace(raw.Tracing.Endpoint)
	if raw.Tracing.Insecure != nil {
		cfg.Tracing.Insecure = *raw.Tracing.Insecure
	}
	if raw.Tracing.SampleRatio > 0 {
		cfg.Tracing.SampleRatio = raw.Tracing.SampleRatio
	}

	if t := raw.Scroll.Threshold; t != 0 {
		if t <= 0 || t > 1 {
			return fmt.Errorf("scroll.threshold must be in (0, 1], got %v", t)
		}
		cfg.Scroll.Threshold = t
	}
	if raw.Scroll.ThrottleMS > 0 {
		cfg.Scroll.Throttle = time.Duration(raw.Scroll.ThrottleMS) * time.Millisecond
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Session.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTracingEndpoint)); v != "" {
		cfg.Tracing.Endpoint = v
	}
}

// LogPath returns the log file location.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.Log.Path) != "" {
		return c.Log.Path
	}
	if strings.TrimSpace(c.StateDir) == "" {
		return mustExpand(defaultStateDir + "/" + logFileName)
	}
	return filepath.Join(c.StateDir, logFileName)
}

// SessionDir is where the file session backend keeps its keys.
func (c Config) SessionDir() string {
	if strings.TrimSpace(c.StateDir) == "" {
		return filepath.Join(mustExpand(defaultStateDir), "session")
	}
	return filepath.Join(c.StateDir, "session")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
