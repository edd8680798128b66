// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	domain "github.com/Nikitosik2311/parserwb/pkg/types"
)

// Legacy environment variables. When set they override the file.
const (
	EnvTelegramToken  = "TELEGRAM_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
	EnvCheckInterval  = "CHECK_INTERVAL_SECONDS"
)

// PlaceholderToken is the token used when none is configured.
const PlaceholderToken = "PUT_YOUR_TELEGRAM_BOT_TOKEN_HERE"

// State backends.
const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

// Config is the top-level application configuration.
type Config struct {
	Telegram    TelegramConfig     `yaml:"telegram"`
	Wildberries WildberriesConfig  `yaml:"wildberries"`
	Poll        PollConfig         `yaml:"poll"`
	State       StateConfig        `yaml:"state"`
	Server      ServerConfig       `yaml:"server"`
	Logging     LoggingConfig      `yaml:"logging"`
	Watches     []domain.QuerySpec `yaml:"watches"`
}

// TelegramConfig defines the alert destination.
type TelegramConfig struct {
	Token       string        `yaml:"token"`
	ChatID      string        `yaml:"chat_id"`
	APIEndpoint string        `yaml:"api_endpoint"`
	Timeout     time.Duration `yaml:"timeout"`
}

// WildberriesConfig defines search API settings.
type WildberriesConfig struct {
	SearchURL string          `yaml:"search_url"`
	Limit     int             `yaml:"limit"`
	Timeout   time.Duration   `yaml:"timeout"`
	UserAgent string          `yaml:"user_agent"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines search rate limiting. A zero DailyLimit means no
// daily cap.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// PollConfig defines the watch cadence. When Schedule is set it replaces the
// fixed Interval sleep.
type PollConfig struct {
	Interval   time.Duration `yaml:"interval"`
	QueryPause time.Duration `yaml:"query_pause"`
	Schedule   string        `yaml:"schedule"`
}

// StateConfig defines where the notified set is persisted.
type StateConfig struct {
	Backend string `yaml:"backend"` // file, postgres
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

// ServerConfig defines the operational HTTP server settings.
type ServerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// DefaultWatches is the built-in watch list.
func DefaultWatches() []domain.QuerySpec {
	threshold := decimal.NewFromInt(50000)
	return []domain.QuerySpec{
		{Text: "Iphone 16", Threshold: threshold},
		{Text: "Айфон 16", Threshold: threshold},
	}
}

// Load reads and parses a YAML config file, performing environment variable
// substitution, legacy environment overrides, defaults and validation. An
// empty path skips the file and configures from the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvTelegramToken); ok && v != "" {
		cfg.Telegram.Token = v
	}
	if v, ok := os.LookupEnv(EnvTelegramChatID); ok && v != "" {
		cfg.Telegram.ChatID = v
	}
	if v, ok := os.LookupEnv(EnvCheckInterval); ok && v != "" {
		secs, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer number of seconds: %w", EnvCheckInterval, err)
		}
		cfg.Poll.Interval = time.Duration(secs) * time.Second
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyTelegramDefaults(&cfg.Telegram)
	applyWildberriesDefaults(&cfg.Wildberries)
	applyPollDefaults(&cfg.Poll)
	applyStateDefaults(&cfg.State)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)

	if len(cfg.Watches) == 0 {
		cfg.Watches = DefaultWatches()
	}
}

func applyTelegramDefaults(t *TelegramConfig) {
	if t.Token == "" {
		t.Token = PlaceholderToken
	}
	if t.APIEndpoint == "" {
		t.APIEndpoint = "https://api.telegram.org"
	}
	if t.Timeout == 0 {
		t.Timeout = 15 * time.Second
	}
}

func applyWildberriesDefaults(w *WildberriesConfig) {
	if w.SearchURL == "" {
		w.SearchURL = "https://search.wb.ru/exactmatch/ru/common/v4/search"
	}
	if w.Limit == 0 {
		w.Limit = 30
	}
	if w.Timeout == 0 {
		w.Timeout = 15 * time.Second
	}
	applyRateLimitDefaults(&w.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 1.0
	}
	if r.Burst == 0 {
		r.Burst = 1
	}
}

func applyPollDefaults(p *PollConfig) {
	if p.Interval == 0 {
		p.Interval = 300 * time.Second
	}
	if p.QueryPause == 0 {
		p.QueryPause = time.Second
	}
}

func applyStateDefaults(s *StateConfig) {
	if s.Backend == "" {
		s.Backend = BackendFile
	}
	if s.Path == "" {
		s.Path = "notified.json"
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

var (
	validLevels  = []string{"debug", "info", "warn", "warning", "error"}
	validFormats = []string{"text", "json"}
)

func validate(cfg *Config) error {
	var errs []error

	if cfg.Poll.Interval < 0 {
		errs = append(errs, fmt.Errorf("poll.interval must be positive (got %s)", cfg.Poll.Interval))
	}
	if cfg.Poll.QueryPause < 0 {
		errs = append(errs, fmt.Errorf("poll.query_pause must not be negative (got %s)", cfg.Poll.QueryPause))
	}

	if cfg.Wildberries.Limit < 0 {
		errs = append(errs, fmt.Errorf("wildberries.limit must be positive (got %d)", cfg.Wildberries.Limit))
	}
	if cfg.Wildberries.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("wildberries.rate_limit.per_second must be positive"))
	}
	if cfg.Wildberries.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Errorf("wildberries.rate_limit.burst must be positive"))
	}
	if cfg.Wildberries.RateLimit.DailyLimit < 0 {
		errs = append(errs, fmt.Errorf("wildberries.rate_limit.daily_limit must not be negative"))
	}

	switch cfg.State.Backend {
	case BackendFile:
	case BackendPostgres:
		if cfg.State.DSN == "" {
			errs = append(errs, fmt.Errorf("state.dsn is required when backend is postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"state.backend must be one of: file, postgres (got %q)",
			cfg.State.Backend,
		))
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535 (got %d)", cfg.Server.Port))
	}

	if !slices.Contains(validLevels, strings.ToLower(cfg.Logging.Level)) {
		errs = append(errs, fmt.Errorf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
	}
	if !slices.Contains(validFormats, strings.ToLower(cfg.Logging.Format)) {
		errs = append(errs, fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format))
	}

	seen := make(map[string]struct{}, len(cfg.Watches))
	for i, w := range cfg.Watches {
		if strings.TrimSpace(w.Text) == "" {
			errs = append(errs, fmt.Errorf("watches[%d].query is required", i))
			continue
		}
		if !w.Threshold.IsPositive() {
			errs = append(errs, fmt.Errorf("watches[%d].threshold must be positive (got %s)", i, w.Threshold))
		}
		if _, dup := seen[w.Text]; dup {
			errs = append(errs, fmt.Errorf("watches[%d].query %q is duplicated", i, w.Text))
		}
		seen[w.Text] = struct{}{}
	}

	return errors.Join(errs...)
}
