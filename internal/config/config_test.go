package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
telegram:
  token: "123:abc"
  chat_id: "42"
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "123:abc", cfg.Telegram.Token)
				assert.Equal(t, "42", cfg.Telegram.ChatID)
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `{}`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, PlaceholderToken, cfg.Telegram.Token)
				assert.Equal(t, "https://api.telegram.org", cfg.Telegram.APIEndpoint)
				assert.Equal(t, 15*time.Second, cfg.Telegram.Timeout)
				assert.Equal(t, "https://search.wb.ru/exactmatch/ru/common/v4/search", cfg.Wildberries.SearchURL)
				assert.Equal(t, 30, cfg.Wildberries.Limit)
				assert.Equal(t, 15*time.Second, cfg.Wildberries.Timeout)
				assert.InDelta(t, 1.0, cfg.Wildberries.RateLimit.PerSecond, 0.001)
				assert.Equal(t, 1, cfg.Wildberries.RateLimit.Burst)
				assert.Zero(t, cfg.Wildberries.RateLimit.DailyLimit)
				assert.Equal(t, 300*time.Second, cfg.Poll.Interval)
				assert.Equal(t, time.Second, cfg.Poll.QueryPause)
				assert.Empty(t, cfg.Poll.Schedule)
				assert.Equal(t, BackendFile, cfg.State.Backend)
				assert.Equal(t, "notified.json", cfg.State.Path)
				assert.False(t, cfg.Server.Enabled)
				assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
				assert.Equal(t, DefaultWatches(), cfg.Watches)
			},
		},
		{
			name: "custom watches replace defaults",
			yaml: `
watches:
  - query: "Samsung S24"
    threshold: 45000.50
  - query: "Pixel 9"
    threshold: "39990"
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				require.Len(t, cfg.Watches, 2)
				assert.Equal(t, "Samsung S24", cfg.Watches[0].Text)
				assert.True(t, decimal.RequireFromString("45000.5").Equal(cfg.Watches[0].Threshold))
				assert.True(t, decimal.NewFromInt(39990).Equal(cfg.Watches[1].Threshold))
			},
		},
		{
			name: "env substitution in yaml",
			yaml: `
telegram:
  token: ${TEST_PARSERWB_TOKEN}
state:
  backend: postgres
  dsn: postgres://u:${TEST_PARSERWB_PW}@db/parserwb
`,
			envVars: map[string]string{
				"TEST_PARSERWB_TOKEN": "999:zzz",
				"TEST_PARSERWB_PW":    "secret",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "999:zzz", cfg.Telegram.Token)
				assert.Equal(t, "postgres://u:secret@db/parserwb", cfg.State.DSN)
			},
		},
		{
			name: "legacy env overrides file",
			yaml: `
telegram:
  token: "file-token"
  chat_id: "1"
poll:
  interval: 10m
`,
			envVars: map[string]string{
				EnvTelegramToken:  "env-token",
				EnvTelegramChatID: "2",
				EnvCheckInterval:  "60",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "env-token", cfg.Telegram.Token)
				assert.Equal(t, "2", cfg.Telegram.ChatID)
				assert.Equal(t, time.Minute, cfg.Poll.Interval)
			},
		},
		{
			name:    "non-integer check interval",
			yaml:    `{}`,
			envVars: map[string]string{EnvCheckInterval: "five"},
			wantErr: "CHECK_INTERVAL_SECONDS must be an integer",
		},
		{
			name: "postgres without dsn",
			yaml: `
state:
  backend: postgres
`,
			wantErr: "state.dsn is required",
		},
		{
			name: "unknown backend",
			yaml: `
state:
  backend: redis
`,
			wantErr: "state.backend must be one of",
		},
		{
			name: "bad watch entries",
			yaml: `
watches:
  - query: ""
    threshold: 100
  - query: "a"
    threshold: 0
  - query: "b"
    threshold: 10
  - query: "b"
    threshold: 20
`,
			wantErr: "watches[0].query is required",
		},
		{
			name: "invalid logging",
			yaml: `
logging:
  level: verbose
  format: xml
`,
			wantErr: "logging.level must be one of",
		},
		{
			name: "invalid port",
			yaml: `
server:
  port: 70000
`,
			wantErr: "server.port must be between",
		},
		{
			name:    "invalid yaml",
			yaml:    "telegram: [",
			wantErr: "parsing config YAML",
		},
		{
			name: "invalid threshold",
			yaml: `
watches:
  - query: "x"
    threshold: cheap
`,
			wantErr: "parsing config YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Legacy variables may leak in from the developer's shell.
			t.Setenv(EnvTelegramToken, "")
			t.Setenv(EnvTelegramChatID, "")
			t.Setenv(EnvCheckInterval, "")
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_JoinsAllProblems(t *testing.T) {
	t.Setenv(EnvCheckInterval, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
watches:
  - query: "a"
    threshold: 0
  - query: "b"
    threshold: 10
  - query: "b"
    threshold: 20
logging:
  format: xml
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watches[0].threshold must be positive")
	assert.Contains(t, err.Error(), `watches[2].query "b" is duplicated`)
	assert.Contains(t, err.Error(), "logging.format must be one of")
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv(EnvTelegramToken, "123:abc")
	t.Setenv(EnvTelegramChatID, "42")
	t.Setenv(EnvCheckInterval, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Len(t, cfg.Watches, 2)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestDefaultWatches(t *testing.T) {
	t.Parallel()

	w := DefaultWatches()
	require.Len(t, w, 2)
	assert.Equal(t, "Iphone 16", w[0].Text)
	assert.Equal(t, "Айфон 16", w[1].Text)
	for _, q := range w {
		assert.True(t, decimal.NewFromInt(50000).Equal(q.Threshold))
	}
}
