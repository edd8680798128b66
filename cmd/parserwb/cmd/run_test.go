package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nikitosik2311/parserwb/internal/config"
	"github.com/Nikitosik2311/parserwb/internal/notify"
	"github.com/Nikitosik2311/parserwb/internal/state"
	"github.com/Nikitosik2311/parserwb/pkg/logger"
)

func TestNewNotifier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		token    string
		chatID   string
		wantNoOp bool
	}{
		{name: "placeholder token", token: config.PlaceholderToken, chatID: "42", wantNoOp: true},
		{name: "empty token", token: "", chatID: "42", wantNoOp: true},
		{name: "empty chat id", token: "123:abc", chatID: "", wantNoOp: true},
		{name: "configured", token: "123:abc", chatID: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.TelegramConfig{
				Token:       tt.token,
				ChatID:      tt.chatID,
				APIEndpoint: "https://api.telegram.org",
				Timeout:     time.Second,
			}
			n := newNotifier(cfg, logger.Discard())

			if tt.wantNoOp {
				assert.IsType(t, &notify.NoOpNotifier{}, n)
				assert.ErrorIs(t, n.Notify(context.Background(), "hi"), notify.ErrNotConfigured)
				return
			}
			assert.IsType(t, &notify.TelegramNotifier{}, n)
		})
	}
}

func TestOpenStore_FileBackend(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notified.json")
	st, closeStore, err := openStore(context.Background(), &config.StateConfig{
		Backend: config.BackendFile,
		Path:    path,
	})
	require.NoError(t, err)
	defer closeStore()

	fs, ok := st.(*state.FileStore)
	require.True(t, ok)
	assert.Equal(t, path, fs.Path())
	assert.NoError(t, st.Ping(context.Background()))
}

func TestOpenStore_PostgresBadDSN(t *testing.T) {
	t.Parallel()

	_, _, err := openStore(context.Background(), &config.StateConfig{
		Backend: config.BackendPostgres,
		DSN:     "postgres://u@localhost:notaport/db",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening state store")
}

func TestNewRateLimiter(t *testing.T) {
	t.Parallel()

	rl := newRateLimiter(&config.WildberriesConfig{
		RateLimit: config.RateLimitConfig{PerSecond: 1, Burst: 1, DailyLimit: 10},
	})
	require.NotNil(t, rl)
	assert.Equal(t, int64(10), rl.Quota().Limit)
	assert.Equal(t, int64(10), rl.Quota().Remaining)
}
