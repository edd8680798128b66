package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Nikitosik2311/parserwb/internal/metrics"
)

const (
	// DefaultAPIEndpoint is the public Telegram Bot API base URL.
	DefaultAPIEndpoint = "https://api.telegram.org"
	// DefaultTimeout bounds a single Bot API call.
	DefaultTimeout = 15 * time.Second
)

// TelegramNotifier implements Notifier by sending HTML messages to one chat
// through the Telegram Bot API.
type TelegramNotifier struct {
	token    string
	chatID   string
	endpoint string
	client   *http.Client
	log      *slog.Logger

	mu  sync.Mutex
	bot *tgbotapi.BotAPI
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithAPIEndpoint overrides the Bot API base URL (no trailing slash).
func WithAPIEndpoint(endpoint string) TelegramOption {
	return func(t *TelegramNotifier) {
		t.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) TelegramOption {
	return func(t *TelegramNotifier) {
		t.client = c
	}
}

// WithTimeout sets the per-call timeout on the notifier's HTTP client.
func WithTimeout(d time.Duration) TelegramOption {
	return func(t *TelegramNotifier) {
		t.client = &http.Client{Timeout: d}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) TelegramOption {
	return func(t *TelegramNotifier) {
		t.log = l
	}
}

// NewTelegramNotifier creates a notifier for chatID. The bot handle is
// created on the first Notify call, so an unreachable API at startup is not
// fatal.
func NewTelegramNotifier(token, chatID string, opts ...TelegramOption) *TelegramNotifier {
	t := &TelegramNotifier{
		token:    token,
		chatID:   chatID,
		endpoint: DefaultAPIEndpoint,
		client:   &http.Client{Timeout: DefaultTimeout},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Notify sends text as an HTML message with link previews enabled.
func (t *TelegramNotifier) Notify(ctx context.Context, text string) error {
	start := time.Now()
	defer func() {
		metrics.NotificationDuration.Observe(time.Since(start).Seconds())
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	bot, err := t.ensureBot(ctx)
	if err != nil {
		return err
	}
	bot.Client = contextClient{ctx: ctx, client: t.client}

	params := tgbotapi.Params{
		"chat_id":                  t.chatID,
		"text":                     text,
		"parse_mode":               tgbotapi.ModeHTML,
		"disable_web_page_preview": "false",
	}

	if _, err := bot.MakeRequest("sendMessage", params); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}

	t.log.Debug("telegram message sent", "chat_id", t.chatID)
	return nil
}

// ensureBot must be called with mu held.
func (t *TelegramNotifier) ensureBot(ctx context.Context) (*tgbotapi.BotAPI, error) {
	if t.bot != nil {
		return t.bot, nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(
		t.token,
		t.endpoint+"/bot%s/%s",
		contextClient{ctx: ctx, client: t.client},
	)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	t.log.Info("telegram bot ready", "username", bot.Self.UserName)
	t.bot = bot
	return bot, nil
}

// contextClient binds outgoing Bot API requests to the caller's context.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}
