package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Nikitosik2311/parserwb/internal/api"
	"github.com/Nikitosik2311/parserwb/internal/config"
	"github.com/Nikitosik2311/parserwb/internal/notify"
	"github.com/Nikitosik2311/parserwb/internal/state"
	"github.com/Nikitosik2311/parserwb/internal/watcher"
	"github.com/Nikitosik2311/parserwb/internal/wildberries"
)

const shutdownTimeout = 10 * time.Second

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the watch loop",
		Long: "Runs watch cycles until interrupted. Each cycle searches every\n" +
			"configured query and alerts on new items at or below its threshold.\n" +
			"With server.enabled the operational HTTP API is served alongside.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context())
		},
	}
}

func runWatch(parent context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := newLogger(cfg)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, &cfg.State)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter := newRateLimiter(&cfg.Wildberries)
	searcher := newSearcher(&cfg.Wildberries, limiter, log)
	notifier := newNotifier(&cfg.Telegram, log)

	w := watcher.New(searcher, notifier, store, cfg.Watches,
		watcher.WithLogger(log),
		watcher.WithInterval(cfg.Poll.Interval),
		watcher.WithQueryPause(cfg.Poll.QueryPause),
	)
	log.Info("notified set loaded", "count", w.Load(ctx), "backend", cfg.State.Backend)

	var srv *http.Server
	if cfg.Server.Enabled {
		srv = startServer(&cfg.Server, api.Deps{
			Watcher: w,
			Store:   store,
			Limiter: limiter,
			Logger:  log,
			Version: Version,
		}, log)
	}

	if cfg.Poll.Schedule != "" {
		sched, err := watcher.NewScheduler(w, cfg.Poll.Schedule, log)
		if err != nil {
			return err
		}
		sched.Run(ctx)
	} else {
		w.Run(ctx)
	}

	if srv != nil {
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
	}

	log.Info("stopped")
	return nil
}

// openStore returns the configured notified-set store and its cleanup.
func openStore(ctx context.Context, cfg *config.StateConfig) (state.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendPostgres:
		pg, err := state.NewPostgresStore(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("opening state store: %w", err)
		}
		return pg, pg.Close, nil
	default:
		return state.NewFileStore(cfg.Path), func() {}, nil
	}
}

func newRateLimiter(cfg *config.WildberriesConfig) *wildberries.RateLimiter {
	return wildberries.NewRateLimiter(
		cfg.RateLimit.PerSecond,
		cfg.RateLimit.Burst,
		cfg.RateLimit.DailyLimit,
	)
}

func newSearcher(cfg *config.WildberriesConfig, rl *wildberries.RateLimiter, log *slog.Logger) *wildberries.Client {
	opts := []wildberries.Option{
		wildberries.WithSearchURL(cfg.SearchURL),
		wildberries.WithLimit(cfg.Limit),
		wildberries.WithTimeout(cfg.Timeout),
		wildberries.WithLogger(log),
	}
	if rl != nil {
		opts = append(opts, wildberries.WithRateLimiter(rl))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, wildberries.WithUserAgent(cfg.UserAgent))
	}
	return wildberries.NewClient(opts...)
}

// newNotifier falls back to the no-op notifier when credentials are missing
// or still the placeholder.
func newNotifier(cfg *config.TelegramConfig, log *slog.Logger) notify.Notifier {
	if !notify.Configured(cfg.Token, cfg.ChatID) {
		log.Warn("telegram not configured, alerts will only be logged")
		return notify.NewNoOpNotifier(log)
	}
	return notify.NewTelegramNotifier(cfg.Token, cfg.ChatID,
		notify.WithAPIEndpoint(cfg.APIEndpoint),
		notify.WithTimeout(cfg.Timeout),
		notify.WithLogger(log),
	)
}

func startServer(cfg *config.ServerConfig, deps api.Deps, log *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.Info("starting server", "addr", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
		}
	}()

	return srv
}
