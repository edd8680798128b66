// Package api assembles the operational HTTP server.
package api

import (
	"log/slog"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nikitosik2311/parserwb/internal/api/handlers"
	mw "github.com/Nikitosik2311/parserwb/internal/api/middleware"
	"github.com/Nikitosik2311/parserwb/internal/state"
	"github.com/Nikitosik2311/parserwb/internal/wildberries"
)

// Watcher is the part of the watch loop the API exposes.
type Watcher interface {
	handlers.WatchLister
	handlers.NotifiedLister
	handlers.CycleRunner
}

// Deps holds what the routes serve. Limiter may be nil.
type Deps struct {
	Watcher Watcher
	Store   state.Store
	Limiter *wildberries.RateLimiter
	Logger  *slog.Logger
	Version string
}

// NewRouter builds the Echo instance with middleware, probes, metrics and
// the Huma JSON API mounted.
func NewRouter(d Deps) *echo.Echo {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(mw.Recovery(log))
	e.Use(mw.RequestLog(log))
	e.Use(mw.Metrics())

	health := handlers.NewHealthHandler(d.Store)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	version := d.Version
	if version == "" {
		version = "dev"
	}
	api := humaecho.New(e, huma.DefaultConfig("parserwb API", version))

	handlers.RegisterWatchRoutes(api, handlers.NewWatchHandler(d.Watcher))
	handlers.RegisterNotifiedRoutes(api, handlers.NewNotifiedHandler(d.Watcher))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(d.Limiter))
	handlers.RegisterCheckRoutes(api, handlers.NewCheckHandler(d.Watcher))

	return e
}
