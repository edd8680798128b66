// Package middleware provides Echo middleware for the parserwb HTTP API.
package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Nikitosik2311/parserwb/internal/metrics"
)

// unmatchedRoute labels requests that hit no registered route, so scans of
// random URLs do not grow the label set.
const unmatchedRoute = "unmatched"

// probeGauges maps probe paths to the gauge reflecting their last outcome.
// Probe and scrape traffic is kept out of the request histogram.
var probeGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

const scrapePath = "/metrics"

// Metrics returns Echo middleware that records request duration and count
// per method, route and status.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := routeLabel(c)

			if route == scrapePath {
				return next(c)
			}
			if gauge, ok := probeGauges[route]; ok {
				err := next(c)
				gauge.Set(boolGauge(isSuccess(c.Response().Status)))
				return err
			}

			start := time.Now()
			err := next(c)

			labels := []string{
				c.Request().Method,
				route,
				strconv.Itoa(c.Response().Status),
			}
			metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()

			return err
		}
	}
}

func routeLabel(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	if _, ok := probeGauges[c.Request().URL.Path]; ok {
		return c.Request().URL.Path
	}
	if c.Request().URL.Path == scrapePath {
		return scrapePath
	}
	return unmatchedRoute
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
