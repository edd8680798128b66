package main

import "errors"

// Job is the Prometheus scrape job name the generated queries select.
const Job = "parserwb"

// KnownMetrics is the set of metric names exported by parserwb plus the
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"parserwb_http_request_duration_seconds_bucket": true,
	"parserwb_http_requests_total":                  true,
	"parserwb_healthz_up":                           true,
	"parserwb_readyz_up":                            true,

	// Search metrics.
	"parserwb_search_requests_total":          true,
	"parserwb_search_errors_total":            true,
	"parserwb_search_items_total":             true,
	"parserwb_search_duration_seconds_bucket": true,
	"parserwb_search_daily_usage":             true,
	"parserwb_search_daily_limit_hits_total":  true,

	// Watch loop metrics.
	"parserwb_cycles_total":                  true,
	"parserwb_cycle_duration_seconds_bucket": true,
	"parserwb_items_matched_total":           true,
	"parserwb_query_failures_total":          true,
	"parserwb_last_cycle_timestamp":          true,

	// Notification and state metrics.
	"parserwb_notifications_sent_total":             true,
	"parserwb_notification_failures_total":          true,
	"parserwb_notification_duration_seconds_bucket": true,
	"parserwb_notified_set_size":                    true,
	"parserwb_state_save_failures_total":            true,

	// Recording rules.
	"parserwb:http_requests:rate5m":      true,
	"parserwb:http_errors:rate5m":        true,
	"parserwb:search_requests:rate5m":    true,
	"parserwb:search_errors:rate5m":      true,
	"parserwb:notifications_sent:rate5m": true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
