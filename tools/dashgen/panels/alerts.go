package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// NotificationsRate returns a timeseries panel showing Telegram alerts sent
// per hour.
func NotificationsRate() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Alerts Sent / hour").
		Description("Telegram alerts delivered per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`parserwb:notifications_sent:rate5m * 3600`, "alerts/h", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Steps("green")).
		ColorScheme(Palette()).
		DrawStyle(common.GraphDrawStyleLine)
}

// NotificationLatency returns a timeseries panel showing the p95 Telegram
// send latency.
func NotificationLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Send Latency (p95)").
		Description("95th percentile Telegram sendMessage latency").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(Quantile(0.95, "parserwb_notification_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Warn(2, 10)).
		ColorScheme(Palette()).
		DrawStyle(common.GraphDrawStyleLine)
}

// NotificationFailures returns a stat panel showing notification failures
// in the past 24 hours. Failed alerts are retried next cycle.
func NotificationFailures() *stat.PanelBuilder {
	return failureStat("Send Failures (24h)",
		"Failed Telegram deliveries in the last 24 hours",
		"parserwb_notification_failures_total")
}

// StateSaveFailures returns a stat panel showing failed notified-set saves
// in the past 24 hours. A failed save risks a duplicate alert after restart.
func StateSaveFailures() *stat.PanelBuilder {
	return failureStat("State Save Failures (24h)",
		"Failed notified-set writes in the last 24 hours",
		"parserwb_state_save_failures_total")
}

func failureStat(title, description, metric string) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`increase(`+Sel(metric)+`[24h])`, "", "A")).
		Thresholds(Warn(1, 5)).
		ColorScheme(ByThreshold()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
