package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
)

func upStat(title, description, metric string) *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title(title).
		Description(description).
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(Sel(metric), "", "A")).
		Thresholds(Steps("red", Step{1, "green"})).
		ColorScheme(ByThreshold()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone).
		TextMode(common.BigValueTextModeValue)
}

// HealthzStat returns a stat panel showing the liveness probe status.
func HealthzStat() *stat.PanelBuilder {
	return upStat("Healthz", "Liveness probe status (1 = ok, 0 = failing)", "parserwb_healthz_up")
}

// ReadyzStat returns a stat panel showing whether the state store is
// reachable.
func ReadyzStat() *stat.PanelBuilder {
	return upStat("Readyz", "State store reachable (1 = ready, 0 = not ready)", "parserwb_readyz_up")
}

// LastCycleStat returns a stat panel showing time since the last finished
// check cycle. With the default 300s interval anything past two intervals
// means the loop is stuck.
func LastCycleStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Last Cycle").
		Description("Time since the last finished check cycle").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - `+Sel("parserwb_last_cycle_timestamp"), "", "A")).
		Unit("s").
		Thresholds(Warn(600, 1800)).
		ColorScheme(ByThreshold()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeNone)
}

// NotifiedSetStat returns a stat panel showing the notified set size.
func NotifiedSetStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Notified Items").
		Description("Identifiers already alerted and never alerted again").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(Sel("parserwb_notified_set_size"), "", "A")).
		Thresholds(Steps("green")).
		ColorScheme(ByThreshold()).
		GraphMode(common.BigValueGraphModeArea)
}

// UptimeStat returns a stat panel showing process uptime.
func UptimeStat() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Uptime").
		Description("Time since process start").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(`time() - `+Sel("process_start_time_seconds"), "", "A")).
		Unit("s").
		Thresholds(Steps("green")).
		ColorScheme(ByThreshold()).
		GraphMode(common.BigValueGraphModeNone)
}
