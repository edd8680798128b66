package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// CycleDuration returns a timeseries panel showing the p95 check cycle
// duration.
func CycleDuration() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Cycle Duration (p95)").
		Description("95th percentile duration of one pass over the watch list").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(Quantile(0.95, "parserwb_cycle_duration_seconds"), "p95", "A")).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Steps("green")).
		ColorScheme(Palette()).
		DrawStyle(common.GraphDrawStyleLine)
}

// MatchedItems returns a timeseries panel showing items at or below their
// threshold per hour, next to extracted items.
func MatchedItems() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Items / hour").
		Description("Priced items extracted and items at or below threshold, per hour").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`sum(increase(`+Sel("parserwb_search_items_total")+`[1h]))`, "extracted", "A")).
		WithTarget(PromQuery(`sum(increase(`+Sel("parserwb_items_matched_total")+`[1h]))`, "matched", "B")).
		FillOpacity(10).
		LineWidth(2).
		Tooltip(MultiTooltip()).
		Thresholds(Steps("green")).
		ColorScheme(Palette()).
		DrawStyle(common.GraphDrawStyleLine)
}

// QueryFailures returns a timeseries panel showing queries that produced no
// result per hour.
func QueryFailures() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Query Failures / hour").
		Description("Queries skipped for a cycle because the search failed").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(ThirdWidth).
		WithTarget(PromQuery(`sum(increase(`+Sel("parserwb_query_failures_total")+`[1h]))`, "failures", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(Warn(1, 12)).
		ColorScheme(ByThreshold()).
		DrawStyle(common.GraphDrawStyleLine)
}
