// Package panels provides Grafana dashboard panel builders for parserwb
// metrics.
package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/cog"
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"
	"github.com/grafana/grafana-foundation-sdk/go/prometheus"
)

// Job is the scrape job every panel query selects.
const Job = "parserwb"

// Standard panel dimensions for a 24-column grid.
const (
	StatWidth  = 6
	StatHeight = 4

	TSWidth  = 12
	TSHeight = 8

	ThirdWidth = 8
)

// Sel returns metric restricted to the parserwb job.
func Sel(metric string) string {
	return fmt.Sprintf(`%s{job=%q}`, metric, Job)
}

// Quantile returns a histogram_quantile expression over the _bucket series
// of histogram, aggregated by the given extra labels.
func Quantile(q float64, histogram string, by ...string) string {
	labels := "le"
	for _, l := range by {
		labels += ", " + l
	}
	return fmt.Sprintf(
		`histogram_quantile(%g, sum(rate(%s[5m])) by (%s))`,
		q, Sel(histogram+"_bucket"), labels,
	)
}

// DSRef returns a datasource reference pointing at the ${datasource}
// template variable.
func DSRef() dashboard.DataSourceRef {
	return dashboard.DataSourceRef{
		Type: cog.ToPtr("prometheus"),
		Uid:  cog.ToPtr("${datasource}"),
	}
}

// PromQuery builds a Prometheus query target with the given expression,
// legend format, and ref ID.
func PromQuery(expr, legendFormat, refID string) *prometheus.DataqueryBuilder {
	return prometheus.NewDataqueryBuilder().
		Expr(expr).
		LegendFormat(legendFormat).
		RefId(refID)
}

// Step is one threshold boundary: values at or above At take Color.
type Step struct {
	At    float64
	Color string
}

// Steps returns absolute thresholds starting at base, then each step in
// ascending order.
func Steps(base string, steps ...Step) cog.Builder[dashboard.ThresholdsConfig] {
	out := make([]dashboard.Threshold, 0, len(steps)+1)
	out = append(out, dashboard.Threshold{Color: base})
	for _, st := range steps {
		out = append(out, dashboard.Threshold{Value: cog.ToPtr(st.At), Color: st.Color})
	}
	return dashboard.NewThresholdsConfigBuilder().
		Mode(dashboard.ThresholdsModeAbsolute).
		Steps(out)
}

// Warn returns green, yellow from warn, red from crit.
func Warn(warn, crit float64) cog.Builder[dashboard.ThresholdsConfig] {
	return Steps("green", Step{warn, "yellow"}, Step{crit, "red"})
}

// ByThreshold colors values by their threshold step.
func ByThreshold() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdThresholds)
}

// Palette colors series with the classic palette.
func Palette() cog.Builder[dashboard.FieldColor] {
	return dashboard.NewFieldColorBuilder().Mode(dashboard.FieldColorModeIdPaletteClassic)
}

// TableLegend returns a legend configuration displaying as a table at the
// bottom with the specified calculation columns.
func TableLegend(calcs ...string) *common.VizLegendOptionsBuilder {
	return common.NewVizLegendOptionsBuilder().
		DisplayMode(common.LegendDisplayModeTable).
		Placement(common.LegendPlacementBottom).
		Calcs(calcs)
}

// MultiTooltip returns a tooltip configuration showing all series sorted
// descending.
func MultiTooltip() *common.VizTooltipOptionsBuilder {
	return common.NewVizTooltipOptionsBuilder().
		Mode(common.TooltipDisplayModeMulti).
		Sort(common.SortOrderDescending)
}
