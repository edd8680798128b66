// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/Nikitosik2311/parserwb/tools/dashgen/panels"
)

// OverviewUID is the stable dashboard UID, so re-imports replace it.
const OverviewUID = "parserwb-overview"

// BuildOverview constructs the parserwb overview dashboard with all metric
// rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("parserwb Overview").
		Uid(OverviewUID).
		Tags([]string{"parserwb", "wildberries"}).
		Refresh("1m").
		Time("now-24h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.LastCycleStat()).
		WithPanel(panels.NotifiedSetStat()).
		WithPanel(panels.UptimeStat()))

	b.WithRow(dashboard.NewRowBuilder("Watch Loop").
		WithPanel(panels.CycleDuration()).
		WithPanel(panels.MatchedItems()).
		WithPanel(panels.QueryFailures()))

	b.WithRow(dashboard.NewRowBuilder("Wildberries Search").
		WithPanel(panels.SearchRate()).
		WithPanel(panels.SearchErrorsByKind()).
		WithPanel(panels.SearchLatency()).
		WithPanel(panels.DailyUsage()).
		WithPanel(panels.LimitHits()))

	b.WithRow(dashboard.NewRowBuilder("Telegram").
		WithPanel(panels.NotificationsRate()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()).
		WithPanel(panels.StateSaveFailures()))

	b.WithRow(dashboard.NewRowBuilder("Operational API").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
