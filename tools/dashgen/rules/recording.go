package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newCR("parserwb-recording-rules", RuleGroup{
		Name: "parserwb-recording",
		Rules: []Rule{
			{
				Record: "parserwb:http_requests:rate5m",
				Expr:   `sum(rate(parserwb_http_requests_total[5m]))`,
			},
			{
				Record: "parserwb:http_errors:rate5m",
				Expr:   `sum(rate(parserwb_http_requests_total{status=~"5.."}[5m]))`,
			},
			{
				Record: "parserwb:search_requests:rate5m",
				Expr:   `sum(rate(parserwb_search_requests_total[5m]))`,
			},
			{
				Record: "parserwb:search_errors:rate5m",
				Expr:   `sum(rate(parserwb_search_errors_total[5m]))`,
			},
			{
				Record: "parserwb:notifications_sent:rate5m",
				Expr:   `sum(rate(parserwb_notifications_sent_total[5m]))`,
			},
		},
	})
}
