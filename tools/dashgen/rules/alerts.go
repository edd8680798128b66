package rules

// AlertRules returns a PrometheusRule CR containing alert rules for parserwb
// operational monitoring.
func AlertRules() PrometheusRule {
	return newCR("parserwb-alerts", RuleGroup{
		Name: "parserwb-alerts",
		Rules: []Rule{
			{
				Alert:  "ParserwbDown",
				Expr:   `absent(up{job="parserwb"})`,
				For:    "5m",
				Labels: map[string]string{"severity": "critical"},
				Annotations: map[string]string{
					"summary":     "parserwb is down",
					"description": "The parserwb job has been absent for more than 5 minutes; no price alerts are being sent.",
				},
			},
			{
				Alert:  "ParserwbCycleStalled",
				Expr:   `time() - parserwb_last_cycle_timestamp > 1800`,
				For:    "5m",
				Labels: map[string]string{"severity": "critical"},
				Annotations: map[string]string{
					"summary":     "parserwb watch loop stalled",
					"description": "No check cycle has finished in the last 30 minutes.",
				},
			},
			{
				Alert:  "ParserwbSearchFailing",
				Expr:   `parserwb:search_errors:rate5m / parserwb:search_requests:rate5m > 0.5`,
				For:    "15m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Most Wildberries searches are failing",
					"description": "More than half of searches failed over 15 minutes; the endpoint may be blocking requests or changed its format.",
				},
			},
			{
				Alert:  "ParserwbDailyLimitReached",
				Expr:   `increase(parserwb_search_daily_limit_hits_total[5m]) > 0`,
				For:    "0m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Daily search limit reached",
					"description": "Searches are paused until the 24-hour quota window resets.",
				},
			},
			{
				Alert:  "ParserwbNotificationFailures",
				Expr:   `increase(parserwb_notification_failures_total[15m]) > 0`,
				For:    "15m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Telegram alerts are failing",
					"description": "Alert deliveries keep failing; check the bot token, chat id and network.",
				},
			},
			{
				Alert:  "ParserwbStateSaveFailures",
				Expr:   `increase(parserwb_state_save_failures_total[5m]) > 0`,
				For:    "1m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "Notified set is not being persisted",
					"description": "Saving the notified set failed; a restart may resend alerts already delivered.",
				},
			},
			{
				Alert:  "ParserwbReadinessDown",
				Expr:   `parserwb_readyz_up == 0`,
				For:    "5m",
				Labels: map[string]string{"severity": "warning"},
				Annotations: map[string]string{
					"summary":     "parserwb state store unreachable",
					"description": "The readiness probe has reported not-ready for more than 5 minutes.",
				},
			},
		},
	})
}
