package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistered(t *testing.T) {
	t.Parallel()

	// Verify all metrics are non-nil (registered via promauto on package init).
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, HealthzUp)
	assert.NotNil(t, ReadyzUp)
	assert.NotNil(t, SearchRequestsTotal)
	assert.NotNil(t, SearchErrorsTotal)
	assert.NotNil(t, SearchItemsTotal)
	assert.NotNil(t, SearchDuration)
	assert.NotNil(t, SearchDailyUsage)
	assert.NotNil(t, SearchDailyLimitHits)
	assert.NotNil(t, CyclesTotal)
	assert.NotNil(t, CycleDuration)
	assert.NotNil(t, ItemsMatchedTotal)
	assert.NotNil(t, QueryFailuresTotal)
	assert.NotNil(t, LastCycleTimestamp)
	assert.NotNil(t, NotificationsSentTotal)
	assert.NotNil(t, NotificationFailuresTotal)
	assert.NotNil(t, NotificationDuration)
	assert.NotNil(t, NotifiedSetSize)
	assert.NotNil(t, StateSaveFailuresTotal)
}

func TestMetricsNamespace(t *testing.T) {
	t.Parallel()

	// Touch a vec so it shows up in Gather.
	SearchErrorsTotal.WithLabelValues("transport")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var found bool
	for _, mf := range families {
		if mf.GetName() == "parserwb_search_errors_total" {
			found = true
		}
		if strings.HasPrefix(mf.GetName(), namespace+"_") {
			assert.NotEmpty(t, mf.GetHelp(), mf.GetName())
		}
	}
	assert.True(t, found, "parserwb_search_errors_total should be registered")
}
