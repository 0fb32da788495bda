package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/prodcon/internal/buffer"
)

func TestObserveTransfer(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	testCases := []struct {
		role  string
		times int
	}{
		{"Producer", 3},
		{"Consumer", 2},
	}
	for _, tc := range testCases {
		for range tc.times {
			m.ObserveTransfer(tc.role)
		}
	}
	for _, tc := range testCases {
		assert.InDelta(t, float64(tc.times), testutil.ToFloat64(m.transfers.WithLabelValues(tc.role)), 0)
	}
}

func TestObserveOccupancyAndWait(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.ObserveOccupancy(1, 2)
	m.ObserveOccupancy(2, 2)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.occupancy), 0)
	assert.InDelta(t, 2.0, testutil.ToFloat64(m.capacity), 0)

	m.ObserveWait(buffer.OpPut, 3*time.Millisecond)
	m.ObserveWait(buffer.OpTake, time.Microsecond)
	m.ObserveWait(buffer.OpTake, time.Microsecond)
	assert.Equal(t, 2, testutil.CollectAndCount(m.waitSeconds))
}

func TestObserveRunExposition(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	m.ObserveRun("completed", 20*time.Millisecond)
	m.ObserveRun("completed", 30*time.Millisecond)
	m.ObserveRun("failed", time.Millisecond)

	expected := `
# HELP prodcon_runs_total Finished runs, by outcome
# TYPE prodcon_runs_total counter
prodcon_runs_total{outcome="completed"} 2
prodcon_runs_total{outcome="failed"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "prodcon_runs_total"))
}

func TestTrackAnalyzerCache(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewPipelineMetrics(registry)
	require.NoError(t, err)

	hits, misses := int64(7), int64(3)
	require.NoError(t, m.TrackAnalyzerCache(func() (int64, int64) { return hits, misses }))

	expected := `
# HELP prodcon_analyzer_cache_hits_total Analyzer cache hits
# TYPE prodcon_analyzer_cache_hits_total counter
prodcon_analyzer_cache_hits_total 7
# HELP prodcon_analyzer_cache_misses_total Analyzer cache misses
# TYPE prodcon_analyzer_cache_misses_total counter
prodcon_analyzer_cache_misses_total 3
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"prodcon_analyzer_cache_hits_total", "prodcon_analyzer_cache_misses_total"))

	// Registering twice on the same registry is rejected.
	assert.Error(t, m.TrackAnalyzerCache(func() (int64, int64) { return 0, 0 }))
}

func TestDuplicateRegistrationFails(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewPipelineMetrics(registry)
	require.NoError(t, err)
	_, err = NewPipelineMetrics(registry)
	assert.Error(t, err)
}
