package observability

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/prodcon/internal/logger"
)

// TestNewMetricsConcurrency verifies that NewMetrics can be called concurrently
// since every call builds its own registry.
func TestNewMetricsConcurrency(t *testing.T) {
	t.Parallel()

	const numGoroutines = 20

	var wg sync.WaitGroup
	for range numGoroutines {
		wg.Go(func() {
			m, err := NewMetrics()
			if !assert.NoError(t, err) {
				return
			}
			assert.NotNil(t, m.Registry())
			assert.NotNil(t, m.Pipeline)
		})
	}
	wg.Wait()
}

func TestEndpointServesMetrics(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	m.Pipeline.ObserveTransfer("Producer")

	e, err := NewEndpoint("127.0.0.1:0", m, logger.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	var wg sync.WaitGroup
	require.NoError(t, e.Start(ctx, &wg))

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + e.Addr() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `prodcon_task_transfers_total{role="Producer"} 1`)
	assert.Contains(t, string(body), "go_goroutines")

	cancel()
	wg.Wait()

	_, err = client.Get("http://" + e.Addr() + "/metrics")
	assert.Error(t, err)
}

func TestNewEndpointRequiresAddress(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)
	_, err = NewEndpoint("", m, logger.Discard())
	assert.Error(t, err)
}
