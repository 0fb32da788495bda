package run

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/prodcon/internal/conf"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func baseSettings() *conf.Settings {
	return &conf.Settings{
		Log:      conf.LogSettings{Level: "error"},
		Run:      conf.RunSettings{Print: 3, Mode: 3, Count: 5, CountBy: "auto"},
		Buffer:   conf.BufferSettings{Capacity: 2},
		Producer: conf.ProducerSettings{Burst: 1, Seed: 11},
		Metrics:  conf.MetricsSettings{Listen: "127.0.0.1:0"},
	}
}

func TestExecuteWithMetricsAndPacing(t *testing.T) {
	t.Parallel()

	s := baseSettings()
	s.Metrics.Enabled = true
	s.Producer.Rate = 500
	s.Producer.Burst = 2

	var out bytes.Buffer
	require.NoError(t, Execute(t.Context(), s, strings.NewReader(""), &out))
	assert.Equal(t, 5, strings.Count(out.String(), "Producer: Buffer contents"))
	assert.Equal(t, 5, strings.Count(out.String(), "Consumer: Buffer contents"))
	assert.True(t, strings.HasSuffix(out.String(), "Program quitting...\n"))
}

func TestExecuteForeverEndsOnCancel(t *testing.T) {
	t.Parallel()

	s := baseSettings()
	s.Run.Mode = 1
	s.Run.Print = 2
	s.Producer.Rate = 1000

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	require.NoError(t, Execute(ctx, s, strings.NewReader(""), &out), "an interrupted run is a clean exit")
	assert.True(t, strings.HasSuffix(out.String(), "Program quitting...\n"))
}

func TestExecuteMetricsListenFailure(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := baseSettings()
	s.Metrics.Enabled = true
	s.Metrics.Listen = ln.Addr().String()

	var out bytes.Buffer
	err = Execute(t.Context(), s, strings.NewReader(""), &out)
	require.Error(t, err)
	assert.NotContains(t, out.String(), "Buffer contents")
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	gen, err := newGenerator(conf.ProducerSettings{Sequence: []string{"abc", "xyz"}})
	require.NoError(t, err)
	assert.Equal(t, "abc", gen.Next().String())
	assert.Equal(t, "xyz", gen.Next().String())
	assert.Equal(t, "abc", gen.Next().String())

	_, err = newGenerator(conf.ProducerSettings{Sequence: []string{"abz"}})
	require.Error(t, err)

	gen, err = newGenerator(conf.ProducerSettings{Seed: 1})
	require.NoError(t, err)
	assert.False(t, gen.Next().IsZero())
}
