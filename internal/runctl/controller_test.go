package runctl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/prodcon/internal/alphabet"
	"github.com/tphakala/prodcon/internal/errors"
	"github.com/tphakala/prodcon/internal/logger"
)

func newController(t *testing.T, p Policy) *Controller {
	t.Helper()
	c, err := New(p, logger.Discard())
	require.NoError(t, err)
	return c
}

func TestPolicyValidation(t *testing.T) {
	t.Parallel()

	lmn := alphabet.NewProduct(12)
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"forever", Policy{Mode: ModeForever, Print: PrintBoth}, false},
		{"sequence", Policy{Mode: ModeUntilSequence, Print: PrintProducer, Target: lmn}, false},
		{"sequence without target", Policy{Mode: ModeUntilSequence, Print: PrintProducer}, true},
		{"exactly n", Policy{Mode: ModeExactlyN, Print: PrintConsumer, Limit: 1}, false},
		{"zero count", Policy{Mode: ModeExactlyN, Print: PrintConsumer}, true},
		{"negative count", Policy{Mode: ModeExactlyN, Print: PrintConsumer, Limit: -2}, true},
		{"bad mode", Policy{Mode: 4, Print: PrintBoth}, true},
		{"bad print", Policy{Mode: ModeForever, Print: 0}, true},
		{"bad count-by", Policy{Mode: ModeForever, Print: PrintBoth, CountBy: "everyone"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.policy, logger.Discard())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestParseCountBy(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]CountBy{
		"":          CountAuto,
		"auto":      CountAuto,
		"Producer":  CountProducer,
		" consumer": CountConsumer,
		"SHARED":    CountShared,
	} {
		got, err := ParseCountBy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCountBy("both")
	assert.Error(t, err)
}

func TestForeverNeverStops(t *testing.T) {
	t.Parallel()

	c := newController(t, Policy{Mode: ModeForever, Print: PrintBoth})
	for k := range 1000 {
		p := alphabet.NewProduct(k)
		assert.True(t, c.Continue(RoleProducer, p))
		assert.True(t, c.Continue(RoleConsumer, p))
	}
	assert.Equal(t, StateRunning, c.State())
	assert.Equal(t, 0, c.Iterations())
	_, stopped := c.StoppedBy()
	assert.False(t, stopped)
}

func TestExactlyNCountsOnlyTheCountingRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		print    PrintMode
		countBy  CountBy
		counting Role
		other    Role
	}{
		{"auto producer only", PrintProducer, CountAuto, RoleProducer, RoleConsumer},
		{"auto consumer only", PrintConsumer, CountAuto, RoleConsumer, RoleProducer},
		{"auto both", PrintBoth, CountAuto, RoleProducer, RoleConsumer},
		{"explicit consumer", PrintBoth, CountConsumer, RoleConsumer, RoleProducer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newController(t, Policy{Mode: ModeExactlyN, Limit: 3, Print: tt.print, CountBy: tt.countBy})
			for range 3 {
				assert.True(t, c.Continue(tt.other, alphabet.Product{}))
				assert.True(t, c.Continue(tt.counting, alphabet.Product{}))
			}
			assert.Equal(t, 3, c.Iterations())
			assert.False(t, c.Continue(tt.counting, alphabet.Product{}))

			role, stopped := c.StoppedBy()
			require.True(t, stopped)
			assert.Equal(t, tt.counting, role)
			assert.False(t, c.Continue(tt.counting, alphabet.Product{}))
		})
	}
}

func TestProducerStopLetsConsumerDrain(t *testing.T) {
	t.Parallel()

	c := newController(t, Policy{Mode: ModeExactlyN, Limit: 1, Print: PrintBoth})
	require.True(t, c.Continue(RoleProducer, alphabet.Product{}))
	require.False(t, c.Continue(RoleProducer, alphabet.NewProduct(1)))

	assert.Equal(t, StateStopped, c.State())
	assert.True(t, c.Continue(RoleConsumer, alphabet.NewProduct(1)))
	assert.False(t, c.Continue(RoleProducer, alphabet.NewProduct(1)))
}

func TestConsumerStopEndsBoth(t *testing.T) {
	t.Parallel()

	c := newController(t, Policy{Mode: ModeExactlyN, Limit: 1, Print: PrintConsumer})
	require.True(t, c.Continue(RoleConsumer, alphabet.Product{}))
	require.False(t, c.Continue(RoleConsumer, alphabet.NewProduct(1)))

	assert.False(t, c.Continue(RoleProducer, alphabet.NewProduct(2)))
	assert.False(t, c.Continue(RoleConsumer, alphabet.NewProduct(2)))
}

func TestUntilSequenceStopsOnTarget(t *testing.T) {
	t.Parallel()

	target, err := alphabet.StopSequence("m")
	require.NoError(t, err)
	c := newController(t, Policy{Mode: ModeUntilSequence, Target: target, Print: PrintBoth})

	assert.True(t, c.Continue(RoleProducer, alphabet.Product{}))
	assert.True(t, c.Continue(RoleProducer, alphabet.NewProduct(3)))
	// The consumer does not observe under auto with both printing.
	assert.True(t, c.Continue(RoleConsumer, target))
	assert.Equal(t, StateRunning, c.State())

	assert.False(t, c.Continue(RoleProducer, target))
	role, stopped := c.StoppedBy()
	require.True(t, stopped)
	assert.Equal(t, RoleProducer, role)
}

func TestHaltIsOneWay(t *testing.T) {
	t.Parallel()

	c := newController(t, Policy{Mode: ModeForever, Print: PrintBoth})
	c.Halt(RoleConsumer)
	c.Halt(RoleProducer)

	role, stopped := c.StoppedBy()
	require.True(t, stopped)
	assert.Equal(t, RoleConsumer, role)
	assert.False(t, c.Continue(RoleProducer, alphabet.Product{}))
}

func TestSharedCounterIsSynchronized(t *testing.T) {
	t.Parallel()

	const limit = 500
	c := newController(t, Policy{Mode: ModeExactlyN, Limit: limit, Print: PrintBoth, CountBy: CountShared})

	var mu sync.Mutex
	granted := 0
	var wg sync.WaitGroup
	for _, role := range Roles {
		wg.Go(func() {
			for c.Continue(role, alphabet.Product{}) {
				mu.Lock()
				granted++
				mu.Unlock()
				if role == RoleConsumer && c.State() == StateStopped {
					return
				}
			}
		})
	}
	wg.Wait()

	// Every increment up to the limit is granted exactly once. A consumer
	// that keeps draining after a producer stop adds at most one more grant.
	assert.GreaterOrEqual(t, granted, limit)
	assert.LessOrEqual(t, granted, limit+1)
	assert.Equal(t, StateStopped, c.State())
}
