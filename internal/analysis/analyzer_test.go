package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/prodcon/internal/alphabet"
)

func TestIsPrime(t *testing.T) {
	t.Parallel()

	primes := map[int]bool{2: true, 3: true, 5: true, 7: true, 11: true, 13: true, 17: true, 19: true, 23: true, 29: true}
	for n := -3; n <= 30; n++ {
		assert.Equal(t, primes[n], IsPrime(n), "n=%d", n)
	}
	assert.True(t, IsPrime(7919))
	assert.False(t, IsPrime(7917))
}

func TestAnalyzeGHI(t *testing.T) {
	t.Parallel()

	p, err := alphabet.ParseProduct("ghi")
	require.NoError(t, err)

	r := Analyze(p)
	assert.Equal(t, p, r.Product)
	assert.Equal(t, 1, r.Vowels)
	assert.Equal(t, "def", r.Left)
	assert.Equal(t, "jklm", r.Right)
	assert.Equal(t, 1, r.LeftVowels)
	assert.Equal(t, 0, r.RightVowels)

	want := [alphabet.ProductLen]PrimeCheck{
		{Label: "k-1", Value: 7, Prime: true},
		{Label: "k", Value: 8, Prime: false},
		{Label: "k+1", Value: 9, Prime: false},
	}
	assert.Equal(t, want, r.Primes)
}

func TestAnalyzeWrapsAroundAlphabet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		product string
		left    string
		right   string
		values  [3]int
	}{
		{"zab", "wxy", "cdef", [3]int{26, 1, 2}},
		{"abc", "xyz", "defg", [3]int{1, 2, 3}},
		{"xyz", "uvw", "abcd", [3]int{24, 25, 26}},
		{"yza", "vwx", "bcde", [3]int{25, 26, 27}},
	}
	for _, tt := range tests {
		t.Run(tt.product, func(t *testing.T) {
			t.Parallel()
			p, err := alphabet.ParseProduct(tt.product)
			require.NoError(t, err)

			r := Analyze(p)
			assert.Equal(t, tt.left, r.Left)
			assert.Equal(t, tt.right, r.Right)
			for i, v := range tt.values {
				assert.Equal(t, v, r.Primes[i].Value)
				assert.Equal(t, IsPrime(v), r.Primes[i].Prime)
			}
		})
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	t.Parallel()

	var a ProductAnalyzer
	for k := range alphabet.Size {
		p := alphabet.NewProduct(k)
		assert.Equal(t, a.Analyze(p), a.Analyze(p))
		assert.Len(t, a.Analyze(p).Left, LeftWindow)
		assert.Len(t, a.Analyze(p).Right, RightWindow)
	}
}

func TestCachedAnalyzer(t *testing.T) {
	t.Parallel()

	c := NewCachedAnalyzer(nil)
	p := alphabet.NewProduct(4)

	first := c.Analyze(p)
	second := c.Analyze(p)
	assert.Equal(t, first, second)
	assert.Equal(t, Analyze(p), first)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)

	for k := range alphabet.Size {
		c.Analyze(alphabet.NewProduct(k))
	}
	assert.Equal(t, alphabet.Size, c.Stats().Entries)
}
