package alphabet

import (
	"math/rand/v2"

	"github.com/tphakala/prodcon/internal/errors"
)

// Generator supplies the producer with new products. Implementations are
// used from a single goroutine and need not be safe for concurrent use.
type Generator interface {
	Next() Product
}

// RandomGenerator draws the centre position uniformly from the alphabet.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator creates a generator. A zero seed draws a random seed.
func NewRandomGenerator(seed uint64) *RandomGenerator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &RandomGenerator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns a random product.
func (g *RandomGenerator) Next() Product {
	return NewProduct(g.rng.IntN(Size))
}

// ScriptedGenerator replays a fixed list of products, cycling when exhausted.
// It is how runs manufacture a known stop sequence.
type ScriptedGenerator struct {
	products []Product
	next     int
}

// NewScriptedGenerator builds a generator from product strings such as "abc".
func NewScriptedGenerator(sequence []string) (*ScriptedGenerator, error) {
	if len(sequence) == 0 {
		return nil, errors.Newf("scripted sequence is empty").
			Component("alphabet").
			Category(errors.CategoryValidation).
			Build()
	}
	products := make([]Product, 0, len(sequence))
	for _, s := range sequence {
		p, err := ParseProduct(s)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return &ScriptedGenerator{products: products}, nil
}

// Next returns the next scripted product.
func (g *ScriptedGenerator) Next() Product {
	p := g.products[g.next]
	g.next = (g.next + 1) % len(g.products)
	return p
}
