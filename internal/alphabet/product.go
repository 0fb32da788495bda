package alphabet

import (
	"strings"

	"github.com/tphakala/prodcon/internal/errors"
)

// ProductLen is the number of letters in every Product.
const ProductLen = 3

// Product is three consecutive letters k-1, k, k+1 with wraparound.
// It is a value type and therefore immutable once created. The zero
// value is the empty product, used before the first transfer.
type Product [ProductLen]byte

// NewProduct returns the product centred on position k.
func NewProduct(k int) Product {
	return Product{CharAt(k - 1), CharAt(k), CharAt(k + 1)}
}

// ParseProduct validates s as a product: three lowercase letters at
// consecutive alphabet positions.
func ParseProduct(s string) (Product, error) {
	if len(s) != ProductLen {
		return Product{}, errors.Newf("product %q must have exactly %d letters", s, ProductLen).
			Component("alphabet").
			Category(errors.CategoryValidation).
			Build()
	}
	k, ok := PositionOf(s[1])
	if !ok {
		return Product{}, errors.Newf("product %q contains a non-lowercase letter", s).
			Component("alphabet").
			Category(errors.CategoryValidation).
			Build()
	}
	p := NewProduct(k)
	if p.String() != s {
		return Product{}, errors.Newf("product %q is not a k-1, k, k+1 sequence", s).
			Component("alphabet").
			Category(errors.CategoryValidation).
			Context("expected", p.String()).
			Build()
	}
	return p, nil
}

// StopSequence derives the product centred on the letter k. Upper-case
// input is accepted and folded to lower case.
func StopSequence(k string) (Product, error) {
	k = strings.TrimSpace(k)
	if len(k) != 1 {
		return Product{}, errors.Newf("stop character must be a single letter, got %q", k).
			Component("alphabet").
			Category(errors.CategoryValidation).
			Build()
	}
	pos, ok := PositionOf(strings.ToLower(k)[0])
	if !ok {
		return Product{}, errors.Newf("stop character %q is not between 'a' and 'z'", k).
			Component("alphabet").
			Category(errors.CategoryValidation).
			Build()
	}
	return NewProduct(pos), nil
}

// Middle returns the position of the centre letter k.
func (p Product) Middle() int {
	pos, _ := PositionOf(p[1])
	return pos
}

// IsZero reports whether p is the empty product.
func (p Product) IsZero() bool {
	return p == Product{}
}

// String returns the three letters, or "" for the empty product.
func (p Product) String() string {
	if p.IsZero() {
		return ""
	}
	return string(p[:])
}
