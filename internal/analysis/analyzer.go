// Package analysis computes the per-product report shown for every transfer:
// vowel counts, primality of the letters' alphabet ordinals and the
// neighbouring letters on either side. Everything here is pure; nothing
// touches the bounded channel.
package analysis

import (
	"github.com/tphakala/prodcon/internal/alphabet"
)

const (
	// LeftWindow is the number of letters reported before k-1.
	LeftWindow = 3
	// RightWindow is the number of letters reported after k+1.
	RightWindow = 4
)

// Labels name the three letters of a product in report order.
var Labels = [alphabet.ProductLen]string{"k-1", "k", "k+1"}

// PrimeCheck is the primality verdict for one letter's ordinal.
type PrimeCheck struct {
	Label string
	Value int
	Prime bool
}

// Report is the analysis of a single product.
type Report struct {
	Product     alphabet.Product
	Vowels      int
	Primes      [alphabet.ProductLen]PrimeCheck
	Left        string
	Right       string
	LeftVowels  int
	RightVowels int
}

// Analyzer produces reports. Implementations must be deterministic.
type Analyzer interface {
	Analyze(p alphabet.Product) Report
}

// ProductAnalyzer is the stateless Analyzer.
type ProductAnalyzer struct{}

// Analyze implements Analyzer.
func (ProductAnalyzer) Analyze(p alphabet.Product) Report {
	return Analyze(p)
}

// Analyze computes the report for p.
func Analyze(p alphabet.Product) Report {
	k := p.Middle()
	r := Report{
		Product: p,
		Vowels:  alphabet.CountVowels(p.String()),
		Left:    window(k-LeftWindow-1, LeftWindow),
		Right:   window(k+2, RightWindow),
	}
	for i := range alphabet.ProductLen {
		n := Ordinal(k - 1 + i)
		r.Primes[i] = PrimeCheck{Label: Labels[i], Value: n, Prime: IsPrime(n)}
	}
	r.LeftVowels = alphabet.CountVowels(r.Left)
	r.RightVowels = alphabet.CountVowels(r.Right)
	return r
}

// Ordinal is pos+1 for an unwrapped position around the centre letter.
// Only the low end wraps: the position before 'a' gives 26, while the one
// after 'z' gives 27.
func Ordinal(pos int) int {
	n := pos + 1
	if n <= 0 {
		n += alphabet.Size
	}
	return n
}

// window returns n letters starting at position from, in ascending order.
func window(from, n int) string {
	buf := make([]byte, n)
	for i := range n {
		buf[i] = alphabet.CharAt(from + i)
	}
	return string(buf)
}
