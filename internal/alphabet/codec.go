// Package alphabet maps between positions in the 26-letter lowercase alphabet
// and characters, and defines the Product exchanged by the producer and consumer.
package alphabet

// Letters is the fixed alphabet, indexed by position.
const Letters = "abcdefghijklmnopqrstuvwxyz"

// Size is the number of letters in the alphabet.
const Size = len(Letters)

// PositionOf returns the 0-based position of c. The second result is false
// when c is not a lowercase ASCII letter.
func PositionOf(c byte) (int, bool) {
	if c < 'a' || c > 'z' {
		return 0, false
	}
	return int(c - 'a'), true
}

// CharAt returns the letter at pos, wrapping in both directions so that
// -1 is 'z' and 26 is 'a'.
func CharAt(pos int) byte {
	return Letters[Offset(pos, 0)]
}

// Offset moves pos by delta positions with Euclidean wraparound. The result
// is always in [0, Size).
func Offset(pos, delta int) int {
	return ((pos+delta)%Size + Size) % Size
}

// IsVowel reports whether c is one of a, e, i, o, u. 'y' is not a vowel.
func IsVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// CountVowels counts the vowels in s.
func CountVowels(s string) int {
	n := 0
	for i := range len(s) {
		if IsVowel(s[i]) {
			n++
		}
	}
	return n
}
