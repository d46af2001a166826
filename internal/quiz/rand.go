package quiz

import "math/rand"

// Rand is the source of randomness for shuffling. IntN returns a value in [0, n).
type Rand interface {
	IntN(n int) int
}

type defaultRand struct{}

func (defaultRand) IntN(n int) int {
	return rand.Intn(n)
}

// DefaultRand is safe for concurrent use.
var DefaultRand Rand = defaultRand{}

// Shuffle permutes items in place with Fisher–Yates, walking from the last index down.
func Shuffle[T any](r Rand, items []T) {
	if r == nil {
		r = DefaultRand
	}
	for i := len(items) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}
