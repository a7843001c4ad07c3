package koikoi

import "math/rand"

// Rand is the randomness a shuffle needs. Shuffle and deal take it explicitly
// so that a round can be reproduced bit-for-bit from a shared seed.
type Rand interface {
	Intn(n int) int
}

// seededRand is a splitmix64 generator. Unlike math/rand sources, its output
// for a given seed is fixed by this code alone, which keeps replays stable
// across Go versions and across peers.
type seededRand struct {
	state uint64
}

// NewSeeded returns a deterministic generator for the given seed.
func NewSeeded(seed int64) Rand {
	return &seededRand{state: uint64(seed)}
}

func (that *seededRand) next() uint64 {
	that.state += 0x9E3779B97F4A7C15
	z := that.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (that *seededRand) Intn(n int) int {
	if n <= 0 {
		panic("koikoi: Intn called with non-positive n")
	}
	return int(that.next() % uint64(n))
}

type ambientRand struct{}

func (ambientRand) Intn(n int) int {
	return rand.Intn(n) //nolint: gosec // it's ok
}

// NewAmbient returns the process-level generator. Only the outermost entry
// points fall back to it; everything below takes the generator explicitly.
func NewAmbient() Rand {
	return ambientRand{}
}

func rngFor(seed *int64) Rand {
	if seed != nil {
		return NewSeeded(*seed)
	}
	return NewAmbient()
}
