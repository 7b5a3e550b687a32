package fluid

import (
	"math/rand"
	"sync"
	"time"
)

// Random supplies random bit sequences of a given width.
type Random interface {
	// Bits returns a uniformly random value in [0, 1<<width).
	Bits(width uint) uint64
}

type lockedRand struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (r *lockedRand) Bits(width uint) uint64 {
	if width == 0 {
		return 0
	}
	r.mu.Lock()
	v := r.rnd.Uint64()
	r.mu.Unlock()
	return v >> (64 - width)
}

// NewRandom returns a Random seeded from the current time.
func NewRandom() Random {
	return NewSeededRandom(time.Now().UnixNano())
}

// NewSeededRandom returns a Random with a fixed seed, reproducible for tests.
func NewSeededRandom(seed int64) Random {
	return &lockedRand{rnd: rand.New(rand.NewSource(seed))}
}
