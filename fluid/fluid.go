// Package fluid generates 64-bit time-ordered identifiers without
// coordination between the processes that mint them.
package fluid

import (
	"fmt"
	"math/bits"
	"sync"
	"time"
)

const (
	// DefaultTimestampBits gives about 69 years of headroom from the epoch.
	DefaultTimestampBits = 41

	// DefaultInitialRandomBits is the width of the fresh random value mixed
	// into the low field on every new millisecond.
	DefaultInitialRandomBits = 14

	// DefaultIncrementRandomBits is the width of the random delta added when
	// the clock stalls or regresses.
	DefaultIncrementRandomBits = 6

	// DefaultMaxInstanceID bounds the instance id to 8 bits.
	DefaultMaxInstanceID = 255
)

// DefaultEpoch is 2024-01-01T00:00:00Z.
var DefaultEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Config controls the bit layout and the time/random sources of a Generator.
// The zero value selects the defaults.
//
// Identifier format with the defaults:
//
//	0            0.....................0	0......0 0............0
//	1bit sign    41bit milliseconds    	8bit instanceID 14bit random
//
// The low field is 63-TimestampBits wide and holds the instance id xor-mixed
// with InitialRandomBits of randomness. While InitialRandomBits does not reach
// the bits occupied by the instance id, two instances can never collide within
// one millisecond; widening it past that boundary trades the hard guarantee
// for more increment headroom, and collision probability is then governed by
// the random width against the number of concurrently active instances.
type Config struct {
	TimestampBits       uint
	InitialRandomBits   uint
	IncrementRandomBits uint
	MaxInstanceID       uint32
	Epoch               time.Time
	Clock               Clock
	Random              Random
}

func (c Config) withDefaults() Config {
	if c.TimestampBits == 0 {
		c.TimestampBits = DefaultTimestampBits
	}
	if c.InitialRandomBits == 0 {
		c.InitialRandomBits = DefaultInitialRandomBits
	}
	if c.IncrementRandomBits == 0 {
		c.IncrementRandomBits = DefaultIncrementRandomBits
	}
	if c.MaxInstanceID == 0 {
		c.MaxInstanceID = DefaultMaxInstanceID
	}
	if c.Epoch.IsZero() {
		c.Epoch = DefaultEpoch
	}
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.Random == nil {
		c.Random = NewRandom()
	}
	return c
}

// Generator emits time-ordered 64-bit identifiers. One generator is built per
// process at startup and shared; all calls are serialized internally.
type Generator struct {
	mu       sync.Mutex
	clock    Clock
	random   Random
	epochMS  int64
	instance uint32

	fieldBits uint
	initBits  uint
	incrBits  uint
	tickMask  int64
	fieldMask uint64
	idSeed    uint64

	lastTick int64
	field    uint64
}

// New builds a Generator with the default configuration.
func New(instanceID uint32) (*Generator, error) {
	return NewWithConfig(instanceID, Config{})
}

// NewWithConfig validates cfg once; generation itself never fails.
func NewWithConfig(instanceID uint32, cfg Config) (*Generator, error) {
	cfg = cfg.withDefaults()

	fieldBits := 63 - cfg.TimestampBits
	if cfg.TimestampBits < 32 || cfg.TimestampBits > 62 {
		return nil, fmt.Errorf("fluid: timestamp bits %d out of range [32, 62]", cfg.TimestampBits)
	}
	idBits := uint(bits.Len32(cfg.MaxInstanceID))
	if idBits > fieldBits {
		return nil, fmt.Errorf("fluid: instance id range 0-%d does not fit in a %d bit field", cfg.MaxInstanceID, fieldBits)
	}
	if cfg.InitialRandomBits > fieldBits {
		return nil, fmt.Errorf("fluid: initial random bits %d exceed field width %d", cfg.InitialRandomBits, fieldBits)
	}
	if cfg.IncrementRandomBits > cfg.InitialRandomBits {
		return nil, fmt.Errorf("fluid: increment random bits %d exceed initial random bits %d", cfg.IncrementRandomBits, cfg.InitialRandomBits)
	}
	if instanceID > cfg.MaxInstanceID {
		return nil, fmt.Errorf("fluid: instance id %d out of range 0-%d", instanceID, cfg.MaxInstanceID)
	}

	g := &Generator{
		clock:     cfg.Clock,
		random:    cfg.Random,
		epochMS:   cfg.Epoch.UnixMilli(),
		instance:  instanceID,
		fieldBits: fieldBits,
		initBits:  cfg.InitialRandomBits,
		incrBits:  cfg.IncrementRandomBits,
		tickMask:  int64(1)<<cfg.TimestampBits - 1,
		fieldMask: uint64(1)<<fieldBits - 1,
		idSeed:    uint64(instanceID) << (fieldBits - idBits),
		lastTick:  -1,
	}
	return g, nil
}

// NewDeterministic builds a generator driven by a counting clock and a seeded
// random source. It keeps every ordering and uniqueness invariant but its
// identifiers carry no wall-clock meaning; it exists for reproducible tests.
func NewDeterministic(instanceID uint32, seed int64) (*Generator, error) {
	return NewWithConfig(instanceID, Config{
		Epoch:  time.UnixMilli(0),
		Clock:  &countingClock{},
		Random: NewSeededRandom(seed),
	})
}

// InstanceID returns the instance id the generator was seeded with.
func (g *Generator) InstanceID() uint32 {
	return g.instance
}

// CreateId returns the next identifier as a non-negative signed value.
// Successive results from one generator never decrease, even when the clock
// stalls or runs backwards.
func (g *Generator) CreateId() int64 {
	return int64(g.next())
}

// CreateUnsignedId returns the identical bit pattern as an unsigned value.
func (g *Generator) CreateUnsignedId() uint64 {
	return g.next()
}

func (g *Generator) next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	tick := g.clock.Now() - g.epochMS
	if tick < 0 {
		tick = 0
	}
	tick &= g.tickMask

	if tick > g.lastTick {
		g.lastTick = tick
		g.field = g.reset()
	} else {
		// stalled or regressing clock: grow the field instead
		delta := 1 + g.random.Bits(g.incrBits)
		field := g.field + delta
		if field > g.fieldMask {
			// field exhausted, borrow the next tick
			g.lastTick++
			g.field = g.reset()
		} else {
			g.field = field
		}
	}

	return uint64(g.lastTick)<<g.fieldBits | g.field
}

func (g *Generator) reset() uint64 {
	return (g.idSeed ^ g.random.Bits(g.initBits)) & g.fieldMask
}
