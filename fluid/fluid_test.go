package fluid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrderedWithStalledClock(t *testing.T) {
	clock := NewSteppedClock(1750000000000)
	g, err := NewWithConfig(7, Config{Clock: clock, Random: NewSeededRandom(1)})
	require.NoError(t, err)

	seen := make(map[int64]bool)
	prev := int64(-1)
	for i := 0; i < 5000; i++ {
		id := g.CreateId()
		require.True(t, id >= 0)
		require.True(t, id > prev, "id %d not above previous %d at call %d", id, prev, i)
		require.False(t, seen[id], "duplicate id %d at call %d", id, i)
		seen[id] = true
		prev = id
	}
}

func TestOrderedWithRegressingClock(t *testing.T) {
	clock := NewSteppedClock(1750000000000)
	g, err := NewWithConfig(1, Config{Clock: clock, Random: NewSeededRandom(2)})
	require.NoError(t, err)

	prev := int64(-1)
	for i := 0; i < 2000; i++ {
		switch i % 5 {
		case 0:
			clock.Advance(3)
		case 2:
			clock.Advance(-40) // clock runs backwards
		default:
			clock.Advance(1)
		}
		id := g.CreateId()
		require.True(t, id >= prev, "id %d below previous %d at call %d", id, prev, i)
		prev = id
	}
}

func TestFieldExhaustionBorrowsNextTick(t *testing.T) {
	clock := NewSteppedClock(1750000000000)
	cfg := Config{
		TimestampBits:       55, // 8 bit field
		InitialRandomBits:   4,
		IncrementRandomBits: 2,
		MaxInstanceID:       3,
		Clock:               clock,
		Random:              NewSeededRandom(3),
	}
	g, err := NewWithConfig(2, cfg)
	require.NoError(t, err)

	first := g.CreateUnsignedId()
	prev := first
	for i := 0; i < 1000; i++ {
		id := g.CreateUnsignedId()
		require.True(t, id > prev)
		prev = id
	}
	// an 8 bit field cannot hold 1000 ids on one tick
	require.True(t, prev>>8 > first>>8, "tick never advanced past exhausted field")
}

func TestNoCollisionsAcrossInstances(t *testing.T) {
	clock := NewSteppedClock(1750000000000)
	rnd := NewSeededRandom(4)

	const instances = 8
	gens := make([]*Generator, instances)
	for i := range gens {
		g, err := NewWithConfig(uint32(i), Config{Clock: clock, Random: rnd})
		require.NoError(t, err)
		gens[i] = g
	}

	seen := make(map[uint64]bool)
	for tick := 0; tick < 2000; tick++ {
		clock.Advance(1)
		for _, g := range gens {
			id := g.CreateUnsignedId()
			require.False(t, seen[id], "collision on id %d", id)
			seen[id] = true
		}
	}
}

func TestDeterministicIsReproducible(t *testing.T) {
	a, err := NewDeterministic(5, 42)
	require.NoError(t, err)
	b, err := NewDeterministic(5, 42)
	require.NoError(t, err)

	prev := int64(-1)
	for i := 0; i < 1000; i++ {
		x, y := a.CreateId(), b.CreateId()
		require.Equal(t, x, y)
		require.True(t, x > prev)
		prev = x
	}
}

func TestConstructionValidation(t *testing.T) {
	_, err := New(256)
	require.Error(t, err, "instance id above default max")

	_, err = NewWithConfig(0, Config{TimestampBits: 20})
	require.Error(t, err, "timestamp bits too narrow")

	_, err = NewWithConfig(0, Config{TimestampBits: 62, MaxInstanceID: 65535})
	require.Error(t, err, "instance id range wider than field")

	_, err = NewWithConfig(0, Config{InitialRandomBits: 40})
	require.Error(t, err, "initial random bits wider than field")

	g, err := New(255)
	require.NoError(t, err)
	require.Equal(t, uint32(255), g.InstanceID())
}

func TestParallelSharedGenerator(t *testing.T) {
	g, err := New(9)
	require.NoError(t, err)

	const workers = 4
	const perWorker = 20000
	results := make([][]uint64, workers)

	done := make(chan int, workers)
	for w := 0; w < workers; w++ {
		w := w
		results[w] = make([]uint64, 0, perWorker)
		go func() {
			for i := 0; i < perWorker; i++ {
				results[w] = append(results[w], g.CreateUnsignedId())
			}
			done <- w
		}()
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	seen := make(map[uint64]bool, workers*perWorker)
	for _, ids := range results {
		prev := uint64(0)
		for _, id := range ids {
			require.True(t, id >= prev, "ids observed by one goroutine must not decrease")
			require.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
			prev = id
		}
	}
}
