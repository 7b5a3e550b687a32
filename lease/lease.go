// Package lease hands each process a small unique integer, coordinated
// through a durable store shared by every process in one bounded context.
// A record's existence alone means "in use"; there is no heartbeat.
package lease

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cnwinds/fluid/util"
)

var (
	// ErrExhausted reports that every acquisition attempt lost the
	// create-if-absent race.
	ErrExhausted = errors.New("lease: acquisition attempts exhausted")

	// ErrNotDurable reports a store that forgot a probe record between two
	// round trips, typically a throwaway in-memory connection that resets
	// per call. Generating ids against such a store is unsafe.
	ErrNotDurable = errors.New("lease: store did not retain records between round trips")

	// ErrRangeFull reports that every id up to MaxID is taken.
	ErrRangeFull = errors.New("lease: no free instance id in range")

	errConflict = errors.New("lease: instance id conflict")
)

// Source yields the process's instance id. Manager implements it against a
// shared store; Static implements it from configuration.
type Source interface {
	Acquire(ctx context.Context) (uint32, error)
	Release(ctx context.Context) error
}

// Metadata is recorded alongside a lease for diagnosis only; generation
// logic never reads it.
type Metadata struct {
	App       string    `json:"app,omitempty"`
	Host      string    `json:"host,omitempty"`
	Container string    `json:"container,omitempty"`
	PID       int       `json:"pid"`
	Token     string    `json:"token,omitempty"`
	Created   time.Time `json:"created"`
}

func (m Metadata) encode() string {
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

// Config configures a Manager. Store is required; everything else has a
// default.
type Config struct {
	Store       Store
	App         string
	MinID       uint32 // first id handed out, default 1
	MaxID       uint32 // default 65535
	MaxAttempts int    // bound on acquisition retries, default 10
	SkipVerify  bool   // skip the durability probe
	Logger      logrus.FieldLogger
}

// Manager acquires and releases one instance id for the lifetime of the
// process.
type Manager struct {
	cfg   Config
	store Store

	mu       sync.Mutex
	held     uint32
	acquired bool
	released bool
}

func NewManager(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, errors.New("lease: no store configured")
	}
	if cfg.MinID == 0 {
		cfg.MinID = 1
	}
	if cfg.MaxID == 0 {
		cfg.MaxID = 65535
	}
	if cfg.MaxID < cfg.MinID {
		return nil, errors.Errorf("lease: max id %d below min id %d", cfg.MaxID, cfg.MinID)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 10
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Manager{cfg: cfg, store: cfg.Store}, nil
}

// Acquire runs the acquisition protocol once: list active ids, claim the
// lowest gap, retry on conflict. It must be called a single time, at startup.
func (m *Manager) Acquire(ctx context.Context) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.acquired {
		return 0, errors.Errorf("lease: instance id %d already held", m.held)
	}

	if !m.cfg.SkipVerify {
		if err := m.verifyStore(ctx); err != nil {
			return 0, err
		}
	}

	meta := m.metadata("")
	op := func() error {
		ids, err := m.store.ListActiveIds(ctx)
		if err != nil {
			return backoff.Permanent(errors.Wrap(err, "lease: listing active ids"))
		}
		candidate, err := lowestGap(ids, m.cfg.MinID, m.cfg.MaxID)
		if err != nil {
			return backoff.Permanent(err)
		}
		ok, err := m.store.TryCreate(ctx, candidate, meta)
		if err != nil {
			return backoff.Permanent(errors.Wrapf(err, "lease: creating record for id %d", candidate))
		}
		if !ok {
			// another process raced to the same id, re-list
			return errConflict
		}
		m.held = candidate
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(newAcquireBackOff(), uint64(m.cfg.MaxAttempts-1)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		if errors.Is(err, errConflict) {
			return 0, errors.Wrapf(ErrExhausted, "after %d attempts", m.cfg.MaxAttempts)
		}
		return 0, err
	}

	m.acquired = true
	m.cfg.Logger.WithField("instanceid", m.held).Info("instance id leased")
	return m.held, nil
}

// Release deletes the lease record. It is idempotent; failures are logged
// and returned, but the worst case is a temporarily orphaned lease.
func (m *Manager) Release(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.acquired || m.released {
		return nil
	}
	if err := m.store.Delete(ctx, m.held); err != nil {
		m.cfg.Logger.WithField("instanceid", m.held).WithError(err).
			Warn("instance id release failed, lease orphaned until reclaimed")
		return errors.Wrapf(err, "lease: releasing id %d", m.held)
	}
	m.released = true
	m.cfg.Logger.WithField("instanceid", m.held).Info("instance id released")
	return nil
}

// InstanceID returns the held id, if any.
func (m *Manager) InstanceID() (uint32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.held, m.acquired && !m.released
}

// verifyStore writes a probe record above the leasable range and lists it
// back. A store that drops it resets between round trips and is rejected.
func (m *Manager) verifyStore(ctx context.Context) error {
	token := uuid.New().String()
	meta := m.metadata(token)

	for attempt := 0; attempt < 3; attempt++ {
		probe := m.cfg.MaxID + 1 + uint32(rand.Intn(1<<16))
		ok, err := m.store.TryCreate(ctx, probe, meta)
		if err != nil {
			return errors.Wrap(err, "lease: store unreachable during verification")
		}
		if !ok {
			// another process is probing the same slot
			continue
		}
		ids, err := m.store.ListActiveIds(ctx)
		if err != nil {
			return errors.Wrap(err, "lease: store unreachable during verification")
		}
		found := false
		for _, id := range ids {
			if id == probe {
				found = true
				break
			}
		}
		if derr := m.store.Delete(ctx, probe); derr != nil {
			m.cfg.Logger.WithError(derr).Warn("probe record cleanup failed")
		}
		if !found {
			return ErrNotDurable
		}
		return nil
	}
	return errors.New("lease: could not place a verification probe")
}

func (m *Manager) metadata(token string) string {
	host, _ := os.Hostname()
	return Metadata{
		App:       m.cfg.App,
		Host:      host,
		Container: util.GetContainerName(),
		PID:       os.Getpid(),
		Token:     token,
		Created:   time.Now().UTC(),
	}.encode()
}

// lowestGap returns the smallest id in [min, max] absent from ids, which
// compacts reuse of ids vacated by departed processes.
func lowestGap(ids []uint32, min, max uint32) (uint32, error) {
	active := make(map[uint32]bool, len(ids))
	for _, id := range ids {
		active[id] = true
	}
	for id := min; id <= max; id++ {
		if !active[id] {
			return id, nil
		}
	}
	return 0, errors.Wrapf(ErrRangeFull, "%d-%d", min, max)
}

func newAcquireBackOff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 20 * time.Millisecond
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = 0
	return bo
}

type staticSource uint32

// Static returns a Source that always yields id, for single-instance
// deployments where no shared store exists.
func Static(id uint32) Source {
	return staticSource(id)
}

func (s staticSource) Acquire(ctx context.Context) (uint32, error) {
	return uint32(s), nil
}

func (s staticSource) Release(ctx context.Context) error {
	return nil
}
