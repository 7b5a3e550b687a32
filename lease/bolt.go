package lease

import (
	"context"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var boltBucket = []byte("fluid.instance")

// BoltStore coordinates leases between processes on one host through a
// shared bbolt file. The file is opened with a lock timeout around each
// operation and closed again, so no process holds the file lock for its
// lifetime; all store traffic happens at startup and shutdown anyway.
type BoltStore struct {
	path    string
	mode    os.FileMode
	timeout time.Duration
}

// NewBoltStore verifies the file is usable and creates the bucket. A path
// that cannot be opened fails here, fast.
func NewBoltStore(path string) (*BoltStore, error) {
	s := &BoltStore{path: path, mode: 0o600, timeout: 5 * time.Second}
	err := s.update(func(b *bolt.Bucket) error { return nil })
	if err != nil {
		return nil, errors.Wrapf(err, "lease: opening bolt store %q", path)
	}
	return s, nil
}

func (s *BoltStore) update(fn func(*bolt.Bucket) error) error {
	db, err := bolt.Open(s.path, s.mode, &bolt.Options{Timeout: s.timeout})
	if err != nil {
		return err
	}
	defer db.Close()
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(boltBucket)
		if err != nil {
			return err
		}
		return fn(b)
	})
}

func (s *BoltStore) ListActiveIds(ctx context.Context) ([]uint32, error) {
	var ids []uint32
	err := s.update(func(b *bolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			id, err := strconv.ParseUint(string(k), 10, 32)
			if err != nil {
				return errors.Errorf("lease: foreign key %q in bucket %q of %q", k, boltBucket, s.path)
			}
			ids = append(ids, uint32(id))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *BoltStore) TryCreate(ctx context.Context, id uint32, metadata string) (bool, error) {
	created := false
	err := s.update(func(b *bolt.Bucket) error {
		key := []byte(strconv.FormatUint(uint64(id), 10))
		if b.Get(key) != nil {
			return nil
		}
		if err := b.Put(key, []byte(metadata)); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, errors.Wrapf(err, "lease: creating id %d in %q", id, s.path)
	}
	return created, nil
}

func (s *BoltStore) Delete(ctx context.Context, id uint32) error {
	err := s.update(func(b *bolt.Bucket) error {
		return b.Delete([]byte(strconv.FormatUint(uint64(id), 10)))
	})
	if err != nil {
		return errors.Wrapf(err, "lease: deleting id %d from %q", id, s.path)
	}
	return nil
}
