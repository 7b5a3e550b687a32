package lease

import (
	"path"
	"strconv"

	"github.com/coreos/etcd/client"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

// EtcdConfig holds the connection settings for an etcd-backed store.
type EtcdConfig struct {
	Endpoints []string
	UserName  string
	Password  string

	// Prefix is the key path of the bounded context, e.g. "/fluid/myapp".
	Prefix string
}

// EtcdStore coordinates leases through an etcd directory. One record per
// instance id; create-if-absent maps onto PrevExist=false.
type EtcdStore struct {
	cfg        *EtcdConfig
	etcdClient client.Client
	etcdAPI    client.KeysAPI
}

// NewEtcdStore connects and pings etcd. An unreachable store fails here,
// fast, because no id can be safely generated without it.
func NewEtcdStore(cfg *EtcdConfig) (*EtcdStore, error) {
	etcdCfg := client.Config{
		Endpoints: cfg.Endpoints,
		Username:  cfg.UserName,
		Password:  cfg.Password,
	}
	c, err := client.New(etcdCfg)
	if err != nil {
		return nil, errors.Wrap(err, "lease: etcd client")
	}
	s := &EtcdStore{
		cfg:        cfg,
		etcdClient: c,
		etcdAPI:    client.NewKeysAPI(c),
	}
	if _, err := c.GetVersion(context.Background()); err != nil {
		return nil, errors.Wrapf(err, "lease: etcd unreachable at %v", cfg.Endpoints)
	}
	return s, nil
}

func (s *EtcdStore) dir() string {
	return s.cfg.Prefix + "/instance"
}

func (s *EtcdStore) key(id uint32) string {
	return s.dir() + "/" + strconv.FormatUint(uint64(id), 10)
}

func (s *EtcdStore) ListActiveIds(ctx context.Context) ([]uint32, error) {
	r, err := s.etcdAPI.Get(ctx, s.dir(), &client.GetOptions{Sort: true})
	if err != nil {
		if client.IsKeyNotFound(err) {
			// directory appears on first create
			return nil, nil
		}
		return nil, errors.Wrapf(err, "lease: listing %q", s.dir())
	}
	ids := make([]uint32, 0, len(r.Node.Nodes))
	for _, node := range r.Node.Nodes {
		if node.Dir {
			return nil, errors.Errorf("lease: foreign directory %q under %q", node.Key, s.dir())
		}
		id, err := strconv.ParseUint(path.Base(node.Key), 10, 32)
		if err != nil {
			return nil, errors.Errorf("lease: foreign key %q under %q", node.Key, s.dir())
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

func (s *EtcdStore) TryCreate(ctx context.Context, id uint32, metadata string) (bool, error) {
	_, err := s.etcdAPI.Set(ctx, s.key(id), metadata, &client.SetOptions{PrevExist: client.PrevNoExist})
	if err != nil {
		if isNodeExist(err) {
			// create conflict, caller retries
			return false, nil
		}
		return false, errors.Wrapf(err, "lease: creating %q", s.key(id))
	}
	return true, nil
}

func (s *EtcdStore) Delete(ctx context.Context, id uint32) error {
	_, err := s.etcdAPI.Delete(ctx, s.key(id), nil)
	if err != nil && !client.IsKeyNotFound(err) {
		return errors.Wrapf(err, "lease: deleting %q", s.key(id))
	}
	return nil
}

func isNodeExist(err error) bool {
	if cErr, ok := err.(client.Error); ok {
		return cErr.Code == client.ErrorCodeNodeExist
	}
	return false
}
