// Package client consumes identifiers from a fluid server in prefetched
// batches, so most calls never touch the network.
package client

import (
	"context"
	"sync"

	"google.golang.org/grpc"

	"github.com/cnwinds/fluid/api"
)

type Config struct {
	Endpoint   string
	IsPrefetch bool
	NeedCount  int // ids fetched per round trip, default 1000
}

type Client struct {
	cfg  *Config
	conn *grpc.ClientConn
	api  api.FluidClient

	takeLock   sync.Mutex
	fetchLock  sync.Mutex
	isFetching bool
	ids        []int64
}

func NewClient(cfg *Config) (client *Client, err error) {
	client = &Client{cfg: cfg}
	if client.cfg.NeedCount == 0 {
		client.cfg.NeedCount = 1000
	}
	client.conn, err = grpc.Dial(client.cfg.Endpoint, grpc.WithInsecure())
	if err != nil {
		return nil, err
	}
	client.api = api.NewFluidClient(client.conn)
	return client, nil
}

// CreateId returns the next identifier from the local batch, fetching a new
// batch from the server when it runs dry.
func (c *Client) CreateId() (int64, error) {
	for {
		c.takeLock.Lock()
		if len(c.ids) > 0 {
			id := c.ids[0]
			c.ids = c.ids[1:]

			// fetch data in advance
			if c.cfg.IsPrefetch && !c.isFetching && len(c.ids) < c.cfg.NeedCount/2 {
				c.isFetching = true
				go c.fetchAndInsert()
			}
			c.takeLock.Unlock()
			return id, nil
		}
		c.takeLock.Unlock()

		if err := c.fetchAndInsert(); err != nil {
			return 0, err
		}
	}
}

// CreateUnsignedId returns the identical bit pattern unsigned.
func (c *Client) CreateUnsignedId() (uint64, error) {
	id, err := c.CreateId()
	return uint64(id), err
}

func (c *Client) fetchAndInsert() error {
	c.fetchLock.Lock()
	defer c.fetchLock.Unlock()

	c.takeLock.Lock()
	if len(c.ids) >= c.cfg.NeedCount/2 {
		c.isFetching = false
		c.takeLock.Unlock()
		return nil
	}
	c.takeLock.Unlock()

	resp, err := c.api.Fetch(context.Background(), &api.FetchRequest{NeedCount: int32(c.cfg.NeedCount)})
	if err != nil {
		c.takeLock.Lock()
		c.isFetching = false
		c.takeLock.Unlock()
		return err
	}

	c.takeLock.Lock()
	c.ids = append(c.ids, resp.Ids...)
	c.isFetching = false
	c.takeLock.Unlock()
	return nil
}

func (c *Client) Close() {
	c.conn.Close()
	c.ids = nil
}
