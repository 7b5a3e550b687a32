package main

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cnwinds/fluid/client"
	"github.com/cnwinds/fluid/lease"
	"github.com/cnwinds/fluid/server"
)

func startTestServer(t *testing.T, store lease.Store) *server.Server {
	t.Helper()
	mgr, err := lease.NewManager(lease.Config{Store: store, App: "test"})
	require.NoError(t, err)

	svr, err := server.StartServer(&server.Config{
		ListenAddress: "127.0.0.1:0",
		Source:        mgr,
	})
	require.NoError(t, err)
	return svr
}

func TestServerClientRoundTrip(t *testing.T) {
	store := lease.NewMemoryStore()
	svr := startTestServer(t, store)
	defer svr.Stop()

	c, err := client.NewClient(&client.Config{Endpoint: svr.Addr().String(), IsPrefetch: true})
	require.NoError(t, err)
	defer c.Close()

	seen := make(map[int64]bool)
	prev := int64(-1)
	for i := 0; i < 20000; i++ {
		id, err := c.CreateId()
		require.NoError(t, err)
		require.True(t, id >= 0)
		require.True(t, id > prev, "ids from one client must arrive in order")
		require.False(t, seen[id])
		seen[id] = true
		prev = id
	}
}

func TestParallelClients(t *testing.T) {
	store := lease.NewMemoryStore()
	svr := startTestServer(t, store)
	defer svr.Stop()

	c, err := client.NewClient(&client.Config{Endpoint: svr.Addr().String(), IsPrefetch: false, NeedCount: 500})
	require.NoError(t, err)
	defer c.Close()

	const workers = 4
	const perWorker = 10000
	results := make([][]int64, workers)
	errs := make([]error, workers)

	var w sync.WaitGroup
	w.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		results[i] = make([]int64, 0, perWorker)
		go func() {
			defer w.Done()
			for n := 0; n < perWorker; n++ {
				id, err := c.CreateId()
				if err != nil {
					errs[i] = err
					return
				}
				results[i] = append(results[i], id)
			}
		}()
	}
	w.Wait()

	seen := make(map[int64]bool, workers*perWorker)
	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		for _, id := range results[i] {
			require.False(t, seen[id], "duplicate id %d", id)
			seen[id] = true
		}
	}
}

func TestServerStopReleasesLease(t *testing.T) {
	store := lease.NewMemoryStore()
	svr := startTestServer(t, store)

	ids, err := store.ListActiveIds(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint32{1}, ids, "server must hold the first leased id")

	svr.Stop()

	ids, err = store.ListActiveIds(context.Background())
	require.NoError(t, err)
	require.Empty(t, ids, "stopping the server must release its lease")
}
