package rpcutil

import (
	"context"
	"sync"
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

type mockConn struct {
	mu     sync.Mutex
	closed map[string]int
	addr   string
}

func (c *mockConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed[c.addr]++
	return nil
}

type mockRPCClient struct {
	addr string
}

type mockDialer struct {
	mu     sync.Mutex
	dialed map[string]int
	closed map[string]int
	fail   map[string]bool
}

func newMockDialer() *mockDialer {
	return &mockDialer{
		dialed: make(map[string]int),
		closed: make(map[string]int),
		fail:   make(map[string]bool),
	}
}

func (d *mockDialer) dial(_ context.Context, addr string) (*ClientHolder[*mockRPCClient], error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail[addr] {
		return nil, errors.New("mock dial fail")
	}
	d.dialed[addr]++
	conn := &mockConn{closed: d.closed, addr: addr}
	return NewClientHolder(conn, &mockRPCClient{addr: addr}), nil
}

func TestClientPoolUpdateClients(t *testing.T) {
	ctx := context.Background()
	dialer := newMockDialer()
	pool := NewClientPool(dialer.dial)

	pool.UpdateClients(ctx, []string{"url1", "url2"})
	require.Equal(t, 2, pool.Size())

	cli, err := pool.Get(ctx, "url1")
	require.NoError(t, err)
	require.Equal(t, "url1", cli.addr)
	require.Equal(t, 1, dialer.dialed["url1"])

	pool.UpdateClients(ctx, []string{"url2", "url3"})
	require.Equal(t, 2, pool.Size())
	require.Equal(t, 1, dialer.closed["url1"])
	require.Equal(t, 0, dialer.closed["url2"])
	require.Equal(t, 1, dialer.dialed["url2"])

	pool.Close()
	require.Equal(t, 0, pool.Size())
	require.Equal(t, 1, dialer.closed["url2"])
	require.Equal(t, 1, dialer.closed["url3"])

	_, err = pool.Get(ctx, "url2")
	require.Error(t, err)
	pool.UpdateClients(ctx, []string{"url4"})
	require.Equal(t, 0, pool.Size())
}

func TestClientPoolDialFailure(t *testing.T) {
	ctx := context.Background()
	dialer := newMockDialer()
	dialer.fail["bad"] = true
	pool := NewClientPool(dialer.dial)
	defer pool.Close()

	pool.UpdateClients(ctx, []string{"bad", "good"})
	require.Equal(t, 1, pool.Size())

	_, err := pool.Get(ctx, "bad")
	require.Error(t, err)

	dialer.mu.Lock()
	dialer.fail["bad"] = false
	dialer.mu.Unlock()
	cli, err := pool.Get(ctx, "bad")
	require.NoError(t, err)
	require.Equal(t, "bad", cli.addr)
	require.Equal(t, 2, pool.Size())
}

func TestClientPoolConcurrentGet(t *testing.T) {
	ctx := context.Background()
	dialer := newMockDialer()
	pool := NewClientPool(dialer.dial)
	defer pool.Close()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.Get(ctx, "url")
			require.NoError(t, err)
		}()
	}
	wg.Wait()
	require.Equal(t, 1, dialer.dialed["url"])
}
