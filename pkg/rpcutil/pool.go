package rpcutil

import (
	"context"
	"io"
	"sync"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/hanfei1991/dataservice/pkg/errors"
)

// rpcClientType should be limited to rpc client types, but golang can't
// let us do it. So we left an alias to any.
type rpcClientType any

// ClientHolder groups a RPC client and it's closing function.
type ClientHolder[T rpcClientType] struct {
	conn   io.Closer
	client T
}

// NewClientHolder creates a ClientHolder. conn may be nil if the client owns
// no connection.
func NewClientHolder[T rpcClientType](conn io.Closer, client T) *ClientHolder[T] {
	return &ClientHolder[T]{conn: conn, client: client}
}

func (h *ClientHolder[T]) close() error {
	if h.conn == nil {
		return nil
	}
	return h.conn.Close()
}

// DialFunc connects to addr.
type DialFunc[T rpcClientType] func(ctx context.Context, addr string) (*ClientHolder[T], error)

// ClientPool keeps one client per remote address and reconciles the set of
// clients against the addresses currently in use.
type ClientPool[T rpcClientType] struct {
	clientsLock sync.RWMutex
	clients     map[string]*ClientHolder[T]
	dialer      DialFunc[T]
	closed      bool
}

func NewClientPool[T rpcClientType](dialer DialFunc[T]) *ClientPool[T] {
	return &ClientPool[T]{
		clients: make(map[string]*ClientHolder[T]),
		dialer:  dialer,
	}
}

// Get returns the client of addr, dialing it if needed.
func (p *ClientPool[T]) Get(ctx context.Context, addr string) (T, error) {
	p.clientsLock.RLock()
	cliH, ok := p.clients[addr]
	closed := p.closed
	p.clientsLock.RUnlock()
	if ok {
		return cliH.client, nil
	}
	var zero T
	if closed {
		return zero, errors.ErrGrpcBuildConn.GenWithStack("client pool closed, address: %s", addr)
	}

	p.clientsLock.Lock()
	defer p.clientsLock.Unlock()
	if p.closed {
		return zero, errors.ErrGrpcBuildConn.GenWithStack("client pool closed, address: %s", addr)
	}
	if cliH, ok := p.clients[addr]; ok {
		return cliH.client, nil
	}
	cliH, err := p.dialer(ctx, addr)
	if err != nil {
		return zero, err
	}
	log.L().Info("add new worker client", zap.String("addr", addr))
	p.clients[addr] = cliH
	return cliH.client, nil
}

// UpdateClients dials the addresses that are not in the pool yet and closes
// the clients of addresses that are no longer used. A failed dial is logged
// and retried by the next Get or UpdateClients.
func (p *ClientPool[T]) UpdateClients(ctx context.Context, addrs []string) {
	p.clientsLock.Lock()
	defer p.clientsLock.Unlock()
	if p.closed {
		return
	}

	notFound := make(map[string]struct{}, len(p.clients))
	for addr := range p.clients {
		notFound[addr] = struct{}{}
	}

	for _, addr := range addrs {
		delete(notFound, addr)
		if _, ok := p.clients[addr]; !ok {
			log.L().Info("add new worker client", zap.String("addr", addr))
			cliH, err := p.dialer(ctx, addr)
			if err != nil {
				log.L().Warn("dial to worker failed", zap.String("addr", addr), zap.Error(err))
				continue
			}
			p.clients[addr] = cliH
		}
	}

	for k := range notFound {
		if err := p.clients[k].close(); err != nil {
			log.L().Warn("close worker client failed", zap.String("addr", k), zap.Error(err))
		}
		delete(p.clients, k)
	}
}

// Size returns the number of clients in the pool.
func (p *ClientPool[T]) Size() int {
	p.clientsLock.RLock()
	defer p.clientsLock.RUnlock()
	return len(p.clients)
}

// Close closes every client. The pool can't be used afterwards.
func (p *ClientPool[T]) Close() {
	p.clientsLock.Lock()
	defer p.clientsLock.Unlock()
	p.closed = true
	for addr, cliH := range p.clients {
		if err := cliH.close(); err != nil {
			log.L().Warn("close worker client failed", zap.String("addr", addr), zap.Error(err))
		}
	}
	p.clients = make(map[string]*ClientHolder[T])
}
