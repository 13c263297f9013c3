// Package fake runs an in-process data service, a dispatcher and its
// workers, for tests of the client.
package fake

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/phayes/freeport"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"

	"github.com/hanfei1991/dataservice/pb"
)

const bufSize = 1 << 20

// Cluster is a dispatcher and its workers, each served by a gRPC server.
type Cluster struct {
	Dispatcher *Dispatcher
	Workers    []*Worker

	dispatcherAddr string
	// listeners is nil when the cluster listens on TCP.
	listeners map[string]*bufconn.Listener

	servers []*grpc.Server
	wg      sync.WaitGroup
}

// NewCluster starts a cluster on in-memory listeners. Its connections must
// be dialed with DialOptions.
func NewCluster(numWorkers int) *Cluster {
	c := &Cluster{listeners: make(map[string]*bufconn.Listener)}
	addrs := make([]string, 0, numWorkers+1)
	addrs = append(addrs, "dispatcher.fake:5050")
	for i := 0; i < numWorkers; i++ {
		addrs = append(addrs, fmt.Sprintf("worker-%d.fake:5051", i))
	}
	lis := make([]net.Listener, 0, len(addrs))
	for _, addr := range addrs {
		l := bufconn.Listen(bufSize)
		c.listeners[addr] = l
		lis = append(lis, l)
	}
	c.start(addrs, lis)
	return c
}

// NewTCPCluster starts a cluster listening on free loopback ports.
func NewTCPCluster(numWorkers int) (*Cluster, error) {
	ports, err := freeport.GetFreePorts(numWorkers + 1)
	if err != nil {
		return nil, errors.Trace(err)
	}
	addrs := make([]string, 0, len(ports))
	lis := make([]net.Listener, 0, len(ports))
	for _, port := range ports {
		addr := fmt.Sprintf("127.0.0.1:%d", port)
		l, err := net.Listen("tcp", addr)
		if err != nil {
			for _, opened := range lis {
				_ = opened.Close()
			}
			return nil, errors.Trace(err)
		}
		addrs = append(addrs, addr)
		lis = append(lis, l)
	}
	c := &Cluster{}
	c.start(addrs, lis)
	return c, nil
}

func (c *Cluster) start(addrs []string, lis []net.Listener) {
	c.dispatcherAddr = addrs[0]
	for _, addr := range addrs[1:] {
		c.Workers = append(c.Workers, newWorker(addr))
	}
	c.Dispatcher = newDispatcher(c.Workers)

	srv := c.newServer()
	pb.RegisterDispatcherServer(srv, c.Dispatcher)
	c.serve(srv, lis[0])
	for i, w := range c.Workers {
		srv := c.newServer()
		pb.RegisterWorkerServer(srv, w)
		c.serve(srv, lis[i+1])
	}
	log.L().Info("fake cluster started",
		zap.String("dispatcher", c.dispatcherAddr), zap.Int("workers", len(c.Workers)))
}

func (c *Cluster) newServer() *grpc.Server {
	srv := grpc.NewServer(
		grpc.ForceServerCodec(pb.Codec{}),
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
	)
	c.servers = append(c.servers, srv)
	return srv
}

func (c *Cluster) serve(srv *grpc.Server, l net.Listener) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if err := srv.Serve(l); err != nil {
			log.L().Warn("fake server stopped", zap.Error(err))
		}
	}()
}

// DispatcherAddr returns the address of the dispatcher.
func (c *Cluster) DispatcherAddr() string {
	return c.dispatcherAddr
}

// Service returns the dispatcher address with the given protocol.
func (c *Cluster) Service(protocol string) string {
	return protocol + "://" + c.dispatcherAddr
}

// DialOptions returns the options needed to reach the cluster.
func (c *Cluster) DialOptions() []grpc.DialOption {
	if c.listeners == nil {
		return nil
	}
	return []grpc.DialOption{
		grpc.WithContextDialer(func(ctx context.Context, addr string) (net.Conn, error) {
			l, ok := c.listeners[addr]
			if !ok {
				return nil, errors.Errorf("no fake server listens on %s", addr)
			}
			return l.DialContext(ctx)
		}),
	}
}

// Close stops all servers.
func (c *Cluster) Close() {
	for _, srv := range c.servers {
		srv.Stop()
	}
	c.wg.Wait()
}
