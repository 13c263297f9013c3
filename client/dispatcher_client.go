package client

import (
	"context"

	"github.com/pingcap/log"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
	"github.com/hanfei1991/dataservice/pkg/rpcutil"
)

// DispatcherClient sends requests to the dispatcher of a data service.
type DispatcherClient interface {
	Send(context.Context, *Request) (*Response, error)
	Endpoint() model.ServiceEndpoint
	Close() error
}

type closeableConnIface interface {
	Close() error
}

type dispatcherClient struct {
	endpoint model.ServiceEndpoint
	conn     closeableConnIface
	client   pb.DispatcherClient
}

func (c *dispatcherClient) Send(ctx context.Context, req *Request) (*Response, error) {
	resp := &Response{}
	var err error
	switch req.Cmd {
	case CmdRegisterDataset:
		resp.Resp, err = c.client.RegisterDataset(ctx, req.RegisterDataset())
	case CmdGetOrCreateJob:
		resp.Resp, err = c.client.GetOrCreateJob(ctx, req.GetOrCreateJob())
	case CmdListTasks:
		resp.Resp, err = c.client.ListTasks(ctx, req.ListTasks())
	case CmdReleaseJobClient:
		resp.Resp, err = c.client.ReleaseJobClient(ctx, req.ReleaseJobClient())
	default:
		log.L().Panic("unexpected dispatcher command", zap.Uint16("cmd", uint16(req.Cmd)))
	}
	if err != nil {
		log.L().Warn("send request to dispatcher meet error",
			zap.Stringer("dispatcher", c.endpoint), zap.Stringer("cmd", req.Cmd), zap.Error(err))
	}
	return resp, err
}

func (c *dispatcherClient) Endpoint() model.ServiceEndpoint {
	return c.endpoint
}

func (c *dispatcherClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// NewDispatcherClient dials the dispatcher at endpoint.
func NewDispatcherClient(
	ctx context.Context, endpoint model.ServiceEndpoint, extraOpts ...grpc.DialOption,
) (DispatcherClient, error) {
	conn, err := Dial(ctx, endpoint, extraOpts...)
	if err != nil {
		return nil, err
	}
	return &dispatcherClient{
		endpoint: endpoint,
		conn:     conn,
		client:   pb.NewDispatcherClient(conn),
	}, nil
}

// WrapDispatcherClient builds a DispatcherClient on top of an existing pb
// client. Close is a no-op.
func WrapDispatcherClient(endpoint model.ServiceEndpoint, cli pb.DispatcherClient) DispatcherClient {
	return &dispatcherClient{endpoint: endpoint, client: cli}
}

// NewDispatcherDialer returns a rpcutil.DialFunc for a pool of dispatcher
// clients keyed by the "protocol://address" form of their endpoints.
func NewDispatcherDialer(extraOpts ...grpc.DialOption) rpcutil.DialFunc[DispatcherClient] {
	return func(ctx context.Context, key string) (*rpcutil.ClientHolder[DispatcherClient], error) {
		endpoint, err := ParseService(key, model.DefaultProtocol)
		if err != nil {
			return nil, err
		}
		cli, err := NewDispatcherClient(ctx, endpoint, extraOpts...)
		if err != nil {
			return nil, err
		}
		return rpcutil.NewClientHolder[DispatcherClient](cli, cli), nil
	}
}
