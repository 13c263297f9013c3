package client

import (
	"context"

	"google.golang.org/grpc"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
	"github.com/hanfei1991/dataservice/pkg/rpcutil"
)

// WorkerClient reads elements from a worker.
type WorkerClient interface {
	GetElement(ctx context.Context, req *pb.GetElementRequest) (*pb.GetElementResponse, error)
}

type workerClient struct {
	client pb.WorkerClient
}

func (c *workerClient) GetElement(ctx context.Context, req *pb.GetElementRequest) (*pb.GetElementResponse, error) {
	return c.client.GetElement(ctx, req)
}

// WrapWorkerClient builds a WorkerClient on top of an existing pb client.
func WrapWorkerClient(cli pb.WorkerClient) WorkerClient {
	return &workerClient{client: cli}
}

// NewWorkerDialer returns a rpcutil.DialFunc connecting to workers with the
// given protocol. The pool keys its clients by worker address.
func NewWorkerDialer(protocol string, extraOpts ...grpc.DialOption) rpcutil.DialFunc[WorkerClient] {
	return func(ctx context.Context, addr string) (*rpcutil.ClientHolder[WorkerClient], error) {
		conn, err := Dial(ctx, model.ServiceEndpoint{Protocol: protocol, Address: addr}, extraOpts...)
		if err != nil {
			return nil, err
		}
		return rpcutil.NewClientHolder[WorkerClient](conn, WrapWorkerClient(pb.NewWorkerClient(conn))), nil
	}
}
