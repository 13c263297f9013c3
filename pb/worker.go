package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const Worker_GetElement_FullMethodName = "/dataservice.Worker/GetElement"

// WorkerClient is the client API for the Worker service.
type WorkerClient interface {
	GetElement(ctx context.Context, in *GetElementRequest, opts ...grpc.CallOption) (*GetElementResponse, error)
}

type workerClient struct {
	cc grpc.ClientConnInterface
}

func NewWorkerClient(cc grpc.ClientConnInterface) WorkerClient {
	return &workerClient{cc}
}

func (c *workerClient) GetElement(ctx context.Context, in *GetElementRequest, opts ...grpc.CallOption) (*GetElementResponse, error) {
	out := new(GetElementResponse)
	err := c.cc.Invoke(ctx, Worker_GetElement_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// WorkerServer is the server API for the Worker service.
type WorkerServer interface {
	GetElement(context.Context, *GetElementRequest) (*GetElementResponse, error)
}

// UnimplementedWorkerServer can be embedded to have forward compatible implementations.
type UnimplementedWorkerServer struct{}

func (UnimplementedWorkerServer) GetElement(context.Context, *GetElementRequest) (*GetElementResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetElement not implemented")
}

func RegisterWorkerServer(s grpc.ServiceRegistrar, srv WorkerServer) {
	s.RegisterService(&Worker_ServiceDesc, srv)
}

func _Worker_GetElement_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetElementRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(WorkerServer).GetElement(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Worker_GetElement_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(WorkerServer).GetElement(ctx, req.(*GetElementRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Worker_ServiceDesc is the grpc.ServiceDesc for the Worker service.
var Worker_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "dataservice.Worker",
	HandlerType: (*WorkerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetElement", Handler: _Worker_GetElement_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dataservice.proto",
}
