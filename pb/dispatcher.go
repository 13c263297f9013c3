package pb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	dispatcherServiceName = "dataservice.Dispatcher"

	Dispatcher_RegisterDataset_FullMethodName  = "/dataservice.Dispatcher/RegisterDataset"
	Dispatcher_GetOrCreateJob_FullMethodName   = "/dataservice.Dispatcher/GetOrCreateJob"
	Dispatcher_ListTasks_FullMethodName        = "/dataservice.Dispatcher/ListTasks"
	Dispatcher_ReleaseJobClient_FullMethodName = "/dataservice.Dispatcher/ReleaseJobClient"
)

// DispatcherClient is the client API for the Dispatcher service.
type DispatcherClient interface {
	RegisterDataset(ctx context.Context, in *RegisterDatasetRequest, opts ...grpc.CallOption) (*RegisterDatasetResponse, error)
	GetOrCreateJob(ctx context.Context, in *GetOrCreateJobRequest, opts ...grpc.CallOption) (*GetOrCreateJobResponse, error)
	ListTasks(ctx context.Context, in *ListTasksRequest, opts ...grpc.CallOption) (*ListTasksResponse, error)
	ReleaseJobClient(ctx context.Context, in *ReleaseJobClientRequest, opts ...grpc.CallOption) (*ReleaseJobClientResponse, error)
}

type dispatcherClient struct {
	cc grpc.ClientConnInterface
}

func NewDispatcherClient(cc grpc.ClientConnInterface) DispatcherClient {
	return &dispatcherClient{cc}
}

func (c *dispatcherClient) RegisterDataset(ctx context.Context, in *RegisterDatasetRequest, opts ...grpc.CallOption) (*RegisterDatasetResponse, error) {
	out := new(RegisterDatasetResponse)
	err := c.cc.Invoke(ctx, Dispatcher_RegisterDataset_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dispatcherClient) GetOrCreateJob(ctx context.Context, in *GetOrCreateJobRequest, opts ...grpc.CallOption) (*GetOrCreateJobResponse, error) {
	out := new(GetOrCreateJobResponse)
	err := c.cc.Invoke(ctx, Dispatcher_GetOrCreateJob_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dispatcherClient) ListTasks(ctx context.Context, in *ListTasksRequest, opts ...grpc.CallOption) (*ListTasksResponse, error) {
	out := new(ListTasksResponse)
	err := c.cc.Invoke(ctx, Dispatcher_ListTasks_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *dispatcherClient) ReleaseJobClient(ctx context.Context, in *ReleaseJobClientRequest, opts ...grpc.CallOption) (*ReleaseJobClientResponse, error) {
	out := new(ReleaseJobClientResponse)
	err := c.cc.Invoke(ctx, Dispatcher_ReleaseJobClient_FullMethodName, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DispatcherServer is the server API for the Dispatcher service.
type DispatcherServer interface {
	RegisterDataset(context.Context, *RegisterDatasetRequest) (*RegisterDatasetResponse, error)
	GetOrCreateJob(context.Context, *GetOrCreateJobRequest) (*GetOrCreateJobResponse, error)
	ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error)
	ReleaseJobClient(context.Context, *ReleaseJobClientRequest) (*ReleaseJobClientResponse, error)
}

// UnimplementedDispatcherServer can be embedded to have forward compatible implementations.
type UnimplementedDispatcherServer struct{}

func (UnimplementedDispatcherServer) RegisterDataset(context.Context, *RegisterDatasetRequest) (*RegisterDatasetResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RegisterDataset not implemented")
}

func (UnimplementedDispatcherServer) GetOrCreateJob(context.Context, *GetOrCreateJobRequest) (*GetOrCreateJobResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOrCreateJob not implemented")
}

func (UnimplementedDispatcherServer) ListTasks(context.Context, *ListTasksRequest) (*ListTasksResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListTasks not implemented")
}

func (UnimplementedDispatcherServer) ReleaseJobClient(context.Context, *ReleaseJobClientRequest) (*ReleaseJobClientResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ReleaseJobClient not implemented")
}

func RegisterDispatcherServer(s grpc.ServiceRegistrar, srv DispatcherServer) {
	s.RegisterService(&Dispatcher_ServiceDesc, srv)
}

func _Dispatcher_RegisterDataset_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RegisterDatasetRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).RegisterDataset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Dispatcher_RegisterDataset_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).RegisterDataset(ctx, req.(*RegisterDatasetRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dispatcher_GetOrCreateJob_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrCreateJobRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).GetOrCreateJob(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Dispatcher_GetOrCreateJob_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).GetOrCreateJob(ctx, req.(*GetOrCreateJobRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dispatcher_ListTasks_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListTasksRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).ListTasks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Dispatcher_ListTasks_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).ListTasks(ctx, req.(*ListTasksRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Dispatcher_ReleaseJobClient_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReleaseJobClientRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DispatcherServer).ReleaseJobClient(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: Dispatcher_ReleaseJobClient_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DispatcherServer).ReleaseJobClient(ctx, req.(*ReleaseJobClientRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// Dispatcher_ServiceDesc is the grpc.ServiceDesc for the Dispatcher service.
var Dispatcher_ServiceDesc = grpc.ServiceDesc{
	ServiceName: dispatcherServiceName,
	HandlerType: (*DispatcherServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterDataset", Handler: _Dispatcher_RegisterDataset_Handler},
		{MethodName: "GetOrCreateJob", Handler: _Dispatcher_GetOrCreateJob_Handler},
		{MethodName: "ListTasks", Handler: _Dispatcher_ListTasks_Handler},
		{MethodName: "ReleaseJobClient", Handler: _Dispatcher_ReleaseJobClient_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dataservice.proto",
}
