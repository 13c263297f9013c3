package client

import (
	"context"
	"time"

	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_zap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/retry"
	"github.com/pingcap/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/credentials/local"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

const (
	// ProtocolGrpc is plain gRPC without transport security.
	ProtocolGrpc = "grpc"
	// ProtocolGrpcLocal is gRPC over a local connection, either a unix
	// domain socket or loopback TCP.
	ProtocolGrpcLocal = "grpc+local"

	maxUnavailableRetries = 3
	retryBackoffScalar    = 50 * time.Millisecond
)

// SupportedProtocols returns the transport protocols that can be dialed.
func SupportedProtocols() []string {
	return []string{ProtocolGrpc, ProtocolGrpcLocal}
}

// ValidateProtocol returns ErrUnsupportedProtocol if protocol can't be
// dialed.
func ValidateProtocol(protocol string) error {
	_, err := transportCredentials(protocol)
	return err
}

func transportCredentials(protocol string) (credentials.TransportCredentials, error) {
	switch protocol {
	case ProtocolGrpc:
		return insecure.NewCredentials(), nil
	case ProtocolGrpcLocal:
		return local.NewCredentials(), nil
	default:
		return nil, errors.ErrUnsupportedProtocol.GenWithStackByArgs(protocol, SupportedProtocols())
	}
}

// Dial creates a connection to the endpoint. The connection is established
// lazily, so Dial does not fail when the remote is down. Transient
// Unavailable errors are retried a bounded number of times by the
// connection's interceptor.
func Dial(ctx context.Context, endpoint model.ServiceEndpoint, extraOpts ...grpc.DialOption) (*grpc.ClientConn, error) {
	creds, err := transportCredentials(endpoint.Protocol)
	if err != nil {
		return nil, err
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithConnectParams(grpc.ConnectParams{Backoff: backoff.DefaultConfig}),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(pb.Codec{})),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithUnaryInterceptor(grpc_middleware.ChainUnaryClient(
			grpc_retry.UnaryClientInterceptor(
				grpc_retry.WithMax(maxUnavailableRetries),
				grpc_retry.WithCodes(codes.Unavailable),
				grpc_retry.WithBackoff(grpc_retry.BackoffExponentialWithJitter(retryBackoffScalar, 0.1)),
			),
			grpc_zap.UnaryClientInterceptor(log.L()),
		)),
	}
	opts = append(opts, extraOpts...)
	conn, err := grpc.DialContext(ctx, endpoint.Address, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrGrpcBuildConn, err, endpoint.String())
	}
	return conn, nil
}
