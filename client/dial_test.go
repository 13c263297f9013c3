package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pb"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/errors"
	"github.com/hanfei1991/dataservice/pkg/rpcutil"
	"github.com/hanfei1991/dataservice/test/fake"
)

func TestValidateProtocol(t *testing.T) {
	t.Parallel()

	for _, protocol := range SupportedProtocols() {
		require.NoError(t, ValidateProtocol(protocol))
	}
	err := ValidateProtocol("http")
	require.True(t, errors.ErrUnsupportedProtocol.Equal(err), err)
	require.Contains(t, err.Error(), "grpc+local")

	_, err = Dial(context.Background(), model.ServiceEndpoint{Protocol: "quic", Address: "127.0.0.1:1"})
	require.True(t, errors.ErrUnsupportedProtocol.Equal(err), err)
}

func TestDialOverTCP(t *testing.T) {
	c, err := fake.NewTCPCluster(1)
	require.NoError(t, err)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, protocol := range SupportedProtocols() {
		endpoint, err := ParseService(c.Service(protocol), model.DefaultProtocol)
		require.NoError(t, err)
		cli, err := NewDispatcherClient(ctx, endpoint)
		require.NoError(t, err)
		require.Equal(t, endpoint, cli.Endpoint())

		def := pipeline.FromRange(3)
		resp, err := cli.Send(ctx, &Request{
			Cmd: CmdRegisterDataset,
			Req: &pb.RegisterDatasetRequest{
				Definition:          def,
				ExternalStatePolicy: model.ExternalStateWarn,
				Fingerprint:         def.Fingerprint(),
			},
		})
		require.NoError(t, err, protocol)
		require.Equal(t, model.DatasetID(1), resp.Resp.(*pb.RegisterDatasetResponse).DatasetId)
		require.NoError(t, cli.Close())
	}
	// the second protocol registered the same pipeline
	require.Equal(t, int64(2), c.Dispatcher.RegisterCalls())
}

func TestWorkerDialerOverTCP(t *testing.T) {
	c, err := fake.NewTCPCluster(1)
	require.NoError(t, err)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool := rpcutil.NewClientPool(NewWorkerDialer(ProtocolGrpcLocal))
	defer pool.Close()
	cli, err := pool.Get(ctx, c.Workers[0].Addr())
	require.NoError(t, err)
	_, err = cli.GetElement(ctx, &pb.GetElementRequest{TaskId: 42})
	require.Error(t, err)
	require.Contains(t, err.Error(), "task 42 not found")
}
