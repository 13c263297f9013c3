package client

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

func TestParseService(t *testing.T) {
	t.Parallel()

	cases := []struct {
		service  string
		expected model.ServiceEndpoint
	}{
		{"grpc://host:5000", model.ServiceEndpoint{Protocol: "grpc", Address: "host:5000"}},
		{"host:5000", model.ServiceEndpoint{Protocol: model.DefaultProtocol, Address: "host:5000"}},
		{"grpc+local://127.0.0.1:1", model.ServiceEndpoint{Protocol: "grpc+local", Address: "127.0.0.1:1"}},
		{"custom://unix:/tmp/sock", model.ServiceEndpoint{Protocol: "custom", Address: "unix:/tmp/sock"}},
	}
	for _, tc := range cases {
		endpoint, err := ParseService(tc.service, model.DefaultProtocol)
		require.NoError(t, err, tc.service)
		require.Equal(t, tc.expected, endpoint)
	}

	endpoint, err := ParseService("host:5000", "grpc+local")
	require.NoError(t, err)
	require.Equal(t, "grpc+local://host:5000", endpoint.String())
}

func TestParseServiceInvalid(t *testing.T) {
	t.Parallel()

	for _, service := range []string{"", "a://b://c", "://host", "grpc://"} {
		_, err := ParseService(service, model.DefaultProtocol)
		require.True(t, errors.ErrInvalidServiceAddress.Equal(err), "service %q, err %v", service, err)
		require.True(t, errors.IsConfigurationError(err))
	}
}

func TestNewServiceEndpoint(t *testing.T) {
	t.Parallel()

	endpoint, err := NewServiceEndpoint("grpc", "a://b")
	require.NoError(t, err)
	require.Equal(t, "a://b", endpoint.Address)

	_, err = NewServiceEndpoint("grpc", "")
	require.True(t, errors.ErrInvalidServiceAddress.Equal(err))
	_, err = NewServiceEndpoint("", "host")
	require.True(t, errors.ErrInvalidServiceAddress.Equal(err))
}
