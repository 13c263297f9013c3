package compression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		requested model.CompressionMode
		protocol  model.Optional[string]
		expected  model.CompressionMode
	}{
		{model.CompressionAuto, model.Some("custom"), model.CompressionNone},
		{model.CompressionAuto, model.None[string](), model.CompressionAuto},
		{model.CompressionNone, model.None[string](), model.CompressionNone},
		{model.CompressionNone, model.Some("custom"), model.CompressionNone},
		{model.CompressionNone, model.Some(""), model.CompressionNone},
	}
	for _, tc := range cases {
		resolved, err := Resolve(tc.requested, tc.protocol)
		require.NoError(t, err)
		require.Equal(t, tc.expected, resolved, "requested %s protocol %s", tc.requested, tc.protocol)
	}

	_, err := Resolve(model.CompressionMode(0), model.None[string]())
	require.True(t, errors.ErrInvalidCompression.Equal(err))
}
