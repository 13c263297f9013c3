package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/pkg/errors"
)

func TestCompressionMode(t *testing.T) {
	t.Parallel()

	c, err := ParseCompressionMode("AUTO")
	require.NoError(t, err)
	require.Equal(t, CompressionAuto, c)
	c, err = ParseCompressionMode("NONE")
	require.NoError(t, err)
	require.Equal(t, CompressionNone, c)

	_, err = ParseCompressionMode("gzip")
	require.True(t, errors.ErrInvalidCompression.Equal(err))
	require.True(t, errors.ErrInvalidCompression.Equal(CompressionMode(0).Validate()))
	require.NoError(t, CompressionNone.Validate())
}

func TestTargetWorkers(t *testing.T) {
	t.Parallel()

	for s, expected := range map[string]TargetWorkers{
		"auto":  TargetWorkersAuto,
		"ANY":   TargetWorkersAny,
		"Local": TargetWorkersLocal,
	} {
		tw, err := ParseTargetWorkers(s)
		require.NoError(t, err)
		require.Equal(t, expected, tw)
		require.NoError(t, tw.Validate())
	}
	_, err := ParseTargetWorkers("remote")
	require.True(t, errors.ErrInvalidTargetWorkers.Equal(err))
	require.Error(t, TargetWorkers(0).Validate())
}

func TestExternalStatePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseExternalStatePolicy("")
	require.NoError(t, err)
	require.Equal(t, ExternalStateUnset, p)
	require.Equal(t, ExternalStateWarn, p.Resolve())
	require.NoError(t, p.Validate())

	p, err = ParseExternalStatePolicy("fail")
	require.NoError(t, err)
	require.Equal(t, ExternalStateFail, p.Resolve())

	_, err = ParseExternalStatePolicy("panic")
	require.True(t, errors.ErrInvalidExternalStatePolicy.Equal(err))
	require.Error(t, ExternalStatePolicy(9).Validate())
}

func TestAutoOr(t *testing.T) {
	t.Parallel()

	auto := Auto[time.Duration]()
	require.True(t, auto.IsAuto())
	require.Equal(t, time.Second, auto.OrElse(time.Second))
	require.Equal(t, "AUTO", auto.String())

	var zero AutoOr[int64]
	require.True(t, zero.IsAuto())

	v := Value[int64](0)
	require.False(t, v.IsAuto())
	got, ok := v.Get()
	require.True(t, ok)
	require.Equal(t, int64(0), got)
	require.Equal(t, int64(0), v.OrElse(16))
}

func TestOptional(t *testing.T) {
	t.Parallel()

	none := None[string]()
	require.False(t, none.IsPresent())
	require.Nil(t, none.Ptr())
	require.Equal(t, "<nil>", none.String())

	empty := Some("")
	require.True(t, empty.IsPresent())
	require.Equal(t, "", *empty.Ptr())

	n := int64(3)
	require.Equal(t, Some[int64](3), FromPtr(&n))
	require.Equal(t, None[int64](), FromPtr[int64](nil))
}
