package errors

import (
	"testing"

	"github.com/pingcap/errors"
	"github.com/stretchr/testify/require"
)

func TestIsSeesThroughWrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := Wrap(ErrReadElement, cause, 1, "worker-0", "connection reset")
	require.True(t, Is(err, ErrReadElement))
	require.False(t, Is(err, ErrListTasks))
	require.Equal(t, cause, errors.Cause(err))
	require.Contains(t, err.Error(), "worker-0")

	require.Nil(t, Wrap(ErrReadElement, nil))
}

func TestIsConfigurationError(t *testing.T) {
	t.Parallel()

	require.True(t, IsConfigurationError(ErrEmptyJobName.GenWithStackByArgs()))
	require.True(t, IsConfigurationError(
		errors.Trace(ErrConsumerPairing.GenWithStackByArgs("1", "<nil>"))))
	require.False(t, IsConfigurationError(
		ErrJobJoin.GenWithStackByArgs("grpc://host:5000", "train", "already exists")))
	require.False(t, IsConfigurationError(errors.New("plain")))
	require.False(t, IsConfigurationError(nil))
}

func TestEqualWithoutCause(t *testing.T) {
	t.Parallel()

	err := ErrInvalidProcessingMode.GenWithStackByArgs("bogus", []string{"parallel_epochs", "distributed_epoch"})
	require.True(t, ErrInvalidProcessingMode.Equal(err))
	require.Regexp(t, ".*ErrInvalidProcessingMode.*bogus.*parallel_epochs.*distributed_epoch.*", err.Error())
}
