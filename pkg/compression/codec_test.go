package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

func TestCompressUncompress(t *testing.T) {
	t.Parallel()

	spec := pipeline.ElementSpec{
		{DType: pipeline.DTypeInt64},
		{DType: pipeline.DTypeBytes, Shape: []int64{-1}},
		{DType: pipeline.DTypeString},
	}
	elem := pipeline.Element{Components: [][]byte{
		pipeline.Int64Element(7).Components[0],
		bytes.Repeat([]byte("abc"), 1000),
		{},
	}}

	compressed, err := Compress(spec, elem)
	require.NoError(t, err)
	require.Len(t, compressed.Components, 1)
	require.Less(t, len(compressed.Components[0]), 3000)

	got, err := Uncompress(compressed, spec)
	require.NoError(t, err)
	require.Len(t, got.Components, 3)
	v, err := got.Int64(0)
	require.NoError(t, err)
	require.Equal(t, int64(7), v)
	require.Equal(t, elem.Components[1], got.Components[1])
	require.Empty(t, got.Components[2])
}

func TestUncompressSpecMismatch(t *testing.T) {
	t.Parallel()

	spec := pipeline.ElementSpec{{DType: pipeline.DTypeInt64}}
	compressed, err := Compress(spec, pipeline.Int64Element(1))
	require.NoError(t, err)

	_, err = Uncompress(compressed, pipeline.ElementSpec{{DType: pipeline.DTypeFloat32}})
	require.True(t, errors.ErrElementSpecMismatch.Equal(err))
}

func TestCompressComponentCount(t *testing.T) {
	t.Parallel()

	_, err := Compress(pipeline.ElementSpec{{DType: pipeline.DTypeInt64}, {DType: pipeline.DTypeInt64}}, pipeline.Int64Element(1))
	require.True(t, errors.ErrCompressElement.Equal(err))
}

func TestUncompressGarbage(t *testing.T) {
	t.Parallel()

	spec := pipeline.ElementSpec{{DType: pipeline.DTypeInt64}}
	_, err := Uncompress(pipeline.Element{Components: [][]byte{[]byte("not zstd")}}, spec)
	require.True(t, errors.Is(err, errors.ErrUncompressElement))

	_, err = Uncompress(pipeline.Int64Element(1), spec)
	require.Error(t, err)

	_, err = Uncompress(pipeline.Element{}, spec)
	require.True(t, errors.ErrUncompressElement.Equal(err))
}
