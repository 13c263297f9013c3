package fake

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/pipeline"
)

func drain(it iterator, limit int) []int64 {
	var ret []int64
	for len(ret) < limit {
		v, ok := it()
		if !ok {
			break
		}
		ret = append(ret, v)
	}
	return ret
}

func TestCompile(t *testing.T) {
	t.Parallel()

	cases := []struct {
		def      *pipeline.Definition
		expected []int64
	}{
		{pipeline.FromRange(3), []int64{0, 1, 2}},
		{pipeline.FromRange(3).Map("square"), []int64{0, 1, 4}},
		{pipeline.FromRange(2).Repeat(2), []int64{0, 1, 0, 1}},
		{pipeline.FromRange(2).Repeat(pipeline.InfiniteCount).Take(5), []int64{0, 1, 0, 1, 0}},
		{pipeline.FromRange(0).Repeat(pipeline.InfiniteCount), nil},
		{pipeline.FromRange(5).Take(2).Repeat(2), []int64{0, 1, 0, 1}},
	}
	for _, tc := range cases {
		p, err := compile(tc.def)
		require.NoError(t, err, tc.def.String())
		require.Equal(t, tc.expected, drain(p.factory(), 100), tc.def.String())
	}

	_, err := compile(pipeline.FromRange(3).Map("unknown"))
	require.Error(t, err)
	_, err = compile(pipeline.FromSource("files", nil, pipeline.ElementSpec{{DType: pipeline.DTypeString}}))
	require.Error(t, err)
}

func TestShard(t *testing.T) {
	t.Parallel()

	p, err := compile(pipeline.FromRange(7))
	require.NoError(t, err)
	var all []int64
	for i := 0; i < 3; i++ {
		all = append(all, drain(shard(p.factory(), i, 3), 100)...)
	}
	require.ElementsMatch(t, []int64{0, 1, 2, 3, 4, 5, 6}, all)
	require.Equal(t, []int64{1, 4}, drain(shard(p.factory(), 1, 3), 100))
}

func TestRoundRobinPositions(t *testing.T) {
	t.Parallel()

	p, err := compile(pipeline.FromRange(4).Repeat(pipeline.InfiniteCount))
	require.NoError(t, err)
	tk := &task{prog: p, it: p.factory(), numConsumers: 2}
	read := func(round, consumer int64) int64 {
		v, ok := tk.at(round, consumer)
		require.True(t, ok)
		return v
	}
	require.Equal(t, int64(1), read(0, 1))
	require.Equal(t, int64(0), read(0, 0))
	// rounds 1 and 3 are served by another task
	require.Equal(t, int64(2), read(2, 0))
	require.Equal(t, int64(3), read(2, 1))
	require.Equal(t, int64(0), read(4, 0))
	require.Equal(t, int64(1), read(4, 1))
	// a round keeps its block
	require.Equal(t, int64(3), read(2, 1))

	finite, err := compile(pipeline.FromRange(2))
	require.NoError(t, err)
	ended := 0
	tk = &task{prog: finite, it: finite.factory(), numConsumers: 2, onEnd: func() { ended++ }}
	require.Equal(t, int64(0), read(0, 0))
	_, ok := tk.at(1, 0)
	require.False(t, ok)
	// positions before the end stay readable
	require.Equal(t, int64(1), read(0, 1))
	require.Equal(t, 1, ended)
}
