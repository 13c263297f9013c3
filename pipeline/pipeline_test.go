package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/model"
)

func TestFingerprintStable(t *testing.T) {
	t.Parallel()

	a := FromRange(10).Map("square").Repeat(InfiniteCount)
	b := FromRange(10).Map("square").Repeat(InfiniteCount)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	// options do not contribute
	b.WithExternalStatePolicy(model.ExternalStateFail)
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	require.NotEqual(t, a.Fingerprint(), FromRange(11).Map("square").Repeat(InfiniteCount).Fingerprint())
	require.NotEqual(t, a.Fingerprint(), FromRange(10).Repeat(InfiniteCount).Map("square").Fingerprint())
	require.NotEqual(t, FromRange(10).Fingerprint(),
		FromSource(RangeSourceName, map[string]string{"n": "10"}, ElementSpec{{DType: DTypeFloat32}}).Fingerprint())
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	orig := FromRange(4)
	clone := orig.Clone()
	clone.Steps = append(clone.Steps, CompressStep())
	clone.Steps[0].Args["n"] = "5"
	clone.Spec[0].DType = DTypeString

	require.Len(t, orig.Steps, 1)
	require.Equal(t, "4", orig.Steps[0].Args["n"])
	require.Equal(t, DTypeInt64, orig.Spec[0].DType)
}

func TestIsUnbounded(t *testing.T) {
	t.Parallel()

	require.False(t, FromRange(3).IsUnbounded())
	require.False(t, FromRange(3).Repeat(2).IsUnbounded())
	require.True(t, FromRange(3).Repeat(InfiniteCount).IsUnbounded())
	require.True(t, FromRange(3).Repeat(InfiniteCount).Map("f").IsUnbounded())
	require.False(t, FromRange(3).Repeat(InfiniteCount).Take(100).IsUnbounded())
}

func TestElementSpec(t *testing.T) {
	t.Parallel()

	spec := ElementSpec{{DType: DTypeFloat32, Shape: []int64{-1, 3}}, {DType: DTypeString}}
	require.Equal(t, "(float32[?,3], string[])", spec.String())
	require.True(t, spec.Equal(spec.Clone()))
	require.False(t, spec.Equal(ElementSpec{{DType: DTypeFloat32, Shape: []int64{2, 3}}, {DType: DTypeString}}))
	require.False(t, spec.Equal(VariantSpec()))
}

func TestInt64Element(t *testing.T) {
	t.Parallel()

	v, err := Int64Element(-42).Int64(0)
	require.NoError(t, err)
	require.Equal(t, int64(-42), v)

	_, err = Int64Element(1).Int64(1)
	require.Error(t, err)
	_, err = Element{Components: [][]byte{{1, 2}}}.Int64(0)
	require.Error(t, err)
}

func TestDefinitionString(t *testing.T) {
	t.Parallel()

	d := FromRange(3).Map("f").Repeat(InfiniteCount)
	d.Steps = append(d.Steps, CompressStep(), PrefetchStep(AutotuneBuffer))
	require.Equal(t, "source(range) -> map(f) -> repeat(-1) -> compress -> prefetch(-1)", d.String())
}
