package dataservice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

func TestBuildJobSpecDefaults(t *testing.T) {
	t.Parallel()

	spec, err := BuildJobSpec(JobParams{ProcessingMode: model.ParallelEpochs})
	require.NoError(t, err)
	require.Equal(t, int64(DefaultPipeliningDepthPerWorker), spec.PipeliningDepthPerWorker)
	require.True(t, spec.MaxOutstandingRequests.IsAuto())
	require.True(t, spec.TaskRefreshInterval.IsAuto())
	require.Equal(t, model.TargetWorkersAuto, spec.TargetWorkers)
	require.Equal(t, model.AutoShardAuto, spec.AutoShardPolicy)
	require.False(t, spec.RoundRobin())
}

func TestBuildJobSpecConsumerPairing(t *testing.T) {
	t.Parallel()

	cases := []JobParams{
		{ProcessingMode: model.ParallelEpochs, ConsumerIndex: model.Some[int64](0)},
		{ProcessingMode: model.ParallelEpochs, NumConsumers: model.Some[int64](2), JobName: model.Some("train")},
		// pairing is checked before the job name
		{ProcessingMode: model.ParallelEpochs, ConsumerIndex: model.Some[int64](0), JobName: model.Some("")},
		// and before the processing mode
		{NumConsumers: model.Some[int64](2)},
	}
	for _, params := range cases {
		_, err := BuildJobSpec(params)
		require.True(t, errors.ErrConsumerPairing.Equal(err), "%+v: %v", params, err)
		require.True(t, errors.IsConfigurationError(err))
	}
}

func TestBuildJobSpecNameRules(t *testing.T) {
	t.Parallel()

	_, err := BuildJobSpec(JobParams{
		ProcessingMode: model.ParallelEpochs,
		ConsumerIndex:  model.Some[int64](0),
		NumConsumers:   model.Some[int64](2),
	})
	require.True(t, errors.ErrNumConsumersWithoutJobName.Equal(err), err)

	_, err = BuildJobSpec(JobParams{ProcessingMode: model.ParallelEpochs, JobName: model.Some("")})
	require.True(t, errors.ErrEmptyJobName.Equal(err), err)

	// name rules come before the processing mode check
	_, err = BuildJobSpec(JobParams{JobName: model.Some("")})
	require.True(t, errors.ErrEmptyJobName.Equal(err), err)

	spec, err := BuildJobSpec(JobParams{ProcessingMode: model.DistributedEpoch, JobName: model.Some("train")})
	require.NoError(t, err)
	require.Equal(t, model.AutoShardOff, spec.AutoShardPolicy)
	require.False(t, spec.RoundRobin())
}

func TestBuildJobSpecRoundRobin(t *testing.T) {
	t.Parallel()

	spec, err := BuildJobSpec(JobParams{
		ProcessingMode: model.ParallelEpochs,
		JobName:        model.Some("train"),
		ConsumerIndex:  model.Some[int64](1),
		NumConsumers:   model.Some[int64](2),
	})
	require.NoError(t, err)
	require.True(t, spec.RoundRobin())
	require.Equal(t, model.AutoShardOff, spec.AutoShardPolicy)

	// only logs
	spec.CheckSource(pipeline.FromRange(10))
	spec.CheckSource(pipeline.FromRange(10).Repeat(pipeline.InfiniteCount))
}

func TestBuildJobSpecRanges(t *testing.T) {
	t.Parallel()

	named := func(p JobParams) JobParams {
		p.ProcessingMode = model.ParallelEpochs
		p.JobName = model.Some("train")
		return p
	}
	cases := []struct {
		params JobParams
		check  func(error) bool
	}{
		{
			named(JobParams{ConsumerIndex: model.Some[int64](2), NumConsumers: model.Some[int64](2)}),
			errors.ErrConsumerIndexOutOfRange.Equal,
		},
		{
			named(JobParams{ConsumerIndex: model.Some[int64](-1), NumConsumers: model.Some[int64](2)}),
			errors.ErrConsumerIndexOutOfRange.Equal,
		},
		{
			named(JobParams{ConsumerIndex: model.Some[int64](0), NumConsumers: model.Some[int64](0)}),
			errors.ErrConsumerIndexOutOfRange.Equal,
		},
		{
			named(JobParams{PipeliningDepthPerWorker: model.Some[int64](0)}),
			errors.ErrInvalidPipeliningDepth.Equal,
		},
		{
			named(JobParams{MaxOutstandingRequests: model.Value[int64](0)}),
			errors.ErrInvalidJobParam.Equal,
		},
		{
			named(JobParams{TaskRefreshInterval: model.Value(time.Duration(0))}),
			errors.ErrInvalidJobParam.Equal,
		},
		{
			named(JobParams{TargetWorkers: model.TargetWorkers(42)}),
			errors.ErrInvalidTargetWorkers.Equal,
		},
		{
			JobParams{ProcessingMode: model.ProcessingMode(42)},
			errors.ErrInvalidProcessingMode.Equal,
		},
	}
	for _, tc := range cases {
		_, err := BuildJobSpec(tc.params)
		require.True(t, tc.check(err), "%+v: %v", tc.params, err)
		require.True(t, errors.IsConfigurationError(err))
	}

	spec, err := BuildJobSpec(named(JobParams{
		MaxOutstandingRequests:   model.Value[int64](8),
		PipeliningDepthPerWorker: model.Some[int64](4),
		TaskRefreshInterval:      model.Value(10 * time.Millisecond),
		TargetWorkers:            model.TargetWorkersLocal,
	}))
	require.NoError(t, err)
	require.Equal(t, int64(8), spec.MaxOutstandingRequests.OrElse(0))
	require.Equal(t, int64(4), spec.PipeliningDepthPerWorker)
	require.Equal(t, 10*time.Millisecond, spec.TaskRefreshInterval.OrElse(0))
	require.Equal(t, model.TargetWorkersLocal, spec.TargetWorkers)
}

func TestEffectiveJobName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "dataset_id=3/train", EffectiveJobName(3, "train"))

	seen := make(map[string]struct{})
	for _, id := range []model.DatasetID{1, 12, 123} {
		for _, name := range []string{"2/x", "x", "23/x", "/x", "3/x"} {
			effective := EffectiveJobName(id, name)
			_, dup := seen[effective]
			require.False(t, dup, "%d %q collides", id, name)
			seen[effective] = struct{}{}
		}
	}
}
