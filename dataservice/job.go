package dataservice

import (
	"fmt"
	"time"

	"github.com/pingcap/log"
	"go.uber.org/zap"

	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pipeline"
	"github.com/hanfei1991/dataservice/pkg/errors"
)

// DefaultPipeliningDepthPerWorker is used when JobParams leaves the depth
// unset.
const DefaultPipeliningDepthPerWorker = 1

// JobParams are the caller's parameters for creating or joining a job.
type JobParams struct {
	ProcessingMode model.ProcessingMode

	// JobName lets several consumers share one job. The name is scoped to
	// the dataset. A name stays bound to its job after the job finishes,
	// so reusing the name of a finished job gives a reader that reaches the
	// end of sequence on its first read.
	JobName model.Optional[string]
	// ConsumerIndex and NumConsumers must be set together. Setting them
	// reads the job in strict round-robin order among NumConsumers
	// consumers, which requires a job name and an unbounded pipeline.
	ConsumerIndex model.Optional[int64]
	NumConsumers  model.Optional[int64]

	MaxOutstandingRequests model.AutoOr[int64]
	// PipeliningDepthPerWorker defaults to DefaultPipeliningDepthPerWorker.
	PipeliningDepthPerWorker model.Optional[int64]
	TaskRefreshInterval      model.AutoOr[time.Duration]
	// TargetWorkers defaults to TargetWorkersAuto.
	TargetWorkers model.TargetWorkers
}

// JobSpec is a validated JobParams.
type JobSpec struct {
	ProcessingMode           model.ProcessingMode
	JobName                  model.Optional[string]
	ConsumerIndex            model.Optional[int64]
	NumConsumers             model.Optional[int64]
	MaxOutstandingRequests   model.AutoOr[int64]
	PipeliningDepthPerWorker int64
	TaskRefreshInterval      model.AutoOr[time.Duration]
	TargetWorkers            model.TargetWorkers
	AutoShardPolicy          model.AutoShardPolicy
}

// BuildJobSpec validates params. Nothing is sent to the dispatcher.
func BuildJobSpec(params JobParams) (*JobSpec, error) {
	if params.ConsumerIndex.IsPresent() != params.NumConsumers.IsPresent() {
		return nil, errors.ErrConsumerPairing.GenWithStackByArgs(
			params.ConsumerIndex.String(), params.NumConsumers.String())
	}
	if numConsumers, ok := params.NumConsumers.Get(); ok && !params.JobName.IsPresent() {
		return nil, errors.ErrNumConsumersWithoutJobName.GenWithStackByArgs(numConsumers)
	}
	if name, ok := params.JobName.Get(); ok && name == "" {
		return nil, errors.ErrEmptyJobName.GenWithStackByArgs()
	}

	if err := params.ProcessingMode.Validate(); err != nil {
		return nil, err
	}
	if numConsumers, ok := params.NumConsumers.Get(); ok {
		// no index is in range when there are no consumers
		consumerIndex, _ := params.ConsumerIndex.Get()
		if numConsumers <= 0 || consumerIndex < 0 || consumerIndex >= numConsumers {
			return nil, errors.ErrConsumerIndexOutOfRange.GenWithStackByArgs(consumerIndex, numConsumers)
		}
	}
	depth := params.PipeliningDepthPerWorker.OrElse(DefaultPipeliningDepthPerWorker)
	if depth < 1 {
		return nil, errors.ErrInvalidPipeliningDepth.GenWithStackByArgs(depth)
	}
	if n, ok := params.MaxOutstandingRequests.Get(); ok && n < 1 {
		return nil, errors.ErrInvalidJobParam.GenWithStackByArgs(
			"max-outstanding-requests", fmt.Sprintf("must be at least 1, got %d", n))
	}
	if d, ok := params.TaskRefreshInterval.Get(); ok && d <= 0 {
		return nil, errors.ErrInvalidJobParam.GenWithStackByArgs(
			"task-refresh-interval", fmt.Sprintf("must be positive, got %s", d))
	}
	targetWorkers := params.TargetWorkers
	if targetWorkers == 0 {
		targetWorkers = model.TargetWorkersAuto
	}
	if err := targetWorkers.Validate(); err != nil {
		return nil, err
	}

	spec := &JobSpec{
		ProcessingMode:           params.ProcessingMode,
		JobName:                  params.JobName,
		ConsumerIndex:            params.ConsumerIndex,
		NumConsumers:             params.NumConsumers,
		MaxOutstandingRequests:   params.MaxOutstandingRequests,
		PipeliningDepthPerWorker: depth,
		TaskRefreshInterval:      params.TaskRefreshInterval,
		TargetWorkers:            targetWorkers,
		AutoShardPolicy:          model.AutoShardAuto,
	}
	// a shared job must not be sharded a second time by each consumer
	if spec.JobName.IsPresent() {
		spec.AutoShardPolicy = model.AutoShardOff
	}
	if spec.RoundRobin() {
		log.L().Warn("round-robin reads require an unbounded pipeline, "+
			"otherwise consumers may block waiting for elements that are never produced",
			zap.Stringer("job-name", spec.JobName),
			zap.Stringer("num-consumers", spec.NumConsumers))
	}
	return spec, nil
}

// RoundRobin returns true if the job is read in strict round-robin order.
func (s *JobSpec) RoundRobin() bool {
	return s.NumConsumers.IsPresent()
}

// CheckSource logs a warning if the job is read round-robin but the
// pipeline is bounded. It is not an error: the pipeline might be unbounded
// in a way the definition does not show.
func (s *JobSpec) CheckSource(def *pipeline.Definition) {
	if !s.RoundRobin() || def.IsUnbounded() {
		return
	}
	log.L().Warn("round-robin job reads a pipeline without an infinite repeat",
		zap.Stringer("job-name", s.JobName),
		zap.Uint64("fingerprint", def.Fingerprint()),
		zap.String("pipeline", def.String()))
}

// EffectiveJobName scopes a job name to the dataset it reads, so that the
// same name used with different datasets refers to different jobs.
func EffectiveJobName(id model.DatasetID, name string) string {
	return fmt.Sprintf("dataset_id=%d/%s", id, name)
}
