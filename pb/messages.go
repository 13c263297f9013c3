// Package pb holds the messages and service descriptors of the dispatcher
// and worker RPCs.
package pb

import (
	"github.com/hanfei1991/dataservice/model"
	"github.com/hanfei1991/dataservice/pipeline"
)

type RegisterDatasetRequest struct {
	Definition          *pipeline.Definition      `json:"definition"`
	ExternalStatePolicy model.ExternalStatePolicy `json:"external-state-policy"`
	// Fingerprint is computed by the client over the definition as sent.
	Fingerprint uint64 `json:"fingerprint"`
}

type RegisterDatasetResponse struct {
	DatasetId model.DatasetID `json:"dataset-id"`
}

type GetOrCreateJobRequest struct {
	DatasetId      model.DatasetID      `json:"dataset-id"`
	ProcessingMode model.ProcessingMode `json:"processing-mode"`
	// JobName is the effective, dataset-scoped name. Nil for an anonymous job.
	JobName       *string             `json:"job-name,omitempty"`
	ConsumerIndex *int64              `json:"consumer-index,omitempty"`
	NumConsumers  *int64              `json:"num-consumers,omitempty"`
	TargetWorkers model.TargetWorkers `json:"target-workers"`
}

type GetOrCreateJobResponse struct {
	JobClientId model.JobClientID `json:"job-client-id"`
}

type ListTasksRequest struct {
	JobClientId model.JobClientID `json:"job-client-id"`
	// CurrentRound is the round-robin round the consumer is about to read,
	// -1 outside of round-robin reads.
	CurrentRound int64 `json:"current-round"`
}

type ListTasksResponse struct {
	Tasks       []*model.TaskInfo `json:"tasks"`
	JobFinished bool              `json:"job-finished"`
}

type ReleaseJobClientRequest struct {
	JobClientId model.JobClientID `json:"job-client-id"`
}

type ReleaseJobClientResponse struct{}

type GetElementRequest struct {
	TaskId        model.TaskID `json:"task-id"`
	ConsumerIndex *int64       `json:"consumer-index,omitempty"`
	RoundIndex    *int64       `json:"round-index,omitempty"`
}

type GetElementResponse struct {
	Components [][]byte `json:"components,omitempty"`
	// Compressed is set when Components holds a single compressed envelope.
	Compressed    bool `json:"compressed,omitempty"`
	EndOfSequence bool `json:"end-of-sequence,omitempty"`
	// Skip means the round is not ready yet and must be requested again.
	Skip bool `json:"skip,omitempty"`
}
