package model

type (
	// DatasetID is assigned by the dispatcher when a pipeline is registered.
	// It is stable for the lifetime of the dispatcher.
	DatasetID int64
	// JobClientID identifies one consumer's membership in a job.
	JobClientID int64
	// TaskID identifies the unit of work a worker runs for a job.
	TaskID int64
)

// TaskInfo describes a task assigned by the dispatcher to a job.
type TaskInfo struct {
	ID TaskID `json:"id"`
	// WorkerAddr is the address the worker serves its RPCs on.
	WorkerAddr string `json:"worker-addr"`
	// TransferAddr is the address used when a custom data transfer
	// protocol is requested.
	TransferAddr string `json:"transfer-addr"`
	// StartingRound is the first round-robin round this task takes part in.
	StartingRound int64 `json:"starting-round"`
}
