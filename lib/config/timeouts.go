package config

import "time"

// ReaderTimeoutConfig holds the intervals that pace a reader's background
// work. None of them bounds an RPC.
type ReaderTimeoutConfig struct {
	// TaskRefreshInterval is how often the task list is polled when the
	// caller leaves the interval to the runtime.
	TaskRefreshInterval time.Duration
	// SkipRetryInterval paces re-polls of a round-robin round that is not
	// ready yet.
	SkipRetryInterval time.Duration
	// EmptyRetryInterval paces re-polls of the task list while a job has
	// no task.
	EmptyRetryInterval time.Duration
	// ReleaseTimeout bounds the best-effort release of the job client on
	// close.
	ReleaseTimeout time.Duration
}

var defaultReaderTimeoutConfig = ReaderTimeoutConfig{
	TaskRefreshInterval: time.Second,
	SkipRetryInterval:   time.Millisecond * 10,
	EmptyRetryInterval:  time.Millisecond * 100,
	ReleaseTimeout:      time.Second * 5,
}.Adjust()

// Adjust validates the ReaderTimeoutConfig and adjusts it
func (config ReaderTimeoutConfig) Adjust() ReaderTimeoutConfig {
	var tc ReaderTimeoutConfig = config
	if tc.TaskRefreshInterval <= 0 {
		tc.TaskRefreshInterval = time.Second
	}
	if tc.SkipRetryInterval <= 0 {
		tc.SkipRetryInterval = time.Millisecond * 10
	}
	// an empty task list is re-polled at least once per refresh
	if tc.EmptyRetryInterval <= 0 || tc.EmptyRetryInterval > tc.TaskRefreshInterval {
		tc.EmptyRetryInterval = tc.TaskRefreshInterval
	}
	if tc.ReleaseTimeout <= 0 {
		tc.ReleaseTimeout = time.Second * 5
	}
	return tc
}

func DefaultReaderTimeoutConfig() ReaderTimeoutConfig {
	return defaultReaderTimeoutConfig
}
