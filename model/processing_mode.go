package model

import (
	"fmt"

	"github.com/hanfei1991/dataservice/pkg/errors"
)

// ProcessingMode is the policy that decides how the work of a pipeline is
// divided among workers.
type ProcessingMode int

const (
	processingModeUnknown ProcessingMode = iota
	// ParallelEpochs makes every worker process the full dataset.
	ParallelEpochs
	// DistributedEpoch splits the dataset's source among the workers, so
	// that each element is produced once per epoch across the fleet.
	DistributedEpoch
)

var processingModeNames = map[ProcessingMode]string{
	ParallelEpochs:   "parallel_epochs",
	DistributedEpoch: "distributed_epoch",
}

// ValidProcessingModes returns the string forms accepted by
// ParseProcessingMode.
func ValidProcessingModes() []string {
	return []string{
		processingModeNames[ParallelEpochs],
		processingModeNames[DistributedEpoch],
	}
}

func (m ProcessingMode) String() string {
	if name, ok := processingModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ProcessingMode(%d)", int(m))
}

// ParseProcessingMode converts the string form of a processing mode. Any
// value other than "parallel_epochs" and "distributed_epoch" is rejected.
func ParseProcessingMode(s string) (ProcessingMode, error) {
	for mode, name := range processingModeNames {
		if name == s {
			return mode, nil
		}
	}
	return processingModeUnknown, errors.ErrInvalidProcessingMode.GenWithStackByArgs(s, ValidProcessingModes())
}

// Validate returns an error if m is not one of the defined modes. A zero
// ProcessingMode is invalid.
func (m ProcessingMode) Validate() error {
	switch m {
	case ParallelEpochs, DistributedEpoch:
		return nil
	default:
		return errors.ErrInvalidProcessingMode.GenWithStackByArgs(m.String(), ValidProcessingModes())
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m ProcessingMode) MarshalText() ([]byte, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ProcessingMode) UnmarshalText(text []byte) error {
	mode, err := ParseProcessingMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
