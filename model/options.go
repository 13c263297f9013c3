package model

import (
	"fmt"
	"strings"

	"github.com/hanfei1991/dataservice/pkg/errors"
)

// CompressionMode decides whether elements travel inside a generic
// compressed envelope.
type CompressionMode int

const (
	compressionUnknown CompressionMode = iota
	// CompressionAuto compresses every element on the worker and
	// uncompresses it on the reader.
	CompressionAuto
	// CompressionNone sends elements as they are produced.
	CompressionNone
)

// ValidCompressionModes returns the string forms accepted by
// ParseCompressionMode.
func ValidCompressionModes() []string {
	return []string{"AUTO", "NONE"}
}

func (c CompressionMode) String() string {
	switch c {
	case CompressionAuto:
		return "AUTO"
	case CompressionNone:
		return "NONE"
	default:
		return fmt.Sprintf("CompressionMode(%d)", int(c))
	}
}

// Validate returns an error unless c is CompressionAuto or CompressionNone.
func (c CompressionMode) Validate() error {
	switch c {
	case CompressionAuto, CompressionNone:
		return nil
	default:
		return errors.ErrInvalidCompression.GenWithStackByArgs(c.String(), ValidCompressionModes())
	}
}

// ParseCompressionMode parses "AUTO" or "NONE".
func ParseCompressionMode(s string) (CompressionMode, error) {
	switch s {
	case "AUTO":
		return CompressionAuto, nil
	case "NONE":
		return CompressionNone, nil
	default:
		return compressionUnknown, errors.ErrInvalidCompression.GenWithStackByArgs(s, ValidCompressionModes())
	}
}

// TargetWorkers restricts which workers may serve a reader.
type TargetWorkers int

const (
	targetWorkersUnknown TargetWorkers = iota
	// TargetWorkersAuto lets the runtime decide.
	TargetWorkersAuto
	// TargetWorkersAny reads from every worker of the fleet.
	TargetWorkersAny
	// TargetWorkersLocal only reads from workers co-located with the reader.
	TargetWorkersLocal
)

var targetWorkersNames = map[TargetWorkers]string{
	TargetWorkersAuto:  "AUTO",
	TargetWorkersAny:   "ANY",
	TargetWorkersLocal: "LOCAL",
}

// ValidTargetWorkers returns the string forms accepted by
// ParseTargetWorkers.
func ValidTargetWorkers() []string {
	return []string{"AUTO", "ANY", "LOCAL"}
}

func (t TargetWorkers) String() string {
	if name, ok := targetWorkersNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TargetWorkers(%d)", int(t))
}

// Validate returns an error if t is not one of the defined scopes.
func (t TargetWorkers) Validate() error {
	if _, ok := targetWorkersNames[t]; ok {
		return nil
	}
	return errors.ErrInvalidTargetWorkers.GenWithStackByArgs(t.String(), ValidTargetWorkers())
}

// ParseTargetWorkers parses the scope case-insensitively.
func ParseTargetWorkers(s string) (TargetWorkers, error) {
	upper := strings.ToUpper(s)
	for t, name := range targetWorkersNames {
		if name == upper {
			return t, nil
		}
	}
	return targetWorkersUnknown, errors.ErrInvalidTargetWorkers.GenWithStackByArgs(s, ValidTargetWorkers())
}

// ExternalStatePolicy tells the dispatcher what to do with a pipeline that
// depends on state outside of its definition. The zero value means the
// pipeline did not specify a policy.
type ExternalStatePolicy int

const (
	ExternalStateUnset ExternalStatePolicy = iota
	ExternalStateWarn
	ExternalStateIgnore
	ExternalStateFail
)

var externalStateNames = map[ExternalStatePolicy]string{
	ExternalStateWarn:   "WARN",
	ExternalStateIgnore: "IGNORE",
	ExternalStateFail:   "FAIL",
}

// ValidExternalStatePolicies returns the string forms accepted by
// ParseExternalStatePolicy.
func ValidExternalStatePolicies() []string {
	return []string{"WARN", "IGNORE", "FAIL"}
}

func (p ExternalStatePolicy) String() string {
	if p == ExternalStateUnset {
		return "UNSET"
	}
	if name, ok := externalStateNames[p]; ok {
		return name
	}
	return fmt.Sprintf("ExternalStatePolicy(%d)", int(p))
}

// Resolve returns ExternalStateWarn for an unset policy, and p otherwise.
func (p ExternalStatePolicy) Resolve() ExternalStatePolicy {
	if p == ExternalStateUnset {
		return ExternalStateWarn
	}
	return p
}

// Validate returns an error for values other than the defined policies.
// ExternalStateUnset is valid.
func (p ExternalStatePolicy) Validate() error {
	if p == ExternalStateUnset {
		return nil
	}
	if _, ok := externalStateNames[p]; ok {
		return nil
	}
	return errors.ErrInvalidExternalStatePolicy.GenWithStackByArgs(p.String(), ValidExternalStatePolicies())
}

// ParseExternalStatePolicy parses the policy case-insensitively. An empty
// string yields ExternalStateUnset.
func ParseExternalStatePolicy(s string) (ExternalStatePolicy, error) {
	if s == "" {
		return ExternalStateUnset, nil
	}
	upper := strings.ToUpper(s)
	for p, name := range externalStateNames {
		if name == upper {
			return p, nil
		}
	}
	return ExternalStateUnset, errors.ErrInvalidExternalStatePolicy.GenWithStackByArgs(s, ValidExternalStatePolicies())
}

// AutoShardPolicy controls automatic file or data sharding applied on top
// of a read.
type AutoShardPolicy int

const (
	AutoShardAuto AutoShardPolicy = iota
	AutoShardOff
	AutoShardFile
	AutoShardData
)

func (p AutoShardPolicy) String() string {
	switch p {
	case AutoShardAuto:
		return "AUTO"
	case AutoShardOff:
		return "OFF"
	case AutoShardFile:
		return "FILE"
	case AutoShardData:
		return "DATA"
	default:
		return fmt.Sprintf("AutoShardPolicy(%d)", int(p))
	}
}
