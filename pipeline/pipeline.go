// Package pipeline describes the dataset pipelines registered with the
// dispatcher. A Definition is opaque to the client beyond its steps: the
// workers turn it into elements.
package pipeline

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spaolacci/murmur3"

	"github.com/hanfei1991/dataservice/model"
)

// StepKind is the kind of a pipeline step.
type StepKind string

const (
	StepSource   StepKind = "source"
	StepMap      StepKind = "map"
	StepRepeat   StepKind = "repeat"
	StepTake     StepKind = "take"
	StepCompress StepKind = "compress"
	StepPrefetch StepKind = "prefetch"
)

const (
	// IdentityMapName is the map function that returns its input unchanged.
	// Workers locate the first map step of a registered pipeline by
	// convention, so a pipeline registered without compression still gets
	// one.
	IdentityMapName = "identity"
	// RangeSourceName produces the int64 values [0, n).
	RangeSourceName = "range"

	// InfiniteCount makes a repeat step repeat forever.
	InfiniteCount = -1
	// AutotuneBuffer lets the worker size a prefetch buffer.
	AutotuneBuffer = -1
)

// Step is one transformation of a pipeline.
type Step struct {
	Kind StepKind `json:"kind"`
	Name string   `json:"name,omitempty"`
	// Count is the repetition count of a repeat step, the number of
	// elements of a take step, or the buffer size of a prefetch step.
	Count int64             `json:"count,omitempty"`
	Args  map[string]string `json:"args,omitempty"`
}

// Options are the pipeline options the dispatcher cares about.
type Options struct {
	ExternalStatePolicy model.ExternalStatePolicy `json:"external-state-policy"`
}

// Definition is a pipeline as registered with the dispatcher.
type Definition struct {
	Steps   []Step      `json:"steps"`
	Spec    ElementSpec `json:"element-spec"`
	Options Options     `json:"options"`
}

// FromRange returns a pipeline producing the int64 values [0, n).
func FromRange(n int64) *Definition {
	return &Definition{
		Steps: []Step{{
			Kind: StepSource,
			Name: RangeSourceName,
			Args: map[string]string{"n": strconv.FormatInt(n, 10)},
		}},
		Spec: ElementSpec{{DType: DTypeInt64}},
	}
}

// FromSource returns a pipeline reading the named source.
func FromSource(name string, args map[string]string, spec ElementSpec) *Definition {
	return &Definition{
		Steps: []Step{{Kind: StepSource, Name: name, Args: copyArgs(args)}},
		Spec:  spec.Clone(),
	}
}

// Map appends a map step applying the named function.
func (d *Definition) Map(name string) *Definition {
	d.Steps = append(d.Steps, Step{Kind: StepMap, Name: name})
	return d
}

// Repeat appends a repeat step. Use InfiniteCount to repeat forever.
func (d *Definition) Repeat(count int64) *Definition {
	d.Steps = append(d.Steps, Step{Kind: StepRepeat, Count: count})
	return d
}

// Take appends a step that keeps the first n elements.
func (d *Definition) Take(n int64) *Definition {
	d.Steps = append(d.Steps, Step{Kind: StepTake, Count: n})
	return d
}

// WithExternalStatePolicy sets the external state policy option.
func (d *Definition) WithExternalStatePolicy(p model.ExternalStatePolicy) *Definition {
	d.Options.ExternalStatePolicy = p
	return d
}

// IsUnbounded returns true if the pipeline ends up repeating forever, i.e.
// an infinite repeat step is not followed by a take step.
func (d *Definition) IsUnbounded() bool {
	unbounded := false
	for _, step := range d.Steps {
		switch step.Kind {
		case StepRepeat:
			if step.Count < 0 {
				unbounded = true
			}
		case StepTake:
			if step.Count >= 0 {
				unbounded = false
			}
		}
	}
	return unbounded
}

// Clone returns a deep copy of d.
func (d *Definition) Clone() *Definition {
	steps := make([]Step, 0, len(d.Steps))
	for _, step := range d.Steps {
		step.Args = copyArgs(step.Args)
		steps = append(steps, step)
	}
	return &Definition{
		Steps:   steps,
		Spec:    d.Spec.Clone(),
		Options: d.Options,
	}
}

// Fingerprint returns a stable hash of the steps and the element spec.
// Options are not part of the fingerprint.
func (d *Definition) Fingerprint() uint64 {
	h := murmur3.New64()
	var buf [8]byte
	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		_, _ = h.Write(buf[:])
		_, _ = h.Write([]byte(s))
	}
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}

	writeInt(int64(len(d.Steps)))
	for _, step := range d.Steps {
		writeString(string(step.Kind))
		writeString(step.Name)
		writeInt(step.Count)
		keys := make([]string, 0, len(step.Args))
		for k := range step.Args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		writeInt(int64(len(keys)))
		for _, k := range keys {
			writeString(k)
			writeString(step.Args[k])
		}
	}
	writeString(d.Spec.String())
	return h.Sum64()
}

func (d *Definition) String() string {
	var b strings.Builder
	for i, step := range d.Steps {
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(string(step.Kind))
		if step.Name != "" {
			fmt.Fprintf(&b, "(%s)", step.Name)
		} else if step.Count != 0 {
			fmt.Fprintf(&b, "(%d)", step.Count)
		}
	}
	return b.String()
}

// CompressStep compresses every element into an opaque envelope.
func CompressStep() Step {
	return Step{Kind: StepCompress}
}

// IdentityMapStep passes elements through unchanged.
func IdentityMapStep() Step {
	return Step{Kind: StepMap, Name: IdentityMapName}
}

// PrefetchStep buffers elements ahead of the consumer.
func PrefetchStep(size int64) Step {
	return Step{Kind: StepPrefetch, Count: size}
}

func copyArgs(args map[string]string) map[string]string {
	if args == nil {
		return nil
	}
	ret := make(map[string]string, len(args))
	for k, v := range args {
		ret[k] = v
	}
	return ret
}
