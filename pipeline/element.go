package pipeline

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/pingcap/errors"
)

// Supported component data types.
const (
	DTypeInt64   = "int64"
	DTypeFloat32 = "float32"
	DTypeString  = "string"
	DTypeBytes   = "bytes"
	// DTypeVariant is an opaque value such as a compressed envelope.
	DTypeVariant = "variant"
)

// ComponentSpec declares the type and shape of one element component.
// A nil Shape is a scalar; -1 marks an unknown dimension.
type ComponentSpec struct {
	DType string  `json:"dtype"`
	Shape []int64 `json:"shape,omitempty"`
}

func (c ComponentSpec) String() string {
	dims := make([]string, 0, len(c.Shape))
	for _, d := range c.Shape {
		if d < 0 {
			dims = append(dims, "?")
		} else {
			dims = append(dims, fmt.Sprint(d))
		}
	}
	return fmt.Sprintf("%s[%s]", c.DType, strings.Join(dims, ","))
}

// ElementSpec declares the structure of every element of a dataset.
type ElementSpec []ComponentSpec

// VariantSpec is the spec of elements carried in a compressed envelope.
func VariantSpec() ElementSpec {
	return ElementSpec{{DType: DTypeVariant}}
}

func (s ElementSpec) String() string {
	parts := make([]string, 0, len(s))
	for _, c := range s {
		parts = append(parts, c.String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Equal returns true if both specs declare the same components.
func (s ElementSpec) Equal(other ElementSpec) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i].DType != other[i].DType || len(s[i].Shape) != len(other[i].Shape) {
			return false
		}
		for j := range s[i].Shape {
			if s[i].Shape[j] != other[i].Shape[j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a deep copy of s.
func (s ElementSpec) Clone() ElementSpec {
	if s == nil {
		return nil
	}
	ret := make(ElementSpec, 0, len(s))
	for _, c := range s {
		var shape []int64
		if c.Shape != nil {
			shape = append([]int64(nil), c.Shape...)
		}
		ret = append(ret, ComponentSpec{DType: c.DType, Shape: shape})
	}
	return ret
}

// Element is one item of a dataset: a tuple of encoded components laid out
// according to the dataset's ElementSpec.
type Element struct {
	Components [][]byte
}

// Int64Element builds a single-component int64 element.
func Int64Element(v int64) Element {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return Element{Components: [][]byte{buf}}
}

// Int64 decodes the i-th component as an int64.
func (e Element) Int64(i int) (int64, error) {
	if i >= len(e.Components) {
		return 0, errors.Errorf("component %d out of range, element has %d components", i, len(e.Components))
	}
	if len(e.Components[i]) != 8 {
		return 0, errors.Errorf("component %d is %d bytes, not an int64", i, len(e.Components[i]))
	}
	return int64(binary.BigEndian.Uint64(e.Components[i])), nil
}
