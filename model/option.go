package model

import "fmt"

// AutoOr holds either an explicit value or the "auto" marker, which leaves
// the choice to the runtime. The zero value is auto.
type AutoOr[T any] struct {
	set bool
	val T
}

// Auto returns an AutoOr that defers to the runtime.
func Auto[T any]() AutoOr[T] {
	return AutoOr[T]{}
}

// Value returns an AutoOr holding v.
func Value[T any](v T) AutoOr[T] {
	return AutoOr[T]{set: true, val: v}
}

// IsAuto returns true if no explicit value is held.
func (a AutoOr[T]) IsAuto() bool {
	return !a.set
}

// Get returns the held value and whether it is explicit.
func (a AutoOr[T]) Get() (T, bool) {
	return a.val, a.set
}

// OrElse returns the explicit value, or def when auto.
func (a AutoOr[T]) OrElse(def T) T {
	if a.set {
		return a.val
	}
	return def
}

func (a AutoOr[T]) String() string {
	if !a.set {
		return "AUTO"
	}
	return fmt.Sprint(a.val)
}

// Optional is a value that may be absent. The zero value is absent.
type Optional[T any] struct {
	present bool
	val     T
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{present: true, val: v}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// FromPtr returns an Optional that is present iff p is not nil.
func FromPtr[T any](p *T) Optional[T] {
	if p == nil {
		return None[T]()
	}
	return Some(*p)
}

// IsPresent returns true if a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.val, o.present
}

// OrElse returns the value if present and def otherwise.
func (o Optional[T]) OrElse(def T) T {
	if o.present {
		return o.val
	}
	return def
}

// Ptr returns a pointer to a copy of the value, or nil if absent.
func (o Optional[T]) Ptr() *T {
	if !o.present {
		return nil
	}
	v := o.val
	return &v
}

func (o Optional[T]) String() string {
	if !o.present {
		return "<nil>"
	}
	return fmt.Sprint(o.val)
}
