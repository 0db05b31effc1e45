// Package builder is the runtime support imported by generated builders.
package builder

// State records how a tracked value was last assigned.
type State uint8

const (
	// Unset means the value was never assigned.
	Unset State = iota
	// Initial means the value was seeded from an existing instance.
	Initial
	// Changed means the value was assigned through the builder.
	Changed
)

func (s State) String() string {
	switch s {
	case Initial:
		return "initial"
	case Changed:
		return "changed"
	default:
		return "unset"
	}
}

// Value tracks one builder field and whether it was assigned.
type Value[T any] struct {
	value T
	state State
}

// Set assigns v and marks the value changed.
func (v *Value[T]) Set(val T) {
	v.value = val
	v.state = Changed
}

// Init seeds v from an existing instance.
func (v *Value[T]) Init(val T) {
	v.value = val
	v.state = Initial
}

// Get returns the tracked value, or the zero value when unset.
func (v Value[T]) Get() T { return v.value }

func (v Value[T]) IsSet() bool     { return v.state != Unset }
func (v Value[T]) IsChanged() bool { return v.state == Changed }
func (v Value[T]) State() State    { return v.state }
