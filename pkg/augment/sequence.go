package augment

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Sequence applies an ordered list of child transforms strictly left to
// right, feeding each child's output into the next. Its random state is
// the ordered list of each child's state, resolved up front by
// [Sequence.RandState], so a whole pipeline consumes entropy exactly once
// per leaf transform per application.
//
// Sequences are immutable once built. [Compose] is the usual way to
// obtain one; [NewSequence] builds one verbatim, without simplification.
type Sequence struct {
	transforms []Transform
}

// NewSequence creates a Sequence holding exactly the given transforms in
// order. Unlike [Compose], no identity elimination, flattening, or fusion
// is performed.
func NewSequence(transforms ...Transform) *Sequence {
	ts := make([]Transform, len(transforms))
	copy(ts, transforms)
	return &Sequence{transforms: ts}
}

// Transforms returns a copy of the child transform list.
func (s *Sequence) Transforms() []Transform {
	ts := make([]Transform, len(s.transforms))
	copy(ts, s.transforms)
	return ts
}

// Len returns the number of child transforms.
func (s *Sequence) Len() int { return len(s.transforms) }

// RandState draws one state per child, in child order. The returned
// state is a []State of length [Sequence.Len].
func (s *Sequence) RandState(rng *rand.Rand) State {
	states := make([]State, len(s.transforms))
	for i, t := range s.transforms {
		states[i] = t.RandState(rng)
	}
	return states
}

// Apply applies the sequence to a single item by wrapping it into a
// singleton tuple, running the tuple fold, and unwrapping the single
// result. Returns [ErrSingleResult] if the fold yields anything other
// than exactly one item.
func (s *Sequence) Apply(state State, item Item) (Item, error) {
	out, err := s.ApplyTuple(state, []Item{item})
	if err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: got %d items", ErrSingleResult, len(out))
	}
	return out[0], nil
}

// ApplyTuple folds the children over items in list order. state must be
// the []State produced by [Sequence.RandState]: one entry per child, same
// order. A child failure aborts the fold and is wrapped with the child's
// name and position.
func (s *Sequence) ApplyTuple(state State, items []Item) ([]Item, error) {
	states, ok := state.([]State)
	if !ok {
		return nil, fmt.Errorf("%w: sequence wants []State, got %T", ErrStateType, state)
	}
	if len(states) != len(s.transforms) {
		return nil, fmt.Errorf("%w: %d states for %d transforms", ErrStateArity, len(states), len(s.transforms))
	}

	var err error
	for i, t := range s.transforms {
		if items, err = ApplyAllState(t, states[i], items); err != nil {
			return nil, fmt.Errorf("sequence step %d (%s): %w", i, Name(t), err)
		}
	}
	return items, nil
}

// String implements fmt.Stringer, listing the child transforms in
// application order.
func (s *Sequence) String() string {
	names := make([]string, len(s.transforms))
	for i, t := range s.transforms {
		names[i] = Name(t)
	}
	return "Sequence(" + strings.Join(names, " → ") + ")"
}
