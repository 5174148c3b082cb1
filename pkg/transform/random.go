package transform

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/morphkit/morph/pkg/augment"
)

// ErrNoChoices is returned when a [OneOf] is built or applied with an
// empty choice list.
var ErrNoChoices = errors.New("one-of transform has no choices")

// RandomFlipX mirrors items horizontally with probability P. The flip
// decision is the random state, so a tuple either flips entirely or not
// at all.
type RandomFlipX struct {
	// P is the flip probability in [0, 1].
	P float64
}

// RandState draws the flip decision.
func (f RandomFlipX) RandState(rng *rand.Rand) augment.State { return rng.Float64() < f.P }

// Apply flips the item when the drawn decision says so.
func (f RandomFlipX) Apply(state augment.State, it augment.Item) (augment.Item, error) {
	flip, ok := state.(bool)
	if !ok {
		return nil, fmt.Errorf("%s: %w: want bool, got %T", f, augment.ErrStateType, state)
	}
	if !flip {
		return it, nil
	}
	return FlipX{}.Apply(augment.NoState, it)
}

// String implements fmt.Stringer.
func (f RandomFlipX) String() string { return fmt.Sprintf("RandomFlipX(p=%v)", f.P) }

// OneOfState is the resolved random state of a [OneOf]: the chosen
// branch and that branch's own state.
type OneOfState struct {
	Index int
	Inner augment.State
}

// OneOf applies exactly one of its choices, drawn uniformly. Both the
// choice and the chosen transform's state are resolved up front, so the
// whole tuple goes through the same branch with the same state.
type OneOf struct {
	// Choices are the candidate transforms.
	Choices []augment.Transform
}

// RandState draws a branch and that branch's state.
func (o OneOf) RandState(rng *rand.Rand) augment.State {
	if len(o.Choices) == 0 {
		return augment.NoState
	}
	i := rng.IntN(len(o.Choices))
	return OneOfState{Index: i, Inner: o.Choices[i].RandState(rng)}
}

// Apply runs the drawn branch.
func (o OneOf) Apply(state augment.State, it augment.Item) (augment.Item, error) {
	st, err := o.branch(state)
	if err != nil {
		return nil, err
	}
	return o.Choices[st.Index].Apply(st.Inner, it)
}

// ApplyTuple runs the drawn branch over the whole tuple, preserving the
// branch transform's own tuple behavior.
func (o OneOf) ApplyTuple(state augment.State, items []augment.Item) ([]augment.Item, error) {
	st, err := o.branch(state)
	if err != nil {
		return nil, err
	}
	return augment.ApplyAllState(o.Choices[st.Index], st.Inner, items)
}

func (o OneOf) branch(state augment.State) (OneOfState, error) {
	if len(o.Choices) == 0 {
		return OneOfState{}, fmt.Errorf("%s: %w", o, ErrNoChoices)
	}
	st, ok := state.(OneOfState)
	if !ok {
		return OneOfState{}, fmt.Errorf("%s: %w: want OneOfState, got %T", o, augment.ErrStateType, state)
	}
	if st.Index < 0 || st.Index >= len(o.Choices) {
		return OneOfState{}, fmt.Errorf("%s: %w: branch %d of %d", o, augment.ErrStateType, st.Index, len(o.Choices))
	}
	return st, nil
}

// String implements fmt.Stringer.
func (o OneOf) String() string {
	names := make([]string, len(o.Choices))
	for i, c := range o.Choices {
		names[i] = augment.Name(c)
	}
	return "OneOf(" + strings.Join(names, " | ") + ")"
}
