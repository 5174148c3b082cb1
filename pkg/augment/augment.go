package augment

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrDataUnsupported is returned by [Item] implementations whose kind
	// has no canonical payload slot and therefore cannot replace its data.
	ErrDataUnsupported = errors.New("item does not support payload replacement")

	// ErrStateType is returned by [Transform.Apply] implementations when
	// the supplied random state does not have the type the transform
	// produced from RandState. It always indicates a caller threading
	// states through the wrong transform tree.
	ErrStateType = errors.New("random state has wrong type for transform")

	// ErrStateArity is returned by [Sequence.Apply] and
	// [Sequence.ApplyTuple] when the random state list does not contain
	// exactly one entry per child transform.
	ErrStateArity = errors.New("random state arity does not match sequence length")

	// ErrTupleArity is returned by [ApplyAllState] when a transform's
	// tuple override yields a different number of items than it was given.
	ErrTupleArity = errors.New("tuple result arity does not match input")

	// ErrSingleResult is returned by [Sequence.Apply] when the underlying
	// tuple fold does not yield exactly one item. It indicates a
	// misbehaving transform implementation, not bad input data.
	ErrSingleResult = errors.New("single-item apply did not yield exactly one result")
)

// Item is a typed container for one unit of domain data. Implementations
// wrap exactly one payload value and may carry additional metadata
// (spatial bounds, class vocabularies, ...) that travels with it.
//
// Items are treated as immutable values: WithData must return a new item
// with the payload replaced and every other field copied unchanged, never
// mutate shared state.
type Item interface {
	// Data returns the wrapped payload.
	Data() any

	// WithData returns a copy of the item with its payload replaced.
	// Implementations return [ErrDataUnsupported] if the kind has no
	// canonical payload slot, or a kind-specific error if data has the
	// wrong type.
	WithData(data any) (Item, error)
}

// State is the resolved outcome of any stochastic choices a transform
// makes, generated once per top-level apply and threaded structurally
// through the transform tree. Its concrete type is owned by the transform
// that produced it; the core only moves it around.
type State any

type noState struct{}

// NoState is the sentinel state returned by deterministic transforms.
var NoState State = noState{}

// Transform is a pure, possibly-stochastic mapping from an item and
// explicit random state to a new item. Implementations must be stateless
// across calls: Apply is a function of the transform's configuration, the
// item, and the state — nothing else.
type Transform interface {
	// RandState draws fresh random state for one application from rng.
	// Deterministic transforms return [NoState]. RandState must not
	// mutate the transform.
	RandState(rng *rand.Rand) State

	// Apply transforms a single item using already-resolved random state.
	Apply(state State, item Item) (Item, error)
}

// TupleTransform is implemented by transforms that need behavior other
// than pointwise broadcast when applied to a tuple of items. The default
// (see [ApplyAllState]) applies the single-item form to every element
// with the same state; override ApplyTuple to do anything else, such as
// deriving distinct per-element randomness from one jointly-drawn state.
type TupleTransform interface {
	Transform

	// ApplyTuple transforms items together. It must return exactly
	// len(items) results.
	ApplyTuple(state State, items []Item) ([]Item, error)
}

// Composer is implemented by transform kinds that can fuse with the
// transform applied after them, producing a single equivalent transform.
// [Compose] consults it before falling back to building a [Sequence].
type Composer interface {
	// ComposeWith returns the fusion of the receiver followed by next,
	// and true, if the two can fuse; otherwise ok is false and Compose
	// falls back to sequencing.
	ComposeWith(next Transform) (fused Transform, ok bool)
}

// Name returns a human-readable name for a transform, used in error
// messages and pipeline listings. Transforms may customize it by
// implementing fmt.Stringer; otherwise the Go type name is used.
func Name(t Transform) string {
	if s, ok := t.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", t)
}

// Apply draws fresh random state for t from rng and applies t to item.
// It is exactly equivalent to calling t.RandState followed by t.Apply.
// If rng is nil, a generator seeded from the process-wide source is used.
func Apply(rng *rand.Rand, t Transform, item Item) (Item, error) {
	return t.Apply(t.RandState(ensureRNG(rng)), item)
}

// ApplyAll draws random state for t once and applies t to every item with
// that shared state, preserving order and arity. Passing an image and its
// annotations through one ApplyAll call is what keeps them geometrically
// aligned under stochastic transforms.
// If rng is nil, a generator seeded from the process-wide source is used.
func ApplyAll(rng *rand.Rand, t Transform, items ...Item) ([]Item, error) {
	return ApplyAllState(t, t.RandState(ensureRNG(rng)), items)
}

// ApplyState applies t to item with explicitly supplied random state.
func ApplyState(t Transform, state State, item Item) (Item, error) {
	return t.Apply(state, item)
}

// ApplyAllState applies t to every item with the same explicitly supplied
// random state. If t implements [TupleTransform], its ApplyTuple override
// is used and its result arity is verified; otherwise the single-item
// Apply is broadcast pointwise.
func ApplyAllState(t Transform, state State, items []Item) ([]Item, error) {
	if tt, ok := t.(TupleTransform); ok {
		out, err := tt.ApplyTuple(state, items)
		if err != nil {
			return nil, err
		}
		if len(out) != len(items) {
			return nil, fmt.Errorf("%s: %w: got %d, want %d", Name(t), ErrTupleArity, len(out), len(items))
		}
		return out, nil
	}

	out := make([]Item, len(items))
	for i, it := range items {
		res, err := t.Apply(state, it)
		if err != nil {
			return nil, fmt.Errorf("%s: item %d: %w", Name(t), i, err)
		}
		out[i] = res
	}
	return out, nil
}

// ensureRNG returns rng, or a fresh generator seeded from the
// process-wide source when rng is nil. A fresh generator per call keeps
// nil-rng applications safe for concurrent use.
func ensureRNG(rng *rand.Rand) *rand.Rand {
	if rng != nil {
		return rng
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}
