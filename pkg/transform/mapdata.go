package transform

import (
	"math/rand/v2"

	"github.com/morphkit/morph/pkg/augment"
)

// MapData applies a pure function to an item's payload through the
// generic WithData slot, leaving the item's metadata alone. Useful for
// payload-level tweaks (normalization, label remapping) without writing
// a full transform kind.
type MapData struct {
	// Name labels the transform in pipeline listings and errors.
	Name string

	// Fn maps the old payload to the new one.
	Fn func(data any) (any, error)
}

// RandState returns [augment.NoState]; MapData is deterministic.
func (MapData) RandState(*rand.Rand) augment.State { return augment.NoState }

// Apply replaces the payload with Fn's result.
func (m MapData) Apply(_ augment.State, it augment.Item) (augment.Item, error) {
	data, err := m.Fn(it.Data())
	if err != nil {
		return nil, err
	}
	return it.WithData(data)
}

// String implements fmt.Stringer.
func (m MapData) String() string {
	if m.Name != "" {
		return "MapData(" + m.Name + ")"
	}
	return "MapData"
}
