package augment

import "math/rand/v2"

// Identity is the transform that returns its input unchanged. It is the
// neutral element of [Compose]: composing any transform with Identity on
// either side yields that transform.
type Identity struct{}

// RandState always returns [NoState]; Identity is deterministic.
func (Identity) RandState(*rand.Rand) State { return NoState }

// Apply returns item unchanged.
func (Identity) Apply(_ State, item Item) (Item, error) { return item, nil }

// ApplyTuple returns items unchanged.
func (Identity) ApplyTuple(_ State, items []Item) ([]Item, error) { return items, nil }

// String implements fmt.Stringer.
func (Identity) String() string { return "Identity" }

// isIdentity reports whether t is the Identity transform, by value or
// by pointer.
func isIdentity(t Transform) bool {
	switch t.(type) {
	case Identity, *Identity:
		return true
	}
	return false
}
