// Package augment provides the composition core for data-augmentation
// pipelines: a small set of contracts for typed data containers (items)
// and pure, possibly-stochastic functions over them (transforms), plus
// the machinery that composes transforms into pipelines and threads
// random state through them.
//
// # Overview
//
// An [Item] wraps exactly one payload value (an image, keypoints, boxes,
// a label) and knows how to produce a copy of itself with the payload
// replaced. A [Transform] maps resolved random state plus an item to a
// new item. The package itself ships only two transforms: [Identity],
// the neutral element of composition, and [Sequence], an ordered list of
// child transforms applied left to right. Everything else (crops, flips,
// rotations, ...) lives outside this package and plugs in by
// implementing the interfaces.
//
// # Shared randomness
//
// The defining invariant of the package is that randomness is drawn
// exactly once per top-level application and shared across every item
// passed together. [ApplyAll] draws one [State] from the supplied
// *rand.Rand and broadcasts it to all items, so an image and its
// keypoints always see the same random crop offsets, the same flip
// decision, and so on. State is never regenerated mid-pipeline: a
// [Sequence] resolves one state slot per child up front and consumes
// each slot exactly once.
//
// Deterministic transforms return the [NoState] sentinel from RandState.
//
// # Composition algebra
//
// [Compose] folds any number of transforms into one, simplifying as it
// goes: identities are eliminated, sequences are flattened rather than
// nested, and transform kinds that implement [Composer] may fuse with
// their right-hand neighbor (two rotations collapsing into one, for
// example). [Then] is a two-argument alias.
//
//	pipeline := augment.Compose(crop, augment.Identity{}, flip, rotate)
//	// => Sequence(crop, flip, rotate), or shorter if anything fused
//
// # Purity and concurrency
//
// Every operation here is a pure function of its explicit arguments.
// Nothing blocks or performs I/O. The one concurrency obligation placed
// on callers running applications in parallel: each top-level apply must
// use its own *rand.Rand — state trees must never be shared or
// interleaved between concurrent calls.
package augment
