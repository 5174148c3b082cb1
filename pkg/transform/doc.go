// Package transform provides concrete augmentation transforms over the
// item kinds in [github.com/morphkit/morph/pkg/item]: flips, rotations,
// crops, resizing, and stochastic wrappers around them.
//
// # Geometry dispatch
//
// Each transform handles every item kind it is meaningful for via a type
// switch: images are resampled with github.com/disintegration/imaging,
// keypoints and boxes get the matching coordinate mapping, and labels
// pass through untouched. Applying a transform to an item kind it does
// not know yields [ErrUnsupportedItem].
//
// # Randomness
//
// Stochastic transforms (RandomFlipX, RandomRotate90, RandomCrop, OneOf)
// resolve all random choices in RandState and encode them in small state
// values (a flip decision, a turn count, fractional crop offsets). Apply
// is then fully deterministic, so one drawn state broadcast across an
// image and its annotations keeps them aligned — the crop offsets are
// fractions of each item's extent, which coincide when the items share
// one spatial extent.
//
// # Fusion
//
// Rotate90 implements the composition fusion rule: two quarter-turn
// rotations compose into one by summing turns modulo four, collapsing to
// Identity when they cancel. augment.Compose picks this up automatically.
package transform
