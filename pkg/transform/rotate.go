package transform

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/item"
)

// Rotate90 rotates items counterclockwise by Turns quarter turns.
// Turns is taken modulo 4; negative values rotate clockwise.
//
// Rotate90 fuses under composition: two rotations collapse into one with
// the turns summed, and into [augment.Identity] when they cancel.
type Rotate90 struct {
	// Turns is the number of counterclockwise quarter turns.
	Turns int
}

// RandState returns [augment.NoState]; Rotate90 is deterministic.
func (Rotate90) RandState(*rand.Rand) augment.State { return augment.NoState }

// Apply rotates the item by the configured quarter turns.
func (r Rotate90) Apply(_ augment.State, it augment.Item) (augment.Item, error) {
	return rotateItem(r, normTurns(r.Turns), it)
}

// ComposeWith fuses with a following Rotate90 by summing turns. Anything
// else does not fuse.
func (r Rotate90) ComposeWith(next augment.Transform) (augment.Transform, bool) {
	o, ok := next.(Rotate90)
	if !ok {
		return nil, false
	}
	if turns := normTurns(r.Turns + o.Turns); turns != 0 {
		return Rotate90{Turns: turns}, true
	}
	return augment.Identity{}, true
}

// String implements fmt.Stringer.
func (r Rotate90) String() string { return fmt.Sprintf("Rotate90(%d)", normTurns(r.Turns)) }

// RandomRotate90 rotates by a uniformly drawn number of quarter turns
// (0 through 3). The drawn turn count is the random state, so every item
// in a tuple rotates the same way.
type RandomRotate90 struct{}

// RandState draws a turn count in [0, 3].
func (RandomRotate90) RandState(rng *rand.Rand) augment.State { return rng.IntN(4) }

// Apply rotates the item by the drawn quarter turns.
func (r RandomRotate90) Apply(state augment.State, it augment.Item) (augment.Item, error) {
	turns, ok := state.(int)
	if !ok {
		return nil, fmt.Errorf("%s: %w: want int, got %T", r, augment.ErrStateType, state)
	}
	return rotateItem(r, normTurns(turns), it)
}

// String implements fmt.Stringer.
func (RandomRotate90) String() string { return "RandomRotate90" }

// normTurns reduces turns to [0, 3].
func normTurns(turns int) int {
	return ((turns % 4) + 4) % 4
}

func rotateItem(tf augment.Transform, turns int, it augment.Item) (augment.Item, error) {
	if turns == 0 {
		return it, nil
	}
	switch v := it.(type) {
	case item.Image:
		return item.NewImage(rotateImage(v.Img, turns)), nil
	case item.Keypoints:
		pts, bounds := v.Points, v.Bounds
		for i := 0; i < turns; i++ {
			pts, bounds = rotatePointsOnce(pts, bounds)
		}
		return item.NewKeypoints(pts, bounds), nil
	case item.Boxes:
		rects, bounds := v.Rects, v.Bounds
		for i := 0; i < turns; i++ {
			rects, bounds = rotateRectsOnce(rects, bounds)
		}
		return item.NewBoxes(rects, bounds), nil
	case item.Label:
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w: %T", augment.Name(tf), ErrUnsupportedItem, it)
}

func rotateImage(img image.Image, turns int) image.Image {
	switch turns {
	case 1:
		return imaging.Rotate90(img)
	case 2:
		return imaging.Rotate180(img)
	default:
		return imaging.Rotate270(img)
	}
}

// rotatePointsOnce rotates points a quarter turn counterclockwise. In
// image coordinates (y growing down) the mapping for an extent of width W
// is (x, y) -> (y, W-x), with the extent transposing to height x width
// anchored at the origin.
func rotatePointsOnce(pts []item.Point, b image.Rectangle) ([]item.Point, image.Rectangle) {
	w := float64(b.Dx())
	out := make([]item.Point, len(pts))
	for i, p := range pts {
		nx, ny := p.X-float64(b.Min.X), p.Y-float64(b.Min.Y)
		out[i] = item.Point{X: ny, Y: w - nx}
	}
	return out, image.Rect(0, 0, b.Dy(), b.Dx())
}

func rotateRectsOnce(rects []image.Rectangle, b image.Rectangle) ([]image.Rectangle, image.Rectangle) {
	w := b.Dx()
	out := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		minX, minY := r.Min.X-b.Min.X, r.Min.Y-b.Min.Y
		maxX, maxY := r.Max.X-b.Min.X, r.Max.Y-b.Min.Y
		out[i] = image.Rect(minY, w-maxX, maxY, w-minX)
	}
	return out, image.Rect(0, 0, b.Dy(), b.Dx())
}
