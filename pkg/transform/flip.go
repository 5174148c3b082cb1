package transform

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/item"
)

// ErrUnsupportedItem is returned when a transform receives an item kind
// it has no geometry rule for.
var ErrUnsupportedItem = errors.New("transform does not support item kind")

// FlipX mirrors items horizontally (left-right) within their bounds.
type FlipX struct{}

// RandState returns [augment.NoState]; FlipX is deterministic.
func (FlipX) RandState(*rand.Rand) augment.State { return augment.NoState }

// Apply mirrors the item across its vertical center line.
func (f FlipX) Apply(_ augment.State, it augment.Item) (augment.Item, error) {
	switch v := it.(type) {
	case item.Image:
		return item.NewImage(imaging.FlipH(v.Img)), nil
	case item.Keypoints:
		return item.NewKeypoints(flipPointsX(v.Points, v.Bounds), v.Bounds), nil
	case item.Boxes:
		return item.NewBoxes(flipRectsX(v.Rects, v.Bounds), v.Bounds), nil
	case item.Label:
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w: %T", f, ErrUnsupportedItem, it)
}

// String implements fmt.Stringer.
func (FlipX) String() string { return "FlipX" }

// FlipY mirrors items vertically (top-bottom) within their bounds.
type FlipY struct{}

// RandState returns [augment.NoState]; FlipY is deterministic.
func (FlipY) RandState(*rand.Rand) augment.State { return augment.NoState }

// Apply mirrors the item across its horizontal center line.
func (f FlipY) Apply(_ augment.State, it augment.Item) (augment.Item, error) {
	switch v := it.(type) {
	case item.Image:
		return item.NewImage(imaging.FlipV(v.Img)), nil
	case item.Keypoints:
		return item.NewKeypoints(flipPointsY(v.Points, v.Bounds), v.Bounds), nil
	case item.Boxes:
		return item.NewBoxes(flipRectsY(v.Rects, v.Bounds), v.Bounds), nil
	case item.Label:
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w: %T", f, ErrUnsupportedItem, it)
}

// String implements fmt.Stringer.
func (FlipY) String() string { return "FlipY" }

func flipPointsX(pts []item.Point, b image.Rectangle) []item.Point {
	axis := float64(b.Min.X + b.Max.X)
	out := make([]item.Point, len(pts))
	for i, p := range pts {
		out[i] = item.Point{X: axis - p.X, Y: p.Y}
	}
	return out
}

func flipPointsY(pts []item.Point, b image.Rectangle) []item.Point {
	axis := float64(b.Min.Y + b.Max.Y)
	out := make([]item.Point, len(pts))
	for i, p := range pts {
		out[i] = item.Point{X: p.X, Y: axis - p.Y}
	}
	return out
}

func flipRectsX(rects []image.Rectangle, b image.Rectangle) []image.Rectangle {
	axis := b.Min.X + b.Max.X
	out := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		out[i] = image.Rect(axis-r.Max.X, r.Min.Y, axis-r.Min.X, r.Max.Y)
	}
	return out
}

func flipRectsY(rects []image.Rectangle, b image.Rectangle) []image.Rectangle {
	axis := b.Min.Y + b.Max.Y
	out := make([]image.Rectangle, len(rects))
	for i, r := range rects {
		out[i] = image.Rect(r.Min.X, axis-r.Max.Y, r.Max.X, axis-r.Min.Y)
	}
	return out
}
