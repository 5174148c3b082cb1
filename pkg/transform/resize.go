package transform

import (
	"fmt"
	"image"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/item"
)

// Resize scales items to Width x Height. Images are resampled with a
// Lanczos filter; keypoints and boxes are scaled by the same factors.
type Resize struct {
	// Width and Height are the target size in pixels.
	Width, Height int
}

// RandState returns [augment.NoState]; Resize is deterministic.
func (Resize) RandState(*rand.Rand) augment.State { return augment.NoState }

// Apply scales the item to the target size.
func (rz Resize) Apply(_ augment.State, it augment.Item) (augment.Item, error) {
	switch v := it.(type) {
	case item.Image:
		return item.NewImage(imaging.Resize(v.Img, rz.Width, rz.Height, imaging.Lanczos)), nil

	case item.Keypoints:
		sx, sy := rz.factors(v.Bounds)
		pts := make([]item.Point, len(v.Points))
		for i, p := range v.Points {
			pts[i] = item.Point{
				X: (p.X - float64(v.Bounds.Min.X)) * sx,
				Y: (p.Y - float64(v.Bounds.Min.Y)) * sy,
			}
		}
		return item.NewKeypoints(pts, image.Rect(0, 0, rz.Width, rz.Height)), nil

	case item.Boxes:
		sx, sy := rz.factors(v.Bounds)
		rects := make([]image.Rectangle, len(v.Rects))
		for i, r := range v.Rects {
			rects[i] = image.Rect(
				scale(r.Min.X-v.Bounds.Min.X, sx),
				scale(r.Min.Y-v.Bounds.Min.Y, sy),
				scale(r.Max.X-v.Bounds.Min.X, sx),
				scale(r.Max.Y-v.Bounds.Min.Y, sy),
			)
		}
		return item.NewBoxes(rects, image.Rect(0, 0, rz.Width, rz.Height)), nil

	case item.Label:
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w: %T", rz, ErrUnsupportedItem, it)
}

func (rz Resize) factors(b image.Rectangle) (sx, sy float64) {
	sx, sy = 1, 1
	if b.Dx() > 0 {
		sx = float64(rz.Width) / float64(b.Dx())
	}
	if b.Dy() > 0 {
		sy = float64(rz.Height) / float64(b.Dy())
	}
	return sx, sy
}

func scale(v int, f float64) int {
	return int(float64(v)*f + 0.5)
}

// String implements fmt.Stringer.
func (rz Resize) String() string { return fmt.Sprintf("Resize(%dx%d)", rz.Width, rz.Height) }
