package transform

import (
	"errors"
	"fmt"
	"image"
	"math"
	"math/rand/v2"

	"github.com/disintegration/imaging"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/item"
)

// ErrCropTooLarge is returned when the crop window exceeds an item's
// spatial extent.
var ErrCropTooLarge = errors.New("crop window exceeds item bounds")

// CropState is the resolved random state of a [RandomCrop]: the window
// offset as fractions of the available slack. Fractions rather than
// pixels keep the state meaningful for every item in a tuple, as long as
// the items share one spatial extent.
type CropState struct {
	FX, FY float64
}

// RandomCrop extracts a Width x Height window at a uniformly drawn
// offset. The same drawn offset applies to every item in a tuple: the
// image is cropped, keypoints and boxes are translated into the window's
// coordinate frame (boxes are clipped to it).
type RandomCrop struct {
	// Width and Height are the crop window size in pixels.
	Width, Height int
}

// RandState draws the fractional window offset.
func (RandomCrop) RandState(rng *rand.Rand) augment.State {
	return CropState{FX: rng.Float64(), FY: rng.Float64()}
}

// Apply crops the item to the drawn window.
func (c RandomCrop) Apply(state augment.State, it augment.Item) (augment.Item, error) {
	st, ok := state.(CropState)
	if !ok {
		return nil, fmt.Errorf("%s: %w: want CropState, got %T", c, augment.ErrStateType, state)
	}

	switch v := it.(type) {
	case item.Image:
		win, err := c.window(st, v.Bounds())
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		return item.NewImage(imaging.Crop(v.Img, win)), nil

	case item.Keypoints:
		win, err := c.window(st, v.Bounds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		pts := make([]item.Point, len(v.Points))
		for i, p := range v.Points {
			pts[i] = item.Point{X: p.X - float64(win.Min.X), Y: p.Y - float64(win.Min.Y)}
		}
		return item.NewKeypoints(pts, image.Rect(0, 0, c.Width, c.Height)), nil

	case item.Boxes:
		win, err := c.window(st, v.Bounds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}
		rects := make([]image.Rectangle, len(v.Rects))
		for i, r := range v.Rects {
			clipped := r.Intersect(win)
			if !clipped.Empty() {
				clipped = clipped.Sub(win.Min)
			}
			rects[i] = clipped
		}
		return item.NewBoxes(rects, image.Rect(0, 0, c.Width, c.Height)), nil

	case item.Label:
		return v, nil
	}
	return nil, fmt.Errorf("%s: %w: %T", c, ErrUnsupportedItem, it)
}

// window resolves the fractional offsets against bounds, yielding the
// concrete crop rectangle.
func (c RandomCrop) window(st CropState, bounds image.Rectangle) (image.Rectangle, error) {
	slackX := bounds.Dx() - c.Width
	slackY := bounds.Dy() - c.Height
	if slackX < 0 || slackY < 0 {
		return image.Rectangle{}, fmt.Errorf("%w: %dx%d window in %dx%d extent",
			ErrCropTooLarge, c.Width, c.Height, bounds.Dx(), bounds.Dy())
	}
	x0 := bounds.Min.X + int(math.Floor(st.FX*float64(slackX+1)))
	y0 := bounds.Min.Y + int(math.Floor(st.FY*float64(slackY+1)))
	x0 = min(x0, bounds.Min.X+slackX)
	y0 = min(y0, bounds.Min.Y+slackY)
	return image.Rect(x0, y0, x0+c.Width, y0+c.Height), nil
}

// String implements fmt.Stringer.
func (c RandomCrop) String() string { return fmt.Sprintf("RandomCrop(%dx%d)", c.Width, c.Height) }
