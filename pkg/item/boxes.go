package item

import (
	"fmt"
	"image"

	"github.com/morphkit/morph/pkg/augment"
)

// Boxes wraps a set of axis-aligned bounding boxes within a spatial
// extent. The payload is the rectangle slice; Bounds is preserved
// metadata, like [Keypoints.Bounds].
type Boxes struct {
	// Rects is the wrapped payload.
	Rects []image.Rectangle

	// Bounds is the spatial extent the boxes are defined within.
	Bounds image.Rectangle
}

// NewBoxes wraps rects defined within bounds.
func NewBoxes(rects []image.Rectangle, bounds image.Rectangle) Boxes {
	return Boxes{Rects: rects, Bounds: bounds}
}

// Data returns the wrapped rectangle slice.
func (b Boxes) Data() any { return b.Rects }

// WithData returns a new Boxes with the rectangles replaced and the
// bounds carried over. data must be a []image.Rectangle.
func (b Boxes) WithData(data any) (augment.Item, error) {
	rects, ok := data.([]image.Rectangle)
	if !ok {
		return nil, fmt.Errorf("%w: boxes want []image.Rectangle, got %T", ErrPayloadType, data)
	}
	return Boxes{Rects: rects, Bounds: b.Bounds}, nil
}

// String implements fmt.Stringer.
func (b Boxes) String() string {
	return fmt.Sprintf("Boxes(%d boxes in %v)", len(b.Rects), b.Bounds)
}

var _ augment.Item = Boxes{}
