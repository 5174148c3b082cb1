package item

import (
	"fmt"
	"image"

	"github.com/morphkit/morph/pkg/augment"
)

// Point is a 2D coordinate in the continuous image plane.
type Point struct {
	X, Y float64
}

// Keypoints wraps an ordered set of 2D points together with the spatial
// extent they live in. The payload is the point slice; Bounds is metadata
// preserved across WithData, and is what geometric transforms consult to
// mirror, rotate, or crop the points consistently with the image they
// annotate.
type Keypoints struct {
	// Points is the wrapped payload.
	Points []Point

	// Bounds is the spatial extent the points are defined within,
	// typically the bounds of the image they belong to.
	Bounds image.Rectangle
}

// NewKeypoints wraps points defined within bounds.
func NewKeypoints(points []Point, bounds image.Rectangle) Keypoints {
	return Keypoints{Points: points, Bounds: bounds}
}

// Data returns the wrapped point slice.
func (k Keypoints) Data() any { return k.Points }

// WithData returns a new Keypoints with the point slice replaced and the
// bounds carried over. data must be a []Point.
func (k Keypoints) WithData(data any) (augment.Item, error) {
	pts, ok := data.([]Point)
	if !ok {
		return nil, fmt.Errorf("%w: keypoints want []Point, got %T", ErrPayloadType, data)
	}
	return Keypoints{Points: pts, Bounds: k.Bounds}, nil
}

// String implements fmt.Stringer.
func (k Keypoints) String() string {
	return fmt.Sprintf("Keypoints(%d points in %v)", len(k.Points), k.Bounds)
}

var _ augment.Item = Keypoints{}
