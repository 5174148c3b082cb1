package item

import (
	"errors"
	"fmt"
	"image"

	"github.com/morphkit/morph/pkg/augment"
)

// ErrPayloadType is returned by WithData when the replacement payload does
// not have the type the item kind wraps.
var ErrPayloadType = errors.New("payload has wrong type for item kind")

// Image wraps a decoded image. The payload is the image.Image itself.
type Image struct {
	// Img is the wrapped image.
	Img image.Image
}

// NewImage wraps img as an augmentation item.
func NewImage(img image.Image) Image {
	return Image{Img: img}
}

// Data returns the wrapped image.
func (im Image) Data() any { return im.Img }

// WithData returns a new Image wrapping data, which must be an
// image.Image.
func (im Image) WithData(data any) (augment.Item, error) {
	img, ok := data.(image.Image)
	if !ok {
		return nil, fmt.Errorf("%w: image wants image.Image, got %T", ErrPayloadType, data)
	}
	return Image{Img: img}, nil
}

// Bounds returns the spatial extent of the image.
func (im Image) Bounds() image.Rectangle {
	if im.Img == nil {
		return image.Rectangle{}
	}
	return im.Img.Bounds()
}

// String implements fmt.Stringer.
func (im Image) String() string {
	b := im.Bounds()
	return fmt.Sprintf("Image(%dx%d)", b.Dx(), b.Dy())
}

var _ augment.Item = Image{}
