package transform_test

import (
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"testing"

	"github.com/morphkit/morph/pkg/augment"
	"github.com/morphkit/morph/pkg/item"
	"github.com/morphkit/morph/pkg/transform"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(3, 5))
}

// twoPixelImage builds a 2x1 image with a red left pixel and a blue
// right pixel, which makes orientation visible after flips and turns.
func twoPixelImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	return img
}

func redAt(t *testing.T, img image.Image, x, y int) bool {
	t.Helper()
	r, _, _, _ := img.At(x, y).RGBA()
	return r > 0x7fff
}

func TestFlipXImage(t *testing.T) {
	out, err := transform.FlipX{}.Apply(augment.NoState, item.NewImage(twoPixelImage()))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	img := out.Data().(image.Image)
	if redAt(t, img, 0, 0) {
		t.Error("left pixel still red after horizontal flip")
	}
	if !redAt(t, img, 1, 0) {
		t.Error("red pixel did not move right")
	}
}

func TestFlipXKeypoints(t *testing.T) {
	kp := item.NewKeypoints([]item.Point{{X: 2, Y: 3}}, image.Rect(0, 0, 10, 10))

	out, err := transform.FlipX{}.Apply(augment.NoState, kp)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := out.(item.Keypoints).Points[0]
	if got.X != 8 || got.Y != 3 {
		t.Errorf("flipped point = %v, want (8, 3)", got)
	}

	// Flipping twice restores the original.
	back, err := transform.FlipX{}.Apply(augment.NoState, out)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p := back.(item.Keypoints).Points[0]; p.X != 2 || p.Y != 3 {
		t.Errorf("double flip = %v, want (2, 3)", p)
	}
}

func TestFlipYBoxes(t *testing.T) {
	bx := item.NewBoxes([]image.Rectangle{image.Rect(1, 1, 4, 4)}, image.Rect(0, 0, 10, 10))

	out, err := transform.FlipY{}.Apply(augment.NoState, bx)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := out.(item.Boxes).Rects[0]
	if got != image.Rect(1, 6, 4, 9) {
		t.Errorf("flipped box = %v, want (1,6)-(4,9)", got)
	}
}

func TestFlipLabelPassthrough(t *testing.T) {
	lbl := item.NewLabel("cat", []string{"cat", "dog"})
	out, err := transform.FlipX{}.Apply(augment.NoState, lbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Data() != "cat" {
		t.Errorf("label changed to %v", out.Data())
	}
}

type unknownItem struct{}

func (unknownItem) Data() any                          { return nil }
func (unknownItem) WithData(any) (augment.Item, error) { return unknownItem{}, nil }

func TestUnsupportedItemKind(t *testing.T) {
	_, err := transform.FlipX{}.Apply(augment.NoState, unknownItem{})
	if !errors.Is(err, transform.ErrUnsupportedItem) {
		t.Fatalf("error = %v, want ErrUnsupportedItem", err)
	}
}

func TestRotate90Keypoints(t *testing.T) {
	kp := item.NewKeypoints([]item.Point{{X: 2, Y: 3}}, image.Rect(0, 0, 10, 6))

	out, err := transform.Rotate90{Turns: 1}.Apply(augment.NoState, kp)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	rot := out.(item.Keypoints)
	if p := rot.Points[0]; p.X != 3 || p.Y != 8 {
		t.Errorf("rotated point = %v, want (3, 8)", p)
	}
	if rot.Bounds != image.Rect(0, 0, 6, 10) {
		t.Errorf("rotated bounds = %v, want 6x10", rot.Bounds)
	}
}

func TestRotate90FullCircle(t *testing.T) {
	kp := item.NewKeypoints([]item.Point{{X: 2, Y: 3}}, image.Rect(0, 0, 10, 6))

	out, err := transform.Rotate90{Turns: 4}.Apply(augment.NoState, kp)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if p := out.(item.Keypoints).Points[0]; p.X != 2 || p.Y != 3 {
		t.Errorf("full circle moved the point to %v", p)
	}
}

func TestRotate90ImageMatchesKeypoints(t *testing.T) {
	// The red pixel at (0,0) of a 2x1 image must land where the point
	// mapping says: (0,0) -> (0, 2) corner region, i.e. pixel (0,1) of
	// the 1x2 result.
	out, err := transform.Rotate90{Turns: 1}.Apply(augment.NoState, item.NewImage(twoPixelImage()))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	img := out.Data().(image.Image)
	if got := img.Bounds(); got.Dx() != 1 || got.Dy() != 2 {
		t.Fatalf("rotated bounds = %v, want 1x2", got)
	}
	if !redAt(t, img, 0, 1) {
		t.Error("red pixel did not rotate to the bottom")
	}
}

func TestRotate90Fusion(t *testing.T) {
	fused := augment.Compose(transform.Rotate90{Turns: 1}, transform.Rotate90{Turns: 2})
	if got, ok := fused.(transform.Rotate90); !ok || got.Turns != 3 {
		t.Errorf("Compose(rot1, rot2) = %v, want Rotate90{3}", fused)
	}

	cancelled := augment.Compose(transform.Rotate90{Turns: 1}, transform.Rotate90{Turns: 3})
	if _, ok := cancelled.(augment.Identity); !ok {
		t.Errorf("Compose(rot1, rot3) = %v, want Identity", cancelled)
	}

	// No fusion across kinds.
	mixed := augment.Compose(transform.Rotate90{Turns: 1}, transform.FlipX{})
	if _, ok := mixed.(*augment.Sequence); !ok {
		t.Errorf("Compose(rot, flip) = %T, want *Sequence", mixed)
	}
}

func TestRandomCropDeterministicState(t *testing.T) {
	crop := transform.RandomCrop{Width: 4, Height: 4}
	state := augment.State(transform.CropState{FX: 0, FY: 0})

	kp := item.NewKeypoints([]item.Point{{X: 3, Y: 2}}, image.Rect(0, 0, 10, 10))
	out, err := crop.Apply(state, kp)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	res := out.(item.Keypoints)
	if p := res.Points[0]; p.X != 3 || p.Y != 2 {
		t.Errorf("zero-offset crop moved the point to %v", p)
	}
	if res.Bounds != image.Rect(0, 0, 4, 4) {
		t.Errorf("crop bounds = %v, want 4x4", res.Bounds)
	}
}

func TestRandomCropMaxOffsetStaysInBounds(t *testing.T) {
	crop := transform.RandomCrop{Width: 4, Height: 4}
	state := augment.State(transform.CropState{FX: 0.999999, FY: 0.999999})

	img := item.NewImage(image.NewNRGBA(image.Rect(0, 0, 10, 10)))
	out, err := crop.Apply(state, img)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b := out.Data().(image.Image).Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Errorf("cropped size = %v, want 4x4", b)
	}
}

func TestRandomCropTooLarge(t *testing.T) {
	crop := transform.RandomCrop{Width: 20, Height: 20}
	img := item.NewImage(image.NewNRGBA(image.Rect(0, 0, 10, 10)))

	_, err := crop.Apply(transform.CropState{}, img)
	if !errors.Is(err, transform.ErrCropTooLarge) {
		t.Fatalf("error = %v, want ErrCropTooLarge", err)
	}
}

func TestRandomCropSynchronizesTuple(t *testing.T) {
	// Image and keypoints share a 10x10 extent, so one drawn state must
	// crop both at the same pixel offset.
	crop := transform.RandomCrop{Width: 4, Height: 4}
	img := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	img.Set(5, 5, color.NRGBA{R: 255, A: 255})

	out, err := augment.ApplyAll(testRNG(), crop,
		item.NewImage(img),
		item.NewKeypoints([]item.Point{{X: 5, Y: 5}}, image.Rect(0, 0, 10, 10)),
	)
	if err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}

	p := out[1].(item.Keypoints).Points[0]
	cropped := out[0].Data().(image.Image)
	if p.X >= 0 && p.Y >= 0 && p.X < 4 && p.Y < 4 {
		if !redAt(t, cropped, int(p.X), int(p.Y)) {
			t.Errorf("marker pixel not at transformed keypoint (%v)", p)
		}
	}
}

func TestResizeScalesKeypoints(t *testing.T) {
	rz := transform.Resize{Width: 20, Height: 5}
	kp := item.NewKeypoints([]item.Point{{X: 5, Y: 8}}, image.Rect(0, 0, 10, 10))

	out, err := rz.Apply(augment.NoState, kp)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	res := out.(item.Keypoints)
	if p := res.Points[0]; p.X != 10 || p.Y != 4 {
		t.Errorf("scaled point = %v, want (10, 4)", p)
	}
	if res.Bounds != image.Rect(0, 0, 20, 5) {
		t.Errorf("scaled bounds = %v", res.Bounds)
	}
}

func TestResizeImage(t *testing.T) {
	rz := transform.Resize{Width: 4, Height: 2}
	out, err := rz.Apply(augment.NoState, item.NewImage(twoPixelImage()))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if b := out.Data().(image.Image).Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("resized to %v, want 4x2", b)
	}
}

func TestRandomFlipXStates(t *testing.T) {
	kp := item.NewKeypoints([]item.Point{{X: 2, Y: 3}}, image.Rect(0, 0, 10, 10))
	flip := transform.RandomFlipX{P: 0.5}

	out, err := flip.Apply(false, kp)
	if err != nil {
		t.Fatalf("Apply(false): %v", err)
	}
	if p := out.(item.Keypoints).Points[0]; p.X != 2 {
		t.Errorf("state false must not flip, got %v", p)
	}

	out, err = flip.Apply(true, kp)
	if err != nil {
		t.Fatalf("Apply(true): %v", err)
	}
	if p := out.(item.Keypoints).Points[0]; p.X != 8 {
		t.Errorf("state true must flip, got %v", p)
	}

	if _, err := flip.Apply("bad", kp); !errors.Is(err, augment.ErrStateType) {
		t.Errorf("error = %v, want ErrStateType", err)
	}
}

func TestRandomFlipXProbabilityEdges(t *testing.T) {
	rng := testRNG()
	for i := 0; i < 32; i++ {
		if (transform.RandomFlipX{P: 0}).RandState(rng).(bool) {
			t.Fatal("P=0 drew a flip")
		}
		if !(transform.RandomFlipX{P: 1}).RandState(rng).(bool) {
			t.Fatal("P=1 drew a non-flip")
		}
	}
}

func TestOneOf(t *testing.T) {
	oneOf := transform.OneOf{Choices: []augment.Transform{
		transform.FlipX{},
		transform.Rotate90{Turns: 1},
	}}
	kp := item.NewKeypoints([]item.Point{{X: 2, Y: 3}}, image.Rect(0, 0, 10, 10))

	out, err := oneOf.Apply(transform.OneOfState{Index: 0, Inner: augment.NoState}, kp)
	if err != nil {
		t.Fatalf("Apply branch 0: %v", err)
	}
	if p := out.(item.Keypoints).Points[0]; p.X != 8 {
		t.Errorf("branch 0 should flip, got %v", p)
	}

	out, err = oneOf.Apply(transform.OneOfState{Index: 1, Inner: augment.NoState}, kp)
	if err != nil {
		t.Fatalf("Apply branch 1: %v", err)
	}
	if p := out.(item.Keypoints).Points[0]; p.X != 3 || p.Y != 8 {
		t.Errorf("branch 1 should rotate, got %v", p)
	}

	if _, err := oneOf.Apply(transform.OneOfState{Index: 9}, kp); !errors.Is(err, augment.ErrStateType) {
		t.Errorf("out-of-range branch error = %v, want ErrStateType", err)
	}
	if _, err := (transform.OneOf{}).Apply(augment.NoState, kp); !errors.Is(err, transform.ErrNoChoices) {
		t.Errorf("empty choices error = %v, want ErrNoChoices", err)
	}
}

func TestOneOfTupleSharesBranch(t *testing.T) {
	oneOf := transform.OneOf{Choices: []augment.Transform{
		transform.FlipX{},
		augment.Identity{},
	}}
	a := item.NewKeypoints([]item.Point{{X: 2, Y: 0}}, image.Rect(0, 0, 10, 10))
	b := item.NewKeypoints([]item.Point{{X: 2, Y: 0}}, image.Rect(0, 0, 10, 10))

	out, err := augment.ApplyAll(testRNG(), oneOf, a, b)
	if err != nil {
		t.Fatalf("ApplyAll: %v", err)
	}
	pa := out[0].(item.Keypoints).Points[0]
	pb := out[1].(item.Keypoints).Points[0]
	if pa != pb {
		t.Errorf("tuple took different branches: %v vs %v", pa, pb)
	}
}

func TestMapData(t *testing.T) {
	upper := transform.MapData{
		Name: "upper",
		Fn: func(data any) (any, error) {
			return data.(string) + "!", nil
		},
	}
	lbl := item.NewLabel("cat", nil)

	out, err := augment.Apply(testRNG(), upper, lbl)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.Data() != "cat!" {
		t.Errorf("payload = %v, want cat!", out.Data())
	}
}
