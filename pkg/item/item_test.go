package item

import (
	"errors"
	"image"
	"testing"
)

func TestImageWithData(t *testing.T) {
	orig := NewImage(image.NewRGBA(image.Rect(0, 0, 4, 2)))

	replacement := image.NewGray(image.Rect(0, 0, 8, 8))
	out, err := orig.WithData(replacement)
	if err != nil {
		t.Fatalf("WithData: %v", err)
	}
	if out.Data() != image.Image(replacement) {
		t.Error("payload was not replaced")
	}
	if orig.Bounds() != image.Rect(0, 0, 4, 2) {
		t.Error("original image mutated")
	}

	if _, err := orig.WithData("not an image"); !errors.Is(err, ErrPayloadType) {
		t.Errorf("error = %v, want ErrPayloadType", err)
	}
}

func TestKeypointsWithDataPreservesBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 100, 50)
	orig := NewKeypoints([]Point{{X: 1, Y: 2}}, bounds)

	out, err := orig.WithData([]Point{{X: 9, Y: 9}, {X: 3, Y: 4}})
	if err != nil {
		t.Fatalf("WithData: %v", err)
	}
	kp := out.(Keypoints)
	if kp.Bounds != bounds {
		t.Errorf("bounds = %v, want %v", kp.Bounds, bounds)
	}
	if len(kp.Points) != 2 {
		t.Errorf("points = %d, want 2", len(kp.Points))
	}
	if len(orig.Points) != 1 {
		t.Error("original mutated")
	}

	if _, err := orig.WithData(42); !errors.Is(err, ErrPayloadType) {
		t.Errorf("error = %v, want ErrPayloadType", err)
	}
}

func TestBoxesWithDataPreservesBounds(t *testing.T) {
	bounds := image.Rect(0, 0, 64, 64)
	orig := NewBoxes([]image.Rectangle{image.Rect(1, 1, 9, 9)}, bounds)

	out, err := orig.WithData([]image.Rectangle{})
	if err != nil {
		t.Fatalf("WithData: %v", err)
	}
	if out.(Boxes).Bounds != bounds {
		t.Error("bounds not preserved")
	}

	if _, err := orig.WithData([]Point{}); !errors.Is(err, ErrPayloadType) {
		t.Errorf("error = %v, want ErrPayloadType", err)
	}
}

func TestLabelWithData(t *testing.T) {
	vocab := []string{"cat", "dog"}
	orig := NewLabel("cat", vocab)

	out, err := orig.WithData("dog")
	if err != nil {
		t.Fatalf("WithData: %v", err)
	}
	lbl := out.(Label)
	if lbl.Value != "dog" {
		t.Errorf("value = %q, want dog", lbl.Value)
	}
	if len(lbl.Classes) != 2 {
		t.Error("vocabulary not preserved")
	}

	if _, err := orig.WithData("bird"); err == nil {
		t.Error("value outside the vocabulary must be rejected")
	}
	if _, err := orig.WithData(7); !errors.Is(err, ErrPayloadType) {
		t.Errorf("error = %v, want ErrPayloadType", err)
	}

	// Empty vocabulary accepts anything.
	open := NewLabel("x", nil)
	if _, err := open.WithData("anything"); err != nil {
		t.Errorf("open vocabulary rejected value: %v", err)
	}
}
