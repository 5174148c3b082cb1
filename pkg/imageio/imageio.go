// Package imageio loads and saves sample payloads: images in PNG or JPEG
// format and keypoint annotations as JSON sidecar files.
package imageio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/morphkit/morph/pkg/item"
)

// ErrUnknownFormat is returned when a path or format name does not map to
// a supported image encoding.
var ErrUnknownFormat = fmt.Errorf("unknown image format")

// JPEGQuality is the quality setting used when encoding JPEG output.
const JPEGQuality = 90

// Format identifies an image encoding.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

// ParseFormat maps a format name to a Format. It accepts "jpg" as an
// alias for "jpeg" and is case-insensitive.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatForPath infers the encoding from a file extension.
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// Decode reads an image from r. The format is detected from the stream,
// not declared by the caller.
func Decode(r io.Reader) (item.Image, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return item.Image{}, fmt.Errorf("decode image: %w", err)
	}
	return item.Image{Img: img}, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img item.Image, format Format) error {
	switch format {
	case PNG:
		return imaging.Encode(w, img.Img, imaging.PNG)
	case JPEG:
		return imaging.Encode(w, img.Img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// EncodeBytes encodes img in the given format and returns the raw bytes.
// This is the form the sample cache stores.
func EncodeBytes(img item.Image, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the image at path. The bytes on disk decide the format; the
// extension is not consulted.
func Load(path string) (item.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return item.Image{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// LoadBytes decodes an in-memory image, e.g. one fetched over HTTP.
func LoadBytes(data []byte) (item.Image, error) {
	return Decode(bytes.NewReader(data))
}

// Save writes the image to path, choosing the encoding from the file
// extension. Parent directories are created as needed.
func Save(path string, img item.Image) error {
	format, err := FormatForPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Encode(f, img, format)
}

// keypointsFile is the sidecar JSON schema for keypoint annotations.
type keypointsFile struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Points []keypoint `json:"points"`
}

type keypoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ReadKeypoints decodes keypoint annotations from r.
//
// The input is a JSON object carrying the coordinate frame and the
// points:
//
//	{"width": 640, "height": 480, "points": [{"x": 12.5, "y": 30}]}
func ReadKeypoints(r io.Reader) (item.Keypoints, error) {
	var data keypointsFile
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return item.Keypoints{}, fmt.Errorf("decode keypoints: %w", err)
	}
	if data.Width <= 0 || data.Height <= 0 {
		return item.Keypoints{}, fmt.Errorf("keypoints need a positive width and height, got %dx%d", data.Width, data.Height)
	}

	kp := item.Keypoints{
		Points: make([]item.Point, len(data.Points)),
		Bounds: image.Rect(0, 0, data.Width, data.Height),
	}
	for i, p := range data.Points {
		kp.Points[i] = item.Point{X: p.X, Y: p.Y}
	}
	return kp, nil
}

// WriteKeypoints encodes keypoint annotations as JSON to w.
func WriteKeypoints(w io.Writer, kp item.Keypoints) error {
	data := keypointsFile{
		Width:  kp.Bounds.Dx(),
		Height: kp.Bounds.Dy(),
		Points: make([]keypoint, len(kp.Points)),
	}
	for i, p := range kp.Points {
		data.Points[i] = keypoint{X: p.X, Y: p.Y}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// LoadKeypoints reads a keypoints sidecar file at path.
func LoadKeypoints(path string) (item.Keypoints, error) {
	f, err := os.Open(path)
	if err != nil {
		return item.Keypoints{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadKeypoints(f)
}

// SaveKeypoints writes a keypoints sidecar file at path.
func SaveKeypoints(path string, kp item.Keypoints) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteKeypoints(f, kp)
}

// SidecarPath returns the keypoints sidecar path for an image path:
// the same base name with a .json extension.
func SidecarPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + ".json"
}
