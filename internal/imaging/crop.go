package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// EncodedImage is an image encoded as base64 PNG for JSON transport.
type EncodedImage struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// ExpandBox grows the box (x1,y1)-(x2,y2) by margin (a fraction of its width
// and height) on every side around its center and clips the result to an
// image of the given size.
//
// Coordinates are truncated to whole pixels before and after expansion. The
// far edge is clipped to width-1 / height-1, so the returned rectangle, used
// as an exclusive bound, never includes the last row or column.
func ExpandBox(x1, y1, x2, y2 float64, width, height int, margin float64) image.Rectangle {
	ix1, iy1 := math.Trunc(x1), math.Trunc(y1)
	ix2, iy2 := math.Trunc(x2), math.Trunc(y2)

	cx, cy := (ix1+ix2)/2, (iy1+iy2)/2
	bw := (ix2 - ix1) * (1 + 2*margin)
	bh := (iy2 - iy1) * (1 + 2*margin)

	nx1 := int(math.Max(0, cx-bw/2))
	ny1 := int(math.Max(0, cy-bh/2))
	nx2 := int(math.Min(float64(width-1), cx+bw/2))
	ny2 := int(math.Min(float64(height-1), cy+bh/2))

	return image.Rect(nx1, ny1, nx2, ny2)
}

// CropRect copies the rectangle r (relative to the image origin) out of img.
// Returns nil when the clipped rectangle is empty.
func CropRect(img image.Image, r image.Rectangle) *image.NRGBA {
	b := img.Bounds()
	r = r.Add(b.Min).Intersect(b)
	if r.Empty() {
		return nil
	}
	return imaging.Crop(img, r)
}

// Encode scales img by scale (ignored unless positive and not 1) and returns
// it as a base64 PNG.
func Encode(img image.Image, scale float64) (*EncodedImage, error) {
	out := img
	if scale != 1.0 && scale > 0 {
		newWidth := int(float64(img.Bounds().Dx()) * scale)
		newHeight := int(float64(img.Bounds().Dy()) * scale)
		out = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return &EncodedImage{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// Clone returns a copy of a frame that stays valid after the caller reuses
// or mutates the original buffer.
func Clone(img image.Image) *image.NRGBA {
	return imaging.Clone(img)
}
