package imaging

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/plate-capture/internal/geometry"
)

// outlineWidth is the stroke width, in pixels, of region outlines.
const outlineWidth = 2

// ConfidenceColor maps a confidence in [0, 1] onto a red-to-green ramp.
// Values outside the range are clamped.
func ConfidenceColor(confidence float64) colorful.Color {
	c := math.Max(0, math.Min(1, confidence))
	return colorful.Hsv(120*c, 0.9, 0.95).Clamped()
}

// Annotate returns a copy of frame with the closed polygon outline drawn in
// the confidence color and label written above its top-left point. An empty
// outline leaves only the label, placed in the top-left corner of the frame.
func Annotate(frame image.Image, outline []geometry.Point, label string, confidence float64) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, frame, b.Min, draw.Src)

	stroke := ConfidenceColor(confidence)
	for i := range outline {
		p := outline[i]
		q := outline[(i+1)%len(outline)]
		drawLine(out, p, q, stroke)
	}

	if label == "" {
		return out
	}
	x, y := b.Min.X+4, b.Min.Y+4
	if len(outline) > 0 {
		minX, minY, _, _ := geometry.BoundingBox(outline)
		x, y = int(minX), int(minY)-basicfont.Face7x13.Height-4
	}
	drawLabel(out, x, y, label, color.White, stroke)
	return out
}

// drawLine draws a segment with a square brush, clipped to the image.
func drawLine(img *image.RGBA, p, q geometry.Point, c color.Color) {
	steps := int(math.Ceil(math.Max(math.Abs(q.X-p.X), math.Abs(q.Y-p.Y))))
	if steps == 0 {
		steps = 1
	}
	bounds := img.Bounds()
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(p.X + t*(q.X-p.X)))
		y := int(math.Round(p.Y + t*(q.Y-p.Y)))
		for dy := 0; dy < outlineWidth; dy++ {
			for dx := 0; dx < outlineWidth; dx++ {
				pt := image.Pt(x+dx, y+dy)
				if pt.In(bounds) {
					img.Set(pt.X, pt.Y, c)
				}
			}
		}
	}
}

// drawLabel writes text with basicfont on a filled background box whose
// top-left corner is (x, y). The box is shifted to stay inside the image.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.Color) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face}

	w := d.MeasureString(text).Ceil() + 4
	h := face.Height + 4

	bounds := img.Bounds()
	if x+w > bounds.Max.X {
		x = bounds.Max.X - w
	}
	if y+h > bounds.Max.Y {
		y = bounds.Max.Y - h
	}
	if x < bounds.Min.X {
		x = bounds.Min.X
	}
	if y < bounds.Min.Y {
		y = bounds.Min.Y
	}

	box := image.Rect(x, y, x+w, y+h).Intersect(bounds)
	draw.Draw(img, box, image.NewUniform(bg), image.Point{}, draw.Src)

	d.Dot = fixed.Point26_6{X: fixed.I(x + 2), Y: fixed.I(y + 2 + face.Ascent)}
	d.DrawString(text)
}
