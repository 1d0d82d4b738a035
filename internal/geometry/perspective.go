package geometry

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// Minimum rectified plate size. Smaller plates are upscaled so downstream
// character detection stays stable.
const (
	MinROIWidth  = 160
	MinROIHeight = 44
)

// ErrDegeneratePolygon is returned when a polygon has fewer than three points
// or zero area and therefore cannot be rectified.
var ErrDegeneratePolygon = errors.New("degenerate polygon")

// Homography is a 3x3 projective transform stored row-major.
//
//	[h0 h1 h2]
//	[h3 h4 h5]
//	[h6 h7 h8]
type Homography [9]float64

// Apply maps a point through the transform.
func (h Homography) Apply(p Point) Point {
	w := h[6]*p.X + h[7]*p.Y + h[8]
	if w == 0 {
		return Point{X: math.Inf(1), Y: math.Inf(1)}
	}
	return Point{
		X: (h[0]*p.X + h[1]*p.Y + h[2]) / w,
		Y: (h[3]*p.X + h[4]*p.Y + h[5]) / w,
	}
}

// Inverse returns the inverse transform, if it exists.
func (h Homography) Inverse() (Homography, error) {
	m := mat.NewDense(3, 3, h[:])
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return Homography{}, fmt.Errorf("homography is singular: %w", err)
	}
	var out Homography
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r*3+c] = inv.At(r, c)
		}
	}
	return out, nil
}

// PerspectiveTransform computes the homography mapping the four src corners
// onto the four dst corners.
//
// With h8 fixed to 1, each correspondence (x,y)->(x',y') contributes two rows
// to an 8x8 linear system:
//
//	x' = (h0 x + h1 y + h2) / (h6 x + h7 y + 1)
//	y' = (h3 x + h4 y + h5) / (h6 x + h7 y + 1)
func PerspectiveTransform(src, dst Quad) (Homography, error) {
	A := mat.NewDense(8, 8, nil)
	B := mat.NewVecDense(8, nil)

	for i := 0; i < 4; i++ {
		x, y := src[i].X, src[i].Y
		xp, yp := dst[i].X, dst[i].Y

		A.Set(i*2, 0, x)
		A.Set(i*2, 1, y)
		A.Set(i*2, 2, 1)
		A.Set(i*2, 6, -x*xp)
		A.Set(i*2, 7, -y*xp)
		B.SetVec(i*2, xp)

		A.Set(i*2+1, 3, x)
		A.Set(i*2+1, 4, y)
		A.Set(i*2+1, 5, 1)
		A.Set(i*2+1, 6, -x*yp)
		A.Set(i*2+1, 7, -y*yp)
		B.SetVec(i*2+1, yp)
	}

	var params mat.VecDense
	if err := params.SolveVec(A, B); err != nil {
		return Homography{}, fmt.Errorf("failed to solve perspective transform: %w", err)
	}

	var h Homography
	for i := 0; i < 8; i++ {
		h[i] = params.AtVec(i)
	}
	h[8] = 1
	return h, nil
}

// WarpPerspective renders a width x height image whose pixel (x, y) is sampled
// from img at h^-1(x, y), i.e. h maps source coordinates to destination
// coordinates. Sampling is bilinear; samples outside img are opaque black.
func WarpPerspective(img image.Image, h Homography, width, height int) (*image.NRGBA, error) {
	inv, err := h.Inverse()
	if err != nil {
		return nil, err
	}

	src := imaging.Clone(img)
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sp := inv.Apply(Point{X: float64(x), Y: float64(y)})
			dst.SetNRGBA(x, y, bilinear(src, sp.X, sp.Y))
		}
	}
	return dst, nil
}

// bilinear samples src at a fractional position. src.Bounds() starts at (0,0)
// because imaging.Clone rebases it.
func bilinear(src *image.NRGBA, x, y float64) color.NRGBA {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return color.NRGBA{A: 255}
	}
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := pixelAt(src, x0, y0)
	c10 := pixelAt(src, x0+1, y0)
	c01 := pixelAt(src, x0, y0+1)
	c11 := pixelAt(src, x0+1, y0+1)

	mix := func(a, b, c, d uint8) uint8 {
		top := float64(a)*(1-fx) + float64(b)*fx
		bottom := float64(c)*(1-fx) + float64(d)*fx
		return uint8(math.Round(top*(1-fy) + bottom*fy))
	}

	return color.NRGBA{
		R: mix(c00.R, c10.R, c01.R, c11.R),
		G: mix(c00.G, c10.G, c01.G, c11.G),
		B: mix(c00.B, c10.B, c01.B, c11.B),
		A: mix(c00.A, c10.A, c01.A, c11.A),
	}
}

func pixelAt(src *image.NRGBA, x, y int) color.NRGBA {
	b := src.Bounds()
	if x < b.Min.X || y < b.Min.Y || x >= b.Max.X || y >= b.Max.Y {
		return color.NRGBA{A: 255}
	}
	return src.NRGBAAt(x, y)
}

// RectifyFromPolygon extracts the plate bounded by polygon as an upright
// rectangle of at least MinROIWidth x MinROIHeight pixels.
//
// Returns ErrDegeneratePolygon if the polygon has fewer than three points or
// zero area.
func RectifyFromPolygon(frame image.Image, polygon []Point) (*image.NRGBA, error) {
	if len(polygon) < 3 || PolygonArea(polygon) == 0 {
		return nil, ErrDegeneratePolygon
	}

	rect, ok := MinAreaRect(polygon)
	if !ok {
		return nil, ErrDegeneratePolygon
	}

	box := OrderQuad(rect.Corners())
	if !distinctCorners(box) {
		box = orderByAngle(rect.Corners())
	}

	width, height := RectifiedSize(box)

	// The polygon comes from frame coordinates; shift it when the frame
	// bounds do not start at the origin.
	origin := frame.Bounds().Min
	if origin != (image.Point{}) {
		off := Point{X: float64(origin.X), Y: float64(origin.Y)}
		for i := range box {
			box[i] = box[i].Sub(off)
		}
	}

	dst := Quad{
		{X: 0, Y: 0},
		{X: float64(width - 1), Y: 0},
		{X: float64(width - 1), Y: float64(height - 1)},
		{X: 0, Y: float64(height - 1)},
	}

	h, err := PerspectiveTransform(box, dst)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegeneratePolygon, err)
	}
	return WarpPerspective(frame, h, width, height)
}

// RectifiedSize returns the output size for an ordered quad: the longer of the
// two horizontal edges and the longer of the two vertical edges, truncated to
// whole pixels and clamped to the minimum ROI size.
func RectifiedSize(q Quad) (width, height int) {
	// Small epsilon so an exact 300.0 computed as 299.99999 still yields 300.
	const eps = 1e-6
	w := math.Max(q[0].Distance(q[1]), q[2].Distance(q[3]))
	h := math.Max(q[0].Distance(q[3]), q[1].Distance(q[2]))

	width = int(w + eps)
	height = int(h + eps)
	if width < MinROIWidth {
		width = MinROIWidth
	}
	if height < MinROIHeight {
		height = MinROIHeight
	}
	return width, height
}
