package geometry

import "math"

// Point represents a 2D point with floating-point coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Quad is a four-point polygon. After OrderQuad the order is
// top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// RotatedRect is a rectangle of arbitrary orientation.
//
// Axis is the unit direction of the rectangle's first side; Width is measured
// along Axis and Height along its perpendicular.
type RotatedRect struct {
	Center Point   `json:"center"`
	Axis   Point   `json:"axis"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns Width x Height.
func (r RotatedRect) Area() float64 {
	return r.Width * r.Height
}

// Corners returns the four corners of the rectangle in traversal order
// (not yet ordered by OrderQuad).
func (r RotatedRect) Corners() Quad {
	u := r.Axis.Scale(r.Width / 2)
	v := Point{X: -r.Axis.Y, Y: r.Axis.X}.Scale(r.Height / 2)
	return Quad{
		r.Center.Sub(u).Sub(v),
		r.Center.Add(u).Sub(v),
		r.Center.Add(u).Add(v),
		r.Center.Sub(u).Add(v),
	}
}

// BoundingBox computes the axis-aligned bounding box of a set of points as
// (minX, minY, maxX, maxY).
func BoundingBox(points []Point) (minX, minY, maxX, maxY float64) {
	if len(points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = points[0].X, points[0].Y
	maxX, maxY = minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
