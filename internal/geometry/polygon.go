package geometry

import (
	"math"
	"sort"
)

// PolygonArea returns the absolute area of a simple polygon (shoelace formula).
// Fewer than three points have zero area.
func PolygonArea(polygon []Point) float64 {
	if len(polygon) < 3 {
		return 0
	}
	var sum float64
	n := len(polygon)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += polygon[i].X*polygon[j].Y - polygon[j].X*polygon[i].Y
	}
	return math.Abs(sum) / 2
}

// ConvexHull computes the convex hull of a set of points using Andrew's
// monotone chain. The hull is returned in counter-clockwise order (in a
// y-up frame) without repeating the first point. Collinear points are dropped.
func ConvexHull(points []Point) []Point {
	if len(points) < 3 {
		out := make([]Point, len(points))
		copy(out, points)
		return out
	}

	// Make a copy to avoid modifying the input
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull[:len(hull)-1]
}

// MinAreaRect computes the minimum-area rectangle enclosing the points using
// rotating calipers over the convex hull. One side of the optimal rectangle is
// always collinear with a hull edge, so only hull edge directions are tried.
//
// Returns false when the points span zero area (fewer than three hull points).
func MinAreaRect(points []Point) (RotatedRect, bool) {
	hull := ConvexHull(points)
	if len(hull) < 3 {
		return RotatedRect{}, false
	}

	best := RotatedRect{}
	bestArea := math.Inf(1)
	n := len(hull)

	for i := 0; i < n; i++ {
		edge := hull[(i+1)%n].Sub(hull[i])
		length := math.Hypot(edge.X, edge.Y)
		if length < 1e-12 {
			continue
		}
		u := edge.Scale(1 / length)
		v := Point{X: -u.Y, Y: u.X}

		minU, maxU := math.Inf(1), math.Inf(-1)
		minV, maxV := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			pu := p.X*u.X + p.Y*u.Y
			pv := p.X*v.X + p.Y*v.Y
			minU = math.Min(minU, pu)
			maxU = math.Max(maxU, pu)
			minV = math.Min(minV, pv)
			maxV = math.Max(maxV, pv)
		}

		area := (maxU - minU) * (maxV - minV)
		if area < bestArea {
			bestArea = area
			cu := (minU + maxU) / 2
			cv := (minV + maxV) / 2
			best = RotatedRect{
				Center: u.Scale(cu).Add(v.Scale(cv)),
				Axis:   u,
				Width:  maxU - minU,
				Height: maxV - minV,
			}
		}
	}

	if bestArea <= 0 || math.IsInf(bestArea, 1) {
		return RotatedRect{}, false
	}
	return best, true
}

// OrderQuad orders four corner points as top-left, top-right, bottom-right,
// bottom-left.
//
// Top-left minimizes x+y, bottom-right maximizes x+y, top-right minimizes y-x
// and bottom-left maximizes y-x. Ties are broken on (x, y) so the result is
// the same for every permutation of the input.
func OrderQuad(pts Quad) Quad {
	sum := func(p Point) float64 { return p.X + p.Y }
	diff := func(p Point) float64 { return p.Y - p.X }

	return Quad{
		pick(pts, sum, false),
		pick(pts, diff, false),
		pick(pts, sum, true),
		pick(pts, diff, true),
	}
}

// pick returns the point with the smallest (or largest) key.
func pick(pts Quad, key func(Point) float64, largest bool) Point {
	best := pts[0]
	bestKey := key(best)
	for _, p := range pts[1:] {
		k := key(p)
		better := k < bestKey
		if largest {
			better = k > bestKey
		}
		if better || (k == bestKey && lessXY(p, best)) {
			best = p
			bestKey = k
		}
	}
	return best
}

func lessXY(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// distinctCorners reports whether all four points are pairwise distinct.
func distinctCorners(q Quad) bool {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			if q[i] == q[j] {
				return false
			}
		}
	}
	return true
}

// orderByAngle orders corners clockwise (in image coordinates) around their
// centroid, starting from the corner with the smallest y (then smallest x).
// Used when OrderQuad collapses two corners onto the same slot, which happens
// for rectangles rotated by exactly 45 degrees.
func orderByAngle(q Quad) Quad {
	var c Point
	for _, p := range q {
		c = c.Add(p)
	}
	c = c.Scale(0.25)

	pts := q
	sort.Slice(pts[:], func(i, j int) bool {
		ai := math.Atan2(pts[i].Y-c.Y, pts[i].X-c.X)
		aj := math.Atan2(pts[j].Y-c.Y, pts[j].X-c.X)
		return ai < aj
	})

	start := 0
	for i := 1; i < 4; i++ {
		if pts[i].Y < pts[start].Y || (pts[i].Y == pts[start].Y && pts[i].X < pts[start].X) {
			start = i
		}
	}

	var out Quad
	for i := 0; i < 4; i++ {
		out[i] = pts[(start+i)%4]
	}
	return out
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
