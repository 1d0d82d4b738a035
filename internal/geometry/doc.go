// Package geometry provides the planar primitives used to rectify plate regions.
//
// All coordinates use the image convention: origin at the top-left corner,
// X increasing rightward and Y increasing downward. Points are float64 so that
// detector output (mask polygons, sub-pixel boxes) can be used without rounding.
//
// # Rectification
//
// RectifyFromPolygon turns an arbitrary plate polygon into an upright,
// rectangular image:
//
//  1. The minimum-area enclosing rotated rectangle of the polygon is computed
//     (rotating calipers over the convex hull).
//  2. Its four corners are ordered top-left, top-right, bottom-right,
//     bottom-left with OrderQuad.
//  3. The output size is the longer of each pair of opposite edges, clamped to
//     at least MinROIWidth x MinROIHeight.
//  4. A perspective transform maps the ordered corners onto the output
//     rectangle and the frame is resampled bilinearly.
//
// # Thread Safety
//
// Every function in this package is stateless and safe for concurrent use.
package geometry
