package detection

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/plate-capture/internal/geometry"
	"github.com/ironsheep/plate-capture/internal/plate"
)

// ContourConfig tunes the contour plate detector.
type ContourConfig struct {
	// EdgeThreshold is the grayscale step (0-255) between neighbors that
	// marks an edge pixel.
	EdgeThreshold float64

	// MinArea is the smallest bounding-box area, in pixels, kept as a plate.
	MinArea int

	// MinAspect and MaxAspect bound width/height. Square-ish two-row plates
	// sit near 1.3, single-row plates near 4.5.
	MinAspect float64
	MaxAspect float64

	// MinRectangularity drops contours whose length is far from the
	// perimeter of their bounding box (0.0 to 1.0).
	MinRectangularity float64

	// Polygons reports each plate as the minimum-area rectangle around its
	// contour instead of an axis-aligned box, so tilted plates are
	// rectified by the extractor.
	Polygons bool
}

// DefaultContourConfig returns thresholds suited to plates filling a few
// percent of a 640x480 frame.
func DefaultContourConfig() ContourConfig {
	return ContourConfig{
		EdgeThreshold:     30,
		MinArea:           600,
		MinAspect:         1.0,
		MaxAspect:         6.0,
		MinRectangularity: 0.6,
	}
}

// ContourDetector is a plate.PlateDetector that finds plate-shaped
// rectangles with edge and contour analysis. It needs no model and works
// best on plates with a clear border against the car body.
//
// # Algorithm
//
//  1. Grayscale the frame and mark pixels whose right or lower neighbor
//     differs by more than EdgeThreshold
//  2. Group edge pixels into 8-connected contours with an iterative flood fill
//  3. Keep contours whose bounding box has a plate aspect ratio and whose
//     length is close to the box perimeter
//  4. Score the interior edge density: characters make a plate busy but
//     not solid
//  5. Drop candidates nested inside a larger candidate
//
// Confidence is rectangularity x (0.5 + 0.5 x texture), so an empty
// rectangle scores at most 0.5.
type ContourDetector struct {
	cfg ContourConfig
}

// NewContourDetector creates a detector with the given thresholds.
func NewContourDetector(cfg ContourConfig) *ContourDetector {
	return &ContourDetector{cfg: cfg}
}

type candidate struct {
	bounds     image.Rectangle
	contour    []image.Point
	confidence float64
}

// DetectPlates implements plate.PlateDetector. Regions are returned in frame
// coordinates, highest confidence first.
func (d *ContourDetector) DetectPlates(ctx context.Context, frame image.Image) ([]plate.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, nil
	}
	bounds := frame.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width < 3 || height < 3 {
		return nil, nil
	}

	edges := detectEdges(effect.Grayscale(frame), d.cfg.EdgeThreshold)
	contours := findContours(edges, width, height)

	candidates := make([]candidate, 0)
	for _, contour := range contours {
		minX, minY := width, height
		maxX, maxY := 0, 0
		for _, p := range contour {
			if p.X < minX {
				minX = p.X
			}
			if p.X > maxX {
				maxX = p.X
			}
			if p.Y < minY {
				minY = p.Y
			}
			if p.Y > maxY {
				maxY = p.Y
			}
		}

		w := maxX - minX + 1
		h := maxY - minY + 1
		if w*h < d.cfg.MinArea {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect < d.cfg.MinAspect || aspect > d.cfg.MaxAspect {
			continue
		}

		expected := 2 * (w + h)
		rectangularity := 1.0 - math.Abs(float64(len(contour)-expected))/float64(expected)
		if rectangularity < d.cfg.MinRectangularity {
			continue
		}

		texture := textureScore(edges, minX+1, minY+1, maxX-1, maxY-1)
		confidence := math.Max(0, math.Min(1, rectangularity*(0.5+0.5*texture)))

		candidates = append(candidates, candidate{
			bounds:     image.Rect(minX, minY, maxX+1, maxY+1),
			contour:    contour,
			confidence: math.Round(confidence*1000) / 1000,
		})
	}

	candidates = suppressNested(candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].confidence > candidates[j].confidence
	})

	regions := make([]plate.Region, 0, len(candidates))
	for _, c := range candidates {
		regions = append(regions, plate.Region{
			Shape:      d.shape(c, bounds.Min),
			Confidence: c.confidence,
		})
	}
	return regions, nil
}

// shape converts a candidate to frame coordinates.
func (d *ContourDetector) shape(c candidate, origin image.Point) plate.Shape {
	if d.cfg.Polygons {
		pts := make([]geometry.Point, len(c.contour))
		for i, p := range c.contour {
			pts[i] = geometry.Pt(float64(p.X+origin.X), float64(p.Y+origin.Y))
		}
		if rect, ok := geometry.MinAreaRect(pts); ok {
			corners := rect.Corners()
			return plate.Polygon{Points: corners[:]}
		}
	}
	r := c.bounds.Add(origin)
	return plate.Box{
		X1: float64(r.Min.X),
		Y1: float64(r.Min.Y),
		X2: float64(r.Max.X),
		Y2: float64(r.Max.Y),
	}
}

// detectEdges marks pixels whose right or lower neighbor differs by more than
// threshold. gray is bild grayscale output, so only the red channel is read.
// Border pixels are never edges. The result is indexed [y][x] relative to the
// image origin.
func detectEdges(gray *image.RGBA, threshold float64) [][]bool {
	b := gray.Bounds()
	level := func(x, y int) float64 {
		return float64(gray.Pix[gray.PixOffset(b.Min.X+x, b.Min.Y+y)])
	}
	width, height := b.Dx(), b.Dy()
	edges := make([][]bool, height)

	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			c := level(x, y)
			cx := level(x+1, y)
			cy := level(x, y+1)

			if math.Abs(c-cx) > threshold || math.Abs(c-cy) > threshold {
				edges[y][x] = true
			}
		}
	}

	return edges
}

// findContours groups edge pixels into 8-connected components. Components
// smaller than 10 pixels are noise and dropped.
func findContours(edges [][]bool, width, height int) [][]image.Point {
	visited := make([][]bool, height)
	for y := 0; y < height; y++ {
		visited[y] = make([]bool, width)
	}

	contours := make([][]image.Point, 0)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if edges[y][x] && !visited[y][x] {
				contour := floodFill(edges, visited, x, y, width, height)
				if len(contour) >= 10 {
					contours = append(contours, contour)
				}
			}
		}
	}

	return contours
}

// floodFill collects the component containing (startX, startY). It uses an
// explicit stack so large contours cannot overflow the goroutine stack.
func floodFill(edges, visited [][]bool, startX, startY, width, height int) []image.Point {
	var contour []image.Point
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= width || p.Y < 0 || p.Y >= height {
			continue
		}
		if visited[p.Y][p.X] || !edges[p.Y][p.X] {
			continue
		}

		visited[p.Y][p.X] = true
		contour = append(contour, p)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				stack = append(stack, image.Point{X: p.X + dx, Y: p.Y + dy})
			}
		}
	}

	return contour
}

// textureScore rates the edge density of the inclusive rectangle
// (x1,y1)-(x2,y2). Densities between 0.05 and 0.4 score above zero with a
// peak at 0.2, which is typical for printed characters.
func textureScore(edges [][]bool, x1, y1, x2, y2 int) float64 {
	if x2 < x1 || y2 < y1 {
		return 0
	}
	count := 0
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			if edges[y][x] {
				count++
			}
		}
	}
	density := float64(count) / float64((x2-x1+1)*(y2-y1+1))
	if density < 0.05 || density > 0.4 {
		return 0
	}
	return 1.0 - math.Abs(density-0.2)/0.2
}

// suppressNested drops candidates whose bounds lie inside a larger
// candidate, such as the border of a character inside a plate.
func suppressNested(candidates []candidate) []candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return area(candidates[i].bounds) > area(candidates[j].bounds)
	})

	kept := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		nested := false
		for _, k := range kept {
			if c.bounds.In(k.bounds) {
				nested = true
				break
			}
		}
		if !nested {
			kept = append(kept, c)
		}
	}
	return kept
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
