package detection

import (
	"context"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/plate-capture/internal/geometry"
	"github.com/ironsheep/plate-capture/internal/plate"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// fillRect fills [x1,x2) x [y1,y2) with c.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.Set(x, y, c)
		}
	}
}

// createPlateImage draws a dark 200x60 plate at (100,200) on a white frame,
// optionally with white character strokes inside.
func createPlateImage(withChars bool) *image.RGBA {
	img := createTestImage(640, 480, color.White)
	fillRect(img, 100, 200, 300, 260, color.Black)
	if withChars {
		for i := 0; i < 8; i++ {
			x := 112 + i*22
			fillRect(img, x, 210, x+6, 250, color.White)
		}
	}
	return img
}

func TestContourDetector_Plate(t *testing.T) {
	d := NewContourDetector(DefaultContourConfig())
	regions, err := d.DetectPlates(context.Background(), createPlateImage(false))
	if err != nil {
		t.Fatalf("DetectPlates failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("regions: got %d, want 1", len(regions))
	}

	box, ok := regions[0].Shape.(plate.Box)
	if !ok {
		t.Fatalf("shape: got %T, want plate.Box", regions[0].Shape)
	}
	want := plate.Box{X1: 99, Y1: 199, X2: 300, Y2: 260}
	if box != want {
		t.Errorf("box: got %+v, want %+v", box, want)
	}
	if c := regions[0].Confidence; c < 0.45 || c > 0.5 {
		t.Errorf("confidence of an empty plate: got %v, want about 0.5", c)
	}
}

func TestContourDetector_TextureRaisesConfidence(t *testing.T) {
	d := NewContourDetector(DefaultContourConfig())

	blank, err := d.DetectPlates(context.Background(), createPlateImage(false))
	if err != nil || len(blank) == 0 {
		t.Fatalf("blank plate: %v, %d regions", err, len(blank))
	}
	textured, err := d.DetectPlates(context.Background(), createPlateImage(true))
	if err != nil || len(textured) == 0 {
		t.Fatalf("textured plate: %v, %d regions", err, len(textured))
	}

	if textured[0].Confidence <= blank[0].Confidence {
		t.Errorf("textured confidence %v should exceed blank %v", textured[0].Confidence, blank[0].Confidence)
	}
	if len(textured) != 1 {
		t.Errorf("character strokes should not be reported as plates, got %d regions", len(textured))
	}
}

func TestContourDetector_Filters(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"too tall", 100, 100, 140, 300},
		{"too small", 100, 100, 130, 110},
		{"too wide", 10, 100, 630, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createTestImage(640, 480, color.White)
			fillRect(img, tt.x1, tt.y1, tt.x2, tt.y2, color.Black)

			regions, err := NewContourDetector(DefaultContourConfig()).DetectPlates(context.Background(), img)
			if err != nil {
				t.Fatalf("DetectPlates failed: %v", err)
			}
			if len(regions) != 0 {
				t.Errorf("regions: got %d, want 0", len(regions))
			}
		})
	}
}

func TestContourDetector_EmptyImage(t *testing.T) {
	d := NewContourDetector(DefaultContourConfig())

	regions, err := d.DetectPlates(context.Background(), createTestImage(200, 200, color.White))
	if err != nil {
		t.Fatalf("DetectPlates failed: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("uniform image: got %d regions, want 0", len(regions))
	}

	regions, err = d.DetectPlates(context.Background(), createTestImage(2, 2, color.White))
	if err != nil || len(regions) != 0 {
		t.Errorf("tiny image: got %d regions, err %v", len(regions), err)
	}
}

func TestContourDetector_Polygons(t *testing.T) {
	cfg := DefaultContourConfig()
	cfg.Polygons = true

	regions, err := NewContourDetector(cfg).DetectPlates(context.Background(), createPlateImage(false))
	if err != nil {
		t.Fatalf("DetectPlates failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("regions: got %d, want 1", len(regions))
	}
	poly, ok := regions[0].Shape.(plate.Polygon)
	if !ok {
		t.Fatalf("shape: got %T, want plate.Polygon", regions[0].Shape)
	}
	if len(poly.Points) != 4 {
		t.Fatalf("points: got %d, want 4", len(poly.Points))
	}
	if a := geometry.PolygonArea(poly.Points); math.Abs(a-12000) > 1200 {
		t.Errorf("polygon area: got %v, want about 12000", a)
	}
}

func TestContourDetector_NonZeroOrigin(t *testing.T) {
	frame := createPlateImage(false).SubImage(image.Rect(50, 50, 640, 480))

	regions, err := NewContourDetector(DefaultContourConfig()).DetectPlates(context.Background(), frame)
	if err != nil {
		t.Fatalf("DetectPlates failed: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("regions: got %d, want 1", len(regions))
	}
	box := regions[0].Shape.(plate.Box)
	if box.X1 != 99 || box.Y1 != 199 {
		t.Errorf("box origin: got (%v,%v), want (99,199) in frame coordinates", box.X1, box.Y1)
	}
}

func TestContourDetector_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewContourDetector(DefaultContourConfig()).DetectPlates(ctx, createPlateImage(false)); err == nil {
		t.Error("DetectPlates should fail on a cancelled context")
	}
}

func TestDetectEdges(t *testing.T) {
	img := createTestImage(20, 20, color.White)
	fillRect(img, 10, 0, 20, 20, color.Black)

	edges := detectEdges(effect.Grayscale(img), 30)

	if !edges[5][9] {
		t.Error("pixel left of the boundary should be an edge")
	}
	if edges[5][3] || edges[5][15] {
		t.Error("uniform areas should not be edges")
	}
	if edges[0][9] || edges[19][9] {
		t.Error("border rows should never be edges")
	}
}

func TestDetectEdges_SubImage(t *testing.T) {
	img := createTestImage(40, 40, color.White)
	fillRect(img, 20, 0, 40, 40, color.Black)
	sub := img.SubImage(image.Rect(10, 10, 30, 30)).(*image.RGBA)

	edges := detectEdges(effect.Grayscale(sub), 30)

	if len(edges) != 20 || len(edges[0]) != 20 {
		t.Fatalf("edge map: got %dx%d, want 20x20", len(edges[0]), len(edges))
	}
	if !edges[5][9] {
		t.Error("pixel left of the boundary should be an edge in sub-image coordinates")
	}
	if edges[5][2] || edges[5][15] {
		t.Error("uniform areas should not be edges")
	}
}

func TestFindContours(t *testing.T) {
	edges := make([][]bool, 20)
	for y := range edges {
		edges[y] = make([]bool, 20)
	}
	for x := 2; x < 15; x++ {
		edges[5][x] = true
	}
	edges[10][10] = true // isolated pixel is noise

	contours := findContours(edges, 20, 20)
	if len(contours) != 1 {
		t.Fatalf("contours: got %d, want 1", len(contours))
	}
	if len(contours[0]) != 13 {
		t.Errorf("contour length: got %d, want 13", len(contours[0]))
	}
}

func TestTextureScore(t *testing.T) {
	edges := make([][]bool, 10)
	for y := range edges {
		edges[y] = make([]bool, 10)
	}

	if got := textureScore(edges, 0, 0, 9, 9); got != 0 {
		t.Errorf("empty: got %v, want 0", got)
	}
	if got := textureScore(edges, 5, 5, 4, 4); got != 0 {
		t.Errorf("inverted rectangle: got %v, want 0", got)
	}

	// 20 of 100 pixels is the peak density.
	for x := 0; x < 10; x++ {
		edges[2][x] = true
		edges[7][x] = true
	}
	if got := textureScore(edges, 0, 0, 9, 9); math.Abs(got-1) > 1e-9 {
		t.Errorf("peak density: got %v, want 1", got)
	}
}

func TestSuppressNested(t *testing.T) {
	candidates := []candidate{
		{bounds: image.Rect(10, 10, 20, 20), confidence: 0.9},
		{bounds: image.Rect(0, 0, 100, 50), confidence: 0.5},
		{bounds: image.Rect(200, 0, 260, 30), confidence: 0.7},
	}

	kept := suppressNested(candidates)
	if len(kept) != 2 {
		t.Fatalf("kept: got %d, want 2", len(kept))
	}
	for _, c := range kept {
		if c.bounds == image.Rect(10, 10, 20, 20) {
			t.Error("nested candidate was kept")
		}
	}
}
