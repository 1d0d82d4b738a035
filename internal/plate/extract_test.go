package plate

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/plate-capture/internal/geometry"
)

// createFrame returns a solid gray frame.
func createFrame(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	return img
}

func rectPolygon(x1, y1, x2, y2 float64) Polygon {
	return Polygon{Points: []geometry.Point{
		{X: x1, Y: y1}, {X: x2, Y: y1}, {X: x2, Y: y2}, {X: x1, Y: y2},
	}}
}

func TestExtract_NoRegions(t *testing.T) {
	e := NewExtractor(DefaultExpandMargin)
	ext := e.Extract(createFrame(100, 100), nil)
	if ext.Mode != ModeNone || ext.ROI != nil || ext.Region != nil {
		t.Errorf("got mode=%s roi=%v region=%v, want none", ext.Mode, ext.ROI != nil, ext.Region)
	}
	if ext.Debug != "no-plate" {
		t.Errorf("Debug: got %q, want %q", ext.Debug, "no-plate")
	}
}

func TestExtract_PolygonBeatsBox(t *testing.T) {
	frame := createFrame(640, 480)
	regions := []Region{
		{Shape: Box{X1: 0, Y1: 0, X2: 600, Y2: 400}, Confidence: 0.99},
		{Shape: rectPolygon(100, 100, 400, 180), Confidence: 0.3},
	}

	ext := NewExtractor(DefaultExpandMargin).Extract(frame, regions)
	if ext.Mode != ModeMask {
		t.Fatalf("Mode: got %s, want %s", ext.Mode, ModeMask)
	}
	if ext.Region == nil || ext.Region.Confidence != 0.3 {
		t.Errorf("selected region: got %+v, want the polygon", ext.Region)
	}
	if got := ext.ROI.Bounds().Size(); got != image.Pt(300, 80) {
		t.Errorf("ROI size: got %v, want 300x80", got)
	}
	if ext.Debug != "mask ROI=300x80" {
		t.Errorf("Debug: got %q", ext.Debug)
	}
}

func TestExtract_LargestPolygon(t *testing.T) {
	frame := createFrame(640, 480)
	regions := []Region{
		{Shape: rectPolygon(10, 10, 200, 60), Confidence: 0.9},
		{Shape: rectPolygon(100, 200, 400, 280), Confidence: 0.5},
		{Shape: rectPolygon(300, 10, 400, 40), Confidence: 0.95},
	}

	ext := NewExtractor(DefaultExpandMargin).Extract(frame, regions)
	if ext.Region == nil || ext.Region.Confidence != 0.5 {
		t.Fatalf("selected region: got %+v, want the largest polygon", ext.Region)
	}
}

func TestExtract_DegeneratePolygon(t *testing.T) {
	frame := createFrame(200, 200)
	regions := []Region{
		{Shape: Polygon{Points: []geometry.Point{{X: 10, Y: 10}, {X: 20, Y: 20}}}, Confidence: 0.9},
	}

	ext := NewExtractor(DefaultExpandMargin).Extract(frame, regions)
	if ext.Mode != ModeNone || ext.ROI != nil {
		t.Errorf("got mode=%s, want none for a degenerate polygon", ext.Mode)
	}
}

func TestExtract_BoxSelection(t *testing.T) {
	frame := createFrame(640, 480)
	regions := []Region{
		// 50x20 at 0.99 scores 990.
		{Shape: Box{X1: 300, Y1: 300, X2: 350, Y2: 320}, Confidence: 0.99},
		// 100x40 at 0.3 scores 1200.
		{Shape: Box{X1: 10, Y1: 10, X2: 110, Y2: 50}, Confidence: 0.3},
	}

	ext := NewExtractor(DefaultExpandMargin).Extract(frame, regions)
	if ext.Mode != ModeBox {
		t.Fatalf("Mode: got %s, want %s", ext.Mode, ModeBox)
	}
	if ext.Region == nil || ext.Region.Confidence != 0.3 {
		t.Errorf("selected region: got %+v, want the larger area x confidence", ext.Region)
	}
}

func TestExtract_BoxExpansion(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		box           Box
		want          image.Point
	}{
		{"interior", 640, 480, Box{X1: 100, Y1: 100, X2: 210, Y2: 130}, image.Pt(127, 35)},
		{"clipped at origin", 100, 100, Box{X1: 0, Y1: 0, X2: 50, Y2: 20}, image.Pt(54, 21)},
		{"fractional coordinates truncate", 640, 480, Box{X1: 100.9, Y1: 100.7, X2: 210.2, Y2: 130.9}, image.Pt(127, 35)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := createFrame(tt.width, tt.height)
			ext := NewExtractor(DefaultExpandMargin).Extract(frame, []Region{{Shape: tt.box, Confidence: 0.9}})
			if ext.ROI == nil {
				t.Fatal("ROI is nil")
			}
			if got := ext.ROI.Bounds().Size(); got != tt.want {
				t.Errorf("ROI size: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtract_EmptyBox(t *testing.T) {
	frame := createFrame(100, 100)
	regions := []Region{{Shape: Box{X1: 10, Y1: 10, X2: 10, Y2: 30}, Confidence: 0.9}}

	ext := NewExtractor(DefaultExpandMargin).Extract(frame, regions)
	if ext.Mode != ModeNone || ext.ROI != nil {
		t.Errorf("got mode=%s, want none for a zero-width box", ext.Mode)
	}
}

func TestExtract_NonZeroOrigin(t *testing.T) {
	frame := createFrame(640, 480).SubImage(image.Rect(100, 100, 500, 400))
	regions := []Region{{Shape: Box{X1: 200, Y1: 200, X2: 310, Y2: 230}, Confidence: 0.9}}

	ext := NewExtractor(DefaultExpandMargin).Extract(frame, regions)
	if ext.ROI == nil {
		t.Fatal("ROI is nil")
	}
	if got := ext.ROI.Bounds().Size(); got != image.Pt(127, 35) {
		t.Errorf("ROI size: got %v, want 127x35", got)
	}
}
