package plate

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"
)

type fakePlates struct {
	regions []Region
	err     error
}

func (f *fakePlates) DetectPlates(ctx context.Context, frame image.Image) ([]Region, error) {
	return f.regions, f.err
}

type fakeChars struct {
	glyphs []Glyph
	err    error
	calls  int
	roi    image.Image
}

func (f *fakeChars) DetectCharacters(ctx context.Context, roi image.Image) ([]Glyph, error) {
	f.calls++
	f.roi = roi
	return f.glyphs, f.err
}

func plateGlyphs() []Glyph {
	return []Glyph{
		glyph("3", 10, 20, 0.9),
		glyph("0", 20, 20, 0.9),
		glyph("a", 30, 20, 0.6),
		glyph("1", 40, 20, 0.9),
		glyph("2", 50, 20, 0.9),
		glyph("3", 60, 20, 0.9),
		glyph("4", 70, 20, 0.9),
		glyph("5", 80, 20, 0.9),
	}
}

func TestRecognize_Box(t *testing.T) {
	plates := &fakePlates{regions: []Region{{Shape: Box{X1: 100, Y1: 100, X2: 210, Y2: 130}, Confidence: 0.8}}}
	chars := &fakeChars{glyphs: plateGlyphs()}

	r := NewRecognizer(plates, chars, DefaultConfig())
	reading, err := r.Recognize(context.Background(), createFrame(640, 480))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}

	if reading.RawText != "30a12345" {
		t.Errorf("RawText: got %q, want %q", reading.RawText, "30a12345")
	}
	if reading.Text != "30A-123.45" {
		t.Errorf("Text: got %q, want %q", reading.Text, "30A-123.45")
	}
	if reading.Mode != ModeBox {
		t.Errorf("Mode: got %s, want %s", reading.Mode, ModeBox)
	}
	if reading.Score < 0.862 || reading.Score > 0.863 {
		t.Errorf("Score: got %v, want 0.8625", reading.Score)
	}
	if reading.Debug != "bbox ROI=127x35 | score=0.86" {
		t.Errorf("Debug: got %q", reading.Debug)
	}
	if !reading.Known() {
		t.Error("reading should be known")
	}
	if chars.roi == nil || chars.roi.Bounds().Size() != image.Pt(127, 35) {
		t.Errorf("character detector did not receive the expanded ROI")
	}
}

func TestRecognize_NoPlate(t *testing.T) {
	chars := &fakeChars{glyphs: plateGlyphs()}
	r := NewRecognizer(&fakePlates{}, chars, DefaultConfig())

	reading, err := r.Recognize(context.Background(), createFrame(100, 100))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if reading.Text != Unknown || reading.Mode != ModeNone || reading.Score != 0 {
		t.Errorf("got %+v, want unknown reading", reading)
	}
	if reading.Known() {
		t.Error("reading should not be known")
	}
	if chars.calls != 0 {
		t.Errorf("character detector called %d times, want 0", chars.calls)
	}
}

func TestRecognize_LowConfidenceRegionDropped(t *testing.T) {
	plates := &fakePlates{regions: []Region{{Shape: Box{X1: 10, Y1: 10, X2: 90, Y2: 40}, Confidence: 0.2}}}
	chars := &fakeChars{glyphs: plateGlyphs()}

	reading, err := NewRecognizer(plates, chars, DefaultConfig()).Recognize(context.Background(), createFrame(100, 100))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if reading.Known() {
		t.Errorf("Text: got %q, want %q", reading.Text, Unknown)
	}
}

func TestRecognize_NoGlyphs(t *testing.T) {
	plates := &fakePlates{regions: []Region{{Shape: rectPolygon(100, 100, 400, 180), Confidence: 0.9}}}
	chars := &fakeChars{glyphs: []Glyph{glyph("A", 10, 10, 0.1)}}

	reading, err := NewRecognizer(plates, chars, DefaultConfig()).Recognize(context.Background(), createFrame(640, 480))
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if reading.Text != Unknown || reading.Score != 0 {
		t.Errorf("got text=%q score=%v, want unknown/0", reading.Text, reading.Score)
	}
	if reading.Mode != ModeMask {
		t.Errorf("Mode: got %s, want %s", reading.Mode, ModeMask)
	}
	if reading.ROI == nil {
		t.Error("ROI should be kept for display")
	}
	if !strings.HasSuffix(reading.Debug, "| no glyphs") {
		t.Errorf("Debug: got %q", reading.Debug)
	}
}

func TestRecognize_DetectorErrors(t *testing.T) {
	boom := errors.New("boom")
	box := []Region{{Shape: Box{X1: 10, Y1: 10, X2: 90, Y2: 40}, Confidence: 0.9}}

	tests := []struct {
		name   string
		plates *fakePlates
		chars  *fakeChars
	}{
		{"plate detector", &fakePlates{err: boom}, &fakeChars{}},
		{"character detector", &fakePlates{regions: box}, &fakeChars{err: boom}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reading, err := NewRecognizer(tt.plates, tt.chars, DefaultConfig()).Recognize(context.Background(), createFrame(100, 100))
			if !errors.Is(err, boom) {
				t.Errorf("error: got %v, want wrapped boom", err)
			}
			if reading == nil || reading.Known() {
				t.Errorf("reading: got %+v, want unknown", reading)
			}
		})
	}
}
