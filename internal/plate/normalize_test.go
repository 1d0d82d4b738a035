package plate

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"five digit tail", "30a12345", "30A-123.45"},
		{"four digit tail with L", "51l1234", "511-12.34"},
		{"short string", "AB", "A8"},
		{"spaces and underscores", "29 a_1234 5", "29A-123.45"},
		{"homoglyphs", "osibl12", "051-81.12"},
		{"long tail unformatted", "30A123456", "30A123456"},
		{"two-line raw keeps hyphen", "59x1-23456", "59X1-23456"},
		{"six chars", "abcdef", "A8CDEF"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q): got %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		confs []float64
		want  float64
	}{
		{"none", nil, 0},
		{"single", []float64{0.6}, 0.6},
		{"mean", []float64{0.9, 0.7, 0.8}, 0.8},
		{"order independent", []float64{0.8, 0.9, 0.7}, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			glyphs := make([]Glyph, len(tt.confs))
			for i, c := range tt.confs {
				glyphs[i] = Glyph{Label: "1", Confidence: c}
			}
			if got := Score(glyphs); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Score: got %v, want %v", got, tt.want)
			}
		})
	}
}
