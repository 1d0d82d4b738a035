package plate

import (
	"sort"
	"strings"
)

// Layout defaults.
const (
	DefaultTwoLineThreshold  = 0.25
	DefaultMinCharConfidence = 0.30
)

// Layout is the arrangement of glyphs on a plate: SingleLine or TwoLine.
type Layout interface {
	// Raw returns the concatenated labels before normalization.
	Raw() string

	// Glyphs returns the glyphs that were used, in reading order.
	Glyphs() []Glyph

	isLayout()
}

// SingleLine is a plate read as one row of characters, left to right.
type SingleLine struct {
	Chars []Glyph
}

// TwoLine is a plate with a top and a bottom row. Both rows are non-empty.
type TwoLine struct {
	Top    []Glyph
	Bottom []Glyph
}

func (SingleLine) isLayout() {}
func (TwoLine) isLayout()    {}

// Raw implements Layout.
func (l SingleLine) Raw() string {
	return labels(l.Chars)
}

// Glyphs implements Layout.
func (l SingleLine) Glyphs() []Glyph {
	return l.Chars
}

// Raw implements Layout. Rows are joined with a hyphen.
func (l TwoLine) Raw() string {
	return labels(l.Top) + "-" + labels(l.Bottom)
}

// Glyphs implements Layout.
func (l TwoLine) Glyphs() []Glyph {
	out := make([]Glyph, 0, len(l.Top)+len(l.Bottom))
	out = append(out, l.Top...)
	return append(out, l.Bottom...)
}

// LayoutConfig controls glyph filtering and line splitting.
type LayoutConfig struct {
	// MinConfidence drops glyphs below this confidence.
	MinConfidence float64

	// TwoLineThreshold is the vertical spread (as a fraction of ROI height)
	// above which glyphs are split into two rows. The comparison is strict.
	TwoLineThreshold float64
}

// DefaultLayoutConfig returns the default filtering and split thresholds.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		MinConfidence:    DefaultMinCharConfidence,
		TwoLineThreshold: DefaultTwoLineThreshold,
	}
}

// AssembleLayout clusters glyphs into one or two rows and orders each row
// by center x. The sort is stable, so glyphs sharing an x keep detection
// order and the result is reproducible.
//
// Returns false when no glyph passes the confidence floor.
func AssembleLayout(glyphs []Glyph, roiHeight int, cfg LayoutConfig) (Layout, bool) {
	kept := make([]Glyph, 0, len(glyphs))
	for _, g := range glyphs {
		if g.Confidence >= cfg.MinConfidence {
			kept = append(kept, g)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}

	minY, maxY := kept[0].Center.Y, kept[0].Center.Y
	for _, g := range kept[1:] {
		if g.Center.Y < minY {
			minY = g.Center.Y
		}
		if g.Center.Y > maxY {
			maxY = g.Center.Y
		}
	}
	height := float64(roiHeight)
	if height < 1 {
		height = 1
	}
	spread := (maxY - minY) / height

	if spread > cfg.TwoLineThreshold {
		mid := medianY(kept)
		var top, bottom []Glyph
		for _, g := range kept {
			if g.Center.Y < mid {
				top = append(top, g)
			} else {
				bottom = append(bottom, g)
			}
		}
		if len(top) > 0 && len(bottom) > 0 {
			return TwoLine{Top: sortByX(top), Bottom: sortByX(bottom)}, true
		}
	}

	return SingleLine{Chars: sortByX(kept)}, true
}

// sortByX returns the glyphs stably sorted by center x.
func sortByX(glyphs []Glyph) []Glyph {
	out := make([]Glyph, len(glyphs))
	copy(out, glyphs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Center.X < out[j].Center.X
	})
	return out
}

// medianY returns the median center y; for an even count it is the mean of
// the two middle values.
func medianY(glyphs []Glyph) float64 {
	ys := make([]float64, len(glyphs))
	for i, g := range glyphs {
		ys[i] = g.Center.Y
	}
	sort.Float64s(ys)
	n := len(ys)
	if n%2 == 1 {
		return ys[n/2]
	}
	return (ys[n/2-1] + ys[n/2]) / 2
}

func labels(glyphs []Glyph) string {
	var sb strings.Builder
	for _, g := range glyphs {
		sb.WriteString(g.Label)
	}
	return sb.String()
}
