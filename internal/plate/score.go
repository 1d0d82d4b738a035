package plate

// Score returns the mean confidence of the glyphs used for a plate, or 0
// when none were used.
func Score(glyphs []Glyph) float64 {
	if len(glyphs) == 0 {
		return 0
	}
	var sum float64
	for _, g := range glyphs {
		sum += g.Confidence
	}
	return sum / float64(len(glyphs))
}
