package plate

import (
	"context"
	"fmt"
	"image"
)

// DefaultMinPlateConfidence drops plate regions below this detector confidence.
const DefaultMinPlateConfidence = 0.25

// Config holds the tunable thresholds of the per-frame pipeline.
type Config struct {
	MinPlateConfidence float64
	ExpandMargin       float64
	Layout             LayoutConfig
}

// DefaultConfig returns the pipeline defaults.
func DefaultConfig() Config {
	return Config{
		MinPlateConfidence: DefaultMinPlateConfidence,
		ExpandMargin:       DefaultExpandMargin,
		Layout:             DefaultLayoutConfig(),
	}
}

// Recognizer runs the per-frame pipeline: plate detection, region
// extraction, character detection, layout assembly and normalization.
//
// A Recognizer holds no per-frame state and may be reused for every frame.
type Recognizer struct {
	plates    PlateDetector
	chars     CharacterDetector
	extractor *Extractor
	cfg       Config
}

// NewRecognizer creates a Recognizer over the given detectors.
func NewRecognizer(plates PlateDetector, chars CharacterDetector, cfg Config) *Recognizer {
	return &Recognizer{
		plates:    plates,
		chars:     chars,
		extractor: NewExtractor(cfg.ExpandMargin),
		cfg:       cfg,
	}
}

// Config returns the thresholds in use.
func (r *Recognizer) Config() Config {
	return r.cfg
}

// Recognize reads the plate in one frame.
//
// Frames without a plate yield a Reading with Text == Unknown and a nil
// error. Errors are only returned when a detector fails.
func (r *Recognizer) Recognize(ctx context.Context, frame image.Image) (*Reading, error) {
	reading := &Reading{RawText: Unknown, Text: Unknown, Mode: ModeNone, Debug: "no-plate"}

	regions, err := r.plates.DetectPlates(ctx, frame)
	if err != nil {
		return reading, fmt.Errorf("plate detection failed: %w", err)
	}
	regions = filterRegions(regions, r.cfg.MinPlateConfidence)

	ext := r.extractor.Extract(frame, regions)
	reading.Mode = ext.Mode
	reading.Debug = ext.Debug
	reading.Region = ext.Region
	if ext.ROI == nil {
		return reading, nil
	}
	reading.ROI = ext.ROI

	glyphs, err := r.chars.DetectCharacters(ctx, ext.ROI)
	if err != nil {
		return reading, fmt.Errorf("character detection failed: %w", err)
	}

	layout, ok := AssembleLayout(glyphs, ext.ROI.Bounds().Dy(), r.cfg.Layout)
	if !ok {
		reading.Debug = fmt.Sprintf("%s | no glyphs", ext.Debug)
		return reading, nil
	}

	used := layout.Glyphs()
	reading.RawText = layout.Raw()
	reading.Text = Normalize(reading.RawText)
	reading.Score = Score(used)
	reading.Glyphs = used
	reading.Debug = fmt.Sprintf("%s | score=%.2f", ext.Debug, reading.Score)
	return reading, nil
}

// filterRegions drops regions below the confidence floor.
func filterRegions(regions []Region, floor float64) []Region {
	out := regions[:0:0]
	for _, r := range regions {
		if r.Confidence >= floor {
			out = append(out, r)
		}
	}
	return out
}
