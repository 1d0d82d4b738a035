package plate

import (
	"context"
	"image"

	"github.com/ironsheep/plate-capture/internal/geometry"
)

// Unknown is the text reported when no usable plate was found.
const Unknown = "unknown"

// Shape is the geometry of a detected plate region: either a Polygon or a Box.
type Shape interface {
	isShape()
}

// Polygon is a segmentation-mask outline in frame coordinates.
type Polygon struct {
	Points []geometry.Point `json:"points"`
}

// Box is an axis-aligned detection box in frame coordinates.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (Polygon) isShape() {}
func (Box) isShape()     {}

// Area returns the box area; inverted boxes have zero area.
func (b Box) Area() float64 {
	w := b.X2 - b.X1
	h := b.Y2 - b.Y1
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Region is one plate candidate reported by a PlateDetector.
type Region struct {
	Shape      Shape   `json:"-"`
	Confidence float64 `json:"confidence"`
}

// Glyph is one character candidate reported by a CharacterDetector.
// Center is in ROI coordinates.
type Glyph struct {
	Label      string         `json:"label"`
	Center     geometry.Point `json:"center"`
	Confidence float64        `json:"confidence"`
}

// Mode describes how the ROI of a reading was produced.
type Mode string

const (
	ModeNone Mode = "none"
	ModeMask Mode = "mask"
	ModeBox  Mode = "bbox"
)

// Reading is the outcome of running the pipeline on one frame.
type Reading struct {
	// RawText is the assembled string before normalization, or Unknown.
	RawText string `json:"raw_text"`

	// Text is the normalized plate string, or Unknown.
	Text string `json:"text"`

	// Score is the mean confidence of the glyphs used (0 when Unknown).
	Score float64 `json:"score"`

	// Mode tells whether the ROI came from a mask polygon or a box.
	Mode Mode `json:"mode"`

	// Debug describes the ROI for logs and UIs.
	Debug string `json:"debug"`

	// Region is the selected detector region, nil when none was selected.
	Region *Region `json:"-"`

	// ROI is the rectified plate image, nil when none was extracted.
	ROI image.Image `json:"-"`

	// Glyphs are the glyphs used to build Text.
	Glyphs []Glyph `json:"glyphs,omitempty"`
}

// Known reports whether the reading produced a plate string.
func (r *Reading) Known() bool {
	return r != nil && r.Text != Unknown && r.Text != ""
}

// PlateDetector finds plate regions in a frame.
type PlateDetector interface {
	DetectPlates(ctx context.Context, frame image.Image) ([]Region, error)
}

// CharacterDetector finds character glyphs inside a rectified ROI.
type CharacterDetector interface {
	DetectCharacters(ctx context.Context, roi image.Image) ([]Glyph, error)
}
