package plate

import (
	"errors"
	"fmt"
	"image"

	"github.com/ironsheep/plate-capture/internal/geometry"
	"github.com/ironsheep/plate-capture/internal/imaging"
)

// DefaultExpandMargin is the fraction added to each side of a detection box.
const DefaultExpandMargin = 0.08

// Extraction is the Extractor output for one frame.
type Extraction struct {
	ROI    image.Image
	Region *Region
	Mode   Mode
	Debug  string
}

// Extractor selects the best plate region of a frame and cuts out its ROI.
type Extractor struct {
	// ExpandMargin is the per-side growth applied to box regions.
	ExpandMargin float64
}

// NewExtractor creates an Extractor with the given box margin.
func NewExtractor(margin float64) *Extractor {
	return &Extractor{ExpandMargin: margin}
}

// Extract picks one region and produces its ROI.
//
// Polygon regions take precedence over boxes: the polygon with the largest
// area is rectified with geometry.RectifyFromPolygon. Otherwise the box with
// the largest area x confidence is expanded by ExpandMargin and cropped
// without a perspective warp. When nothing usable remains, ROI is nil and
// Mode is ModeNone.
func (e *Extractor) Extract(frame image.Image, regions []Region) Extraction {
	none := Extraction{Mode: ModeNone, Debug: "no-plate"}
	if frame == nil || len(regions) == 0 {
		return none
	}

	if idx := selectPolygon(regions); idx >= 0 {
		region := regions[idx]
		poly := region.Shape.(Polygon)
		roi, err := geometry.RectifyFromPolygon(frame, poly.Points)
		if err != nil {
			if errors.Is(err, geometry.ErrDegeneratePolygon) {
				return none
			}
			return Extraction{Mode: ModeNone, Debug: fmt.Sprintf("mask failed: %v", err)}
		}
		return Extraction{
			ROI:    roi,
			Region: &region,
			Mode:   ModeMask,
			Debug:  fmt.Sprintf("mask ROI=%dx%d", roi.Bounds().Dx(), roi.Bounds().Dy()),
		}
	}

	if idx := selectBox(regions); idx >= 0 {
		region := regions[idx]
		box := region.Shape.(Box)
		b := frame.Bounds()
		rect := imaging.ExpandBox(box.X1-float64(b.Min.X), box.Y1-float64(b.Min.Y),
			box.X2-float64(b.Min.X), box.Y2-float64(b.Min.Y), b.Dx(), b.Dy(), e.ExpandMargin)
		roi := imaging.CropRect(frame, rect)
		if roi == nil {
			return none
		}
		return Extraction{
			ROI:    roi,
			Region: &region,
			Mode:   ModeBox,
			Debug:  fmt.Sprintf("bbox ROI=%dx%d", roi.Bounds().Dx(), roi.Bounds().Dy()),
		}
	}

	return none
}

// selectPolygon returns the index of the polygon region with the largest
// area, or -1 if there are no polygon regions. The first wins on ties.
func selectPolygon(regions []Region) int {
	best := -1
	bestArea := 0.0
	for i, r := range regions {
		poly, ok := r.Shape.(Polygon)
		if !ok {
			continue
		}
		area := geometry.PolygonArea(poly.Points)
		if best < 0 || area > bestArea {
			best = i
			bestArea = area
		}
	}
	return best
}

// selectBox returns the index of the box region maximizing
// area x confidence, or -1 if there are no box regions. The first wins on
// ties.
func selectBox(regions []Region) int {
	best := -1
	bestScore := 0.0
	for i, r := range regions {
		box, ok := r.Shape.(Box)
		if !ok {
			continue
		}
		score := box.Area() * r.Confidence
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}
