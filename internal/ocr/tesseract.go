package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"
	"unicode/utf8"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/plate-capture/internal/geometry"
	"github.com/ironsheep/plate-capture/internal/plate"
)

// DefaultMinHeight is the ROI height below which the ROI is upscaled before
// recognition. Tesseract reads glyphs poorly under ~30px.
const DefaultMinHeight = 88

// TesseractConfig configures a TesseractDetector.
type TesseractConfig struct {
	// Language is the Tesseract language code, e.g. "eng".
	Language string

	// Charset restricts recognition to these labels.
	Charset Charset

	// TessdataPrefix overrides the tessdata directory. Empty uses the
	// system default.
	TessdataPrefix string

	// MinHeight upscales shorter ROIs to this height.
	MinHeight int

	// Contrast is the bild contrast change applied before recognition
	// (-1.0 to 1.0). Zero disables it.
	Contrast float64
}

// DefaultTesseractConfig returns settings for plate ROIs.
func DefaultTesseractConfig() TesseractConfig {
	return TesseractConfig{
		Language:  "eng",
		Charset:   DefaultCharset,
		MinHeight: DefaultMinHeight,
		Contrast:  0.3,
	}
}

// TesseractDetector is a plate.CharacterDetector backed by Tesseract.
//
// Each call creates its own gosseract client, so a detector may be shared
// across goroutines.
type TesseractDetector struct {
	cfg TesseractConfig
}

// NewTesseractDetector creates a detector with the given settings.
func NewTesseractDetector(cfg TesseractConfig) *TesseractDetector {
	if cfg.Language == "" {
		cfg.Language = "eng"
	}
	if cfg.Charset.Len() == 0 {
		cfg.Charset = DefaultCharset
	}
	return &TesseractDetector{cfg: cfg}
}

// DetectCharacters implements plate.CharacterDetector.
//
// The ROI is preprocessed (grayscale, contrast, sharpen, upscale) and read at
// symbol level. Each symbol becomes a Glyph centered on its bounding box in
// ROI coordinates, with Tesseract's 0-100 confidence scaled to 0-1. Symbols
// outside the charset are dropped.
func (d *TesseractDetector) DetectCharacters(ctx context.Context, roi image.Image) ([]plate.Glyph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if roi == nil || roi.Bounds().Empty() {
		return nil, nil
	}

	prepared, scale := preprocess(roi, d.cfg.MinHeight, d.cfg.Contrast)

	var buf bytes.Buffer
	if err := png.Encode(&buf, prepared); err != nil {
		return nil, fmt.Errorf("failed to encode ROI: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if d.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(d.cfg.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(d.cfg.Language); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetWhitelist(d.cfg.Charset.String()); err != nil {
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_SYMBOL)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	return glyphsFromBoxes(boxes, scale, d.cfg.Charset), nil
}

// preprocess prepares an ROI for Tesseract and returns the factor by which
// it was scaled. The result has its origin at (0, 0).
func preprocess(roi image.Image, minHeight int, contrast float64) (image.Image, float64) {
	var img image.Image = effect.Grayscale(roi)
	if contrast != 0 {
		img = adjust.Contrast(img, contrast)
	}
	img = effect.Sharpen(img)

	scale := 1.0
	h := roi.Bounds().Dy()
	if minHeight > 0 && h < minHeight {
		scale = float64(minHeight) / float64(h)
		img = imaging.Resize(img, 0, minHeight, imaging.Lanczos)
	}
	return img, scale
}

// glyphsFromBoxes converts symbol boxes from a scaled ROI back into glyphs
// in ROI coordinates.
func glyphsFromBoxes(boxes []gosseract.BoundingBox, scale float64, cs Charset) []plate.Glyph {
	if scale <= 0 {
		scale = 1
	}
	glyphs := make([]plate.Glyph, 0, len(boxes))
	for _, b := range boxes {
		label := strings.ToUpper(strings.TrimSpace(b.Word))
		if utf8.RuneCountInString(label) != 1 || !cs.Contains(label) {
			continue
		}
		cx := float64(b.Box.Min.X+b.Box.Max.X) / 2 / scale
		cy := float64(b.Box.Min.Y+b.Box.Max.Y) / 2 / scale
		glyphs = append(glyphs, plate.Glyph{
			Label:      label,
			Center:     geometry.Pt(cx, cy),
			Confidence: b.Confidence / 100.0,
		})
	}
	return glyphs
}

// Version returns the linked Tesseract version.
func Version() string {
	client := gosseract.NewClient()
	defer client.Close()
	return client.Version()
}
