// Package ocr provides a plate.CharacterDetector backed by Tesseract and the
// character set used to label detector classes.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for the configured language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//
// # Recognition
//
// TesseractDetector reads a rectified plate ROI at symbol level
// (gosseract.RIL_SYMBOL) so every character keeps its own center and
// confidence, which AssembleLayout needs to split two-row plates. Before
// recognition the ROI is converted to grayscale, contrast-stretched and
// sharpened with bild, then upscaled with imaging when shorter than
// TesseractConfig.MinHeight. Glyph centers are mapped back to the original
// ROI scale.
//
// Recognition is restricted to the Charset through Tesseract's whitelist, and
// symbols outside it are dropped.
//
// # Charset
//
// Charset maps class indexes of an external character model to labels.
// DefaultCharset is digits followed by uppercase letters. It satisfies
// detection.Labeler for replayed model output.
//
// # Performance Considerations
//
// OCR is CPU-intensive. Frame stride in the session bounds how often it runs.
package ocr
