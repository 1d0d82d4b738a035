// Package plate turns detector output for one frame into a plate reading.
//
// The pipeline for a single frame is:
//
//  1. PlateDetector returns candidate regions (mask polygons or boxes).
//  2. Extractor selects the single best region and produces a rectified ROI.
//  3. CharacterDetector returns glyphs inside the ROI.
//  4. AssembleLayout clusters glyphs into one or two text lines and orders
//     them left to right into a raw string.
//  5. Normalize applies homoglyph corrections and plate formatting.
//  6. Score averages the confidences of the glyphs that were used.
//
// # Expected Outcomes
//
// A frame without a plate is not an error. No regions, a region that crops to
// zero area, and an ROI without glyphs all produce a Reading whose Text is
// Unknown and whose Score is 0. Only failures reported by the detectors
// themselves are returned as errors.
//
// # Region Selection
//
// Mask polygons are ranked by polygon area; boxes are ranked by
// area x confidence. Each detector output mode keeps its own policy.
package plate
