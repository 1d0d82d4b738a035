// Package detection provides plate.PlateDetector implementations.
//
// Two detectors are available:
//
//   - ContourDetector: a model-free detector using edge detection and
//     contour analysis, for clean frames where the plate border contrasts
//     with the car body
//   - Replay: plays back plate regions and character glyphs exported from an
//     external model, so recorded runs can be fed through the pipeline
//
// # Algorithm Overview
//
// ContourDetector follows a classic pipeline:
//
//  1. Edge Detection: grayscale the frame and threshold neighbor gradients
//  2. Contour Finding: group edge pixels into 8-connected components
//  3. Filtering: keep plate-shaped components by area, aspect ratio and
//     rectangularity
//  4. Scoring: favor candidates whose interior has character-like edge density
//
// # Coordinate System
//
// Regions are reported in frame coordinates, honoring a non-zero image
// origin. Origin (0, 0) is the top-left corner; X increases rightward and Y
// increases downward.
//
// # Confidence Scores
//
// Confidence is in [0, 1]. A blank rectangle of the right shape scores about
// 0.5; printed characters inside raise it toward 1.0.
//
// # Limitations
//
// The contour detector needs a closed, high-contrast plate outline. Plates
// touching other strong edges (grilles, bumpers) merge into larger contours
// and are filtered out. Use a trained model through Replay or a custom
// plate.PlateDetector for real traffic footage.
package detection
