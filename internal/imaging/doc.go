// Package imaging holds the frame-level image helpers shared by the plate
// pipeline and its outer surfaces: loading still frames, cropping and
// expanding detection boxes, encoding frames for JSON transport and drawing
// annotations.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner. For
// rectangles, (x1,y1) is inclusive and (x2,y2) is exclusive. Helpers that take
// a rectangle relative to an image translate it by the image's Bounds().Min,
// so sub-images behave like full frames.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are
// stateless and never modify their input frames.
//
// # Annotation
//
// Annotate outlines a plate region in a color taken from a red-to-green
// confidence ramp (go-colorful) and writes a label with basicfont. It always
// returns a copy.
//
// # Performance Considerations
//
// Cached frames stay in memory until evicted. Every Load stats the file and
// decodes it again when its modification time or size changed. Long-running
// servers should call Evict or Clear when frames are no longer needed.
package imaging
