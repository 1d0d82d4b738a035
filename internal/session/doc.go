// Package session drives the capture loop for one camera location.
//
// A Session ties a plate recognizer, a capture.Tracker and a store.Store
// together. Frames are processed synchronously and in order: every
// FrameStride-th frame is recognized, annotated and fed to the tracker, and
// each capture event the tracker emits is saved to the store. Skipped frames
// never reach the tracker.
//
// Run reads a frame source from a single consumer goroutine and stops
// between frames when its context is cancelled. The tracked candidate is
// flushed when the source ends.
//
// Besides the automatic captures, a Session keeps the bookkeeping of a
// parking gate: manual check-in of the plate currently in view, check-out,
// status lookups and the flat fee per vehicle kind.
package session
