package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log"
	"sync"
	"time"

	"github.com/ironsheep/plate-capture/internal/capture"
	"github.com/ironsheep/plate-capture/internal/geometry"
	"github.com/ironsheep/plate-capture/internal/imaging"
	"github.com/ironsheep/plate-capture/internal/plate"
	"github.com/ironsheep/plate-capture/internal/store"
)

// DefaultFrameStride processes one of every two frames.
const DefaultFrameStride = 2

var (
	// ErrNoPlate is returned when an operation needs a recognized plate and
	// none is in view.
	ErrNoPlate = errors.New("no plate recognized")

	// ErrAlreadyCheckedIn is returned by CheckIn when the plate already has
	// a stored entry.
	ErrAlreadyCheckedIn = errors.New("plate already checked in")
)

// Recognizer reads the plate in one frame. *plate.Recognizer implements it.
type Recognizer interface {
	Recognize(ctx context.Context, frame image.Image) (*plate.Reading, error)
}

// FrameSource yields frames until io.EOF. source.Source implements it.
type FrameSource interface {
	Next(ctx context.Context) (image.Image, error)
}

// Config holds the session settings.
type Config struct {
	// FrameStride processes every Nth frame. Values below 1 process every
	// frame.
	FrameStride int

	Capture capture.Config
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		FrameStride: DefaultFrameStride,
		Capture:     capture.DefaultConfig(),
	}
}

// FrameResult is the outcome of ProcessFrame.
type FrameResult struct {
	// Skipped is set for frames dropped by the stride. The other fields
	// are zero then.
	Skipped bool

	// Annotated is a copy of the frame with the selected region outlined.
	Annotated image.Image

	Reading *plate.Reading

	// Event is the capture committed by this frame, if any.
	Event *capture.Event
}

// Entry is a stored check-in.
type Entry struct {
	Plate string    `json:"plate"`
	At    time.Time `json:"at"`
}

// Status describes whether a plate is in the lot.
type Status struct {
	Plate string     `json:"plate"`
	InLot bool       `json:"in_lot"`
	Since *time.Time `json:"since,omitempty"`
}

// Session processes frames for one location. It is safe for concurrent use;
// frames are serialized internally.
type Session struct {
	recognizer Recognizer
	tracker    *capture.Tracker
	store      store.Store
	stride     int

	mu           sync.Mutex
	frameID      int
	current      *plate.Reading
	currentFrame image.Image
}

// New creates a Session.
func New(recognizer Recognizer, st store.Store, cfg Config) *Session {
	stride := cfg.FrameStride
	if stride < 1 {
		stride = 1
	}
	return &Session{
		recognizer: recognizer,
		tracker:    capture.NewTracker(cfg.Capture),
		store:      st,
		stride:     stride,
	}
}

// Store returns the store captures are saved to.
func (s *Session) Store() store.Store {
	return s.store
}

// State returns a snapshot of the tracker state.
func (s *Session) State() capture.State {
	return s.tracker.State()
}

// Current returns the reading of the last processed frame, or nil.
func (s *Session) Current() *plate.Reading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ProcessFrame handles one acquired frame.
//
// Recognition failures are logged and the frame is treated as plate-less so
// the tracker keeps counting it. An error is returned only when ctx is done
// or a capture could not be saved; in the latter case the result is still
// returned.
func (s *Session) ProcessFrame(ctx context.Context, frame image.Image) (*FrameResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frameID++
	if s.frameID%s.stride != 0 {
		return &FrameResult{Skipped: true}, nil
	}

	reading, err := s.recognize(ctx, frame)
	if err != nil {
		return nil, err
	}

	result := &FrameResult{
		Annotated: Annotate(frame, reading),
		Reading:   reading,
	}

	ev := s.tracker.Observe(reading.Text, reading.Score, frame)
	if ev == nil {
		return result, nil
	}
	result.Event = ev
	return result, s.save(ev)
}

// Recognize reads one frame outside the stream: the stride and the tracker
// are bypassed, but the reading becomes the current plate for CheckIn.
func (s *Session) Recognize(ctx context.Context, frame image.Image) (*plate.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recognize(ctx, frame)
}

// recognize runs the recognizer and records the current plate. Must be
// called with s.mu held.
func (s *Session) recognize(ctx context.Context, frame image.Image) (*plate.Reading, error) {
	reading, err := s.recognizer.Recognize(ctx, frame)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		log.Printf("session: recognition failed: %v", err)
		reading = &plate.Reading{RawText: plate.Unknown, Text: plate.Unknown, Mode: plate.ModeNone, Debug: "error"}
	}
	if reading == nil {
		reading = &plate.Reading{RawText: plate.Unknown, Text: plate.Unknown, Mode: plate.ModeNone, Debug: "no-plate"}
	}

	s.current = reading
	s.currentFrame = nil
	if reading.Known() {
		s.currentFrame = imaging.Clone(frame)
	}
	return reading, nil
}

// save stores the frame of a capture event.
func (s *Session) save(ev *capture.Event) error {
	if _, err := s.store.Save(ev.Plate, ev.Frame); err != nil {
		log.Printf("session: failed to save capture %s: %v", ev.Plate, err)
		return fmt.Errorf("failed to save capture %s: %w", ev.Plate, err)
	}
	log.Printf("session: captured %s (score=%.2f)", ev.Plate, ev.Score)
	return nil
}

// Flush commits the tracked candidate, typically at end of stream.
func (s *Session) Flush() (*capture.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := s.tracker.Flush()
	if ev == nil {
		return nil, nil
	}
	return ev, s.save(ev)
}

// Reset clears the tracker, the frame counter and the current plate, e.g.
// when the camera moves to another location.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tracker.Reset()
	s.frameID = 0
	s.current = nil
	s.currentFrame = nil
}

// Run processes frames from src until it is exhausted or ctx is cancelled.
// Frames are read by a separate goroutine and handled one at a time; handle,
// when non-nil, receives the result of every processed frame.
//
// Cancellation takes effect between frames. The tracked candidate is flushed
// before Run returns. Run returns nil at end of stream and ctx.Err() on
// cancellation.
func (s *Session) Run(ctx context.Context, src FrameSource, handle func(*FrameResult)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	frames := make(chan image.Image)
	srcErr := make(chan error, 1)
	go func() {
		defer close(frames)
		for {
			frame, err := src.Next(ctx)
			if err != nil {
				if !errors.Is(err, io.EOF) && ctx.Err() == nil {
					srcErr <- err
				}
				return
			}
			select {
			case frames <- frame:
			case <-ctx.Done():
				return
			}
		}
	}()

	var runErr error
	for frame := range frames {
		if err := ctx.Err(); err != nil {
			break
		}
		result, err := s.ProcessFrame(ctx, frame)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				break
			}
			log.Printf("session: %v", err)
		}
		if handle != nil && result != nil && !result.Skipped {
			handle(result)
		}
	}

	select {
	case runErr = <-srcErr:
		runErr = fmt.Errorf("failed to read frame: %w", runErr)
	default:
	}

	if ev, err := s.Flush(); err != nil {
		log.Printf("session: %v", err)
	} else if ev != nil && handle != nil {
		handle(&FrameResult{Event: ev})
	}

	if runErr != nil {
		return runErr
	}
	return ctx.Err()
}

// Annotate outlines the selected region of a reading on a copy of frame and
// labels it with the plate text and score.
func Annotate(frame image.Image, r *plate.Reading) image.Image {
	if r.Region == nil {
		return imaging.Annotate(frame, nil, "", 0)
	}
	label := fmt.Sprintf("%s %.2f", r.Text, r.Score)
	return imaging.Annotate(frame, outline(r.Region.Shape), label, r.Region.Confidence)
}

// outline returns the closed outline of a region shape.
func outline(shape plate.Shape) []geometry.Point {
	switch sh := shape.(type) {
	case plate.Polygon:
		return sh.Points
	case plate.Box:
		return []geometry.Point{
			geometry.Pt(sh.X1, sh.Y1),
			geometry.Pt(sh.X2, sh.Y1),
			geometry.Pt(sh.X2, sh.Y2),
			geometry.Pt(sh.X1, sh.Y2),
		}
	}
	return nil
}
