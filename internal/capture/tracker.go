package capture

import (
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/plate-capture/internal/imaging"
	"github.com/ironsheep/plate-capture/internal/plate"
)

// Defaults for Config.
const (
	DefaultMinScore       = 0.8
	DefaultNoPlateFrames  = 12
	DefaultCooldownFrames = 40
)

// Phase is the tracker phase.
type Phase int

const (
	Idle Phase = iota
	Tracking
	Cooldown
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Tracking:
		return "tracking"
	case Cooldown:
		return "cooldown"
	}
	return "unknown"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Config holds the hysteresis thresholds.
type Config struct {
	// MinScore is the lowest best score that produces an Event.
	MinScore float64

	// NoPlateFrames is the number of consecutive plate-less frames after
	// which the candidate is committed.
	NoPlateFrames int

	// CooldownFrames is the number of frames ignored after an Event.
	CooldownFrames int
}

// DefaultConfig returns the default thresholds.
func DefaultConfig() Config {
	return Config{
		MinScore:       DefaultMinScore,
		NoPlateFrames:  DefaultNoPlateFrames,
		CooldownFrames: DefaultCooldownFrames,
	}
}

// Observation is one processed frame as seen by the tracker.
type Observation struct {
	Plate string
	Score float64
	Frame image.Image
	At    time.Time
}

// Present reports whether the observation carries a plate.
func (o Observation) Present() bool {
	return o.Plate != "" && o.Plate != plate.Unknown
}

// State is the tracker state. The zero value is Idle.
type State struct {
	Phase Phase `json:"phase"`

	// Plate is the candidate plate, empty when there is none. A candidate
	// may exist during Cooldown.
	Plate     string  `json:"plate,omitempty"`
	BestScore float64 `json:"best_score"`

	// BestFrame is a private copy of the frame with the best score.
	BestFrame image.Image `json:"-"`

	FramesWithoutPlate int `json:"frames_without_plate"`
	CooldownRemaining  int `json:"cooldown_remaining"`
}

// Event is a committed capture.
type Event struct {
	ID    string      `json:"id"`
	Plate string      `json:"plate"`
	Frame image.Image `json:"-"`
	Score float64     `json:"score"`
	At    time.Time   `json:"at"`
}

// Step applies one observation to s and returns the next state, plus the
// Event committed by this observation, if any.
func Step(cfg Config, s State, obs Observation) (State, *Event) {
	if s.CooldownRemaining > 0 {
		s.CooldownRemaining--
		if s.CooldownRemaining == 0 {
			s.Phase = Idle
			if s.Plate != "" {
				s.Phase = Tracking
			}
		}
		return s, nil
	}

	if !obs.Present() {
		s.FramesWithoutPlate++
		if s.FramesWithoutPlate >= cfg.NoPlateFrames {
			return commit(cfg, s, obs.At)
		}
		return s, nil
	}

	s.FramesWithoutPlate = 0
	switch s.Plate {
	case "":
		return seed(s, obs), nil
	case obs.Plate:
		if obs.Score > s.BestScore {
			s.BestScore = obs.Score
			s.BestFrame = copyFrame(obs.Frame)
		}
		return s, nil
	}

	next, ev := commit(cfg, s, obs.At)
	return seed(next, obs), ev
}

// seed makes obs the candidate. The phase stays Cooldown if one is running.
func seed(s State, obs Observation) State {
	if s.Phase != Cooldown {
		s.Phase = Tracking
	}
	s.Plate = obs.Plate
	s.BestScore = obs.Score
	s.BestFrame = copyFrame(obs.Frame)
	return s
}

// commit ends the current candidate and resets the counters.
func commit(cfg Config, s State, at time.Time) (State, *Event) {
	next := State{Phase: Idle}
	if s.Plate == "" || s.BestScore < cfg.MinScore {
		return next, nil
	}

	ev := &Event{
		ID:    uuid.NewString(),
		Plate: s.Plate,
		Frame: s.BestFrame,
		Score: s.BestScore,
		At:    at,
	}
	if cfg.CooldownFrames > 0 {
		next.Phase = Cooldown
		next.CooldownRemaining = cfg.CooldownFrames
	}
	return next, ev
}

func copyFrame(frame image.Image) image.Image {
	if frame == nil {
		return nil
	}
	return imaging.Clone(frame)
}

// Tracker owns a State and applies observations to it.
//
// Tracker is safe for concurrent use, but observations are expected to
// arrive in frame order from a single producer.
type Tracker struct {
	mu    sync.Mutex
	cfg   Config
	state State
	now   func() time.Time
}

// NewTracker creates an Idle tracker.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, now: time.Now}
}

// Config returns the thresholds in use.
func (t *Tracker) Config() Config {
	return t.cfg
}

// Observe feeds one processed frame. Pass an empty plate (or plate.Unknown)
// for a frame without a usable reading.
func (t *Tracker) Observe(plateText string, score float64, frame image.Image) *Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	next, ev := Step(t.cfg, t.state, Observation{
		Plate: plateText,
		Score: score,
		Frame: frame,
		At:    t.now(),
	})
	t.state = next
	return ev
}

// State returns a snapshot of the current state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Reset drops the candidate and any running cooldown.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = State{}
}

// Flush commits the candidate at end of stream. A candidate frozen by a
// running cooldown is dropped.
func (t *Tracker) Flush() *Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state.Phase != Tracking {
		t.state = State{}
		return nil
	}
	next, ev := commit(t.cfg, t.state, t.now())
	t.state = next
	return ev
}
