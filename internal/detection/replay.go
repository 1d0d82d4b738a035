package detection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"sync"

	"github.com/ironsheep/plate-capture/internal/geometry"
	"github.com/ironsheep/plate-capture/internal/plate"
)

// ErrReplayExhausted is returned by Replay.DetectPlates after the last
// recorded frame.
var ErrReplayExhausted = errors.New("replay exhausted")

// Labeler maps a detector class index to a character label.
type Labeler interface {
	Label(class int) (string, bool)
}

// ReplayFile is the on-disk format of recorded detector output:
//
//	{"frames": [
//	  {"plates": [{"confidence": 0.91, "polygon": [[12,20],[210,8],[216,70],[18,82]]}],
//	   "chars":  [{"class": 3, "x": 14.5, "y": 20, "confidence": 0.88}]},
//	  {"plates": [{"confidence": 0.87, "box": [100, 120, 300, 180]}],
//	   "chars":  [{"label": "A", "x": 30, "y": 22, "confidence": 0.8}]}
//	]}
//
// Plate coordinates are in frame space, character centers in ROI space.
type ReplayFile struct {
	Frames []ReplayFrame `json:"frames"`
}

// ReplayFrame is the recorded output for one processed frame.
type ReplayFrame struct {
	Plates []ReplayPlate `json:"plates"`
	Chars  []ReplayChar  `json:"chars"`
}

// ReplayPlate is one recorded plate region. Exactly one of Box and Polygon
// is set.
type ReplayPlate struct {
	Confidence float64      `json:"confidence"`
	Box        []float64    `json:"box,omitempty"`
	Polygon    [][2]float64 `json:"polygon,omitempty"`
}

// ReplayChar is one recorded glyph, labeled either directly or by class.
type ReplayChar struct {
	Class      *int    `json:"class,omitempty"`
	Label      string  `json:"label,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

type replayFrame struct {
	regions []plate.Region
	glyphs  []plate.Glyph
}

// Replay plays back recorded detector output. It implements both
// plate.PlateDetector and plate.CharacterDetector: each DetectPlates call
// advances to the next frame, and DetectCharacters returns the glyphs of the
// current one.
//
// Replay is safe for concurrent use, but frames are consumed in call order.
type Replay struct {
	mu      sync.Mutex
	frames  []replayFrame
	next    int
	current int
}

// LoadReplay reads a ReplayFile from disk.
func LoadReplay(path string, labels Labeler) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay: %w", err)
	}
	defer f.Close()
	return NewReplay(f, labels)
}

// NewReplay decodes and validates a ReplayFile. labels resolves class
// indexes and may be nil when every glyph carries a label.
func NewReplay(r io.Reader, labels Labeler) (*Replay, error) {
	var file ReplayFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode replay: %w", err)
	}

	frames := make([]replayFrame, len(file.Frames))
	for i, f := range file.Frames {
		regions, err := f.regions()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		glyphs, err := f.glyphs(labels)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames[i] = replayFrame{regions: regions, glyphs: glyphs}
	}
	return &Replay{frames: frames, current: -1}, nil
}

func (f ReplayFrame) regions() ([]plate.Region, error) {
	regions := make([]plate.Region, 0, len(f.Plates))
	for j, p := range f.Plates {
		switch {
		case len(p.Polygon) > 0 && len(p.Box) > 0:
			return nil, fmt.Errorf("plate %d: both box and polygon set", j)
		case len(p.Polygon) > 0:
			if len(p.Polygon) < 3 {
				return nil, fmt.Errorf("plate %d: polygon needs at least 3 points, got %d", j, len(p.Polygon))
			}
			pts := make([]geometry.Point, len(p.Polygon))
			for k, xy := range p.Polygon {
				pts[k] = geometry.Pt(xy[0], xy[1])
			}
			regions = append(regions, plate.Region{Shape: plate.Polygon{Points: pts}, Confidence: p.Confidence})
		case len(p.Box) == 4:
			regions = append(regions, plate.Region{
				Shape:      plate.Box{X1: p.Box[0], Y1: p.Box[1], X2: p.Box[2], Y2: p.Box[3]},
				Confidence: p.Confidence,
			})
		default:
			return nil, fmt.Errorf("plate %d: box needs 4 values, got %d", j, len(p.Box))
		}
	}
	return regions, nil
}

func (f ReplayFrame) glyphs(labels Labeler) ([]plate.Glyph, error) {
	glyphs := make([]plate.Glyph, 0, len(f.Chars))
	for j, c := range f.Chars {
		label := c.Label
		if label == "" {
			if c.Class == nil {
				return nil, fmt.Errorf("char %d: neither label nor class set", j)
			}
			if labels == nil {
				return nil, fmt.Errorf("char %d: class %d without a charset", j, *c.Class)
			}
			l, ok := labels.Label(*c.Class)
			if !ok {
				return nil, fmt.Errorf("char %d: unknown class %d", j, *c.Class)
			}
			label = l
		}
		glyphs = append(glyphs, plate.Glyph{
			Label:      label,
			Center:     geometry.Pt(c.X, c.Y),
			Confidence: c.Confidence,
		})
	}
	return glyphs, nil
}

// Len returns the number of recorded frames.
func (r *Replay) Len() int {
	return len(r.frames)
}

// DetectPlates implements plate.PlateDetector. The frame argument is ignored.
func (r *Replay) DetectPlates(ctx context.Context, frame image.Image) ([]plate.Region, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.next >= len(r.frames) {
		r.current = -1
		return nil, ErrReplayExhausted
	}
	r.current = r.next
	r.next++
	return append([]plate.Region(nil), r.frames[r.current].regions...), nil
}

// DetectCharacters implements plate.CharacterDetector for the frame most
// recently returned by DetectPlates. The roi argument is ignored.
func (r *Replay) DetectCharacters(ctx context.Context, roi image.Image) ([]plate.Glyph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current < 0 {
		return nil, nil
	}
	return append([]plate.Glyph(nil), r.frames[r.current].glyphs...), nil
}

// Rewind restarts playback from the first frame.
func (r *Replay) Rewind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = 0
	r.current = -1
}
