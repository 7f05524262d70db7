// Package layout turns a logical score into drawing geometry: staff lines,
// noteheads, stems, beams, ledger lines, accidentals, dots and ties.
//
// Coordinates are pixels with y growing downward. Boxes use rect.Rect with
// LLx/LLy as the minimum corner and URx/URy as the maximum corner.
package layout

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/cbegin/mmlengrave-go/internal/notation"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

type Direction string

const (
	StemNone Direction = ""
	StemUp   Direction = "up"
	StemDown Direction = "down"
)

// StaffLayout is the vertical frame of one staff. LineSpacing is the pixel
// distance of one Z step, so adjacent staff lines are 2*LineSpacing apart.
type StaffLayout struct {
	ID          string  `json:"id"`
	Index       int     `json:"index"`
	Top         float64 `json:"top"`
	Bottom      float64 `json:"bottom"`
	LineSpacing float64 `json:"lineSpacing"`
	LineStep    int     `json:"lineStep"`
	CenterLine  int     `json:"centerLine"`
	VisibleMinZ int     `json:"visibleMinZ"`
	VisibleMaxZ int     `json:"visibleMaxZ"`
	DrawMinZ    int     `json:"drawMinZ"`
	DrawMaxZ    int     `json:"drawMaxZ"`
	// LimitTop and LimitBottom bound ledger lines toward neighbouring
	// staves. Outer staves use ±math.MaxFloat64.
	LimitTop    float64 `json:"limitTop"`
	LimitBottom float64 `json:"limitBottom"`
}

// LineY maps a staff position to its y coordinate.
func (s *StaffLayout) LineY(z int) float64 {
	return s.Top + float64(s.DrawMaxZ-z)*s.LineSpacing
}

// StaffLines returns the y of each visible staff line, top first.
func (s *StaffLayout) StaffLines() []float64 {
	step := s.LineStep
	if step <= 0 {
		step = 2
	}
	var out []float64
	for z := s.VisibleMaxZ; z >= s.VisibleMinZ; z -= step {
		out = append(out, s.LineY(z))
	}
	return out
}

type Anchor struct {
	Tick int     `json:"tick"`
	X    float64 `json:"x"`
}

type Measure struct {
	Index         int      `json:"index"`
	StartTick     int      `json:"startTick"`
	EndTick       int      `json:"endTick"`
	StartX        float64  `json:"startX"`
	Width         float64  `json:"width"`
	ContentStartX float64  `json:"contentStartX"`
	ContentWidth  float64  `json:"contentWidth"`
	LeftPadding   float64  `json:"leftPadding"`
	RightPadding  float64  `json:"rightPadding"`
	Anchors       []Anchor `json:"anchors,omitempty"`
}

// EndX is the right edge of the measure, where its bar line goes.
func (m *Measure) EndX() float64 { return m.StartX + m.Width }

// Stem runs from Y1 at the notehead end to Y2 at the tip.
type Stem struct {
	Direction Direction `json:"direction"`
	X         float64   `json:"x"`
	Y1        float64   `json:"y1"`
	Y2        float64   `json:"y2"`
}

type Ledger struct {
	X1 float64 `json:"x1"`
	X2 float64 `json:"x2"`
	Y  float64 `json:"y"`
}

type AccidentalGlyph struct {
	Glyph string    `json:"glyph"`
	Box   rect.Rect `json:"box"`
}

// Tie is a single cubic from the trailing edge of one note to the leading
// edge of its partner.
type Tie struct {
	ToID         string   `json:"toId"`
	Start        vec.Vec2 `json:"start"`
	C1           vec.Vec2 `json:"c1"`
	C2           vec.Vec2 `json:"c2"`
	End          vec.Vec2 `json:"end"`
	Above        bool     `json:"above"`
	CrossMeasure bool     `json:"crossMeasure"`
}

func (t *Tie) Path() *path.Data {
	return (&path.Data{}).MoveTo(t.Start).CubeTo(t.C1, t.C2, t.End)
}

type Event struct {
	ID            string          `json:"id"`
	Kind          score.EventKind `json:"kind"`
	MeasureIndex  int             `json:"measure"`
	StaffID       string          `json:"staffId"`
	StaffIndex    int             `json:"staff"`
	VoiceID       string          `json:"voice"`
	StartTick     int             `json:"startTick"`
	DurationTicks int             `json:"durationTicks"`

	// X is the left edge of the notehead (or rest box), Y its centre.
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z int     `json:"z"`
	O int     `json:"o"`

	NoteType  notation.Type `json:"noteType"`
	Dots      int           `json:"dots,omitempty"`
	FlagCount int           `json:"flags,omitempty"`

	Notehead      rect.Rect        `json:"notehead"`
	StemDirection Direction        `json:"stemDirection,omitempty"`
	Stem          *Stem            `json:"stem,omitempty"`
	Flag          *rect.Rect       `json:"flag,omitempty"`
	Ledgers       []Ledger         `json:"ledgers,omitempty"`
	Accidental    *AccidentalGlyph `json:"accidental,omitempty"`
	DotCenters    []vec.Vec2       `json:"dotCenters,omitempty"`
	DotRadius     float64          `json:"dotRadius,omitempty"`
	Tie           *Tie             `json:"tie,omitempty"`
	ChordOffset   float64          `json:"chordOffset,omitempty"`
	TieStart      bool             `json:"tieStart,omitempty"`
	TieStop       bool             `json:"tieStop,omitempty"`
	BBox          rect.Rect        `json:"bbox"`

	glyph string
}

func (e *Event) IsNote() bool { return e.Kind == score.KindNote }
func (e *Event) IsRest() bool { return e.Kind == score.KindRest }

// EndTick is StartTick plus the sounding duration.
func (e *Event) EndTick() int { return e.StartTick + e.DurationTicks }

func (e Event) clone() Event {
	if e.Stem != nil {
		s := *e.Stem
		e.Stem = &s
	}
	if e.Flag != nil {
		f := *e.Flag
		e.Flag = &f
	}
	if e.Accidental != nil {
		a := *e.Accidental
		e.Accidental = &a
	}
	if e.Tie != nil {
		t := *e.Tie
		e.Tie = &t
	}
	e.Ledgers = append([]Ledger(nil), e.Ledgers...)
	e.DotCenters = append([]vec.Vec2(nil), e.DotCenters...)
	return e
}

func cloneEvents(in []Event) []Event {
	out := make([]Event, len(in))
	for i := range in {
		out[i] = in[i].clone()
	}
	return out
}

// BeamHook is a fractional beam on a single stack.
type BeamHook struct {
	NoteID string   `json:"noteId"`
	Level  int      `json:"level"`
	Start  vec.Vec2 `json:"start"`
	End    vec.Vec2 `json:"end"`
}

type BeamGroup struct {
	ID           string     `json:"id"`
	VoiceID      string     `json:"voice"`
	StaffID      string     `json:"staffId"`
	MeasureIndex int        `json:"measure"`
	Level        int        `json:"level"`
	Direction    Direction  `json:"direction"`
	Start        vec.Vec2   `json:"start"`
	End          vec.Vec2   `json:"end"`
	Slope        float64    `json:"slope"`
	Thickness    float64    `json:"thickness"`
	NoteIDs      []string   `json:"noteIds"`
	Hooks        []BeamHook `json:"hooks,omitempty"`
}

// Score is the complete geometry of one system.
type Score struct {
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Staves   []StaffLayout `json:"staves"`
	Measures []Measure     `json:"measures"`
	Events   []Event       `json:"events"`
	Beams    []BeamGroup   `json:"beams,omitempty"`
}

// Event returns the event with the given ID, or nil.
func (s *Score) Event(id string) *Event {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return &s.Events[i]
		}
	}
	return nil
}
