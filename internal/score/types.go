// Package score holds the logical score consumed by the layout engine.
package score

type EventKind int

const (
	KindNote EventKind = iota + 1
	KindRest
	KindControl
)

func (k EventKind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindRest:
		return "rest"
	case KindControl:
		return "control"
	}
	return "unknown"
}

func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Accidental glyph names.
const (
	AccidentalNone        = ""
	AccidentalSharp       = "sharp"
	AccidentalFlat        = "flat"
	AccidentalNatural     = "natural"
	AccidentalDoubleSharp = "double-sharp"
	AccidentalDoubleFlat  = "double-flat"
)

// PitchMap places a note vertically. Z is the staff position (even = line,
// odd = space, increasing upward), O the octave index and ZInOct the
// position inside one pitch cycle.
type PitchMap struct {
	Z          int
	O          int
	Accidental string
	ZInOct     int
}

// Tuplet scales written durations: Actual notes in the time of Normal.
type Tuplet struct {
	Actual int
	Normal int
}

type Event struct {
	ID            string
	Kind          EventKind
	StartTick     int
	DurationTicks int
	StaffIndex    int
	VoiceID       string
	Pitch         *PitchMap
	TieStart      bool
	TieStop       bool
	Tuplet        *Tuplet
	Control       string
}

type Voice struct {
	ID     string
	Events []Event
}

type Staff struct {
	ID     string
	Voices []Voice
}

type Part struct {
	ID     string
	Name   string
	Staves []Staff
}

type TimeSig struct {
	Num int
	Den int
}

// TickRange is a half-open [Start, End) tick interval.
type TickRange struct {
	Start int
	End   int
}

func (r TickRange) Contains(tick int) bool { return tick >= r.Start && tick < r.End }

type Measure struct {
	Index      int
	StartTick  int
	EndTick    int
	TimeSig    TimeSig
	BeatGroups []TickRange
}

type LogicalScore struct {
	TicksPerQuarter int
	Parts           []Part
	Measures        []Measure
}

// StaffRef addresses one staff in score order.
type StaffRef struct {
	Index int
	ID    string
	Part  string
	Staff *Staff
}

// Staves flattens parts into a global staff order. Event.StaffIndex refers
// to this order.
func (s *LogicalScore) Staves() []StaffRef {
	var out []StaffRef
	for pi := range s.Parts {
		p := &s.Parts[pi]
		for si := range p.Staves {
			st := &p.Staves[si]
			out = append(out, StaffRef{Index: len(out), ID: st.ID, Part: p.ID, Staff: st})
		}
	}
	return out
}

// EndTick is the latest end of any event.
func (s *LogicalScore) EndTick() int {
	end := 0
	for _, ref := range s.Staves() {
		for _, v := range ref.Staff.Voices {
			for _, e := range v.Events {
				if t := e.StartTick + e.DurationTicks; t > end {
					end = t
				}
			}
		}
	}
	return end
}
