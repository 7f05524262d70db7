// Package notation maps tick durations onto written note values.
package notation

import "math"

// Type is a written note value.
type Type int

const (
	Custom Type = iota
	Long
	Breve
	Whole
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	SixtyFourth
)

// tolerance is the absolute tick slack allowed when matching a duration.
const tolerance = 1.0

// MinTicksPerQuarter is the coarsest resolution at which every value of
// the table maps to a distinct tick count, so Classify inverts Ticks.
// Below it dotted 64ths collapse onto their neighbours.
const MinTicksPerQuarter = 64

var typeNames = map[Type]string{
	Custom:       "custom",
	Long:         "long",
	Breve:        "breve",
	Whole:        "whole",
	Half:         "half",
	Quarter:      "quarter",
	Eighth:       "eighth",
	Sixteenth:    "16th",
	ThirtySecond: "32nd",
	SixtyFourth:  "64th",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "custom"
}

// MarshalText lets layout results carry readable note types in JSON.
func (t Type) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// baseBeats lists the table longest first, in quarter-note beats.
var baseBeats = []struct {
	typ   Type
	beats float64
}{
	{Long, 16},
	{Breve, 8},
	{Whole, 4},
	{Half, 2},
	{Quarter, 1},
	{Eighth, 0.5},
	{Sixteenth, 0.25},
	{ThirtySecond, 0.125},
	{SixtyFourth, 0.0625},
}

var dotFactors = [...]float64{1, 1.5, 1.75}

// MaxDots is the largest dot count the table knows about.
const MaxDots = len(dotFactors) - 1

// Classify returns the note value whose length is nearest to ticks, within
// one tick. Equal distances go to the longer base, then fewer dots.
// Unmatched lengths yield Custom.
func Classify(ticks, ticksPerQuarter int) (Type, int) {
	if ticks <= 0 || ticksPerQuarter <= 0 {
		return Custom, 0
	}
	return classify(float64(ticks), float64(ticksPerQuarter))
}

// ClassifyTuplet classifies the written value of a tuplet member: a 3:2
// triplet eighth lasts 160 ticks at 480 per quarter but is written as 240.
func ClassifyTuplet(ticks, ticksPerQuarter, actual, normal int) (Type, int) {
	if actual <= 0 || normal <= 0 {
		return Classify(ticks, ticksPerQuarter)
	}
	if ticks <= 0 || ticksPerQuarter <= 0 {
		return Custom, 0
	}
	written := float64(ticks) * float64(actual) / float64(normal)
	return classify(written, float64(ticksPerQuarter))
}

func classify(ticks, tpq float64) (Type, int) {
	typ, dots, best := Custom, 0, math.Inf(1)
	for _, base := range baseBeats {
		for d, f := range dotFactors {
			if diff := math.Abs(base.beats*tpq*f - ticks); diff <= tolerance && diff < best {
				typ, dots, best = base.typ, d, diff
			}
		}
	}
	return typ, dots
}

// Ticks is the inverse of Classify. Custom and unknown values are 0.
func Ticks(t Type, dots, ticksPerQuarter int) int {
	if dots < 0 || dots > MaxDots {
		return 0
	}
	for _, base := range baseBeats {
		if base.typ == t {
			return int(math.Round(base.beats * float64(ticksPerQuarter) * dotFactors[dots]))
		}
	}
	return 0
}

// BeamLevel is the number of flags or beam lines a value implies.
func BeamLevel(t Type) int {
	switch t {
	case Eighth:
		return 1
	case Sixteenth:
		return 2
	case ThirtySecond:
		return 3
	case SixtyFourth:
		return 4
	}
	return 0
}

// HasStem reports whether noteheads of this value carry a stem.
func HasStem(t Type) bool {
	switch t {
	case Whole, Breve, Long:
		return false
	}
	return true
}

// Values lists every (type, dots) pair of the table, longest first.
func Values() [][2]int {
	out := make([][2]int, 0, len(baseBeats)*len(dotFactors))
	for _, base := range baseBeats {
		for dots := range dotFactors {
			out = append(out, [2]int{int(base.typ), dots})
		}
	}
	return out
}

// Decompose splits ticks into written values no longer than a dotted whole,
// greedily taking the longest undotted or single-dotted value that fits.
// Any remainder shorter than a 64th is folded into the last piece.
func Decompose(ticks, ticksPerQuarter int) []int {
	if ticks <= 0 || ticksPerQuarter <= 0 {
		return nil
	}
	var out []int
	left := ticks
	for left > 0 {
		piece := 0
		for _, base := range baseBeats {
			if base.typ == Long || base.typ == Breve {
				continue
			}
			for dots := 1; dots >= 0; dots-- {
				n := Ticks(base.typ, dots, ticksPerQuarter)
				if n > 0 && n <= left {
					piece = n
					break
				}
			}
			if piece > 0 {
				break
			}
		}
		if piece == 0 {
			if len(out) == 0 {
				return []int{ticks}
			}
			out[len(out)-1] += left
			break
		}
		out = append(out, piece)
		left -= piece
	}
	return out
}
