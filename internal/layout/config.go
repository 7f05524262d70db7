package layout

import (
	"math"

	"github.com/cbegin/mmlengrave-go/internal/notation"
)

type AccidentalPolicy string

const (
	// AccidentalsAlways draws every accidental the pitch map carries.
	AccidentalsAlways AccidentalPolicy = "always"
	// AccidentalsMeasure draws an accidental only when it changes the
	// glyph last seen at that staff position within the measure.
	AccidentalsMeasure AccidentalPolicy = "measure"
)

// Config holds every tunable of the engine. Pixel values are in the
// output coordinate space; StemExtremeThreshold is in Z units.
type Config struct {
	StaffLineCount       int
	StaffLineSpacingPx   float64
	StaffGapPx           float64
	MarginPx             float64
	NoteheadWidthPx      float64
	NoteheadHeightPx     float64
	BaseQuarterWidthPx   float64
	MinNoteSpacingPx     float64
	RestScale            float64
	StemLengthPx         float64
	StemLengthMinPx      float64
	StemLengthMaxPx      float64
	StemExtremeThreshold int
	BeamMaxSlope         float64
	BeamFlatSlope        float64
	BeamThicknessPx      float64
	BeamSpacingPx        float64
	AccidentalPolicy     AccidentalPolicy
	AccidentalWidthPx    float64
	AccidentalGapPx      float64
	DotGapPx             float64
	LedgerLineExtraPx    float64
	ChordOffsetRatio     float64
	TicksPerQuarter      int
}

func DefaultConfig() Config {
	return Config{
		StaffLineCount:       5,
		StaffLineSpacingPx:   10,
		StaffGapPx:           60,
		MarginPx:             20,
		NoteheadWidthPx:      12,
		NoteheadHeightPx:     10,
		BaseQuarterWidthPx:   40,
		MinNoteSpacingPx:     4,
		RestScale:            1,
		StemLengthPx:         35,
		StemLengthMinPx:      25,
		StemLengthMaxPx:      70,
		StemExtremeThreshold: 6,
		BeamMaxSlope:         0.25,
		BeamFlatSlope:        0.03,
		BeamThicknessPx:      5,
		BeamSpacingPx:        8,
		AccidentalPolicy:     AccidentalsMeasure,
		AccidentalWidthPx:    9,
		AccidentalGapPx:      2,
		DotGapPx:             3,
		LedgerLineExtraPx:    4,
		ChordOffsetRatio:     1,
		TicksPerQuarter:      480,
	}
}

// Normalize replaces unusable values with defaults and clamps the rest
// into range. It never fails.
func (c Config) Normalize() Config {
	def := DefaultConfig()
	pos := func(v *float64, d float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v <= 0 {
			*v = d
		}
	}
	nonNeg := func(v *float64, d float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			*v = d
		}
	}
	if c.StaffLineCount < 5 {
		c.StaffLineCount = 5
	}
	if c.StaffLineCount > 15 {
		c.StaffLineCount = 15
	}
	pos(&c.StaffLineSpacingPx, def.StaffLineSpacingPx)
	nonNeg(&c.StaffGapPx, def.StaffGapPx)
	nonNeg(&c.MarginPx, def.MarginPx)
	pos(&c.NoteheadWidthPx, def.NoteheadWidthPx)
	pos(&c.NoteheadHeightPx, def.NoteheadHeightPx)
	pos(&c.BaseQuarterWidthPx, def.BaseQuarterWidthPx)
	nonNeg(&c.MinNoteSpacingPx, def.MinNoteSpacingPx)
	pos(&c.RestScale, def.RestScale)
	c.RestScale = clamp(c.RestScale, 0.25, 4)
	pos(&c.StemLengthPx, def.StemLengthPx)
	pos(&c.StemLengthMinPx, def.StemLengthMinPx)
	pos(&c.StemLengthMaxPx, def.StemLengthMaxPx)
	if c.StemLengthMinPx > c.StemLengthMaxPx {
		c.StemLengthMinPx, c.StemLengthMaxPx = c.StemLengthMaxPx, c.StemLengthMinPx
	}
	c.StemLengthPx = clamp(c.StemLengthPx, c.StemLengthMinPx, c.StemLengthMaxPx)
	if c.StemExtremeThreshold < 0 {
		c.StemExtremeThreshold = def.StemExtremeThreshold
	}
	nonNeg(&c.BeamMaxSlope, def.BeamMaxSlope)
	c.BeamMaxSlope = clamp(c.BeamMaxSlope, 0, 1)
	nonNeg(&c.BeamFlatSlope, def.BeamFlatSlope)
	c.BeamFlatSlope = clamp(c.BeamFlatSlope, 0, c.BeamMaxSlope)
	pos(&c.BeamThicknessPx, def.BeamThicknessPx)
	pos(&c.BeamSpacingPx, def.BeamSpacingPx)
	switch c.AccidentalPolicy {
	case AccidentalsAlways, AccidentalsMeasure:
	default:
		c.AccidentalPolicy = def.AccidentalPolicy
	}
	pos(&c.AccidentalWidthPx, def.AccidentalWidthPx)
	nonNeg(&c.AccidentalGapPx, def.AccidentalGapPx)
	nonNeg(&c.DotGapPx, def.DotGapPx)
	nonNeg(&c.LedgerLineExtraPx, def.LedgerLineExtraPx)
	nonNeg(&c.ChordOffsetRatio, def.ChordOffsetRatio)
	c.ChordOffsetRatio = clamp(c.ChordOffsetRatio, 0, 2)
	if c.TicksPerQuarter < notation.MinTicksPerQuarter {
		c.TicksPerQuarter = def.TicksPerQuarter
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
