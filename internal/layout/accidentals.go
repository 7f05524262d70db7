package layout

import (
	"sort"
	"strconv"

	"github.com/cbegin/mmlengrave-go/internal/score"
)

// glyphSize is the box of an accidental in staff spaces (height) and
// accidental widths (width).
func glyphSize(glyph string) (w, h float64) {
	switch glyph {
	case score.AccidentalFlat:
		return 1, 2
	case score.AccidentalDoubleFlat:
		return 1.6, 2
	case score.AccidentalDoubleSharp:
		return 1, 1
	}
	return 1, 2.5
}

func isFlat(glyph string) bool {
	return glyph == score.AccidentalFlat || glyph == score.AccidentalDoubleFlat
}

// placeAccidentals decides which glyphs are drawn and boxes them left of
// the head. Under the measure policy a glyph is drawn only when it differs
// from the last glyph seen at staffId:Z in the same measure.
func placeAccidentals(evs []Event, staves []StaffLayout, cfg Config) {
	order := make([]int, 0, len(evs))
	for i := range evs {
		evs[i].Accidental = nil
		if evs[i].IsNote() {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		x, y := &evs[order[a]], &evs[order[b]]
		if x.MeasureIndex != y.MeasureIndex {
			return x.MeasureIndex < y.MeasureIndex
		}
		if x.StartTick != y.StartTick {
			return x.StartTick < y.StartTick
		}
		if x.StaffIndex != y.StaffIndex {
			return x.StaffIndex < y.StaffIndex
		}
		if x.VoiceID != y.VoiceID {
			return x.VoiceID < y.VoiceID
		}
		if x.Z != y.Z {
			return x.Z < y.Z
		}
		return x.ID < y.ID
	})

	var memory map[string]string
	measure := -1
	for _, i := range order {
		e := &evs[i]
		if e.MeasureIndex != measure {
			measure = e.MeasureIndex
			memory = make(map[string]string)
		}
		key := e.StaffID + ":" + strconv.Itoa(e.Z)
		show := e.glyph != ""
		if cfg.AccidentalPolicy == AccidentalsMeasure && memory[key] == e.glyph {
			show = false
		}
		memory[key] = e.glyph
		if !show {
			continue
		}
		st := &staves[e.StaffIndex]
		wf, hf := glyphSize(e.glyph)
		w := cfg.AccidentalWidthPx * wf
		h := cfg.StaffLineSpacingPx * hf
		cy := e.Y
		if isFlat(e.glyph) && isEven(e.Z) {
			cy -= st.LineSpacing / 2
		}
		right := e.Notehead.LLx - cfg.AccidentalGapPx
		e.Accidental = &AccidentalGlyph{
			Glyph: e.glyph,
			Box:   box(right-w, cy-h/2, right, cy+h/2),
		}
	}
}
