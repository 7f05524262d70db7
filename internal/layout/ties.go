package layout

import (
	"log/slog"
	"math"

	"seehuhn.de/go/geom/vec"
)

type tieKey struct {
	staff int
	voice string
	tick  int
	z, o  int
}

// buildTies curves every tie start to the note of the same voice and
// pitch that begins where it ends.
func buildTies(in []Event, staves []StaffLayout, cfg Config, log *slog.Logger) []Event {
	evs := cloneEvents(in)
	index := make(map[tieKey]int)
	for i := range evs {
		e := &evs[i]
		if !e.IsNote() {
			continue
		}
		k := tieKey{e.StaffIndex, e.VoiceID, e.StartTick, e.Z, e.O}
		if _, ok := index[k]; !ok {
			index[k] = i
		}
	}
	for i := range evs {
		e := &evs[i]
		e.Tie = nil
		if !e.IsNote() || !e.TieStart {
			continue
		}
		j, ok := index[tieKey{e.StaffIndex, e.VoiceID, e.EndTick(), e.Z, e.O}]
		if !ok {
			log.Debug("tie without partner", "event", e.ID, "staff", e.StaffIndex, "tick", e.StartTick)
			continue
		}
		e.Tie = tieCurve(e, &evs[j], &staves[e.StaffIndex], cfg)
	}
	return evs
}

func tieAbove(e *Event, st *StaffLayout) bool {
	switch e.StemDirection {
	case StemUp:
		return false
	case StemDown:
		return true
	}
	return e.Z > st.CenterLine
}

func tieCurve(from, to *Event, st *StaffLayout, cfg Config) *Tie {
	above := tieAbove(from, st)
	sign := 1.0
	if above {
		sign = -1
	}
	gap := cfg.NoteheadWidthPx * 0.15
	lift := sign * cfg.NoteheadHeightPx * 0.6
	start := vec.Vec2{X: from.Notehead.URx + gap, Y: from.Y + lift}
	end := vec.Vec2{X: to.Notehead.LLx - gap, Y: to.Y + lift}
	if end.X < start.X {
		end.X = start.X
	}
	span := end.Sub(start)
	bow := clamp(span.Length()*0.2, 2, 2*cfg.StaffLineSpacingPx)
	third := span.Mul(1.0 / 3)
	bulge := vec.Vec2{Y: sign * bow}
	return &Tie{
		ToID:         to.ID,
		Start:        start,
		C1:           start.Add(third).Add(bulge),
		C2:           end.Sub(third).Add(bulge),
		End:          end,
		Above:        above,
		CrossMeasure: from.MeasureIndex != to.MeasureIndex,
	}
}

// tieExtent bounds the curve through its control polygon.
func tieExtent(t *Tie) (minY, maxY, maxX float64) {
	minY, maxY = math.Inf(1), math.Inf(-1)
	for _, p := range [...]vec.Vec2{t.Start, t.C1, t.C2, t.End} {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
		maxX = math.Max(maxX, p.X)
	}
	return minY, maxY, maxX
}
