package layout

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/cbegin/mmlengrave-go/internal/notation"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

type sourceEvent struct {
	ev      score.Event
	id      string
	measure int
}

// buildEvents sizes every measure and places noteheads and rest boxes at
// their proportional offsets. Malformed events are logged and dropped.
func buildEvents(ls *score.LogicalScore, staves []StaffLayout, measures []score.Measure, cfg Config, tpq int, log *slog.Logger) ([]Event, []Measure) {
	var src []sourceEvent
	for _, ref := range ls.Staves() {
		for _, v := range ref.Staff.Voices {
			for k, e := range v.Events {
				id := e.ID
				if id == "" {
					id = fmt.Sprintf("s%d.v%s.e%d", ref.Index, v.ID, k+1)
				}
				if e.VoiceID == "" {
					e.VoiceID = v.ID
				}
				switch e.Kind {
				case score.KindControl:
					continue
				case score.KindNote, score.KindRest:
				default:
					log.Error("event of unknown kind", "event", id, "staff", e.StaffIndex, "tick", e.StartTick)
					continue
				}
				if e.DurationTicks <= 0 {
					log.Error("event with non-positive duration", "event", id, "staff", e.StaffIndex, "tick", e.StartTick, "duration", e.DurationTicks)
					continue
				}
				if e.Kind == score.KindNote && e.Pitch == nil {
					log.Error("note without pitch map", "event", id, "staff", e.StaffIndex, "tick", e.StartTick)
					continue
				}
				if e.StaffIndex < 0 || e.StaffIndex >= len(staves) {
					log.Error("event references unknown staff", "event", id, "staff", e.StaffIndex, "tick", e.StartTick)
					continue
				}
				mi := findMeasure(measures, e.StartTick)
				if mi < 0 {
					log.Error("event outside every measure", "event", id, "staff", e.StaffIndex, "tick", e.StartTick)
					continue
				}
				src = append(src, sourceEvent{ev: e, id: id, measure: mi})
			}
		}
	}

	out := measureFrames(src, measures, cfg, tpq)

	events := make([]Event, 0, len(src))
	for _, s := range src {
		e := s.ev
		st := &staves[e.StaffIndex]
		m := &out[s.measure]
		sm := &measures[s.measure]
		span := float64(sm.EndTick - sm.StartTick)
		x := m.ContentStartX
		if span > 0 {
			x += float64(e.StartTick-sm.StartTick) / span * m.ContentWidth
		}

		var typ notation.Type
		var dots int
		if t := e.Tuplet; t != nil && t.Actual > 0 && t.Normal > 0 {
			typ, dots = notation.ClassifyTuplet(e.DurationTicks, tpq, t.Actual, t.Normal)
		} else {
			typ, dots = notation.Classify(e.DurationTicks, tpq)
		}
		if typ == notation.Custom {
			log.Debug("duration has no written value", "event", s.id, "staff", e.StaffIndex, "tick", e.StartTick, "duration", e.DurationTicks)
		}

		ev := Event{
			ID:            s.id,
			Kind:          e.Kind,
			MeasureIndex:  s.measure,
			StaffID:       st.ID,
			StaffIndex:    e.StaffIndex,
			VoiceID:       e.VoiceID,
			StartTick:     e.StartTick,
			DurationTicks: e.DurationTicks,
			NoteType:      typ,
			Dots:          dots,
			TieStart:      e.TieStart,
			TieStop:       e.TieStop,
		}
		if e.Kind == score.KindNote {
			ev.Z, ev.O = e.Pitch.Z, e.Pitch.O
			ev.glyph = e.Pitch.Accidental
			ev.Y = st.LineY(ev.Z)
			ev.Notehead = box(x, ev.Y-cfg.NoteheadHeightPx/2, x+cfg.NoteheadWidthPx, ev.Y+cfg.NoteheadHeightPx/2)
		} else {
			ev.Z = st.CenterLine
			ev.Y = st.LineY(ev.Z)
			w := cfg.NoteheadWidthPx * cfg.RestScale
			h := 2 * cfg.StaffLineSpacingPx * cfg.RestScale
			switch typ {
			case notation.Whole, notation.Half, notation.Breve, notation.Long:
				h /= 2
			}
			ev.Notehead = box(x, ev.Y-h/2, x+w, ev.Y+h/2)
		}
		ev.X = x
		ev.BBox = ev.Notehead
		events = append(events, ev)
	}
	sortEvents(events)
	return events, out
}

// measureFrames lays the measures left to right. Content width follows
// the meter and grows with rhythmic density.
func measureFrames(src []sourceEvent, measures []score.Measure, cfg Config, tpq int) []Measure {
	type stats struct {
		ticks    map[int]bool
		shortest int
	}
	st := make([]stats, len(measures))
	for _, s := range src {
		m := &st[s.measure]
		if m.ticks == nil {
			m.ticks = make(map[int]bool)
		}
		m.ticks[s.ev.StartTick] = true
		if m.shortest == 0 || s.ev.DurationTicks < m.shortest {
			m.shortest = s.ev.DurationTicks
		}
	}

	out := make([]Measure, len(measures))
	x := cfg.MarginPx
	for i, sm := range measures {
		span := sm.EndTick - sm.StartTick
		beats := sm.TimeSig.BeatsPerMeasure()
		if sm.TimeSig.Num <= 0 || sm.TimeSig.Den <= 0 {
			beats = float64(span) / float64(tpq)
		}
		scale := 1.0
		if n := len(st[i].ticks); n > 0 && beats > 0 {
			perBeat := float64(n) / beats
			scale += 0.15 * math.Max(0, perBeat-1)
			if st[i].shortest > 0 {
				scale += 0.1 * math.Max(0, math.Log2(float64(span)/float64(st[i].shortest)/beats))
			}
		}
		scale = clamp(scale, 1, 3)

		m := Measure{
			Index:        i,
			StartTick:    sm.StartTick,
			EndTick:      sm.EndTick,
			StartX:       x,
			LeftPadding:  cfg.AccidentalWidthPx + cfg.AccidentalGapPx + cfg.NoteheadWidthPx/2,
			RightPadding: cfg.NoteheadWidthPx,
			ContentWidth: beats * cfg.BaseQuarterWidthPx * scale,
		}
		m.ContentStartX = m.StartX + m.LeftPadding
		m.Width = m.LeftPadding + m.ContentWidth + m.RightPadding
		x += m.Width
		out[i] = m
	}
	return out
}

func findMeasure(measures []score.Measure, tick int) int {
	i := sort.Search(len(measures), func(i int) bool { return measures[i].EndTick > tick })
	if i == len(measures) || tick < measures[i].StartTick {
		return -1
	}
	return i
}

// sortEvents puts events in canonical order: measure, staff, voice, then
// tick, Z and ID.
func sortEvents(evs []Event) {
	sort.SliceStable(evs, func(i, j int) bool {
		a, b := &evs[i], &evs[j]
		if a.MeasureIndex != b.MeasureIndex {
			return a.MeasureIndex < b.MeasureIndex
		}
		if a.StaffIndex != b.StaffIndex {
			return a.StaffIndex < b.StaffIndex
		}
		if a.VoiceID != b.VoiceID {
			return a.VoiceID < b.VoiceID
		}
		if a.StartTick != b.StartTick {
			return a.StartTick < b.StartTick
		}
		if a.Z != b.Z {
			return a.Z < b.Z
		}
		return a.ID < b.ID
	})
}

type columnKey struct {
	measure int
	tick    int
}

// column is every event of one measure starting at one tick, in canonical
// event order.
type column struct {
	key columnKey
	idx []int
}

func tickColumns(evs []Event) []column {
	pos := make(map[columnKey]int)
	var cols []column
	for i := range evs {
		k := columnKey{evs[i].MeasureIndex, evs[i].StartTick}
		c, ok := pos[k]
		if !ok {
			c = len(cols)
			pos[k] = c
			cols = append(cols, column{key: k})
		}
		cols[c].idx = append(cols[c].idx, i)
	}
	sort.Slice(cols, func(i, j int) bool {
		if cols[i].key.measure != cols[j].key.measure {
			return cols[i].key.measure < cols[j].key.measure
		}
		return cols[i].key.tick < cols[j].key.tick
	})
	return cols
}
