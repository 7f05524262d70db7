package layout

import (
	"log/slog"
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"

	"github.com/cbegin/mmlengrave-go/internal/notation"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

// Layout runs every pass over ls and returns the finished geometry. It is
// pure: nothing in ls is modified and nothing is cached between calls.
// Malformed input is reported through logger and skipped; a nil logger
// discards records.
func Layout(ls *score.LogicalScore, cfg Config, logger *slog.Logger) *Score {
	cfg = cfg.Normalize()
	log := loggerOrNop(logger)
	if ls == nil {
		log.Error("nil logical score")
		return &Score{Width: 2 * cfg.MarginPx, Height: 2 * cfg.MarginPx}
	}
	tpq := ls.TicksPerQuarter
	if tpq <= 0 {
		tpq = cfg.TicksPerQuarter
	}
	if tpq < notation.MinTicksPerQuarter {
		log.Debug("resolution too coarse to tell dotted 64ths apart", "ticksPerQuarter", tpq)
	}
	measures := scoreMeasures(ls, tpq)

	staves := buildStaves(ls, cfg)
	evs, ms := buildEvents(ls, staves, measures, cfg, tpq, log)
	evs = annotate(evs, staves, measures, cfg, tpq)
	evs = resolveCollisions(evs, staves, cfg)
	evs, ms = applySpacing(evs, ms, cfg)
	evs, beams := buildBeams(evs, staves, measures, cfg, tpq)
	evs = buildTies(evs, staves, cfg, log)

	out := &Score{Staves: staves, Measures: ms, Events: evs, Beams: beams}
	fitTop(out, cfg)
	out.Width, out.Height = extents(out, cfg)
	return out
}

// scoreMeasures copies the measures in tick order, deriving 4/4 bars when
// the score has none.
func scoreMeasures(ls *score.LogicalScore, tpq int) []score.Measure {
	if len(ls.Measures) == 0 {
		return score.BuildMeasures(score.DefaultTimeSig, tpq, ls.EndTick())
	}
	ms := append([]score.Measure(nil), ls.Measures...)
	sort.SliceStable(ms, func(i, j int) bool { return ms[i].StartTick < ms[j].StartTick })
	return ms
}

// fitTop moves the system down when stems, beams or ties rise above the
// top margin.
func fitTop(s *Score, cfg Config) {
	top := math.Inf(1)
	for i := range s.Events {
		top = math.Min(top, s.Events[i].BBox.LLy)
		if t := s.Events[i].Tie; t != nil {
			minY, _, _ := tieExtent(t)
			top = math.Min(top, minY)
		}
	}
	for _, b := range s.Beams {
		top = math.Min(top, math.Min(b.Start.Y, b.End.Y)-b.Thickness)
	}
	dy := cfg.MarginPx - top
	if math.IsInf(top, 1) || dy <= 0 {
		return
	}
	for i := range s.Staves {
		st := &s.Staves[i]
		st.Top += dy
		st.Bottom += dy
		if st.LimitTop != -math.MaxFloat64 {
			st.LimitTop += dy
		}
		if st.LimitBottom != math.MaxFloat64 {
			st.LimitBottom += dy
		}
	}
	for i := range s.Events {
		s.Events[i].shift(0, dy)
	}
	d := vec.Vec2{Y: dy}
	for i := range s.Beams {
		b := &s.Beams[i]
		b.Start, b.End = b.Start.Add(d), b.End.Add(d)
		for k := range b.Hooks {
			b.Hooks[k].Start = b.Hooks[k].Start.Add(d)
			b.Hooks[k].End = b.Hooks[k].End.Add(d)
		}
	}
}

func extents(s *Score, cfg Config) (w, h float64) {
	w, h = cfg.MarginPx, cfg.MarginPx
	if n := len(s.Measures); n > 0 {
		w = s.Measures[n-1].EndX()
	}
	for _, st := range s.Staves {
		h = math.Max(h, st.Bottom)
	}
	for i := range s.Events {
		e := &s.Events[i]
		w = math.Max(w, e.BBox.URx)
		h = math.Max(h, e.BBox.URy)
		if e.Tie != nil {
			_, maxY, maxX := tieExtent(e.Tie)
			w = math.Max(w, maxX)
			h = math.Max(h, maxY)
		}
	}
	for _, b := range s.Beams {
		h = math.Max(h, math.Max(b.Start.Y, b.End.Y)+b.Thickness)
	}
	return w + cfg.MarginPx, h + cfg.MarginPx
}
