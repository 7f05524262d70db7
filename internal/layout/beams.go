package layout

import (
	"fmt"
	"math"
	"sort"

	"seehuhn.de/go/geom/vec"

	"github.com/cbegin/mmlengrave-go/internal/notation"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

// beamRun is a contiguous run of beamable stacks inside one beat group.
type beamRun struct {
	stacks []stack
}

// beamRuns groups beamable stacks per staff, voice, measure and beat
// group into runs of two or more.
func beamRuns(evs []Event, measures []score.Measure, tpq int) []beamRun {
	type bucket struct {
		measure int
		staff   int
		voice   string
	}
	var order []bucket
	byBucket := make(map[bucket][]stack)
	for _, s := range noteStacks(evs) {
		if notation.BeamLevel(s.noteType(evs)) < 1 {
			continue
		}
		b := bucket{s.key.measure, s.key.staff, s.key.voice}
		if _, ok := byBucket[b]; !ok {
			order = append(order, b)
		}
		byBucket[b] = append(byBucket[b], s)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a.measure != b.measure {
			return a.measure < b.measure
		}
		if a.staff != b.staff {
			return a.staff < b.staff
		}
		return a.voice < b.voice
	})

	var runs []beamRun
	for _, b := range order {
		stacks := byBucket[b]
		sort.SliceStable(stacks, func(i, j int) bool { return stacks[i].key.tick < stacks[j].key.tick })
		m := measures[b.measure]
		beats := m.BeatGroups
		if len(beats) == 0 {
			beats = score.DefaultBeatGroups(m, tpq)
		}
		for _, g := range beats {
			runs = append(runs, splitRuns(stacks, g)...)
		}
	}
	return runs
}

// runDirection is the voice rank when the staff holds several voices and
// otherwise points away from the note of the run farthest from the centre.
func runDirection(evs []Event, run beamRun, ranks map[voiceKey]Direction, st *StaffLayout) Direction {
	first := run.stacks[0].key
	if d, ok := ranks[voiceKey{first.staff, first.voice}]; ok {
		return d
	}
	var notes []*Event
	for _, s := range run.stacks {
		for _, i := range s.idx {
			notes = append(notes, &evs[i])
		}
	}
	return farthestDirection(notes, st.CenterLine)
}

// buildBeams rewrites the stems of every beam run to end on the beam and
// drops their flags.
func buildBeams(in []Event, staves []StaffLayout, measures []score.Measure, cfg Config, tpq int) ([]Event, []BeamGroup) {
	evs := cloneEvents(in)
	ranks := voiceDirections(evs)
	var groups []BeamGroup
	for _, run := range beamRuns(evs, measures, tpq) {
		groups = beamStacks(evs, run, groups, ranks, &staves[run.stacks[0].key.staff], cfg)
	}
	for i := range evs {
		evs[i].BBox = evs[i].bounds()
	}
	return evs, groups
}

// splitRuns collects the stacks starting inside g and cuts them wherever
// the next stack starts after the previous one has ended.
func splitRuns(stacks []stack, g score.TickRange) []beamRun {
	var out []beamRun
	var cur []stack
	flush := func() {
		if len(cur) >= 2 {
			out = append(out, beamRun{stacks: cur})
		}
		cur = nil
	}
	for _, s := range stacks {
		if !g.Contains(s.key.tick) {
			continue
		}
		if n := len(cur); n > 0 {
			prev := cur[n-1]
			if s.key.tick-prev.key.tick > prev.duration {
				flush()
			}
		}
		cur = append(cur, s)
	}
	flush()
	return out
}

func beamStacks(evs []Event, run beamRun, groups []BeamGroup, ranks map[voiceKey]Direction, st *StaffLayout, cfg Config) []BeamGroup {
	first := run.stacks[0].key
	dir := runDirection(evs, run, ranks, st)
	sign := -1.0
	if dir == StemDown {
		sign = 1
	}

	n := len(run.stacks)
	xs := make([]float64, n)
	tips := make([]float64, n)
	for k, s := range run.stacks {
		tip := s.tip(evs, dir)
		xs[k] = s.stemX(evs, dir)
		tips[k] = tip.Y + sign*stemLength(tip, dir, st, cfg)
	}
	slope := 0.0
	if dx := xs[n-1] - xs[0]; dx > 1e-9 {
		slope = (tips[n-1] - tips[0]) / dx
	}
	slope = clamp(slope, -cfg.BeamMaxSlope, cfg.BeamMaxSlope)
	if math.Abs(slope) < cfg.BeamFlatSlope {
		slope = 0
	}
	y0 := tips[0]
	lineY := func(x float64) float64 { return y0 + slope*(x-xs[0]) }

	// The beam sits on the far side of every tip so no stem gets shorter
	// than the minimum.
	shift := 0.0
	for k, s := range run.stacks {
		limit := s.tip(evs, dir).Y + sign*cfg.StemLengthMinPx
		if need := (lineY(xs[k]) - limit) * -sign; need > shift {
			shift = need
		}
	}
	y0 += sign * shift

	level1 := BeamGroup{
		ID:           fmt.Sprintf("b%d", len(groups)+1),
		VoiceID:      first.voice,
		StaffID:      st.ID,
		MeasureIndex: first.measure,
		Level:        1,
		Direction:    dir,
		Start:        vec.Vec2{X: xs[0], Y: lineY(xs[0])},
		End:          vec.Vec2{X: xs[n-1], Y: lineY(xs[n-1])},
		Slope:        slope,
		Thickness:    cfg.BeamThicknessPx,
	}
	levels := make([]int, n)
	maxLevel := 1
	for k, s := range run.stacks {
		tip := s.tip(evs, dir)
		base := s.base(evs, dir)
		for _, i := range s.idx {
			evs[i].StemDirection = dir
			evs[i].Stem = nil
			evs[i].Flag = nil
			evs[i].FlagCount = 0
		}
		tip.Stem = &Stem{Direction: dir, X: xs[k], Y1: base.Y, Y2: lineY(xs[k])}
		level1.NoteIDs = append(level1.NoteIDs, tip.ID)
		levels[k] = notation.BeamLevel(s.noteType(evs))
		maxLevel = max(maxLevel, levels[k])
	}

	// Secondary beams sit toward the noteheads.
	var extra []BeamGroup
	for l := 2; l <= maxLevel; l++ {
		off := float64(l-1) * cfg.BeamSpacingPx * -sign
		for k := 0; k < n; {
			if levels[k] < l {
				k++
				continue
			}
			j := k
			for j+1 < n && levels[j+1] >= l {
				j++
			}
			if j > k {
				g := BeamGroup{
					VoiceID:      first.voice,
					StaffID:      st.ID,
					MeasureIndex: first.measure,
					Level:        l,
					Direction:    dir,
					Start:        vec.Vec2{X: xs[k], Y: lineY(xs[k]) + off},
					End:          vec.Vec2{X: xs[j], Y: lineY(xs[j]) + off},
					Slope:        slope,
					Thickness:    cfg.BeamThicknessPx,
				}
				g.NoteIDs = append(g.NoteIDs, level1.NoteIDs[k:j+1]...)
				extra = append(extra, g)
			} else {
				hx := xs[k] + cfg.NoteheadWidthPx
				if k == n-1 {
					hx = xs[k] - cfg.NoteheadWidthPx
				}
				level1.Hooks = append(level1.Hooks, BeamHook{
					NoteID: level1.NoteIDs[k],
					Level:  l,
					Start:  vec.Vec2{X: xs[k], Y: lineY(xs[k]) + off},
					End:    vec.Vec2{X: hx, Y: lineY(hx) + off},
				})
			}
			k = j + 1
		}
	}
	groups = append(groups, level1)
	for _, g := range extra {
		g.ID = fmt.Sprintf("b%d", len(groups)+1)
		groups = append(groups, g)
	}
	return groups
}
