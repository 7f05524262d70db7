package layout

import (
	"sort"

	"seehuhn.de/go/geom/rect"
)

// restSteps are the candidate rest offsets in staff spaces, positive up.
var restSteps = [...]float64{0, 1, -1, 2, -2, 3, -3}

// resolveCollisions displaces seconds inside chords, stacks colliding
// accidentals and moves rests off notes sharing their column.
func resolveCollisions(in []Event, staves []StaffLayout, cfg Config) []Event {
	evs := cloneEvents(in)
	for _, col := range tickColumns(evs) {
		for _, group := range byStaff(evs, col) {
			offsetSeconds(evs, group, staves, cfg)
			stackAccidentals(evs, group, cfg)
			placeRests(evs, group, cfg)
		}
	}
	return evs
}

// byStaff splits a column into per-staff index lists, staff order kept.
func byStaff(evs []Event, col column) [][]int {
	var out [][]int
	pos := make(map[int]int)
	for _, i := range col.idx {
		s := evs[i].StaffIndex
		g, ok := pos[s]
		if !ok {
			g = len(out)
			pos[s] = g
			out = append(out, nil)
		}
		out[g] = append(out[g], i)
	}
	return out
}

func offsetSeconds(evs []Event, group []int, staves []StaffLayout, cfg Config) {
	var notes []int
	for _, i := range group {
		if evs[i].IsNote() {
			notes = append(notes, i)
		}
	}
	sort.SliceStable(notes, func(a, b int) bool {
		x, y := &evs[notes[a]], &evs[notes[b]]
		if x.Z != y.Z {
			return x.Z < y.Z
		}
		return x.ID < y.ID
	})
	chain := 0
	for k := 1; k < len(notes); k++ {
		if evs[notes[k]].Z-evs[notes[k-1]].Z == 1 {
			chain++
		} else {
			chain = 0
		}
		if chain%2 == 1 {
			e := &evs[notes[k]]
			dx := cfg.NoteheadWidthPx * cfg.ChordOffsetRatio
			if e.StemDirection == StemDown {
				dx = -dx
			}
			displaceHead(e, dx, &staves[e.StaffIndex], cfg)
		}
	}
}

// displaceHead moves a chord head sideways. The stem stays on the column;
// ledgers follow the head, dots follow it to the right and accidentals to
// the left.
func displaceHead(e *Event, dx float64, st *StaffLayout, cfg Config) {
	e.X += dx
	e.ChordOffset += dx
	e.Notehead = translate(e.Notehead, dx, 0)
	e.Ledgers = ledgerLines(e, st, cfg)
	if dx > 0 {
		for i := range e.DotCenters {
			e.DotCenters[i].X += dx
		}
	}
	if a := e.Accidental; a != nil && dx < 0 {
		a.Box = translate(a.Box, dx, 0)
	}
	e.BBox = e.bounds()
}

// stackAccidentals walks accidentals top down and pushes each one left of
// any head or earlier accidental it touches.
func stackAccidentals(evs []Event, group []int, cfg Config) {
	var heads []rect.Rect
	var withGlyph []int
	for _, i := range group {
		if evs[i].IsNote() {
			heads = append(heads, evs[i].Notehead)
			if evs[i].Accidental != nil {
				withGlyph = append(withGlyph, i)
			}
		}
	}
	if len(withGlyph) == 0 {
		return
	}
	sort.SliceStable(withGlyph, func(a, b int) bool {
		x, y := &evs[withGlyph[a]], &evs[withGlyph[b]]
		if x.Z != y.Z {
			return x.Z > y.Z
		}
		return x.ID < y.ID
	})
	obstacles := heads
	for _, i := range withGlyph {
		a := evs[i].Accidental
		b := a.Box
		for range len(obstacles) + 1 {
			moved := false
			for _, o := range obstacles {
				if overlapsX(b, o) && overlapsY(b, o) {
					b = translate(b, o.LLx-cfg.AccidentalGapPx-b.URx, 0)
					moved = true
				}
			}
			if !moved {
				break
			}
		}
		a.Box = b
		obstacles = append(obstacles, b)
		evs[i].BBox = evs[i].bounds()
	}
}

// placeRests tries each candidate offset in turn and keeps the first one
// free of overlap, or the one with the least overlap.
func placeRests(evs []Event, group []int, cfg Config) {
	var obstacles []rect.Rect
	var rests []int
	for _, i := range group {
		if evs[i].IsRest() {
			rests = append(rests, i)
		} else {
			obstacles = append(obstacles, evs[i].BBox)
		}
	}
	if len(rests) == 0 || len(obstacles)+len(rests) < 2 {
		return
	}
	for _, i := range rests {
		e := &evs[i]
		best, bestArea := 0.0, -1.0
		for _, step := range restSteps {
			dy := -step * cfg.StaffLineSpacingPx
			b := translate(e.BBox, 0, dy)
			area := 0.0
			for _, o := range obstacles {
				area += overlapArea(b, o)
			}
			if bestArea < 0 || area < bestArea {
				best, bestArea = dy, area
			}
			if area == 0 {
				break
			}
		}
		if best != 0 {
			e.shift(0, best)
		}
		obstacles = append(obstacles, e.BBox)
	}
}
