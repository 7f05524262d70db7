package layout

import "math"

// applySpacing sweeps each measure's tick columns left to right and pushes
// a column right whenever its extent comes closer than MinNoteSpacingPx to
// the previous one. Measures grow to fit and later measures shift with
// them.
func applySpacing(in []Event, inMeasures []Measure, cfg Config) ([]Event, []Measure) {
	evs := cloneEvents(in)
	ms := make([]Measure, len(inMeasures))
	for i, m := range inMeasures {
		m.Anchors = nil
		ms[i] = m
	}

	perMeasure := make([][]column, len(ms))
	for _, c := range tickColumns(evs) {
		perMeasure[c.key.measure] = append(perMeasure[c.key.measure], c)
	}

	delta := 0.0
	for mi := range ms {
		m := &ms[mi]
		m.StartX += delta
		m.ContentStartX += delta
		cols := perMeasure[mi]
		for _, c := range cols {
			for _, i := range c.idx {
				evs[i].shift(delta, 0)
			}
		}

		prevRight := math.Inf(-1)
		for _, c := range cols {
			left, right := extent(evs, c.idx)
			if d := prevRight + cfg.MinNoteSpacingPx - left; d > 0 {
				for _, i := range c.idx {
					evs[i].shift(d, 0)
				}
				right += d
			}
			prevRight = right
		}

		if len(cols) > 0 {
			minLeft := math.Inf(1)
			for _, c := range cols {
				l, _ := extent(evs, c.idx)
				minLeft = math.Min(minLeft, l)
			}
			if d := m.StartX - minLeft; d > 0 {
				for _, c := range cols {
					for _, i := range c.idx {
						evs[i].shift(d, 0)
					}
				}
				prevRight += d
			}
			if need := prevRight - m.ContentStartX; need > m.ContentWidth {
				grow := need - m.ContentWidth
				m.ContentWidth = need
				m.Width += grow
				delta += grow
			}
		}

		m.Anchors = append(m.Anchors, Anchor{Tick: m.StartTick, X: m.ContentStartX})
		for _, c := range cols {
			x := math.Inf(1)
			for _, i := range c.idx {
				x = math.Min(x, evs[i].X-evs[i].ChordOffset)
			}
			if c.key.tick == m.StartTick {
				m.Anchors[0].X = x
				continue
			}
			m.Anchors = append(m.Anchors, Anchor{Tick: c.key.tick, X: x})
		}
		m.Anchors = append(m.Anchors, Anchor{Tick: m.EndTick, X: m.ContentStartX + m.ContentWidth})
	}
	return evs, ms
}

// extent is the horizontal span of a set of events.
func extent(evs []Event, idx []int) (left, right float64) {
	left, right = math.Inf(1), math.Inf(-1)
	for _, i := range idx {
		left = math.Min(left, evs[i].BBox.LLx)
		right = math.Max(right, evs[i].BBox.URx)
	}
	return left, right
}
