package layout

import (
	"sort"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/cbegin/mmlengrave-go/internal/notation"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

type stackKey struct {
	measure int
	staff   int
	voice   string
	tick    int
}

// stack is the notes of one voice struck together, lowest Z first. Members
// may differ in length; the stack lasts as long as its longest member.
type stack struct {
	key      stackKey
	idx      []int
	duration int
	longest  int
}

func noteStacks(evs []Event) []stack {
	pos := make(map[stackKey]int)
	var out []stack
	for i := range evs {
		e := &evs[i]
		if !e.IsNote() {
			continue
		}
		k := stackKey{e.MeasureIndex, e.StaffIndex, e.VoiceID, e.StartTick}
		s, ok := pos[k]
		if !ok {
			s = len(out)
			pos[k] = s
			out = append(out, stack{key: k, longest: i})
		}
		out[s].idx = append(out[s].idx, i)
		if e.DurationTicks > out[s].duration {
			out[s].duration = e.DurationTicks
			out[s].longest = i
		}
	}
	for _, s := range out {
		sort.SliceStable(s.idx, func(a, b int) bool { return evs[s.idx[a]].Z < evs[s.idx[b]].Z })
	}
	return out
}

func (s stack) lowest(evs []Event) *Event  { return &evs[s.idx[0]] }
func (s stack) highest(evs []Event) *Event { return &evs[s.idx[len(s.idx)-1]] }

// tip is the note nearest the stem tip; base the one at the far end.
func (s stack) tip(evs []Event, dir Direction) *Event {
	if dir == StemUp {
		return s.highest(evs)
	}
	return s.lowest(evs)
}

func (s stack) base(evs []Event, dir Direction) *Event {
	if dir == StemUp {
		return s.lowest(evs)
	}
	return s.highest(evs)
}

// stemX sits on the right edge of undisplaced heads for up stems and on
// the left edge for down stems.
func (s stack) stemX(evs []Event, dir Direction) float64 {
	x := 0.0
	for k, i := range s.idx {
		h := evs[i].Notehead
		switch {
		case dir == StemUp && (k == 0 || h.URx < x):
			x = h.URx
		case dir == StemDown && (k == 0 || h.LLx > x):
			x = h.LLx
		}
	}
	return x
}

// noteType is the written value of the longest member, which decides the
// stem, flags and beaming of the whole stack.
func (s stack) noteType(evs []Event) notation.Type { return evs[s.longest].NoteType }

type voiceKey struct {
	staff int
	voice string
}

// voiceDirections ranks the voices of every staff holding two or more
// voices by average Z: the highest voice points up, the lowest down and
// any middle voice up.
func voiceDirections(evs []Event) map[voiceKey]Direction {
	type acc struct {
		sum, n int
	}
	sums := make(map[voiceKey]*acc)
	perStaff := make(map[int][]string)
	for i := range evs {
		e := &evs[i]
		if !e.IsNote() {
			continue
		}
		k := voiceKey{e.StaffIndex, e.VoiceID}
		a, ok := sums[k]
		if !ok {
			a = &acc{}
			sums[k] = a
			perStaff[e.StaffIndex] = append(perStaff[e.StaffIndex], e.VoiceID)
		}
		a.sum += e.Z
		a.n++
	}
	out := make(map[voiceKey]Direction)
	for staff, voices := range perStaff {
		if len(voices) < 2 {
			continue
		}
		avg := func(v string) float64 {
			a := sums[voiceKey{staff, v}]
			return float64(a.sum) / float64(a.n)
		}
		sort.SliceStable(voices, func(i, j int) bool {
			ai, aj := avg(voices[i]), avg(voices[j])
			if ai != aj {
				return ai > aj
			}
			return voices[i] < voices[j]
		})
		for r, v := range voices {
			d := StemUp
			if r == len(voices)-1 {
				d = StemDown
			}
			out[voiceKey{staff, v}] = d
		}
	}
	return out
}

// farthestDirection points away from the note farthest from the centre
// line. A tie at the centre line points down.
func farthestDirection(notes []*Event, center int) Direction {
	far, dist := 0, -1
	for _, n := range notes {
		if d := absInt(n.Z - center); d > dist {
			far, dist = n.Z, d
		}
	}
	if far < center {
		return StemUp
	}
	return StemDown
}

func stemDirection(evs []Event, s stack, ranks map[voiceKey]Direction, staves []StaffLayout) Direction {
	if d, ok := ranks[voiceKey{s.key.staff, s.key.voice}]; ok {
		return d
	}
	notes := make([]*Event, len(s.idx))
	for k, i := range s.idx {
		notes[k] = &evs[i]
	}
	return farthestDirection(notes, staves[s.key.staff].CenterLine)
}

// stemLength stretches stems of far notes that point back toward the
// staff so the tip reaches into it.
func stemLength(tip *Event, dir Direction, st *StaffLayout, cfg Config) float64 {
	l := cfg.StemLengthPx
	dist := absInt(tip.Z - st.CenterLine)
	toward := (dir == StemUp && tip.Z < st.CenterLine) || (dir == StemDown && tip.Z > st.CenterLine)
	if toward && dist > cfg.StemExtremeThreshold {
		l += float64(dist-cfg.StemExtremeThreshold) * st.LineSpacing
	}
	return clamp(l, cfg.StemLengthMinPx, cfg.StemLengthMaxPx)
}

// annotate adds stems, flags, ledger lines, accidentals and dots. Stacks
// that will be beamed take the direction of their run here, so chord
// displacement and spacing already see the final stem side.
func annotate(in []Event, staves []StaffLayout, measures []score.Measure, cfg Config, tpq int) []Event {
	evs := cloneEvents(in)
	ranks := voiceDirections(evs)
	runDir := make(map[stackKey]Direction)
	for _, run := range beamRuns(evs, measures, tpq) {
		d := runDirection(evs, run, ranks, &staves[run.stacks[0].key.staff])
		for _, s := range run.stacks {
			runDir[s.key] = d
		}
	}
	for _, s := range noteStacks(evs) {
		if !notation.HasStem(s.noteType(evs)) {
			for _, i := range s.idx {
				evs[i].StemDirection = StemNone
			}
			continue
		}
		dir, ok := runDir[s.key]
		if !ok {
			dir = stemDirection(evs, s, ranks, staves)
		}
		setStem(evs, s, dir, &staves[s.key.staff], cfg)
	}
	for i := range evs {
		if evs[i].IsNote() {
			evs[i].Ledgers = ledgerLines(&evs[i], &staves[evs[i].StaffIndex], cfg)
		}
	}
	placeAccidentals(evs, staves, cfg)
	for i := range evs {
		placeDots(&evs[i], &staves[evs[i].StaffIndex], cfg)
		evs[i].BBox = evs[i].bounds()
	}
	return evs
}

// setStem draws one stem for the stack on its tip note with the tip at the
// natural length, and a flag box when the value carries flags.
func setStem(evs []Event, s stack, dir Direction, st *StaffLayout, cfg Config) {
	tip := s.tip(evs, dir)
	base := s.base(evs, dir)
	length := stemLength(tip, dir, st, cfg)
	y2 := tip.Y - length
	if dir == StemDown {
		y2 = tip.Y + length
	}
	stem := &Stem{Direction: dir, X: s.stemX(evs, dir), Y1: base.Y, Y2: y2}
	for _, i := range s.idx {
		evs[i].StemDirection = dir
		evs[i].Stem = nil
		evs[i].Flag = nil
		evs[i].FlagCount = 0
	}
	tip.Stem = stem
	if n := notation.BeamLevel(s.noteType(evs)); n > 0 {
		tip.FlagCount = n
		f := flagBox(stem, n, st, cfg)
		tip.Flag = &f
	}
}

func flagBox(s *Stem, count int, st *StaffLayout, cfg Config) rect.Rect {
	h := 2 * st.LineSpacing * (1.5 + 0.5*float64(count-1))
	w := cfg.NoteheadWidthPx
	if s.Direction == StemUp {
		return box(s.X, s.Y2, s.X+w, s.Y2+h)
	}
	return box(s.X, s.Y2-h, s.X+w, s.Y2)
}

// ledgerLines walks outward from the staff, one ledger per even Z up to
// the note, and stops at the first one past the reserved margin.
func ledgerLines(e *Event, st *StaffLayout, cfg Config) []Ledger {
	var out []Ledger
	x1 := e.Notehead.LLx - cfg.LedgerLineExtraPx
	x2 := e.Notehead.URx + cfg.LedgerLineExtraPx
	for z := st.VisibleMaxZ + lineStep; z <= e.Z; z += lineStep {
		y := st.LineY(z)
		if y < st.LimitTop {
			break
		}
		out = append(out, Ledger{X1: x1, X2: x2, Y: y})
	}
	for z := st.VisibleMinZ - lineStep; z >= e.Z; z -= lineStep {
		y := st.LineY(z)
		if y > st.LimitBottom {
			break
		}
		out = append(out, Ledger{X1: x1, X2: x2, Y: y})
	}
	return out
}

// placeDots lines dots up right of the head. A head on a line moves its
// dots into the space above.
func placeDots(e *Event, st *StaffLayout, cfg Config) {
	e.DotCenters = nil
	e.DotRadius = 0
	if e.Dots <= 0 {
		return
	}
	e.DotRadius = cfg.NoteheadHeightPx * 0.2
	y := e.Y
	// Z parity alone says line or space; ZInOct is not needed here.
	if isEven(e.Z) {
		y -= st.LineSpacing
	}
	x := e.Notehead.URx + cfg.DotGapPx + e.DotRadius
	for k := 0; k < e.Dots; k++ {
		e.DotCenters = append(e.DotCenters, vec.Vec2{X: x + float64(k)*cfg.NoteheadWidthPx/2, Y: y})
	}
}
