package score

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cbegin/mmlengrave-go/internal/mml"
	"github.com/cbegin/mmlengrave-go/internal/notation"
)

type ImportOptions struct {
	// TimeSig overrides the #METER directive. Zero means "use the score".
	TimeSig TimeSig
	// StaffForTrack maps MML track i onto a staff index. Tracks sharing a
	// staff become its voices; unmapped tracks get a staff of their own.
	StaffForTrack []int
}

func DefaultImportOptions() ImportOptions {
	return ImportOptions{}
}

type draft struct {
	staff int
	voice int
	order int
	alter int
	ev    Event
}

// FromMML converts parsed MML into a logical score. Notes and rests that
// cross a bar line are split into written values; note pieces are tied.
func FromMML(src *mml.Score, opts ImportOptions) (*LogicalScore, error) {
	if src == nil {
		return nil, fmt.Errorf("nil mml score")
	}
	if src.Resolution < 4 {
		return nil, fmt.Errorf("resolution %d too small", src.Resolution)
	}
	tpq := src.Resolution / 4
	ts := opts.TimeSig
	if ts.Num <= 0 || ts.Den <= 0 {
		var err error
		ts, err = ParseMeter(src.Definitions["METER"])
		if err != nil {
			return nil, err
		}
	}
	end := 0
	for _, tr := range src.Tracks {
		if tr.EndTick > end {
			end = tr.EndTick
		}
	}
	measures := BuildMeasures(ts, tpq, end)
	keySig := mml.KeySignature(src.Definitions)
	flats := false
	for _, v := range keySig {
		if v < 0 {
			flats = true
		}
	}

	staffOf := make([]int, len(src.Tracks))
	voiceOf := make([]int, len(src.Tracks))
	next := 0
	for i := range src.Tracks {
		if i < len(opts.StaffForTrack) && opts.StaffForTrack[i] >= 0 {
			staffOf[i] = opts.StaffForTrack[i]
		} else {
			staffOf[i] = -1
		}
	}
	for _, s := range staffOf {
		if s >= next {
			next = s + 1
		}
	}
	for i := range staffOf {
		if staffOf[i] < 0 {
			staffOf[i] = next
			next++
		}
	}
	voices := make(map[int]int)
	for i, s := range staffOf {
		voiceOf[i] = voices[s]
		voices[s]++
	}

	var drafts []draft
	for ti, tr := range src.Tracks {
		drafts = appendTrack(drafts, ti, tr, staffOf[ti], voiceOf[ti], measures, tpq, flats)
	}
	spellAccidentals(drafts, measures, keySig)

	staves := make([]Staff, next)
	for s := range staves {
		staves[s].ID = "S" + strconv.Itoa(s+1)
		staves[s].Voices = make([]Voice, voices[s])
		for v := range staves[s].Voices {
			staves[s].Voices[v].ID = strconv.Itoa(v + 1)
		}
	}
	for _, d := range drafts {
		v := &staves[d.staff].Voices[d.voice]
		v.Events = append(v.Events, d.ev)
	}
	return &LogicalScore{
		TicksPerQuarter: tpq,
		Parts:           []Part{{ID: "P1", Name: src.Definitions["TITLE"], Staves: staves}},
		Measures:        measures,
	}, nil
}

func appendTrack(drafts []draft, ti int, tr mml.Track, staff, voice int, measures []Measure, tpq int, flats bool) []draft {
	voiceID := strconv.Itoa(voice + 1)
	pending := -1
	pendingNote, pendingEnd := 0, 0
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("t%d.e%d", ti+1, n)
	}
	for _, e := range tr.Events {
		base := Event{StartTick: e.Tick, StaffIndex: staff, VoiceID: voiceID}
		switch e.Type {
		case mml.EventNote, mml.EventRest:
			if e.Duration <= 0 {
				continue
			}
			pieces := splitAtBars(e.Tick, e.Duration, measures, tpq)
			first := len(drafts)
			for k, p := range pieces {
				ev := base
				ev.ID = newID()
				ev.StartTick, ev.DurationTicks = p[0], p[1]
				ev.Kind = KindRest
				d := draft{staff: staff, voice: voice, order: len(drafts)}
				if e.Type == mml.EventNote {
					ev.Kind = KindNote
					pm, alter := PitchFromMIDI(e.Note, flats)
					ev.Pitch = &pm
					d.alter = alter
					ev.TieStart = k < len(pieces)-1
					ev.TieStop = k > 0
				}
				d.ev = ev
				drafts = append(drafts, d)
			}
			if e.Type == mml.EventRest {
				pending = -1
				continue
			}
			if pending >= 0 && pendingNote == e.Note && pendingEnd == e.Tick {
				drafts[pending].ev.TieStart = true
				drafts[first].ev.TieStop = true
			}
			pending = -1
			if e.Tie {
				pending, pendingNote, pendingEnd = len(drafts)-1, e.Note, e.Tick+e.Duration
			}
		default:
			ev := base
			ev.ID = newID()
			ev.Kind = KindControl
			ev.Control = e.Command + strconv.Itoa(e.Value)
			drafts = append(drafts, draft{staff: staff, voice: voice, order: len(drafts), ev: ev})
		}
	}
	return drafts
}

// splitAtBars cuts [start, start+dur) at measure boundaries and into
// classifiable values, returning (start, length) pairs.
func splitAtBars(start, dur int, measures []Measure, tpq int) [][2]int {
	var out [][2]int
	end := start + dur
	for _, m := range measures {
		if m.EndTick <= start || m.StartTick >= end {
			continue
		}
		s, e := max(start, m.StartTick), min(end, m.EndTick)
		for _, piece := range notation.Decompose(e-s, tpq) {
			out = append(out, [2]int{s, piece})
			s += piece
		}
	}
	if len(out) == 0 {
		out = append(out, [2]int{start, dur})
	}
	return out
}

// spellAccidentals writes accidental glyphs per staff in time order. A glyph
// appears when the alteration differs from what the key signature or an
// earlier note of the same measure left at that position. Tied
// continuations never repeat the glyph.
func spellAccidentals(drafts []draft, measures []Measure, keySig map[byte]int) {
	idx := make([]int, 0, len(drafts))
	for i := range drafts {
		if drafts[i].ev.Kind == KindNote {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		da, db := drafts[idx[a]], drafts[idx[b]]
		if da.staff != db.staff {
			return da.staff < db.staff
		}
		if da.ev.StartTick != db.ev.StartTick {
			return da.ev.StartTick < db.ev.StartTick
		}
		return da.order < db.order
	})
	type key struct{ staff, measure, z int }
	seen := make(map[key]int)
	for _, i := range idx {
		d := &drafts[i]
		pm := d.ev.Pitch
		k := key{d.staff, measureIndex(measures, d.ev.StartTick), pm.Z}
		prev, ok := seen[k]
		if !ok {
			prev = keySig[StepLetter(pm.ZInOct)]
		}
		if d.ev.TieStop {
			continue
		}
		if d.alter != prev {
			pm.Accidental = AccidentalFor(d.alter)
		}
		seen[k] = d.alter
	}
}

func measureIndex(measures []Measure, tick int) int {
	i := sort.Search(len(measures), func(i int) bool { return measures[i].EndTick > tick })
	if i == len(measures) {
		return len(measures) - 1
	}
	return i
}

// ParseMeter reads an "N/D" time signature. An empty string yields
// DefaultTimeSig; D must be a power of two.
func ParseMeter(raw string) (TimeSig, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultTimeSig, nil
	}
	numS, denS, ok := strings.Cut(raw, "/")
	if !ok {
		return TimeSig{}, fmt.Errorf("invalid meter %q", raw)
	}
	num, err := strconv.Atoi(strings.TrimSpace(numS))
	if err != nil {
		return TimeSig{}, fmt.Errorf("invalid meter %q: %w", raw, err)
	}
	den, err := strconv.Atoi(strings.TrimSpace(denS))
	if err != nil {
		return TimeSig{}, fmt.Errorf("invalid meter %q: %w", raw, err)
	}
	if num <= 0 || den <= 0 || den&(den-1) != 0 {
		return TimeSig{}, fmt.Errorf("invalid meter %q", raw)
	}
	return TimeSig{Num: num, Den: den}, nil
}
