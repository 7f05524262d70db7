package layout

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"math"
	"reflect"
	"strings"
	"testing"

	"seehuhn.de/go/geom/rect"

	"github.com/cbegin/mmlengrave-go/internal/score"
)

const eps = 1e-6

func TestFourQuarters(t *testing.T) {
	ls := scoreOf(
		pitched("n1", 0, "1", 0, 480, 0),
		pitched("n2", 0, "1", 480, 480, 2),
		pitched("n3", 0, "1", 960, 480, 4),
		pitched("n4", 0, "1", 1440, 480, 2),
	)
	out := Layout(ls, DefaultConfig(), nil)
	if got := out.Staves[0].CenterLine; got != 2 {
		t.Fatalf("expected center line 2, got %d", got)
	}
	if len(out.Beams) != 0 {
		t.Fatalf("expected no beams, got %d", len(out.Beams))
	}
	if len(out.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(out.Events))
	}
	prevX := math.Inf(-1)
	for _, e := range out.Events {
		if len(e.Ledgers) != 0 {
			t.Fatalf("expected no ledgers on %s, got %d", e.ID, len(e.Ledgers))
		}
		if e.Stem == nil {
			t.Fatalf("expected stem on %s", e.ID)
		}
		if e.X <= prevX {
			t.Fatalf("expected increasing x, got %.2f after %.2f", e.X, prevX)
		}
		prevX = e.X
	}
	want := map[string]Direction{"n1": StemUp, "n2": StemDown, "n3": StemDown, "n4": StemDown}
	for id, d := range want {
		if got := out.Event(id).Stem.Direction; got != d {
			t.Fatalf("expected %s stem %s, got %s", id, d, got)
		}
	}
}

func TestTwoEighthsBeam(t *testing.T) {
	cfg := DefaultConfig()
	ls := scoreOf(
		pitched("n1", 0, "1", 0, 240, 0),
		pitched("n2", 0, "1", 240, 240, 4),
	)
	out := Layout(ls, cfg, nil)
	if len(out.Beams) != 1 {
		t.Fatalf("expected 1 beam group, got %d", len(out.Beams))
	}
	b := out.Beams[0]
	if b.Level != 1 || !reflect.DeepEqual(b.NoteIDs, []string{"n1", "n2"}) {
		t.Fatalf("unexpected beam group: %+v", b)
	}
	if math.Abs(b.Slope) > cfg.BeamMaxSlope+eps {
		t.Fatalf("expected |slope| <= %.2f, got %.4f", cfg.BeamMaxSlope, b.Slope)
	}
	for _, id := range b.NoteIDs {
		e := out.Event(id)
		if e.FlagCount != 0 || e.Flag != nil {
			t.Fatalf("expected beamed note %s without flag", id)
		}
		y := b.Start.Y + b.Slope*(e.Stem.X-b.Start.X)
		if math.Abs(e.Stem.Y2-y) > eps {
			t.Fatalf("expected stem of %s to end on the beam at %.2f, got %.2f", id, y, e.Stem.Y2)
		}
		if l := math.Abs(e.Stem.Y2 - e.Y); l < cfg.StemLengthMinPx-eps {
			t.Fatalf("expected stem of %s at least %.1f, got %.2f", id, cfg.StemLengthMinPx, l)
		}
	}
}

func TestUnbeamedEighthKeepsFlag(t *testing.T) {
	ls := scoreOf(
		pitched("n1", 0, "1", 0, 240, 2),
		restAt("r1", 0, "1", 240, 240),
		pitched("n2", 0, "1", 480, 120, 2),
	)
	out := Layout(ls, DefaultConfig(), nil)
	if len(out.Beams) != 0 {
		t.Fatalf("expected rest to break the beam, got %d groups", len(out.Beams))
	}
	for id, want := range map[string]int{"n1": 1, "n2": 2} {
		e := out.Event(id)
		if e.FlagCount != want || e.Flag == nil {
			t.Fatalf("expected %s to carry %d flags, got %d", id, want, e.FlagCount)
		}
		if !contains(e.BBox, *e.Flag) {
			t.Fatalf("expected bbox of %s to contain its flag", id)
		}
	}
}

func TestSecondaryBeamsAndHooks(t *testing.T) {
	ls := scoreOf(
		pitched("s1", 0, "1", 0, 120, 2),
		pitched("s2", 0, "1", 120, 120, 3),
		pitched("s3", 0, "1", 240, 240, 4),
		pitched("d1", 0, "1", 960, 360, 2),
		pitched("d2", 0, "1", 1320, 120, 4),
	)
	out := Layout(ls, DefaultConfig(), nil)
	var levels []int
	for _, b := range out.Beams {
		levels = append(levels, b.Level)
	}
	if !reflect.DeepEqual(levels, []int{1, 2, 1}) {
		t.Fatalf("expected beam levels [1 2 1], got %v", levels)
	}
	if ids := out.Beams[1].NoteIDs; !reflect.DeepEqual(ids, []string{"s1", "s2"}) {
		t.Fatalf("expected secondary beam on s1 s2, got %v", ids)
	}
	hooks := out.Beams[2].Hooks
	if len(hooks) != 1 || hooks[0].NoteID != "d2" || hooks[0].Level != 2 {
		t.Fatalf("expected one level-2 hook on d2, got %+v", hooks)
	}
	if hooks[0].End.X >= hooks[0].Start.X {
		t.Fatalf("expected hook on the last stack to point left, got %+v", hooks[0])
	}
	up := out.Beams[0].Direction == StemUp
	d := out.Beams[1].Start.Y - out.Beams[0].Start.Y
	if (up && d <= 0) || (!up && d >= 0) {
		t.Fatalf("expected secondary beam toward noteheads, got offset %.2f", d)
	}
}

func TestLedgerBoundRespect(t *testing.T) {
	ls := scoreOf(
		pitched("hi", 0, "1", 0, 480, 0),
		pitched("low", 0, "1", 480, 480, -30),
		pitched("top", 0, "1", 960, 480, 4),
		pitched("b1", 1, "1", 0, 480, 2),
	)
	out := Layout(ls, DefaultConfig(), nil)
	st := out.Staves[0]
	for _, e := range out.Events {
		s := out.Staves[e.StaffIndex]
		for _, l := range e.Ledgers {
			if l.Y > s.LimitBottom+eps || l.Y < s.LimitTop-eps {
				t.Fatalf("ledger of %s at %.2f outside [%.2f, %.2f]", e.ID, l.Y, s.LimitTop, s.LimitBottom)
			}
		}
	}
	low := out.Event("low")
	full := (st.VisibleMinZ - low.Z) / 2
	if len(low.Ledgers) == 0 || len(low.Ledgers) >= full {
		t.Fatalf("expected truncated ledgers (fewer than %d), got %d", full, len(low.Ledgers))
	}
	if got := len(out.Event("top").Ledgers); got == 0 {
		t.Fatalf("expected ledgers above the staff, got none")
	}
}

func TestAccidentalSuppression(t *testing.T) {
	ls := scoreOf(
		withGlyph(pitched("n1", 0, "1", 0, 480, 1), score.AccidentalSharp),
		withGlyph(pitched("n2", 0, "1", 480, 480, 1), score.AccidentalSharp),
		withGlyph(pitched("n3", 0, "1", 960, 480, 3), score.AccidentalSharp),
		withGlyph(pitched("n4", 0, "1", 1920, 480, 1), score.AccidentalSharp),
	)
	out := Layout(ls, DefaultConfig(), nil)
	shown := func(s *Score, id string) bool { return s.Event(id).Accidental != nil }
	for id, want := range map[string]bool{"n1": true, "n2": false, "n3": true, "n4": true} {
		if got := shown(out, id); got != want {
			t.Fatalf("measure policy: expected %s shown=%v, got %v", id, want, got)
		}
	}

	cfg := DefaultConfig()
	cfg.AccidentalPolicy = AccidentalsAlways
	out = Layout(ls, cfg, nil)
	for _, id := range []string{"n1", "n2", "n3", "n4"} {
		if !shown(out, id) {
			t.Fatalf("always policy: expected %s shown", id)
		}
	}
	a := out.Event("n1")
	if a.Accidental.Box.URx > a.Notehead.LLx {
		t.Fatalf("expected accidental left of the notehead, got %+v", a.Accidental.Box)
	}
}

func TestFlatOnLineIsNudged(t *testing.T) {
	ls := scoreOf(
		withGlyph(pitched("line", 0, "1", 0, 480, 2), score.AccidentalFlat),
		withGlyph(pitched("space", 0, "1", 480, 480, 3), score.AccidentalFlat),
	)
	out := Layout(ls, DefaultConfig(), nil)
	center := func(e *Event) float64 { return (e.Accidental.Box.LLy + e.Accidental.Box.URy) / 2 }
	onLine := out.Event("line")
	if center(onLine) >= onLine.Y {
		t.Fatalf("expected flat on a line to sit above the head centre")
	}
	inSpace := out.Event("space")
	if math.Abs(center(inSpace)-inSpace.Y) > eps {
		t.Fatalf("expected flat in a space to be centred on the head")
	}
}

func TestDotsMoveOffLines(t *testing.T) {
	ls := scoreOf(
		pitched("line", 0, "1", 0, 720, 2),
		pitched("space", 0, "1", 720, 360, 3),
	)
	out := Layout(ls, DefaultConfig(), nil)
	onLine := out.Event("line")
	if onLine.Dots != 1 || len(onLine.DotCenters) != 1 {
		t.Fatalf("expected one dot, got %d", len(onLine.DotCenters))
	}
	if got, want := onLine.DotCenters[0].Y, onLine.Y-out.Staves[0].LineSpacing; math.Abs(got-want) > eps {
		t.Fatalf("expected dot at %.2f, got %.2f", want, got)
	}
	inSpace := out.Event("space")
	if math.Abs(inSpace.DotCenters[0].Y-inSpace.Y) > eps {
		t.Fatalf("expected dot level with a head in a space")
	}
	if inSpace.DotCenters[0].X <= inSpace.Notehead.URx {
		t.Fatalf("expected dot right of the head")
	}
}

func TestStemStretchTowardCenter(t *testing.T) {
	cfg := DefaultConfig()
	ls := scoreOf(
		pitched("low", 0, "1", 0, 480, -12),
		pitched("high", 0, "1", 480, 480, 12),
		pitched("mid", 0, "1", 960, 480, -2),
	)
	out := Layout(ls, cfg, nil)
	st := out.Staves[0]
	want := cfg.StemLengthPx + float64(12-cfg.StemExtremeThreshold)*st.LineSpacing
	for _, id := range []string{"low", "high"} {
		s := out.Event(id).Stem
		if got := math.Abs(s.Y2 - s.Y1); math.Abs(got-want) > eps {
			t.Fatalf("expected %s stem %.1f, got %.2f", id, want, got)
		}
	}
	if d := out.Event("low").Stem.Direction; d != StemUp {
		t.Fatalf("expected low note stem up, got %s", d)
	}
	s := out.Event("mid").Stem
	if got := math.Abs(s.Y2 - s.Y1); math.Abs(got-cfg.StemLengthPx) > eps {
		t.Fatalf("expected plain stem %.1f, got %.2f", cfg.StemLengthPx, got)
	}
}

func TestVoiceRankingDirections(t *testing.T) {
	ls := scoreOf(
		pitched("u", 0, "1", 0, 480, 6),
		pitched("l", 0, "2", 0, 480, -4),
	)
	out := Layout(ls, DefaultConfig(), nil)
	if d := out.Event("u").Stem.Direction; d != StemUp {
		t.Fatalf("expected upper voice up, got %s", d)
	}
	if d := out.Event("l").Stem.Direction; d != StemDown {
		t.Fatalf("expected lower voice down, got %s", d)
	}
}

func TestChordSecondDisplacement(t *testing.T) {
	ls := scoreOf(
		pitched("a", 0, "1", 0, 480, 0),
		pitched("b", 0, "1", 0, 480, 1),
		pitched("c", 0, "1", 0, 480, 2),
	)
	out := Layout(ls, DefaultConfig(), nil)
	a, b, c := out.Event("a"), out.Event("b"), out.Event("c")
	if a.ChordOffset != 0 || c.ChordOffset != 0 {
		t.Fatalf("expected chain ends in place, got %.2f %.2f", a.ChordOffset, c.ChordOffset)
	}
	if math.Abs(math.Abs(b.ChordOffset)-DefaultConfig().NoteheadWidthPx) > eps {
		t.Fatalf("expected middle head displaced one width, got %.2f", b.ChordOffset)
	}
	if overlapArea(a.Notehead, b.Notehead) > 0 || overlapArea(c.Notehead, b.Notehead) > 0 {
		t.Fatalf("expected displaced head clear of its neighbours")
	}
	stems := 0
	for _, e := range []*Event{a, b, c} {
		if e.Stem != nil {
			stems++
		}
	}
	if stems != 1 {
		t.Fatalf("expected one stem for the chord, got %d", stems)
	}
}

func TestRestAvoidsNote(t *testing.T) {
	ls := scoreOf(
		pitched("n", 0, "1", 0, 480, 4),
		restAt("r", 0, "2", 0, 480),
	)
	out := Layout(ls, DefaultConfig(), nil)
	n, r := out.Event("n"), out.Event("r")
	if overlapArea(n.BBox, r.BBox) > 0 {
		t.Fatalf("expected rest clear of the note, got %+v vs %+v", r.BBox, n.BBox)
	}
	if r.Y >= out.Staves[0].LineY(out.Staves[0].CenterLine) {
		t.Fatalf("expected rest moved up, got y=%.2f", r.Y)
	}
}

func TestTies(t *testing.T) {
	ls := scoreOf(
		tied(pitched("a", 0, "1", 0, 960, -4), true, false),
		tied(pitched("b", 0, "1", 960, 480, -4), false, true),
		tied(pitched("c", 0, "1", 1440, 480, 4), true, false),
		tied(pitched("d", 0, "1", 1920, 480, 4), false, true),
		tied(pitched("e", 0, "1", 2400, 480, 2), true, false),
	)
	out := Layout(ls, DefaultConfig(), nil)
	a := out.Event("a")
	if a.Tie == nil || a.Tie.ToID != "b" || a.Tie.CrossMeasure {
		t.Fatalf("expected in-measure tie a->b, got %+v", a.Tie)
	}
	if a.Tie.Above != (a.StemDirection == StemDown) {
		t.Fatalf("expected tie opposite the stem, got above=%v stem=%s", a.Tie.Above, a.StemDirection)
	}
	c := out.Event("c")
	if c.Tie == nil || c.Tie.ToID != "d" || !c.Tie.CrossMeasure {
		t.Fatalf("expected cross-measure tie c->d, got %+v", c.Tie)
	}
	if c.Tie.End.X <= c.Tie.Start.X {
		t.Fatalf("expected tie to run left to right, got %+v", c.Tie)
	}
	if out.Event("e").Tie != nil {
		t.Fatalf("expected no tie without a partner")
	}
	if a.Tie.Path() == nil {
		t.Fatalf("expected tie path")
	}
	if contains(a.BBox, box(a.Tie.C1.X, a.Tie.C1.Y, a.Tie.C1.X, a.Tie.C1.Y)) && contains(a.BBox, box(a.Tie.End.X, a.Tie.End.Y, a.Tie.End.X, a.Tie.End.Y)) {
		t.Fatalf("expected tie outside the bbox")
	}
}

func TestMalformedEventsAreSkipped(t *testing.T) {
	noPitch := pitched("bad1", 0, "1", 480, 480, 0)
	noPitch.Pitch = nil
	ls := scoreOf(
		pitched("ok", 0, "1", 0, 480, 0),
		noPitch,
		pitched("bad2", 0, "1", 960, 0, 0),
		score.Event{ID: "ctl", Kind: score.KindControl, StartTick: 0, VoiceID: "1", Control: "t120"},
	)
	wrongStaff := pitched("bad3", 0, "1", 1440, 480, 0)
	wrongStaff.StaffIndex = 7
	v := &ls.Parts[0].Staves[0].Voices[0]
	v.Events = append(v.Events, wrongStaff)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	out := Layout(ls, DefaultConfig(), logger)
	if len(out.Events) != 1 || out.Events[0].ID != "ok" {
		t.Fatalf("expected only the valid event, got %d events", len(out.Events))
	}
	if got := strings.Count(buf.String(), "level=ERROR"); got != 3 {
		t.Fatalf("expected 3 error records, got %d:\n%s", got, buf.String())
	}
}

func TestNilScore(t *testing.T) {
	out := Layout(nil, DefaultConfig(), nil)
	if out == nil || len(out.Events) != 0 {
		t.Fatalf("expected empty result")
	}
}

func TestGeneratedIDs(t *testing.T) {
	ls := scoreOf(
		pitched("", 0, "1", 0, 480, 0),
		pitched("", 0, "1", 480, 480, 2),
	)
	out := Layout(ls, DefaultConfig(), nil)
	if out.Events[0].ID == "" || out.Events[0].ID == out.Events[1].ID {
		t.Fatalf("expected distinct generated ids, got %q %q", out.Events[0].ID, out.Events[1].ID)
	}
}

func TestDeterminism(t *testing.T) {
	ls := richScore()
	before, err := json.Marshal(ls)
	if err != nil {
		t.Fatalf("marshal input: %v", err)
	}
	a := Layout(ls, DefaultConfig(), nil)
	b := Layout(ls, DefaultConfig(), nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical layouts")
	}
	if ha, hb := digest(t, a), digest(t, b); ha != hb {
		t.Fatalf("expected identical digests, got %s and %s", ha, hb)
	}
	after, _ := json.Marshal(ls)
	if !bytes.Equal(before, after) {
		t.Fatalf("expected layout to leave its input untouched")
	}
}

func digest(t *testing.T, s *Score) string {
	t.Helper()
	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal layout: %v", err)
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func TestNoHorizontalOverlap(t *testing.T) {
	out := Layout(richScore(), DefaultConfig(), nil)
	for i := range out.Events {
		for j := i + 1; j < len(out.Events); j++ {
			a, b := &out.Events[i], &out.Events[j]
			if a.MeasureIndex != b.MeasureIndex || a.StartTick == b.StartTick {
				continue
			}
			if a.BBox.URx > b.BBox.LLx+eps && b.BBox.URx > a.BBox.LLx+eps {
				t.Fatalf("columns overlap: %s %+v and %s %+v", a.ID, a.BBox, b.ID, b.BBox)
			}
		}
	}
}

func TestXMonotoneAndAnchors(t *testing.T) {
	out := Layout(richScore(), DefaultConfig(), nil)
	for i := range out.Events {
		for j := range out.Events {
			a, b := &out.Events[i], &out.Events[j]
			if a.MeasureIndex == b.MeasureIndex && a.StartTick < b.StartTick &&
				a.X-a.ChordOffset > b.X-b.ChordOffset+eps {
				t.Fatalf("expected x non-decreasing with tick: %s %.2f, %s %.2f", a.ID, a.X, b.ID, b.X)
			}
		}
	}
	for _, m := range out.Measures {
		for k := 1; k < len(m.Anchors); k++ {
			if m.Anchors[k].Tick <= m.Anchors[k-1].Tick || m.Anchors[k].X < m.Anchors[k-1].X-eps {
				t.Fatalf("expected ordered anchors, got %+v", m.Anchors)
			}
		}
	}
	for k := 1; k < len(out.Measures); k++ {
		if math.Abs(out.Measures[k].StartX-out.Measures[k-1].EndX()) > eps {
			t.Fatalf("expected measures to abut")
		}
	}
}

func TestBeamRunIntegrity(t *testing.T) {
	out := Layout(richScore(), DefaultConfig(), nil)
	if len(out.Beams) == 0 {
		t.Fatalf("expected beams in the rich score")
	}
	for _, b := range out.Beams {
		if len(b.NoteIDs) < 2 {
			t.Fatalf("expected at least two members in %s", b.ID)
		}
		var members []*Event
		for _, id := range b.NoteIDs {
			e := out.Event(id)
			if e == nil || !e.IsNote() {
				t.Fatalf("beam %s references missing note %s", b.ID, id)
			}
			if e.VoiceID != b.VoiceID || e.StaffID != b.StaffID || e.MeasureIndex != b.MeasureIndex {
				t.Fatalf("beam %s mixes voices or measures at %s", b.ID, id)
			}
			if e.FlagCount != 0 {
				t.Fatalf("beamed note %s still carries flags", id)
			}
			members = append(members, e)
		}
		for k := 1; k < len(members); k++ {
			prev, cur := members[k-1], members[k]
			if cur.StartTick <= prev.StartTick {
				t.Fatalf("beam %s out of order", b.ID)
			}
			if cur.StartTick-prev.StartTick > prev.DurationTicks {
				t.Fatalf("beam %s spans a gap between %s and %s", b.ID, prev.ID, cur.ID)
			}
		}
		first, last := members[0].StartTick, members[len(members)-1].StartTick
		for _, e := range out.Events {
			if e.IsRest() && e.StaffID == b.StaffID && e.VoiceID == b.VoiceID && e.StartTick > first && e.StartTick < last {
				t.Fatalf("beam %s crosses rest %s", b.ID, e.ID)
			}
		}
	}
}

func TestBBoxCoversParts(t *testing.T) {
	out := Layout(richScore(), DefaultConfig(), nil)
	for _, e := range out.Events {
		if !contains(e.BBox, e.bounds()) {
			t.Fatalf("bbox of %s misses a part: %+v vs %+v", e.ID, e.BBox, e.bounds())
		}
		if !contains(e.BBox, e.Notehead) {
			t.Fatalf("bbox of %s misses its notehead", e.ID)
		}
	}
	if out.Width <= 0 || out.Height <= 0 {
		t.Fatalf("expected positive extents, got %.1fx%.1f", out.Width, out.Height)
	}
}

func BenchmarkLayout(b *testing.B) {
	ls := richScore()
	cfg := DefaultConfig()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Layout(ls, cfg, nil)
	}
}

func TestMixedLengthStackBeamsWithNextNote(t *testing.T) {
	ls := scoreOf(
		pitched("a", 0, "1", 0, 240, 2),
		pitched("b", 0, "1", 0, 120, 6),
		pitched("c", 0, "1", 240, 240, 4),
	)
	out := Layout(ls, DefaultConfig(), nil)
	if len(out.Beams) != 1 {
		t.Fatalf("expected one beam, got %d", len(out.Beams))
	}
	b := out.Beams[0]
	if len(b.NoteIDs) != 2 || b.NoteIDs[1] != "c" {
		t.Fatalf("expected the chord beamed to c, got %v", b.NoteIDs)
	}
	if id := b.NoteIDs[0]; id != "a" && id != "b" {
		t.Fatalf("expected the chord tip first, got %s", id)
	}
	c := out.Event("c")
	if c.FlagCount != 0 || c.Flag != nil || c.Stem == nil {
		t.Fatalf("expected c beamed without a flag, got flags=%d stem=%v", c.FlagCount, c.Stem)
	}
	heads := 0
	for _, id := range []string{"a", "b"} {
		if e := out.Event(id); e.Stem != nil {
			heads++
		}
	}
	if heads != 1 {
		t.Fatalf("expected one stem shared by a and b, got %d", heads)
	}
}

func TestBeamDirectionDrivesSecondDisplacement(t *testing.T) {
	ls := scoreOf(
		pitched("lo", 0, "1", 0, 240, 5),
		pitched("hi", 0, "1", 0, 240, 6),
		pitched("far", 0, "1", 240, 240, -8),
	)
	out := Layout(ls, DefaultConfig(), nil)
	lo, hi := out.Event("lo"), out.Event("hi")
	if hi.StemDirection != StemUp || lo.StemDirection != StemUp {
		t.Fatalf("expected the run to point up, got %s/%s", lo.StemDirection, hi.StemDirection)
	}
	if hi.ChordOffset <= 0 {
		t.Fatalf("expected the upper head of the second right of an up stem, got offset %.2f", hi.ChordOffset)
	}
	if hi.Stem == nil {
		t.Fatalf("expected the tip note to carry the stem")
	}
	if hi.Notehead.LLx < hi.Stem.X-eps || lo.Notehead.URx > hi.Stem.X+eps {
		t.Fatalf("expected heads on either side of the stem at %.2f, got lo %+v hi %+v", hi.Stem.X, lo.Notehead, hi.Notehead)
	}
}

// restOffset is how far a rest sits from the centre line, positive down.
func restOffset(out *Score, e *Event) float64 {
	st := &out.Staves[e.StaffIndex]
	return e.Y - st.LineY(st.CenterLine)
}

func overlapWith(b rect.Rect, others ...*Event) float64 {
	area := 0.0
	for _, o := range others {
		area += overlapArea(b, o.BBox)
	}
	return area
}

func TestRestsAvoidEarlierRests(t *testing.T) {
	ls := scoreOf(
		pitched("n", 0, "1", 0, 480, 2),
		restAt("r1", 0, "2", 0, 480),
		restAt("r2", 0, "3", 0, 480),
		restAt("r3", 0, "4", 0, 480),
	)
	cfg := DefaultConfig()
	out := Layout(ls, cfg, nil)
	n, r1, r2, r3 := out.Event("n"), out.Event("r1"), out.Event("r2"), out.Event("r3")

	if a := overlapWith(r1.BBox, n); a > eps {
		t.Fatalf("expected r1 clear of the note, got overlap %.2f", a)
	}
	if a := overlapWith(r2.BBox, n, r1); a > eps {
		t.Fatalf("expected r2 clear of the note and r1, got overlap %.2f", a)
	}

	// r3 takes the candidate with the least overlap.
	base := translate(r3.BBox, 0, -restOffset(out, r3))
	best := math.Inf(1)
	for _, step := range restSteps {
		b := translate(base, 0, -step*cfg.StaffLineSpacingPx)
		best = math.Min(best, overlapWith(b, n, r1, r2))
	}
	if got := overlapWith(r3.BBox, n, r1, r2); math.Abs(got-best) > eps {
		t.Fatalf("expected r3 at the least overlap %.2f, got %.2f", best, got)
	}
}

func TestDenseColumnRestsStayOnCandidates(t *testing.T) {
	var evs []score.Event
	for z := -4; z <= 8; z++ {
		evs = append(evs, pitched("n"+string(rune('a'+z+4)), 0, "1", 0, 480, z))
	}
	for v := 2; v <= 7; v++ {
		evs = append(evs, restAt("r"+string(rune('0'+v)), 0, string(rune('0'+v)), 0, 480))
	}
	cfg := DefaultConfig()
	out := Layout(scoreOf(evs...), cfg, nil)
	for i := range out.Events {
		e := &out.Events[i]
		if !e.IsRest() {
			continue
		}
		steps := -restOffset(out, e) / cfg.StaffLineSpacingPx
		if math.Abs(steps-math.Round(steps)) > eps || math.Abs(steps) > 3+eps {
			t.Fatalf("expected %s on a candidate offset, got %.3f spaces", e.ID, steps)
		}
	}
}
