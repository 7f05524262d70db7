package outline

import (
	"testing"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"github.com/cbegin/mmlengrave-go/internal/layout"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

func sampleLayout() *layout.Score {
	note := func(id string, tick, dur, z int, glyph string) score.Event {
		return score.Event{ID: id, Kind: score.KindNote, StartTick: tick, DurationTicks: dur, VoiceID: "1",
			Pitch: &score.PitchMap{Z: z, Accidental: glyph}, TieStart: id == "n4"}
	}
	ls := &score.LogicalScore{
		TicksPerQuarter: 480,
		Parts: []score.Part{{ID: "P1", Staves: []score.Staff{{ID: "S1", Voices: []score.Voice{{ID: "1", Events: []score.Event{
			note("n1", 0, 240, 0, score.AccidentalSharp),
			note("n2", 240, 240, 3, score.AccidentalFlat),
			note("n3", 480, 720, 10, ""),
			note("n4", 1200, 240, 4, score.AccidentalNatural),
			note("n5", 1440, 480, 4, ""),
			{ID: "r1", Kind: score.KindRest, StartTick: 1920, DurationTicks: 1920, VoiceID: "1"},
		}}}}}}},
	}
	return layout.Layout(ls, layout.DefaultConfig(), nil)
}

func TestPathsAreClosedAndInside(t *testing.T) {
	s := sampleLayout()
	paths := Paths(s, DefaultPen())
	if len(paths) == 0 {
		t.Fatalf("expected paths")
	}
	for i, p := range paths {
		if len(p.Cmds) == 0 || p.Cmds[len(p.Cmds)-1] != path.CmdClose {
			t.Fatalf("path %d is not closed", i)
		}
		b := Bounds(p)
		if b.LLx < 0 || b.LLy < 0 || b.URx > s.Width || b.URy > s.Height {
			t.Fatalf("path %d outside the page: %+v (page %.1fx%.1f)", i, b, s.Width, s.Height)
		}
	}
}

func TestPolygonWindsClockwise(t *testing.T) {
	ccw := []vec.Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	if signedArea(ccw) >= 0 {
		t.Fatalf("expected negative area for the test polygon")
	}
	p := polygon(ccw...)
	if got := signedArea(p.Coords); got <= 0 {
		t.Fatalf("expected polygon to be rewound clockwise, got area %.2f", got)
	}
}

func TestNilScore(t *testing.T) {
	if got := Paths(nil, DefaultPen()); len(got) != 0 {
		t.Fatalf("expected no paths, got %d", len(got))
	}
}
