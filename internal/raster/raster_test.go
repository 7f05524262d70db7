package raster

import (
	"testing"

	"github.com/cbegin/mmlengrave-go/internal/layout"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

func layoutOf(dur, z int) *layout.Score {
	ls := &score.LogicalScore{
		TicksPerQuarter: 480,
		Parts: []score.Part{{ID: "P1", Staves: []score.Staff{{ID: "S1", Voices: []score.Voice{{ID: "1", Events: []score.Event{
			{ID: "n", Kind: score.KindNote, StartTick: 0, DurationTicks: dur, VoiceID: "1", Pitch: &score.PitchMap{Z: z}},
		}}}}}}},
	}
	return layout.Layout(ls, layout.DefaultConfig(), nil)
}

func TestRenderFillsNotehead(t *testing.T) {
	s := layoutOf(480, 3)
	img := RenderScore(s, 1)
	if got := img.Bounds().Dx(); got < int(s.Width) {
		t.Fatalf("expected width >= %.0f, got %d", s.Width, got)
	}
	e := s.Events[0]
	cx := int((e.Notehead.LLx + e.Notehead.URx) / 2)
	cy := int((e.Notehead.LLy + e.Notehead.URy) / 2)
	if a := img.AlphaAt(cx, cy).A; a < 200 {
		t.Fatalf("expected ink at the notehead centre, got %d", a)
	}
	if a := img.AlphaAt(0, 0).A; a != 0 {
		t.Fatalf("expected empty margin, got %d", a)
	}
}

func TestRenderLeavesHalfNoteOpen(t *testing.T) {
	s := layoutOf(960, 3)
	img := RenderScore(s, 1)
	e := s.Events[0]
	cx := int((e.Notehead.LLx + e.Notehead.URx) / 2)
	cy := int((e.Notehead.LLy + e.Notehead.URy) / 2)
	if a := img.AlphaAt(cx, cy).A; a > 50 {
		t.Fatalf("expected an open notehead, got coverage %d", a)
	}
}

func TestRenderScales(t *testing.T) {
	s := layoutOf(480, 3)
	a := RenderScore(s, 1)
	b := RenderScore(s, 2)
	if b.Bounds().Dx() < 2*a.Bounds().Dx()-1 {
		t.Fatalf("expected doubled width, got %d vs %d", b.Bounds().Dx(), a.Bounds().Dx())
	}
}
