package pdfout

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/cbegin/mmlengrave-go/internal/layout"
	"github.com/cbegin/mmlengrave-go/internal/score"
)

func TestWriteProducesPDF(t *testing.T) {
	ls := &score.LogicalScore{
		TicksPerQuarter: 480,
		Parts: []score.Part{{ID: "P1", Staves: []score.Staff{{ID: "S1", Voices: []score.Voice{{ID: "1", Events: []score.Event{
			{ID: "a", Kind: score.KindNote, StartTick: 0, DurationTicks: 240, VoiceID: "1", Pitch: &score.PitchMap{Z: 2}},
			{ID: "b", Kind: score.KindNote, StartTick: 240, DurationTicks: 240, VoiceID: "1", Pitch: &score.PitchMap{Z: 4}},
		}}}}}}},
	}
	s := layout.Layout(ls, layout.DefaultConfig(), nil)
	name := filepath.Join(t.TempDir(), "out.pdf")
	if err := Write(name, s); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(raw, []byte("%PDF-")) {
		t.Fatalf("expected a PDF header, got %q", raw[:min(len(raw), 8)])
	}
}

func TestWriteRejectsNil(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "x.pdf"), nil); err == nil {
		t.Fatalf("expected error for nil layout")
	}
}
