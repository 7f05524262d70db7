package layout

import (
	"github.com/cbegin/mmlengrave-go/internal/score"
)

const tpq = 480

func pitched(id string, staff int, voice string, tick, dur, z int) score.Event {
	return score.Event{
		ID:            id,
		Kind:          score.KindNote,
		StartTick:     tick,
		DurationTicks: dur,
		StaffIndex:    staff,
		VoiceID:       voice,
		Pitch:         &score.PitchMap{Z: z, O: 4},
	}
}

func withGlyph(e score.Event, glyph string) score.Event {
	p := *e.Pitch
	p.Accidental = glyph
	e.Pitch = &p
	return e
}

func tied(e score.Event, start, stop bool) score.Event {
	e.TieStart, e.TieStop = start, stop
	return e
}

func restAt(id string, staff int, voice string, tick, dur int) score.Event {
	return score.Event{ID: id, Kind: score.KindRest, StartTick: tick, DurationTicks: dur, StaffIndex: staff, VoiceID: voice}
}

// scoreOf groups events by staff index and voice ID, in first-seen order.
func scoreOf(events ...score.Event) *score.LogicalScore {
	var staves []score.Staff
	for _, e := range events {
		for len(staves) <= e.StaffIndex {
			staves = append(staves, score.Staff{ID: "S" + string(rune('1'+len(staves)))})
		}
		st := &staves[e.StaffIndex]
		vi := -1
		for i := range st.Voices {
			if st.Voices[i].ID == e.VoiceID {
				vi = i
			}
		}
		if vi < 0 {
			st.Voices = append(st.Voices, score.Voice{ID: e.VoiceID})
			vi = len(st.Voices) - 1
		}
		st.Voices[vi].Events = append(st.Voices[vi].Events, e)
	}
	return &score.LogicalScore{
		TicksPerQuarter: tpq,
		Parts:           []score.Part{{ID: "P1", Staves: staves}},
	}
}

// richScore mixes chords, seconds, accidentals, dots, rests, ties, ledger
// notes and two voices over two staves and two measures.
func richScore() *score.LogicalScore {
	return scoreOf(
		pitched("a1", 0, "1", 0, 480, 0),
		withGlyph(pitched("a2", 0, "1", 0, 480, 1), score.AccidentalSharp),
		pitched("a3", 0, "1", 0, 480, 4),
		withGlyph(pitched("a4", 0, "1", 480, 240, 5), score.AccidentalFlat),
		pitched("a5", 0, "1", 720, 240, 6),
		pitched("a6", 0, "1", 960, 360, 3),
		withGlyph(pitched("a7", 0, "1", 1320, 120, 2), score.AccidentalSharp),
		restAt("a8", 0, "1", 1440, 480),
		tied(pitched("a9", 0, "1", 1920, 960, 8), true, false),
		tied(pitched("a10", 0, "1", 2880, 480, 8), false, true),
		pitched("a11", 0, "1", 3360, 480, -6),

		pitched("b1", 0, "2", 0, 960, -4),
		restAt("b2", 0, "2", 960, 960),
		pitched("b3", 0, "2", 1920, 1920, -2),

		pitched("c1", 1, "1", 0, 120, -10),
		withGlyph(pitched("c2", 1, "1", 120, 120, -9), score.AccidentalSharp),
		pitched("c3", 1, "1", 240, 120, -8),
		pitched("c4", 1, "1", 360, 120, -7),
		withGlyph(pitched("c5", 1, "1", 480, 480, -8), score.AccidentalNatural),
		pitched("c6", 1, "1", 960, 720, -12),
		pitched("c7", 1, "1", 1680, 240, -11),
		pitched("c8", 1, "1", 1920, 1920, -14),
		pitched("c9", 1, "1", 1920, 1920, -13),
	)
}
