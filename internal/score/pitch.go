package score

// ZReference is the diatonic index that maps to Z = 0: E in MML octave 5
// (MIDI 64), the bottom line of a treble staff.
const ZReference = 5*7 + 2

const stepLetters = "cdefgab"

type spelling struct{ step, alter int }

var sharpSpelling = [12]spelling{
	{0, 0}, {0, 1}, {1, 0}, {1, 1}, {2, 0}, {3, 0},
	{3, 1}, {4, 0}, {4, 1}, {5, 0}, {5, 1}, {6, 0},
}

var flatSpelling = [12]spelling{
	{0, 0}, {1, -1}, {1, 0}, {2, -1}, {2, 0}, {3, 0},
	{4, -1}, {4, 0}, {5, -1}, {5, 0}, {6, -1}, {6, 0},
}

// PitchFromMIDI spells a MIDI note and places it on the Z grid. The
// accidental is left empty; alter is the chromatic shift of the spelling.
func PitchFromMIDI(note int, flats bool) (PitchMap, int) {
	if note < 0 {
		note = 0
	}
	sp := sharpSpelling[note%12]
	if flats {
		sp = flatSpelling[note%12]
	}
	octave := note / 12
	return PitchMap{
		Z:      octave*7 + sp.step - ZReference,
		O:      octave,
		ZInOct: sp.step,
	}, sp.alter
}

// StepLetter is the lower-case letter name of a ZInOct step.
func StepLetter(step int) byte {
	return stepLetters[((step%7)+7)%7]
}

// AccidentalFor names the glyph that writes a chromatic shift.
func AccidentalFor(alter int) string {
	switch alter {
	case 0:
		return AccidentalNatural
	case 1:
		return AccidentalSharp
	case -1:
		return AccidentalFlat
	case 2:
		return AccidentalDoubleSharp
	case -2:
		return AccidentalDoubleFlat
	}
	return AccidentalNone
}
