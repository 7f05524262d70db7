package mml

import "strings"

// fifths of each major and minor key name; negative counts flats.
var keyFifths = map[string]int{
	"c": 0, "am": 0,
	"g": 1, "em": 1,
	"d": 2, "bm": 2,
	"a": 3, "f#m": 3,
	"e": 4, "c#m": 4,
	"b": 5, "g#m": 5,
	"f#": 6, "d#m": 6,
	"c#": 7, "a#m": 7,
	"f": -1, "dm": -1,
	"bb": -2, "gm": -2,
	"eb": -3, "cm": -3,
	"ab": -4, "fm": -4,
	"db": -5, "bbm": -5,
	"gb": -6, "ebm": -6,
	"cb": -7, "abm": -7,
}

const (
	sharpOrder = "fcgdaeb"
	flatOrder  = "beadgcf"
)

// KeySignature resolves #SIGN into per-letter semitone shifts. It accepts
// key names ("Bb", "f#m") or explicit lists ("f+,c+").
func KeySignature(defs map[string]string) map[byte]int {
	out := make(map[byte]int, 7)
	for l := range letterSemitone {
		out[l] = 0
	}
	raw := strings.ToLower(strings.TrimSpace(defs["SIGN"]))
	switch {
	case raw == "":
	case strings.Contains(raw, ","):
		for _, tok := range strings.Split(raw, ",") {
			tok = strings.TrimSpace(tok)
			if len(tok) < 2 || !isLetter(tok[0]) {
				continue
			}
			switch tok[len(tok)-1] {
			case '+', '#':
				out[tok[0]] = 1
			case '-', 'b':
				out[tok[0]] = -1
			}
		}
	default:
		key := strings.NewReplacer("+", "#", " ", "").Replace(raw)
		n := keyFifths[key]
		for k := 0; k < n; k++ {
			out[sharpOrder[k]] = 1
		}
		for k := 0; k < -n; k++ {
			out[flatOrder[k]] = -1
		}
	}
	return out
}
