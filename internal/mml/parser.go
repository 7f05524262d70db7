package mml

import (
	"fmt"
	"math"
	"strings"
)

// semitones of each note letter above C.
var letterSemitone = map[byte]int{
	'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11,
}

type Parser struct{ cfg ParserConfig }

func NewParser(cfg ParserConfig) *Parser {
	def := DefaultParserConfig()
	if cfg.Resolution <= 0 {
		cfg.Resolution = def.Resolution
	}
	if cfg.DefaultLValue <= 0 {
		cfg.DefaultLValue = def.DefaultLValue
	}
	if cfg.DefaultBPM <= 0 {
		cfg.DefaultBPM = def.DefaultBPM
	}
	if cfg.MaxOctave <= cfg.MinOctave {
		cfg.MinOctave, cfg.MaxOctave = def.MinOctave, def.MaxOctave
	}
	if cfg.OctavePolarize == 0 {
		cfg.OctavePolarize = def.OctavePolarize
	}
	return &Parser{cfg: cfg}
}

// Parse reads every ';'-separated track of input. Directives such as
// #METER or #SIGN are collected into Score.Definitions.
func (p *Parser) Parse(input string) (*Score, error) {
	body, defs := extractDirectives(stripComments(input))
	keySig := KeySignature(defs)
	var tracks []Track
	for _, part := range splitTracks(body) {
		if strings.TrimSpace(part) == "" {
			continue
		}
		tr, err := p.readTrack(part, keySig)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", len(tracks)+1, err)
		}
		tracks = append(tracks, tr)
	}
	return &Score{
		Resolution:  p.cfg.Resolution,
		InitialBPM:  p.cfg.DefaultBPM,
		Tracks:      tracks,
		Definitions: defs,
	}, nil
}

// trackReader walks one loop-expanded track and holds the running state
// that every note inherits.
type trackReader struct {
	cursor
	cfg    ParserConfig
	keySig map[byte]int

	tick   int
	octave int
	unit   int
	volume int
	bpm    float64

	events   []Event
	lastNote int
}

func (p *Parser) readTrack(src string, keySig map[byte]int) (Track, error) {
	flat, err := expandLoops(src)
	if err != nil {
		return Track{}, err
	}
	r := &trackReader{
		cursor:   cursor{src: flat},
		cfg:      p.cfg,
		keySig:   keySig,
		octave:   p.cfg.DefaultOctave,
		unit:     p.cfg.Resolution / p.cfg.DefaultLValue,
		volume:   16,
		bpm:      p.cfg.DefaultBPM,
		lastNote: -1,
	}
	for r.more() {
		if err := r.step(); err != nil {
			return Track{}, err
		}
	}
	return Track{Events: r.events, EndTick: r.tick}, nil
}

// step consumes one command.
func (r *trackReader) step() error {
	at := r.pos
	ch := lower(r.peek())
	r.pos++
	switch {
	case isSpace(ch) || ch == '|':
		return nil
	case ch == 'n' && isDigit(r.peek()):
		key, err := r.numberOr(60)
		if err != nil {
			return err
		}
		return r.sound(key)
	case isLetter(ch):
		return r.sound(r.pitchOf(ch))
	case ch == 'r':
		dur, err := r.sustain()
		if err != nil {
			return err
		}
		r.events = append(r.events, Event{Type: EventRest, Tick: r.tick, Duration: dur})
		r.tick += dur
		r.lastNote = -1
		return nil
	case ch == '&':
		if r.lastNote < 0 {
			return fmt.Errorf("tie without a preceding note at offset %d", at)
		}
		r.events[r.lastNote].Tie = true
		return nil
	case ch == 'l':
		n, err := r.length()
		if err != nil {
			return err
		}
		r.unit = n
		return nil
	case ch == 'o':
		o, err := r.numberOr(r.octave)
		if err != nil {
			return err
		}
		if o < r.cfg.MinOctave || o > r.cfg.MaxOctave {
			return fmt.Errorf("octave %d out of range at offset %d", o, at)
		}
		r.octave = o
		return nil
	case ch == '<' || ch == '>':
		n, err := r.numberOr(1)
		if err != nil {
			return err
		}
		if ch == '>' {
			n = -n
		}
		r.octave = clampInt(r.octave+n*r.cfg.OctavePolarize, r.cfg.MinOctave, r.cfg.MaxOctave)
		return nil
	case ch == 't':
		bpm, err := r.numberOr(int(r.bpm))
		if err != nil {
			return err
		}
		r.bpm = float64(bpm)
		r.control(EventTempo, "t", int(math.Round(r.bpm)))
		return nil
	case ch == 'v':
		v, err := r.numberOr(r.volume)
		if err != nil {
			return err
		}
		r.volume = v
		r.control(EventVolume, "v", v)
		return nil
	case ch == 'q' || ch == '@' || ch == 'p' || ch == 'k':
		// Kept as controls so later ticks line up with the source.
		v, err := r.signedOr(0)
		if err != nil {
			return err
		}
		r.control(EventControl, string(ch), v)
		return nil
	}
	return fmt.Errorf("unexpected %q at offset %d", r.src[at], at)
}

// pitchOf reads the accidentals after a note letter. Without an explicit
// accidental the key signature applies.
func (r *trackReader) pitchOf(letter byte) int {
	shift, explicit := 0, false
scan:
	for r.more() {
		switch r.peek() {
		case '#', '+':
			shift++
		case '-':
			shift--
		default:
			break scan
		}
		explicit = true
		r.pos++
	}
	if !explicit {
		shift = r.keySig[letter]
	}
	return r.octave*12 + letterSemitone[letter] + shift
}

func (r *trackReader) sound(key int) error {
	dur, err := r.sustain()
	if err != nil {
		return err
	}
	r.events = append(r.events, Event{Type: EventNote, Tick: r.tick, Duration: dur, Note: clampInt(key, 0, 127), Value: r.volume})
	r.lastNote = len(r.events) - 1
	r.tick += dur
	return nil
}

func (r *trackReader) control(typ EventType, cmd string, v int) {
	r.events = append(r.events, Event{Type: typ, Tick: r.tick, Value: v, Command: cmd})
}

// sustain reads a length and any '^' extensions joined to it.
func (r *trackReader) sustain() (int, error) {
	total, err := r.length()
	if err != nil {
		return 0, err
	}
	for r.more() && r.peek() == '^' {
		r.pos++
		extra, err := r.length()
		if err != nil {
			return 0, err
		}
		total += extra
	}
	return total, nil
}

// length reads an optional note value and its dots. A missing value uses
// the current default length.
func (r *trackReader) length() (int, error) {
	at := r.pos
	v, ok, err := r.digits()
	if err != nil {
		return 0, err
	}
	ticks := r.unit
	if ok {
		if v == 0 {
			return 0, fmt.Errorf("zero length at offset %d", at)
		}
		ticks = r.cfg.Resolution / v
	}
	add := ticks
	for r.more() && r.peek() == '.' {
		r.pos++
		add /= 2
		ticks += add
	}
	return ticks, nil
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}

func isSpace(b byte) bool  { return b == ' ' || b == '\n' || b == '\r' || b == '\t' }
func isDigit(b byte) bool  { return b >= '0' && b <= '9' }
func isLetter(b byte) bool { _, ok := letterSemitone[b]; return ok }
