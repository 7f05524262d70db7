package mml

type EventType int

const (
	EventNote EventType = iota + 1
	EventRest
	EventTempo
	EventVolume
	EventControl
)

type Event struct {
	Type     EventType
	Tick     int
	Duration int
	Note     int
	Value    int
	// Tie marks a note joined to the following note by '&'.
	Tie     bool
	Command string
}

type Track struct {
	Events  []Event
	EndTick int
}

type Score struct {
	Resolution  int
	InitialBPM  float64
	Tracks      []Track
	Definitions map[string]string
}

type ParserConfig struct {
	Resolution     int
	DefaultBPM     float64
	DefaultLValue  int
	DefaultOctave  int
	MinOctave      int
	MaxOctave      int
	OctavePolarize int
}

func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		Resolution:     1920,
		DefaultBPM:     120,
		DefaultLValue:  4,
		DefaultOctave:  5,
		MinOctave:      0,
		MaxOctave:      9,
		OctavePolarize: -1,
	}
}
