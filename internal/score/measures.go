package score

// DefaultTimeSig is used when a score carries no measures.
var DefaultTimeSig = TimeSig{Num: 4, Den: 4}

// BeatsPerMeasure is the measure length in quarter-note beats.
func (ts TimeSig) BeatsPerMeasure() float64 {
	if ts.Num <= 0 || ts.Den <= 0 {
		return 4
	}
	return float64(ts.Num) * 4 / float64(ts.Den)
}

// MeasureTicks is the measure length in ticks.
func (ts TimeSig) MeasureTicks(ticksPerQuarter int) int {
	return int(ts.BeatsPerMeasure() * float64(ticksPerQuarter))
}

// Compound reports 6/8, 9/8, 12/8 style meters.
func (ts TimeSig) Compound() bool {
	return ts.Den >= 8 && ts.Num > 3 && ts.Num%3 == 0
}

// BuildMeasures lays consecutive measures of one time signature over
// [0, endTick). At least one measure is always returned.
func BuildMeasures(ts TimeSig, ticksPerQuarter, endTick int) []Measure {
	if ts.Num <= 0 || ts.Den <= 0 {
		ts = DefaultTimeSig
	}
	length := ts.MeasureTicks(ticksPerQuarter)
	if length <= 0 {
		return nil
	}
	var out []Measure
	for start := 0; start < endTick || len(out) == 0; start += length {
		m := Measure{Index: len(out), StartTick: start, EndTick: start + length, TimeSig: ts}
		m.BeatGroups = DefaultBeatGroups(m, ticksPerQuarter)
		out = append(out, m)
	}
	return out
}

// DefaultBeatGroups splits a measure into beaming groups: halves of a 4/4
// bar, dotted beats in compound meters and single beats otherwise.
func DefaultBeatGroups(m Measure, ticksPerQuarter int) []TickRange {
	ts := m.TimeSig
	if ts.Num <= 0 || ts.Den <= 0 {
		ts = DefaultTimeSig
	}
	beat := ticksPerQuarter * 4 / ts.Den
	switch {
	case ts.Num == 4 && ts.Den == 4:
		beat *= 2
	case ts.Compound():
		beat *= 3
	}
	if beat <= 0 {
		return []TickRange{{Start: m.StartTick, End: m.EndTick}}
	}
	var out []TickRange
	for start := m.StartTick; start < m.EndTick; start += beat {
		end := start + beat
		if end > m.EndTick {
			end = m.EndTick
		}
		out = append(out, TickRange{Start: start, End: end})
	}
	return out
}
