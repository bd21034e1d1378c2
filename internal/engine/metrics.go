package engine

import "time"

// Speed model defaults, taken from the measured constants the analyzer
// was tuned with: 250 ms of travel per key unit, 100 ms key dwell.
const (
	DefaultMillisPerUnit = 250.0
	DefaultPressMillis   = 100
)

// SpeedModel holds the named timing constants of the simulation.
type SpeedModel struct {
	// MillisPerUnit converts travel distance (key units) to time.
	MillisPerUnit float64
	// PressMillis is the key dwell time; it paces the playback
	// animation and never enters the Summary duration.
	PressMillis int
}

// DefaultSpeedModel returns the default timing constants.
func DefaultSpeedModel() SpeedModel {
	return SpeedModel{MillisPerUnit: DefaultMillisPerUnit, PressMillis: DefaultPressMillis}
}

// Summary holds the aggregate cost metrics of one trace. It is
// computed once from a completed trace and never mutated.
type Summary struct {
	Chars            int
	Skipped          int
	Distance         float64
	Alternations     int
	AlternationRatio float64
	Duration         time.Duration
	WPM              float64
}

// Aggregate reduces a trace to its summary statistics.
//
// The alternation ratio counts alternating transitions over total
// transitions (len-1); a trace with fewer than two events has no
// transition and gets ratio 0. An empty or zero-duration trace gets
// WPM 0 rather than a division blowup.
func Aggregate(trace Trace, speed SpeedModel) Summary {
	sum := Summary{
		Chars:   len(trace.Events),
		Skipped: trace.Skipped,
	}
	for i, ev := range trace.Events {
		sum.Distance += ev.Distance
		if i > 0 && ev.Alternated {
			sum.Alternations++
		}
	}
	if transitions := len(trace.Events) - 1; transitions > 0 {
		sum.AlternationRatio = float64(sum.Alternations) / float64(transitions)
	}
	sum.Duration = time.Duration(sum.Distance*speed.MillisPerUnit) * time.Millisecond

	minutes := sum.Duration.Minutes()
	if sum.Chars > 0 && minutes > 0 {
		sum.WPM = (float64(sum.Chars) / 5.0) / minutes
	}
	return sum
}
