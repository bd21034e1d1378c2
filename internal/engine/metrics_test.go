package engine

import (
	"math"
	"testing"
	"time"
)

func TestAggregateEmptyTrace(t *testing.T) {
	sum := Aggregate(Trace{}, DefaultSpeedModel())
	if sum.Distance != 0 || sum.WPM != 0 || sum.AlternationRatio != 0 {
		t.Fatalf("empty trace summary not zeroed: %+v", sum)
	}
	if sum.Duration != 0 {
		t.Fatalf("empty trace duration = %v, want 0", sum.Duration)
	}
}

func TestAggregateZeroDistanceTrace(t *testing.T) {
	// Home-row-only text travels nowhere; WPM must be 0, not Inf.
	lay := qwerty(t)
	sum := Aggregate(Simulate(lay, "asdf jkl;"), DefaultSpeedModel())
	if sum.Distance != 0 {
		t.Fatalf("home row distance = %v, want 0", sum.Distance)
	}
	if sum.WPM != 0 || math.IsInf(sum.WPM, 0) || math.IsNaN(sum.WPM) {
		t.Fatalf("zero-duration WPM = %v, want 0", sum.WPM)
	}
}

func TestAggregateDurationAndWPM(t *testing.T) {
	speed := SpeedModel{MillisPerUnit: 250}
	trace := Trace{Events: []MovementEvent{
		{Distance: 1.0, Alternated: true},
		{Distance: 2.0},
		{Distance: 3.0, Alternated: true},
	}}
	sum := Aggregate(trace, speed)
	if sum.Distance != 6.0 {
		t.Fatalf("distance = %v, want 6", sum.Distance)
	}
	if sum.Duration != 1500*time.Millisecond {
		t.Fatalf("duration = %v, want 1.5s", sum.Duration)
	}
	// 3 chars = 0.6 words over 0.025 minutes.
	wantWPM := (3.0 / 5.0) / (1.5 / 60.0)
	if math.Abs(sum.WPM-wantWPM) > 1e-9 {
		t.Fatalf("wpm = %v, want %v", sum.WPM, wantWPM)
	}
	if sum.Alternations != 1 {
		// The first event is not a transition.
		t.Fatalf("alternations = %d, want 1", sum.Alternations)
	}
	if sum.AlternationRatio != 0.5 {
		t.Fatalf("alternation ratio = %v, want 0.5", sum.AlternationRatio)
	}
}

func TestAggregateRatioBounds(t *testing.T) {
	lay := qwerty(t)
	for _, text := range []string{"", "a", "ab", "hello world", "fjfjfj", "aaaa"} {
		sum := Aggregate(Simulate(lay, text), DefaultSpeedModel())
		if sum.AlternationRatio < 0 || sum.AlternationRatio > 1 {
			t.Fatalf("%q: alternation ratio %v out of [0,1]", text, sum.AlternationRatio)
		}
		if sum.Chars < 2 && sum.AlternationRatio != 0 {
			t.Fatalf("%q: ratio must be 0 below 2 events", text)
		}
	}
}

func TestAggregateCarriesSkipped(t *testing.T) {
	lay := qwerty(t)
	sum := Aggregate(Simulate(lay, "aé"), DefaultSpeedModel())
	if sum.Chars != 1 || sum.Skipped != 1 {
		t.Fatalf("chars=%d skipped=%d, want 1 and 1", sum.Chars, sum.Skipped)
	}
}
