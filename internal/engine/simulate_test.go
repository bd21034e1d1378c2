package engine

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"keylay/internal/layout"
)

func qwerty(t *testing.T) *layout.Layout {
	t.Helper()
	lay, err := layout.Load("qwerty", "")
	if err != nil {
		t.Fatalf("load qwerty: %v", err)
	}
	return lay
}

func TestSimulateSingleCharFromHome(t *testing.T) {
	lay := qwerty(t)
	for _, r := range "qhv,8" {
		trace := Simulate(lay, string(r))
		if len(trace.Events) != 1 {
			t.Fatalf("%q: expected 1 event, got %d", string(r), len(trace.Events))
		}
		ev := trace.Events[0]
		key, ok := lay.Lookup(r)
		if !ok {
			t.Fatalf("%q: not mapped", string(r))
		}
		home, ok := lay.Home(key.Finger)
		if !ok {
			t.Fatalf("%q: finger %s has no home", string(r), key.Finger)
		}
		want := home.DistanceTo(key.Pos)
		if math.Abs(ev.Distance-want) > 1e-9 {
			t.Fatalf("%q: distance = %v, want %v", string(r), ev.Distance, want)
		}
		if !ev.Alternated {
			t.Fatalf("%q: first event must count as alternated", string(r))
		}
	}
}

func TestSimulateRepeatedCharStaysPut(t *testing.T) {
	lay := qwerty(t)
	trace := Simulate(lay, "aa")
	if len(trace.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(trace.Events))
	}
	first, second := trace.Events[0], trace.Events[1]
	if first.Distance != 0 {
		// a is the left pinky home key; no travel to reach it.
		t.Fatalf("first event distance = %v, want 0", first.Distance)
	}
	if second.Distance != 0 {
		t.Fatalf("second event distance = %v, want 0", second.Distance)
	}
	if second.Alternated {
		t.Fatalf("same-hand repeat must not alternate")
	}
	sum := Aggregate(trace, DefaultSpeedModel())
	if sum.AlternationRatio != 0 {
		t.Fatalf("alternation ratio = %v, want 0", sum.AlternationRatio)
	}
}

func TestSimulateSequentialDistance(t *testing.T) {
	// Same finger typing q then a: home->q, then q->a.
	lay := qwerty(t)
	trace := Simulate(lay, "qa")
	if len(trace.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(trace.Events))
	}
	d1 := math.Sqrt(0.25*0.25 + 1.0)
	if math.Abs(trace.Events[0].Distance-d1) > 1e-9 {
		t.Fatalf("home->q distance = %v, want %v", trace.Events[0].Distance, d1)
	}
	if math.Abs(trace.Events[1].Distance-d1) > 1e-9 {
		t.Fatalf("q->a distance = %v, want %v", trace.Events[1].Distance, d1)
	}
}

func TestSimulateSkipsUnmapped(t *testing.T) {
	lay := qwerty(t)
	trace := Simulate(lay, "añb\tc")
	if len(trace.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(trace.Events))
	}
	if trace.Skipped != 2 {
		t.Fatalf("expected 2 skipped characters, got %d", trace.Skipped)
	}
}

func TestSimulateAlternation(t *testing.T) {
	lay := qwerty(t)
	// f and j are on opposite hands; alternation on every transition.
	trace := Simulate(lay, "fjfj")
	for i, ev := range trace.Events {
		if !ev.Alternated {
			t.Fatalf("event %d: expected alternated", i)
		}
	}
	sum := Aggregate(trace, DefaultSpeedModel())
	if sum.AlternationRatio != 1 {
		t.Fatalf("alternation ratio = %v, want 1", sum.AlternationRatio)
	}
}

func TestSimulateUppercaseSharesKey(t *testing.T) {
	lay := qwerty(t)
	lower := Simulate(lay, "qhv")
	upper := Simulate(lay, "QHV")
	if lower.Skipped != 0 || upper.Skipped != 0 {
		t.Fatalf("unexpected skips: %d, %d", lower.Skipped, upper.Skipped)
	}
	for i := range lower.Events {
		if lower.Events[i].Distance != upper.Events[i].Distance {
			t.Fatalf("event %d: distance differs between cases", i)
		}
	}
}

func TestSimulateIdempotent(t *testing.T) {
	lay := qwerty(t)
	text := "the quick brown fox jumps over the lazy dog"
	first := Simulate(lay, text)
	second := Simulate(lay, text)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("traces differ between runs (-first +second):\n%s", diff)
	}
}

func TestFingerStateAdvance(t *testing.T) {
	lay := qwerty(t)
	fs := newFingerState(lay)
	key, _ := lay.Lookup('q')
	before := map[layout.Finger]layout.Pos{}
	for _, f := range lay.Fingers() {
		before[f] = fs.position(f)
	}
	dist := fs.advance(key.Finger, key.Pos)
	if dist <= 0 {
		t.Fatalf("expected positive travel distance, got %v", dist)
	}
	for _, f := range lay.Fingers() {
		if f == key.Finger {
			if fs.position(f) != key.Pos {
				t.Fatalf("advanced finger not at target")
			}
			continue
		}
		if fs.position(f) != before[f] {
			t.Fatalf("idle finger %s moved", f)
		}
	}
}
