package engine

import (
	"fmt"
	"strings"
	"testing"
)

func TestCompareFindsCostliestLine(t *testing.T) {
	lay := qwerty(t)
	lines := []string{"cat", "elephant", "ox"}
	best, ok := Compare(lay, SliceLines(lines), DefaultSpeedModel(), 1)
	if !ok {
		t.Fatalf("expected a result")
	}
	if best.Line != "elephant" {
		t.Fatalf("best line = %q, want elephant", best.Line)
	}
	if best.Index != 1 {
		t.Fatalf("best index = %d, want 1", best.Index)
	}
	for _, line := range lines {
		sum := Aggregate(Simulate(lay, line), DefaultSpeedModel())
		if sum.Distance > best.Summary.Distance {
			t.Fatalf("%q has distance %v > best %v", line, sum.Distance, best.Summary.Distance)
		}
	}
}

func TestCompareEmptyInput(t *testing.T) {
	lay := qwerty(t)
	if _, ok := Compare(lay, SliceLines(nil), DefaultSpeedModel(), 1); ok {
		t.Fatalf("expected no result for empty input")
	}
	if _, ok := Compare(lay, SliceLines([]string{"", "  ", "\t"}), DefaultSpeedModel(), 1); ok {
		t.Fatalf("expected no result for blank lines")
	}
}

func TestCompareTieBreaksToEarliestLine(t *testing.T) {
	lay := qwerty(t)
	// Identical lines tie on distance; the first must win.
	lines := []string{"quart", "quart", "quart"}
	for _, workers := range []int{1, 4} {
		best, ok := Compare(lay, SliceLines(lines), DefaultSpeedModel(), workers)
		if !ok {
			t.Fatalf("workers=%d: expected a result", workers)
		}
		if best.Index != 0 {
			t.Fatalf("workers=%d: best index = %d, want 0", workers, best.Index)
		}
	}
}

func TestCompareParallelMatchesSequential(t *testing.T) {
	lay := qwerty(t)
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, strings.Repeat(fmt.Sprintf("word%d ", i), i%7+1))
	}
	seq, okSeq := Compare(lay, SliceLines(lines), DefaultSpeedModel(), 1)
	par, okPar := Compare(lay, SliceLines(lines), DefaultSpeedModel(), 8)
	if okSeq != okPar {
		t.Fatalf("result presence differs: %v vs %v", okSeq, okPar)
	}
	if seq.Index != par.Index || seq.Line != par.Line {
		t.Fatalf("parallel best (%d, %q) differs from sequential (%d, %q)",
			par.Index, par.Line, seq.Index, seq.Line)
	}
	if seq.Summary != par.Summary {
		t.Fatalf("summaries differ: %+v vs %+v", seq.Summary, par.Summary)
	}
}

func TestCompareSkipsEmptyLinesWhenIndexing(t *testing.T) {
	lay := qwerty(t)
	lines := []string{"", "cat", "", "elephant"}
	best, ok := Compare(lay, SliceLines(lines), DefaultSpeedModel(), 1)
	if !ok {
		t.Fatalf("expected a result")
	}
	// Blank lines are not simulation units and get no index.
	if best.Line != "elephant" || best.Index != 1 {
		t.Fatalf("best = (%d, %q), want (1, elephant)", best.Index, best.Line)
	}
}

func TestWorkers(t *testing.T) {
	if got := Workers(4); got != 4 {
		t.Fatalf("Workers(4) = %d", got)
	}
	if got := Workers(0); got < 1 {
		t.Fatalf("Workers(0) = %d, want >= 1", got)
	}
}
