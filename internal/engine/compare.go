package engine

import (
	"iter"
	"runtime"
	"strings"
	"sync"

	"keylay/internal/layout"
)

// BestResult is the costliest line found by Compare.
type BestResult struct {
	Line    string
	Index   int
	Summary Summary
}

// Compare simulates every non-empty line and returns the one with the
// maximum total distance. Ties go to the earliest line in input order,
// whether the lines are evaluated sequentially or by a worker pool, so
// both modes return identical results. The second return value is
// false when no line was simulated.
func Compare(lay *layout.Layout, lines iter.Seq[string], speed SpeedModel, workers int) (BestResult, bool) {
	if workers > 1 {
		return compareParallel(lay, lines, speed, workers)
	}
	var best BestResult
	found := false
	idx := 0
	for line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sum := Aggregate(Simulate(lay, line), speed)
		if !found || better(sum, idx, best) {
			best = BestResult{Line: line, Index: idx, Summary: sum}
			found = true
		}
		idx++
	}
	return best, found
}

// Workers computes the pool size for a parallel run.
func Workers(requested int) int {
	if requested > 0 {
		return requested
	}
	return runtime.GOMAXPROCS(0)
}

func compareParallel(lay *layout.Layout, lines iter.Seq[string], speed SpeedModel, workers int) (BestResult, bool) {
	type job struct {
		idx  int
		line string
	}

	jobs := make(chan job, workers)
	var (
		mu    sync.Mutex
		best  BestResult
		found bool
		wg    sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				sum := Aggregate(Simulate(lay, j.line), speed)
				mu.Lock()
				if !found || better(sum, j.idx, best) {
					best = BestResult{Line: j.line, Index: j.idx, Summary: sum}
					found = true
				}
				mu.Unlock()
			}
		}()
	}

	idx := 0
	for line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		jobs <- job{idx: idx, line: line}
		idx++
	}
	close(jobs)
	wg.Wait()
	return best, found
}

// better reports whether (sum, idx) beats the current best: strictly
// larger distance, or equal distance at an earlier input index.
func better(sum Summary, idx int, best BestResult) bool {
	if sum.Distance != best.Summary.Distance {
		return sum.Distance > best.Summary.Distance
	}
	return idx < best.Index
}

// SliceLines adapts a string slice to the lazy sequence Compare consumes.
func SliceLines(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}
