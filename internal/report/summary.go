package report

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"keylay/internal/engine"
	"keylay/internal/layout"
	"keylay/internal/model"
)

// MMPerUnit converts key units to millimeters (standard 19.05 mm pitch).
const MMPerUnit = 19.05

const sparkChars = " .:-=+*#%@"

const terminalWidthBackup = 80

// RenderSummary prints the aggregate metrics of one simulation run.
func RenderSummary(w io.Writer, layoutName string, sum engine.Summary) error {
	lines := []string{
		fmt.Sprintf("Layout: %s", layoutName),
		fmt.Sprintf("Characters typed: %d", sum.Chars),
	}
	if sum.Skipped > 0 {
		lines = append(lines, fmt.Sprintf("Characters skipped (unmapped): %d", sum.Skipped))
	}
	lines = append(lines,
		fmt.Sprintf("Total distance: %.2fu (%.1f mm)", sum.Distance, sum.Distance*MMPerUnit),
		fmt.Sprintf("Hand alternation: %d transitions (%.1f%%)", sum.Alternations, sum.AlternationRatio*100),
		fmt.Sprintf("Estimated time: %s", formatDuration(sum.Duration)),
		fmt.Sprintf("Estimated speed: %.1f WPM", sum.WPM),
	)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderFingerTable prints per-finger usage derived from a trace.
func RenderFingerTable(w io.Writer, lay *layout.Layout, trace engine.Trace) error {
	if len(trace.Events) == 0 {
		_, err := fmt.Fprintln(w, "No keystrokes to report.")
		return err
	}

	presses := map[layout.Finger]int{}
	distance := map[layout.Finger]float64{}
	for _, ev := range trace.Events {
		presses[ev.Finger]++
		distance[ev.Finger] += ev.Distance
	}

	total := float64(len(trace.Events))
	maxDist := 0.0
	for _, d := range distance {
		maxDist = math.Max(maxDist, d)
	}

	headers := []string{"Finger", "Presses", "Usage", "Distance", ""}
	rows := make([][]string, 0, 10)
	for _, f := range lay.Fingers() {
		if presses[f] == 0 {
			continue
		}
		rows = append(rows, []string{
			f.String(),
			fmt.Sprintf("%d", presses[f]),
			fmt.Sprintf("%.1f%%", float64(presses[f])/total*100),
			fmt.Sprintf("%.2fu", distance[f]),
			distanceBar(distance[f], maxDist),
		})
	}

	if _, err := fmt.Fprintln(w, "Per-Finger"); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderBest prints the result of a batch comparison.
func RenderBest(w io.Writer, layoutName string, best engine.BestResult, linesTotal int) error {
	if _, err := fmt.Fprintf(w, "Compared %d lines on %s\n", linesTotal, layoutName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Costliest line (#%d): %q\n", best.Index+1, best.Line); err != nil {
		return err
	}
	return RenderSummary(w, layoutName, best.Summary)
}

// RenderHistory prints past runs as a table, newest first.
func RenderHistory(w io.Writer, runs []model.RunRecord) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded yet.")
		return err
	}
	headers := []string{"When", "Layout", "Mode", "Chars", "Distance", "Alt", "WPM"}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.At.Local().Format("2006-01-02 15:04"),
			run.Layout,
			run.Mode,
			fmt.Sprintf("%d", run.Chars),
			fmt.Sprintf("%.1fu", run.Distance),
			fmt.Sprintf("%.0f%%", run.AlternationRatio*100),
			fmt.Sprintf("%.1f", run.WPM),
		})
	}
	rightAlign := map[int]bool{3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if len(runs) > 1 {
		// Runs arrive newest first; the trend reads oldest to newest.
		wpms := make([]float64, 0, len(runs))
		for i := len(runs) - 1; i >= 0; i-- {
			wpms = append(wpms, runs[i].WPM)
		}
		if limit := TerminalWidth() - len("WPM trend: "); len(wpms) > limit && limit > 0 {
			wpms = wpms[len(wpms)-limit:]
		}
		if _, err := fmt.Fprintf(w, "WPM trend: %s\n", Sparkline(wpms)); err != nil {
			return err
		}
	}
	return nil
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// TerminalWidth returns the stdout width or a fallback.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func distanceBar(value, max float64) string {
	const barWidth = 12
	if max <= 0 {
		return ""
	}
	filled := int(math.Round(value / max * barWidth))
	if filled < 0 {
		filled = 0
	}
	if filled > barWidth {
		filled = barWidth
	}
	return strings.Repeat("#", filled)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(10 * time.Millisecond).String()
}
