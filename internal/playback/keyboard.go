package playback

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"keylay/internal/layout"
)

// Canvas scale: four terminal columns and two rows per key unit. Key
// caps land on even rows, finger markers on the odd rows between them.
const (
	cellsPerUnitX = 4
	cellsPerUnitY = 2
)

type cell struct {
	r  rune
	st *lipgloss.Style
}

func (m *Model) renderKeyboard() string {
	maxX, maxY := 0.0, 0.0
	for _, key := range m.lay.Keys {
		maxX = max(maxX, key.Pos.X+key.Width)
		maxY = max(maxY, key.Pos.Y)
	}
	cols := int(math.Ceil(maxX*cellsPerUnitX)) + 1
	rows := int(math.Ceil(maxY*cellsPerUnitY)) + 2
	canvas := make([][]cell, rows)
	for i := range canvas {
		canvas[i] = make([]cell, cols)
		for j := range canvas[i] {
			canvas[i][j] = cell{r: ' '}
		}
	}

	pressedPos, pressed := m.tl.pressedAt(m.elapsed)
	for _, key := range m.lay.Keys {
		st := &keyStyle
		if key.Home {
			st = &homeKeyStyle
		}
		if pressed && key.Pos == pressedPos {
			st = &pressedStyle
		}
		drawKey(canvas, key, st)
	}

	for _, f := range m.lay.Fingers() {
		pos := m.tl.positionAt(f, m.elapsed)
		row := int(math.Round(pos.Y*cellsPerUnitY)) + 1
		col := int(math.Round(pos.X*cellsPerUnitX)) + 1
		if row < 0 || row >= rows || col < 0 || col >= cols {
			continue
		}
		st := &leftStyle
		if f.Hand() == layout.RightHand {
			st = &rightStyle
		}
		canvas[row][col] = cell{r: '●', st: st}
	}

	lines := make([]string, 0, rows)
	for _, rowCells := range canvas {
		lines = append(lines, renderRow(rowCells))
	}
	return strings.Join(lines, "\n")
}

func drawKey(canvas [][]cell, key layout.Key, st *lipgloss.Style) {
	row := int(math.Round(key.Pos.Y * cellsPerUnitY))
	col := int(math.Round(key.Pos.X * cellsPerUnitX))
	width := int(math.Round(key.Width * cellsPerUnitX))
	if row < 0 || row >= len(canvas) || width < 3 {
		return
	}
	box := []rune("[" + padLabel(keyLabel(key), width-2) + "]")
	for i, r := range box {
		if col+i < 0 || col+i >= len(canvas[row]) {
			continue
		}
		canvas[row][col+i] = cell{r: r, st: st}
	}
}

func keyLabel(key layout.Key) string {
	if key.Char == ' ' {
		return "space"
	}
	return strings.ToUpper(string(key.Char))
}

func padLabel(label string, width int) string {
	w := runewidth.StringWidth(label)
	if w >= width {
		return runewidth.Truncate(label, width, "")
	}
	return label + strings.Repeat(" ", width-w)
}

func renderRow(cells []cell) string {
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i
		for j < len(cells) && cells[j].st == cells[i].st {
			j++
		}
		var chunk strings.Builder
		for _, c := range cells[i:j] {
			chunk.WriteRune(c.r)
		}
		if cells[i].st != nil {
			b.WriteString(cells[i].st.Render(chunk.String()))
		} else {
			b.WriteString(chunk.String())
		}
		i = j
	}
	return strings.TrimRight(b.String(), " ")
}
