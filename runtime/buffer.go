package runtime

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Cell is one character cell of a frame.
type Cell struct {
	Rune  rune
	Style tcell.Style
}

// Buffer is a 2D grid of cells that widgets render into. The loop hands
// the buffer to its renderer after each render pass that changed a cell.
type Buffer struct {
	cells  []Cell
	width  int
	height int
	dirty  bool
}

// NewBuffer creates a blank buffer with the given dimensions.
func NewBuffer(w, h int) *Buffer {
	w, h = max(0, w), max(0, h)
	b := &Buffer{cells: make([]Cell, w*h), width: w, height: h}
	b.Clear()
	b.dirty = false
	return b
}

// Size returns the buffer dimensions.
func (b *Buffer) Size() (w, h int) {
	return b.width, b.height
}

// Resize changes the buffer dimensions, preserving content where possible.
func (b *Buffer) Resize(w, h int) {
	w, h = max(0, w), max(0, h)
	if w == b.width && h == b.height {
		return
	}
	cells := make([]Cell, w*h)
	for i := range cells {
		cells[i] = Cell{Rune: ' ', Style: tcell.StyleDefault}
	}
	minW := min(w, b.width)
	minH := min(h, b.height)
	for y := 0; y < minH; y++ {
		copy(cells[y*w:y*w+minW], b.cells[y*b.width:y*b.width+minW])
	}
	b.cells = cells
	b.width = w
	b.height = h
	b.dirty = true
}

// Clear fills the buffer with spaces and the default style.
func (b *Buffer) Clear() {
	b.Fill(Rect{Width: b.width, Height: b.height}, ' ', tcell.StyleDefault)
}

// Get returns the cell at (x, y), or a blank cell when out of bounds.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{Rune: ' '}
	}
	return b.cells[y*b.width+x]
}

// Set writes a rune with style at (x, y). Out of bounds writes are dropped.
func (b *Buffer) Set(x, y int, r rune, s tcell.Style) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	idx := y*b.width + x
	cell := Cell{Rune: r, Style: s}
	if b.cells[idx] != cell {
		b.cells[idx] = cell
		b.dirty = true
	}
}

// SetString writes s starting at (x, y) and returns the number of columns
// used. Wide runes take two columns; a wide rune that does not fit is
// dropped.
func (b *Buffer) SetString(x, y int, s string, style tcell.Style) int {
	if y < 0 || y >= b.height {
		return 0
	}
	px := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if px+w > b.width {
			break
		}
		if px >= 0 {
			b.Set(px, y, r, style)
			if w == 2 {
				b.Set(px+1, y, 0, style)
			}
		}
		px += w
	}
	return max(0, px-x)
}

// Fill fills a rectangular region with a rune and style.
func (b *Buffer) Fill(r Rect, ch rune, s tcell.Style) {
	x0 := max(0, r.X)
	y0 := max(0, r.Y)
	x1 := min(b.width, r.X+r.Width)
	y1 := min(b.height, r.Y+r.Height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b.Set(x, y, ch, s)
		}
	}
}

// Cells returns the backing cells in row-major order.
func (b *Buffer) Cells() []Cell {
	return b.cells
}

// Line returns row y as text with trailing spaces trimmed.
func (b *Buffer) Line(y int) string {
	if y < 0 || y >= b.height {
		return ""
	}
	var sb strings.Builder
	for _, c := range b.cells[y*b.width : (y+1)*b.width] {
		if c.Rune == 0 {
			continue
		}
		sb.WriteRune(c.Rune)
	}
	return strings.TrimRight(sb.String(), " ")
}

// String returns all rows joined by newlines.
func (b *Buffer) String() string {
	lines := make([]string, b.height)
	for y := range lines {
		lines[y] = b.Line(y)
	}
	return strings.Join(lines, "\n")
}

// IsDirty reports whether any cell changed since the last ClearDirty.
func (b *Buffer) IsDirty() bool {
	return b.dirty
}

// MarkAllDirty forces the next render pass to reach the renderer.
func (b *Buffer) MarkAllDirty() {
	b.dirty = true
}

// ClearDirty resets change tracking.
func (b *Buffer) ClearDirty() {
	b.dirty = false
}
