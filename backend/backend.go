// Package backend draws loop frames onto a tcell screen.
package backend

import (
	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/furry-store/runtime"
)

// Cell is a single screen cell.
type Cell = runtime.Cell

// RowWriter writes a run of cells on one row.
type RowWriter interface {
	SetRow(y int, startX int, cells []Cell)
}

// RectWriter writes a rectangle of cells.
// The cells slice is row-major and must have width*height entries.
type RectWriter interface {
	SetRect(x, y, width, height int, cells []Cell)
}

// Screen paints buffers onto a tcell screen.
type Screen struct {
	screen tcell.Screen
}

var (
	_ RowWriter  = (*Screen)(nil)
	_ RectWriter = (*Screen)(nil)
)

// NewScreen wraps an initialized tcell screen.
func NewScreen(screen tcell.Screen) *Screen {
	return &Screen{screen: screen}
}

// SetRow writes cells starting at (startX, y). Continuation cells of wide
// runes are skipped.
func (s *Screen) SetRow(y int, startX int, cells []Cell) {
	for i, c := range cells {
		if c.Rune == 0 {
			continue
		}
		s.screen.SetContent(startX+i, y, c.Rune, nil, c.Style)
	}
}

// SetRect writes a row-major rectangle of cells.
func (s *Screen) SetRect(x, y, width, height int, cells []Cell) {
	if width <= 0 || height <= 0 || len(cells) < width*height {
		return
	}
	for row := 0; row < height; row++ {
		s.SetRow(y+row, x, cells[row*width:(row+1)*width])
	}
}

// Render paints buf and shows the screen.
func (s *Screen) Render(buf *runtime.Buffer) {
	if buf == nil {
		return
	}
	w, h := buf.Size()
	s.screen.Clear()
	s.SetRect(0, 0, w, h, buf.Cells())
	s.screen.Show()
}

// Renderer returns Render as a loop renderer.
func (s *Screen) Renderer() runtime.Renderer {
	return s.Render
}

// Size reports the screen size.
func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

// Forward posts screen events to loop until the screen is finalized.
// Resizes become ResizeMsg; Escape, Ctrl-C and 'q' quit the loop.
func Forward(screen tcell.Screen, loop *runtime.Loop) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			return
		}
		if msg := Translate(ev); msg != nil {
			loop.Post(msg)
		}
	}
}

// Translate maps a tcell event to a loop message, or nil.
func Translate(ev tcell.Event) runtime.Message {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := ev.Size()
		return runtime.ResizeMsg{Width: w, Height: h}
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return runtime.QuitMsg{}
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return runtime.QuitMsg{}
			}
		}
	}
	return nil
}
