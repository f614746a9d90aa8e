package widgets

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/furry-store/runtime"
	"github.com/odvcencio/furry-store/state"
)

// StoreLabel is a one-line label that follows a string store. It reads the
// snapshot on mount and again on every notice while mounted.
type StoreLabel struct {
	Component
	source    state.Store[string]
	prefix    string
	text      string
	style     tcell.Style
	alignment Alignment
	mounted   bool
}

// NewStoreLabel creates a label for source. prefix is drawn before the value.
func NewStoreLabel(prefix string, source state.Store[string]) *StoreLabel {
	return &StoreLabel{
		source:    source,
		prefix:    prefix,
		style:     tcell.StyleDefault,
		alignment: AlignLeft,
	}
}

// Text returns the current label text.
func (s *StoreLabel) Text() string {
	return s.prefix + s.text
}

// SetStyle sets the label style.
func (s *StoreLabel) SetStyle(style tcell.Style) {
	s.style = style
}

// SetAlignment sets text alignment.
func (s *StoreLabel) SetAlignment(align Alignment) {
	s.alignment = align
}

// Render draws the label on the first row of its bounds.
func (s *StoreLabel) Render(ctx runtime.RenderContext) {
	bounds := ctx.Bounds
	if ctx.Buffer == nil || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}
	text := truncateString(s.Text(), bounds.Width)
	ctx.Buffer.SetString(alignedX(bounds, runewidth.StringWidth(text), s.alignment), bounds.Y, text, s.style)
	s.ClearInvalidation()
}

// Mount subscribes to store notices.
func (s *StoreLabel) Mount() {
	s.mounted = true
	s.Subs.Clear()
	if s.source == nil {
		s.text = ""
		return
	}
	s.text = s.source.Snapshot()
	s.Observe(s.source, s.onChange)
}

// Unmount drops the store subscription.
func (s *StoreLabel) Unmount() {
	s.mounted = false
	s.Subs.Clear()
}

func (s *StoreLabel) onChange() {
	if !s.mounted || s.source == nil {
		return
	}
	s.text = s.source.Snapshot()
	s.Invalidate()
}
