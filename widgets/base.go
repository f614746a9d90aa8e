// Package widgets provides small widgets bound to synchronized stores.
package widgets

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/furry-store/runtime"
)

// Alignment positions text inside a widget's bounds.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Base provides common functionality for widgets.
// Embed this in widget structs to get default implementations.
type Base struct {
	needsRender bool
}

// Invalidate marks the widget as needing a render pass.
func (b *Base) Invalidate() {
	if b == nil {
		return
	}
	b.needsRender = true
}

// NeedsRender reports whether the widget needs to re-render.
func (b *Base) NeedsRender() bool {
	if b == nil {
		return false
	}
	return b.needsRender
}

// ClearInvalidation clears the render-needed flag.
func (b *Base) ClearInvalidation() {
	if b == nil {
		return
	}
	b.needsRender = false
}

// truncateString truncates a string to fit within maxWidth.
// Adds "..." if truncated.
func truncateString(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// alignedX returns the column where text of width w starts inside bounds.
func alignedX(bounds runtime.Rect, w int, align Alignment) int {
	switch align {
	case AlignCenter:
		return bounds.X + (bounds.Width-w)/2
	case AlignRight:
		return bounds.X + bounds.Width - w
	default:
		return bounds.X
	}
}
