package runtime

import "github.com/gdamore/tcell/v2"

// Rect is a rectangle of cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Widget draws itself into the bounds of a render context.
type Widget interface {
	Render(ctx RenderContext)
}

// ChildProvider exposes child widgets to tree walks.
type ChildProvider interface {
	ChildWidgets() []Widget
}

// RenderContext provides context to widgets during rendering.
type RenderContext struct {
	Buffer *Buffer
	Bounds Rect
}

// Sub creates a new context for a child widget with adjusted bounds.
func (ctx RenderContext) Sub(bounds Rect) RenderContext {
	return RenderContext{Buffer: ctx.Buffer, Bounds: bounds}
}

// Clear fills the context bounds with spaces using style.
func (ctx RenderContext) Clear(style tcell.Style) {
	if ctx.Buffer == nil {
		return
	}
	ctx.Buffer.Fill(ctx.Bounds, ' ', style)
}
