package widgets

import "github.com/odvcencio/furry-store/runtime"

// Column stacks its children vertically, one row each.
type Column struct {
	Base
	children []runtime.Widget
}

// NewColumn creates a column of children.
func NewColumn(children ...runtime.Widget) *Column {
	return &Column{children: children}
}

// Add appends a child. Call it before the loop mounts the column.
func (c *Column) Add(child runtime.Widget) {
	c.children = append(c.children, child)
}

// ChildWidgets returns the children in display order.
func (c *Column) ChildWidgets() []runtime.Widget {
	return c.children
}

// Render gives each child one row of the column bounds.
func (c *Column) Render(ctx runtime.RenderContext) {
	bounds := ctx.Bounds
	for i, child := range c.children {
		if i >= bounds.Height {
			break
		}
		if child == nil {
			continue
		}
		child.Render(ctx.Sub(runtime.Rect{X: bounds.X, Y: bounds.Y + i, Width: bounds.Width, Height: 1}))
	}
}
