package widgets

import (
	"github.com/gdamore/tcell/v2"
	"golang.org/x/net/html"

	"github.com/odvcencio/furry-store/dom"
	"github.com/odvcencio/furry-store/runtime"
	"github.com/odvcencio/furry-store/state"
)

// Swatch fills its row with the --fg/--bg colors of a document element and
// draws a label on top. It redraws whenever one of its sources notifies.
type Swatch struct {
	Component
	doc     *dom.Document
	element *html.Node
	label   string
	sources []state.Subscribable
	style   tcell.Style
}

// NewSwatch creates a swatch for el. sources are the stores that write the
// element's style variables.
func NewSwatch(doc *dom.Document, el *html.Node, label string, sources ...state.Subscribable) *Swatch {
	return &Swatch{
		doc:     doc,
		element: el,
		label:   label,
		sources: sources,
		style:   tcell.StyleDefault,
	}
}

// Style returns the style used by the last render.
func (s *Swatch) Style() tcell.Style {
	return s.style
}

// Render draws the swatch on the first row of its bounds.
func (s *Swatch) Render(ctx runtime.RenderContext) {
	bounds := ctx.Bounds
	if ctx.Buffer == nil || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}
	s.refresh()
	row := runtime.Rect{X: bounds.X, Y: bounds.Y, Width: bounds.Width, Height: 1}
	ctx.Sub(row).Clear(s.style)
	ctx.Buffer.SetString(bounds.X, bounds.Y, truncateString(s.label, bounds.Width), s.style)
	s.ClearInvalidation()
}

// Mount subscribes to the style sources.
func (s *Swatch) Mount() {
	s.Subs.Clear()
	s.refresh()
	for _, src := range s.sources {
		s.Observe(src, s.Invalidate)
	}
}

// Unmount drops the source subscriptions.
func (s *Swatch) Unmount() {
	s.Subs.Clear()
}

func (s *Swatch) refresh() {
	if s.doc == nil || s.element == nil {
		s.style = tcell.StyleDefault
		return
	}
	s.style = s.doc.Style(s.element)
}
