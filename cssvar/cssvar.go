// Package cssvar binds a custom style property of a document element to a
// synchronized store.
package cssvar

import (
	"golang.org/x/net/html"

	"github.com/odvcencio/furry-store/bus"
	"github.com/odvcencio/furry-store/dom"
	"github.com/odvcencio/furry-store/metrics"
	"github.com/odvcencio/furry-store/syncstore"
)

const backendName = "cssvar"

// RootSelector addresses the document element.
const RootSelector = ":root"

// Scope locates the element holding the variable: a selector re-resolved on
// every access, or a fixed element.
type Scope struct {
	selector string
	element  *html.Node
}

// Selector scopes to the first element matching sel.
func Selector(sel string) Scope {
	return Scope{selector: sel}
}

// Element scopes to el.
func Element(el *html.Node) Scope {
	return Scope{element: el}
}

// Root scopes to the document element.
func Root() Scope {
	return Selector(RootSelector)
}

// Resolve returns the scoped element, falling back to the document element
// when the selector is empty or matches nothing.
func (s Scope) Resolve(doc *dom.Document) *html.Node {
	if s.element != nil {
		return s.element
	}
	if el := doc.QuerySelector(s.selector); el != nil {
		return el
	}
	return doc.DocumentElement()
}

type source struct {
	doc     *dom.Document
	scope   Scope
	key     string
	initial syncstore.Initial[string]
}

func (s *source) Scope() any {
	return s.scope.Resolve(s.doc)
}

func (s *source) Key() string {
	return s.key
}

func (s *source) Read() string {
	if v := s.doc.ComputedValue(s.scope.Resolve(s.doc), s.key); v != "" {
		return v
	}
	metrics.Fallbacks.WithLabelValues(backendName, metrics.ReasonAbsent).Inc()
	return s.initial.Resolve()
}

func (s *source) Commit(value string) error {
	if err := s.doc.SetProperty(s.scope.Resolve(s.doc), s.key, value); err != nil {
		metrics.Writes.WithLabelValues(backendName, metrics.StatusError).Inc()
		return err
	}
	metrics.Writes.WithLabelValues(backendName, metrics.StatusOK).Inc()
	return nil
}

// Store is a style-variable store.
type Store struct {
	*syncstore.Store[string]
	doc   *dom.Document
	scope Scope
}

// New binds the custom property key on the scoped element of doc.
func New(doc *dom.Document, b bus.Bus, key string, initial syncstore.Initial[string], scope Scope) *Store {
	src := &source{doc: doc, scope: scope, key: key, initial: initial}
	return &Store{
		Store: syncstore.New[string](src, b),
		doc:   doc,
		scope: scope,
	}
}

// Element returns the element the store currently addresses.
func (s *Store) Element() *html.Node {
	return s.scope.Resolve(s.doc)
}

// Use returns the current value and its setter.
func Use(doc *dom.Document, b bus.Bus, key string, initial syncstore.Initial[string], scope Scope) (string, syncstore.Setter[string]) {
	s := New(doc, b, key, initial, scope)
	return s.Snapshot(), s.Setter()
}
