// Package dom is the document model behind the style-variable stores: an
// HTML element tree with inline style declarations, selector lookup and
// computed custom properties.
package dom

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const emptyMarkup = "<html><head></head><body></body></html>"

// Document is a mutable element tree. All access goes through the document
// so readers and writers are serialized.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// New returns an empty document.
func New() *Document {
	doc, err := ParseString(emptyMarkup)
	if err != nil {
		panic(err)
	}
	return doc
}

// Parse reads markup into a document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "parse document")
	}
	return &Document{root: root}, nil
}

// ParseString parses markup from a string.
func ParseString(markup string) (*Document, error) {
	return Parse(strings.NewReader(markup))
}

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *html.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return documentElement(d.root)
}

// QuerySelector returns the first element matching sel, or nil when sel is
// invalid or matches nothing.
func (d *Document) QuerySelector(sel string) *html.Node {
	if strings.TrimSpace(sel) == "" {
		return nil
	}
	matcher, err := cascadia.Compile(sel)
	if err != nil {
		return nil
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return matcher.MatchFirst(d.root)
}

// CreateElement builds a detached element.
func (d *Document) CreateElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// AppendChild attaches child as the last child of parent.
func (d *Document) AppendChild(parent, child *html.Node) {
	if parent == nil || child == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	parent.AppendChild(child)
}

// RemoveChild detaches child from its parent.
func (d *Document) RemoveChild(child *html.Node) {
	if child == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
}

// SetProperty sets an inline style property on el. An empty value removes
// the property. Values that would spill into neighbouring declarations are
// rejected with ErrInvalidDeclaration and leave el untouched.
func (d *Document) SetProperty(el *html.Node, name, value string) error {
	if el == nil {
		return nil
	}
	if err := checkDeclaration(name, value); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	decls := parseDeclarations(attr(el, "style"))
	decls = decls.set(name, value)
	setAttr(el, "style", decls.String())
	return nil
}

// RemoveProperty removes an inline style property from el.
func (d *Document) RemoveProperty(el *html.Node, name string) {
	if el == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	decls := parseDeclarations(attr(el, "style")).remove(name)
	setAttr(el, "style", decls.String())
}

// InlineValue returns the inline value of name on el only.
func (d *Document) InlineValue(el *html.Node, name string) string {
	if el == nil {
		return ""
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return parseDeclarations(attr(el, "style")).get(name)
}

// ComputedValue returns the effective value of name for el. Custom
// properties (--*) inherit from ancestors; other properties are read from
// el only. Missing properties yield "".
func (d *Document) ComputedValue(el *html.Node, name string) string {
	if el == nil {
		return ""
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !isCustomProperty(name) {
		return parseDeclarations(attr(el, "style")).get(name)
	}
	for n := el; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if v := parseDeclarations(attr(n, "style")).get(name); v != "" {
			return v
		}
	}
	return ""
}

// Render writes the document markup to w.
func (d *Document) Render(w io.Writer) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return html.Render(w, d.root)
}

// String returns the document markup.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func documentElement(root *html.Node) *html.Node {
	for n := root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type == html.ElementNode && n.DataAtom == atom.Html {
			return n
		}
	}
	return root
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			if val == "" {
				n.Attr = append(n.Attr[:i:i], n.Attr[i+1:]...)
				return
			}
			n.Attr[i].Val = val
			return
		}
	}
	if val != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
	}
}
