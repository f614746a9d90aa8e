package dom

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// ErrInvalidDeclaration is returned when a property name or value would not
// survive as one declaration of an inline style attribute.
var ErrInvalidDeclaration = errors.New("invalid style declaration")

type declaration struct {
	name  string
	value string
}

type declarations []declaration

// parseDeclarations splits an inline style attribute into declarations.
// Semicolons inside parentheses or quotes do not end a declaration.
func parseDeclarations(style string) declarations {
	var out declarations
	var quote rune
	depth := 0
	start := 0
	flush := func(end int) {
		if d, ok := parseDeclaration(style[start:end]); ok {
			out = out.set(d.name, d.value)
		}
	}
	for i, r := range style {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == ';' && depth == 0:
			flush(i)
			start = i + 1
		}
	}
	flush(len(style))
	return out
}

// checkDeclaration accepts a name and value that parseDeclarations reads
// back unchanged: a bare name, and a value whose quotes and parentheses are
// closed and which has no semicolon outside them.
func checkDeclaration(name, value string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, ":;\"'() \t\r\n") {
		return errors.Wrapf(ErrInvalidDeclaration, "property name %q", name)
	}
	var quote rune
	depth := 0
	for _, r := range value {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			if depth == 0 {
				return errors.Wrapf(ErrInvalidDeclaration, "unmatched ')' in %s value %q", name, value)
			}
			depth--
		case r == ';' && depth == 0:
			return errors.Wrapf(ErrInvalidDeclaration, "';' in %s value %q", name, value)
		}
	}
	if quote != 0 {
		return errors.Wrapf(ErrInvalidDeclaration, "unterminated quote in %s value %q", name, value)
	}
	if depth != 0 {
		return errors.Wrapf(ErrInvalidDeclaration, "unclosed '(' in %s value %q", name, value)
	}
	return nil
}

func parseDeclaration(raw string) (declaration, bool) {
	name, value, ok := strings.Cut(raw, ":")
	if !ok {
		return declaration{}, false
	}
	name = normalizeName(name)
	if name == "" {
		return declaration{}, false
	}
	return declaration{name: name, value: strings.TrimSpace(value)}, true
}

// Custom property names are case-sensitive; standard ones are not.
func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if isCustomProperty(name) {
		return name
	}
	return strings.ToLower(name)
}

func isCustomProperty(name string) bool {
	return strings.HasPrefix(strings.TrimSpace(name), "--")
}

func (ds declarations) get(name string) string {
	name = normalizeName(name)
	for _, d := range ds {
		if d.name == name {
			return d.value
		}
	}
	return ""
}

func (ds declarations) set(name, value string) declarations {
	name = normalizeName(name)
	value = strings.TrimSpace(value)
	if value == "" {
		return ds.remove(name)
	}
	for i, d := range ds {
		if d.name == name {
			ds[i].value = value
			return ds
		}
	}
	return append(ds, declaration{name: name, value: value})
}

func (ds declarations) remove(name string) declarations {
	name = normalizeName(name)
	out := ds[:0]
	for _, d := range ds {
		if d.name != name {
			out = append(out, d)
		}
	}
	return out
}

func (ds declarations) String() string {
	if len(ds) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ds))
	for _, d := range ds {
		parts = append(parts, d.name+": "+d.value)
	}
	return strings.Join(parts, "; ")
}

// Color resolves a style property of el to a terminal color.
// Unset or unknown values map to tcell.ColorDefault.
func (d *Document) Color(el *html.Node, name string) tcell.Color {
	value := d.ComputedValue(el, name)
	if value == "" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(value)
}

// Style builds a terminal style from the --fg and --bg variables of el.
func (d *Document) Style(el *html.Node) tcell.Style {
	return tcell.StyleDefault.
		Foreground(d.Color(el, "--fg")).
		Background(d.Color(el, "--bg"))
}
