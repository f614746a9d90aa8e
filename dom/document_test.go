package dom

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const page = `<html style="--theme-color: blue; --fg: white">
<body>
  <div id="panel" class="card" style="--bg: navy; color: RED">
    <span class="title">hi</span>
  </div>
</body>
</html>`

func TestDocument_QuerySelector(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)

	root := doc.QuerySelector(":root")
	require.NotNil(t, root)
	assert.Same(t, doc.DocumentElement(), root)

	panel := doc.QuerySelector("#panel")
	require.NotNil(t, panel)
	assert.Equal(t, "div", panel.Data)

	assert.NotNil(t, doc.QuerySelector("div.card span.title"))
	assert.Nil(t, doc.QuerySelector("#missing"))
	assert.Nil(t, doc.QuerySelector("div[["))
	assert.Nil(t, doc.QuerySelector("  "))
}

func TestDocument_ComputedValueInheritsCustomProperties(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)
	title := doc.QuerySelector(".title")
	require.NotNil(t, title)

	assert.Equal(t, "blue", doc.ComputedValue(title, "--theme-color"))
	assert.Equal(t, "navy", doc.ComputedValue(title, "--bg"))
	assert.Equal(t, "", doc.ComputedValue(title, "color"))
	assert.Equal(t, "RED", doc.ComputedValue(doc.QuerySelector("#panel"), "Color"))
	assert.Equal(t, "", doc.ComputedValue(title, "--missing"))
	assert.Equal(t, "", doc.ComputedValue(nil, "--theme-color"))
}

func TestDocument_SetAndRemoveProperty(t *testing.T) {
	doc := New()
	root := doc.DocumentElement()

	require.NoError(t, doc.SetProperty(root, "--theme-color", "red"))
	require.NoError(t, doc.SetProperty(root, "--gap", "calc(1px; 2px)"))
	assert.Equal(t, "red", doc.InlineValue(root, "--theme-color"))
	assert.Equal(t, "calc(1px; 2px)", doc.InlineValue(root, "--gap"))

	require.NoError(t, doc.SetProperty(root, "--theme-color", "green"))
	assert.Equal(t, "green", doc.ComputedValue(root, "--theme-color"))

	doc.RemoveProperty(root, "--theme-color")
	assert.Equal(t, "", doc.InlineValue(root, "--theme-color"))
	assert.Contains(t, doc.String(), `style="--gap: calc(1px; 2px)"`)

	doc.RemoveProperty(root, "--gap")
	assert.NotContains(t, doc.String(), "style=")
}

func TestDocument_SetPropertyRejectsSpillingValues(t *testing.T) {
	doc := New()
	root := doc.DocumentElement()
	require.NoError(t, doc.SetProperty(root, "--b", "b0"))

	for _, value := range []string{
		`"open`,
		"red; --b: injected",
		"calc(1px",
		"1px)",
		`url('a.png`,
	} {
		err := doc.SetProperty(root, "--a", value)
		assert.ErrorIs(t, err, ErrInvalidDeclaration, value)
	}
	assert.ErrorIs(t, doc.SetProperty(root, "--a: x", "red"), ErrInvalidDeclaration)

	assert.Equal(t, "", doc.InlineValue(root, "--a"))
	assert.Equal(t, "b0", doc.InlineValue(root, "--b"))
	assert.Contains(t, doc.String(), `style="--b: b0"`)
}

func TestDocument_SetPropertyAcceptsNestedValues(t *testing.T) {
	doc := New()
	root := doc.DocumentElement()
	for _, value := range []string{
		`"a;b"`,
		`url("x(1).png")`,
		"rgb(calc(1 + 2), 0, 0)",
		"'it''s'",
	} {
		require.NoError(t, doc.SetProperty(root, "--v", value), value)
		assert.Equal(t, value, doc.InlineValue(root, "--v"))
	}
}

func TestDocument_CustomPropertyNamesAreCaseSensitive(t *testing.T) {
	doc := New()
	root := doc.DocumentElement()
	require.NoError(t, doc.SetProperty(root, "--Accent", "red"))

	assert.Equal(t, "red", doc.InlineValue(root, "--Accent"))
	assert.Equal(t, "", doc.InlineValue(root, "--accent"))
}

func TestDocument_AppendAndRemoveChild(t *testing.T) {
	doc := New()
	body := doc.QuerySelector("body")
	require.NotNil(t, body)

	el := doc.CreateElement("section", html.Attribute{Key: "id", Val: "main"})
	doc.AppendChild(body, el)
	assert.Same(t, el, doc.QuerySelector("#main"))

	doc.RemoveChild(el)
	assert.Nil(t, doc.QuerySelector("#main"))
}

func TestDocument_Style(t *testing.T) {
	doc, err := ParseString(page)
	require.NoError(t, err)
	title := doc.QuerySelector(".title")

	want := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	assert.Equal(t, want, doc.Style(title))
	assert.Equal(t, tcell.ColorDefault, doc.Color(title, "--unset"))

	require.NoError(t, doc.SetProperty(title, "--accent", "#ff0000"))
	assert.Equal(t, tcell.NewHexColor(0xff0000), doc.Color(title, "--accent"))
}
