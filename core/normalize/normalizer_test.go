package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaurav-prasanna/reportgate/core"
)

func deltaElement(ops ...core.DeltaOp) *core.DocumentElement {
	return &core.DocumentElement{ID: "1", RichText: true, RichTextContent: ops}
}

func TestNormalizeElement_DeltaScenario(t *testing.T) {
	el := deltaElement(
		core.DeltaOp{Insert: "Hello "},
		core.DeltaOp{Insert: "world", Attributes: map[string]any{"bold": true}},
		core.DeltaOp{Insert: "\n", Attributes: map[string]any{"align": "center"}},
	)

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.Equal(t, "Hello world", el.Content)
	assert.True(t, el.Bold)
	assert.Equal(t, "center", el.HorizontalAlignment)
	assert.False(t, el.RichText)
	assert.Nil(t, el.RichTextContent)
	assert.Empty(t, el.RichTextHTML)
}

func TestNormalizeElement_DeltaSizeInPoints(t *testing.T) {
	el := deltaElement(core.DeltaOp{
		Insert:     "Title\n",
		Attributes: map[string]any{"bold": true, "size": "16pt"},
	})

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.True(t, el.Bold)
	assert.Equal(t, 21, el.FontSize)
	assert.Equal(t, "Title", el.Content)
}

func TestNormalizeElement_DeltaAttributes(t *testing.T) {
	el := deltaElement(
		core.DeltaOp{Insert: "a", Attributes: map[string]any{
			"italic": true, "underline": true, "strike": true,
			"link": "https://first.example", "color": "#ff0000", "background": "rgb(0,0,255)",
			"font": "TIMES", "size": "18px",
		}},
		core.DeltaOp{Insert: "b", Attributes: map[string]any{
			"italic": false, "link": "https://second.example", "color": "#00ff00",
		}},
		core.DeltaOp{Insert: "\n"},
	)

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.True(t, el.Italic, "false never resets a flag")
	assert.True(t, el.Underline)
	assert.True(t, el.Strikethrough)
	assert.False(t, el.Bold)
	assert.Equal(t, "https://first.example", el.Link)
	assert.Equal(t, "#ff0000", el.TextColor)
	assert.Equal(t, "rgb(0,0,255)", el.BackgroundColor)
	assert.Equal(t, "Times New Roman", el.Font)
	assert.Equal(t, 18, el.FontSize)
	assert.Equal(t, "ab", el.Content)
}

func TestNormalizeElement_AlignmentOnlyFromParagraphClose(t *testing.T) {
	el := deltaElement(
		core.DeltaOp{Insert: "left", Attributes: map[string]any{"align": "right"}},
		core.DeltaOp{Insert: "\n", Attributes: map[string]any{"align": "justify"}},
		core.DeltaOp{Insert: "next\n", Attributes: map[string]any{"align": "center"}},
		core.DeltaOp{Insert: "bad\n", Attributes: map[string]any{"align": "middle"}},
	)

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.Equal(t, "center", el.HorizontalAlignment)
	assert.Equal(t, "left\nnext\nbad", el.Content)
}

func TestNormalizeElement_DeltaTakesPrecedenceOverMarkup(t *testing.T) {
	// The synthesized markup holds no style tags, the delta flags must survive.
	el := deltaElement(core.DeltaOp{Insert: "x\n", Attributes: map[string]any{"bold": true}})
	el.RichTextHTML = "<p>ignored when a delta is present</p>"

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.True(t, el.Bold)
	assert.Equal(t, "x", el.Content)
}

func TestNormalizeElement_DeltaEscapesText(t *testing.T) {
	el := deltaElement(core.DeltaOp{Insert: "<b>1 & 2</b>\n"})

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.Equal(t, "<b>1 & 2</b>", el.Content)
	assert.False(t, el.Bold, "inserted text is never parsed as markup")
}

func TestNormalizeElement_LineThroughWordsAreText(t *testing.T) {
	el := deltaElement(core.DeltaOp{Insert: "line-through\n"})
	require.NoError(t, New(nil).NormalizeElement(el))
	assert.Equal(t, "line-through", el.Content)
	assert.False(t, el.Strikethrough)

	el = &core.DocumentElement{ID: "2", RichText: true, RichTextHTML: "<p>line-through</p>"}
	require.NoError(t, New(nil).NormalizeElement(el))
	assert.Equal(t, "line-through", el.Content)
	assert.False(t, el.Strikethrough)
}

func TestNormalizeElement_DeltaObjectForm(t *testing.T) {
	var content any
	require.NoError(t, json.Unmarshal([]byte(`{"ops":[{"insert":"A"},{"insert":"\n\n\n"},{"insert":"B\n"}]}`), &content))
	el := &core.DocumentElement{ID: "7", RichText: true, RichTextContent: content}

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.Equal(t, "A\n\nB", el.Content)
}

func TestNormalizeElement_Markup(t *testing.T) {
	el := &core.DocumentElement{
		ID:       "2",
		RichText: true,
		RichTextHTML: `<p class="ql-align-right" style="text-align: center">` +
			`<strong>Total</strong>: <a href="https://example.com">link</a></p>` +
			`<ul><li>one</li><li>two &amp; three</li></ul>`,
	}

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.True(t, el.Bold)
	assert.Equal(t, "right", el.HorizontalAlignment)
	assert.Equal(t, "https://example.com", el.Link)
	assert.Equal(t, "Total: link\n• one\n• two & three", el.Content)
}

func TestNormalizeElement_ContentAsMarkup(t *testing.T) {
	el := &core.DocumentElement{ID: "3", RichText: true, Content: "<em>hi</em>"}

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.True(t, el.Italic)
	assert.Equal(t, "hi", el.Content)
}

func TestNormalizeElement_KeepsUnfoundAttributes(t *testing.T) {
	el := &core.DocumentElement{
		ID: "4", RichText: true, RichTextHTML: "<p>x</p>",
		Font: "helvetica", FontSize: 12, TextColor: "#000000",
	}

	require.NoError(t, New(nil).NormalizeElement(el))

	assert.Equal(t, "helvetica", el.Font)
	assert.Equal(t, 12, el.FontSize)
	assert.Equal(t, "#000000", el.TextColor)
}

func TestNormalizeElement_Idempotent(t *testing.T) {
	el := &core.DocumentElement{ID: "5", Content: "<b>already plain</b>"}
	before := *el

	require.NoError(t, New(nil).NormalizeElement(el))
	assert.Equal(t, before, *el)

	rich := deltaElement(core.DeltaOp{Insert: "x", Attributes: map[string]any{"bold": true}})
	require.NoError(t, New(nil).NormalizeElement(rich))
	once := *rich
	require.NoError(t, New(nil).NormalizeElement(rich))
	assert.Equal(t, once, *rich)
}

func TestNormalizeElement_BadDeltaLeavesElement(t *testing.T) {
	el := &core.DocumentElement{ID: "6", RichText: true, RichTextContent: "not a delta", Content: "orig"}
	before := *el

	err := New(nil).NormalizeElement(el)

	require.Error(t, err)
	assert.Equal(t, before, *el)
}

func TestNormalize_Definition(t *testing.T) {
	var def core.ReportDefinition
	require.NoError(t, json.Unmarshal([]byte(`{
		"version": 5,
		"docElements": [
			{"id": 1, "elementType": "text", "x": 10, "y": 20, "richText": true,
			 "richTextContent": {"ops": [{"insert": "Hi", "attributes": {"italic": true}}, {"insert": "\n"}]},
			 "richTextHtml": "<p>Hi</p>", "content": ""},
			{"id": 2, "elementType": "text", "richText": true, "richTextContent": 42, "content": "keep"},
			{"id": 3, "elementType": "line", "richText": false, "content": "<b>raw</b>"}
		]
	}`), &def))

	out, warnings := New(nil).Normalize(def)

	require.Len(t, warnings, 1)
	assert.Equal(t, "2", warnings[0].ElementID)
	assert.Error(t, warnings[0].Err)

	elements := out.Elements()
	require.Len(t, elements, 3)

	first := elements[0]
	assert.Equal(t, "Hi", first["content"])
	assert.Equal(t, true, first["italic"])
	assert.Equal(t, false, first["richText"])
	assert.NotContains(t, first, "richTextContent")
	assert.NotContains(t, first, "richTextHtml")
	assert.Equal(t, float64(10), first["x"], "layout keys are forwarded untouched")
	assert.Equal(t, float64(5), out["version"])

	second := elements[1]
	assert.Equal(t, "keep", second["content"])
	assert.Equal(t, true, second["richText"])
	assert.Equal(t, float64(42), second["richTextContent"])

	assert.Equal(t, "<b>raw</b>", elements[2]["content"])
}

func TestPlainText(t *testing.T) {
	cases := map[string]string{
		"<p>a</p><p>b</p>":                         "a\nb",
		"<p>a</p><p><br></p><p><br></p><p>b</p>":   "a\n\nb",
		"  <p>  padded  </p>\n\n":                  "padded",
		"line<br/>break<BR>again":                  "line\nbreak\nagain",
		"<ol><li class=\"x\">1</li><li>2</li></ol>": "• 1\n• 2",
		"<span>&lt;tag&gt; &amp; &quot;q&quot;</span>": "<tag> & \"q\"",
		"a\n\n\n\n\nb":                             "a\n\nb",
		"<link rel=\"x\">text":                      "text",
	}
	for in, want := range cases {
		assert.Equal(t, want, PlainText(in), "input %q", in)
	}
}
