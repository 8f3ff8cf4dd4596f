package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_TagPresence(t *testing.T) {
	e := New()

	s, err := e.Extract(`<p><strong>a</strong> <em>b</em> <u>c</u> <del>d</del></p>`)
	require.NoError(t, err)
	assert.True(t, s.Bold)
	assert.True(t, s.Italic)
	assert.True(t, s.Underline)
	assert.True(t, s.Strikethrough)

	s, err = e.Extract(`<p>plain</p>`)
	require.NoError(t, err)
	assert.Equal(t, Style{}, s)
}

func TestExtract_LineThroughToken(t *testing.T) {
	s, err := New().Extract(`<p><span style="text-decoration: line-through;">x</span></p>`)
	require.NoError(t, err)
	assert.True(t, s.Strikethrough)

	s, err = New().Extract(`<p style="text-decoration-line: underline LINE-THROUGH">x</p>`)
	require.NoError(t, err)
	assert.True(t, s.Strikethrough)
}

func TestExtract_LineThroughInTextIsNotAStyle(t *testing.T) {
	for _, markup := range []string{
		`<p>line-through</p>`,
		`<p>Use a line-through to cross out</p>`,
		`<p title="line-through" style="color: #000">x</p>`,
	} {
		s, err := New().Extract(markup)
		require.NoError(t, err)
		assert.False(t, s.Strikethrough, markup)
	}
}

func TestExtract_AlignmentClassBeatsInline(t *testing.T) {
	s, err := New().Extract(`<p style="text-align: right">a</p><p class="ql-align-center">b</p>`)
	require.NoError(t, err)
	assert.Equal(t, "center", s.Alignment)
}

func TestExtract_InlineAlignment(t *testing.T) {
	s, err := New().Extract(`<p style="text-align: Justify">a</p>`)
	require.NoError(t, err)
	assert.Equal(t, "justify", s.Alignment)

	s, err = New().Extract(`<p style="text-align: start">a</p>`)
	require.NoError(t, err)
	assert.Empty(t, s.Alignment)
}

func TestExtract_FirstLink(t *testing.T) {
	s, err := New().Extract(`<p><a href='https://one.example'>1</a><a href="https://two.example">2</a></p>`)
	require.NoError(t, err)
	assert.Equal(t, "https://one.example", s.Link)
}

func TestExtract_Colors(t *testing.T) {
	markup := `<p><span style="background-color: rgb(255, 0, 0); color: red">a</span>` +
		`<span style="color: #0a0b0c">b</span><span style="color: #123">c</span></p>`

	s, err := New().Extract(markup)
	require.NoError(t, err)
	assert.Equal(t, "#0a0b0c", s.TextColor, "named colors are not accepted")
	assert.Equal(t, "rgb(255, 0, 0)", s.BackgroundColor)
}

func TestExtract_Font(t *testing.T) {
	s, err := New().Extract(`<p><span style="font-family: 'Open Sans', sans-serif">a</span></p>`)
	require.NoError(t, err)
	assert.Equal(t, "Open Sans", s.Font)

	s, err = New().Extract(`<p><span style="font-family: Arial">a</span><span class="ql-font-courier">b</span></p>`)
	require.NoError(t, err)
	assert.Equal(t, "Courier New", s.Font, "class markers take priority over font-family")
}

func TestExtract_FontSize(t *testing.T) {
	s, err := New().Extract(`<p><span style="font-size: 12pt">a</span><span style="font-size: 30px">b</span></p>`)
	require.NoError(t, err)
	assert.Equal(t, 16, s.FontSize)

	s, err = New().Extract(`<p><span style="font-size: 1.5em">a</span><span style="font-size: 14px">b</span></p>`)
	require.NoError(t, err)
	assert.Equal(t, 14, s.FontSize)
}

func TestStyle_Fill(t *testing.T) {
	s := Style{Bold: true, Font: "Helvetica"}
	s.Fill(Style{Bold: false, Italic: true, Font: "Arial", FontSize: 10, Link: "x"})

	assert.Equal(t, Style{Bold: true, Italic: true, Font: "Helvetica", FontSize: 10, Link: "x"}, s)
}

func TestParseFontSize(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"16pt", 21, true},
		{"12pt", 16, true},
		{"9pt", 12, true},
		{"18px", 18, true},
		{" 10PX ", 10, true},
		{"1.5pt", 0, false},
		{"large", 0, false},
		{"12", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseFontSize(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestCanonicalFont(t *testing.T) {
	assert.Equal(t, "Helvetica", CanonicalFont("HELVETICA"))
	assert.Equal(t, "Times New Roman", CanonicalFont("times"))
	assert.Equal(t, "Courier New", CanonicalFont("Courier"))
	assert.Equal(t, "Fira Code", CanonicalFont("Fira Code"))
}

func TestIsColor(t *testing.T) {
	assert.True(t, IsColor("#fff"))
	assert.True(t, IsColor("#ff000080"))
	assert.True(t, IsColor("rgb(1,2,3)"))
	assert.False(t, IsColor("#ff"))
	assert.False(t, IsColor("blue"))
}
