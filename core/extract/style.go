package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PointToPixel converts point sizes into the engine's pixel-equivalent unit.
const PointToPixel = 1.333

// Style is the set of attributes derived from rich content.
// Zero values mean "not found".
type Style struct {
	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool

	Link            string
	TextColor       string
	BackgroundColor string
	Font            string
	FontSize        int
	Alignment       string
}

// Fill copies every attribute of other that s has not set yet.
// Booleans only ever turn on.
func (s *Style) Fill(other Style) {
	s.Bold = s.Bold || other.Bold
	s.Italic = s.Italic || other.Italic
	s.Underline = s.Underline || other.Underline
	s.Strikethrough = s.Strikethrough || other.Strikethrough

	if s.Link == "" {
		s.Link = other.Link
	}
	if s.TextColor == "" {
		s.TextColor = other.TextColor
	}
	if s.BackgroundColor == "" {
		s.BackgroundColor = other.BackgroundColor
	}
	if s.Font == "" {
		s.Font = other.Font
	}
	if s.FontSize == 0 {
		s.FontSize = other.FontSize
	}
	if s.Alignment == "" {
		s.Alignment = other.Alignment
	}
}

// knownFonts maps the editor's generic font names to display names.
var knownFonts = map[string]string{
	"helvetica": "Helvetica",
	"times":     "Times New Roman",
	"courier":   "Courier New",
}

// CanonicalFont maps a generic font name to its display name.
// Unknown names are returned verbatim.
func CanonicalFont(name string) string {
	if display, ok := knownFonts[strings.ToLower(strings.TrimSpace(name))]; ok {
		return display
	}
	return name
}

var (
	fontSizePattern = regexp.MustCompile(`^(\d+)(px|pt)$`)
	hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{3,8}$`)
	rgbColorPattern = regexp.MustCompile(`^(?i)rgb\([^)]*\)$`)
)

// ParseFontSize reads "<integer>px" or "<integer>pt". Points are converted
// to pixels and rounded to the nearest integer.
func ParseFontSize(value string) (int, bool) {
	m := fontSizePattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(value)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	if m[2] == "pt" {
		return int(math.Round(float64(n) * PointToPixel)), true
	}
	return n, true
}

// IsColor reports whether value is a hex color (3-8 digits) or an rgb() call.
func IsColor(value string) bool {
	value = strings.TrimSpace(value)
	return hexColorPattern.MatchString(value) || rgbColorPattern.MatchString(value)
}

// IsAlignment reports whether value is one of left, center, right, justify.
func IsAlignment(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "left", "center", "right", "justify":
		return true
	}
	return false
}
