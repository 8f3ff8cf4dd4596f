// Package extract implements the markup-level style extraction pass.
// It reads rich-text markup (as produced by the report designer's editor)
// and derives the style attributes the rendering engine understands:
//  1. Tag presence (bold, italic, underline, strike-through)
//  2. Editor class markers (alignment, font)
//  3. Inline style declarations (color, background, font family and size)
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Tag selectors per boolean style.
const (
	boldSelector      = "b, strong"
	italicSelector    = "i, em"
	underlineSelector = "u"
	strikeSelector    = "s, strike, del"
)

// Editor class prefixes.
const (
	alignClassPrefix = "ql-align-"
	fontClassPrefix  = "ql-font-"
)

// HTMLExtractor derives style attributes from rich-text markup.
type HTMLExtractor struct{}

// New creates an HTMLExtractor.
func New() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract parses markup and returns every style attribute it can find.
// Values are first-match in document order, except alignment where
// class markers always win over inline text-align.
func (e *HTMLExtractor) Extract(markup string) (Style, error) {
	var s Style

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return s, fmt.Errorf("parsing markup: %w", err)
	}

	s.Bold = doc.Find(boldSelector).Length() > 0
	s.Italic = doc.Find(italicSelector).Length() > 0
	s.Underline = doc.Find(underlineSelector).Length() > 0
	s.Strikethrough = doc.Find(strikeSelector).Length() > 0

	if href, ok := doc.Find("a[href]").First().Attr("href"); ok {
		s.Link = strings.TrimSpace(href)
	}

	classAlign, classFont := classMarkers(doc)
	decls := inlineDeclarations(doc)

	s.Alignment = classAlign
	s.Font = classFont
	for _, d := range decls {
		switch d.property {
		case "text-align":
			if s.Alignment == "" && IsAlignment(d.value) {
				s.Alignment = strings.ToLower(d.value)
			}
		case "color":
			if s.TextColor == "" && IsColor(d.value) {
				s.TextColor = d.value
			}
		case "background-color":
			if s.BackgroundColor == "" && IsColor(d.value) {
				s.BackgroundColor = d.value
			}
		case "font-family":
			if s.Font == "" {
				s.Font = firstFamily(d.value)
			}
		case "text-decoration", "text-decoration-line":
			if strings.Contains(strings.ToLower(d.value), "line-through") {
				s.Strikethrough = true
			}
		case "font-size":
			if s.FontSize == 0 {
				if size, ok := ParseFontSize(d.value); ok {
					s.FontSize = size
				}
			}
		}
	}

	return s, nil
}

// classMarkers scans class attributes in document order for the first
// known alignment and font markers.
func classMarkers(doc *goquery.Document) (align, font string) {
	doc.Find("[class]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		for _, c := range strings.Fields(class) {
			switch {
			case align == "" && strings.HasPrefix(c, alignClassPrefix):
				if v := strings.TrimPrefix(c, alignClassPrefix); v != "left" && IsAlignment(v) {
					align = v
				}
			case font == "" && strings.HasPrefix(c, fontClassPrefix):
				if name, ok := knownFonts[strings.ToLower(strings.TrimPrefix(c, fontClassPrefix))]; ok {
					font = name
				}
			}
		}
		return align == "" || font == ""
	})
	return align, font
}

// declaration is one property/value pair of an inline style attribute.
type declaration struct {
	property string
	value    string
}

// inlineDeclarations returns all inline style declarations in document order.
func inlineDeclarations(doc *goquery.Document) []declaration {
	var decls []declaration
	doc.Find("[style]").Each(func(_ int, sel *goquery.Selection) {
		style, _ := sel.Attr("style")
		for _, part := range strings.Split(style, ";") {
			prop, value, ok := strings.Cut(part, ":")
			if !ok {
				continue
			}
			value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important"))
			decls = append(decls, declaration{
				property: strings.ToLower(strings.TrimSpace(prop)),
				value:    value,
			})
		}
	})
	return decls
}

// firstFamily returns the first family of a font-family list without quotes.
func firstFamily(value string) string {
	first, _, _ := strings.Cut(value, ",")
	return strings.Trim(strings.TrimSpace(first), `"'`)
}
