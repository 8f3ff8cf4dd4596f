package normalize

import (
	"html"
	"regexp"
	"strings"
)

// bulletPrefix starts every list item in plain text.
const bulletPrefix = "• "

// Pre-compiled patterns for plain-text reduction.
var (
	paragraphClose = regexp.MustCompile(`(?i)</p\s*>`)
	lineBreak      = regexp.MustCompile(`(?i)<br\s*/?>`)
	listItemOpen   = regexp.MustCompile(`(?i)<li(\s[^>]*)?>`)
	listItemClose  = regexp.MustCompile(`(?i)</li\s*>`)
	allTags        = regexp.MustCompile(`<[^>]+>`)
	multiNewlines  = regexp.MustCompile(`\n{3,}`)
)

// PlainText reduces rich-text markup to the text the engine prints.
// Paragraph ends and line breaks become newlines, list items become
// bullet lines, all other tags are dropped and entities decoded.
func PlainText(markup string) string {
	text := paragraphClose.ReplaceAllString(markup, "\n")
	text = lineBreak.ReplaceAllString(text, "\n")
	text = listItemOpen.ReplaceAllString(text, bulletPrefix)
	text = listItemClose.ReplaceAllString(text, "\n")

	text = allTags.ReplaceAllString(text, "")
	text = html.UnescapeString(text)

	text = multiNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
