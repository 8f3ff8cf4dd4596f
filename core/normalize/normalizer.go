// Package normalize implements the Normalizer interface.
// It resolves rich-text document elements (editor delta or raw markup)
// into a plain-text content value plus the flat style attributes the
// rendering engine understands.
package normalize

import (
	"fmt"

	"github.com/gaurav-prasanna/reportgate/core"
	"github.com/gaurav-prasanna/reportgate/core/extract"
	"github.com/gaurav-prasanna/reportgate/logger"
)

// Ensure RichTextNormalizer implements the interface.
var _ core.Normalizer = (*RichTextNormalizer)(nil)

// RichTextNormalizer normalizes the rich-text elements of a report definition.
// It holds no per-request state and is safe for concurrent use.
type RichTextNormalizer struct {
	extractor *extract.HTMLExtractor
	log       logger.Logger
}

// New creates a RichTextNormalizer. A nil logger discards output.
func New(log logger.Logger) *RichTextNormalizer {
	if log == nil {
		log = logger.NewNop()
	}
	return &RichTextNormalizer{
		extractor: extract.New(),
		log:       log,
	}
}

// Normalize rewrites every rich-text element of def in place and returns def.
// A failing element is logged, left as submitted, and reported as a warning;
// it never stops the remaining elements.
func (n *RichTextNormalizer) Normalize(def core.ReportDefinition) (core.ReportDefinition, []core.ElementWarning) {
	var warnings []core.ElementWarning
	for i, raw := range def.Elements() {
		if err := n.normalizeRaw(raw); err != nil {
			id := core.ElementID(raw, i)
			n.log.Warn("rich text element left unnormalized", "element", id, "err", err)
			warnings = append(warnings, core.ElementWarning{ElementID: id, Err: err})
		}
	}
	return def, warnings
}

// normalizeRaw normalizes one raw element object. The object is only
// written once the element has been fully resolved.
func (n *RichTextNormalizer) normalizeRaw(raw map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("normalizer panic: %v", r)
		}
	}()

	if rich, _ := raw["richText"].(bool); !rich {
		return nil
	}

	el, err := core.DecodeElement(raw)
	if err != nil {
		return err
	}
	if err := n.NormalizeElement(el); err != nil {
		return err
	}
	el.ApplyTo(raw)
	return nil
}

// NormalizeElement resolves a single element. Elements with richText unset
// are returned untouched. On error el is not modified.
func (n *RichTextNormalizer) NormalizeElement(el *core.DocumentElement) error {
	if !el.RichText {
		return nil
	}

	// 1. Resolve the source markup, collecting delta styles on the way.
	var style extract.Style
	source := el.RichTextHTML
	switch {
	case el.RichTextContent != nil:
		ops, err := decodeDelta(el.RichTextContent)
		if err != nil {
			return fmt.Errorf("decoding delta: %w", err)
		}
		source, style = fromDelta(ops)
	case source == "":
		source = el.Content
	}

	// 2. Markup pass fills what the delta did not set.
	markupStyle, err := n.extractor.Extract(source)
	if err != nil {
		return fmt.Errorf("extracting markup styles: %w", err)
	}
	style.Fill(markupStyle)

	// 3. Reduce to plain text.
	content := PlainText(source)

	// 4. Commit.
	applyStyle(el, style)
	el.Content = content
	el.RichText = false
	el.RichTextHTML = ""
	el.RichTextContent = nil
	return nil
}

// applyStyle copies extracted attributes onto el. Attributes that were not
// found keep the element's existing value; flags are only ever raised.
func applyStyle(el *core.DocumentElement, s extract.Style) {
	el.Bold = el.Bold || s.Bold
	el.Italic = el.Italic || s.Italic
	el.Underline = el.Underline || s.Underline
	el.Strikethrough = el.Strikethrough || s.Strikethrough

	if s.Link != "" {
		el.Link = s.Link
	}
	if s.TextColor != "" {
		el.TextColor = s.TextColor
	}
	if s.BackgroundColor != "" {
		el.BackgroundColor = s.BackgroundColor
	}
	if s.Font != "" {
		el.Font = s.Font
	}
	if s.FontSize > 0 {
		el.FontSize = s.FontSize
	}
	if s.Alignment != "" {
		el.HorizontalAlignment = s.Alignment
	}
}
