package normalize

import (
	"fmt"
	"html"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/gaurav-prasanna/reportgate/core"
	"github.com/gaurav-prasanna/reportgate/core/extract"
)

// decodeDelta accepts a delta as a list of ops or as an {"ops": [...]} object.
func decodeDelta(v any) ([]core.DeltaOp, error) {
	switch d := v.(type) {
	case []core.DeltaOp:
		return d, nil
	case map[string]any:
		ops, ok := d["ops"]
		if !ok {
			return nil, fmt.Errorf("delta object has no ops")
		}
		v = ops
	}

	var ops []core.DeltaOp
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &ops,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(v); err != nil {
		return nil, err
	}
	return ops, nil
}

// fromDelta synthesizes paragraph markup from delta ops and collects the
// styles carried by their attributes.
func fromDelta(ops []core.DeltaOp) (string, extract.Style) {
	var (
		style extract.Style
		doc   strings.Builder
		para  strings.Builder
	)

	closeParagraph := func() {
		if para.Len() == 0 {
			doc.WriteString("<p><br></p>")
			return
		}
		doc.WriteString("<p>")
		doc.WriteString(para.String())
		doc.WriteString("</p>")
		para.Reset()
	}

	for _, op := range ops {
		text, ok := op.Insert.(string)
		if !ok {
			// Embeds carry no text.
			continue
		}

		readAttributes(&style, op.Attributes)
		if strings.HasSuffix(text, "\n") {
			if align, ok := op.Attributes["align"].(string); ok && extract.IsAlignment(align) {
				style.Alignment = strings.ToLower(align)
			}
		}

		segments := strings.Split(text, "\n")
		for i, seg := range segments {
			para.WriteString(html.EscapeString(seg))
			if i < len(segments)-1 {
				closeParagraph()
			}
		}
	}
	if para.Len() > 0 {
		closeParagraph()
	}

	return doc.String(), style
}

// readAttributes applies one op's attribute map to style.
func readAttributes(style *extract.Style, attrs map[string]any) {
	if len(attrs) == 0 {
		return
	}

	if isSet(attrs["bold"]) {
		style.Bold = true
	}
	if isSet(attrs["italic"]) {
		style.Italic = true
	}
	if isSet(attrs["underline"]) {
		style.Underline = true
	}
	if isSet(attrs["strike"]) || isSet(attrs["strikethrough"]) {
		style.Strikethrough = true
	}

	if link, ok := attrs["link"].(string); ok && style.Link == "" {
		style.Link = link
	}
	if color, ok := attrs["color"].(string); ok && style.TextColor == "" {
		style.TextColor = color
	}
	if bg, ok := attrs["background"].(string); ok && style.BackgroundColor == "" {
		style.BackgroundColor = bg
	}
	if font, ok := attrs["font"].(string); ok && font != "" {
		style.Font = extract.CanonicalFont(font)
	}
	if size, ok := attrs["size"].(string); ok {
		if px, ok := extract.ParseFontSize(size); ok {
			style.FontSize = px
		}
	}
}

func isSet(v any) bool {
	b, ok := v.(bool)
	return ok && b
}
