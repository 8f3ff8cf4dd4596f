package core

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// DecodeElement reads the normalizable fields of a raw element object.
// Designer payloads are loosely typed (ids and sizes may be numbers or strings),
// so decoding is weakly typed.
func DecodeElement(raw map[string]any) (*DocumentElement, error) {
	var el DocumentElement
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &el,
	})
	if err != nil {
		return nil, fmt.Errorf("creating element decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding element: %w", err)
	}
	return &el, nil
}

// ApplyTo writes the plain fields of a normalized element back onto its raw object
// and removes the raw rich-text forms. Keys the normalizer does not own are kept.
func (e *DocumentElement) ApplyTo(raw map[string]any) {
	raw["content"] = e.Content
	raw["bold"] = e.Bold
	raw["italic"] = e.Italic
	raw["underline"] = e.Underline
	raw["strikethrough"] = e.Strikethrough
	raw["richText"] = e.RichText

	setString(raw, "link", e.Link)
	setString(raw, "textColor", e.TextColor)
	setString(raw, "backgroundColor", e.BackgroundColor)
	setString(raw, "font", e.Font)
	setString(raw, "horizontalAlignment", e.HorizontalAlignment)
	if e.FontSize > 0 {
		raw["fontSize"] = e.FontSize
	}

	if !e.RichText {
		delete(raw, "richTextHtml")
		delete(raw, "richTextContent")
	}
}

func setString(raw map[string]any, key, value string) {
	if value != "" {
		raw[key] = value
	}
}

// ElementID returns a printable identifier for a raw element.
// Elements without an id are named by their position.
func ElementID(raw map[string]any, index int) string {
	if id, ok := raw["id"]; ok && id != nil {
		return fmt.Sprint(id)
	}
	return fmt.Sprintf("#%d", index)
}
