// Package core defines the report model and the pipeline interfaces for ReportGate.
// Each stage of the pipeline (normalize, render, cache) is a clean, testable interface.
package core

import (
	"context"
	"fmt"
	"strings"
)

// ReportDefinition is the designer's report document.
// Only docElements is interpreted by the gateway; every other key is
// forwarded to the rendering engine untouched.
type ReportDefinition map[string]any

// ReportData holds the parameter values a report is rendered with.
type ReportData map[string]any

// Elements returns the element objects of the definition in document order.
// Elements are returned by reference so normalization mutates the definition in place.
func (d ReportDefinition) Elements() []map[string]any {
	list, ok := d["docElements"].([]any)
	if !ok {
		return nil
	}
	elements := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if el, ok := item.(map[string]any); ok {
			elements = append(elements, el)
		}
	}
	return elements
}

// DocumentProperties returns the page setup object of the definition, if any.
func (d ReportDefinition) DocumentProperties() map[string]any {
	props, _ := d["documentProperties"].(map[string]any)
	return props
}

// DeltaOp is a single insert operation of a rich-text delta.
// Insert is usually a string; embeds (images, formulas) arrive as objects.
type DeltaOp struct {
	Insert     any            `json:"insert"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// DocumentElement is the subset of a report element the normalizer works on.
type DocumentElement struct {
	ID                  string `json:"id"`
	Content             string `json:"content"`
	Bold                bool   `json:"bold"`
	Italic              bool   `json:"italic"`
	Underline           bool   `json:"underline"`
	Strikethrough       bool   `json:"strikethrough"`
	Link                string `json:"link,omitempty"`
	TextColor           string `json:"textColor,omitempty"`
	BackgroundColor     string `json:"backgroundColor,omitempty"`
	Font                string `json:"font,omitempty"`
	FontSize            int    `json:"fontSize,omitempty"`
	HorizontalAlignment string `json:"horizontalAlignment,omitempty"`

	RichText        bool   `json:"richText"`
	RichTextHTML    string `json:"richTextHtml,omitempty"`
	RichTextContent any    `json:"richTextContent,omitempty"`
}

// ElementWarning reports an element that could not be normalized.
// The element is left exactly as it was submitted.
type ElementWarning struct {
	ElementID string `json:"element_id"`
	Err       error  `json:"-"`
}

func (w ElementWarning) Error() string {
	return fmt.Sprintf("element %s: %v", w.ElementID, w.Err)
}

// OutputKind identifies an artifact format produced by the rendering engine.
type OutputKind string

const (
	KindPDF  OutputKind = "pdf"
	KindXLSX OutputKind = "xlsx"
)

// ParseOutputKind normalizes a requested output format. Empty means pdf.
func ParseOutputKind(s string) OutputKind {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindPDF
	}
	return OutputKind(s)
}

// ContentType returns the MIME type for the kind.
func (k OutputKind) ContentType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the file extension for the kind (e.g. ".pdf").
func (k OutputKind) Extension() string {
	return "." + string(k)
}

// Normalizer resolves rich-text elements to plain text plus style attributes.
type Normalizer interface {
	Normalize(def ReportDefinition) (ReportDefinition, []ElementWarning)
}

// Renderer converts a normalized definition and its data into one artifact format.
type Renderer interface {
	Render(ctx context.Context, def ReportDefinition, data ReportData) ([]byte, error)
	// Kind returns the artifact format this renderer produces.
	Kind() OutputKind
}

// Gateway dispatches rendering to the engine for the requested kind.
type Gateway interface {
	Render(ctx context.Context, def ReportDefinition, data ReportData, kind OutputKind) ([]byte, error)
}
