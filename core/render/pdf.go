// PDF renderer. Draws the positioned text elements of a report with gofpdf,
// applying the normalized style attributes of each element.

package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/gaurav-prasanna/reportgate/core"
)

// lineSpacing is the line height as a multiple of the font size.
const lineSpacing = 1.2

// defaultFontSize applies when an element carries no size.
const defaultFontSize = 12

// PDFRenderer renders a report definition as a PDF document.
type PDFRenderer struct{}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Kind returns the artifact kind.
func (r *PDFRenderer) Kind() core.OutputKind {
	return core.KindPDF
}

// Render lays out def with data and returns the PDF bytes.
func (r *PDFRenderer) Render(ctx context.Context, def core.ReportDefinition, data core.ReportData) ([]byte, error) {
	l, err := buildLayout(def, data)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: l.Page.Width, Ht: l.Page.Height},
	})
	pdf.SetMargins(l.Page.MarginLeft, l.Page.MarginTop, l.Page.MarginRight)
	pdf.SetAutoPageBreak(true, l.Page.MarginBottom)
	pdf.AddPage()

	// Core fonts are cp1252; translate so accented text survives.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, b := range l.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		drawBlock(pdf, tr, l.Page, b)
	}

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("drawing pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBlock writes one text element at its position inside the margins.
func drawBlock(pdf *gofpdf.Fpdf, tr func(string) string, pg page, b textBlock) {
	size := float64(b.FontSize)
	if size <= 0 {
		size = defaultFontSize
	}
	pdf.SetFont(pdfFamily(b.Font), pdfStyle(b.DocumentElement), size)

	if c, ok := parseColor(b.TextColor); ok {
		pdf.SetTextColor(c.R, c.G, c.B)
	} else {
		pdf.SetTextColor(0, 0, 0)
	}
	fill := false
	if c, ok := parseColor(b.BackgroundColor); ok {
		pdf.SetFillColor(c.R, c.G, c.B)
		fill = true
	}

	x, y := pg.MarginLeft+b.X, pg.MarginTop+b.Y
	if fill {
		pdf.Rect(x, y, b.Width, b.Height, "F")
	}
	pdf.SetXY(x, y)
	pdf.MultiCell(b.Width, size*lineSpacing, tr(b.Content), "", pdfAlign(b.HorizontalAlignment), false)

	if b.Link != "" {
		pdf.LinkString(x, y, b.Width, b.Height, b.Link)
	}
}

// pdfFamily maps a canonical font name to a gofpdf core font.
func pdfFamily(font string) string {
	switch strings.ToLower(font) {
	case "times new roman", "times":
		return "Times"
	case "courier new", "courier":
		return "Courier"
	default:
		return "Helvetica"
	}
}

func pdfStyle(el core.DocumentElement) string {
	var s strings.Builder
	if el.Bold {
		s.WriteByte('B')
	}
	if el.Italic {
		s.WriteByte('I')
	}
	if el.Underline {
		s.WriteByte('U')
	}
	if el.Strikethrough {
		s.WriteByte('S')
	}
	return s.String()
}

func pdfAlign(alignment string) string {
	switch alignment {
	case "center":
		return "C"
	case "right":
		return "R"
	case "justify":
		return "J"
	default:
		return "L"
	}
}
