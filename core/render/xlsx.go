package render

import (
	"context"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/gaurav-prasanna/reportgate/core"
)

const sheetName = "Sheet1"

// ptPerChar approximates the width of one spreadsheet column unit in points.
const ptPerChar = 7

// XLSXRenderer renders a report definition as a spreadsheet. Elements that
// share a y position land in the same row, ordered left to right.
type XLSXRenderer struct{}

// NewXLSXRenderer creates an XLSXRenderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

// Kind returns the artifact kind.
func (r *XLSXRenderer) Kind() core.OutputKind {
	return core.KindXLSX
}

// Render lays out def with data and returns the workbook bytes.
func (r *XLSXRenderer) Render(ctx context.Context, def core.ReportDefinition, data core.ReportData) ([]byte, error) {
	l, err := buildLayout(def, data)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rowsOf(l.Blocks) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j, b := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			if err := writeCell(f, cell, b); err != nil {
				return nil, fmt.Errorf("writing cell %s: %w", cell, err)
			}
			col, _, _ := excelize.SplitCellName(cell)
			if err := f.SetColWidth(sheetName, col, col, b.Width/ptPerChar); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// rowsOf groups blocks by y position. Blocks arrive sorted by y then x.
func rowsOf(blocks []textBlock) [][]textBlock {
	var rows [][]textBlock
	for i, b := range blocks {
		if i == 0 || b.Y != blocks[i-1].Y {
			rows = append(rows, nil)
		}
		rows[len(rows)-1] = append(rows[len(rows)-1], b)
	}
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].X < row[j].X })
	}
	return rows
}

func writeCell(f *excelize.File, cell string, b textBlock) error {
	if err := f.SetCellValue(sheetName, cell, b.Content); err != nil {
		return err
	}

	style := &excelize.Style{
		Font: &excelize.Font{
			Bold:   b.Bold,
			Italic: b.Italic,
			Strike: b.Strikethrough,
			Family: b.Font,
			Size:   float64(b.FontSize),
		},
		Alignment: &excelize.Alignment{WrapText: true},
	}
	if b.Underline {
		style.Font.Underline = "single"
	}
	if c, ok := parseColor(b.TextColor); ok {
		style.Font.Color = c.hex()
	}
	if c, ok := parseColor(b.BackgroundColor); ok {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{c.hex()}}
	}
	switch b.HorizontalAlignment {
	case "center", "right", "justify":
		style.Alignment.Horizontal = b.HorizontalAlignment
	}

	id, err := f.NewStyle(style)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, cell, cell, id); err != nil {
		return err
	}
	if b.Link != "" {
		return f.SetCellHyperLink(sheetName, cell, b.Link, "External")
	}
	return nil
}
