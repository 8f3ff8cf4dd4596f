package render

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/gaurav-prasanna/reportgate/core"
)

// mmToPt converts designer millimetres to PDF points.
const mmToPt = 72 / 25.4

// pageSizes holds portrait page dimensions in points.
var pageSizes = map[string][2]float64{
	"a4":     {595.28, 841.89},
	"a5":     {419.53, 595.28},
	"letter": {612, 792},
	"legal":  {612, 1008},
}

var paramPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// documentProperties is the page setup of a definition.
type documentProperties struct {
	PageFormat   string  `json:"pageFormat"`
	PageWidth    float64 `json:"pageWidth"`
	PageHeight   float64 `json:"pageHeight"`
	Orientation  string  `json:"orientation"`
	MarginLeft   float64 `json:"marginLeft"`
	MarginTop    float64 `json:"marginTop"`
	MarginRight  float64 `json:"marginRight"`
	MarginBottom float64 `json:"marginBottom"`
}

// page is the resolved page geometry in points.
type page struct {
	Width, Height                                    float64
	MarginLeft, MarginTop, MarginRight, MarginBottom float64
}

// geometry is the placement of an element in designer millimetres.
type geometry struct {
	ElementType string  `json:"elementType"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
}

// textBlock is a positioned, parameter-expanded text element.
type textBlock struct {
	core.DocumentElement
	X, Y, Width, Height float64
}

// layout is what both local engines draw from.
type layout struct {
	Page   page
	Blocks []textBlock
}

// buildLayout resolves the page and every text element of def against data.
// All problems found are collected into one *ValidationError.
func buildLayout(def core.ReportDefinition, data core.ReportData) (*layout, error) {
	var errs []FieldError

	pg, fe := resolvePage(def.DocumentProperties())
	if fe != nil {
		errs = append(errs, *fe)
	}

	var blocks []textBlock
	for i, raw := range def.Elements() {
		var geo geometry
		if err := decodeWeak(raw, &geo); err != nil {
			return nil, fmt.Errorf("element %s: %w", core.ElementID(raw, i), err)
		}
		if geo.ElementType != "" && geo.ElementType != "text" {
			continue
		}

		el, err := core.DecodeElement(raw)
		if err != nil {
			return nil, fmt.Errorf("element %s: %w", core.ElementID(raw, i), err)
		}
		id := core.ElementID(raw, i)

		if geo.Width <= 0 || geo.Height <= 0 {
			errs = append(errs, FieldError{ObjectID: id, Field: "size", MsgKey: MsgInvalidSize})
			continue
		}

		content, missing := expandParams(el.Content, data)
		for _, name := range missing {
			errs = append(errs, FieldError{ObjectID: id, Field: "content", MsgKey: MsgMissingParameter, Info: name})
		}
		el.Content = content

		blocks = append(blocks, textBlock{
			DocumentElement: *el,
			X:               geo.X * mmToPt,
			Y:               geo.Y * mmToPt,
			Width:           geo.Width * mmToPt,
			Height:          geo.Height * mmToPt,
		})
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Errors: errs}
	}

	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Y != blocks[j].Y {
			return blocks[i].Y < blocks[j].Y
		}
		return blocks[i].X < blocks[j].X
	})
	return &layout{Page: pg, Blocks: blocks}, nil
}

// resolvePage turns document properties into point geometry.
// A missing properties object means A4 portrait with 20mm margins.
func resolvePage(raw map[string]any) (page, *FieldError) {
	props := documentProperties{
		PageFormat:   "A4",
		Orientation:  "portrait",
		MarginLeft:   20,
		MarginTop:    20,
		MarginRight:  20,
		MarginBottom: 10,
	}
	if raw != nil {
		if err := decodeWeak(raw, &props); err != nil {
			return page{}, &FieldError{ObjectID: "docProperties", Field: "pageFormat", MsgKey: MsgInvalidPageSize, Info: err.Error()}
		}
	}

	var w, h float64
	if format := strings.ToLower(props.PageFormat); format == "user_defined" {
		w, h = props.PageWidth*mmToPt, props.PageHeight*mmToPt
	} else {
		size, ok := pageSizes[format]
		if !ok {
			return page{}, &FieldError{ObjectID: "docProperties", Field: "pageFormat", MsgKey: MsgInvalidPageSize, Info: props.PageFormat}
		}
		w, h = size[0], size[1]
	}
	if w <= 0 || h <= 0 {
		return page{}, &FieldError{ObjectID: "docProperties", Field: "pageWidth", MsgKey: MsgInvalidPageSize}
	}
	if strings.EqualFold(props.Orientation, "landscape") {
		w, h = h, w
	}

	return page{
		Width:        w,
		Height:       h,
		MarginLeft:   props.MarginLeft * mmToPt,
		MarginTop:    props.MarginTop * mmToPt,
		MarginRight:  props.MarginRight * mmToPt,
		MarginBottom: props.MarginBottom * mmToPt,
	}, nil
}

// expandParams replaces ${name} references with values from data.
// Dotted names walk nested objects. Unresolved names are returned.
func expandParams(s string, data core.ReportData) (string, []string) {
	var missing []string
	out := paramPattern.ReplaceAllStringFunc(s, func(m string) string {
		name := strings.TrimSpace(m[2 : len(m)-1])
		v, ok := lookupParam(data, name)
		if !ok {
			missing = append(missing, name)
			return m
		}
		return formatValue(v)
	})
	return out, missing
}

func lookupParam(data core.ReportData, name string) (any, bool) {
	var cur any = map[string]any(data)
	for _, part := range strings.Split(name, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// decodeWeak decodes a definition object, accepting numbers sent as strings.
func decodeWeak(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}
