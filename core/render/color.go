package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var rgbPattern = regexp.MustCompile(`^rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*(?:,\s*[\d.]+\s*)?\)$`)

// rgb is an 8-bit color.
type rgb struct {
	R, G, B int
}

// hex returns the color as RRGGBB.
func (c rgb) hex() string {
	return fmt.Sprintf("%02X%02X%02X", c.R, c.G, c.B)
}

// parseColor reads #rgb, #rrggbb, #rrggbbaa and rgb()/rgba() values.
func parseColor(s string) (rgb, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if m := rgbPattern.FindStringSubmatch(s); m != nil {
		var c [3]int
		for i := range c {
			n, _ := strconv.Atoi(m[i+1])
			if n > 255 {
				return rgb{}, false
			}
			c[i] = n
		}
		return rgb{c[0], c[1], c[2]}, true
	}

	h, ok := strings.CutPrefix(s, "#")
	if !ok {
		return rgb{}, false
	}
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	case 8:
		h = h[:6]
	default:
		return rgb{}, false
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}
