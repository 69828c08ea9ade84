package graph

import (
	"strconv"
	"strings"
)

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa into normalized RGBA.
// The leading '#' is optional.
func ParseHexColor(hex string) ([4]float32, bool) {
	hex = strings.TrimPrefix(hex, "#")

	channel := func(s string) (float32, bool) {
		v, err := strconv.ParseUint(s, 16, 8)
		if err != nil {
			return 0, false
		}
		return float32(v) / 255, true
	}

	var parts []string
	switch len(hex) {
	case 3:
		// short form: each digit doubles, f -> ff
		parts = []string{
			strings.Repeat(hex[0:1], 2),
			strings.Repeat(hex[1:2], 2),
			strings.Repeat(hex[2:3], 2),
		}
	case 6:
		parts = []string{hex[0:2], hex[2:4], hex[4:6]}
	case 8:
		parts = []string{hex[0:2], hex[2:4], hex[4:6], hex[6:8]}
	default:
		return [4]float32{}, false
	}

	out := [4]float32{0, 0, 0, 1}
	for i, p := range parts {
		c, ok := channel(p)
		if !ok {
			return [4]float32{}, false
		}
		out[i] = c
	}
	return out, true
}
