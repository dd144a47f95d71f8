package vector

import (
	"strconv"
	"strings"

	"github.com/modkit/swfpatch/internal/apperr"
)

// RGB is a solid paint color before opacity is applied.
type RGB struct {
	R uint8
	G uint8
	B uint8
}

var namedColors = map[string]RGB{
	"black":   {0x00, 0x00, 0x00},
	"white":   {0xff, 0xff, 0xff},
	"red":     {0xff, 0x00, 0x00},
	"green":   {0x00, 0x80, 0x00},
	"lime":    {0x00, 0xff, 0x00},
	"blue":    {0x00, 0x00, 0xff},
	"yellow":  {0xff, 0xff, 0x00},
	"cyan":    {0x00, 0xff, 0xff},
	"magenta": {0xff, 0x00, 0xff},
	"gray":    {0x80, 0x80, 0x80},
	"grey":    {0x80, 0x80, 0x80},
	"orange":  {0xff, 0xa5, 0x00},
	"purple":  {0x80, 0x00, 0x80},
}

// parseColor resolves a solid paint value. Returns (nil, nil) for "none".
// Pattern and gradient references are unsupported paints and raise geometry
// errors rather than being approximated silently.
func parseColor(s string) (*RGB, error) {
	v := strings.TrimSpace(strings.ToLower(s))
	switch {
	case v == "" || v == "none" || v == "transparent":
		return nil, nil
	case strings.HasPrefix(v, "url("):
		return nil, apperr.New(apperr.CodeGeometry, "unsupported paint %q: only solid colors are supported", s)
	case strings.HasPrefix(v, "#"):
		return parseHexColor(v)
	case strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")"):
		return parseRGBFunc(v[4 : len(v)-1])
	default:
		if c, ok := namedColors[v]; ok {
			cc := c
			return &cc, nil
		}
		return nil, apperr.New(apperr.CodeGeometry, "unsupported color %q", s)
	}
}

func parseHexColor(v string) (*RGB, error) {
	hex := v[1:]
	switch len(hex) {
	case 3:
		// #rgb shorthand expands each nibble.
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return nil, apperr.New(apperr.CodeGeometry, "bad hex color %q", v)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, apperr.New(apperr.CodeGeometry, "bad hex color %q", v)
	}
	return &RGB{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}, nil
}

func parseRGBFunc(args string) (*RGB, error) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 {
		return nil, apperr.New(apperr.CodeGeometry, "bad rgb() color")
	}
	var ch [3]uint8
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if strings.HasSuffix(p, "%") {
			pct, err := strconv.ParseFloat(strings.TrimSuffix(p, "%"), 64)
			if err != nil || pct < 0 || pct > 100 {
				return nil, apperr.New(apperr.CodeGeometry, "bad rgb() component %q", p)
			}
			ch[i] = uint8(pct*255/100 + 0.5)
			continue
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || n > 255 {
			return nil, apperr.New(apperr.CodeGeometry, "bad rgb() component %q", p)
		}
		ch[i] = uint8(n)
	}
	return &RGB{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// opacityToAlpha converts a 0..1 opacity to an 8-bit alpha channel.
func opacityToAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(opacity*255 + 0.5)
}
