package vector

import (
	"math"
	"strings"

	"github.com/modkit/swfpatch/internal/apperr"
)

// Point is a 2D coordinate in document units.
type Point struct {
	X float64
	Y float64
}

// Transform is an affine 2D transform in SVG matrix order:
//
//	| A C E |
//	| B D F |
type Transform struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: 1, D: 1}
}

// Apply maps a point through the transform.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: t.A*p.X + t.C*p.Y + t.E,
		Y: t.B*p.X + t.D*p.Y + t.F,
	}
}

// Compose returns the transform that applies local first, then t. This is
// the parent-child composition used while descending the artwork tree.
func (t Transform) Compose(local Transform) Transform {
	return Transform{
		A: t.A*local.A + t.C*local.B,
		B: t.B*local.A + t.D*local.B,
		C: t.A*local.C + t.C*local.D,
		D: t.B*local.C + t.D*local.D,
		E: t.A*local.E + t.C*local.F + t.E,
		F: t.B*local.E + t.D*local.F + t.F,
	}
}

func translate(tx, ty float64) Transform {
	return Transform{A: 1, D: 1, E: tx, F: ty}
}

func scale(sx, sy float64) Transform {
	return Transform{A: sx, D: sy}
}

func rotate(deg float64) Transform {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	return Transform{A: cos, B: sin, C: -sin, D: cos}
}

func skewX(deg float64) Transform {
	return Transform{A: 1, C: math.Tan(deg * math.Pi / 180), D: 1}
}

func skewY(deg float64) Transform {
	return Transform{A: 1, B: math.Tan(deg * math.Pi / 180), D: 1}
}

// ParseTransform parses an SVG transform list such as
// "translate(10,20) rotate(45) scale(2)".
func ParseTransform(s string) (Transform, error) {
	t := Identity()
	rest := strings.TrimSpace(s)
	for rest != "" {
		open := strings.IndexByte(rest, '(')
		closing := strings.IndexByte(rest, ')')
		if open < 0 || closing < open {
			return Transform{}, apperr.New(apperr.CodeGeometry, "malformed transform %q", s)
		}
		name := strings.TrimSpace(rest[:open])
		args, err := parseNumberList(rest[open+1 : closing])
		if err != nil {
			return Transform{}, apperr.New(apperr.CodeGeometry, "malformed transform %q: %v", s, err)
		}
		local, err := transformFunc(name, args)
		if err != nil {
			return Transform{}, err
		}
		t = t.Compose(local)
		rest = strings.TrimLeft(strings.TrimSpace(rest[closing+1:]), ",")
		rest = strings.TrimSpace(rest)
	}
	return t, nil
}

func transformFunc(name string, args []float64) (Transform, error) {
	switch name {
	case "matrix":
		if len(args) != 6 {
			return Transform{}, apperr.New(apperr.CodeGeometry, "matrix wants 6 arguments, got %d", len(args))
		}
		return Transform{A: args[0], B: args[1], C: args[2], D: args[3], E: args[4], F: args[5]}, nil
	case "translate":
		switch len(args) {
		case 1:
			return translate(args[0], 0), nil
		case 2:
			return translate(args[0], args[1]), nil
		}
		return Transform{}, apperr.New(apperr.CodeGeometry, "translate wants 1 or 2 arguments, got %d", len(args))
	case "scale":
		switch len(args) {
		case 1:
			return scale(args[0], args[0]), nil
		case 2:
			return scale(args[0], args[1]), nil
		}
		return Transform{}, apperr.New(apperr.CodeGeometry, "scale wants 1 or 2 arguments, got %d", len(args))
	case "rotate":
		switch len(args) {
		case 1:
			return rotate(args[0]), nil
		case 3:
			// rotate about a point: translate, rotate, translate back
			t := translate(args[1], args[2]).Compose(rotate(args[0]))
			return t.Compose(translate(-args[1], -args[2])), nil
		}
		return Transform{}, apperr.New(apperr.CodeGeometry, "rotate wants 1 or 3 arguments, got %d", len(args))
	case "skewX":
		if len(args) != 1 {
			return Transform{}, apperr.New(apperr.CodeGeometry, "skewX wants 1 argument, got %d", len(args))
		}
		return skewX(args[0]), nil
	case "skewY":
		if len(args) != 1 {
			return Transform{}, apperr.New(apperr.CodeGeometry, "skewY wants 1 argument, got %d", len(args))
		}
		return skewY(args[0]), nil
	default:
		return Transform{}, apperr.New(apperr.CodeGeometry, "unsupported transform %q", name)
	}
}
