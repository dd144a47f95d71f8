package shape

import (
	"math"

	"github.com/modkit/swfpatch/internal/vector"
)

// quad is one quadratic curve segment in absolute coordinates.
type quad struct {
	Ctrl vector.Point
	To   vector.Point
}

// maxSplitDepth bounds the subdivision recursion; 2^16 quads per cubic is
// far beyond any tolerance in practice.
const maxSplitDepth = 16

// deviationSamples is the number of parameter points checked per candidate.
const deviationSamples = 8

// cubicToQuads approximates a cubic curve with quadratic segments whose
// sampled deviation from the cubic stays within tol. A single quadratic is
// tried first; when its deviation exceeds tol the cubic is split at its
// midpoint and both halves are converted recursively.
func cubicToQuads(p0, c1, c2, p3 vector.Point, tol float64) []quad {
	return appendQuads(nil, p0, c1, c2, p3, tol, 0)
}

func appendQuads(out []quad, p0, c1, c2, p3 vector.Point, tol float64, depth int) []quad {
	ctrl := quadControl(p0, c1, c2, p3)
	if depth >= maxSplitDepth || quadDeviation(p0, c1, c2, p3, ctrl) <= tol {
		return append(out, quad{Ctrl: ctrl, To: p3})
	}
	l0, l1, l2, l3, r0, r1, r2, r3 := splitCubic(p0, c1, c2, p3, 0.5)
	out = appendQuads(out, l0, l1, l2, l3, tol, depth+1)
	return appendQuads(out, r0, r1, r2, r3, tol, depth+1)
}

// quadControl picks the least-squares quadratic control point for a cubic:
// (3(c1+c2) - (p0+p3)) / 4.
func quadControl(p0, c1, c2, p3 vector.Point) vector.Point {
	return vector.Point{
		X: (3*(c1.X+c2.X) - (p0.X + p3.X)) / 4,
		Y: (3*(c1.Y+c2.Y) - (p0.Y + p3.Y)) / 4,
	}
}

// quadDeviation measures the maximum distance between the cubic and the
// candidate quadratic at sampled parameters.
func quadDeviation(p0, c1, c2, p3, ctrl vector.Point) float64 {
	worst := 0.0
	for i := 1; i <= deviationSamples; i++ {
		t := float64(i) / float64(deviationSamples+1)
		c := cubicAt(p0, c1, c2, p3, t)
		q := quadAt(p0, ctrl, p3, t)
		d := math.Hypot(c.X-q.X, c.Y-q.Y)
		if d > worst {
			worst = d
		}
	}
	return worst
}

func cubicAt(p0, c1, c2, p3 vector.Point, t float64) vector.Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return vector.Point{
		X: a*p0.X + b*c1.X + c*c2.X + d*p3.X,
		Y: a*p0.Y + b*c1.Y + c*c2.Y + d*p3.Y,
	}
}

func quadAt(p0, ctrl, p2 vector.Point, t float64) vector.Point {
	u := 1 - t
	a := u * u
	b := 2 * u * t
	c := t * t
	return vector.Point{
		X: a*p0.X + b*ctrl.X + c*p2.X,
		Y: a*p0.Y + b*ctrl.Y + c*p2.Y,
	}
}

// splitCubic subdivides a cubic at parameter t via de Casteljau, returning
// both halves' control polygons.
func splitCubic(p0, c1, c2, p3 vector.Point, t float64) (l0, l1, l2, l3, r0, r1, r2, r3 vector.Point) {
	lerp := func(a, b vector.Point) vector.Point {
		return vector.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
	}
	ab := lerp(p0, c1)
	bc := lerp(c1, c2)
	cd := lerp(c2, p3)
	abc := lerp(ab, bc)
	bcd := lerp(bc, cd)
	mid := lerp(abc, bcd)
	return p0, ab, abc, mid, mid, bcd, cd, p3
}
