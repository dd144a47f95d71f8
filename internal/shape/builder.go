// Package shape converts imported path primitives into native shape
// records: fill and line styles, a quadratic edge list, and padded bounds.
package shape

import (
	"math"

	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/vector"
)

// DefaultTolerance is the default maximum deviation, in document units,
// allowed when approximating cubics with quadratics.
const DefaultTolerance = 0.25

// Options configures the geometry conversion.
type Options struct {
	// Tolerance is the maximum curve-approximation deviation. Values <= 0
	// fall back to DefaultTolerance.
	Tolerance float64

	// Padding expands the computed bounds uniformly on every side.
	Padding int64
}

func (o Options) tolerance() float64 {
	if o.Tolerance <= 0 {
		return DefaultTolerance
	}
	return o.Tolerance
}

// Vec is an integer coordinate pair in shape-record units.
type Vec struct {
	X int64
	Y int64
}

// Rect is a shape bounding box.
type Rect struct {
	XMin int64
	XMax int64
	YMin int64
	YMax int64
}

// FillStyle is one solid fill region color.
type FillStyle struct {
	R, G, B, A uint8
}

// LineStyle is one stroke style.
type LineStyle struct {
	Width      int64
	R, G, B, A uint8
}

// StyleChange starts a new edge run: it moves the pen and selects the fill
// and line styles (1-based indices) for the edges that follow.
type StyleChange struct {
	MoveTo    *Vec
	LeftFill  *int64
	LineStyle *int64
}

// Edge is a straight or quadratic-curve segment. Delta and ControlDelta are
// relative to the edge's starting point; a nil ControlDelta means straight.
type Edge struct {
	Delta        Vec
	ControlDelta *Vec
}

// Element is one entry of a shape's record list: exactly one of Style or
// Edge is set.
type Element struct {
	Style *StyleChange
	Edge  *Edge
}

// Shape is the native shape record to install. Only ID carries over from
// the replaced record; everything else is built fresh.
type Shape struct {
	ID         int64
	Bounds     Rect
	FillStyles []FillStyle
	LineStyles []LineStyle
	Records    []Element
}

// Build converts a vector document into one shape record for targetID.
// Primitives sharing a resolved fill color share one fill style; stroke-only
// primitives contribute line-style edges.
func Build(doc *vector.Document, targetID int64, opts Options) (*Shape, error) {
	b := &builder{
		opts:  opts,
		shape: &Shape{ID: targetID},
		fills: map[FillStyle]int64{},
		lines: map[LineStyle]int64{},
	}
	for i := range doc.Paths {
		if err := b.addPath(&doc.Paths[i]); err != nil {
			return nil, err
		}
	}
	b.finishBounds()
	return b.shape, nil
}

type builder struct {
	opts  Options
	shape *Shape
	fills map[FillStyle]int64
	lines map[LineStyle]int64

	hasBounds              bool
	minX, maxX, minY, maxY int64
}

func (b *builder) fillIndex(p *vector.Paint) int64 {
	if p == nil {
		return 0
	}
	style := FillStyle{R: p.R, G: p.G, B: p.B, A: p.A}
	if idx, ok := b.fills[style]; ok {
		return idx
	}
	b.shape.FillStyles = append(b.shape.FillStyles, style)
	idx := int64(len(b.shape.FillStyles))
	b.fills[style] = idx
	return idx
}

func (b *builder) lineIndex(s *vector.Stroke) int64 {
	if s == nil {
		return 0
	}
	style := LineStyle{
		Width: roundCoord(s.Width),
		R:     s.Paint.R, G: s.Paint.G, B: s.Paint.B, A: s.Paint.A,
	}
	if idx, ok := b.lines[style]; ok {
		return idx
	}
	b.shape.LineStyles = append(b.shape.LineStyles, style)
	idx := int64(len(b.shape.LineStyles))
	b.lines[style] = idx
	return idx
}

func (b *builder) addPath(p *vector.Path) error {
	if err := checkFinite(p.Start); err != nil {
		return err
	}

	fill := b.fillIndex(p.Fill)
	line := b.lineIndex(p.Stroke)

	start := roundPoint(p.Start)
	change := &StyleChange{MoveTo: &Vec{X: start.X, Y: start.Y}}
	if fill > 0 {
		f := fill
		change.LeftFill = &f
	}
	if line > 0 {
		l := line
		change.LineStyle = &l
	}
	b.shape.Records = append(b.shape.Records, Element{Style: change})
	b.grow(start)

	cur := p.Start
	curInt := start
	for _, seg := range p.Segments {
		switch seg.Kind {
		case vector.SegmentLine:
			if err := checkFinite(seg.To); err != nil {
				return err
			}
			next := roundPoint(seg.To)
			b.emitEdge(curInt, next, nil)
			cur, curInt = seg.To, next

		case vector.SegmentCubic:
			if err := checkFinite(seg.C1); err != nil {
				return err
			}
			if err := checkFinite(seg.C2); err != nil {
				return err
			}
			if err := checkFinite(seg.To); err != nil {
				return err
			}
			for _, q := range cubicToQuads(cur, seg.C1, seg.C2, seg.To, b.opts.tolerance()) {
				ctrl := roundPoint(q.Ctrl)
				next := roundPoint(q.To)
				b.emitEdge(curInt, next, &ctrl)
				curInt = next
			}
			cur = seg.To

		default:
			return apperr.New(apperr.CodeGeometry, "unknown segment kind %d", seg.Kind)
		}
	}

	if p.Closed {
		// Close the outline only when there is an actual gap.
		if dx, dy := cur.X-p.Start.X, cur.Y-p.Start.Y; math.Hypot(dx, dy) > 0.5 {
			b.emitEdge(curInt, start, nil)
		}
	}
	return nil
}

// emitEdge appends one edge from a to b with an optional control point, all
// in absolute integer coordinates.
func (b *builder) emitEdge(from, to Vec, ctrl *Vec) {
	edge := &Edge{Delta: Vec{X: to.X - from.X, Y: to.Y - from.Y}}
	if ctrl != nil {
		edge.ControlDelta = &Vec{X: ctrl.X - from.X, Y: ctrl.Y - from.Y}
		b.grow(*ctrl)
	}
	b.shape.Records = append(b.shape.Records, Element{Edge: edge})
	b.grow(to)
}

func (b *builder) grow(v Vec) {
	if !b.hasBounds {
		b.minX, b.maxX, b.minY, b.maxY = v.X, v.X, v.Y, v.Y
		b.hasBounds = true
		return
	}
	b.minX = min(b.minX, v.X)
	b.maxX = max(b.maxX, v.X)
	b.minY = min(b.minY, v.Y)
	b.maxY = max(b.maxY, v.Y)
}

func (b *builder) finishBounds() {
	if !b.hasBounds {
		b.shape.Bounds = Rect{}
		return
	}
	pad := b.opts.Padding
	b.shape.Bounds = Rect{
		XMin: b.minX - pad,
		XMax: b.maxX + pad,
		YMin: b.minY - pad,
		YMax: b.maxY + pad,
	}
}

func roundCoord(f float64) int64 {
	return int64(math.Round(f))
}

func roundPoint(p vector.Point) Vec {
	return Vec{X: roundCoord(p.X), Y: roundCoord(p.Y)}
}

func checkFinite(p vector.Point) error {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
		return apperr.New(apperr.CodeGeometry, "non-finite coordinate in path")
	}
	return nil
}
