package vector

import (
	"strconv"
	"strings"

	"github.com/modkit/swfpatch/internal/apperr"
)

// SegmentKind discriminates path segment commands.
type SegmentKind int

const (
	// SegmentLine is a straight segment to To.
	SegmentLine SegmentKind = iota + 1
	// SegmentCubic is a cubic curve through controls C1 and C2 to To.
	SegmentCubic
)

// Segment is one path segment command with absolute coordinates.
type Segment struct {
	Kind SegmentKind
	C1   Point
	C2   Point
	To   Point
}

// subpath is one drawable run between movetos, still in user space.
type subpath struct {
	start  Point
	segs   []Segment
	closed bool
}

// parsePathData decodes an SVG path data string into subpaths. Quadratic
// segments are elevated to cubics so downstream only sees move/line/cubic.
// Elliptical arcs are unsupported.
func parsePathData(d string) ([]subpath, error) {
	p := &pathScanner{src: d}
	var (
		out      []subpath
		cur      subpath
		open     bool
		pos      Point
		prevCube *Point // last cubic control, for S
		prevQuad *Point // last quadratic control, for T
	)

	flush := func() {
		if open && len(cur.segs) > 0 {
			out = append(out, cur)
		}
		open = false
	}

	for {
		cmd, ok := p.nextCommand()
		if !ok {
			break
		}
		rel := cmd >= 'a' && cmd <= 'z'

		switch cmd {
		case 'M', 'm':
			first := true
			for p.hasNumber() {
				pt, err := p.point()
				if err != nil {
					return nil, err
				}
				if rel {
					pt = Point{pos.X + pt.X, pos.Y + pt.Y}
				}
				if first {
					flush()
					cur = subpath{start: pt}
					open = true
					pos = pt
					first = false
				} else {
					// Extra pairs are implicit linetos.
					cur.segs = append(cur.segs, Segment{Kind: SegmentLine, To: pt})
					pos = pt
				}
			}
			if first {
				return nil, apperr.New(apperr.CodeGeometry, "moveto without coordinates")
			}
			prevCube, prevQuad = nil, nil

		case 'L', 'l':
			for p.hasNumber() {
				pt, err := p.point()
				if err != nil {
					return nil, err
				}
				if rel {
					pt = Point{pos.X + pt.X, pos.Y + pt.Y}
				}
				cur.segs = append(cur.segs, Segment{Kind: SegmentLine, To: pt})
				pos = pt
			}
			prevCube, prevQuad = nil, nil

		case 'H', 'h':
			for p.hasNumber() {
				x, err := p.number()
				if err != nil {
					return nil, err
				}
				if rel {
					x += pos.X
				}
				pt := Point{x, pos.Y}
				cur.segs = append(cur.segs, Segment{Kind: SegmentLine, To: pt})
				pos = pt
			}
			prevCube, prevQuad = nil, nil

		case 'V', 'v':
			for p.hasNumber() {
				y, err := p.number()
				if err != nil {
					return nil, err
				}
				if rel {
					y += pos.Y
				}
				pt := Point{pos.X, y}
				cur.segs = append(cur.segs, Segment{Kind: SegmentLine, To: pt})
				pos = pt
			}
			prevCube, prevQuad = nil, nil

		case 'C', 'c':
			for p.hasNumber() {
				c1, err := p.point()
				if err != nil {
					return nil, err
				}
				c2, err := p.point()
				if err != nil {
					return nil, err
				}
				to, err := p.point()
				if err != nil {
					return nil, err
				}
				if rel {
					c1 = Point{pos.X + c1.X, pos.Y + c1.Y}
					c2 = Point{pos.X + c2.X, pos.Y + c2.Y}
					to = Point{pos.X + to.X, pos.Y + to.Y}
				}
				cur.segs = append(cur.segs, Segment{Kind: SegmentCubic, C1: c1, C2: c2, To: to})
				pos = to
				c2c := c2
				prevCube, prevQuad = &c2c, nil
			}

		case 'S', 's':
			for p.hasNumber() {
				c2, err := p.point()
				if err != nil {
					return nil, err
				}
				to, err := p.point()
				if err != nil {
					return nil, err
				}
				if rel {
					c2 = Point{pos.X + c2.X, pos.Y + c2.Y}
					to = Point{pos.X + to.X, pos.Y + to.Y}
				}
				c1 := pos
				if prevCube != nil {
					c1 = Point{2*pos.X - prevCube.X, 2*pos.Y - prevCube.Y}
				}
				cur.segs = append(cur.segs, Segment{Kind: SegmentCubic, C1: c1, C2: c2, To: to})
				pos = to
				c2c := c2
				prevCube, prevQuad = &c2c, nil
			}

		case 'Q', 'q':
			for p.hasNumber() {
				q, err := p.point()
				if err != nil {
					return nil, err
				}
				to, err := p.point()
				if err != nil {
					return nil, err
				}
				if rel {
					q = Point{pos.X + q.X, pos.Y + q.Y}
					to = Point{pos.X + to.X, pos.Y + to.Y}
				}
				cur.segs = append(cur.segs, quadToCubic(pos, q, to))
				pos = to
				qc := q
				prevQuad, prevCube = &qc, nil
			}

		case 'T', 't':
			for p.hasNumber() {
				to, err := p.point()
				if err != nil {
					return nil, err
				}
				if rel {
					to = Point{pos.X + to.X, pos.Y + to.Y}
				}
				q := pos
				if prevQuad != nil {
					q = Point{2*pos.X - prevQuad.X, 2*pos.Y - prevQuad.Y}
				}
				cur.segs = append(cur.segs, quadToCubic(pos, q, to))
				pos = to
				qc := q
				prevQuad, prevCube = &qc, nil
			}

		case 'Z', 'z':
			if open {
				cur.closed = true
				out = append(out, cur)
				open = false
				pos = cur.start
				// Drawing commands after a close continue from the
				// subpath start.
				cur = subpath{start: pos}
				open = true
			}
			prevCube, prevQuad = nil, nil

		case 'A', 'a':
			return nil, apperr.New(apperr.CodeGeometry, "elliptical arcs are not supported")

		default:
			return nil, apperr.New(apperr.CodeGeometry, "unknown path command %q", string(cmd))
		}
	}

	flush()
	return out, nil
}

// quadToCubic elevates a quadratic curve to an exactly equivalent cubic.
func quadToCubic(from, ctrl, to Point) Segment {
	return Segment{
		Kind: SegmentCubic,
		C1:   Point{from.X + 2*(ctrl.X-from.X)/3, from.Y + 2*(ctrl.Y-from.Y)/3},
		C2:   Point{to.X + 2*(ctrl.X-to.X)/3, to.Y + 2*(ctrl.Y-to.Y)/3},
		To:   to,
	}
}

// pathScanner tokenizes path data: single-letter commands interleaved with
// number lists separated by whitespace or commas.
type pathScanner struct {
	src string
	i   int
}

func (p *pathScanner) skipSeparators() {
	for p.i < len(p.src) {
		switch p.src[p.i] {
		case ' ', '\t', '\n', '\r', ',':
			p.i++
		default:
			return
		}
	}
}

func (p *pathScanner) nextCommand() (byte, bool) {
	p.skipSeparators()
	if p.i >= len(p.src) {
		return 0, false
	}
	c := p.src[p.i]
	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
		p.i++
		return c, true
	}
	return 0, false
}

func (p *pathScanner) hasNumber() bool {
	p.skipSeparators()
	if p.i >= len(p.src) {
		return false
	}
	c := p.src[p.i]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func (p *pathScanner) number() (float64, error) {
	p.skipSeparators()
	start := p.i
	if p.i < len(p.src) && (p.src[p.i] == '-' || p.src[p.i] == '+') {
		p.i++
	}
	seenDot := false
	for p.i < len(p.src) {
		c := p.src[p.i]
		if c >= '0' && c <= '9' {
			p.i++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.i++
			continue
		}
		if c == 'e' || c == 'E' {
			p.i++
			if p.i < len(p.src) && (p.src[p.i] == '-' || p.src[p.i] == '+') {
				p.i++
			}
			for p.i < len(p.src) && p.src[p.i] >= '0' && p.src[p.i] <= '9' {
				p.i++
			}
		}
		break
	}
	if p.i == start {
		return 0, apperr.New(apperr.CodeGeometry, "expected number at offset %d of path data", start)
	}
	f, err := strconv.ParseFloat(p.src[start:p.i], 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeGeometry, "bad number %q in path data", p.src[start:p.i])
	}
	return f, nil
}

func (p *pathScanner) point() (Point, error) {
	x, err := p.number()
	if err != nil {
		return Point{}, err
	}
	y, err := p.number()
	if err != nil {
		return Point{}, err
	}
	return Point{x, y}, nil
}

// parseNumberList splits a comma/space separated list of floats, as found in
// transform arguments and viewBox attributes.
func parseNumberList(s string) ([]float64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ','
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
