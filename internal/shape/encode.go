package shape

import "github.com/modkit/swfpatch/internal/tagmodel"

// TagBody encodes the shape as the body of a define-shape tag in the
// structural document format.
func (s *Shape) TagBody() tagmodel.Object {
	fills := make(tagmodel.Array, len(s.FillStyles))
	for i, f := range s.FillStyles {
		fills[i] = tagmodel.Object{
			"type":  tagmodel.String("solid"),
			"color": colorObject(f.R, f.G, f.B, f.A),
		}
	}
	lines := make(tagmodel.Array, len(s.LineStyles))
	for i, l := range s.LineStyles {
		lines[i] = tagmodel.Object{
			"width": tagmodel.NewInt(l.Width),
			"fill": tagmodel.Object{
				"type":  tagmodel.String("solid"),
				"color": colorObject(l.R, l.G, l.B, l.A),
			},
		}
	}

	records := make(tagmodel.Array, len(s.Records))
	for i, el := range s.Records {
		switch {
		case el.Style != nil:
			rec := tagmodel.Object{"type": tagmodel.String("styleChange")}
			if el.Style.MoveTo != nil {
				rec["moveTo"] = vecObject(*el.Style.MoveTo)
			}
			if el.Style.LeftFill != nil {
				rec["leftFill"] = tagmodel.NewInt(*el.Style.LeftFill)
			}
			if el.Style.LineStyle != nil {
				rec["lineStyle"] = tagmodel.NewInt(*el.Style.LineStyle)
			}
			records[i] = rec
		case el.Edge != nil:
			rec := tagmodel.Object{
				"type":  tagmodel.String("edge"),
				"delta": vecObject(el.Edge.Delta),
			}
			if el.Edge.ControlDelta != nil {
				rec["controlDelta"] = vecObject(*el.Edge.ControlDelta)
			}
			records[i] = rec
		}
	}

	return tagmodel.Object{
		"id": tagmodel.NewInt(s.ID),
		"bounds": tagmodel.Object{
			"xMin": tagmodel.NewInt(s.Bounds.XMin),
			"xMax": tagmodel.NewInt(s.Bounds.XMax),
			"yMin": tagmodel.NewInt(s.Bounds.YMin),
			"yMax": tagmodel.NewInt(s.Bounds.YMax),
		},
		"shape": tagmodel.Object{
			"initialStyles": tagmodel.Object{
				"fill": fills,
				"line": lines,
			},
			"records": records,
		},
	}
}

func colorObject(r, g, b, a uint8) tagmodel.Object {
	return tagmodel.Object{
		"r": tagmodel.NewInt(int64(r)),
		"g": tagmodel.NewInt(int64(g)),
		"b": tagmodel.NewInt(int64(b)),
		"a": tagmodel.NewInt(int64(a)),
	}
}

func vecObject(v Vec) tagmodel.Object {
	return tagmodel.Object{
		"x": tagmodel.NewInt(v.X),
		"y": tagmodel.NewInt(v.Y),
	}
}
