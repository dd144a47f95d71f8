// Package vector imports vector artwork into flat path primitives. The
// recursive walk threads the accumulated transform by value into each call;
// by the time a primitive is emitted every coordinate is absolute and no
// lazy transform survives. Only path elements carry geometry here; other
// drawables are rejected rather than silently dropped.
package vector

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/modkit/swfpatch/internal/apperr"
)

// Paint is a resolved solid fill: color plus alpha.
type Paint struct {
	R uint8
	G uint8
	B uint8
	A uint8
}

// Stroke is a resolved stroke paint with its width in document units.
type Stroke struct {
	Paint Paint
	Width float64
}

// Path is one drawable subpath with the composed transform already applied
// to every coordinate. Immutable once built.
type Path struct {
	Start    Point
	Segments []Segment
	Closed   bool
	Fill     *Paint
	Stroke   *Stroke
}

// Document is a parsed artwork asset.
type Document struct {
	Width  float64
	Height float64
	Paths  []Path
}

// Import loads and parses a vector asset from disk.
func Import(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeAsset, err, "read vector asset").WithPath(path)
	}
	doc, err := Parse(data)
	if err != nil {
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			ae = apperr.Wrap(apperr.CodeAsset, err, "parse vector asset")
		}
		return nil, ae.WithPath(path)
	}
	return doc, nil
}

// Parse decodes artwork bytes into a Document.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, apperr.New(apperr.CodeAsset, "no svg root element")
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeAsset, err, "parse artwork XML")
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return nil, apperr.New(apperr.CodeAsset, "unexpected root element %q", start.Name.Local)
		}
		return parseSVG(dec, start)
	}
}

func parseSVG(dec *xml.Decoder, root xml.StartElement) (*Document, error) {
	var widthAttr, heightAttr, viewBoxAttr string
	for _, a := range root.Attr {
		switch a.Name.Local {
		case "width":
			widthAttr = a.Value
		case "height":
			heightAttr = a.Value
		case "viewBox":
			viewBoxAttr = a.Value
		}
	}

	doc := &Document{}
	base := Identity()

	if viewBoxAttr != "" {
		vb, err := parseNumberList(viewBoxAttr)
		if err != nil || len(vb) != 4 {
			return nil, apperr.New(apperr.CodeAsset, "malformed viewBox %q", viewBoxAttr)
		}
		doc.Width, doc.Height = vb[2], vb[3]
		if vb[0] != 0 || vb[1] != 0 {
			base = translate(-vb[0], -vb[1])
		}
	}
	if widthAttr != "" {
		w, err := parseLength(widthAttr)
		if err != nil {
			return nil, err
		}
		doc.Width = w
	}
	if heightAttr != "" {
		h, err := parseLength(heightAttr)
		if err != nil {
			return nil, err
		}
		doc.Height = h
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return nil, apperr.New(apperr.CodeAsset, "artwork has no usable width/height or viewBox")
	}

	if err := walkChildren(dec, base, 1, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// skippedElements are non-rendered subtrees.
var skippedElements = map[string]bool{
	"defs": true, "symbol": true, "clipPath": true, "mask": true,
	"metadata": true, "title": true, "desc": true, "style": true,
	"pattern": true, "linearGradient": true, "radialGradient": true,
	"filter": true, "script": true,
}

// unsupportedDrawables are renderable elements the importer does not
// convert. Dropping them would silently lose geometry, so they fail hard.
var unsupportedDrawables = map[string]bool{
	"rect": true, "circle": true, "ellipse": true, "line": true,
	"polyline": true, "polygon": true, "image": true, "text": true,
	"use": true,
}

// walkChildren consumes tokens until the parent's end element, descending
// into containers with the parent transform and opacity composed in.
func walkChildren(dec *xml.Decoder, xf Transform, opacity float64, doc *Document) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return apperr.Wrap(apperr.CodeAsset, err, "parse artwork XML")
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if err := walkElement(dec, el, xf, opacity, doc); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func walkElement(dec *xml.Decoder, el xml.StartElement, xf Transform, opacity float64, doc *Document) error {
	if skippedElements[el.Name.Local] {
		return skipElement(dec)
	}
	if unsupportedDrawables[el.Name.Local] {
		return apperr.New(apperr.CodeGeometry, "unsupported drawable element <%s>", el.Name.Local)
	}

	local := xf
	childOpacity := opacity
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "transform":
			t, err := ParseTransform(a.Value)
			if err != nil {
				return err
			}
			local = local.Compose(t)
		case "opacity":
			o, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
			if err != nil {
				return apperr.New(apperr.CodeGeometry, "bad opacity %q", a.Value)
			}
			childOpacity *= o
		}
	}

	if el.Name.Local == "path" {
		if err := emitPath(el, local, childOpacity, doc); err != nil {
			return err
		}
		return skipElement(dec)
	}

	return walkChildren(dec, local, childOpacity, doc)
}

func skipElement(dec *xml.Decoder) error {
	if err := dec.Skip(); err != nil && err != io.EOF {
		return apperr.Wrap(apperr.CodeAsset, err, "parse artwork XML")
	}
	return nil
}

// emitPath flattens one path element into primitives, applying the composed
// transform to every coordinate and resolving paints to concrete colors.
func emitPath(el xml.StartElement, xf Transform, opacity float64, doc *Document) error {
	var (
		d             string
		fillAttr      string
		strokeAttr    string
		strokeWidth   = 1.0
		fillOpacity   = 1.0
		strokeOpacity = 1.0
	)
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "d":
			d = a.Value
		case "fill":
			fillAttr = a.Value
		case "stroke":
			strokeAttr = a.Value
		case "stroke-width":
			if n, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64); err == nil {
				strokeWidth = n
			}
		case "fill-opacity":
			if n, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64); err == nil {
				fillOpacity = n
			}
		case "stroke-opacity":
			if n, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64); err == nil {
				strokeOpacity = n
			}
		}
	}
	if d == "" {
		return nil
	}

	fillColor, err := parseColor(fillAttr)
	if err != nil {
		return err
	}
	strokeColor, err := parseColor(strokeAttr)
	if err != nil {
		return err
	}

	var fill *Paint
	if fillColor != nil {
		fill = &Paint{R: fillColor.R, G: fillColor.G, B: fillColor.B,
			A: opacityToAlpha(fillOpacity * opacity)}
	}
	var stroke *Stroke
	if strokeColor != nil {
		stroke = &Stroke{
			Paint: Paint{R: strokeColor.R, G: strokeColor.G, B: strokeColor.B,
				A: opacityToAlpha(strokeOpacity * opacity)},
			Width: strokeWidth,
		}
	}
	if fill == nil && stroke == nil {
		// Nothing to draw with.
		return nil
	}

	subs, err := parsePathData(d)
	if err != nil {
		return err
	}
	for _, sp := range subs {
		p := Path{
			Start:  xf.Apply(sp.start),
			Closed: sp.closed,
			Fill:   fill,
			Stroke: stroke,
		}
		p.Segments = make([]Segment, len(sp.segs))
		for i, s := range sp.segs {
			out := Segment{Kind: s.Kind, To: xf.Apply(s.To)}
			if s.Kind == SegmentCubic {
				out.C1 = xf.Apply(s.C1)
				out.C2 = xf.Apply(s.C2)
			}
			p.Segments[i] = out
		}
		doc.Paths = append(doc.Paths, p)
	}
	return nil
}

func parseLength(s string) (float64, error) {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, apperr.New(apperr.CodeAsset, "unsupported length %q", s)
	}
	return n, nil
}
