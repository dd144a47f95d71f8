package engine

import (
	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/tagmodel"
)

// applyTransparency forces the fill alpha channels of each listed shape to
// zero, leaving geometry and all other styling untouched. Every fill the
// shape carries is affected: the initial styles and any replacement styles
// introduced by style-change records.
func applyTransparency(movie *tagmodel.Movie, ids []int64) error {
	for _, id := range ids {
		tag := findShapeTag(movie, id)
		if tag == nil {
			return apperr.New(apperr.CodeReference, "transparency target not found").WithID(id)
		}
		shapeBody, ok := tag.Body["shape"].(tagmodel.Object)
		if !ok {
			continue
		}
		if styles, ok := shapeBody["initialStyles"].(tagmodel.Object); ok {
			zeroFillAlpha(styles["fill"])
		}
		if records, ok := shapeBody["records"].(tagmodel.Array); ok {
			for _, rec := range records {
				recObj, ok := rec.(tagmodel.Object)
				if !ok {
					continue
				}
				if newStyles, ok := recObj["newStyles"].(tagmodel.Object); ok {
					zeroFillAlpha(newStyles["fill"])
				}
			}
		}
	}
	return nil
}

// zeroFillAlpha zeroes the alpha of every color object reachable inside a
// fill style list. The recursion covers solid fills and gradient color
// stops alike without knowing each fill layout.
func zeroFillAlpha(fills tagmodel.Value) {
	arr, ok := fills.(tagmodel.Array)
	if !ok {
		return
	}
	for _, f := range arr {
		zeroAlphaChannels(f)
	}
}

// zeroAlphaChannels zeroes the "a" channel of objects under a "color" key
// only. Other fields that happen to be named "a", like matrix coefficients,
// stay intact.
func zeroAlphaChannels(v tagmodel.Value) {
	switch val := v.(type) {
	case tagmodel.Object:
		for _, k := range val.SortedKeys() {
			if k == "color" {
				if c, ok := val[k].(tagmodel.Object); ok {
					if _, ok := c["a"].(tagmodel.Number); ok {
						c["a"] = tagmodel.NewInt(0)
					}
					continue
				}
			}
			zeroAlphaChannels(val[k])
		}
	case tagmodel.Array:
		for _, elem := range val {
			zeroAlphaChannels(elem)
		}
	}
}
