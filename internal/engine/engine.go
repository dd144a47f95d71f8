// Package engine applies a parsed patch document to a tag structure.
//
// Application order is fixed: the transparency pass, then the replacement
// pass, then the generic modification pass. Transparency and replacement are
// coarse visual overrides; generic modifications run last so they can refine
// what the earlier passes produced (e.g. re-tint a replaced shape). A shape
// id listed both in the transparency set and in a modification therefore
// ends up with the modification's result.
package engine

import (
	"errors"
	"log/slog"

	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/patchdoc"
	"github.com/modkit/swfpatch/internal/shape"
	"github.com/modkit/swfpatch/internal/tagmodel"
	"github.com/modkit/swfpatch/internal/vector"
)

// Options configures one apply run.
type Options struct {
	// Geometry controls curve tolerance and bounds padding for replacement
	// shapes.
	Geometry shape.Options

	// LoadVector overrides vector asset loading. Nil means read from disk.
	LoadVector func(path string) (*vector.Document, error)
}

func (o Options) loadVector(path string) (*vector.Document, error) {
	if o.LoadVector != nil {
		return o.LoadVector(path)
	}
	return vector.Import(path)
}

// Apply mutates movie in place per the document and returns the same movie
// for chaining. The whole call is atomic: passes are staged on a clone and
// committed only on full success, so the first error leaves the caller's
// structure untouched.
func Apply(movie *tagmodel.Movie, doc *patchdoc.Doc, opts Options) (*tagmodel.Movie, error) {
	staged := movie.Clone()

	if err := applyTransparency(staged, doc.Transparent); err != nil {
		return nil, err
	}
	if err := applyReplacements(staged, doc, opts); err != nil {
		return nil, err
	}
	if doc.Bounds != nil {
		applyBoundsOverride(staged, doc.Bounds)
	}
	if err := applyModifications(staged, doc.Modifications); err != nil {
		return nil, err
	}

	movie.CopyFrom(staged)
	slog.Debug("patch applied",
		"transparent", len(doc.Transparent),
		"replacements", len(doc.Replacements),
		"modifications", len(doc.Modifications))
	return movie, nil
}

// findShapeTag locates the shape-category tag with the given id.
func findShapeTag(movie *tagmodel.Movie, id int64) *tagmodel.Tag {
	for _, t := range movie.Tags {
		if t.Type != tagmodel.TypeDefineShape {
			continue
		}
		if tagID, ok := t.ID("id"); ok && tagID == id {
			return t
		}
	}
	return nil
}

// applyBoundsOverride replaces the movie header's frame size.
func applyBoundsOverride(movie *tagmodel.Movie, b *patchdoc.BoundsOverride) {
	frame, ok := movie.Header["frameSize"].(tagmodel.Object)
	if !ok {
		frame = tagmodel.Object{}
		movie.Header["frameSize"] = frame
	}
	frame["xMin"] = tagmodel.NewInt(b.X.Min)
	frame["xMax"] = tagmodel.NewInt(b.X.Max)
	frame["yMin"] = tagmodel.NewInt(b.Y.Min)
	frame["yMax"] = tagmodel.NewInt(b.Y.Max)
}

// applyReplacements runs the replacement pass: each entry loads its vector
// asset, builds a shape record per target id, and overwrites the existing
// record. Later entries targeting an already-replaced id overwrite again.
func applyReplacements(movie *tagmodel.Movie, doc *patchdoc.Doc, opts Options) error {
	for i, rep := range doc.Replacements {
		src := rep.SourcePath(doc.Dir)
		vdoc, err := opts.loadVector(src)
		if err != nil {
			return err
		}
		for _, id := range rep.Shapes {
			tag := findShapeTag(movie, id)
			if tag == nil {
				return apperr.New(apperr.CodeReference,
					"replacement %d: shape not found", i).WithID(id).WithPath(src)
			}
			built, err := shape.Build(vdoc, id, opts.Geometry)
			if err != nil {
				var ae *apperr.Error
				if asAppErr(err, &ae) {
					return ae.WithID(id).WithPath(src)
				}
				return err
			}
			// Only the id carries over; the previous record is gone.
			tag.Body = built.TagBody()
		}
	}
	return nil
}

func asAppErr(err error, target **apperr.Error) bool {
	return errors.As(err, target)
}
