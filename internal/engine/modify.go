package engine

import (
	"errors"

	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/patchdoc"
	"github.com/modkit/swfpatch/internal/tagmodel"
)

// applyModifications runs the generic modification pass in document order.
// Each instruction locates its tag by (kind, id), or by kind alone for
// singleton kinds, and merges its properties through the kind's closed
// merge function.
func applyModifications(movie *tagmodel.Movie, mods []patchdoc.TagModification) error {
	for i := range mods {
		if err := applyModification(movie, i, &mods[i]); err != nil {
			return err
		}
	}
	return nil
}

func applyModification(movie *tagmodel.Movie, idx int, mod *patchdoc.TagModification) error {
	kind := tagmodel.LookupKind(mod.Tag)
	if kind == nil {
		return apperr.New(apperr.CodeSchema,
			"modification %d: unsupported tag type %q", idx, mod.Tag)
	}

	var tag *tagmodel.Tag
	switch {
	case kind.Singleton():
		if mod.ID != nil {
			return apperr.New(apperr.CodeSchema,
				"modification %d: tag type %q is a singleton and takes no id",
				idx, mod.Tag).WithID(*mod.ID)
		}
		tag = findSingleton(movie, kind)
		if tag == nil {
			return apperr.New(apperr.CodeReference,
				"modification %d: no %q tag in structure", idx, mod.Tag)
		}
	default:
		if mod.ID == nil {
			return apperr.New(apperr.CodeSchema,
				"modification %d: tag type %q requires an id", idx, mod.Tag)
		}
		found, foundKind := findByID(movie, kind, *mod.ID)
		if found == nil {
			return apperr.New(apperr.CodeReference,
				"modification %d: no tag with this id in structure", idx).WithID(*mod.ID)
		}
		if foundKind != kind {
			return apperr.New(apperr.CodeTypeMismatch,
				"modification %d: tag is %q, document says %q",
				idx, foundKind.Name, mod.Tag).WithID(*mod.ID)
		}
		tag = found
	}

	if err := kind.Merge(tag.Body, mod.Properties); err != nil {
		var unknown *tagmodel.UnknownPropertyError
		if errors.As(err, &unknown) {
			e := apperr.New(apperr.CodeSchema, "modification %d: %s", idx, unknown.Error())
			if mod.ID != nil {
				e = e.WithID(*mod.ID)
			}
			return e
		}
		return err
	}
	return nil
}

// findSingleton returns the first tag of a singleton kind.
func findSingleton(movie *tagmodel.Movie, kind *tagmodel.Kind) *tagmodel.Tag {
	for _, t := range movie.Tags {
		if t.Type == kind.StructuralType {
			return t
		}
	}
	return nil
}

// findByID resolves an id within the id-carrying tag namespace. An exact
// (kind, id) match wins; otherwise any tag holding the id is returned with
// its discovered kind so the caller can report the mismatch.
func findByID(movie *tagmodel.Movie, want *tagmodel.Kind, id int64) (*tagmodel.Tag, *tagmodel.Kind) {
	var fallback *tagmodel.Tag
	var fallbackKind *tagmodel.Kind
	for _, t := range movie.Tags {
		k := tagmodel.KindForStructural(t.Type)
		if k == nil || k.Singleton() {
			continue
		}
		tagID, ok := t.ID(k.IDKey)
		if !ok || tagID != id {
			continue
		}
		if k == want {
			return t, k
		}
		if fallback == nil {
			fallback = t
			fallbackKind = k
		}
	}
	return fallback, fallbackKind
}
