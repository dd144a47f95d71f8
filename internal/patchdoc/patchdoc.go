// Package patchdoc parses and validates patch documents: the declarative
// description of modifications to apply to one asset.
//
// Validation is two-staged. The document is first unified against a closed
// CUE schema, which rejects unknown keys and shape errors with positioned
// messages, then decoded into immutable Go structs.
package patchdoc

import (
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	json "github.com/goccy/go-json"

	"github.com/modkit/swfpatch/internal/apperr"
	"github.com/modkit/swfpatch/internal/tagmodel"
)

// schema is the closed patch-document schema. Definitions are closed
// structs, so any unknown key fails unification. The swf section and its
// modifications list are required; an absent list is a schema error, not an
// implicit empty one. properties needs the "!" marker: a plain open struct
// field unifies with an omitted key and still validates as concrete.
const schema = `
#Document: {
	transparent?: [...#ID]
	file?: [...#ShapeSource]
	swf: #Swf
}

#ID: int & >=0 & <=65535

#ShapeSource: {
	source: string & !=""
	shapes: [...#ID]
}

#Swf: {
	bounds?: #Bounds
	modifications: [...#Modification]
}

#Bounds: {
	x: #Range
	y: #Range
}

#Range: {
	min: int
	max: int
}

#Modification: {
	tag: string & !=""
	id?: #ID
	properties!: {...}
}
`

// Doc is one parsed patch document. Immutable after parse.
type Doc struct {
	// Dir is the directory containing the document's own file. Replacement
	// sources resolve against it, never against the working directory.
	Dir string

	// Transparent lists shape ids whose fills are forced fully transparent.
	Transparent []int64

	// Replacements lists vector-sourced shape replacements, in document
	// order.
	Replacements []Replacement

	// Bounds optionally overrides the movie's frame size.
	Bounds *BoundsOverride

	// Modifications lists property merges, in application order.
	Modifications []TagModification
}

// Replacement maps one vector asset onto one or more target shape ids.
type Replacement struct {
	Source string
	Shapes []int64
}

// SourcePath resolves the replacement's vector asset relative to the
// document directory.
func (r Replacement) SourcePath(docDir string) string {
	if filepath.IsAbs(r.Source) {
		return r.Source
	}
	return filepath.Join(docDir, r.Source)
}

// BoundsOverride replaces the movie header's frame size.
type BoundsOverride struct {
	X Range
	Y Range
}

// Range is a min/max pair.
type Range struct {
	Min int64
	Max int64
}

// TagModification is one property-merge instruction.
type TagModification struct {
	// Tag is the tag type name, e.g. "DefineShapeTag".
	Tag string

	// ID addresses the instance. Nil only for singleton kinds.
	ID *int64

	// Properties is the untyped key/value map merged onto the tag. Kind
	// specific validation happens at apply time.
	Properties tagmodel.Object
}

type rawDoc struct {
	Transparent []int64     `json:"transparent"`
	File        []rawSource `json:"file"`
	Swf         rawSwf      `json:"swf"`
}

type rawSource struct {
	Source string  `json:"source"`
	Shapes []int64 `json:"shapes"`
}

type rawSwf struct {
	Bounds        *rawBounds `json:"bounds"`
	Modifications []rawMod   `json:"modifications"`
}

type rawBounds struct {
	X rawRange `json:"x"`
	Y rawRange `json:"y"`
}

type rawRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

type rawMod struct {
	Tag        string          `json:"tag"`
	ID         *int64          `json:"id"`
	Properties json.RawMessage `json:"properties"`
}

// Parse validates and decodes a patch document. dir is the directory
// containing the document's file. All failures are schema errors.
func Parse(data []byte, dir string) (*Doc, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	var raw rawDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, apperr.Wrap(apperr.CodeSchema, err, "decode patch document")
	}

	doc := &Doc{
		Dir:         dir,
		Transparent: raw.Transparent,
	}
	for _, src := range raw.File {
		doc.Replacements = append(doc.Replacements, Replacement{
			Source: src.Source,
			Shapes: src.Shapes,
		})
	}
	if raw.Swf.Bounds != nil {
		doc.Bounds = &BoundsOverride{
			X: Range{Min: raw.Swf.Bounds.X.Min, Max: raw.Swf.Bounds.X.Max},
			Y: Range{Min: raw.Swf.Bounds.Y.Min, Max: raw.Swf.Bounds.Y.Max},
		}
	}
	doc.Modifications = make([]TagModification, 0, len(raw.Swf.Modifications))
	for i, m := range raw.Swf.Modifications {
		props, err := parseProperties(m.Properties)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeSchema, err, "modification %d: properties", i)
		}
		doc.Modifications = append(doc.Modifications, TagModification{
			Tag:        m.Tag,
			ID:         m.ID,
			Properties: props,
		})
	}
	return doc, nil
}

// ParseFile reads and parses a patch document from disk.
func ParseFile(path string) (*Doc, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data, filepath.Dir(path))
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeIO, err, "read patch document").WithPath(path)
	}
	return data, nil
}

func parseProperties(raw json.RawMessage) (tagmodel.Object, error) {
	if len(raw) == 0 {
		return tagmodel.Object{}, nil
	}
	v, err := tagmodel.FromJSON(raw)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(tagmodel.Object)
	if !ok {
		return nil, apperr.New(apperr.CodeSchema, "properties must be an object")
	}
	return obj, nil
}

// validate unifies the document with the closed CUE schema.
func validate(data []byte) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema)
	if err := schemaVal.Err(); err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "compile document schema")
	}
	docSchema := schemaVal.LookupPath(cue.ParsePath("#Document"))
	if err := docSchema.Err(); err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "compile document schema")
	}

	expr, err := cuejson.Extract("patch.json", data)
	if err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "parse patch document")
	}
	docVal := ctx.BuildExpr(expr)
	if err := docVal.Err(); err != nil {
		return apperr.Wrap(apperr.CodeSchema, err, "parse patch document")
	}

	unified := docSchema.Unify(docVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return apperr.New(apperr.CodeSchema, "invalid patch document: %s",
			cueerrors.Details(err, nil))
	}
	return nil
}
