package tagmodel

import "fmt"

// Structural type discriminators for the tag kinds this engine touches
// directly.
const (
	TypeDefineShape = "define-shape"
)

// Kind describes one supported tag kind: how patch documents name it, how it
// appears in the structural document, how instances are addressed, and the
// closed set of properties a modification may touch.
//
// The underlying format's tag set is open-ended; this engine deliberately
// supports a finite, enumerated set. Anything outside it is a schema error,
// never a best-effort pass-through.
type Kind struct {
	// Name is the tag type name used in patch documents, e.g. "DefineShapeTag".
	Name string

	// StructuralType is the discriminator in the structural document,
	// e.g. "define-shape".
	StructuralType string

	// IDKey names the body field holding the instance id. Empty for
	// singleton kinds, which are addressed by type alone.
	IDKey string

	// Properties is the closed set of top-level property keys a
	// modification may merge.
	Properties []string
}

// Singleton reports whether at most one instance of the kind exists per
// asset.
func (k *Kind) Singleton() bool {
	return k.IDKey == ""
}

// AllowsProperty reports whether key belongs to the kind's closed property
// set.
func (k *Kind) AllowsProperty(key string) bool {
	for _, p := range k.Properties {
		if p == key {
			return true
		}
	}
	return false
}

// UnknownPropertyError reports a modification property outside a kind's
// closed set.
type UnknownPropertyError struct {
	Kind string
	Key  string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("tag kind %s has no property %q", e.Kind, e.Key)
}

// Merge merges props onto body per the kind's rules: every top-level key
// must belong to the kind's property set; where both sides hold objects the
// merge recurses, otherwise the new value replaces the old wholesale
// (including arrays, which are replaced, never concatenated).
func (k *Kind) Merge(body, props Object) error {
	for _, key := range props.SortedKeys() {
		if !k.AllowsProperty(key) {
			return &UnknownPropertyError{Kind: k.Name, Key: key}
		}
		body[key] = mergeValue(body[key], props[key])
	}
	return nil
}

func mergeValue(old, new Value) Value {
	oldObj, oldOK := old.(Object)
	newObj, newOK := new.(Object)
	if oldOK && newOK {
		for _, key := range newObj.SortedKeys() {
			oldObj[key] = mergeValue(oldObj[key], newObj[key])
		}
		return oldObj
	}
	return new
}

// kinds enumerates every supported tag kind. Derived from the closed
// dispatch set of the underlying codec.
var kinds = []Kind{
	{Name: "DefineBinaryDataTag", StructuralType: "define-binary-data", IDKey: "id",
		Properties: []string{"data"}},
	{Name: "DefineBitmapTag", StructuralType: "define-bitmap", IDKey: "id",
		Properties: []string{"data"}},
	{Name: "DefineButtonTag", StructuralType: "define-button", IDKey: "id",
		Properties: []string{"records"}},
	{Name: "DefineButtonColorTransformTag", StructuralType: "define-button-color-transform", IDKey: "buttonId",
		Properties: []string{"transform"}},
	{Name: "DefineButtonSoundTag", StructuralType: "define-button-sound", IDKey: "buttonId",
		Properties: []string{"overUpToIdle", "idleToOverUp", "overUpToOverDown", "overDownToOverUp"}},
	{Name: "DefineDynamicTextTag", StructuralType: "define-dynamic-text", IDKey: "id",
		Properties: []string{"text"}},
	{Name: "DefineFontTag", StructuralType: "define-font", IDKey: "id",
		Properties: []string{"glyphs"}},
	{Name: "DefineMorphShapeTag", StructuralType: "define-morph-shape", IDKey: "id",
		Properties: []string{"shape"}},
	{Name: "DefineShapeTag", StructuralType: TypeDefineShape, IDKey: "id",
		Properties: []string{"shape", "bounds", "records", "styles", "fillStyles", "lineStyles"}},
	{Name: "DefineSpriteTag", StructuralType: "define-sprite", IDKey: "id",
		Properties: []string{"tags"}},
	{Name: "DefineTextTag", StructuralType: "define-text", IDKey: "id",
		Properties: []string{"records"}},
	{Name: "DoAbcTag", StructuralType: "do-abc",
		Properties: []string{"data"}},
	{Name: "DoActionTag", StructuralType: "do-action",
		Properties: []string{"actions"}},
	{Name: "FileAttributesTag", StructuralType: "file-attributes",
		Properties: []string{"actionScript3", "hasMetadata", "useNetwork", "useGPU"}},
	{Name: "FrameLabelTag", StructuralType: "frame-label",
		Properties: []string{"name"}},
	{Name: "PlaceObjectTag", StructuralType: "place-object",
		Properties: []string{"matrix", "colorTransform"}},
	{Name: "RemoveObjectTag", StructuralType: "remove-object",
		Properties: []string{"depth"}},
	{Name: "SetBackgroundColorTag", StructuralType: "set-background-color",
		Properties: []string{"backgroundColor"}},
	{Name: "StartSoundTag", StructuralType: "start-sound",
		Properties: []string{"soundInfo"}},
	{Name: "SymbolClassTag", StructuralType: "symbol-class",
		Properties: []string{"symbols"}},
	{Name: "DefineSceneAndFrameLabelDataTag", StructuralType: "define-scene-and-frame-label-data",
		Properties: []string{"scenes", "labels"}},
}

var (
	kindsByName       = map[string]*Kind{}
	kindsByStructural = map[string]*Kind{}
)

func init() {
	for i := range kinds {
		k := &kinds[i]
		kindsByName[k.Name] = k
		kindsByStructural[k.StructuralType] = k
	}
}

// LookupKind resolves a patch-document tag type name. Returns nil for
// unsupported kinds.
func LookupKind(name string) *Kind {
	return kindsByName[name]
}

// KindForStructural resolves a structural type discriminator. Returns nil
// for tags the engine does not model.
func KindForStructural(structuralType string) *Kind {
	return kindsByStructural[structuralType]
}
