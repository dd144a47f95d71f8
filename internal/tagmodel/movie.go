package tagmodel

import "fmt"

// Movie is the structural representation of one asset: a header plus an
// ordered list of tags. It is owned exclusively by the pipeline run that
// decoded it and is mutated in place by the applicator.
type Movie struct {
	Header Object
	Tags   []*Tag
}

// Tag is one typed, addressable record. Type is the structural discriminator
// (e.g. "define-shape"); Body holds every other field of the record.
type Tag struct {
	Type string
	Body Object
}

// ID returns the tag's identifier under the given key, or false when the
// body carries none.
func (t *Tag) ID(idKey string) (int64, bool) {
	if idKey == "" {
		return 0, false
	}
	num, ok := t.Body[idKey].(Number)
	if !ok {
		return 0, false
	}
	id, err := num.Int()
	if err != nil {
		return 0, false
	}
	return id, true
}

// MovieFromValue builds a Movie from a decoded structural document. The root
// must be an object with a "header" object and a "tags" array of objects,
// each carrying a string "type" discriminator.
func MovieFromValue(root Value) (*Movie, error) {
	doc, ok := root.(Object)
	if !ok {
		return nil, fmt.Errorf("structural document root is not an object")
	}
	header, ok := doc["header"].(Object)
	if !ok {
		return nil, fmt.Errorf("structural document has no header object")
	}
	rawTags, ok := doc["tags"].(Array)
	if !ok {
		return nil, fmt.Errorf("structural document has no tags array")
	}

	movie := &Movie{
		Header: header,
		Tags:   make([]*Tag, 0, len(rawTags)),
	}
	for i, raw := range rawTags {
		body, ok := raw.(Object)
		if !ok {
			return nil, fmt.Errorf("tag %d is not an object", i)
		}
		typ, ok := body["type"].(String)
		if !ok {
			return nil, fmt.Errorf("tag %d has no type discriminator", i)
		}
		rest := make(Object, len(body)-1)
		for k, v := range body {
			if k != "type" {
				rest[k] = v
			}
		}
		movie.Tags = append(movie.Tags, &Tag{Type: string(typ), Body: rest})
	}
	return movie, nil
}

// Value converts the Movie back into a structural document tree.
func (m *Movie) Value() Value {
	tags := make(Array, len(m.Tags))
	for i, t := range m.Tags {
		body := make(Object, len(t.Body)+1)
		for k, v := range t.Body {
			body[k] = v
		}
		body["type"] = String(t.Type)
		tags[i] = body
	}
	return Object{
		"header": m.Header,
		"tags":   tags,
	}
}

// Clone returns a deep copy of the movie, sharing no state with the
// original. The applicator stages mutations on a clone and commits only on
// full success.
func (m *Movie) Clone() *Movie {
	out := &Movie{
		Header: Clone(m.Header).(Object),
		Tags:   make([]*Tag, len(m.Tags)),
	}
	for i, t := range m.Tags {
		out.Tags[i] = &Tag{Type: t.Type, Body: Clone(t.Body).(Object)}
	}
	return out
}

// CopyFrom replaces the receiver's contents with those of src. Used to
// commit a staged clone back into the caller's movie without changing its
// identity.
func (m *Movie) CopyFrom(src *Movie) {
	m.Header = src.Header
	m.Tags = src.Tags
}
