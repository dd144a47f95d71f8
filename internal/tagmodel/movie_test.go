package tagmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMovie(t *testing.T) *Movie {
	t.Helper()
	root, err := FromJSON([]byte(`{
		"header": {"frameRate": 30},
		"tags": [
			{"type": "define-shape", "id": 3, "bounds": {"xMin": 0, "xMax": 100, "yMin": 0, "yMax": 100}},
			{"type": "set-background-color", "backgroundColor": {"r": 255, "g": 255, "b": 255}}
		]
	}`))
	require.NoError(t, err)
	m, err := MovieFromValue(root)
	require.NoError(t, err)
	return m
}

func TestMovieFromValue(t *testing.T) {
	m := testMovie(t)

	require.Len(t, m.Tags, 2)
	assert.Equal(t, "define-shape", m.Tags[0].Type)
	assert.Equal(t, "set-background-color", m.Tags[1].Type)

	// The type discriminator is lifted out of the body.
	_, present := m.Tags[0].Body["type"]
	assert.False(t, present)

	id, ok := m.Tags[0].ID("id")
	require.True(t, ok)
	assert.Equal(t, int64(3), id)

	_, ok = m.Tags[1].ID("id")
	assert.False(t, ok)
}

func TestMovieFromValueErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"root not object", `[1, 2]`},
		{"missing header", `{"tags": []}`},
		{"missing tags", `{"header": {}}`},
		{"tag not object", `{"header": {}, "tags": [42]}`},
		{"tag without type", `{"header": {}, "tags": [{"id": 1}]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := FromJSON([]byte(tc.input))
			require.NoError(t, err)
			_, err = MovieFromValue(root)
			assert.Error(t, err)
		})
	}
}

func TestMovieValueRoundTrip(t *testing.T) {
	m := testMovie(t)

	out, err := Marshal(m.Value())
	require.NoError(t, err)
	m2, err := MovieFromValue(mustFromJSON(t, out))
	require.NoError(t, err)

	assert.True(t, Equal(m.Value(), m2.Value()))
}

func TestMovieCloneIsIndependent(t *testing.T) {
	m := testMovie(t)
	cp := m.Clone()

	cp.Tags[0].Body["id"] = NewInt(99)
	cp.Header["frameRate"] = NewInt(60)

	id, _ := m.Tags[0].ID("id")
	assert.Equal(t, int64(3), id)
	assert.Equal(t, Number("30"), m.Header["frameRate"])
}

func TestMovieCopyFrom(t *testing.T) {
	m := testMovie(t)
	staged := m.Clone()
	staged.Tags = staged.Tags[:1]
	staged.Header["frameRate"] = NewInt(24)

	m.CopyFrom(staged)

	assert.Len(t, m.Tags, 1)
	assert.Equal(t, Number("24"), m.Header["frameRate"])
}

func mustFromJSON(t *testing.T, data []byte) Value {
	t.Helper()
	v, err := FromJSON(data)
	require.NoError(t, err)
	return v
}
