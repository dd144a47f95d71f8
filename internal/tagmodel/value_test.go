package tagmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check that every node type implements Value.
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = Number("42")
	var _ Value = String("test")
	var _ Value = Array{String("a"), Number("1")}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestFromJSONKeepsNumberText(t *testing.T) {
	v, err := FromJSON([]byte(`{"int": 42, "float": -3.5, "exp": 1e6, "big": 18446744073709551615}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, Number("42"), obj["int"])
	assert.Equal(t, Number("-3.5"), obj["float"])
	assert.Equal(t, Number("1e6"), obj["exp"])
	// Out of int64 range but still lossless as raw text.
	assert.Equal(t, Number("18446744073709551615"), obj["big"])
}

func TestMarshalCanonical(t *testing.T) {
	obj := Object{
		"b": Number("2"),
		"a": Array{Null{}, Bool(true), String("x")},
		"c": Object{"nested": Number("-3.5")},
	}

	out, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[null,true,"x"],"b":2,"c":{"nested":-3.5}}`, string(out))
}

func TestMarshalRoundTripIdentity(t *testing.T) {
	// Once a document is in canonical form, decode -> encode is a fixed
	// point.
	input := `{"header":{"frameRate":30,"frameSize":{"xMax":11000,"xMin":0,"yMax":8000,"yMin":0}},"tags":[{"id":3,"type":"define-shape"}]}`

	v, err := FromJSON([]byte(input))
	require.NoError(t, err)
	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))

	// And a second pass changes nothing.
	v2, err := FromJSON(out)
	require.NoError(t, err)
	out2, err := Marshal(v2)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
}

func TestMarshalRejectsBadNumberLiteral(t *testing.T) {
	_, err := Marshal(Object{"n": Number("not-a-number")})
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	orig := Object{
		"list": Array{Number("1")},
		"obj":  Object{"k": String("v")},
	}

	cp := Clone(orig).(Object)
	cp["obj"].(Object)["k"] = String("changed")
	cp["list"].(Array)[0] = Number("2")

	assert.Equal(t, String("v"), orig["obj"].(Object)["k"])
	assert.Equal(t, Number("1"), orig["list"].(Array)[0])
}

func TestEqual(t *testing.T) {
	a := Object{"x": Array{Number("1"), Bool(false)}, "y": Null{}}
	b := Object{"y": Null{}, "x": Array{Number("1"), Bool(false)}}

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, Object{"x": Array{Number("1")}}))
	assert.False(t, Equal(Number("1"), String("1")))
}

func TestNumberConversions(t *testing.T) {
	n, err := Number("42").Int()
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = Number("3.5").Int()
	assert.Error(t, err)

	f, err := Number("3.5").Float()
	require.NoError(t, err)
	assert.Equal(t, 3.5, f)

	assert.Equal(t, Number("7"), NewInt(7))
	assert.Equal(t, Number("0.25"), NewFloat(0.25))
}
