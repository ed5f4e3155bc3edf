package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeysAndSkipsHTMLEscaping(t *testing.T) {
	got, err := MarshalCanonical(map[string]any{
		"b":     "<a & b>",
		"a":     []any{int64(1), true, "x"},
		"items": []string{"z"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,true,"x"],"b":"<a & b>","items":["z"]}`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "Va\u030aler" // a + combining ring above
	composed := "V\u00e5ler"

	a, err := MarshalCanonical(decomposed)
	require.NoError(t, err)
	b, err := MarshalCanonical(composed)
	require.NoError(t, err)
	assert.Equal(t, b, a)
}

func TestMarshalCanonical_LineSeparators(t *testing.T) {
	got, err := MarshalCanonical("a\u2028b")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(got))

	// A literal backslash-u sequence stays escaped.
	got, err = MarshalCanonical(`a\u2028b`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(got))
}

func TestMarshalCanonical_Rejects(t *testing.T) {
	_, err := MarshalCanonical(1.5)
	assert.ErrorContains(t, err, "floats")

	_, err = MarshalCanonical(map[string]any{"x": nil})
	assert.ErrorContains(t, err, "null")

	_, err = MarshalCanonical(struct{}{})
	assert.ErrorContains(t, err, "unsupported")
}

func TestRequestFingerprint_Stable(t *testing.T) {
	req := Request{RecipientName: "Va\u030aler", Items: []Item{{ID: "a", Name: "Desk"}}}
	alt := Request{RecipientName: "V\u00e5ler", Items: []Item{{ID: "a", Name: "Desk"}}}

	f1, err := RequestFingerprint(req)
	require.NoError(t, err)
	f2, err := RequestFingerprint(alt)
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.Len(t, f1, 64)

	req.Items[0].Name = "Chair"
	f3, err := RequestFingerprint(req)
	require.NoError(t, err)
	assert.NotEqual(t, f1, f3)
}
