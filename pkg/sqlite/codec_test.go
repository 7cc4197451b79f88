package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

func TestTable(t *testing.T) {
	t.Parallel()

	people := relations.MustSchema("people",
		[]relations.Field{relations.IDField("id")},
		relations.WithSource(testSourceName),
	)
	assert.Equal(t, "`people`", Table(people))

	staged := relations.MustSchema("people",
		[]relations.Field{relations.IDField("id")},
		relations.WithSource(testSourceName),
		relations.WithDatabase("stuff"),
	)
	assert.Equal(t, "`stuff___people`", Table(staged))
}

func TestWalk(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$.a.b", Walk("a__b"))
	assert.Equal(t, "$.a[0].b", Walk("a__0__b"))
	assert.Equal(t, "$.a[-1]", Walk("a__-1"))
	assert.Equal(t, `$.a."b"`, Walk("a___b"))
	assert.Equal(t, `$.for[0]."1"`, Walk("for__0___1"))
}

func TestEncodeRecord(t *testing.T) {
	t.Parallel()

	meta := metaSchema(t, relations.NewRegistry())

	rec := meta.New("yep", true, 1.1, []any{1}, map[string]any{"a": 1}).Record()

	encoded, err := encodeRecord(meta, rec)
	require.NoError(t, err)
	assert.Equal(t, []any{"yep", true, 1.1, "[1]", `{"a":1}`}, encoded)

	// Nil collections stay nil rather than encoding to "null".
	rec = meta.New("nah", false, 1.1, nil, nil).Record()

	encoded, err = encodeRecord(meta, rec)
	require.NoError(t, err)
	assert.Equal(t, []any{"nah", false, 1.1, nil, nil}, encoded)
}

func TestDecodeRow(t *testing.T) {
	t.Parallel()

	meta := metaSchema(t, relations.NewRegistry())

	row := map[string]any{
		"id":     int64(1),
		"name":   "yep",
		"flag":   int64(1),
		"spend":  1.1,
		"stuff":  "[1]",
		"things": `{"a": 1}`,
	}

	require.NoError(t, decodeRow(meta, row))
	assert.Equal(t, []any{float64(1)}, row["stuff"])
	assert.Equal(t, map[string]any{"a": float64(1)}, row["things"])
	assert.Equal(t, "yep", row["name"])

	// Null collections pass through untouched.
	row = map[string]any{"stuff": nil, "things": nil}
	require.NoError(t, decodeRow(meta, row))
	assert.Nil(t, row["stuff"])
	assert.Nil(t, row["things"])

	// Bytes decode the same as text.
	row = map[string]any{"stuff": []byte("[2]")}
	require.NoError(t, decodeRow(meta, row))
	assert.Equal(t, []any{float64(2)}, row["stuff"])

	row = map[string]any{"things": "nope"}
	assert.Error(t, decodeRow(meta, row))
}

func TestPlaceholders(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?,?,?", placeholders(3))
}
