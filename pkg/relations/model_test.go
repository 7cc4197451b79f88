package relations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

func TestModelNewPositional(t *testing.T) {
	t.Parallel()

	meta := metaSchema(t)

	m := meta.New("yep", true, 1.1, []any{int64(1)}, map[string]any{"a": int64(1)})
	require.NoError(t, m.Err())
	require.Equal(t, 1, m.Len())

	rec := m.Record()
	assert.Nil(t, rec.Get("id"))
	assert.Equal(t, "yep", rec.Get("name"))
	assert.Equal(t, true, rec.Get("flag"))
	assert.Equal(t, 1.1, rec.Get("spend"))

	assert.Equal(t, relations.ActionCreate, m.Action())
	assert.Equal(t, relations.ActionCreate, rec.Action())
}

func TestModelAddTooMany(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	m := unit.New("people", "extra")
	assert.Error(t, m.Err())
}

func TestModelChildAddSkipsRelatingField(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	child, err := unit.New("people").Record().Child("test")
	require.NoError(t, err)

	child.Add("stuff").Add("things")
	require.NoError(t, child.Err())
	require.Equal(t, 2, child.Len())

	assert.Equal(t, "stuff", child.At(0).Get("name"))
	assert.Nil(t, child.At(0).Get("unit_id"))
	assert.Equal(t, "things", child.At(1).Get("name"))
}

func TestModelManyOne(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	many := unit.Many(relations.Values{"name": "people"})
	assert.Equal(t, relations.ActionRetrieve, many.Action())
	assert.Equal(t, relations.ModeMany, many.Mode())
	assert.Len(t, many.Criteria(), 1)

	one := unit.One()
	assert.Equal(t, relations.ModeOne, one.Mode())

	bulk := unit.Bulk()
	assert.True(t, bulk.IsBulk())
	assert.Equal(t, 0, bulk.Len())
}

func TestModelSetPending(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	m := unit.Many().Set(relations.Values{"name": "things"})
	assert.Equal(t, relations.Values{"name": "things"}, m.Pending())

	m.Set(relations.Values{"nope": 1})
	assert.Error(t, m.Err())
}

func TestModelSortConsume(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	m := unit.Many()
	assert.Equal(t, []string{"+name"}, m.ConsumeSort())

	m.Sort("-name", "id")
	assert.Equal(t, []string{"-name", "+id"}, m.ConsumeSort())

	// One-shot: the explicit sort is gone, the default remains.
	assert.Equal(t, []string{"+name"}, m.ConsumeSort())
}

func TestModelLimitOffset(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	m := unit.Many()

	_, ok := m.LimitValue()
	assert.False(t, ok)

	m.Limit(0)
	limit, ok := m.LimitValue()
	assert.True(t, ok)
	assert.Equal(t, int64(0), limit)

	m.Limit(2).Offset(1)
	limit, _ = m.LimitValue()
	assert.Equal(t, int64(2), limit)
	assert.Equal(t, int64(1), m.OffsetValue())

	assert.Equal(t, int64(relations.DefaultChunk), m.ChunkSize())
	m.Chunk(1)
	assert.Equal(t, int64(1), m.ChunkSize())
}

func TestModelEachPluck(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	m := unit.New("people").Add("stuff")
	require.Equal(t, 2, m.Len())

	m.At(1).SetAction(relations.ActionUpdate)

	assert.Len(t, m.Each(""), 2)
	assert.Len(t, m.Each(relations.ActionCreate), 1)
	assert.Len(t, m.Each(relations.ActionUpdate), 1)

	assert.Equal(t, []any{"people", "stuff"}, m.Pluck("name"))
}

func TestModelNoSource(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	_, err := unit.Many().Retrieve(t.Context(), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, relations.ErrNoSource)
	assert.Equal(t, "unit: source not registered", err.Error())

	_, err = unit.Define()
	assert.ErrorIs(t, err, relations.ErrNoSource)
}
