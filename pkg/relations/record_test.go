package relations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

func TestRecordDefaults(t *testing.T) {
	t.Parallel()

	meta := metaSchema(t)

	rec := meta.New().Record()
	require.NotNil(t, rec)

	assert.Nil(t, rec.Get("id"))
	assert.Equal(t, []any{}, rec.Get("stuff"))
	assert.Equal(t, map[string]any{}, rec.Get("things"))
	assert.False(t, rec.Changed("stuff"))
}

func TestRecordSetGet(t *testing.T) {
	t.Parallel()

	meta := metaSchema(t)
	rec := meta.New().Record()

	require.NoError(t, rec.Set("name", "yep"))
	assert.Equal(t, "yep", rec.Get("name"))
	assert.True(t, rec.Changed("name"))

	rec.ClearChanged("name")
	assert.False(t, rec.Changed("name"))

	assert.Error(t, rec.Set("nope", 1))
	assert.Nil(t, rec.Get("nope"))

	require.NoError(t, rec.SetValues(relations.Values{"flag": true, "spend": 1.1}))
	assert.Equal(t, true, rec.Get("flag"))
}

func TestRecordTypedGetters(t *testing.T) {
	t.Parallel()

	meta := metaSchema(t)
	rec := meta.New().Record()

	require.NoError(t, rec.SetValues(relations.Values{
		"name":   "yep",
		"flag":   int64(1),
		"spend":  1.1,
		"stuff":  []any{int64(1)},
		"things": map[string]any{"a": int64(1)},
	}))

	assert.Equal(t, "yep", rec.Str("name"))
	assert.True(t, rec.Bool("flag"))
	assert.Equal(t, 1.1, rec.Float("spend"))
	assert.Equal(t, []any{int64(1)}, rec.List("stuff"))
	assert.Equal(t, map[string]any{"a": int64(1)}, rec.Dict("things"))

	require.NoError(t, rec.Set("spend", int64(2)))
	assert.Equal(t, 2.0, rec.Float("spend"))
	assert.Equal(t, int64(2), rec.Int("spend"))
}

func TestRecordWalk(t *testing.T) {
	t.Parallel()

	meta := metaSchema(t)
	rec := meta.New().Record()

	require.NoError(t, rec.Set("things", map[string]any{
		"a":   int64(1),
		"for": []any{map[string]any{"1": "yep"}},
	}))

	assert.Equal(t, int64(1), rec.Walk("things__a"))
	assert.Equal(t, "yep", rec.Walk("things__for__0___1"))
	assert.Nil(t, rec.Walk("things__nope"))
	assert.Nil(t, rec.Walk("things__for__3"))
}

func TestRecordChildStaging(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	// Unsaved parent stages creates.
	rec := unit.New("people").Record()

	child, err := rec.Child("test")
	require.NoError(t, err)
	assert.Equal(t, relations.ActionCreate, child.Action())
	assert.True(t, child.IsChild())

	again, err := rec.Child("test")
	require.NoError(t, err)
	assert.Same(t, child, again)
	assert.Same(t, child, rec.StagedChild("test"))

	_, err = rec.Child("nope")
	assert.Error(t, err)
}

func TestRecordChildCriteria(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	rec := unit.New("people").Record()
	require.NoError(t, rec.Set("id", int64(2)))
	rec.SetAction(relations.ActionUpdate)

	child, err := rec.Child("test")
	require.NoError(t, err)
	assert.Equal(t, relations.ActionRetrieve, child.Action())

	criteria := child.Criteria()
	require.Len(t, criteria, 1)
	assert.Equal(t, "unit_id", criteria[0].Field.Name)
	assert.Equal(t, relations.OpEq, criteria[0].Key)
	assert.Equal(t, int64(2), criteria[0].Value)

	// Records added under a retrieved parent carry the relating value.
	child.Add("things")
	assert.Equal(t, int64(2), child.At(0).Get("unit_id"))
}
