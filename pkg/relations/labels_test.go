package relations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

func TestLabelsPlain(t *testing.T) {
	t.Parallel()

	unit, _, _ := unitSchemas(t)

	m := unit.New("people")
	require.NoError(t, m.Record().Set("id", int64(1)))

	labels := relations.NewLabels(m)
	labels.AddFormat(unit.FieldByName("name").Format)
	labels.Add(m.Record())

	assert.Equal(t, "id", labels.ID)
	assert.Equal(t, []string{"name"}, labels.Label)
	assert.Empty(t, labels.Parents)
	assert.Equal(t, []string{"fancy"}, labels.Format)
	assert.Equal(t, []any{int64(1)}, labels.IDs)
	assert.Equal(t, map[any][]any{int64(1): {"people"}}, labels.Values)
}

func TestLabelsFlatten(t *testing.T) {
	t.Parallel()

	unit, test, _ := unitSchemas(t)

	parent := relations.NewLabels(unit.New())
	parent.AddFormat("fancy")

	people := unit.New("people")
	require.NoError(t, people.Record().Set("id", int64(1)))
	parent.Add(people.Record())

	m := test.New("stuff").Add("things")
	require.NoError(t, m.At(0).SetValues(relations.Values{"id": int64(1), "unit_id": int64(1)}))
	require.NoError(t, m.At(1).SetValues(relations.Values{"id": int64(2), "unit_id": int64(1)}))

	labels := relations.NewLabels(m)
	labels.Flatten("unit_id", parent)
	labels.AddFormat(test.FieldByName("name").Format)

	for _, rec := range m.Records() {
		labels.Add(rec)
	}

	assert.Equal(t, []string{"unit_id", "name"}, labels.Label)
	assert.Same(t, parent, labels.Parents["unit_id"])
	assert.Equal(t, []string{"fancy", "shmancy"}, labels.Format)
	assert.Equal(t, []any{int64(1), int64(2)}, labels.IDs)
	assert.Equal(t, map[any][]any{
		int64(1): {"people", "stuff"},
		int64(2): {"people", "things"},
	}, labels.Values)
}
