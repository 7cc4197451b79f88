package relations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

func TestOneToManyDefaults(t *testing.T) {
	t.Parallel()

	simple := relations.MustSchema("simple", []relations.Field{
		relations.IDField("id"),
		relations.StrField("name"),
	})

	plain := relations.MustSchema("plain", []relations.Field{
		relations.IntField("simple_id"),
		relations.StrField("name"),
	})

	rel, err := relations.OneToMany(simple, plain)
	require.NoError(t, err)

	assert.Equal(t, "simple", rel.ParentName)
	assert.Equal(t, "plain", rel.ChildName)
	assert.Equal(t, "id", rel.ParentField)
	assert.Equal(t, "simple_id", rel.ChildField)
	assert.Equal(t, relations.ModeMany, rel.Mode)

	assert.Same(t, rel, simple.Child("plain"))
	assert.Same(t, rel, plain.Parent("simple"))
	require.Len(t, simple.Children(), 1)
	require.Len(t, plain.Parents(), 1)

	assert.Equal(t, []string{"simple_id", "name"}, plain.Label)
}

func TestOneToOneMode(t *testing.T) {
	t.Parallel()

	_, test, kase := unitSchemas(t)

	rel := test.Child("case")
	require.NotNil(t, rel)
	assert.Equal(t, relations.ModeOne, rel.Mode)
	assert.Same(t, rel, kase.Parent("test"))
}

func TestRelationErrors(t *testing.T) {
	t.Parallel()

	simple := relations.MustSchema("simple", []relations.Field{
		relations.IDField("id"),
		relations.StrField("name"),
	})

	orphan := relations.MustSchema("orphan", []relations.Field{
		relations.StrField("name"),
	})

	// Child is missing the relating field.
	_, err := relations.OneToMany(simple, orphan)
	assert.Error(t, err)

	// Parent has no id to join on.
	_, err = relations.OneToMany(orphan, simple)
	assert.Error(t, err)

	plain := relations.MustSchema("plain", []relations.Field{
		relations.IntField("simple_id"),
		relations.StrField("name"),
	})

	_, err = relations.OneToMany(simple, plain)
	require.NoError(t, err)

	// Wiring the same pair again collides on both names.
	_, err = relations.OneToMany(simple, plain)
	assert.Error(t, err)
}

func TestRelationOptions(t *testing.T) {
	t.Parallel()

	group := relations.MustSchema("group", []relations.Field{
		relations.IDField("id"),
		relations.StrField("name"),
	})

	member := relations.MustSchema("member", []relations.Field{
		relations.IDField("id"),
		relations.IntField("owner_id"),
		relations.StrField("name"),
	})

	rel, err := relations.OneToMany(group, member,
		relations.ChildName("members"),
		relations.ParentName("owner"),
		relations.ChildField("owner_id"),
	)
	require.NoError(t, err)

	assert.Same(t, rel, group.Child("members"))
	assert.Same(t, rel, member.Parent("owner"))
	assert.Equal(t, "owner_id", rel.ChildField)
	assert.Equal(t, []string{"owner_id", "name"}, member.Label)
}
