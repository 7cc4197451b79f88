package relations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

func TestNewFieldNullability(t *testing.T) {
	t.Parallel()

	bare := relations.NewField("id", relations.KindInt)
	assert.True(t, bare.None)
	assert.Equal(t, "id", bare.Store)

	defaulted := relations.NewField("name", relations.KindStr, relations.Default("ya"))
	assert.False(t, defaulted.None)

	computed := relations.NewField("name", relations.KindStr, relations.DefaultFunc(func() any { return "ya" }))
	assert.False(t, computed.None)

	forced := relations.NewField("name", relations.KindStr, relations.Default("ya"), relations.Nullable())
	assert.True(t, forced.None)
}

func TestNewFieldCollectionDefaults(t *testing.T) {
	t.Parallel()

	stuff := relations.NewField("stuff", relations.KindList)
	assert.False(t, stuff.None)
	assert.Equal(t, []any{}, stuff.DefaultValue())

	things := relations.NewField("things", relations.KindDict)
	assert.False(t, things.None)
	assert.Equal(t, map[string]any{}, things.DefaultValue())
}

func TestDeclaredFieldsRequired(t *testing.T) {
	t.Parallel()

	name := relations.StrField("name")
	assert.False(t, name.None)

	spend := relations.FloatField("spend", relations.Nullable())
	assert.True(t, spend.None)
}

func TestIDField(t *testing.T) {
	t.Parallel()

	id := relations.IDField("id")

	assert.True(t, id.None)
	assert.True(t, id.Primary)
	assert.True(t, id.ReadOnly)
	assert.Equal(t, relations.KindInt, id.Kind)
}

func TestDefaultValuePrecedence(t *testing.T) {
	t.Parallel()

	field := relations.NewField("count", relations.KindInt,
		relations.Default(int64(1)),
		relations.DefaultFunc(func() any { return int64(2) }),
	)

	assert.Equal(t, int64(2), field.DefaultValue())

	literal := relations.NewField("count", relations.KindInt, relations.Default(int64(1)))
	assert.Equal(t, int64(1), literal.DefaultValue())
}

func TestKindScalar(t *testing.T) {
	t.Parallel()

	assert.True(t, relations.KindStr.Scalar())
	assert.True(t, relations.KindBool.Scalar())
	assert.False(t, relations.KindList.Scalar())
	assert.False(t, relations.KindDict.Scalar())
	assert.Equal(t, "dict", relations.KindDict.String())
}
