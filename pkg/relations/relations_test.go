package relations_test

import (
	"testing"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

// Relation wiring mutates the child's label, so every test builds fresh
// schemas.
func unitSchemas(t *testing.T) (unit, test, kase *relations.Schema) {
	t.Helper()

	unit = relations.MustSchema("unit", []relations.Field{
		relations.IDField("id"),
		relations.StrField("name", relations.Format("fancy")),
	})

	test = relations.MustSchema("test", []relations.Field{
		relations.IDField("id"),
		relations.IntField("unit_id"),
		relations.StrField("name", relations.Format("shmancy")),
	})

	kase = relations.MustSchema("case", []relations.Field{
		relations.IDField("id"),
		relations.IntField("test_id"),
		relations.StrField("name"),
	})

	relations.MustOneToMany(unit, test)
	relations.MustOneToOne(test, kase)

	return unit, test, kase
}

func metaSchema(t *testing.T) *relations.Schema {
	t.Helper()

	return relations.MustSchema("meta", []relations.Field{
		relations.IDField("id"),
		relations.StrField("name"),
		relations.BoolField("flag"),
		relations.FloatField("spend"),
		relations.ListField("stuff"),
		relations.DictField("things"),
	})
}
