package sqlite

import (
	"fmt"
	"strings"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

// Column types by field kind. List and dict values persist as JSON text.
var columnTypes = map[relations.Kind]string{
	relations.KindBool:  "INTEGER",
	relations.KindInt:   "INTEGER",
	relations.KindFloat: "REAL",
	relations.KindStr:   "TEXT",
	relations.KindList:  "TEXT",
	relations.KindDict:  "TEXT",
}

// fieldDefinition renders one field's column DDL. Injected fields have no
// column and render empty.
func fieldDefinition(schema *relations.Schema, field *relations.Field) (string, error) {
	if field.Inject != "" {
		return "", nil
	}

	if field.Definition != "" {
		return field.Definition, nil
	}

	definition := []string{fmt.Sprintf("`%s`", field.Store), columnTypes[field.Kind]}

	if !field.None {
		definition = append(definition, "NOT NULL")
	}

	if field.Primary {
		definition = append(definition, "PRIMARY KEY")
	}

	if literal, ok := defaultLiteral(field); ok {
		definition = append(definition, fmt.Sprintf("DEFAULT %s", literal))
	}

	if field.Extract != "" {
		path := strings.Split(field.Extract, "__")

		extracted := schema.FieldByName(path[0])
		if extracted == nil {
			return "", fmt.Errorf("extract %s: field %q not declared", field.Name, path[0])
		}

		definition = append(definition, fmt.Sprintf("AS (json_extract(`%s`,'%s'))", extracted.Store, walkPlaces(path[1:])))
	}

	return strings.Join(definition, " "), nil
}

// defaultLiteral renders a field's literal default for DDL. Computed
// defaults and collection kinds render none.
func defaultLiteral(field *relations.Field) (string, bool) {
	if field.Default == nil || field.DefaultFunc != nil || !field.Kind.Scalar() {
		return "", false
	}

	switch field.Kind {
	case relations.KindBool:
		if value, ok := field.Default.(bool); ok && value {
			return "1", true
		}

		return "0", true
	case relations.KindStr:
		return fmt.Sprintf("'%v'", field.Default), true
	default:
		return fmt.Sprintf("%v", field.Default), true
	}
}

// Define renders the DDL statements for a schema: the create table plus one
// statement per unique and plain index. A schema-level definition replaces
// all of it verbatim.
func Define(schema *relations.Schema) ([]string, error) {
	if schema.Definition != "" {
		return []string{schema.Definition}, nil
	}

	definitions := make([]string, 0, len(schema.Fields))

	for i := range schema.Fields {
		definition, err := fieldDefinition(schema, &schema.Fields[i])
		if err != nil {
			return nil, err
		}

		if definition != "" {
			definitions = append(definitions, definition)
		}
	}

	separator := ",\n  "

	statements := []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", Table(schema), strings.Join(definitions, separator)),
	}

	for _, unique := range schema.Unique {
		statements = append(statements, indexStatement("CREATE UNIQUE INDEX", schema, unique))
	}

	for _, index := range schema.Index {
		statements = append(statements, indexStatement("CREATE INDEX", schema, index))
	}

	return statements, nil
}

// Define renders the DDL statements for a schema.
func (s *Source) Define(schema *relations.Schema) ([]string, error) {
	return Define(schema)
}

// indexStatement renders one index. Index names are scoped by the bare
// table name with dashes flattened to underscores.
func indexStatement(create string, schema *relations.Schema, group relations.IndexGroup) string {
	name := fmt.Sprintf("%s_%s", schema.Table, strings.ReplaceAll(group.Name, "-", "_"))
	fields := strings.Join(group.Fields, "`,`")

	return fmt.Sprintf("%s `%s` ON %s (`%s`)", create, name, Table(schema), fields)
}
