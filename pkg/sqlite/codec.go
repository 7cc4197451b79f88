package sqlite

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

// indexPattern matches path places that index into a list.
var indexPattern = regexp.MustCompile(`^-?\d+$`)

// Table renders a schema's backtick-quoted table name, prefixed with its
// database when one is set.
func Table(schema *relations.Schema) string {
	table := make([]string, 0, 2)

	if schema.Database != "" {
		table = append(table, schema.Database)
	}

	table = append(table, schema.Table)

	return fmt.Sprintf("`%s`", strings.Join(table, "___"))
}

// Walk renders a "__"-separated path as a SQLite JSON path. Numeric places
// index into lists and places starting with an underscore are quoted with
// the underscore stripped, so "_1" reaches the object key "1".
func Walk(path string) string {
	return walkPlaces(strings.Split(path, "__"))
}

func walkPlaces(path []string) string {
	var places strings.Builder

	places.WriteString("$")

	for _, place := range path {
		switch {
		case indexPattern.MatchString(place):
			index, _ := strconv.Atoi(place)
			fmt.Fprintf(&places, "[%d]", index)
		case strings.HasPrefix(place, "_"):
			fmt.Fprintf(&places, ".\"%s\"", place[1:])
		default:
			fmt.Fprintf(&places, ".%s", place)
		}
	}

	return places.String()
}

// encodeValue renders one field value for binding, JSON-encoding list and
// dict values.
func encodeValue(field *relations.Field, value any) (any, error) {
	if value == nil || field.Kind.Scalar() {
		return value, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", field.Name, err)
	}

	return string(encoded), nil
}

// encodeRecord renders a record's writable values in field order for an
// insert.
func encodeRecord(schema *relations.Schema, rec *relations.Record) ([]any, error) {
	encoded := make([]any, 0, len(schema.Fields))

	for i := range schema.Fields {
		field := &schema.Fields[i]
		if field.ReadOnly || field.Inject != "" {
			continue
		}

		value, err := encodeValue(field, rec.Get(field.Name))
		if err != nil {
			return nil, err
		}

		encoded = append(encoded, value)
	}

	return encoded, nil
}

// decodeRow JSON-decodes the list and dict columns of a scanned row in
// place.
func decodeRow(schema *relations.Schema, values map[string]any) error {
	for i := range schema.Fields {
		field := &schema.Fields[i]
		if field.Kind.Scalar() {
			continue
		}

		raw, ok := values[field.Store]
		if !ok || raw == nil {
			continue
		}

		var text []byte

		switch typed := raw.(type) {
		case string:
			text = []byte(typed)
		case []byte:
			text = typed
		default:
			return fmt.Errorf("decode %s: unexpected %T", field.Name, raw)
		}

		var decoded any
		if err := json.Unmarshal(text, &decoded); err != nil {
			return fmt.Errorf("decode %s: %w", field.Name, err)
		}

		values[field.Store] = decoded
	}

	return nil
}

// placeholders renders count comma-joined bind markers.
func placeholders(count int) string {
	if count == 0 {
		return ""
	}

	return strings.Repeat(",?", count)[1:]
}
