package schemafile

import (
	"fmt"
	"strings"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
	"github.com/relations-dil/go-relations-sqlite/pkg/toposort"
)

var fieldBuilders = map[string]func(string, ...relations.FieldOption) relations.Field{
	"bool":  relations.BoolField,
	"int":   relations.IntField,
	"float": relations.FloatField,
	"str":   relations.StrField,
	"list":  relations.ListField,
	"dict":  relations.DictField,
}

// Build compiles the file's models into wired schemas, parents before the
// schemas that relate to them. Extra options apply to every schema on top of
// the file's source and database bindings.
func Build(file *File, extra ...relations.SchemaOption) ([]*relations.Schema, error) {
	schemas := make(map[string]*relations.Schema, len(file.Models))
	graph := toposort.NewGraph()

	for i := range file.Models {
		model := &file.Models[i]

		if _, ok := schemas[model.Name]; ok {
			return nil, fmt.Errorf("model %q declared twice", model.Name)
		}

		schema, err := buildSchema(file, model, extra)
		if err != nil {
			return nil, err
		}

		schemas[model.Name] = schema
		graph.AddNode(model.Name)
	}

	for i := range file.Models {
		if err := wire(schemas, &file.Models[i], graph); err != nil {
			return nil, err
		}
	}

	names, ok := graph.Toposort()
	if !ok {
		return nil, fmt.Errorf("relation cycle %s", strings.Join(findCycle(graph, file), " -> "))
	}

	ordered := make([]*relations.Schema, len(names))
	for i, name := range names {
		ordered[i] = schemas[name]
	}

	return ordered, nil
}

func buildSchema(file *File, model *Model, extra []relations.SchemaOption) (*relations.Schema, error) {
	fields := make([]relations.Field, 0, len(model.Fields)+1)

	if model.ID != "" && !declares(model, model.ID) {
		fields = append(fields, relations.IDField(model.ID))
	}

	for i := range model.Fields {
		field, err := buildField(&model.Fields[i])
		if err != nil {
			return nil, fmt.Errorf("model %q: %w", model.Name, err)
		}

		fields = append(fields, field)
	}

	opts := []relations.SchemaOption{relations.WithSource(file.Source)}

	if file.Database != "" {
		opts = append(opts, relations.WithDatabase(file.Database))
	}

	if model.Table != "" {
		opts = append(opts, relations.WithTable(model.Table))
	}

	if model.ID != "" {
		opts = append(opts, relations.WithID(model.ID))
	}

	if len(model.Label) > 0 {
		opts = append(opts, relations.WithLabel(model.Label...))
	}

	if len(model.Order) > 0 {
		opts = append(opts, relations.WithOrder(model.Order...))
	}

	for _, group := range model.Unique {
		opts = append(opts, relations.WithUnique(group.Name, group.Fields...))
	}

	for _, group := range model.Index {
		opts = append(opts, relations.WithIndex(group.Name, group.Fields...))
	}

	opts = append(opts, extra...)

	schema, err := relations.NewSchema(model.Name, fields, opts...)
	if err != nil {
		return nil, fmt.Errorf("model %q: %w", model.Name, err)
	}

	return schema, nil
}

func buildField(def *Field) (relations.Field, error) {
	builder, ok := fieldBuilders[def.Kind]
	if !ok {
		return relations.Field{}, fmt.Errorf("field %q: unknown kind %q", def.Name, def.Kind)
	}

	opts := make([]relations.FieldOption, 0, 8)

	if def.Store != "" {
		opts = append(opts, relations.Store(def.Store))
	}

	if def.None != nil {
		if *def.None {
			opts = append(opts, relations.Nullable())
		} else {
			opts = append(opts, relations.NotNull())
		}
	}

	if def.Default != nil {
		opts = append(opts, relations.Default(def.Default))
	}

	if def.Primary {
		opts = append(opts, relations.Primary())
	}

	if def.ReadOnly {
		opts = append(opts, relations.ReadOnly())
	}

	if def.Format != "" {
		opts = append(opts, relations.Format(def.Format))
	}

	if def.Extract != "" {
		opts = append(opts, relations.Extract(def.Extract))
	}

	if len(def.Label) > 0 {
		opts = append(opts, relations.FieldLabel(def.Label...))
	}

	return builder(def.Name, opts...), nil
}

func wire(schemas map[string]*relations.Schema, model *Model, graph *toposort.Graph) error {
	parent := schemas[model.Name]

	for _, name := range model.OneToMany {
		child, ok := schemas[name]
		if !ok {
			return fmt.Errorf("model %q relates unknown model %q", model.Name, name)
		}

		if _, err := relations.OneToMany(parent, child); err != nil {
			return err
		}

		graph.AddEdge(model.Name, name)
	}

	for _, name := range model.OneToOne {
		child, ok := schemas[name]
		if !ok {
			return fmt.Errorf("model %q relates unknown model %q", model.Name, name)
		}

		if _, err := relations.OneToOne(parent, child); err != nil {
			return err
		}

		graph.AddEdge(model.Name, name)
	}

	return nil
}

func declares(model *Model, name string) bool {
	for i := range model.Fields {
		if model.Fields[i].Name == name {
			return true
		}
	}

	return false
}

// findCycle reports the first cycle reachable from a declared model, models
// checked in declaration order.
func findCycle(graph *toposort.Graph, file *File) []string {
	for i := range file.Models {
		if cycle := graph.FindCycle(file.Models[i].Name); cycle != nil {
			return cycle
		}
	}

	return nil
}
