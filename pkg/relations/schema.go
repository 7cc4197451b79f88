package relations

import (
	"fmt"
	"strings"

	"github.com/relations-dil/go-relations-sqlite/pkg/query"
)

// Values maps field names to values for building and updating records.
type Values map[string]any

// IndexGroup names an ordered set of indexed fields.
type IndexGroup struct {
	Name   string
	Fields []string
}

// Schema declares a model: its fields, storage naming, labeling, and the
// source it binds to. Schemas are finalized by NewSchema and must not be
// mutated afterwards except through relation wiring.
type Schema struct {
	// Name is the model name. It doubles as the default table name.
	Name string

	// Source names the registered source that executes operations.
	Source string

	// Database optionally namespaces the table.
	Database string

	// Table is the storage table name. Defaults to Name.
	Table string

	// Fields are the declared fields in order.
	Fields []Field

	// ID is the primary id field name, or "" when the schema has none.
	ID string

	// Label lists the fields whose values identify a record to humans.
	Label []string

	// Order is the default sort, entries prefixed "+" or "-".
	Order []string

	// Unique and Index declare named index groups emitted by DDL.
	Unique []IndexGroup
	Index  []IndexGroup

	// Definition, when set, replaces all generated DDL verbatim.
	Definition string

	// Query, when set, replaces the source's default base query.
	Query *query.Query

	registry *Registry

	names       map[string]*Field
	children    map[string]*Relation
	parents     map[string]*Relation
	childOrder  []*Relation
	parentOrder []*Relation

	labelDefaulted  bool
	orderDefaulted  bool
	uniqueDefaulted bool
}

// SchemaOption adjusts a schema under construction.
type SchemaOption func(*Schema)

// WithSource binds the schema to a registered source name.
func WithSource(name string) SchemaOption {
	return func(s *Schema) { s.Source = name }
}

// WithDatabase namespaces the schema's table.
func WithDatabase(database string) SchemaOption {
	return func(s *Schema) { s.Database = database }
}

// WithTable overrides the table name.
func WithTable(table string) SchemaOption {
	return func(s *Schema) { s.Table = table }
}

// WithID names the primary id field explicitly.
func WithID(name string) SchemaOption {
	return func(s *Schema) { s.ID = name }
}

// WithLabel sets the label fields explicitly.
func WithLabel(fields ...string) SchemaOption {
	return func(s *Schema) { s.Label = fields }
}

// WithOrder sets the default sort explicitly, entries prefixed "+" or "-".
func WithOrder(fields ...string) SchemaOption {
	return func(s *Schema) { s.Order = fields }
}

// WithUnique adds a named unique index group. With no fields the group
// covers the field matching its name.
func WithUnique(name string, fields ...string) SchemaOption {
	if len(fields) == 0 {
		fields = []string{name}
	}

	return func(s *Schema) {
		s.Unique = append(s.Unique, IndexGroup{Name: name, Fields: fields})
	}
}

// WithIndex adds a named index group. With no fields the group covers the
// field matching its name.
func WithIndex(name string, fields ...string) SchemaOption {
	if len(fields) == 0 {
		fields = []string{name}
	}

	return func(s *Schema) {
		s.Index = append(s.Index, IndexGroup{Name: name, Fields: fields})
	}
}

// WithDefinition replaces all generated DDL verbatim.
func WithDefinition(definition string) SchemaOption {
	return func(s *Schema) { s.Definition = definition }
}

// WithQuery replaces the source's default base query.
func WithQuery(qry *query.Query) SchemaOption {
	return func(s *Schema) { s.Query = qry }
}

// WithRegistry binds the schema's models to a registry other than the
// package default.
func WithRegistry(registry *Registry) SchemaOption {
	return func(s *Schema) { s.registry = registry }
}

// NewSchema finalizes a schema declaration. The id defaults to the first
// primary field, the label to a field named "name" when present, the order
// to the label fields ascending, and a unique group covers the label unless
// the label is just the id.
func NewSchema(name string, fields []Field, opts ...SchemaOption) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema: name required")
	}

	schema := &Schema{
		Name:     name,
		Fields:   append([]Field(nil), fields...),
		names:    make(map[string]*Field, len(fields)),
		children: make(map[string]*Relation),
		parents:  make(map[string]*Relation),
	}

	for _, opt := range opts {
		opt(schema)
	}

	if schema.Table == "" {
		schema.Table = schema.Name
	}

	for i := range schema.Fields {
		field := &schema.Fields[i]

		if field.Name == "" {
			return nil, fmt.Errorf("schema %s: field %d: name required", name, i)
		}

		if field.Store == "" {
			field.Store = field.Name
		}

		if _, ok := schema.names[field.Name]; ok {
			return nil, fmt.Errorf("schema %s: duplicate field %q", name, field.Name)
		}

		schema.names[field.Name] = field
	}

	if schema.ID == "" {
		for i := range schema.Fields {
			if schema.Fields[i].Primary {
				schema.ID = schema.Fields[i].Name

				break
			}
		}
	}

	if schema.ID != "" {
		idField, ok := schema.names[schema.ID]
		if !ok {
			return nil, fmt.Errorf("schema %s: id field %q not declared", name, schema.ID)
		}

		idField.Primary = true
		idField.ReadOnly = true
	}

	if schema.Label == nil {
		schema.labelDefaulted = true

		if _, ok := schema.names["name"]; ok {
			schema.Label = []string{"name"}
		} else if schema.ID != "" {
			schema.Label = []string{schema.ID}
		}
	}

	for _, label := range schema.Label {
		if schema.FieldByName(labelField(label)) == nil {
			return nil, fmt.Errorf("schema %s: label field %q not declared", name, label)
		}
	}

	if schema.Order == nil {
		schema.orderDefaulted = true
		schema.Order = ascending(schema.Label)
	}

	if schema.Unique == nil {
		schema.uniqueDefaulted = true
		schema.Unique = defaultUnique(schema.Label, schema.ID)
	}

	return schema, nil
}

// MustSchema is NewSchema that panics on a bad declaration, for package-level
// model definitions.
func MustSchema(name string, fields []Field, opts ...SchemaOption) *Schema {
	schema, err := NewSchema(name, fields, opts...)
	if err != nil {
		panic(err)
	}

	return schema
}

// FieldByName returns the declared field, or nil.
func (s *Schema) FieldByName(name string) *Field {
	return s.names[name]
}

// IDField returns the primary id field, or nil when the schema has none.
func (s *Schema) IDField() *Field {
	if s.ID == "" {
		return nil
	}

	return s.names[s.ID]
}

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i := range s.Fields {
		names[i] = s.Fields[i].Name
	}

	return names
}

// Children returns relations where this schema is the parent, in wiring
// order.
func (s *Schema) Children() []*Relation {
	return s.childOrder
}

// Parents returns relations where this schema is the child, in wiring order.
func (s *Schema) Parents() []*Relation {
	return s.parentOrder
}

// Child returns the relation to the named child schema, or nil.
func (s *Schema) Child(name string) *Relation {
	return s.children[name]
}

// Parent returns the relation to the named parent schema, or nil.
func (s *Schema) Parent(name string) *Relation {
	return s.parents[name]
}

// Registry returns the registry the schema's models resolve sources from.
func (s *Schema) Registry() *Registry {
	if s.registry == nil {
		return DefaultRegistry
	}

	return s.registry
}

// relabel prepends a relation's child field to the label and rebuilds the
// defaulted order and unique groups around it.
func (s *Schema) relabel(childField string) {
	for _, label := range s.Label {
		if label == childField {
			return
		}
	}

	s.Label = append([]string{childField}, s.Label...)

	if s.orderDefaulted {
		s.Order = ascending(s.Label)
	}

	if s.uniqueDefaulted {
		s.Unique = defaultUnique(s.Label, s.ID)
	}
}

// labelField returns the field a label entry targets; entries may carry a
// "__"-separated path into a Dict value.
func labelField(label string) string {
	field, _, _ := strings.Cut(label, "__")

	return field
}

func ascending(label []string) []string {
	order := make([]string, len(label))
	for i, field := range label {
		order[i] = "+" + field
	}

	return order
}

func defaultUnique(label []string, id string) []IndexGroup {
	if len(label) == 0 || (len(label) == 1 && label[0] == id) {
		return []IndexGroup{}
	}

	return []IndexGroup{{
		Name:   strings.Join(label, "-"),
		Fields: append([]string(nil), label...),
	}}
}
