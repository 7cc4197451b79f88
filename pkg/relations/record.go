package relations

import (
	"fmt"
	"strings"
)

// Record buffers one row's values keyed by storage column, tracking which
// fields changed since the record was built or last written.
type Record struct {
	schema   *Schema
	action   string
	values   map[string]any
	changed  map[string]bool
	children map[string]*Model
}

func newRecord(schema *Schema, action string) *Record {
	rec := &Record{
		schema:  schema,
		action:  action,
		values:  make(map[string]any, len(schema.Fields)),
		changed: make(map[string]bool),
	}

	for i := range schema.Fields {
		field := &schema.Fields[i]
		if field.Inject != "" {
			continue
		}

		rec.values[field.Store] = field.DefaultValue()
	}

	return rec
}

// ReadRecord wraps values decoded from storage, keyed by storage column, as
// an update-action record.
func ReadRecord(schema *Schema, values map[string]any) *Record {
	return &Record{
		schema:  schema,
		action:  ActionUpdate,
		values:  values,
		changed: make(map[string]bool),
	}
}

// Schema returns the schema the record belongs to.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Action returns the record's pending action, create or update.
func (r *Record) Action() string {
	return r.action
}

// SetAction changes the record's pending action.
func (r *Record) SetAction(action string) {
	r.action = action
}

// Get returns the named field's value, nil when unset or unknown.
func (r *Record) Get(name string) any {
	field := r.schema.FieldByName(name)
	if field == nil {
		return nil
	}

	return r.values[field.Store]
}

// Set assigns the named field and marks it changed.
func (r *Record) Set(name string, value any) error {
	field := r.schema.FieldByName(name)
	if field == nil {
		return fmt.Errorf("record %s: unknown field %q", r.schema.Name, name)
	}

	r.values[field.Store] = value
	r.changed[field.Store] = true

	return nil
}

// SetValues assigns every entry of values.
func (r *Record) SetValues(values Values) error {
	for name, value := range values {
		if err := r.Set(name, value); err != nil {
			return err
		}
	}

	return nil
}

// Changed reports whether the named field was assigned since the record was
// built or last written.
func (r *Record) Changed(name string) bool {
	field := r.schema.FieldByName(name)
	if field == nil {
		return false
	}

	return r.changed[field.Store]
}

// ClearChanged resets the named field's changed mark after a write.
func (r *Record) ClearChanged(name string) {
	field := r.schema.FieldByName(name)
	if field == nil {
		return
	}

	delete(r.changed, field.Store)
}

// Values returns a copy of the record's values keyed by field name.
func (r *Record) Values() Values {
	values := make(Values, len(r.schema.Fields))

	for i := range r.schema.Fields {
		field := &r.schema.Fields[i]
		if stored, ok := r.values[field.Store]; ok {
			values[field.Name] = stored
		}
	}

	return values
}

// Int returns the named field as int64, 0 when absent or not numeric.
func (r *Record) Int(name string) int64 {
	switch v := r.Get(name).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Str returns the named field as a string, "" when absent.
func (r *Record) Str(name string) string {
	switch v := r.Get(name).(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Bool returns the named field as a bool; stored integers count as true when
// non-zero.
func (r *Record) Bool(name string) bool {
	switch v := r.Get(name).(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}

// Float returns the named field as float64, 0 when absent or not numeric.
func (r *Record) Float(name string) float64 {
	switch v := r.Get(name).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// List returns the named field as a list, nil when absent.
func (r *Record) List(name string) []any {
	v, _ := r.Get(name).([]any)

	return v
}

// Dict returns the named field as a dict, nil when absent.
func (r *Record) Dict(name string) map[string]any {
	v, _ := r.Get(name).(map[string]any)

	return v
}

// Walk resolves a "__"-separated path through the record's values in memory:
// the first place names a field, the rest descend into its list or dict
// value. Numeric places index lists.
func (r *Record) Walk(path string) any {
	places := strings.Split(path, "__")

	value := r.Get(places[0])

	for _, place := range places[1:] {
		switch v := value.(type) {
		case map[string]any:
			value = v[strings.TrimPrefix(place, "_")]
		case []any:
			index, ok := listIndex(place, len(v))
			if !ok {
				return nil
			}

			value = v[index]
		default:
			return nil
		}
	}

	return value
}

// Child returns the model staging or querying the named child relation,
// creating it on first use. A retrieved parent yields a criteria model over
// its children; an unsaved parent yields a create model whose records are
// completed and written when the parent is.
func (r *Record) Child(name string) (*Model, error) {
	if child, ok := r.children[name]; ok {
		return child, nil
	}

	rel := r.schema.Child(name)
	if rel == nil {
		return nil, fmt.Errorf("record %s: no child relation %q", r.schema.Name, name)
	}

	child := rel.Child.model()
	child.mode = rel.Mode
	child.role = roleChild
	child.rel = rel

	if r.action == ActionUpdate {
		child.action = ActionRetrieve
		child.criteria = append(child.criteria, Criterion{
			Field: rel.Child.FieldByName(rel.ChildField),
			Key:   OpEq,
			Value: r.Get(rel.ParentField),
		})
		child.seed = Values{rel.ChildField: r.Get(rel.ParentField)}
	} else {
		child.action = ActionCreate
	}

	if r.children == nil {
		r.children = make(map[string]*Model)
	}

	r.children[name] = child

	return child, nil
}

// StagedChild returns the child model created by a prior Child call, or nil.
func (r *Record) StagedChild(name string) *Model {
	return r.children[name]
}

func listIndex(place string, length int) (int, bool) {
	var index int
	if _, err := fmt.Sscanf(place, "%d", &index); err != nil {
		return 0, false
	}

	if index < 0 {
		index += length
	}

	if index < 0 || index >= length {
		return 0, false
	}

	return index, true
}
