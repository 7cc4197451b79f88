package relations

import (
	"fmt"
	"sort"
	"strings"
)

// Comparison operators understood by criteria keys. Any other trailing
// segment in a key is treated as a JSON path into the field's value.
const (
	OpEq      = "eq"
	OpGt      = "gt"
	OpGte     = "gte"
	OpLt      = "lt"
	OpLte     = "lte"
	OpNe      = "ne"
	OpIn      = "in"
	OpLike    = "like"
	OpNotLike = "notlike"
	OpNull    = "null"
)

// Operators is the set of recognized comparison operators.
var Operators = map[string]bool{
	OpEq:      true,
	OpGt:      true,
	OpGte:     true,
	OpLt:      true,
	OpLte:     true,
	OpNe:      true,
	OpIn:      true,
	OpLike:    true,
	OpNotLike: true,
	OpNull:    true,
}

// Criterion is a parsed filter. Either Field is set and Key holds the
// operator, possibly prefixed with a "__"-separated path into the field's
// JSON value ("a__b__gt"), or Relation is set and Remainder holds the filter
// to apply to the related model, whose matches constrain this one.
type Criterion struct {
	Field     *Field
	Key       string
	Value     any
	Relation  *Relation
	Remainder string
}

// Operator splits the criterion's key into its JSON path places and the
// trailing operator. A key that is itself an operator has no path, and a
// path with no trailing operator compares equal.
func (c Criterion) Operator() (places []string, operator string) {
	if Operators[c.Key] {
		return nil, c.Key
	}

	places = strings.Split(c.Key, "__")
	operator = places[len(places)-1]

	if !Operators[operator] {
		return places, OpEq
	}

	return places[:len(places)-1], operator
}

// Filter parses one criteria entry and appends it. The name is matched
// against the schema's fields first, longest prefix wins, then against its
// relations. "like" sets the model's label search pattern. Parse failures
// are held on the model and surface from the next operation.
func (m *Model) Filter(name string, value any) *Model {
	if name == "like" {
		m.like = value

		return m
	}

	if field := m.schema.FieldByName(name); field != nil {
		m.criteria = append(m.criteria, Criterion{Field: field, Key: OpEq, Value: value})

		return m
	}

	places := strings.Split(name, "__")

	for cut := len(places) - 1; cut > 0; cut-- {
		prefix := strings.Join(places[:cut], "__")

		if field := m.schema.FieldByName(prefix); field != nil {
			m.criteria = append(m.criteria, Criterion{
				Field: field,
				Key:   strings.Join(places[cut:], "__"),
				Value: value,
			})

			return m
		}
	}

	if rel := m.schema.Child(places[0]); rel != nil {
		m.criteria = append(m.criteria, Criterion{
			Relation:  rel,
			Remainder: strings.Join(places[1:], "__"),
			Value:     value,
		})

		return m
	}

	if rel := m.schema.Parent(places[0]); rel != nil {
		m.criteria = append(m.criteria, Criterion{
			Relation:  rel,
			Remainder: strings.Join(places[1:], "__"),
			Value:     value,
		})

		return m
	}

	if m.err == nil {
		m.err = NewModelError(m.schema.Name, fmt.Errorf("unknown criterion %q", name))
	}

	return m
}

// FilterValues applies every entry of criteria, keys in sorted order.
func (m *Model) FilterValues(criteria Values) *Model {
	names := make([]string, 0, len(criteria))
	for name := range criteria {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		m.Filter(name, criteria[name])
	}

	return m
}
