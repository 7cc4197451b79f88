package sqlite

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/relations-dil/go-relations-sqlite/pkg/query"
	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

// Comparison renderings for single-value operators, compact on purpose so
// criteria render as `store`>=? with no spacing.
var compareOperators = map[string]string{
	relations.OpEq:  "=",
	relations.OpGt:  ">",
	relations.OpGte: ">=",
	relations.OpLt:  "<",
	relations.OpLte: "<=",
}

// criterionWheres renders one field criterion into the query's WHERE
// clause. Criteria with a JSON path compare against json_extract over the
// column, binding the rendered path before the comparison values.
func criterionWheres(criterion relations.Criterion, qry *query.Query, values *[]any) error {
	if criterion.Relation != nil {
		return fmt.Errorf("criterion on %s not collated", criterion.Relation.ChildName)
	}

	places, operator := criterion.Operator()

	store := fmt.Sprintf("`%s`", criterion.Field.Store)

	var pathValues []any
	if len(places) > 0 {
		store = fmt.Sprintf("json_extract(`%s`,?)", criterion.Field.Store)
		pathValues = []any{walkPlaces(places)}
	}

	switch operator {
	case relations.OpIn, relations.OpNe:
		list, err := listValues(criterion.Field.Name, operator, criterion.Value)
		if err != nil {
			return err
		}

		if len(list) == 0 {
			// IN over nothing matches nothing, NOT IN over nothing
			// matches everything.
			if operator == relations.OpIn {
				qry.AddWheres("1=0")
			}

			return nil
		}

		clause := "%s IN (%s)"
		if operator == relations.OpNe {
			clause = "%s NOT IN (%s)"
		}

		qry.AddWheres(fmt.Sprintf(clause, store, placeholders(len(list))))
		*values = append(*values, pathValues...)
		*values = append(*values, list...)
	case relations.OpLike, relations.OpNotLike:
		clause := "%s LIKE ?"
		if operator == relations.OpNotLike {
			clause = "%s NOT LIKE ?"
		}

		qry.AddWheres(fmt.Sprintf(clause, store))
		*values = append(*values, pathValues...)
		*values = append(*values, fmt.Sprintf("%%%v%%", criterion.Value))
	case relations.OpNull:
		clause := "%s IS NOT NULL"
		if isNull, _ := criterion.Value.(bool); isNull {
			clause = "%s IS NULL"
		}

		qry.AddWheres(fmt.Sprintf(clause, store))
		*values = append(*values, pathValues...)
	default:
		compare, ok := compareOperators[operator]
		if !ok {
			return fmt.Errorf("unknown operator %q on %s", operator, criterion.Field.Name)
		}

		qry.AddWheres(fmt.Sprintf("%s%s?", store, compare))
		*values = append(*values, pathValues...)
		*values = append(*values, criterion.Value)
	}

	return nil
}

// listValues coerces an in or ne criterion's value to a slice.
func listValues(field, operator string, value any) ([]any, error) {
	if list, ok := value.([]any); ok {
		return list, nil
	}

	reflected := reflect.ValueOf(value)
	if value == nil || reflected.Kind() != reflect.Slice {
		return nil, fmt.Errorf("%s criterion on %s requires a list", operator, field)
	}

	list := make([]any, reflected.Len())
	for i := range list {
		list[i] = reflected.Index(i).Interface()
	}

	return list, nil
}

// collate resolves relation criteria into field criteria by retrieving the
// related models and constraining on the plucked relating values.
func (s *Source) collate(ctx context.Context, model *relations.Model) error {
	criteria := model.Criteria()

	for i := range criteria {
		criterion := &criteria[i]
		if criterion.Relation == nil {
			continue
		}

		rel := criterion.Relation

		var related *relations.Model
		var pluck, constrain string

		if rel.Parent == model.Schema() {
			related = rel.Child.Many()
			pluck = rel.ChildField
			constrain = rel.ParentField
		} else {
			related = rel.Parent.Many()
			pluck = rel.ParentField
			constrain = rel.ChildField
		}

		switch {
		case criterion.Remainder != "":
			related.Filter(criterion.Remainder, criterion.Value)
		case related.Schema().ID != "":
			related.Filter(related.Schema().ID, criterion.Value)
		default:
			return fmt.Errorf("criterion on %s needs a field", related.Schema().Name)
		}

		if _, err := related.Retrieve(ctx, true); err != nil {
			return err
		}

		*criterion = relations.Criterion{
			Field: model.Schema().FieldByName(constrain),
			Key:   relations.OpIn,
			Value: related.Pluck(pluck),
		}
	}

	return nil
}

// modelLike renders the model's label search. Every label field matches
// the pattern, OR-joined: fields relating to a parent match against the
// ids of parents whose own labels match, dict fields match against their
// declared label paths, and plain fields match directly.
func (s *Source) modelLike(ctx context.Context, model *relations.Model, qry *query.Query, values *[]any) error {
	like := model.LikeValue()
	if like == nil {
		return nil
	}

	schema := model.Schema()
	pattern := fmt.Sprintf("%%%v%%", like)

	var ors []string

	for _, label := range schema.Label {
		name, remainder, _ := strings.Cut(label, "__")

		field := schema.FieldByName(name)
		if field == nil {
			return fmt.Errorf("label field %q not declared", name)
		}

		parent := false

		for _, rel := range schema.Parents() {
			if field.Name != rel.ChildField {
				continue
			}

			parent = true

			lookup := rel.Parent.Many().Like(like).Limit(model.ChunkSize())
			if _, err := lookup.Retrieve(ctx, true); err != nil {
				return err
			}

			ids := lookup.Pluck(rel.ParentField)
			if len(ids) == 0 {
				ors = append(ors, "1=0")
			} else {
				ors = append(ors, fmt.Sprintf("`%s` IN (%s)", field.Store, placeholders(len(ids))))
				*values = append(*values, ids...)
			}

			model.Overflow = model.Overflow || lookup.Overflow
		}

		if parent {
			continue
		}

		switch {
		case remainder != "":
			ors = append(ors, fmt.Sprintf("json_extract(`%s`,?) LIKE ?", field.Store))
			*values = append(*values, walkPlaces([]string{remainder}), pattern)
		case len(field.Label) > 0:
			for _, path := range field.Label {
				ors = append(ors, fmt.Sprintf("json_extract(`%s`,?) LIKE ?", field.Store))
				*values = append(*values, Walk(path), pattern)
			}
		default:
			ors = append(ors, fmt.Sprintf("`%s` LIKE ?", field.Store))
			*values = append(*values, pattern)
		}
	}

	if len(ors) > 0 {
		qry.AddWheres(fmt.Sprintf("(%s)", strings.Join(ors, " OR ")))
	}

	return nil
}

// modelSort renders the model's one-shot sort, falling back to the
// schema's default order.
func modelSort(model *relations.Model, qry *query.Query) {
	sort := model.ConsumeSort()

	orderBys := make([]string, 0, len(sort))

	for _, field := range sort {
		switch {
		case strings.HasPrefix(field, "-"):
			orderBys = append(orderBys, fmt.Sprintf("`%s` DESC", field[1:]))
		case strings.HasPrefix(field, "+"):
			orderBys = append(orderBys, fmt.Sprintf("`%s`", field[1:]))
		default:
			orderBys = append(orderBys, fmt.Sprintf("`%s`", field))
		}
	}

	qry.AddOrderBys(orderBys...)
}

// modelLimit renders the model's limit, with the offset folded in when one
// is set.
func modelLimit(model *relations.Model, qry *query.Query, values *[]any) {
	limit, ok := model.LimitValue()
	if !ok {
		return
	}

	if offset := model.OffsetValue(); offset != 0 {
		qry.AddLimits("? OFFSET ?")
		*values = append(*values, limit, offset)
	} else {
		qry.AddLimits("?")
		*values = append(*values, limit)
	}
}

// baseQuery starts the retrieval query, honoring a schema-level override.
func baseQuery(schema *relations.Schema) *query.Query {
	if schema.Query != nil {
		return schema.Query.Copy()
	}

	qry := query.New()
	qry.AddSelects("*")
	qry.AddFroms(Table(schema))

	return qry
}

// Retrieve executes the model's retrieval and loads the matching records.
// A one-mode model errors when more than one row matches, and when none
// do it either errors or returns nil depending on verify. Retrieved
// models and records move to the update action.
func (s *Source) Retrieve(ctx context.Context, model *relations.Model, verify bool) (_ *relations.Model, err error) {
	schema := model.Schema()

	ctx, done := s.instrument(ctx, "retrieve", schema)
	defer func() { done(err) }()

	if err = s.collate(ctx, model); err != nil {
		return nil, err
	}

	qry := baseQuery(schema)
	values := []any{}

	for _, criterion := range model.Criteria() {
		if err = criterionWheres(criterion, qry, &values); err != nil {
			return nil, err
		}
	}

	if err = s.modelLike(ctx, model, qry, &values); err != nil {
		return nil, err
	}

	modelSort(model, qry)
	modelLimit(model, qry, &values)

	rows, err := s.selectRows(ctx, qry.Get(), values)
	if err != nil {
		return nil, err
	}

	if model.Mode() == relations.ModeOne && len(rows) > 1 {
		return nil, relations.NewModelError(schema.Name, relations.ErrMultipleRetrieved)
	}

	if model.Mode() == relations.ModeOne && !model.IsChild() {
		if len(rows) < 1 {
			if verify {
				return nil, relations.NewModelError(schema.Name, relations.ErrNoneRetrieved)
			}

			return nil, nil
		}

		if err = decodeRow(schema, rows[0]); err != nil {
			return nil, err
		}

		model.SetRecords([]*relations.Record{relations.ReadRecord(schema, rows[0])})
	} else {
		records := make([]*relations.Record, 0, len(rows))

		for _, row := range rows {
			if err = decodeRow(schema, row); err != nil {
				return nil, err
			}

			records = append(records, relations.ReadRecord(schema, row))
		}

		model.SetRecords(records)

		if limit, ok := model.LimitValue(); ok {
			model.Overflow = model.Overflow || int64(len(records)) >= limit
		}
	}

	model.SetAction(relations.ActionUpdate)

	return model, nil
}
