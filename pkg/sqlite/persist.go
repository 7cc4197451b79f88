package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/relations-dil/go-relations-sqlite/pkg/query"
	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

// insertStatement renders the model's INSERT over its writable columns.
func insertStatement(schema *relations.Schema) string {
	columns := make([]string, 0, len(schema.Fields))

	for i := range schema.Fields {
		field := &schema.Fields[i]
		if field.ReadOnly || field.Inject != "" {
			continue
		}

		columns = append(columns, fmt.Sprintf("`%s`", field.Store))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES(%s)",
		Table(schema), strings.Join(columns, ","), placeholders(len(columns)))
}

// Create inserts the model's create-action records. When the schema has a
// primary id each record is inserted alone so the generated id can be read
// back, then staged children are created with the relating field filled
// in, and everything moves to the update action. Bulk models insert and
// forget.
func (s *Source) Create(ctx context.Context, model *relations.Model) (_ *relations.Model, err error) {
	schema := model.Schema()

	ctx, done := s.instrument(ctx, "create", schema)
	defer func() { done(err) }()

	statement := insertStatement(schema)
	creating := model.Each(relations.ActionCreate)

	idField := schema.IDField()
	provision := !model.IsBulk() && idField != nil && idField.Primary

	for _, rec := range creating {
		var encoded []any

		encoded, err = encodeRecord(schema, rec)
		if err != nil {
			return nil, err
		}

		var result sql.Result

		result, err = s.exec(ctx, statement, encoded)
		if err != nil {
			return nil, err
		}

		if provision {
			var id int64

			id, err = result.LastInsertId()
			if err != nil {
				err = fmt.Errorf("last insert id: %w", err)

				return nil, err
			}

			if err = rec.Set(schema.ID, id); err != nil {
				return nil, err
			}
		}
	}

	if model.IsBulk() {
		model.ClearRecords()

		return model, nil
	}

	for _, rec := range creating {
		if err = s.createChildren(ctx, rec); err != nil {
			return nil, err
		}

		rec.SetAction(relations.ActionUpdate)
	}

	model.SetAction(relations.ActionUpdate)

	return model, nil
}

// createChildren creates each staged child model, filling the relating
// field on its create-action records from the parent record first.
func (s *Source) createChildren(ctx context.Context, rec *relations.Record) error {
	for _, rel := range rec.Schema().Children() {
		child := rec.StagedChild(rel.ChildName)
		if child == nil {
			continue
		}

		if err := propagate(child, rel, rec); err != nil {
			return err
		}

		if _, err := child.Create(ctx); err != nil {
			return err
		}
	}

	return nil
}

// propagate fills the relating field on the child's create-action records
// from the parent record.
func propagate(child *relations.Model, rel *relations.Relation, rec *relations.Record) error {
	for _, staged := range child.Each(relations.ActionCreate) {
		if err := staged.Set(rel.ChildField, rec.Get(rel.ParentField)); err != nil {
			return err
		}
	}

	return nil
}

// Update writes the model's changes. A model still pending retrieval with
// staged values updates in one statement over its criteria; a retrieved
// model updates record by record through its id, creating and updating
// staged children along the way.
func (s *Source) Update(ctx context.Context, model *relations.Model) (_ int64, err error) {
	schema := model.Schema()

	ctx, done := s.instrument(ctx, "update", schema)
	defer func() { done(err) }()

	switch {
	case model.Action() == relations.ActionRetrieve && len(model.Pending()) > 0:
		return s.massUpdate(ctx, model)
	case schema.ID != "":
		return s.recordUpdate(ctx, model)
	default:
		return 0, relations.NewModelError(schema.Name, relations.ErrNothingToUpdate)
	}
}

// massUpdate renders UPDATE ... SET over the staged values and the model's
// criteria. Replace fields rejoin their defaults even when not staged.
func (s *Source) massUpdate(ctx context.Context, model *relations.Model) (int64, error) {
	schema := model.Schema()
	pending := model.Pending()

	if err := s.collate(ctx, model); err != nil {
		return 0, err
	}

	clause := make([]string, 0, len(pending))
	values := make([]any, 0, len(pending))

	for i := range schema.Fields {
		field := &schema.Fields[i]
		if field.ReadOnly || field.Inject != "" {
			continue
		}

		value, changed := pending[field.Name]

		if field.Replace && !changed {
			value = field.DefaultValue()
			changed = true
		}

		if !changed {
			continue
		}

		encoded, err := encodeValue(field, value)
		if err != nil {
			return 0, err
		}

		clause = append(clause, fmt.Sprintf("`%s`=?", field.Store))
		values = append(values, encoded)
	}

	where := query.New()

	for _, criterion := range model.Criteria() {
		if err := criterionWheres(criterion, where, &values); err != nil {
			return 0, err
		}
	}

	statement := fmt.Sprintf("UPDATE %s SET %s %s", Table(schema), strings.Join(clause, ","), where.Get())

	result, err := s.exec(ctx, statement, values)
	if err != nil {
		return 0, err
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return updated, nil
}

// recordUpdate rewrites every update-action record through its id, all
// writable fields at once, then creates and updates its staged children.
// Values staged on the model apply to each record first. Only the model's
// own rows count toward the total.
func (s *Source) recordUpdate(ctx context.Context, model *relations.Model) (int64, error) {
	schema := model.Schema()
	idField := schema.IDField()

	var updated int64

	for _, rec := range model.Each(relations.ActionUpdate) {
		if err := rec.SetValues(model.Pending()); err != nil {
			return updated, err
		}

		clause := make([]string, 0, len(schema.Fields))
		values := make([]any, 0, len(schema.Fields)+1)

		for i := range schema.Fields {
			field := &schema.Fields[i]
			if field.ReadOnly || field.Inject != "" {
				continue
			}

			if field.Replace && !rec.Changed(field.Name) {
				if err := rec.Set(field.Name, field.DefaultValue()); err != nil {
					return updated, err
				}
			}

			encoded, err := encodeValue(field, rec.Get(field.Name))
			if err != nil {
				return updated, err
			}

			clause = append(clause, fmt.Sprintf("`%s`=?", field.Store))
			values = append(values, encoded)

			rec.ClearChanged(field.Name)
		}

		values = append(values, rec.Get(schema.ID))

		statement := fmt.Sprintf("UPDATE %s SET %s WHERE `%s`=?",
			Table(schema), strings.Join(clause, ","), idField.Store)

		result, err := s.exec(ctx, statement, values)
		if err != nil {
			return updated, err
		}

		count, err := result.RowsAffected()
		if err != nil {
			return updated, fmt.Errorf("rows affected: %w", err)
		}

		if err := s.updateChildren(ctx, rec); err != nil {
			return updated, err
		}

		updated += count
	}

	return updated, nil
}

// updateChildren creates then updates each staged child model, so records
// added since the parent's retrieval insert before the rewrite.
func (s *Source) updateChildren(ctx context.Context, rec *relations.Record) error {
	for _, rel := range rec.Schema().Children() {
		child := rec.StagedChild(rel.ChildName)
		if child == nil {
			continue
		}

		if err := propagate(child, rel, rec); err != nil {
			return err
		}

		if _, err := child.Create(ctx); err != nil {
			return err
		}

		if _, err := child.Update(ctx); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes rows: over the criteria when the model is still pending
// retrieval, otherwise through the ids of every held record.
func (s *Source) Delete(ctx context.Context, model *relations.Model) (_ int64, err error) {
	schema := model.Schema()

	ctx, done := s.instrument(ctx, "delete", schema)
	defer func() { done(err) }()

	var statement string
	var values []any

	switch {
	case model.Action() == relations.ActionRetrieve:
		if err = s.collate(ctx, model); err != nil {
			return 0, err
		}

		where := query.New()

		for _, criterion := range model.Criteria() {
			if err = criterionWheres(criterion, where, &values); err != nil {
				return 0, err
			}
		}

		statement = fmt.Sprintf("DELETE FROM %s %s", Table(schema), where.Get())
	case schema.ID != "":
		values = model.Pluck(schema.ID)
		if len(values) == 0 {
			return 0, nil
		}

		statement = fmt.Sprintf("DELETE FROM %s WHERE `%s` IN (%s)",
			Table(schema), schema.IDField().Store, placeholders(len(values)))
	default:
		return 0, relations.NewModelError(schema.Name, relations.ErrNothingToDelete)
	}

	result, err := s.exec(ctx, statement, values)
	if err != nil {
		return 0, err
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	return deleted, nil
}
