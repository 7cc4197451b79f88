package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/relations-dil/go-relations-sqlite/pkg/relations"
)

// Labels retrieves the model if it is still pending and builds its labels.
// A label field relating to a parent pulls the parent labels for every
// relating value and flattens them in; other label fields contribute their
// format and their value per record.
func (s *Source) Labels(ctx context.Context, model *relations.Model) (_ *relations.Labels, err error) {
	schema := model.Schema()

	ctx, done := s.instrument(ctx, "labels", schema)
	defer func() { done(err) }()

	if model.Action() == relations.ActionRetrieve {
		if _, err = s.Retrieve(ctx, model, true); err != nil {
			return nil, err
		}
	}

	labels := relations.NewLabels(model)

	for _, label := range schema.Label {
		matched := false

		for _, rel := range schema.Parents() {
			if label != rel.ChildField {
				continue
			}

			matched = true

			lookup := rel.Parent.Many().Filter(rel.ParentField+"__in", model.Pluck(rel.ChildField))

			var parent *relations.Labels

			parent, err = lookup.Labels(ctx)
			if err != nil {
				return nil, err
			}

			labels.Flatten(label, parent)
		}

		if matched {
			continue
		}

		name, _, _ := strings.Cut(label, "__")

		field := schema.FieldByName(name)
		if field == nil {
			err = fmt.Errorf("label field %q not declared", name)

			return nil, err
		}

		labels.AddFormat(field.Format)
	}

	for _, rec := range model.Each("") {
		labels.Add(rec)
	}

	return labels, nil
}
