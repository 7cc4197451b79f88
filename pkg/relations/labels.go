package relations

// Labels maps record ids to their human label values, one entry per label
// field, with parent labels flattened in wherever a label field relates to
// a parent model.
type Labels struct {
	ID      string
	Label   []string
	Parents map[string]*Labels
	Format  []string
	IDs     []any
	Values  map[any][]any
}

// NewLabels returns empty labels for the model's id and label fields.
func NewLabels(m *Model) *Labels {
	return &Labels{
		ID:      m.schema.ID,
		Label:   m.schema.Label,
		Parents: make(map[string]*Labels),
		Values:  make(map[any][]any),
	}
}

// Flatten registers parent labels under the relating field and folds the
// parent's formats in.
func (l *Labels) Flatten(name string, parent *Labels) {
	l.Parents[name] = parent
	l.Format = append(l.Format, parent.Format...)
}

// AddFormat appends a label field's format, keeping the slot even when the
// field has none so formats stay parallel to label values.
func (l *Labels) AddFormat(format string) {
	l.Format = append(l.Format, format)
}

// Add appends one record's id and label values, substituting parent label
// values for relating fields. Label entries may path into dict values.
func (l *Labels) Add(rec *Record) {
	values := make([]any, 0, len(l.Label))

	for _, name := range l.Label {
		if parent, ok := l.Parents[name]; ok {
			values = append(values, parent.Values[rec.Get(name)]...)

			continue
		}

		values = append(values, rec.Walk(name))
	}

	id := rec.Get(l.ID)

	l.IDs = append(l.IDs, id)
	l.Values[id] = values
}
