package relations

import (
	"context"
	"fmt"
	"strings"
)

// Actions a model or record can be pending.
const (
	ActionCreate   = "create"
	ActionRetrieve = "retrieve"
	ActionUpdate   = "update"
)

// Modes a retrieval can run in.
const (
	ModeOne  = "one"
	ModeMany = "many"
)

const roleChild = "child"

// DefaultChunk bounds related-model lookups to this many rows per query.
const DefaultChunk = 255

// Model stages an operation against one table: records to create, criteria
// to retrieve by, values to mass-update, or rows to delete. Nothing touches
// the source until an operation method runs.
type Model struct {
	// Overflow reports that a limited retrieval, or a related lookup
	// done on its behalf, may have left matching rows behind.
	Overflow bool

	schema   *Schema
	action   string
	mode     string
	role     string
	bulk     bool
	criteria []Criterion
	pending  Values
	like     any
	sort     []string
	limit    *int64
	offset   int64
	chunk    int64
	records  []*Record
	rel      *Relation
	seed     Values
	err      error
}

func (s *Schema) model() *Model {
	return &Model{
		schema: s,
		action: ActionCreate,
		mode:   ModeMany,
		chunk:  DefaultChunk,
	}
}

// New returns a create model holding a single record, positional values
// assigned to the schema's writable fields in order.
func (s *Schema) New(values ...any) *Model {
	return s.model().Add(values...)
}

// Bulk returns a create model that inserts its records in batches and does
// not report back generated ids.
func (s *Schema) Bulk() *Model {
	m := s.model()
	m.bulk = true

	return m
}

// Many returns a retrieve model matching any number of rows.
func (s *Schema) Many(criteria ...Values) *Model {
	m := s.model()
	m.action = ActionRetrieve

	for _, each := range criteria {
		m.FilterValues(each)
	}

	return m
}

// One returns a retrieve model expecting at most one row.
func (s *Schema) One(criteria ...Values) *Model {
	m := s.Many(criteria...)
	m.mode = ModeOne

	return m
}

// Add appends a record, positional values assigned to the schema's writable
// fields in order. Read-only and injected fields are skipped, as is the
// relating field of a model bound to a parent.
func (m *Model) Add(values ...any) *Model {
	rec := newRecord(m.schema, ActionCreate)

	fields := m.writable()

	if len(values) > len(fields) {
		if m.err == nil {
			m.err = NewModelError(m.schema.Name, fmt.Errorf("%d values for %d fields", len(values), len(fields)))
		}

		return m
	}

	for i, value := range values {
		if err := rec.Set(fields[i].Name, value); err != nil && m.err == nil {
			m.err = err
		}
	}

	for name, value := range m.seed {
		if err := rec.Set(name, value); err != nil && m.err == nil {
			m.err = err
		}
	}

	m.records = append(m.records, rec)

	return m
}

func (m *Model) writable() []*Field {
	fields := make([]*Field, 0, len(m.schema.Fields))

	for i := range m.schema.Fields {
		field := &m.schema.Fields[i]

		if field.ReadOnly || field.Inject != "" {
			continue
		}

		if m.rel != nil && field.Name == m.rel.ChildField {
			continue
		}

		fields = append(fields, field)
	}

	return fields
}

// Set stages values to apply on the next update. On a model still pending
// retrieval this makes the update a single statement over the criteria.
func (m *Model) Set(values Values) *Model {
	if m.pending == nil {
		m.pending = make(Values, len(values))
	}

	for name, value := range values {
		if m.schema.FieldByName(name) == nil {
			if m.err == nil {
				m.err = NewModelError(m.schema.Name, fmt.Errorf("unknown field %q", name))
			}

			continue
		}

		m.pending[name] = value
	}

	return m
}

// Like sets the label search pattern for the next retrieval.
func (m *Model) Like(pattern any) *Model {
	m.like = pattern

	return m
}

// Sort orders the next retrieval. Names are prefixed "+" for ascending,
// "-" for descending, bare names ascend. The sort applies once.
func (m *Model) Sort(names ...string) *Model {
	sorted := make([]string, len(names))

	for i, name := range names {
		if strings.HasPrefix(name, "+") || strings.HasPrefix(name, "-") {
			sorted[i] = name

			continue
		}

		sorted[i] = "+" + name
	}

	m.sort = sorted

	return m
}

// Limit caps how many rows the next retrieval returns.
func (m *Model) Limit(limit int64) *Model {
	m.limit = &limit

	return m
}

// Offset skips rows on the next limited retrieval.
func (m *Model) Offset(offset int64) *Model {
	m.offset = offset

	return m
}

// Chunk overrides how many rows related-model lookups may match.
func (m *Model) Chunk(chunk int64) *Model {
	m.chunk = chunk

	return m
}

// Schema returns the schema the model operates on.
func (m *Model) Schema() *Schema {
	return m.schema
}

// Action returns the model's pending action.
func (m *Model) Action() string {
	return m.action
}

// SetAction changes the model's pending action.
func (m *Model) SetAction(action string) {
	m.action = action
}

// Mode returns ModeOne or ModeMany.
func (m *Model) Mode() string {
	return m.mode
}

// IsChild reports whether the model was reached through a parent record.
func (m *Model) IsChild() bool {
	return m.role == roleChild
}

// IsBulk reports whether the model creates in batches.
func (m *Model) IsBulk() bool {
	return m.bulk
}

// Criteria returns the parsed retrieval criteria in the order filtered.
func (m *Model) Criteria() []Criterion {
	return m.criteria
}

// Criterion appends an already-parsed criterion.
func (m *Model) Criterion(criterion Criterion) *Model {
	m.criteria = append(m.criteria, criterion)

	return m
}

// Pending returns the values staged by Set.
func (m *Model) Pending() Values {
	return m.pending
}

// LikeValue returns the label search pattern, nil when unset.
func (m *Model) LikeValue() any {
	return m.like
}

// ConsumeSort returns the ordering for the next retrieval, falling back to
// the schema's default order, and clears the one-shot sort.
func (m *Model) ConsumeSort() []string {
	sort := m.sort
	if len(sort) == 0 {
		sort = m.schema.Order
	}

	m.sort = nil

	return sort
}

// LimitValue returns the retrieval limit and whether one is set.
func (m *Model) LimitValue() (int64, bool) {
	if m.limit == nil {
		return 0, false
	}

	return *m.limit, true
}

// OffsetValue returns the retrieval offset.
func (m *Model) OffsetValue() int64 {
	return m.offset
}

// ChunkSize returns the related-lookup row bound.
func (m *Model) ChunkSize() int64 {
	return m.chunk
}

// Records returns the model's records.
func (m *Model) Records() []*Record {
	return m.records
}

// Record returns the model's first record, nil when empty.
func (m *Model) Record() *Record {
	if len(m.records) == 0 {
		return nil
	}

	return m.records[0]
}

// At returns the record at index, nil when out of range.
func (m *Model) At(index int) *Record {
	if index < 0 || index >= len(m.records) {
		return nil
	}

	return m.records[index]
}

// Len returns how many records the model holds.
func (m *Model) Len() int {
	return len(m.records)
}

// Each returns the records pending the action, all of them when action
// is empty.
func (m *Model) Each(action string) []*Record {
	if action == "" {
		return m.records
	}

	records := make([]*Record, 0, len(m.records))

	for _, rec := range m.records {
		if rec.action == action {
			records = append(records, rec)
		}
	}

	return records
}

// Pluck returns the named field's value from every record.
func (m *Model) Pluck(name string) []any {
	values := make([]any, 0, len(m.records))

	for _, rec := range m.records {
		values = append(values, rec.Get(name))
	}

	return values
}

// SetRecords replaces the model's records after a retrieval.
func (m *Model) SetRecords(records []*Record) {
	m.records = records
}

// ClearRecords drops the model's records after a bulk create.
func (m *Model) ClearRecords() {
	m.records = nil
}

// Err returns the first error deferred while staging the model.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) source() (Source, error) {
	src, ok := m.schema.Registry().Lookup(m.schema.Source)
	if !ok {
		return nil, NewModelError(m.schema.Name, ErrNoSource)
	}

	return src, nil
}

// Create inserts the model's create-action records and cascades into their
// staged children. Unless bulk, generated ids are read back and the model
// flips to update.
func (m *Model) Create(ctx context.Context) (*Model, error) {
	if m.err != nil {
		return nil, m.err
	}

	src, err := m.source()
	if err != nil {
		return nil, err
	}

	return src.Create(ctx, m)
}

// Retrieve runs the model's criteria. In one mode more than one match is an
// error, and no match is an error when verify is set, otherwise Retrieve
// returns nil without one.
func (m *Model) Retrieve(ctx context.Context, verify bool) (*Model, error) {
	if m.err != nil {
		return nil, m.err
	}

	src, err := m.source()
	if err != nil {
		return nil, err
	}

	return src.Retrieve(ctx, m, verify)
}

// Update writes staged values and changed records, cascading into staged
// children, and returns how many of the model's own rows changed.
func (m *Model) Update(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}

	src, err := m.source()
	if err != nil {
		return 0, err
	}

	return src.Update(ctx, m)
}

// Delete removes the model's rows, by criteria when still pending retrieval,
// by id otherwise, and returns how many went.
func (m *Model) Delete(ctx context.Context) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}

	src, err := m.source()
	if err != nil {
		return 0, err
	}

	return src.Delete(ctx, m)
}

// Labels retrieves the model if needed and returns its labels, parent
// labels flattened in.
func (m *Model) Labels(ctx context.Context) (*Labels, error) {
	if m.err != nil {
		return nil, m.err
	}

	src, err := m.source()
	if err != nil {
		return nil, err
	}

	return src.Labels(ctx, m)
}
