// Package query assembles SQL statements from named clause buffers.
//
// A Query collects raw clause text (SELECT, FROM, WHERE, ...) and renders
// the non-empty pieces into a single statement. Bind values never pass
// through a Query; callers keep their own placeholder value lists alongside.
package query

import "strings"

// Separators used when appending to a clause that already has text.
const (
	commaSeparator = ","
	andSeparator   = " AND "
)

// Query accumulates the clauses of a SQL statement as raw text.
// The zero value is an empty query ready for use.
type Query struct {
	Selects  string
	Froms    string
	Wheres   string
	GroupBys string
	Havings  string
	OrderBys string
	Limits   string
}

// New returns an empty Query.
func New() *Query {
	return &Query{}
}

// Copy returns an independent copy of the query.
func (q *Query) Copy() *Query {
	dup := *q

	return &dup
}

// AddSelects appends column expressions to the SELECT clause.
func (q *Query) AddSelects(texts ...string) {
	appendClause(&q.Selects, commaSeparator, texts)
}

// AddFroms appends table expressions to the FROM clause.
func (q *Query) AddFroms(texts ...string) {
	appendClause(&q.Froms, commaSeparator, texts)
}

// AddWheres appends conditions to the WHERE clause, joined with AND.
func (q *Query) AddWheres(texts ...string) {
	appendClause(&q.Wheres, andSeparator, texts)
}

// AddGroupBys appends expressions to the GROUP BY clause.
func (q *Query) AddGroupBys(texts ...string) {
	appendClause(&q.GroupBys, commaSeparator, texts)
}

// AddHavings appends conditions to the HAVING clause.
func (q *Query) AddHavings(texts ...string) {
	appendClause(&q.Havings, commaSeparator, texts)
}

// AddOrderBys appends expressions to the ORDER BY clause.
func (q *Query) AddOrderBys(texts ...string) {
	appendClause(&q.OrderBys, commaSeparator, texts)
}

// AddLimits appends text to the LIMIT clause.
func (q *Query) AddLimits(texts ...string) {
	appendClause(&q.Limits, commaSeparator, texts)
}

// Get renders the statement. Empty clauses are skipped entirely, so a query
// holding only conditions renders as "WHERE ...".
func (q *Query) Get() string {
	parts := make([]string, 0, 7)

	add := func(keyword, clause string) {
		if clause != "" {
			parts = append(parts, keyword+" "+clause)
		}
	}

	add("SELECT", q.Selects)
	add("FROM", q.Froms)
	add("WHERE", q.Wheres)
	add("GROUP BY", q.GroupBys)
	add("HAVING", q.Havings)
	add("ORDER BY", q.OrderBys)
	add("LIMIT", q.Limits)

	return strings.Join(parts, " ")
}

func appendClause(clause *string, separator string, texts []string) {
	for _, text := range texts {
		if text == "" {
			continue
		}

		if *clause != "" {
			*clause += separator
		}

		*clause += text
	}
}
