package db

import (
	"fmt"
	"strings"
)

// Query builds SQL WHERE clauses for the list endpoints. Each endpoint
// translates its filter-spec struct into calls on a Query, so the dynamic
// predicate chaining lives in exactly one place.
type Query struct {
	table   string
	cols    string
	joins   string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewQuery creates a Query selecting cols from table.
func NewQuery(table, cols string) *Query {
	return &Query{
		table: table,
		cols:  cols,
		idx:   1,
	}
}

// Join appends a JOIN clause (written in full, e.g. "JOIN x ON x.id = y.x_id").
func (q *Query) Join(clause string) {
	q.joins += " " + clause
}

// Idx returns the next available parameter index.
func (q *Query) Idx() int { return q.idx }

// Where appends a raw WHERE clause fragment (without leading "AND").
func (q *Query) Where(clause string, args ...interface{}) {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
}

// Equals appends an exact-match predicate on column.
func (q *Query) Equals(column string, value interface{}) {
	q.Where(fmt.Sprintf("%s = $%d", column, q.idx), value)
}

// Contains appends a case-insensitive substring predicate spanning columns:
// the term must match at least one of them. A single bind argument is shared
// by every column.
func (q *Query) Contains(term string, columns ...string) {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = fmt.Sprintf("%s ILIKE $%d", col, q.idx)
	}
	q.Where("("+strings.Join(parts, " OR ")+")", "%"+term+"%")
}

// OrderBy sets the ORDER BY clause (without the "ORDER BY" keyword).
func (q *Query) OrderBy(orderBy string) {
	q.orderBy = orderBy
}

// CountSQL returns the count query SQL over the filtered, pre-pagination set.
func (q *Query) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s WHERE 1=1%s", q.table, q.joins, q.where)
}

// CountArgs returns the arguments for the count query.
func (q *Query) CountArgs() []interface{} {
	return q.args
}

// AggregateSQL returns a query computing expr (e.g. "COUNT(DISTINCT h.patient_id)")
// over the filtered, pre-pagination set.
func (q *Query) AggregateSQL(expr string) string {
	return fmt.Sprintf("SELECT %s FROM %s%s WHERE 1=1%s", expr, q.table, q.joins, q.where)
}

// DataSQL returns the data query SQL with ORDER BY and LIMIT/OFFSET.
func (q *Query) DataSQL(limit, offset int) string {
	sql := fmt.Sprintf("SELECT %s FROM %s%s WHERE 1=1%s", q.cols, q.table, q.joins, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	return sql
}

// DataArgs returns the arguments for the data query (filter args + limit + offset).
func (q *Query) DataArgs(limit, offset int) []interface{} {
	result := make([]interface{}, len(q.args)+2)
	copy(result, q.args)
	result[len(q.args)] = limit
	result[len(q.args)+1] = offset
	return result
}
