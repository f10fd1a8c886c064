package repository

import (
	"fmt"
	"strings"
)

// selectQuery assembles a parameterised SELECT. Conditions use "?" for their
// single argument; placeholders are renumbered to PostgreSQL's $n form.
type selectQuery struct {
	base       string
	conditions []string
	args       []interface{}
	groupBy    string
	orderBy    string
	limit      int
}

func newSelect(base string) *selectQuery {
	return &selectQuery{base: base}
}

func (q *selectQuery) Where(condition string, args ...interface{}) *selectQuery {
	for _, arg := range args {
		q.args = append(q.args, arg)
		condition = strings.Replace(condition, "?", fmt.Sprintf("$%d", len(q.args)), 1)
	}
	q.conditions = append(q.conditions, condition)
	return q
}

func (q *selectQuery) GroupBy(clause string) *selectQuery {
	q.groupBy = clause
	return q
}

func (q *selectQuery) OrderBy(clause string) *selectQuery {
	q.orderBy = clause
	return q
}

func (q *selectQuery) Limit(n int) *selectQuery {
	q.limit = n
	return q
}

// Build returns the SQL text and its positional arguments.
func (q *selectQuery) Build() (string, []interface{}) {
	var builder strings.Builder
	builder.WriteString(q.base)
	builder.WriteString(" WHERE 1=1")
	for _, condition := range q.conditions {
		builder.WriteString(" AND ")
		builder.WriteString(condition)
	}
	if q.groupBy != "" {
		builder.WriteString(" GROUP BY ")
		builder.WriteString(q.groupBy)
	}
	if q.orderBy != "" {
		builder.WriteString(" ORDER BY ")
		builder.WriteString(q.orderBy)
	}
	if q.limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", q.limit))
	}
	return builder.String(), q.args
}
