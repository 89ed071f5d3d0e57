package surql

import (
	"strconv"
	"strings"
)

// SelectQuery represents a SELECT * statement over one table.
type SelectQuery struct {
	table string
	ids   []any
	limit int
	start int
}

// SelectFrom creates a SELECT * FROM table statement.
func SelectFrom(table string) *SelectQuery {
	return &SelectQuery{table: table}
}

// WhereIDIn restricts the selection to the given record ids, bound as $ids.
func (q *SelectQuery) WhereIDIn(ids ...any) *SelectQuery {
	q.ids = append(q.ids, ids...)
	return q
}

func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.limit = n
	return q
}

func (q *SelectQuery) Start(n int) *SelectQuery {
	q.start = n
	return q
}

func (q *SelectQuery) Build() (sql string, vars map[string]any) {
	vars = map[string]any{}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(Ident(q.table))
	if len(q.ids) > 0 {
		b.WriteString(" WHERE id IN $ids")
		vars["ids"] = q.ids
	}
	if q.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.limit))
	}
	if q.start > 0 {
		b.WriteString(" START ")
		b.WriteString(strconv.Itoa(q.start))
	}
	return b.String(), vars
}

func (q *SelectQuery) String() string {
	sql, _ := q.Build()
	return sql
}
