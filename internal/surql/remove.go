package surql

import "strings"

// Resource is the kind of object targeted by REMOVE, REBUILD and INFO statements.
type Resource string

const (
	ResourceTable Resource = "TABLE"
	ResourceIndex Resource = "INDEX"
)

// RemoveQuery represents a REMOVE TABLE or REMOVE INDEX statement.
type RemoveQuery struct {
	what     Resource
	name     string
	table    string
	ifExists bool
}

// RemoveTable creates a REMOVE TABLE statement.
func RemoveTable(table string) *RemoveQuery {
	return &RemoveQuery{what: ResourceTable, name: table}
}

// RemoveIndex creates a REMOVE INDEX statement.
func RemoveIndex(name, table string) *RemoveQuery {
	return &RemoveQuery{what: ResourceIndex, name: name, table: table}
}

func (q *RemoveQuery) IfExists() *RemoveQuery {
	q.ifExists = true
	return q
}

func (q *RemoveQuery) Build() (sql string, vars map[string]any) {
	return buildOnTable("REMOVE", q.what, q.name, q.table, q.ifExists), map[string]any{}
}

func (q *RemoveQuery) String() string {
	sql, _ := q.Build()
	return sql
}

// RebuildQuery represents a REBUILD INDEX statement.
type RebuildQuery struct {
	name     string
	table    string
	ifExists bool
}

// RebuildIndex creates a REBUILD INDEX statement.
func RebuildIndex(name, table string) *RebuildQuery {
	return &RebuildQuery{name: name, table: table}
}

func (q *RebuildQuery) IfExists() *RebuildQuery {
	q.ifExists = true
	return q
}

func (q *RebuildQuery) Build() (sql string, vars map[string]any) {
	return buildOnTable("REBUILD", ResourceIndex, q.name, q.table, q.ifExists), map[string]any{}
}

func (q *RebuildQuery) String() string {
	sql, _ := q.Build()
	return sql
}

func buildOnTable(verb string, what Resource, name, table string, ifExists bool) string {
	var b strings.Builder
	b.WriteString(verb)
	b.WriteString(" ")
	b.WriteString(string(what))
	b.WriteString(" ")
	if ifExists {
		b.WriteString("IF EXISTS ")
	}
	b.WriteString(Ident(name))
	if what != ResourceTable {
		b.WriteString(" ON TABLE ")
		b.WriteString(Ident(table))
	}
	return b.String()
}

// InfoForDB returns the statement listing the tables of the current database.
func InfoForDB() string {
	return "INFO FOR DB"
}

// InfoForTable returns the statement describing a table's fields, indexes and events.
func InfoForTable(table string) string {
	return "INFO FOR TABLE " + Ident(table)
}
