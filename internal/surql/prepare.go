package surql

import (
	"strconv"
	"strings"
)

// PrepareOptions controls how a statement template is finalized.
type PrepareOptions struct {
	// UseContext prefixes the statement with USE NS … DB … when both are set.
	UseContext bool
	Namespace  string
	Database   string

	// Limit and Start are appended when positive and not already present.
	Limit int
	Start int
}

// Prepare finalizes a statement template.
//
// Pagination is detected by a case-insensitive substring search for LIMIT and START.
// This is a textual heuristic, not a parse: a LIMIT or START appearing inside a string
// literal or a sub-query suppresses injection for the whole statement. Prepare is
// idempotent for a given set of options.
func Prepare(template string, opts PrepareOptions) string {
	sql := strings.TrimSpace(template)
	upper := strings.ToUpper(sql)

	if opts.Limit > 0 || opts.Start > 0 {
		addLimit := opts.Limit > 0 && !strings.Contains(upper, "LIMIT")
		addStart := opts.Start > 0 && !strings.Contains(upper, "START")
		if addLimit || addStart {
			sql = strings.TrimRight(sql, "; \t\n")
			if addLimit {
				sql += " LIMIT " + strconv.Itoa(opts.Limit)
			}
			if addStart {
				sql += " START " + strconv.Itoa(opts.Start)
			}
		}
	}

	if opts.UseContext && opts.Namespace != "" && opts.Database != "" && !strings.HasPrefix(upper, "USE ") {
		sql = UseStatement(opts.Namespace, opts.Database) + " " + sql
	}
	return sql
}

// UseStatement returns the USE statement selecting namespace and database.
func UseStatement(namespace, database string) string {
	return "USE NS " + Ident(namespace) + " DB " + Ident(database) + ";"
}
