package handlers

import (
	"context"
	"strings"
	"unicode"

	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/item"
)

// statementKeywords are the keywords a SurrealQL statement can start with.
var statementKeywords = map[string]struct{}{
	"USE": {}, "LET": {}, "BEGIN": {}, "COMMIT": {}, "CANCEL": {}, "DEFINE": {}, "REMOVE": {},
	"REBUILD": {}, "INFO": {}, "SELECT": {}, "CREATE": {}, "UPDATE": {}, "UPSERT": {}, "DELETE": {},
	"INSERT": {}, "RELATE": {}, "RETURN": {}, "ALTER": {}, "SLEEP": {}, "THROW": {}, "SHOW": {},
	"KILL": {}, "LIVE": {}, "OPTION": {}, "IF": {}, "FOR": {},
}

// firstKeyword returns the upper-cased leading word of a statement.
func firstKeyword(sql string) string {
	sql = strings.TrimLeftFunc(sql, unicode.IsSpace)
	end := strings.IndexFunc(sql, func(r rune) bool { return !unicode.IsLetter(r) })
	if end < 0 {
		end = len(sql)
	}
	return strings.ToUpper(sql[:end])
}

// executeQuery runs a raw SurrealQL query with bound parameters.
//
// Each statement result becomes items: arrays expand to one item per element and other
// values become a single item. Any failed statement fails the whole item. A response with
// no data at all for text that does not start with a statement keyword is reported as an
// error, since it usually means the text was not SurrealQL.
func executeQuery(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpExecuteQuery

	sql, err := c.Params.RequiredString(op, ParamQuery)
	if err != nil {
		return nil, err
	}
	vars, err := c.Params.Object(op, ParamParameters)
	if err != nil {
		return nil, err
	}
	opts, err := c.Params.Options(op)
	if err != nil {
		return nil, err
	}
	limit, err := opts.Int(op, "limit")
	if err != nil {
		return nil, err
	}
	start, err := opts.Int(op, "start")
	if err != nil {
		return nil, err
	}

	prepared, prefixed := c.prepare(sql, limit, start)
	results, err := c.query(ctx, op, prepared, vars)
	if err != nil {
		return nil, err
	}
	if prefixed && len(results) > 0 {
		results = results[1:]
	}

	out := []item.Item{}
	empty := true
	for _, r := range results {
		if !item.IsEmpty(r.Result) {
			empty = false
		}
		out = append(out, item.FormatArrayResult(r.Result, c.Index)...)
	}

	if empty {
		if _, known := statementKeywords[firstKeyword(sql)]; !known {
			return nil, ServerError(op, "check the query syntax", constants.ErrEmptyQueryResult)
		}
	}
	return out, nil
}
