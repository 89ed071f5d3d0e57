package handlers

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/item"
)

// Sections of INFO FOR DB and INFO FOR TABLE responses.
// Servers before 2.0 use the two letter keys.
var (
	sectionTables  = []string{"tables", "tb"}
	sectionFields  = []string{"fields", "fd"}
	sectionIndexes = []string{"indexes", "ix"}
	sectionEvents  = []string{"events", "ev"}
)

// info runs an INFO statement and returns its response as an object.
func (c *Call) info(ctx context.Context, op, statement string) (map[string]any, error) {
	sql, _ := c.prepare(statement, 0, 0)
	results, err := c.query(ctx, op, sql, nil)
	if err != nil {
		return nil, err
	}
	res := item.Normalize(lastResult(results))
	if res == nil {
		return nil, ServerError(op, "", constants.ErrEmptyResponse)
	}
	m, ok := res.(map[string]any)
	if !ok {
		return nil, ServerError(op, "unexpected INFO response", fmt.Errorf("got %T", res))
	}
	return m, nil
}

// definition is one named DDL statement of an INFO section.
type definition struct {
	Name string
	DDL  string
}

// infoSection returns the named definitions of one section, sorted by name.
func infoSection(info map[string]any, keys []string) []definition {
	var section map[string]any
	for _, k := range keys {
		if m, ok := info[k].(map[string]any); ok {
			section = m
			break
		}
	}
	out := make([]definition, 0, len(section))
	for name, ddl := range section {
		s, ok := ddl.(string)
		if !ok {
			s = fmt.Sprint(ddl)
		}
		out = append(out, definition{Name: name, DDL: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// toMap converts a parsed definition into a JSON object.
func toMap(v any) map[string]any {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{}
	}
	return m
}

// unparsed is the fallback shape for a definition the parser could not read.
func unparsed(d definition, err error) map[string]any {
	return map[string]any{
		"name":       d.Name,
		"definition": d.DDL,
		"parseError": err.Error(),
	}
}
