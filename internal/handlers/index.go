package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealflow/internal/surql"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/item"
)

// indexTarget reads the table and indexName parameters shared by index operations.
func indexTarget(c *Call, op string) (table, name string, err error) {
	if table, err = c.Params.RequiredString(op, ParamTable); err != nil {
		return "", "", err
	}
	if name, err = c.Params.RequiredString(op, ParamIndexName); err != nil {
		return "", "", err
	}
	return table, name, nil
}

// createIndex defines a standard, unique, search or mtree index.
//
// Options: indexType, isUnique, analyzer, highlights, dimension, distance, vectorType,
// ifNotExists, comment.
func createIndex(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpCreateIndex

	table, name, err := indexTarget(c, op)
	if err != nil {
		return nil, err
	}
	opts, err := c.Params.Options(op)
	if err != nil {
		return nil, err
	}

	def := surql.DefineIndex(name, table).Fields(c.Params.StringList(ParamFields)...)
	if opts.Bool("ifNotExists") {
		def.IfNotExists()
	}

	kind := surql.IndexKind(strings.ToLower(opts.String("indexType")))
	switch kind {
	case "", surql.IndexStandard:
		if opts.Bool("isUnique") {
			def.Unique()
		}
	case surql.IndexUnique:
		def.Unique()
	case surql.IndexSearch:
		def.Search(opts.String("analyzer"), opts.Bool("highlights"))
	case surql.IndexMTree:
		dim, err := opts.Int(op, "dimension")
		if err != nil {
			return nil, err
		}
		def.MTree(dim, opts.String("distance"), opts.String("vectorType"))
	default:
		return nil, ValidationError(op, fmt.Sprintf("unknown index type %q", kind), nil)
	}
	if comment := opts.String("comment"); comment != "" {
		def.Comment(comment)
	}
	if err := def.Validate(); err != nil {
		return nil, ValidationError(op, "", err)
	}

	sql := def.String()
	prepared, _ := c.prepare(sql, 0, 0)
	if _, err := c.query(ctx, op, prepared, nil); err != nil {
		return nil, err
	}
	return []item.Item{{
		JSON: map[string]any{
			"index":   name,
			"table":   table,
			"created": true,
			"query":   sql,
		},
		PairedItem: c.Index,
	}}, nil
}

func dropIndex(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpDropIndex

	table, name, err := indexTarget(c, op)
	if err != nil {
		return nil, err
	}
	opts, err := c.Params.Options(op)
	if err != nil {
		return nil, err
	}
	stmt := surql.RemoveIndex(name, table)
	if opts.Bool("ifExists") {
		stmt.IfExists()
	}

	prepared, _ := c.prepare(stmt.String(), 0, 0)
	if _, err := c.query(ctx, op, prepared, nil); err != nil {
		return nil, err
	}
	return []item.Item{{
		JSON:       map[string]any{"index": name, "table": table, "dropped": true},
		PairedItem: c.Index,
	}}, nil
}

func rebuildIndex(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpRebuildIndex

	table, name, err := indexTarget(c, op)
	if err != nil {
		return nil, err
	}
	opts, err := c.Params.Options(op)
	if err != nil {
		return nil, err
	}
	stmt := surql.RebuildIndex(name, table)
	if opts.Bool("ifExists") {
		stmt.IfExists()
	}

	prepared, _ := c.prepare(stmt.String(), 0, 0)
	if _, err := c.query(ctx, op, prepared, nil); err != nil {
		return nil, err
	}
	return []item.Item{{
		JSON:       map[string]any{"index": name, "table": table, "rebuilt": true},
		PairedItem: c.Index,
	}}, nil
}

// listIndexes returns one item per index defined on the table.
func listIndexes(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpListIndexes

	table, err := c.Params.RequiredString(op, ParamTable)
	if err != nil {
		return nil, err
	}
	info, err := c.info(ctx, op, surql.InfoForTable(table))
	if err != nil {
		return nil, err
	}

	indexes := parseIndexes(c, infoSection(info, sectionIndexes))
	out := make([]item.Item, 0, len(indexes))
	for _, ix := range indexes {
		out = append(out, item.Item{JSON: ix, PairedItem: c.Index})
	}
	return out, nil
}

// describeIndex returns the single named index, failing when the table has no such index.
func describeIndex(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpDescribeIndex

	table, name, err := indexTarget(c, op)
	if err != nil {
		return nil, err
	}
	info, err := c.info(ctx, op, surql.InfoForTable(table))
	if err != nil {
		return nil, err
	}

	for _, d := range infoSection(info, sectionIndexes) {
		if d.Name != name {
			continue
		}
		return item.FormatSingleResult(parseIndexes(c, []definition{d})[0], c.Index), nil
	}
	return nil, PreconditionError(op, "", fmt.Errorf("%w: %s on table %s", constants.ErrIndexNotFound, name, table))
}

func parseIndexes(c *Call, defs []definition) []map[string]any {
	out := make([]map[string]any, 0, len(defs))
	for _, d := range defs {
		def, err := surql.ParseIndexDefinition(d.DDL)
		if err != nil {
			c.Logger.Debug().Err(err).Str("index", d.Name).Msg("could not parse index definition")
			out = append(out, unparsed(d, err))
			continue
		}
		out = append(out, toMap(def))
	}
	return out
}
