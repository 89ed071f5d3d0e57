package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealflow/internal/surql"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/item"
)

const optionSchema = "schema"

// createTable defines a table and, optionally, its fields in a single query.
//
// Options: ifNotExists, tableType (any, normal, relation), schemaMode (schemafull, schemaless),
// comment, and schema, an array of {name, type, default, value, assert} field objects.
// A top-level fields parameter is accepted in place of options.schema.
func createTable(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpCreateTable

	table, err := c.Params.RequiredString(op, ParamTable)
	if err != nil {
		return nil, err
	}
	opts, err := c.Params.Options(op)
	if err != nil {
		return nil, err
	}

	def := surql.DefineTable(table)
	if opts.Bool("ifNotExists") {
		def.IfNotExists()
	}
	if t := strings.ToUpper(opts.String("tableType")); t != "" {
		switch surql.TableType(t) {
		case surql.TableTypeAny, surql.TableTypeNormal, surql.TableTypeRelation:
			def.Type(surql.TableType(t))
		default:
			return nil, ValidationError(op, fmt.Sprintf("unknown table type %q", t), nil)
		}
	}
	if m := strings.ToUpper(opts.String("schemaMode")); m != "" {
		switch surql.SchemaMode(m) {
		case surql.Schemafull, surql.Schemaless:
			def.Schema(surql.SchemaMode(m))
		default:
			return nil, ValidationError(op, fmt.Sprintf("unknown schema mode %q", m), nil)
		}
	}

	if comment := opts.String("comment"); comment != "" {
		def.Comment(comment)
	}
	statements := []string{def.String()}

	fields, err := opts.Array(op, optionSchema)
	if err != nil {
		return nil, err
	}
	if fields == nil {
		if fields, err = c.Params.Array(op, ParamFields); err != nil {
			return nil, err
		}
	}
	for i, f := range fields {
		obj, ok := f.(map[string]any)
		if !ok {
			return nil, ValidationError(op, fmt.Sprintf("fields[%d] must be a JSON object", i), nil)
		}
		fp := Params(obj)
		name := fp.String("name")
		if name == "" {
			return nil, ValidationError(op, fmt.Sprintf("fields[%d].name is required", i), nil)
		}
		field := surql.DefineField(name, table).
			Type(fp.String("type")).
			Default(fp.String("default")).
			Value(fp.String("value")).
			Assert(fp.String("assert"))
		if opts.Bool("ifNotExists") {
			field.IfNotExists()
		}
		statements = append(statements, field.String())
	}

	sql := strings.Join(statements, ";\n") + ";"
	prepared, _ := c.prepare(sql, 0, 0)
	if _, err := c.query(ctx, op, prepared, nil); err != nil {
		return nil, err
	}
	return []item.Item{{
		JSON: map[string]any{
			"table":   table,
			"created": true,
			"fields":  len(fields),
			"query":   sql,
		},
		PairedItem: c.Index,
	}}, nil
}

func deleteTable(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpDeleteTable

	table, err := c.Params.RequiredString(op, ParamTable)
	if err != nil {
		return nil, err
	}
	opts, err := c.Params.Options(op)
	if err != nil {
		return nil, err
	}
	stmt := surql.RemoveTable(table)
	if opts.Bool("ifExists") {
		stmt.IfExists()
	}

	prepared, _ := c.prepare(stmt.String(), 0, 0)
	if _, err := c.query(ctx, op, prepared, nil); err != nil {
		return nil, err
	}
	return []item.Item{{
		JSON:       map[string]any{"table": table, "deleted": true},
		PairedItem: c.Index,
	}}, nil
}

// listTables returns one item per table of the current database.
func listTables(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpListTables

	info, err := c.info(ctx, op, surql.InfoForDB())
	if err != nil {
		return nil, err
	}

	tables := infoSection(info, sectionTables)
	out := make([]item.Item, 0, len(tables))
	for _, t := range tables {
		m := map[string]any{"name": t.Name, "definition": t.DDL}
		if def, err := surql.ParseTableDefinition(t.DDL); err == nil {
			parsed := toMap(def)
			for _, k := range []string{"type", "schema", "comment", "changefeed", "view"} {
				if v, ok := parsed[k]; ok {
					m[k] = v
				}
			}
		} else {
			c.Logger.Debug().Err(err).Str("table", t.Name).Msg("could not parse table definition")
		}
		out = append(out, item.Item{JSON: m, PairedItem: c.Index})
	}
	return out, nil
}

// getTable describes one table with its parsed fields and indexes.
func getTable(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpGetTable

	table, err := c.Params.RequiredString(op, ParamTable)
	if err != nil {
		return nil, err
	}
	info, err := c.info(ctx, op, surql.InfoForTable(table))
	if err != nil {
		return nil, err
	}

	fields := []any{}
	for _, d := range infoSection(info, sectionFields) {
		def, err := surql.ParseFieldDefinition(d.DDL)
		if err != nil {
			fields = append(fields, unparsed(d, err))
			continue
		}
		fields = append(fields, toMap(def))
	}

	events := map[string]any{}
	for _, d := range infoSection(info, sectionEvents) {
		events[d.Name] = d.DDL
	}

	return item.FormatSingleResult(map[string]any{
		"name":    table,
		"fields":  fields,
		"indexes": parseIndexes(c, infoSection(info, sectionIndexes)),
		"events":  events,
	}, c.Index), nil
}
