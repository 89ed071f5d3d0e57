package handlers

import (
	"context"
	"fmt"

	"github.com/surrealdb/surrealflow/internal/surql"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/item"
	"github.com/surrealdb/surrealflow/pkg/recordid"
)

// recordID resolves the id parameter, qualifying it with the table parameter when given.
func (c *Call) recordID(op string) (recordid.ID, error) {
	raw, err := c.Params.RequiredString(op, ParamID)
	if err != nil {
		return recordid.ID{}, err
	}
	id, err := recordid.New(c.Params.String(ParamTable), raw)
	if err != nil {
		return recordid.ID{}, ValidationError(op, "", err)
	}
	return id, nil
}

func createRecord(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpCreate

	table, err := c.Params.RequiredString(op, ParamTable)
	if err != nil {
		return nil, err
	}
	data, err := c.Params.RequiredObject(op, ParamData)
	if err != nil {
		return nil, err
	}

	var id *recordid.ID
	if raw := c.Params.String(ParamID); raw != "" {
		rid, err := recordid.New(table, raw)
		if err != nil {
			return nil, ValidationError(op, "", err)
		}
		id = &rid
	}

	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Create(ctx, table, id, data)
	if err != nil {
		return nil, err
	}
	return item.FormatArrayResult(res, c.Index), nil
}

// getRecord returns no item at all when the record does not exist.
func getRecord(ctx context.Context, c *Call) ([]item.Item, error) {
	id, err := c.recordID(constants.OpGet)
	if err != nil {
		return nil, err
	}
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Select(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.IsEmpty(res) {
		return []item.Item{}, nil
	}
	return item.FormatArrayResult(res, c.Index), nil
}

// updateRecord replaces the record content. Unlike get, a missing record is an error.
func updateRecord(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpUpdate

	id, err := c.recordID(op)
	if err != nil {
		return nil, err
	}
	data, err := c.Params.RequiredObject(op, ParamData)
	if err != nil {
		return nil, err
	}
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}

	existing, err := s.Select(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.IsEmpty(existing) {
		return nil, PreconditionError(op, "", fmt.Errorf("%w: %s", constants.ErrNotFound, id))
	}

	res, err := s.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}
	return item.FormatArrayResult(res, c.Index), nil
}

// mergeRecord merges data into the record. Some server versions answer a merge with an
// empty object, in which case the merged record is read back.
func mergeRecord(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpMerge

	id, err := c.recordID(op)
	if err != nil {
		return nil, err
	}
	data, err := c.Params.RequiredObject(op, ParamData)
	if err != nil {
		return nil, err
	}
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.Merge(ctx, id, data)
	if err != nil {
		return nil, err
	}
	if item.IsEmpty(res) {
		if res, err = s.Select(ctx, id); err != nil {
			return nil, err
		}
	}
	if item.IsEmpty(res) {
		return nil, PreconditionError(op, "", fmt.Errorf("%w: %s", constants.ErrNotFound, id))
	}
	return item.FormatArrayResult(res, c.Index), nil
}

func upsertRecord(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpUpsert

	id, err := c.recordID(op)
	if err != nil {
		return nil, err
	}
	data, err := c.Params.RequiredObject(op, ParamData)
	if err != nil {
		return nil, err
	}
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Upsert(ctx, id, data)
	if err != nil {
		return nil, err
	}
	return item.FormatArrayResult(res, c.Index), nil
}

func deleteRecord(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpDelete

	id, err := c.recordID(op)
	if err != nil {
		return nil, err
	}
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.IsEmpty(res) {
		return nil, PreconditionError(op, "", fmt.Errorf("%w: %s", constants.ErrDeleteFailed, id))
	}
	return item.FormatArrayResult(res, c.Index), nil
}

// createManyRecords inserts every object of the data array with a single call
// and returns one item per created record, in server order.
func createManyRecords(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpCreateMany

	table, err := c.Params.RequiredString(op, ParamTable)
	if err != nil {
		return nil, err
	}
	data, err := c.Params.Array(op, ParamData)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ValidationError(op, "data must be a non-empty JSON array", nil)
	}
	for i, d := range data {
		if _, ok := d.(map[string]any); !ok {
			return nil, ValidationError(op, fmt.Sprintf("data[%d] must be a JSON object, got %T", i, d), nil)
		}
	}

	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.Insert(ctx, table, data)
	if err != nil {
		return nil, err
	}
	return item.FormatArrayResult(res, c.Index), nil
}

// getAllRecords selects the whole table, paginated by the limit and start options.
func getAllRecords(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpGetAll

	table, err := c.Params.RequiredString(op, ParamTable)
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

	sql, vars := surql.SelectFrom(table).Limit(limit).Start(start).Build()
	sql, _ = c.prepare(sql, 0, 0)

	results, err := c.query(ctx, op, sql, vars)
	if err != nil {
		return nil, err
	}
	return item.FormatArrayResult(item.FirstArray(lastResult(results)), c.Index), nil
}

// getManyRecords selects the records named by a comma separated id list.
// Ids without a prefix are qualified with the table parameter. Entries that are not
// valid record ids are skipped.
func getManyRecords(ctx context.Context, c *Call) ([]item.Item, error) {
	const op = constants.OpGetMany

	table := c.Params.String(ParamTable)
	ids, invalid := recordid.ParseList(table, c.Params.String(ParamIDs))
	for _, err := range invalid {
		c.Logger.Debug().Err(err).Msg("skipping invalid record id")
	}
	if len(ids) == 0 {
		return []item.Item{}, nil
	}
	if table == "" {
		table = ids[0].Table
	}

	values := make([]any, 0, len(ids))
	for _, id := range ids {
		if id.Table != table {
			return nil, ValidationError(op, fmt.Sprintf("id %s does not belong to table %s", id, table), nil)
		}
		values = append(values, id.RecordID())
	}

	sql, vars := surql.SelectFrom(table).WhereIDIn(values...).Build()
	sql, _ = c.prepare(sql, 0, 0)

	results, err := c.query(ctx, op, sql, vars)
	if err != nil {
		return nil, err
	}
	return item.FormatArrayResult(item.FirstArray(lastResult(results)), c.Index), nil
}
