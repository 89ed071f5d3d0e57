package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealflow/internal/surql"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"github.com/surrealdb/surrealflow/pkg/item"
	"github.com/surrealdb/surrealflow/pkg/session"
)

// SessionProvider returns the batch session, opening it on first use.
type SessionProvider func(ctx context.Context) (session.Session, error)

// Call is everything a handler needs to process one input item.
type Call struct {
	Session     SessionProvider
	Credentials credentials.Credentials
	Index       int
	Params      Params
	Logger      zerolog.Logger
}

// Func processes one input item.
type Func func(ctx context.Context, c *Call) ([]item.Item, error)

// Key identifies a handler.
type Key struct {
	Resource  string `json:"resource"`
	Operation string `json:"operation"`
}

func (k Key) String() string {
	return k.Resource + "/" + k.Operation
}

var registry = map[Key]Func{
	{constants.ResourceRecord, constants.OpCreate}:     createRecord,
	{constants.ResourceRecord, constants.OpGet}:        getRecord,
	{constants.ResourceRecord, constants.OpUpdate}:     updateRecord,
	{constants.ResourceRecord, constants.OpMerge}:      mergeRecord,
	{constants.ResourceRecord, constants.OpUpsert}:     upsertRecord,
	{constants.ResourceRecord, constants.OpDelete}:     deleteRecord,
	{constants.ResourceRecord, constants.OpCreateMany}: createManyRecords,
	{constants.ResourceRecord, constants.OpGetAll}:     getAllRecords,
	{constants.ResourceRecord, constants.OpGetMany}:    getManyRecords,

	{constants.ResourceTable, constants.OpCreateTable}: createTable,
	{constants.ResourceTable, constants.OpDeleteTable}: deleteTable,
	{constants.ResourceTable, constants.OpListTables}:  listTables,
	{constants.ResourceTable, constants.OpGetTable}:    getTable,

	{constants.ResourceIndex, constants.OpCreateIndex}:   createIndex,
	{constants.ResourceIndex, constants.OpDropIndex}:     dropIndex,
	{constants.ResourceIndex, constants.OpListIndexes}:   listIndexes,
	{constants.ResourceIndex, constants.OpDescribeIndex}: describeIndex,
	{constants.ResourceIndex, constants.OpRebuildIndex}:  rebuildIndex,

	{constants.ResourceQuery, constants.OpExecuteQuery}: executeQuery,

	{constants.ResourceSystem, constants.OpHealthCheck}: healthCheck,
	{constants.ResourceSystem, constants.OpVersion}:     version,
}

// Lookup returns the handler for a resource and operation.
func Lookup(resource, operation string) (Func, error) {
	fn, ok := registry[Key{Resource: resource, Operation: operation}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", constants.ErrUnsupportedOperation, resource, operation)
	}
	return fn, nil
}

// Operations lists every supported pair, sorted by resource then operation.
func Operations() []Key {
	keys := make([]Key, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Resource != keys[j].Resource {
			return keys[i].Resource < keys[j].Resource
		}
		return keys[i].Operation < keys[j].Operation
	})
	return keys
}

// query runs sql on the batch session and fails on the first statement the server rejected.
func (c *Call) query(ctx context.Context, op, sql string, vars map[string]any) ([]session.QueryResult, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug().Str("operation", op).Str("query", sql).Msg("executing query")

	results, err := s.Query(ctx, sql, vars)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		if r.Failed() {
			msg := r.Error
			if msg == "" {
				msg = "status " + r.Status
			}
			return nil, ServerError(op, fmt.Sprintf("statement %d failed", i+1), fmt.Errorf("%s", msg))
		}
	}
	return results, nil
}

// prepare finalizes a statement, prefixing USE when the item carries a namespace and database.
// The second return value reports whether a USE statement was added, whose result the caller skips.
func (c *Call) prepare(sql string, limit, start int) (string, bool) {
	opts := surql.PrepareOptions{
		UseContext: c.Credentials.HasContext(),
		Namespace:  c.Credentials.Namespace,
		Database:   c.Credentials.Database,
		Limit:      limit,
		Start:      start,
	}
	prefixed := opts.UseContext && !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sql)), "USE ")
	return surql.Prepare(sql, opts), prefixed
}

// lastResult returns the result of the final statement, or nil for an empty response.
func lastResult(results []session.QueryResult) any {
	if len(results) == 0 {
		return nil
	}
	return results[len(results)-1].Result
}
