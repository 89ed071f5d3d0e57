package session

import (
	"context"
	"strings"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealflow/pkg/recordid"
)

// dial is a variable so tests can observe the endpoint without a server.
var dial = func(ctx context.Context, endpoint string) (*surrealdb.DB, error) {
	return surrealdb.FromEndpointURLString(ctx, endpoint)
}

// sdkSession implements Session on top of the SurrealDB Go SDK.
type sdkSession struct {
	db *surrealdb.DB
}

func (s *sdkSession) Query(ctx context.Context, sql string, vars map[string]any) ([]QueryResult, error) {
	res, err := surrealdb.Query[any](ctx, s.db, sql, vars)
	if res == nil {
		return nil, err
	}
	// Statement level failures are reported per result; the joined error adds nothing.
	out := make([]QueryResult, 0, len(*res))
	for _, r := range *res {
		qr := QueryResult{Status: r.Status, Time: r.Time, Result: r.Result}
		if r.Error != nil {
			qr.Error = r.Error.Error()
		}
		out = append(out, qr)
	}
	return out, nil
}

func (s *sdkSession) Select(ctx context.Context, id recordid.ID) (any, error) {
	res, err := surrealdb.Select[any](ctx, s.db, id.RecordID())
	if err != nil {
		if isNoResult(err) {
			return nil, nil
		}
		return nil, err
	}
	return deref(res), nil
}

func (s *sdkSession) Create(ctx context.Context, table string, id *recordid.ID, data map[string]any) (any, error) {
	if id != nil {
		res, err := surrealdb.Create[any](ctx, s.db, id.RecordID(), data)
		return deref(res), err
	}
	res, err := surrealdb.Create[any](ctx, s.db, models.Table(table), data)
	return deref(res), err
}

func (s *sdkSession) Update(ctx context.Context, id recordid.ID, data map[string]any) (any, error) {
	res, err := surrealdb.Update[any](ctx, s.db, id.RecordID(), data)
	return deref(res), err
}

func (s *sdkSession) Merge(ctx context.Context, id recordid.ID, data map[string]any) (any, error) {
	res, err := surrealdb.Merge[any](ctx, s.db, id.RecordID(), data)
	return deref(res), err
}

func (s *sdkSession) Upsert(ctx context.Context, id recordid.ID, data map[string]any) (any, error) {
	res, err := surrealdb.Upsert[any](ctx, s.db, id.RecordID(), data)
	return deref(res), err
}

func (s *sdkSession) Delete(ctx context.Context, id recordid.ID) (any, error) {
	res, err := surrealdb.Delete[any](ctx, s.db, id.RecordID())
	if err != nil && isNoResult(err) {
		return nil, nil
	}
	return deref(res), err
}

func (s *sdkSession) Insert(ctx context.Context, table string, data []any) ([]any, error) {
	res, err := surrealdb.Insert[any](ctx, s.db, models.Table(table), data)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return []any{}, nil
	}
	return *res, nil
}

func (s *sdkSession) Version(ctx context.Context) (string, error) {
	v, err := s.db.Version(ctx)
	if err != nil {
		return "", err
	}
	return v.Version, nil
}

func (s *sdkSession) Close(ctx context.Context) error {
	return s.db.Close(ctx)
}

func deref(v *any) any {
	if v == nil {
		return nil
	}
	return *v
}

// isNoResult matches the SDK error returned when a select or delete touches no record.
func isNoResult(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Expected a single or multiple results but got 0") ||
		strings.Contains(msg, "cannot unmarshal array into Go value")
}
