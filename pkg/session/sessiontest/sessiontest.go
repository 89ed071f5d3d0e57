// Package sessiontest provides a testify mock of [session.Session].
package sessiontest

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"github.com/surrealdb/surrealflow/pkg/recordid"
	"github.com/surrealdb/surrealflow/pkg/session"
)

// Session is a mock session. Set expectations with On before use.
type Session struct {
	mock.Mock
}

var _ session.Session = (*Session)(nil)

// Factory returns a factory that always yields s and records the credentials it was given.
// Expectations are set on the "Factory" method and return only an error.
func (s *Session) Factory() session.Factory {
	return func(_ context.Context, creds credentials.Credentials) (session.Session, error) {
		args := s.MethodCalled("Factory", creds)
		if err := args.Error(0); err != nil {
			return nil, err
		}
		return s, nil
	}
}

func (s *Session) Query(ctx context.Context, sql string, vars map[string]any) ([]session.QueryResult, error) {
	args := s.Called(sql, vars)
	res, _ := args.Get(0).([]session.QueryResult)
	return res, args.Error(1)
}

func (s *Session) Select(ctx context.Context, id recordid.ID) (any, error) {
	args := s.Called(id.String())
	return args.Get(0), args.Error(1)
}

func (s *Session) Create(ctx context.Context, table string, id *recordid.ID, data map[string]any) (any, error) {
	what := table
	if id != nil {
		what = id.String()
	}
	args := s.Called(what, data)
	return args.Get(0), args.Error(1)
}

func (s *Session) Update(ctx context.Context, id recordid.ID, data map[string]any) (any, error) {
	args := s.Called(id.String(), data)
	return args.Get(0), args.Error(1)
}

func (s *Session) Merge(ctx context.Context, id recordid.ID, data map[string]any) (any, error) {
	args := s.Called(id.String(), data)
	return args.Get(0), args.Error(1)
}

func (s *Session) Upsert(ctx context.Context, id recordid.ID, data map[string]any) (any, error) {
	args := s.Called(id.String(), data)
	return args.Get(0), args.Error(1)
}

func (s *Session) Delete(ctx context.Context, id recordid.ID) (any, error) {
	args := s.Called(id.String())
	return args.Get(0), args.Error(1)
}

func (s *Session) Insert(ctx context.Context, table string, data []any) ([]any, error) {
	args := s.Called(table, data)
	res, _ := args.Get(0).([]any)
	return res, args.Error(1)
}

func (s *Session) Version(ctx context.Context) (string, error) {
	args := s.Called()
	return args.String(0), args.Error(1)
}

func (s *Session) Close(ctx context.Context) error {
	args := s.Called()
	return args.Error(0)
}

// OK builds a successful statement result.
func OK(result any) session.QueryResult {
	return session.QueryResult{Status: "OK", Result: result}
}

// ERR builds a failed statement result.
func ERR(message string) session.QueryResult {
	return session.QueryResult{Status: "ERR", Error: message}
}
