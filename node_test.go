package surrealflow

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealflow/internal/handlers"
	"github.com/surrealdb/surrealflow/internal/metrics"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"github.com/surrealdb/surrealflow/pkg/item"
	"github.com/surrealdb/surrealflow/pkg/logger"
	"github.com/surrealdb/surrealflow/pkg/session"
	"github.com/surrealdb/surrealflow/pkg/session/sessiontest"
)

var settings = credentials.Settings{
	Mode:             credentials.ModeConnectionString,
	ConnectionString: "ws://localhost:8000",
	Namespace:        "test",
	Database:         "app",
	Username:         "root",
	Password:         "root",
}

func newNode(t *testing.T, s *sessiontest.Session) *Node {
	t.Helper()
	return New(WithSessionFactory(s.Factory()), WithMetrics(metrics.New(prometheus.NewRegistry())))
}

func getItems(ids ...string) []item.Input {
	out := make([]item.Input, len(ids))
	for i, id := range ids {
		out[i] = item.Input{Params: map[string]any{"table": "person", "id": id}}
	}
	return out
}

func TestExecuteContinueOnFail(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Close").Return(nil).Once()
	s.On("Select", "person:a").Return(map[string]any{"name": "A"}, nil)
	s.On("Select", "person:b").Return(nil, errors.New("connection reset"))
	s.On("Select", "person:c").Return(map[string]any{"name": "C"}, nil)
	expectOpen(s)

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:       constants.ResourceRecord,
		Operation:      constants.OpGet,
		Settings:       settings,
		Items:          getItems("a", "b", "c"),
		ContinueOnFail: true,
	})
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "A", out[0].JSON["name"])
	assert.True(t, out[1].IsError())
	assert.Equal(t, 1, out[1].PairedItem)
	assert.Equal(t, "connection reset", out[1].JSON[item.ErrorKey])
	assert.Equal(t, "C", out[2].JSON["name"])
	assert.Equal(t, 2, out[2].PairedItem)

	s.AssertExpectations(t)
	s.AssertNumberOfCalls(t, "Factory", 1)
	s.AssertNumberOfCalls(t, "Close", 1)
}

func TestExecuteAbortsWithoutContinueOnFail(t *testing.T) {
	s := &sessiontest.Session{}
	expectOpen(s)
	s.On("Close").Return(nil).Once()
	s.On("Select", "person:a").Return(map[string]any{"name": "A"}, nil)
	s.On("Select", "person:b").Return(nil, errors.New("connection reset"))

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:  constants.ResourceRecord,
		Operation: constants.OpGet,
		Settings:  settings,
		Items:     getItems("a", "b", "c"),
	})
	assert.Nil(t, out)

	var itemErr *ItemError
	require.ErrorAs(t, err, &itemErr)
	assert.Equal(t, 1, itemErr.Index)
	assert.Equal(t, constants.OpGet, itemErr.Operation)
	assert.EqualError(t, itemErr.Err, "connection reset")

	s.AssertNotCalled(t, "Select", "person:c")
	s.AssertNumberOfCalls(t, "Close", 1)
}

func TestExecuteGetMissingRecord(t *testing.T) {
	s := &sessiontest.Session{}
	expectOpen(s)
	s.On("Close").Return(nil)
	s.On("Select", "person:nobody").Return(nil, nil)

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:  constants.ResourceRecord,
		Operation: constants.OpGet,
		Settings:  settings,
		Items:     getItems("nobody"),
	})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestExecuteCreateMany(t *testing.T) {
	s := &sessiontest.Session{}
	expectOpen(s)
	s.On("Close").Return(nil)
	data := []any{map[string]any{"name": "A"}, map[string]any{"name": "B"}}
	s.On("Insert", "person", data).Return([]any{
		map[string]any{"id": "person:1", "name": "A"},
		map[string]any{"id": "person:2", "name": "B"},
	}, nil).Once()

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:  constants.ResourceRecord,
		Operation: constants.OpCreateMany,
		Settings:  settings,
		Items:     []item.Input{{Params: map[string]any{"table": "person", "data": `[{"name":"A"},{"name":"B"}]`}}},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].JSON["name"])
	assert.Equal(t, "B", out[1].JSON["name"])
	assert.Equal(t, 0, out[1].PairedItem)
}

func TestExecuteUnsupportedOperation(t *testing.T) {
	s := &sessiontest.Session{}

	_, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:  constants.ResourceRecord,
		Operation: "truncate",
		Settings:  settings,
		Items:     getItems("a"),
	})
	assert.ErrorIs(t, err, constants.ErrUnsupportedOperation)
	s.AssertNotCalled(t, "Factory", mock.Anything)
	s.AssertNotCalled(t, "Close")
}

func TestExecuteNoSessionForHealthCheck(t *testing.T) {
	s := &sessiontest.Session{}

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:  constants.ResourceSystem,
		Operation: constants.OpHealthCheck,
		Settings:  credentials.Settings{Mode: credentials.ModeValues, Host: "127.0.0.1", Port: 1},
		Items:     []item.Input{{}},
	})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "unhealthy", out[0].JSON["status"])
	s.AssertNotCalled(t, "Close")
}

func TestExecuteOpenFailureIsReportedPerItem(t *testing.T) {
	s := &sessiontest.Session{}
	s.On("Factory", mock.Anything).Return(errors.New("dial tcp: connection refused")).Once()

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:       constants.ResourceRecord,
		Operation:      constants.OpGet,
		Settings:       settings,
		Items:          getItems("a", "b"),
		ContinueOnFail: true,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, out[0].IsError())
	assert.True(t, out[1].IsError())
	s.AssertNumberOfCalls(t, "Factory", 1)
	s.AssertNotCalled(t, "Close")
}

func TestExecuteInvalidSettings(t *testing.T) {
	s := &sessiontest.Session{}
	bad := credentials.Settings{Mode: credentials.ModeConnectionString, ConnectionString: "  "}

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:       constants.ResourceRecord,
		Operation:      constants.OpGet,
		Settings:       bad,
		Items:          getItems("a", "b"),
		ContinueOnFail: true,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Contains(t, out[1].JSON[item.ErrorKey], "item 1")
	assert.Contains(t, out[1].JSON[item.ErrorKey], constants.ErrMissingConnectionString.Error())
}

func TestExecuteNamespaceOverride(t *testing.T) {
	s := &sessiontest.Session{}
	expectOpen(s)
	s.On("Close").Return(nil)
	s.On("Query", "USE NS other DB app;", map[string]any(nil)).Return([]session.QueryResult{sessiontest.OK(nil)}, nil).Once()
	s.On("Select", "person:a").Return(map[string]any{"name": "A"}, nil)
	s.On("Select", "person:b").Return(map[string]any{"name": "B"}, nil)

	items := getItems("a", "b")
	items[1].Params["namespace"] = "other"

	out, err := newNode(t, s).Execute(context.Background(), Request{
		Resource:  constants.ResourceRecord,
		Operation: constants.OpGet,
		Settings:  settings,
		Items:     items,
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
	s.AssertExpectations(t)
}

func TestExecuteLogsExecutionID(t *testing.T) {
	var buf bytes.Buffer
	logData, err := logger.New().FromBuffer(&buf).WithLevel("info").Make()
	require.NoError(t, err)

	s := &sessiontest.Session{}
	expectOpen(s)
	s.On("Close").Return(nil)
	s.On("Select", "person:a").Return(nil, nil)

	n := New(WithSessionFactory(s.Factory()), WithLogger(logData.Logger))
	_, err = n.Execute(context.Background(), Request{
		Resource:  constants.ResourceRecord,
		Operation: constants.OpGet,
		Settings:  settings,
		Items:     getItems("a"),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"execution_id"`)
	assert.Contains(t, buf.String(), "batch finished")
}

func TestOperations(t *testing.T) {
	ops := New().Operations()
	assert.Contains(t, ops, Operation{Resource: constants.ResourceRecord, Operation: constants.OpCreateMany})
	assert.Contains(t, ops, Operation{Resource: constants.ResourceSystem, Operation: constants.OpVersion})
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "", errorType(nil))
	assert.Equal(t, "precondition", errorType(handlers.PreconditionError("update", "", constants.ErrNotFound)))
	assert.Equal(t, "validation", errorType(&credentials.ValidationError{Err: constants.ErrMissingConnectionString}))
	assert.Equal(t, "transport", errorType(errors.New("eof")))
}

// expectOpen expects the batch session to be opened exactly once with the batch credentials.
func expectOpen(s *sessiontest.Session) {
	s.On("Factory", mock.MatchedBy(func(c credentials.Credentials) bool {
		return c.Namespace == "test" && c.Database == "app"
	})).Return(nil).Once()
}
