package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/credentials"
)

func TestRPCURL(t *testing.T) {
	cases := map[string]string{
		"ws://localhost:8000":                   "ws://localhost:8000/rpc",
		"ws://localhost:8000/":                  "ws://localhost:8000/rpc",
		"ws://localhost:8000/rpc":               "ws://localhost:8000/rpc",
		"http://localhost:8000":                 "http://localhost:8000/rpc",
		"wss://demo-06a.aws-euw1.surreal.cloud": "wss://demo-06a.aws-euw1.surreal.cloud",
	}
	for in, want := range cases {
		assert.Equal(t, want, RPCURL(in), in)
	}
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8000", BaseURL("ws://localhost:8000/rpc"))
	assert.Equal(t, "https://db.example.com", BaseURL("wss://db.example.com/rpc/"))
	assert.Equal(t, "http://localhost:8000", BaseURL("http://localhost:8000"))
}

func TestSignInParams(t *testing.T) {
	base := credentials.Credentials{
		ConnectionString: "ws://localhost:8000",
		Username:         "root",
		Password:         "root",
		Namespace:        "ns",
		Database:         "db",
	}

	root := base
	root.Authentication = credentials.AuthRoot
	assert.Equal(t, map[string]any{"user": "root", "pass": "root"}, SignInParams(root))

	ns := base
	ns.Authentication = credentials.AuthNamespace
	assert.Equal(t, map[string]any{"user": "root", "pass": "root", "NS": "ns"}, SignInParams(ns))

	db := base
	db.Authentication = credentials.AuthDatabase
	assert.Equal(t, map[string]any{"user": "root", "pass": "root", "NS": "ns", "DB": "db"}, SignInParams(db))

	cloud := root
	cloud.ConnectionString = "wss://x.surreal.cloud"
	assert.Equal(t, map[string]any{"user": "root", "pass": "root", "NS": "ns", "DB": "db"}, SignInParams(cloud))
}

func TestOpenPropagatesDialError(t *testing.T) {
	dialErr := errors.New("connection refused")
	var gotEndpoint string

	orig := dial
	dial = func(_ context.Context, endpoint string) (*surrealdb.DB, error) {
		gotEndpoint = endpoint
		return nil, dialErr
	}
	t.Cleanup(func() { dial = orig })

	_, err := Open(context.Background(), credentials.Credentials{ConnectionString: "ws://localhost:8000"})
	require.Error(t, err)
	assert.ErrorIs(t, err, dialErr)
	assert.Equal(t, "ws://localhost:8000"+constants.RPCPath, gotEndpoint)
}

func TestQueryResultFailed(t *testing.T) {
	assert.False(t, QueryResult{Status: constants.StatusOK}.Failed())
	assert.True(t, QueryResult{Status: constants.StatusERR}.Failed())
	assert.True(t, QueryResult{Status: constants.StatusOK, Error: "x"}.Failed())
}
