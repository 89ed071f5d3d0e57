package handlers

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealflow/internal/probe"
	"github.com/surrealdb/surrealflow/pkg/session"
	"github.com/surrealdb/surrealflow/pkg/session/sessiontest"
)

func surrealHTTP(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {})
	mux.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("surrealdb-2.1.4"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func unreachableURL(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return "ws://" + addr
}

func failingSession(context.Context) (session.Session, error) {
	return nil, errors.New("dial failed")
}

func TestHealthCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy", func(t *testing.T) {
		c := newCall(nil, Params{})
		c.Credentials.ConnectionString = surrealHTTP(t).URL + "/rpc"
		c.Session = failingSession

		items, err := healthCheck(ctx, c)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, probe.StatusHealthy, items[0].JSON["status"])
	})

	t.Run("unreachable host", func(t *testing.T) {
		c := newCall(nil, Params{})
		c.Credentials.ConnectionString = unreachableURL(t)

		items, err := healthCheck(ctx, c)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, probe.StatusUnhealthy, items[0].JSON["status"])
		assert.NotEmpty(t, items[0].JSON["details"])
	})
}

func TestVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("from the session", func(t *testing.T) {
		s := &sessiontest.Session{}
		s.On("Version").Return("2.1.4", nil)

		items, err := version(ctx, newCall(s, Params{}))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"version": "2.1.4", "source": VersionSourceRPC}, items[0].JSON)
	})

	t.Run("falls back to http", func(t *testing.T) {
		c := newCall(nil, Params{})
		c.Credentials.ConnectionString = surrealHTTP(t).URL
		c.Session = failingSession

		items, err := version(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, "surrealdb-2.1.4", items[0].JSON["version"])
		assert.Equal(t, VersionSourceHTTP, items[0].JSON["source"])
		assert.Len(t, items[0].JSON["details"], 1)
	})

	t.Run("unknown", func(t *testing.T) {
		c := newCall(nil, Params{})
		c.Credentials.ConnectionString = unreachableURL(t)
		c.Session = failingSession

		items, err := version(ctx, c)
		require.NoError(t, err)
		assert.Equal(t, VersionUnknown, items[0].JSON["version"])
		assert.Len(t, items[0].JSON["details"], 2)
	})
}
