package main

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "surrealflow dev\n", out)
}

func TestVersionCommandWithServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("surrealdb-2.1.4"))
	}))
	defer srv.Close()

	out, err := execute(t, "version", "--url", srv.URL+"/rpc")
	require.NoError(t, err)
	assert.Contains(t, out, "server surrealdb-2.1.4")
}

func TestRunCommandHealthCheck(t *testing.T) {
	for _, k := range []string{"SURREALDB_URL", "SURREALDB_NS", "SURREALDB_DB", "SURREALDB_USER", "SURREALDB_PASS"} {
		t.Setenv(k, "")
	}
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	job := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(job, []byte(`
resource: system
operation: healthCheck
credentials:
  mode: connectionString
  connectionString: ws://`+addr+`
items:
  - json: {}
`), 0o600))

	out, err := execute(t, "run", "-f", job, "--log-level", "error")
	require.NoError(t, err)

	var res struct {
		Items []struct {
			JSON map[string]any `json:"json"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Items, 1)
	assert.Equal(t, "unhealthy", res.Items[0].JSON["status"])
}

func TestRunCommandUnsupported(t *testing.T) {
	job := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(job, []byte(`{"resource":"record","operation":"truncate","items":[{}]}`), 0o600))

	_, err := execute(t, "run", "-f", job)
	assert.ErrorContains(t, err, "unsupported operation")
}

func TestRunCommandRequiresFile(t *testing.T) {
	_, err := execute(t, "run")
	assert.Error(t, err)
}
