package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealflow/pkg/credentials"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvURL, EnvNamespace, EnvDatabase, EnvUser, EnvPassword, EnvAddr, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestLoadJobYAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "job.yaml", `
resource: record
operation: createMany
continueOnFail: true
credentials:
  mode: values
  host: localhost
  port: 8000
  namespace: test
  database: app
  username: root
  password: root
items:
  - params:
      table: person
      data:
        - name: A
        - name: B
`)
	req, err := LoadJob(path)
	require.NoError(t, err)
	assert.Equal(t, "record", req.Resource)
	assert.Equal(t, "createMany", req.Operation)
	assert.True(t, req.ContinueOnFail)
	assert.Equal(t, credentials.ModeValues, req.Settings.Mode)
	assert.Equal(t, 8000, req.Settings.Port)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "person", req.Items[0].Params["table"])
	assert.Len(t, req.Items[0].Params["data"], 2)
}

func TestLoadJobJSONWithEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvURL, "wss://demo.aws.surreal.cloud")
	t.Setenv(EnvNamespace, "prod")

	path := writeFile(t, "job.json", `{"resource":"query","operation":"executeQuery","credentials":{"namespace":"test"},"items":[{"params":{"query":"RETURN 1"}}]}`)
	req, err := LoadJob(path)
	require.NoError(t, err)
	assert.Equal(t, credentials.ModeConnectionString, req.Settings.Mode)
	assert.Equal(t, "wss://demo.aws.surreal.cloud", req.Settings.ConnectionString)
	assert.Equal(t, "prod", req.Settings.Namespace)
}

func TestLoadJobErrors(t *testing.T) {
	clearEnv(t)

	_, err := LoadJob(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadJob(writeFile(t, "bad.yaml", "resource: [unclosed"))
	assert.Error(t, err)

	_, err = LoadJob(writeFile(t, "partial.yaml", "resource: record\n"))
	assert.ErrorContains(t, err, "operation")
}

func TestLoadServerDefaults(t *testing.T) {
	clearEnv(t)

	conf, err := LoadServer("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, conf.Addr)
	assert.Nil(t, conf.Credentials)
}

func TestLoadServerFileAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAddr, ":9090")
	t.Setenv(EnvPassword, "secret")

	path := writeFile(t, "server.yaml", `
addr: ":8081"
logLevel: debug
credentials:
  mode: connectionString
  connectionString: ws://db:8000
  username: root
`)
	conf, err := LoadServer(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", conf.Addr)
	assert.Equal(t, "debug", conf.LogLevel)
	require.NotNil(t, conf.Credentials)
	assert.Equal(t, "ws://db:8000", conf.Credentials.ConnectionString)
	assert.Equal(t, "secret", conf.Credentials.Password)
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("SURREALFLOW_TEST_VALUE", "")
	assert.Equal(t, "fallback", GetEnvOrDefault("SURREALFLOW_TEST_VALUE", "fallback"))
	t.Setenv("SURREALFLOW_TEST_VALUE", "set")
	assert.Equal(t, "set", GetEnvOrDefault("SURREALFLOW_TEST_VALUE", "fallback"))
}
