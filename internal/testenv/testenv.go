// Package testenv provides helpers for integration tests against a running SurrealDB.
//
// Tests using it are skipped unless SURREALDB_URL is set, e.g.
//
//	SURREALDB_URL=ws://localhost:8000 go test ./...
package testenv

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/surrealdb/surrealflow/internal/surql"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"github.com/surrealdb/surrealflow/pkg/session"
)

const (
	// EnvURL is the environment variable that specifies the SurrealDB endpoint.
	EnvURL = "SURREALDB_URL"

	// Namespace is the namespace integration tests run in.
	Namespace = "surrealflow_test"
)

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// Settings returns root connection settings for database, skipping the test when
// no server is configured.
func Settings(t testing.TB, database string) credentials.Settings {
	t.Helper()
	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s is not set", EnvURL)
	}
	return credentials.Settings{
		Mode:             credentials.ModeConnectionString,
		ConnectionString: url,
		Authentication:   credentials.AuthRoot,
		Namespace:        Namespace,
		Database:         database,
		Username:         getEnvOrDefault("SURREALDB_USER", "root"),
		Password:         getEnvOrDefault("SURREALDB_PASS", "root"),
	}
}

// Clean removes the given tables so each test starts from an empty database.
func Clean(t testing.TB, s credentials.Settings, tables ...string) {
	t.Helper()
	if err := clean(context.Background(), s, tables...); err != nil {
		t.Fatalf("clean tables: %v", err)
	}
}

func clean(ctx context.Context, s credentials.Settings, tables ...string) error {
	creds, err := credentials.Resolve(s, 0)
	if err != nil {
		return err
	}
	sess, err := session.Open(ctx, creds)
	if err != nil {
		return err
	}
	defer sess.Close(ctx)

	for _, table := range tables {
		results, err := sess.Query(ctx, surql.RemoveTable(table).IfExists().String(), nil)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Failed() {
				return fmt.Errorf("remove table %s: %s", table, r.Error)
			}
		}
	}
	return nil
}
