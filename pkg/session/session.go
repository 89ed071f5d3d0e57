// Package session opens SurrealDB sessions for a batch of workflow items.
//
// Operation handlers depend on the [Session] interface only. The production implementation
// wraps a [surrealdb.DB] from the official SDK; tests use [sessiontest.Session].
//
// A session is opened once per batch and closed exactly once when the batch ends.
// It is never pooled or shared across batches.
package session

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealflow/pkg/constants"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"github.com/surrealdb/surrealflow/pkg/recordid"
)

// QueryResult is the outcome of one statement of a multi-statement query.
type QueryResult struct {
	Status string
	Time   string
	Result any
	// Error is the server reported error message, empty on success.
	Error string
}

// Failed reports whether the statement failed on the server.
func (r QueryResult) Failed() bool {
	return r.Status == constants.StatusERR || r.Error != ""
}

// Session is the set of database calls the connector makes.
type Session interface {
	Query(ctx context.Context, sql string, vars map[string]any) ([]QueryResult, error)
	Select(ctx context.Context, id recordid.ID) (any, error)
	Create(ctx context.Context, table string, id *recordid.ID, data map[string]any) (any, error)
	Update(ctx context.Context, id recordid.ID, data map[string]any) (any, error)
	Merge(ctx context.Context, id recordid.ID, data map[string]any) (any, error)
	Upsert(ctx context.Context, id recordid.ID, data map[string]any) (any, error)
	Delete(ctx context.Context, id recordid.ID) (any, error)
	Insert(ctx context.Context, table string, data []any) ([]any, error)
	Version(ctx context.Context) (string, error)
	Close(ctx context.Context) error
}

// Factory opens a session for the given credentials.
type Factory func(ctx context.Context, creds credentials.Credentials) (Session, error)

// RPCURL returns the endpoint the SDK should dial.
// The RPC path is appended unless the host is a managed cloud instance
// or the connection string already ends with it.
func RPCURL(connectionString string) string {
	cs := strings.TrimRight(strings.TrimSpace(connectionString), "/")
	if IsCloudHost(cs) || strings.HasSuffix(cs, constants.RPCPath) {
		return cs
	}
	return cs + constants.RPCPath
}

// BaseURL strips the RPC path and maps websocket schemes to their HTTP counterparts,
// giving the root the plain HTTP endpoints (/health, /version) are served from.
func BaseURL(connectionString string) string {
	cs := strings.TrimRight(strings.TrimSpace(connectionString), "/")
	cs = strings.TrimSuffix(cs, constants.RPCPath)

	switch {
	case strings.HasPrefix(cs, constants.WebsocketSecureScheme+"://"):
		cs = constants.HTTPSecureScheme + strings.TrimPrefix(cs, constants.WebsocketSecureScheme)
	case strings.HasPrefix(cs, constants.WebsocketScheme+"://"):
		cs = constants.HTTPScheme + strings.TrimPrefix(cs, constants.WebsocketScheme)
	}
	return cs
}

// IsCloudHost reports whether the connection string points at a managed cloud endpoint.
func IsCloudHost(connectionString string) bool {
	host := connectionString
	if u, err := url.Parse(connectionString); err == nil && u.Host != "" {
		host = u.Host
	}
	return strings.Contains(strings.ToLower(host), constants.CloudHostSuffix)
}

// SignInParams builds the sign-in payload for creds.
// Managed cloud endpoints always sign in with namespace and database scope;
// otherwise the scope follows the configured authentication level.
func SignInParams(creds credentials.Credentials) map[string]any {
	params := map[string]any{
		"user": creds.Username,
		"pass": creds.Password,
	}

	auth := creds.Authentication
	if IsCloudHost(creds.ConnectionString) {
		auth = credentials.AuthDatabase
	}

	switch auth {
	case credentials.AuthNamespace:
		params["NS"] = creds.Namespace
	case credentials.AuthDatabase:
		params["NS"] = creds.Namespace
		params["DB"] = creds.Database
	}
	return params
}

type openConfig struct {
	logger zerolog.Logger
}

// Option configures [Open].
type Option func(*openConfig)

// WithLogger sets the logger used while opening the session.
func WithLogger(l zerolog.Logger) Option {
	return func(c *openConfig) {
		c.logger = l
	}
}

// NewFactory returns a [Factory] that opens SDK backed sessions.
func NewFactory(opts ...Option) Factory {
	return func(ctx context.Context, creds credentials.Credentials) (Session, error) {
		return Open(ctx, creds, opts...)
	}
}

// Open connects, signs in and selects the namespace and database.
// Errors from the SDK are returned with context but otherwise unchanged, and nothing is retried.
func Open(ctx context.Context, creds credentials.Credentials, opts ...Option) (Session, error) {
	conf := openConfig{logger: zerolog.Nop()}
	for _, o := range opts {
		o(&conf)
	}

	endpoint := RPCURL(creds.ConnectionString)
	log := conf.logger.With().Str("endpoint", endpoint).Logger()

	db, err := dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}
	s := &sdkSession{db: db}

	if creds.Username != "" {
		if _, err := db.SignIn(ctx, SignInParams(creds)); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
		log.Debug().Str("authentication", string(creds.Authentication)).Msg("signed in")
	}

	if creds.Namespace != "" || creds.Database != "" {
		if err := db.Use(ctx, creds.Namespace, creds.Database); err != nil {
			_ = s.Close(ctx)
			return nil, fmt.Errorf("failed to use namespace/database: %w", err)
		}
		log.Debug().Str("namespace", creds.Namespace).Str("database", creds.Database).Msg("selected namespace and database")
	}

	return s, nil
}
