package handlers

import (
	"context"

	"github.com/surrealdb/surrealflow/internal/probe"
	"github.com/surrealdb/surrealflow/pkg/item"
	"github.com/surrealdb/surrealflow/pkg/session"
)

// Version sources reported by the version operation.
const (
	VersionSourceRPC  = "rpc"
	VersionSourceHTTP = "http"
	VersionUnknown    = "unknown"
)

func (c *Call) probe() probe.Client {
	return probe.New(session.BaseURL(c.Credentials.ConnectionString))
}

// healthCheck calls the server health endpoint and never fails.
func healthCheck(ctx context.Context, c *Call) ([]item.Item, error) {
	h := c.probe().Health(ctx)
	c.Logger.Debug().Str("status", h.Status).Str("url", h.URL).Msg("health check")
	return []item.Item{{JSON: h.Map(), PairedItem: c.Index}}, nil
}

// version asks the session first, then the HTTP version endpoint, and reports
// "unknown" with the collected errors when both fail. It never fails.
func version(ctx context.Context, c *Call) ([]item.Item, error) {
	var details []string

	v, err := sessionVersion(ctx, c)
	if err == nil && v != "" {
		return versionItem(c, v, VersionSourceRPC, nil), nil
	}
	if err != nil {
		details = append(details, "rpc: "+err.Error())
	}

	v, err = c.probe().Version(ctx)
	if err == nil {
		return versionItem(c, v, VersionSourceHTTP, details), nil
	}
	details = append(details, "http: "+err.Error())

	c.Logger.Debug().Strs("details", details).Msg("server version unavailable")
	return versionItem(c, VersionUnknown, "", details), nil
}

func sessionVersion(ctx context.Context, c *Call) (string, error) {
	s, err := c.Session(ctx)
	if err != nil {
		return "", err
	}
	return s.Version(ctx)
}

func versionItem(c *Call, v, source string, details []string) []item.Item {
	m := map[string]any{"version": v}
	if source != "" {
		m["source"] = source
	}
	if len(details) > 0 {
		m["details"] = details
	}
	return []item.Item{{JSON: m, PairedItem: c.Index}}
}
