package surrealflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/surrealdb/surrealflow/internal/handlers"
	"github.com/surrealdb/surrealflow/internal/metrics"
	"github.com/surrealdb/surrealflow/internal/surql"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"github.com/surrealdb/surrealflow/pkg/item"
	"github.com/surrealdb/surrealflow/pkg/session"
)

// Request is one batch submitted by the workflow host.
type Request struct {
	Resource       string               `json:"resource" yaml:"resource"`
	Operation      string               `json:"operation" yaml:"operation"`
	Settings       credentials.Settings `json:"credentials" yaml:"credentials"`
	Items          []item.Input         `json:"items" yaml:"items"`
	ContinueOnFail bool                 `json:"continueOnFail,omitempty" yaml:"continueOnFail,omitempty"`
}

// Operation names one supported resource and operation pair.
type Operation = handlers.Key

// ItemError is the failure of one input item.
type ItemError struct {
	Index     int
	Resource  string
	Operation string
	Err       error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%s/%s): %v", e.Index, e.Resource, e.Operation, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Node executes batches against SurrealDB.
type Node struct {
	open    session.Factory
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// Option configures a Node.
type Option func(*Node)

// WithSessionFactory replaces the SDK backed session factory.
func WithSessionFactory(f session.Factory) Option {
	return func(n *Node) {
		n.open = f
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(n *Node) {
		n.logger = l
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Node) {
		n.metrics = m
	}
}

// New creates a Node.
func New(opts ...Option) *Node {
	n := &Node{logger: zerolog.Nop()}
	for _, o := range opts {
		o(n)
	}
	if n.open == nil {
		n.open = session.NewFactory(session.WithLogger(n.logger))
	}
	return n
}

// Operations lists the supported resource and operation pairs.
func (n *Node) Operations() []Operation {
	return handlers.Operations()
}

// Execute runs the requested operation once per item.
//
// An unsupported pair fails before any item is processed. Otherwise the returned items are
// in input order; an item may produce zero, one or several output items.
func (n *Node) Execute(ctx context.Context, req Request) ([]item.Item, error) {
	fn, err := handlers.Lookup(req.Resource, req.Operation)
	if err != nil {
		return nil, err
	}

	log := n.logger.With().
		Str("execution_id", uuid.NewString()).
		Str("resource", req.Resource).
		Str("operation", req.Operation).
		Logger()
	start := time.Now()
	log.Info().Int("items", len(req.Items)).Msg("batch started")

	base, baseErr := credentials.Resolve(req.Settings, 0)

	sess := &batchSession{open: n.open, creds: base, metrics: n.metrics, logger: log}
	defer sess.close(ctx)

	out := []item.Item{}
	failed := 0
	for i, in := range req.Items {
		itemStart := time.Now()
		items, err := n.executeItem(ctx, fn, i, in, req.Settings, base, baseErr, sess, log)
		n.metrics.ObserveItem(req.Resource, req.Operation, errorType(err), time.Since(itemStart))

		if err != nil {
			failed++
			if !req.ContinueOnFail {
				log.Error().Err(err).Int("item", i).Msg("batch aborted")
				return nil, &ItemError{Index: i, Resource: req.Resource, Operation: req.Operation, Err: err}
			}
			log.Warn().Err(err).Int("item", i).Msg("item failed, continuing")
			out = append(out, item.Error(err, i))
			continue
		}
		out = append(out, items...)
	}

	log.Info().
		Int("output_items", len(out)).
		Int("failed_items", failed).
		Dur("elapsed", time.Since(start)).
		Msg("batch finished")
	return out, nil
}

func (n *Node) executeItem(
	ctx context.Context,
	fn handlers.Func,
	index int,
	in item.Input,
	settings credentials.Settings,
	base credentials.Credentials,
	baseErr error,
	sess *batchSession,
	log zerolog.Logger,
) ([]item.Item, error) {
	if baseErr != nil {
		// Resolve again so the failure names this item.
		_, err := credentials.Resolve(settings, index)
		return nil, err
	}

	params := handlers.Params(in.Params)
	if params == nil {
		params = handlers.Params{}
	}
	creds := base.WithOverrides(params.String(handlers.ParamNamespace), params.String(handlers.ParamDatabase))

	call := &handlers.Call{
		Session: func(ctx context.Context) (session.Session, error) {
			return sess.get(ctx, creds)
		},
		Credentials: creds,
		Index:       index,
		Params:      params,
		Logger:      log.With().Int("item", index).Logger(),
	}
	return fn(ctx, call)
}

// errorType labels an item failure for metrics. It is empty on success.
func errorType(err error) string {
	if err == nil {
		return ""
	}
	var he *handlers.Error
	if errors.As(err, &he) {
		return string(he.Kind)
	}
	var ve *credentials.ValidationError
	if errors.As(err, &ve) {
		return string(handlers.KindValidation)
	}
	return "transport"
}

// batchSession opens the batch session on first use and keeps it pointed at the
// namespace and database of the item being processed.
type batchSession struct {
	open    session.Factory
	creds   credentials.Credentials
	metrics *metrics.Metrics
	logger  zerolog.Logger

	s      session.Session
	err    error
	opened bool
	ns, db string
}

func (b *batchSession) get(ctx context.Context, creds credentials.Credentials) (session.Session, error) {
	if !b.opened {
		b.opened = true
		b.s, b.err = b.open(ctx, b.creds)
		b.metrics.ObserveSession(b.err)
		if b.err != nil {
			b.logger.Error().Err(b.err).Msg("failed to open session")
		} else {
			b.logger.Debug().Msg("session opened")
		}
		b.ns, b.db = b.creds.Namespace, b.creds.Database
	}
	if b.err != nil {
		return nil, b.err
	}

	if creds.HasContext() && (creds.Namespace != b.ns || creds.Database != b.db) {
		results, err := b.s.Query(ctx, surql.UseStatement(creds.Namespace, creds.Database), nil)
		if err == nil {
			for _, r := range results {
				if r.Failed() {
					err = fmt.Errorf("status %s: %s", r.Status, r.Error)
					break
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to use namespace/database: %w", err)
		}
		b.ns, b.db = creds.Namespace, creds.Database
	}
	return b.s, nil
}

func (b *batchSession) close(ctx context.Context) {
	if b.s == nil {
		return
	}
	if err := b.s.Close(ctx); err != nil {
		b.logger.Warn().Err(err).Msg("failed to close session")
	}
}
