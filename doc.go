// Package surrealflow exposes SurrealDB operations as workflow actions.
//
// A workflow host hands a [Node] a batch of input items together with a resource and
// operation pair. The node runs the operation once per item, in order, and returns
// output items tagged with the index of the input item that produced them.
//
// # Resources
//
// The record resource covers record CRUD (create, get, update, merge, upsert, delete)
// and bulk variants (createMany, getAll, getMany). The table and index resources manage
// schema through DEFINE, REMOVE, REBUILD and INFO statements. The query resource runs
// raw SurrealQL, and the system resource reports server health and version.
//
// Use [Node.Operations] to list every supported pair.
//
// # Sessions
//
// One SurrealDB session is opened per batch, lazily on the first item that needs it,
// and closed when the batch ends. Items may override the namespace and database; the
// session is switched with a USE statement before such an item runs.
//
// # Failures
//
// By default the first failing item aborts the batch and [Node.Execute] returns an
// [*ItemError]. With ContinueOnFail set, the failure becomes an error item carrying
// {"error": message} and processing continues with the next item.
package surrealflow
