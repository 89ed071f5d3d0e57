// Package handlers implements one function per (resource, operation) pair.
//
// A handler validates the parameters of one input item, runs the corresponding
// SurrealDB calls through a [session.Session] and formats the response as output items.
// Handlers never open or close sessions; the dispatcher owns the session lifetime and
// hands out the batch session through [Call.Session].
package handlers
