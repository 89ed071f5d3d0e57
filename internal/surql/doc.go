// Package surql builds the SurrealQL statements the connector sends and parses the
// DDL text SurrealDB returns from INFO statements.
//
// Builders follow a fluent style: construct with a statement function, chain options,
// and call Build to get the statement text and its bound variables.
//
//	sql, vars := surql.DefineIndex("idx_email", "user").Fields("email").Unique().Build()
package surql
