package constants

import "errors"

// Errors
var (
	ErrUnsupportedOperation    = errors.New("unsupported operation")
	ErrMissingConnectionString = errors.New("missing connection string")
	ErrUnknownConnectionMode   = errors.New("unknown connection mode")
	ErrInvalidRecordID         = errors.New("invalid record id")
	ErrNotFound                = errors.New("record not found")
	ErrIndexNotFound           = errors.New("index not found")
	ErrDeleteFailed            = errors.New("failed to delete")
	ErrEmptyQueryResult        = errors.New("query returned no results")
	ErrEmptyResponse           = errors.New("empty response from SurrealDB")
)
