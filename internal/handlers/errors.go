package handlers

import "errors"

// Kind classifies an operation failure.
type Kind string

const (
	// KindValidation means the item parameters were rejected before contacting the server.
	KindValidation Kind = "validation"
	// KindPrecondition means the server was reachable but the target was not in the expected state.
	KindPrecondition Kind = "precondition"
	// KindServer means the server reported a statement failure.
	KindServer Kind = "server"
)

// Error is an operation failure of a known Kind.
// Transport errors from the session are returned as they are and are not wrapped in an Error.
type Error struct {
	Kind      Kind
	Operation string
	Message   string
	Cause     error
}

func (e *Error) Error() string {
	msg := e.Message
	switch {
	case e.Cause != nil && msg != "":
		msg += ": " + e.Cause.Error()
	case e.Cause != nil:
		msg = e.Cause.Error()
	}
	if e.Operation == "" {
		return msg
	}
	return e.Operation + ": " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ValidationError creates an Error of kind validation.
func ValidationError(op, message string, cause error) *Error {
	return &Error{Kind: KindValidation, Operation: op, Message: message, Cause: cause}
}

// PreconditionError creates an Error of kind precondition.
func PreconditionError(op, message string, cause error) *Error {
	return &Error{Kind: KindPrecondition, Operation: op, Message: message, Cause: cause}
}

// ServerError creates an Error of kind server.
func ServerError(op, message string, cause error) *Error {
	return &Error{Kind: KindServer, Operation: op, Message: message, Cause: cause}
}

// IsKind reports whether err wraps an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
