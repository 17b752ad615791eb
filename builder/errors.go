package builder

import "errors"

var (
	// ErrUnknownConnection connection not configured in the resolver
	ErrUnknownConnection = errors.New("unknown connection")
	// ErrInvalidOperator unsupported where operator
	ErrInvalidOperator = errors.New("invalid operator")
	// ErrNoGeneratedKey insert returned no generated key
	ErrNoGeneratedKey = errors.New("no generated key")
)
