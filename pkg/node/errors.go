package node

import (
	"errors"
	"fmt"
)

var (
	ErrMissingKind        = errors.New("node: body has no type")
	ErrMissingAddress     = errors.New("node: envelope has no src or dest")
	ErrMissingBody        = errors.New("node: envelope has no body")
	ErrEncode             = errors.New("node: cannot encode envelope")
	ErrReservedField      = errors.New("node: field name is reserved")
	ErrInvalidInit        = errors.New("node: init has no node_id")
	ErrAlreadyInitialized = errors.New("node: identity already initialized")
	ErrUninitialized      = errors.New("node: identity not initialized")
)

// ParseError describes one input line that could not be turned into a Message.
type ParseError struct {
	Line int
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("node: line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
