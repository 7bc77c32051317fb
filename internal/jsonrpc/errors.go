package jsonrpc

import (
	"errors"
	"fmt"
)

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

// Codes answered by this service.
const (
	// ErrorCodeInvalidRequest indicates the JSON sent is not a valid Request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeInternalError indicates an internal JSON-RPC error.
	ErrorCodeInternalError ErrorCode = -32603
)

// Canonical error messages surfaced to callers. Causes are logged, never sent.
const (
	MessageInvalidRequest = "Invalid Request"
	MessageInternalError  = "Internal error"
)

// ErrMalformed is matched by every error returned from Decode.
var ErrMalformed = errors.New("malformed JSON-RPC message")

// DecodeError describes why a raw body could not be turned into a Request.
// Field is empty when the body itself was not a JSON object.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", ErrMalformed, e.Err)
	}
	return fmt.Sprintf("%s: field %q: %v", ErrMalformed, e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports ErrMalformed so callers can test with errors.Is.
func (e *DecodeError) Is(target error) bool { return target == ErrMalformed }
