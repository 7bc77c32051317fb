package jsonrpc

import (
	"bytes"
	"fmt"
	"strconv"
)

// RequestID is a JSON-RPC request id. Only integer ids representable in 32
// bits are supported; string and null ids are rejected when decoding.
type RequestID struct {
	value int32
}

// NewRequestID creates a RequestID from an integer value.
func NewRequestID(value int32) *RequestID {
	return &RequestID{value: value}
}

// String returns the decimal representation of the ID, or "" for a nil ID.
func (id *RequestID) String() string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(int64(id.value), 10)
}

// Value returns the underlying value.
func (id *RequestID) Value() int32 {
	return id.value
}

// IsNil returns true if the ID is absent.
func (id *RequestID) IsNil() bool {
	return id == nil
}

// MarshalJSON implements json.Marshaler
func (id *RequestID) MarshalJSON() ([]byte, error) {
	if id == nil {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, int64(id.value), 10), nil
}

// UnmarshalJSON implements json.Unmarshaler. Fractional, exponent and
// out-of-range numbers are refused rather than truncated.
func (id *RequestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	n, err := strconv.ParseInt(string(data), 10, 32)
	if err != nil {
		return fmt.Errorf("JSON-RPC ID must be a 32-bit integer, got: %s", string(data))
	}
	id.value = int32(n)
	return nil
}
