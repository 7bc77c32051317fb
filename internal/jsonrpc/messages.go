package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ProtocolVersion is the supported JSON-RPC protocol version.
const ProtocolVersion = "2.0"

var jsonNull = []byte("null")

// Request represents an inbound JSON-RPC request envelope. Fields that were
// absent (or null, for the string fields) in the raw body are left at their
// zero value; a missing ID is nil.
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
	ID             *RequestID      `json:"id,omitempty"`
}

// Response represents a JSON-RPC response. Exactly one of Result and Error is
// set. ID is always serialized and is null when unknown.
type Response struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
	ID             *RequestID      `json:"id"`
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// NewResultResponse builds a successful JSON-RPC response object.
func NewResultResponse(id *RequestID, result any) (*Response, error) {
	resultBytes, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	if len(resultBytes) == 0 || bytes.Equal(resultBytes, jsonNull) {
		return nil, errors.New("result must not be null")
	}

	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Result:         resultBytes,
		ID:             id,
	}, nil
}

// NewErrorResponse builds an error JSON-RPC response with the given code.
func NewErrorResponse(id *RequestID, code ErrorCode, message string) *Response {
	return &Response{
		JSONRPCVersion: ProtocolVersion,
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	}
}

// NewInvalidRequestResponse builds the -32600 "Invalid Request" response.
func NewInvalidRequestResponse(id *RequestID) *Response {
	return NewErrorResponse(id, ErrorCodeInvalidRequest, MessageInvalidRequest)
}

// NewInternalErrorResponse builds the -32603 "Internal error" response.
func NewInternalErrorResponse(id *RequestID) *Response {
	return NewErrorResponse(id, ErrorCodeInternalError, MessageInternalError)
}

// Decode parses a raw body into a Request. It only enforces shape: the body
// must be a JSON object and any present jsonrpc, method and id fields must
// have the right type. Whether the fields are present and carry the expected
// values is left to request validation.
func Decode(raw []byte) (*Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, &DecodeError{Err: err}
	}
	if fields == nil {
		return nil, &DecodeError{Err: errors.New("message must be a JSON object")}
	}

	var req Request

	if v, ok := fields["jsonrpc"]; ok {
		s, err := decodeNullableString(v)
		if err != nil {
			return nil, &DecodeError{Field: "jsonrpc", Err: err}
		}
		req.JSONRPCVersion = s
	}

	if v, ok := fields["method"]; ok {
		s, err := decodeNullableString(v)
		if err != nil {
			return nil, &DecodeError{Field: "method", Err: err}
		}
		req.Method = s
	}

	if v, ok := fields["id"]; ok {
		var id RequestID
		if err := id.UnmarshalJSON(v); err != nil {
			return nil, &DecodeError{Field: "id", Err: err}
		}
		req.ID = &id
	}

	if v, ok := fields["params"]; ok && !bytes.Equal(bytes.TrimSpace(v), jsonNull) {
		req.Params = v
	}

	return &req, nil
}

// Encode serializes a Response. A nil response is an error rather than a
// "null" body.
func Encode(res *Response) ([]byte, error) {
	if res == nil {
		return nil, errors.New("nil response")
	}
	if (res.Result == nil) == (res.Error == nil) {
		return nil, errors.New("response must carry exactly one of result or error")
	}
	return json.Marshal(res)
}

// decodeNullableString decodes a JSON string. A JSON null decodes to "".
func decodeNullableString(v json.RawMessage) (string, error) {
	if bytes.Equal(bytes.TrimSpace(v), jsonNull) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("expected string: %w", err)
	}
	return s, nil
}
