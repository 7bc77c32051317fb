package validation

import (
	"errors"
	"fmt"

	"github.com/ggoodman/mcp-discovery-go/internal/jsonrpc"
)

// ErrInvalidRequest is matched by every error returned from Request.
var ErrInvalidRequest = errors.New("invalid request")

// Request checks a decoded envelope against the JSON-RPC 2.0 request shape
// and the method bound to the endpoint that received it. Rules are checked
// in order and the first failure is returned:
//
//  1. jsonrpc is exactly "2.0"
//  2. method equals expectedMethod (byte-exact)
//  3. id is present
func Request(req *jsonrpc.Request, expectedMethod string) error {
	if req == nil {
		return fmt.Errorf("%w: nil request", ErrInvalidRequest)
	}
	if req.JSONRPCVersion != jsonrpc.ProtocolVersion {
		return fmt.Errorf("%w: jsonrpc version must be %q, got %q", ErrInvalidRequest, jsonrpc.ProtocolVersion, req.JSONRPCVersion)
	}
	if req.Method != expectedMethod {
		return fmt.Errorf("%w: method must be %q, got %q", ErrInvalidRequest, expectedMethod, req.Method)
	}
	if req.ID.IsNil() {
		return fmt.Errorf("%w: id is required", ErrInvalidRequest)
	}
	return nil
}
