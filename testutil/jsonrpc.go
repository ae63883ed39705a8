package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type JSONRPCRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// Param decodes the i-th positional parameter.
func (req JSONRPCRequest) Param(i int, dst any) error {
	return json.Unmarshal(req.Params[i], dst)
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type jsonRPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *jsonRPCError   `json:"error,omitempty"`
}

// JSONRPCHandler answers one request; a non-nil error becomes a JSON-RPC error.
// Return json.RawMessage to send a result verbatim.
type JSONRPCHandler func(req JSONRPCRequest) (any, error)

// MockJSONRPC serves handler over HTTP and records every request. Batch requests are supported.
type MockJSONRPC struct {
	*httptest.Server
	mu       sync.Mutex
	requests []JSONRPCRequest
}

func NewMockJSONRPC(t *testing.T, handler JSONRPCHandler) *MockJSONRPC {
	mock := &MockJSONRPC{}
	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var reqs []JSONRPCRequest
		batch := len(body) > 0 && body[0] == '['
		if batch {
			err = json.Unmarshal(body, &reqs)
		} else {
			var req JSONRPCRequest
			err = json.Unmarshal(body, &req)
			reqs = []JSONRPCRequest{req}
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resps := []jsonRPCResponse{}
		for _, req := range reqs {
			mock.mu.Lock()
			mock.requests = append(mock.requests, req)
			mock.mu.Unlock()

			resp := jsonRPCResponse{JSONRPC: "2.0", ID: req.ID}
			result, err := handler(req)
			if err != nil {
				resp.Error = &jsonRPCError{Code: -32000, Message: err.Error()}
			} else if result == nil {
				resp.Result = json.RawMessage("null")
			} else {
				resp.Result = result
			}
			resps = append(resps, resp)
		}
		w.Header().Set("Content-Type", "application/json")
		if batch {
			_ = json.NewEncoder(w).Encode(resps)
		} else {
			_ = json.NewEncoder(w).Encode(resps[0])
		}
	}))
	t.Cleanup(mock.Server.Close)
	return mock
}

// Methods returns the methods called so far, in order.
func (m *MockJSONRPC) Methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	methods := make([]string, len(m.requests))
	for i, req := range m.requests {
		methods[i] = req.Method
	}
	return methods
}

// Calls returns every request made for a method.
func (m *MockJSONRPC) Calls(method string) []JSONRPCRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := []JSONRPCRequest{}
	for _, req := range m.requests {
		if req.Method == method {
			calls = append(calls, req)
		}
	}
	return calls
}
