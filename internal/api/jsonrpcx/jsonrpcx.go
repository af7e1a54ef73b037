package jsonrpcx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Request represents a JSON-RPC 2.0 request
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      any             `json:"id,omitempty"`
}

// Response represents a JSON-RPC 2.0 response
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
	ID      any    `json:"id,omitempty"`
}

// Error represents a JSON-RPC 2.0 error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Notification represents a JSON-RPC 2.0 notification (no ID, no reply)
type Notification struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// NewNotification creates a JSON-RPC 2.0 notification envelope
func NewNotification(method string, params any) Notification {
	return Notification{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
	}
}

// RequestT is the typed request shape used in API documentation
type RequestT[T any] struct {
	JSONRPC string `json:"jsonrpc" example:"2.0"`
	Method  string `json:"method"`
	Params  T      `json:"params"`
	ID      any    `json:"id,omitempty"`
}

// ResponseT is the typed response shape used in API documentation
type ResponseT[T any] struct {
	JSONRPC string `json:"jsonrpc" example:"2.0"`
	Result  T      `json:"result"`
	ID      any    `json:"id,omitempty"`
}

// ErrorResponse is the error response shape used in API documentation
type ErrorResponse struct {
	JSONRPC string `json:"jsonrpc" example:"2.0"`
	Error   Error  `json:"error"`
	ID      any    `json:"id,omitempty"`
}

// JSON-RPC 2.0 error codes
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// ParseRequest parses a JSON-RPC 2.0 request from the HTTP request body
func ParseRequest(r *http.Request) (*Request, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, err
	}

	if req.JSONRPC != "2.0" {
		return nil, fmt.Errorf("unsupported jsonrpc version: %q", req.JSONRPC)
	}

	return &req, nil
}

// Success sends a successful JSON-RPC 2.0 response
func Success(w http.ResponseWriter, id any, result any) {
	Write(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	})
}

type contextKey string

// errorContextKey carries a pending error response to the ErrorAdapter middleware
const errorContextKey contextKey = "jsonrpc_error"

// WithError attaches an error to the request context for middleware
// processing. Handlers call this and return; the ErrorAdapter middleware
// writes the response on the way out.
func WithError(r *http.Request, id any, code int, message string) {
	response := &Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	}

	ctx := context.WithValue(r.Context(), errorContextKey, response)
	*r = *r.WithContext(ctx)
}

// PendingError returns the error response a handler attached, if any
func PendingError(r *http.Request) (*Response, bool) {
	response, ok := r.Context().Value(errorContextKey).(*Response)
	return response, ok
}

// ErrorAdapter interface for middleware to send error responses
type ErrorAdapter interface {
	SendError(w http.ResponseWriter, id any, code int, message string)
}

type errorAdapter struct{}

// NewErrorAdapter creates a new error adapter for middleware use
func NewErrorAdapter() ErrorAdapter {
	return &errorAdapter{}
}

// SendError sends an error JSON-RPC 2.0 response
func (ea *errorAdapter) SendError(w http.ResponseWriter, id any, code int, message string) {
	Write(w, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    code,
			Message: message,
		},
		ID: id,
	})
}

// Write sends a JSON-RPC 2.0 response (always HTTP 200)
func Write(w http.ResponseWriter, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK) // JSON-RPC carries its own error channel

	json.NewEncoder(w).Encode(response)
}
