package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// recordingPublisher captures published events so tests can assert on the
// speech requests a handler triggers
type recordingPublisher struct {
	mu     sync.Mutex
	events []interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) utterances() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	var texts []string
	for _, e := range p.events {
		if speech, ok := e.(*cqrs.SpeechRequestedEvent); ok {
			texts = append(texts, speech.Text)
		}
	}
	return texts
}

func testLogger() *logger.Logger {
	return logger.NewDefault()
}

// rpcCall drives one handler method through the error adapter the way the
// real middleware chain does, with userID already authenticated.
func rpcCall(t *testing.T, handler http.HandlerFunc, userID string, params any) jsonrpcx.Response {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "test",
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/test", bytes.NewReader(body))
	if userID != "" {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDContextKey, userID))
	}

	rec := httptest.NewRecorder()
	middleware.ErrorAdapter(testLogger())(handler).ServeHTTP(rec, req)

	var resp jsonrpcx.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// decodeResult re-decodes a JSON-RPC result into a typed structure
func decodeResult(t *testing.T, resp jsonrpcx.Response, out any) {
	t.Helper()

	raw, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}
