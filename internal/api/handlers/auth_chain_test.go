package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/internal/domain/account"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// chainCall drives one handler method through the same middleware stack the
// server builds for authenticated routes: the error adapter wrapping real
// JWT auth wrapping the handler.
func chainCall(t *testing.T, handler http.HandlerFunc, token string, params any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "test",
		"params":  params,
		"id":      1,
	})
	require.NoError(t, err)

	jwtService := account.NewJWTService("test-secret-key", "seeing-helper-test", time.Hour)
	auth := middleware.NewAuthMiddleware(jwtService, testLogger())
	stack := middleware.Chain(middleware.ErrorAdapter(testLogger()))(auth.RequireAuth(handler))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/test", bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	stack.ServeHTTP(rec, req)
	return rec
}

func mintToken(t *testing.T) string {
	t.Helper()

	jwtService := account.NewJWTService("test-secret-key", "seeing-helper-test", time.Hour)
	acct, err := account.NewGuestAccount("device-1", "Alice", "")
	require.NoError(t, err)

	token, err := jwtService.GenerateToken(acct)
	require.NoError(t, err)
	return token
}

func TestHandlerErrorsSurviveAuthChain(t *testing.T) {
	handler, _ := newScheduleFixture()

	rec := chainCall(t, handler.Add, mintToken(t), AddScheduleRequest{
		Title: "Lunch",
		Time:  "25:99",
	})

	// The handler attaches the error to the request; auth must pass the
	// same request back up so the adapter still sees it
	require.NotEmpty(t, rec.Body.Bytes(), "error response never reached the client")

	var resp jsonrpcx.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, shared.ErrCodeInvalidInput, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "time")
}

func TestHandlerSucceedsThroughAuthChain(t *testing.T) {
	handler, _ := newScheduleFixture()

	rec := chainCall(t, handler.Add, mintToken(t), AddScheduleRequest{
		Title: "Lunch",
		Time:  "12:00",
	})

	var resp jsonrpcx.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	require.NotNil(t, resp.Result)
}

func TestAuthChainRejectsMissingToken(t *testing.T) {
	handler, _ := newScheduleFixture()

	rec := chainCall(t, handler.Add, "", AddScheduleRequest{
		Title: "Lunch",
		Time:  "12:00",
	})

	var resp jsonrpcx.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Message, "Authorization")
}
