// Package handlers implements the JSON-RPC 2.0 HTTP handlers. Each handler
// struct exposes one exported method per operation; the autorouter turns the
// method name into the route ("Add" on the schedule handler serves
// /api/v1/schedule.Add).
package handlers

import (
	"net/http"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// domainError attaches a JSON-RPC error derived from a domain error. Domain
// errors carry their own assist error code; anything else degrades to the
// generic internal error code.
func domainError(r *http.Request, id any, err error) {
	if code := shared.ErrorCode(err); code != 0 {
		jsonrpcx.WithError(r, id, code, err.Error())
		return
	}
	jsonrpcx.WithError(r, id, jsonrpcx.InternalError, err.Error())
}
