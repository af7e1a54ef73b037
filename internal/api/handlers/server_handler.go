package handlers

import (
	"net/http"
	"time"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// ClientCounter reports how many SSE clients are connected
type ClientCounter interface {
	GetClientCount() int
}

// ServerHandler exposes unauthenticated server metadata
type ServerHandler struct {
	logger    *logger.Logger
	clients   ClientCounter
	version   string
	startedAt time.Time
}

// NewServerHandler creates a new server handler
func NewServerHandler(logger *logger.Logger, clients ClientCounter, version string) *ServerHandler {
	return &ServerHandler{
		logger:    logger.WithComponent("server-handler"),
		clients:   clients,
		version:   version,
		startedAt: time.Now(),
	}
}

type ServerInfoRequest struct {
	// No parameters
}

type ServerInfoResponse struct {
	Name             string `json:"name"`
	Version          string `json:"version"`
	UptimeSeconds    int64  `json:"uptime_seconds"`
	ConnectedClients int    `json:"connected_clients"`
	ServerTime       string `json:"server_time"`
}

// Info handles POST /api/v1/server.Info
// @Summary Server information
// @Description Version, uptime, and connected client count
// @Tags server
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[ServerInfoRequest] true "JSON-RPC request"
// @Success 200 {object} jsonrpcx.ResponseT[ServerInfoResponse] "Server information"
// @Router /api/v1/server.Info [post]
func (h *ServerHandler) Info(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	jsonrpcx.Success(w, req.ID, ServerInfoResponse{
		Name:             "seeing-helper",
		Version:          h.version,
		UptimeSeconds:    int64(time.Since(h.startedAt).Seconds()),
		ConnectedClients: h.clients.GetClientCount(),
		ServerTime:       time.Now().Format(time.RFC3339),
	})
}
