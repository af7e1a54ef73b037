package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/internal/app/service"
	"github.com/Harishhackz/seeing-helper/internal/domain/navigation"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// NavigationHandler handles navigation-related HTTP requests with JSON-RPC 2.0 format
type NavigationHandler struct {
	logger *logger.Logger
	guide  *service.GuideService
}

// NewNavigationHandler creates a new navigation handler
func NewNavigationHandler(logger *logger.Logger, guide *service.GuideService) *NavigationHandler {
	return &NavigationHandler{
		logger: logger.WithComponent("navigation-handler"),
		guide:  guide,
	}
}

// Request parameter structures
type StartNavigationRequest struct {
	Destination string  `json:"destination"` // free text, geocoded server-side
	Lat         float64 `json:"lat"`         // current position
	Lon         float64 `json:"lon"`
}

type PositionRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type VoiceToggleRequest struct {
	Enabled bool `json:"enabled"`
}

type StopNavigationRequest struct {
	// No parameters - user comes from JWT context
}

type GetNavigationRequest struct {
	// No parameters - user comes from JWT context
}

// Response structures for Swagger documentation
type StartNavigationResponse = navigation.Session
type GetNavigationResponse = navigation.Session

type PositionResponse struct {
	Accepted bool `json:"accepted"`
}

type VoiceToggleResponse struct {
	Enabled bool `json:"enabled"`
}

type StopNavigationResponse struct {
	Stopped bool `json:"stopped"`
}

// Start handles POST /api/v1/navigation.Start
// @Summary Start turn-by-turn guidance
// @Description Geocode a free-text destination, compute a walking route, and begin announcing it
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[StartNavigationRequest] true "JSON-RPC request with StartNavigationRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[StartNavigationResponse] "Installed navigation session"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/navigation.Start [post]
func (h *NavigationHandler) Start(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "User not authenticated")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	var params StartNavigationRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	if params.Destination == "" {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Destination cannot be empty")
		return
	}

	session, err := h.guide.Start(r.Context(), userID, params.Destination, shared.GeoPoint{Lat: params.Lat, Lon: params.Lon})
	if err != nil {
		h.logger.Warn("Failed to start navigation",
			zap.String("userId", userID),
			zap.String("destination", params.Destination),
			zap.Error(err))
		domainError(r, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, session)
}

// Position handles POST /api/v1/navigation.Position
// @Summary Report a live GPS fix
// @Description Feed one position update through the route announcer; updates arriving faster than the configured interval are dropped
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[PositionRequest] true "JSON-RPC request with PositionRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[PositionResponse] "Position accepted"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/navigation.Position [post]
func (h *NavigationHandler) Position(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "User not authenticated")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	var params PositionRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	if err := h.guide.Position(r.Context(), userID, shared.GeoPoint{Lat: params.Lat, Lon: params.Lon}); err != nil {
		domainError(r, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, PositionResponse{Accepted: true})
}

// Voice handles POST /api/v1/navigation.Voice
// @Summary Toggle spoken guidance
// @Description Enable or mute spoken navigation instructions; muting cancels pending deferred speech
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[VoiceToggleRequest] true "JSON-RPC request with VoiceToggleRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[VoiceToggleResponse] "New voice state"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/navigation.Voice [post]
func (h *NavigationHandler) Voice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "User not authenticated")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	var params VoiceToggleRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	if err := h.guide.Voice(r.Context(), userID, params.Enabled); err != nil {
		domainError(r, req.ID, err)
		return
	}

	h.logger.Info("Navigation voice toggled",
		zap.String("userId", userID),
		zap.Bool("enabled", params.Enabled))

	jsonrpcx.Success(w, req.ID, VoiceToggleResponse{Enabled: params.Enabled})
}

// Stop handles POST /api/v1/navigation.Stop
// @Summary Stop guidance
// @Description End the current navigation session; idempotent
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[StopNavigationRequest] true "JSON-RPC request"
// @Success 200 {object} jsonrpcx.ResponseT[StopNavigationResponse] "Stop result"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/navigation.Stop [post]
func (h *NavigationHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "User not authenticated")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	if err := h.guide.Stop(r.Context(), userID); err != nil {
		domainError(r, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, StopNavigationResponse{Stopped: true})
}

// Get handles POST /api/v1/navigation.Get
// @Summary Get the navigation session
// @Description Return a snapshot of the user's navigation session, or null before first use
// @Tags navigation
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[GetNavigationRequest] true "JSON-RPC request"
// @Success 200 {object} jsonrpcx.ResponseT[GetNavigationResponse] "Session snapshot"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/navigation.Get [post]
func (h *NavigationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		jsonrpcx.WithError(r, nil, jsonrpcx.InvalidRequest, "User not authenticated")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	session, err := h.guide.Get(r.Context(), userID)
	if err != nil {
		domainError(r, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, session)
}
