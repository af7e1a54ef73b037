package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/internal/domain/schedule"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// ScheduleHandler handles schedule-related HTTP requests with JSON-RPC 2.0 format
type ScheduleHandler struct {
	logger     *logger.Logger
	repository schedule.Repository
}

// NewScheduleHandler creates a new schedule handler
func NewScheduleHandler(logger *logger.Logger, repository schedule.Repository) *ScheduleHandler {
	return &ScheduleHandler{
		logger:     logger.WithComponent("schedule-handler"),
		repository: repository,
	}
}

// Request parameter structures
type AddScheduleRequest struct {
	Title       string `json:"title"`
	Time        string `json:"time"` // "HH:MM" 24-hour
	Description string `json:"description,omitempty"`
	LeadMinutes int    `json:"lead_minutes,omitempty"` // 0 means default
}

type ListScheduleRequest struct {
	// No parameters - user comes from JWT context
}

type DeleteScheduleRequest struct {
	ID string `json:"id"`
}

// Response structures for Swagger documentation
type AddScheduleResponse = schedule.Item

type ListScheduleResponse struct {
	Items []*schedule.Item `json:"items"`
	Total int              `json:"total"`
}

type DeleteScheduleResponse struct {
	Deleted bool `json:"deleted"`
}

// Add handles POST /api/v1/schedule.Add
// @Summary Add a schedule item
// @Description Add a daily-recurring schedule item with an advance reminder lead
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[AddScheduleRequest] true "JSON-RPC request with AddScheduleRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[AddScheduleResponse] "Created schedule item"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/schedule.Add [post]
func (h *ScheduleHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	var params AddScheduleRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	at, err := schedule.ParseTimeOfDay(params.Time)
	if err != nil {
		domainError(r, req.ID, err)
		return
	}

	lead := params.LeadMinutes
	if lead <= 0 {
		lead = schedule.DefaultLeadMinutes
	}

	item, err := schedule.NewItem(userID, params.Title, at, params.Description, lead)
	if err != nil {
		domainError(r, req.ID, err)
		return
	}

	if err := h.repository.Insert(r.Context(), item); err != nil {
		domainError(r, req.ID, err)
		return
	}

	h.logger.Info("Schedule item added",
		zap.String("userId", userID),
		zap.String("itemId", item.ID.String()),
		zap.String("time", item.Time.String()))

	jsonrpcx.Success(w, req.ID, item)
}

// List handles POST /api/v1/schedule.List
// @Summary List schedule items
// @Description List all schedule items owned by the authenticated user
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[ListScheduleRequest] true "JSON-RPC request"
// @Success 200 {object} jsonrpcx.ResponseT[ListScheduleResponse] "Schedule items"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/schedule.List [post]
func (h *ScheduleHandler) List(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.repository.ListByUser(r.Context(), userID)
	if err != nil {
		domainError(r, req.ID, err)
		return
	}

	jsonrpcx.Success(w, req.ID, ListScheduleResponse{
		Items: items,
		Total: len(items),
	})
}

// Delete handles POST /api/v1/schedule.Delete
// @Summary Delete a schedule item
// @Description Delete a schedule item owned by the authenticated user
// @Tags schedule
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[DeleteScheduleRequest] true "JSON-RPC request with DeleteScheduleRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[DeleteScheduleResponse] "Deletion result"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/schedule.Delete [post]
func (h *ScheduleHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	var params DeleteScheduleRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	if err := h.repository.Delete(r.Context(), userID, schedule.ItemID(params.ID)); err != nil {
		domainError(r, req.ID, err)
		return
	}

	h.logger.Info("Schedule item deleted",
		zap.String("userId", userID),
		zap.String("itemId", params.ID))

	jsonrpcx.Success(w, req.ID, DeleteScheduleResponse{Deleted: true})
}
