package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/domain/account"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// AuthHandler handles guest authentication. There is no registration flow:
// the first login from a device creates the account, later logins resume it.
type AuthHandler struct {
	logger     *logger.Logger
	repository account.Repository
	jwtService *account.JWTService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *logger.Logger, repository account.Repository, jwtService *account.JWTService) *AuthHandler {
	return &AuthHandler{
		logger:     logger.WithComponent("auth-handler"),
		repository: repository,
		jwtService: jwtService,
	}
}

// Request parameter structures
type GuestLoginRequest struct {
	DeviceID  string `json:"device_id"`
	Name      string `json:"name,omitempty"`
	DevicePin string `json:"device_pin,omitempty"`
}

type RefreshRequest struct {
	Token string `json:"token"`
}

type GuestLoginResponse struct {
	Token   string `json:"token"`
	UserID  string `json:"user_id"`
	Name    string `json:"name"`
	HasPin  bool   `json:"has_pin"`
	Created bool   `json:"created"` // true when this login created the account
}

type RefreshResponse struct {
	Token string `json:"token"`
}

// GuestLogin handles POST /api/v1/auth.GuestLogin
// @Summary Log in as a guest
// @Description Create or resume the guest account bound to this device. A device PIN, once set, gates every re-login.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[GuestLoginRequest] true "JSON-RPC request with GuestLoginRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[GuestLoginResponse] "Session token"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid request parameters"
// @Router /api/v1/auth.GuestLogin [post]
func (h *AuthHandler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	var params GuestLoginRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	if params.DeviceID == "" {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Device ID cannot be empty")
		return
	}

	created := false
	acct, err := h.repository.GetByDeviceID(r.Context(), params.DeviceID)
	switch {
	case err == nil:
		if !acct.CheckPin(params.DevicePin) {
			h.logger.Warn("Guest login rejected, wrong device PIN",
				zap.String("deviceId", params.DeviceID))
			jsonrpcx.WithError(r, req.ID, shared.ErrCodePermissionDenied, "Invalid device PIN")
			return
		}
	case shared.ErrorCode(err) == shared.ErrCodeNotFound:
		acct, err = account.NewGuestAccount(params.DeviceID, params.Name, params.DevicePin)
		if err != nil {
			domainError(r, req.ID, err)
			return
		}
		if err := h.repository.Insert(r.Context(), acct); err != nil {
			domainError(r, req.ID, err)
			return
		}
		created = true
		h.logger.Info("Guest account created",
			zap.String("deviceId", params.DeviceID),
			zap.String("userId", acct.UserID.String()))
	default:
		domainError(r, req.ID, err)
		return
	}

	token, err := h.jwtService.GenerateToken(acct)
	if err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InternalError, "Failed to generate session token")
		return
	}

	jsonrpcx.Success(w, req.ID, GuestLoginResponse{
		Token:   token,
		UserID:  acct.UserID.String(),
		Name:    acct.Name,
		HasPin:  acct.HasPin(),
		Created: created,
	})
}

// Refresh handles POST /api/v1/auth.Refresh
// @Summary Refresh a session token
// @Description Exchange a still-valid token for a new one with extended expiry
// @Tags auth
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[RefreshRequest] true "JSON-RPC request with RefreshRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[RefreshResponse] "New session token"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid or expired token"
// @Router /api/v1/auth.Refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonrpcx.WithError(r, nil, jsonrpcx.MethodNotFound, "Method not allowed")
		return
	}

	req, err := jsonrpcx.ParseRequest(r)
	if err != nil {
		jsonrpcx.WithError(r, nil, jsonrpcx.ParseError, "Invalid JSON-RPC request")
		return
	}

	var params RefreshRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	token, err := h.jwtService.RefreshToken(params.Token)
	if err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidRequest, "Invalid or expired token")
		return
	}

	jsonrpcx.Success(w, req.ID, RefreshResponse{Token: token})
}
