package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/internal/provider/vision"
	"github.com/Harishhackz/seeing-helper/internal/speech"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// VisionHandler handles camera frame classification requests
type VisionHandler struct {
	logger     *logger.Logger
	classifier *vision.Client
	speaker    *speech.Speaker
	eventBus   cqrs.EventPublisher
}

// NewVisionHandler creates a new vision handler
func NewVisionHandler(logger *logger.Logger, classifier *vision.Client, speaker *speech.Speaker, eventBus cqrs.EventPublisher) *VisionHandler {
	return &VisionHandler{
		logger:     logger.WithComponent("vision-handler"),
		classifier: classifier,
		speaker:    speaker,
		eventBus:   eventBus,
	}
}

// Request parameter structures
type DescribeRequest struct {
	Image string `json:"image"` // base64-encoded frame
}

type DescribeResponse struct {
	Labels    []vision.Label `json:"labels"`
	Utterance string         `json:"utterance"`
}

// Describe handles POST /api/v1/vision.Describe
// @Summary Describe a camera frame
// @Description Classify a base64-encoded frame and announce the top labels to the user
// @Tags vision
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[DescribeRequest] true "JSON-RPC request with DescribeRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[DescribeResponse] "Ranked labels and spoken description"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/vision.Describe [post]
func (h *VisionHandler) Describe(w http.ResponseWriter, r *http.Request) {
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

	var params DescribeRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	labels, err := h.classifier.Classify(r.Context(), params.Image)
	if err != nil {
		h.logger.Warn("Frame classification failed",
			zap.String("userId", userID),
			zap.Error(err))
		domainError(r, req.ID, err)
		return
	}

	utterance := h.classifier.Utterance(labels)
	h.speaker.Speak(r.Context(), userID, utterance)

	eventLabels := make([]cqrs.VisionLabel, len(labels))
	for i, l := range labels {
		eventLabels[i] = cqrs.VisionLabel{Label: l.Label, Score: l.Score}
	}
	if err := h.eventBus.Publish(r.Context(), &cqrs.VisionResultEvent{
		UserID:    userID,
		Labels:    eventLabels,
		Utterance: utterance,
		Timestamp: time.Now(),
		RequestID: "vision-" + userID,
	}); err != nil {
		h.logger.Error("Failed to publish vision result", zap.Error(err))
	}

	jsonrpcx.Success(w, req.ID, DescribeResponse{
		Labels:    labels,
		Utterance: utterance,
	})
}
