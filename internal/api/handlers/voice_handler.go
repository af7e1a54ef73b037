package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	"github.com/Harishhackz/seeing-helper/internal/api/middleware"
	"github.com/Harishhackz/seeing-helper/internal/assist/transcript"
	"github.com/Harishhackz/seeing-helper/internal/domain/schedule"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/internal/speech"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// VoiceHandler turns finalized speech-to-text transcripts into schedule items.
// Recognition runs on the client device; this handler receives either a
// transcript or one of the recognizer's failure codes.
type VoiceHandler struct {
	logger     *logger.Logger
	repository schedule.Repository
	speaker    *speech.Speaker
}

// NewVoiceHandler creates a new voice command handler
func NewVoiceHandler(logger *logger.Logger, repository schedule.Repository, speaker *speech.Speaker) *VoiceHandler {
	return &VoiceHandler{
		logger:     logger.WithComponent("voice-handler"),
		repository: repository,
		speaker:    speaker,
	}
}

// sttNotice maps a recognizer failure code to an assist error code and the
// sentence spoken back to the user. Every failure gets both a spoken and a
// visual notice; none of them is fatal.
type sttNotice struct {
	code   int
	spoken string
}

var sttNotices = map[string]sttNotice{
	"no-permission":         {shared.ErrCodePermissionDenied, "I need microphone permission to hear you"},
	"no-microphone":         {shared.ErrCodeDeviceUnavailable, "No microphone is available on this device"},
	"no-speech":             {shared.ErrCodeNoMatch, "I didn't hear anything, please try again"},
	"audio-capture-failure": {shared.ErrCodeDeviceUnavailable, "Something went wrong while capturing audio"},
	"network-error":         {shared.ErrCodeProviderUnavailable, "Speech recognition needs a network connection"},
	"unsupported":           {shared.ErrCodeUnsupported, "Speech recognition is not supported on this device"},
}

// Request parameter structures
type VoiceCommandRequest struct {
	Transcript string `json:"transcript,omitempty"`
	ErrorCode  string `json:"error_code,omitempty"` // recognizer failure instead of a transcript
}

type VoiceCommandResponse struct {
	Item      *schedule.Item    `json:"item"`
	Parsed    transcript.Result `json:"parsed"`
	Utterance string            `json:"utterance"`
}

// Command handles POST /api/v1/voice.Command
// @Summary Process a voice command
// @Description Parse a speech transcript into a schedule item, or announce a recognition failure
// @Tags voice
// @Accept json
// @Produce json
// @Param request body jsonrpcx.RequestT[VoiceCommandRequest] true "JSON-RPC request with VoiceCommandRequest params"
// @Success 200 {object} jsonrpcx.ResponseT[VoiceCommandResponse] "Created item and parse result"
// @Failure 400 {object} jsonrpcx.ErrorResponse "Invalid request parameters"
// @Failure 401 {object} jsonrpcx.ErrorResponse "Authentication required"
// @Security BearerAuth
// @Router /api/v1/voice.Command [post]
func (h *VoiceHandler) Command(w http.ResponseWriter, r *http.Request) {
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

	var params VoiceCommandRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		jsonrpcx.WithError(r, req.ID, jsonrpcx.InvalidParams, "Invalid params")
		return
	}

	if params.ErrorCode != "" {
		notice, known := sttNotices[params.ErrorCode]
		if !known {
			notice = sttNotice{shared.ErrCodeNoMatch, "Voice input failed, please try again"}
		}

		h.speaker.Speak(r.Context(), userID, notice.spoken)
		h.logger.Info("Voice recognition failure reported",
			zap.String("userId", userID),
			zap.String("errorCode", params.ErrorCode))

		jsonrpcx.WithError(r, req.ID, notice.code, notice.spoken)
		return
	}

	if params.Transcript == "" {
		notice := sttNotices["no-speech"]
		h.speaker.Speak(r.Context(), userID, notice.spoken)
		jsonrpcx.WithError(r, req.ID, notice.code, notice.spoken)
		return
	}

	parsed := transcript.Parse(params.Transcript)

	at, err := schedule.NewTimeOfDay(parsed.Hour, parsed.Minute)
	if err != nil {
		domainError(r, req.ID, err)
		return
	}

	item, err := schedule.NewItem(userID, parsed.Title, at, params.Transcript, parsed.LeadMinutes)
	if err != nil {
		domainError(r, req.ID, err)
		return
	}

	if err := h.repository.Insert(r.Context(), item); err != nil {
		domainError(r, req.ID, err)
		return
	}

	confirmation := fmt.Sprintf("Added %s at %s", item.Title, item.Time)
	h.speaker.Speak(r.Context(), userID, confirmation)

	h.logger.Info("Voice command parsed into schedule item",
		zap.String("userId", userID),
		zap.String("itemId", item.ID.String()),
		zap.String("title", item.Title),
		zap.String("time", item.Time.String()),
		zap.Bool("timeExplicit", parsed.TimeExplicit))

	jsonrpcx.Success(w, req.ID, VoiceCommandResponse{
		Item:      item,
		Parsed:    parsed,
		Utterance: confirmation,
	})
}
