package handlers

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/api/jsonrpcx"
	cqrsevents "github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// SSEBroadcaster interface for broadcasting SSE messages
type SSEBroadcaster interface {
	BroadcastToUsers(targetUsers []string, notification jsonrpcx.Notification)
	BroadcastToAll(notification jsonrpcx.Notification)
}

// SSEEventHandler turns assist events into the JSON-RPC notifications the
// client renders and speaks
type SSEEventHandler struct {
	sseBroadcaster SSEBroadcaster
	logger         *logger.Logger
}

// NewSSEEventHandler creates a new SSE event handler
func NewSSEEventHandler(sseBroadcaster SSEBroadcaster, logger *logger.Logger) *SSEEventHandler {
	return &SSEEventHandler{
		sseBroadcaster: sseBroadcaster,
		logger:         logger.WithComponent("sse-event-handler"),
	}
}

// HandleSpeechRequestedEvent forwards an utterance to the user's TTS client
func (h *SSEEventHandler) HandleSpeechRequestedEvent(ctx context.Context, event *cqrsevents.SpeechRequestedEvent) error {
	notification := jsonrpcx.NewNotification("speech.speak", map[string]interface{}{
		"utterance_id": event.UtteranceID,
		"text":         event.Text,
		"rate":         event.Rate,
		"pitch":        event.Pitch,
		"volume":       event.Volume,
		"seq":          event.Seq,
		"timestamp":    event.Timestamp.Format(time.RFC3339),
	})

	h.sseBroadcaster.BroadcastToUsers([]string{event.UserID}, notification)

	h.logger.Debug("Speech request forwarded",
		zap.String("userId", event.UserID),
		zap.Uint64("seq", event.Seq))

	return nil
}

// HandleReminderDueEvent delivers the visual half of a reminder notice
func (h *SSEEventHandler) HandleReminderDueEvent(ctx context.Context, event *cqrsevents.ReminderDueEvent) error {
	notification := jsonrpcx.NewNotification("reminder.due", map[string]interface{}{
		"item_id":       event.ItemID,
		"title":         event.Title,
		"kind":          event.Kind,
		"delta_minutes": event.DeltaMinutes,
		"utterance":     event.Utterance,
		"timestamp":     event.Timestamp.Format(time.RFC3339),
		"request_id":    event.RequestID,
	})

	h.sseBroadcaster.BroadcastToUsers([]string{event.UserID}, notification)
	return nil
}

// HandleScheduleChangedEvent delivers a merge-patch diff of a changed item
func (h *SSEEventHandler) HandleScheduleChangedEvent(ctx context.Context, event *cqrsevents.ScheduleChangedEvent) error {
	notification := jsonrpcx.NewNotification("schedule.changed", map[string]interface{}{
		"item_id":    event.ItemID,
		"changes":    json.RawMessage(event.Changes),
		"timestamp":  event.Timestamp.Format(time.RFC3339),
		"request_id": event.RequestID,
	})

	h.sseBroadcaster.BroadcastToUsers([]string{event.UserID}, notification)
	return nil
}

// HandleNavigationStartedEvent announces a freshly installed route
func (h *SSEEventHandler) HandleNavigationStartedEvent(ctx context.Context, event *cqrsevents.NavigationStartedEvent) error {
	notification := jsonrpcx.NewNotification("navigation.started", map[string]interface{}{
		"destination":      event.Destination,
		"distance_meters":  event.DistanceMeters,
		"duration_seconds": event.DurationSeconds,
		"step_count":       event.StepCount,
		"timestamp":        event.Timestamp.Format(time.RFC3339),
	})

	h.sseBroadcaster.BroadcastToUsers([]string{event.UserID}, notification)
	return nil
}

// HandleInstructionAnnouncedEvent updates the guidance banner
func (h *SSEEventHandler) HandleInstructionAnnouncedEvent(ctx context.Context, event *cqrsevents.InstructionAnnouncedEvent) error {
	notification := jsonrpcx.NewNotification("navigation.instruction", map[string]interface{}{
		"instruction": event.Instruction,
		"step_index":  event.StepIndex,
		"position":    event.Position,
		"preview":     event.Preview,
		"timestamp":   event.Timestamp.Format(time.RFC3339),
	})

	h.sseBroadcaster.BroadcastToUsers([]string{event.UserID}, notification)
	return nil
}

// HandleNavigationEndedEvent reports arrival or a manual stop
func (h *SSEEventHandler) HandleNavigationEndedEvent(ctx context.Context, event *cqrsevents.NavigationEndedEvent) error {
	method := "navigation.stopped"
	if event.Arrived {
		method = "navigation.arrived"
	}

	notification := jsonrpcx.NewNotification(method, map[string]interface{}{
		"arrived":   event.Arrived,
		"timestamp": event.Timestamp.Format(time.RFC3339),
	})

	h.sseBroadcaster.BroadcastToUsers([]string{event.UserID}, notification)
	return nil
}

// HandleVisionResultEvent delivers ranked labels for a classified frame
func (h *SSEEventHandler) HandleVisionResultEvent(ctx context.Context, event *cqrsevents.VisionResultEvent) error {
	notification := jsonrpcx.NewNotification("vision.result", map[string]interface{}{
		"labels":    event.Labels,
		"utterance": event.Utterance,
		"timestamp": event.Timestamp.Format(time.RFC3339),
	})

	h.sseBroadcaster.BroadcastToUsers([]string{event.UserID}, notification)
	return nil
}

// HandleSSENotificationEvent relays pre-built notifications
func (h *SSEEventHandler) HandleSSENotificationEvent(ctx context.Context, event *cqrsevents.SSENotificationEvent) error {
	notification := jsonrpcx.NewNotification(event.Method, event.Params)

	switch event.Type {
	case cqrsevents.SSENotificationTypeBroadcast:
		h.sseBroadcaster.BroadcastToAll(notification)
	case cqrsevents.SSENotificationTypeUsers:
		h.sseBroadcaster.BroadcastToUsers(event.TargetUsers, notification)
	default:
		h.logger.Warn("Unknown SSE notification type", zap.String("type", event.Type))
	}

	return nil
}
