package cqrs

import (
	"time"

	"github.com/Harishhackz/seeing-helper/internal/domain/schedule"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// SpeechRequestedEvent asks the user's text-to-speech collaborator to speak.
// Seq is a per-user monotonic counter: the client must cancel any in-flight
// utterance with a lower Seq before starting this one, which keeps a single
// utterance active and prevents overlapping speech.
type SpeechRequestedEvent struct {
	UserID      string    `json:"user_id"`
	UtteranceID string    `json:"utterance_id"`
	Text        string    `json:"text"`
	Rate        float64   `json:"rate"`
	Pitch       float64   `json:"pitch"`
	Volume      float64   `json:"volume"`
	Seq         uint64    `json:"seq"`
	Timestamp   time.Time `json:"timestamp"`
}

// ReminderDueEvent fires when the reminder clock transitions a notice flag
type ReminderDueEvent struct {
	UserID       string              `json:"user_id"`
	ItemID       string              `json:"item_id"`
	Title        string              `json:"title"`
	Kind         schedule.NoticeKind `json:"kind"`
	DeltaMinutes int                 `json:"delta_minutes"`
	Utterance    string              `json:"utterance"`
	Timestamp    time.Time           `json:"timestamp"`
	RequestID    string              `json:"request_id"`
}

// ScheduleChangedEvent carries the merge-patch diff of an item whose notice
// flags flipped, so clients re-render only what changed.
type ScheduleChangedEvent struct {
	UserID    string    `json:"user_id"`
	ItemID    string    `json:"item_id"`
	Changes   []byte    `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// NavigationStartedEvent fires when a route is installed for a user
type NavigationStartedEvent struct {
	UserID          string    `json:"user_id"`
	Destination     string    `json:"destination"`
	DistanceMeters  float64   `json:"distance_meters"`
	DurationSeconds float64   `json:"duration_seconds"`
	StepCount       int       `json:"step_count"`
	Timestamp       time.Time `json:"timestamp"`
	RequestID       string    `json:"request_id"`
}

// InstructionAnnouncedEvent fires when a maneuver is spoken; clients update
// the guidance banner from it.
type InstructionAnnouncedEvent struct {
	UserID      string          `json:"user_id"`
	Instruction string          `json:"instruction"`
	StepIndex   int             `json:"step_index"`
	Position    shared.GeoPoint `json:"position"`
	Preview     bool            `json:"preview"`
	Timestamp   time.Time       `json:"timestamp"`
	RequestID   string          `json:"request_id"`
}

// NavigationEndedEvent fires when guidance stops, by arrival or by the user
type NavigationEndedEvent struct {
	UserID    string    `json:"user_id"`
	Arrived   bool      `json:"arrived"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// VisionResultEvent carries ranked classification labels for a camera frame
type VisionResultEvent struct {
	UserID    string        `json:"user_id"`
	Labels    []VisionLabel `json:"labels"`
	Utterance string        `json:"utterance"`
	Timestamp time.Time     `json:"timestamp"`
	RequestID string        `json:"request_id"`
}

// VisionLabel is one ranked classification result
type VisionLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// SSENotificationEvent represents an event to send SSE notifications
type SSENotificationEvent struct {
	Type        string      `json:"type"`
	TargetUsers []string    `json:"target_users,omitempty"` // empty for broadcast
	Method      string      `json:"method"`
	Params      interface{} `json:"params"`
	Timestamp   time.Time   `json:"timestamp"`
	RequestID   string      `json:"request_id"`
}

// Event types for different notification patterns
const (
	SSENotificationTypeBroadcast = "broadcast" // Send to all users
	SSENotificationTypeUsers     = "users"     // Send to specific list of users
)
