// Package speech is the server side of the text-to-speech collaborator. The
// actual synthesis happens on the client device; this package decides what
// gets spoken, enforces the single-active-utterance invariant, and schedules
// delayed utterances that can be cancelled when their session moves on.
package speech

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// Params are the voice parameters handed to the TTS collaborator
type Params struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultParams is a calm, slightly slowed voice suited to spoken guidance
var DefaultParams = Params{Rate: 0.9, Pitch: 1.0, Volume: 1.0}

// Speaker delivers utterances to a user's device over the event bus.
//
// Utterances are exclusive: every SpeechRequestedEvent carries a per-user
// monotonic sequence number and the client cancels any in-flight utterance
// with a lower one, so two notices firing back to back never overlap.
type Speaker struct {
	publisher cqrs.EventPublisher
	logger    *logger.Logger
	params    Params

	mu  sync.Mutex
	seq map[string]uint64
}

// NewSpeaker creates a speaker publishing to the given event bus
func NewSpeaker(publisher cqrs.EventPublisher, params Params, log *logger.Logger) *Speaker {
	return &Speaker{
		publisher: publisher,
		logger:    log.WithComponent("speaker"),
		params:    params,
		seq:       make(map[string]uint64),
	}
}

// Speak requests one utterance for a user, interrupting whatever the device
// is currently saying. Fire-and-forget: a publish failure is logged, never
// propagated, because speech is a best-effort surface.
func (s *Speaker) Speak(ctx context.Context, userID, text string) {
	if text == "" {
		return
	}

	s.mu.Lock()
	s.seq[userID]++
	seq := s.seq[userID]
	s.mu.Unlock()

	event := &cqrs.SpeechRequestedEvent{
		UserID:      userID,
		UtteranceID: shared.NewID().String(),
		Text:        text,
		Rate:        s.params.Rate,
		Pitch:       s.params.Pitch,
		Volume:      s.params.Volume,
		Seq:         seq,
		Timestamp:   time.Now(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish utterance",
			zap.String("userId", userID),
			zap.Error(err))
		return
	}

	s.logger.Debug("Utterance requested",
		zap.String("userId", userID),
		zap.Uint64("seq", seq),
		zap.String("text", text))
}
