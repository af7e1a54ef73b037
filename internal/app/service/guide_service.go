package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/internal/domain/navigation"
	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
	"github.com/Harishhackz/seeing-helper/internal/speech"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// DirectionsProvider computes a walking route between two points
type DirectionsProvider interface {
	Route(ctx context.Context, from, to shared.GeoPoint, destination string) (*navigation.Route, error)
}

// GeocodingProvider resolves free-text destinations to coordinates
type GeocodingProvider interface {
	Forward(ctx context.Context, query string) (shared.GeoPoint, string, error)
}

// GuideService owns the navigation lifecycle: it builds routes from the
// directions and geocoding collaborators, feeds live positions through the
// announcer, and schedules the deferred follow-up utterances.
//
// Deferred speech is generation-guarded. Every scheduled utterance remembers
// the session generation it was created under and re-checks it right before
// speaking; a stop, a route replacement, or a mute bumps the generation, so
// stale utterances stay silent.
type GuideService struct {
	logger     *logger.Logger
	sessions   navigation.Repository
	directions DirectionsProvider
	geocoding  GeocodingProvider
	speaker    *speech.Speaker
	scheduler  *speech.Scheduler
	eventBus   cqrs.EventPublisher

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	minEvery time.Duration
}

// NewGuideService creates a guide service. positionMinInterval throttles live
// position intake per user; updates arriving faster are dropped.
func NewGuideService(
	log *logger.Logger,
	sessions navigation.Repository,
	directions DirectionsProvider,
	geocoding GeocodingProvider,
	speaker *speech.Speaker,
	scheduler *speech.Scheduler,
	eventBus cqrs.EventPublisher,
	positionMinInterval time.Duration,
) *GuideService {
	return &GuideService{
		logger:     log.WithComponent("guide-service"),
		sessions:   sessions,
		directions: directions,
		geocoding:  geocoding,
		speaker:    speaker,
		scheduler:  scheduler,
		eventBus:   eventBus,
		limiters:   make(map[string]*rate.Limiter),
		minEvery:   positionMinInterval,
	}
}

// Start resolves a free-text destination, computes a route, and installs it
// on the user's session. Any guidance already in progress is replaced. The
// first maneuver is previewed immediately so the user knows where to head.
func (gs *GuideService) Start(ctx context.Context, userID, destination string, from shared.GeoPoint) (*navigation.Session, error) {
	if !from.IsValid() {
		return nil, shared.ErrInvalidInput("starting position is out of range")
	}

	point, placeName, err := gs.geocoding.Forward(ctx, destination)
	if err != nil {
		return nil, err
	}

	route, err := gs.directions.Route(ctx, from, point, placeName)
	if err != nil {
		return nil, err
	}

	var beginErr error
	err = gs.sessions.WithSession(ctx, userID, func(s *navigation.Session) {
		beginErr = s.Begin(route)
		if beginErr == nil {
			s.RecordPosition(from)
		}
	})
	if err != nil {
		return nil, err
	}
	if beginErr != nil {
		return nil, beginErr
	}

	first := route.Steps[0]
	gs.speaker.Speak(ctx, userID, navigation.PreviewUtterance(from.DistanceTo(first.Trigger), first.Instruction))

	gs.publish(ctx, &cqrs.NavigationStartedEvent{
		UserID:          userID,
		Destination:     route.Destination,
		DistanceMeters:  route.DistanceMeters,
		DurationSeconds: route.DurationSeconds,
		StepCount:       len(route.Steps),
		Timestamp:       time.Now(),
		RequestID:       "nav-start-" + userID + "-" + time.Now().Format("150405.000"),
	})

	gs.logger.Info("Navigation started",
		zap.String("userId", userID),
		zap.String("destination", route.Destination),
		zap.Int("steps", len(route.Steps)))

	return gs.sessions.Get(ctx, userID)
}

// Position consumes one live GPS fix. Fixes arriving faster than the
// configured minimum interval are dropped without touching the session.
func (gs *GuideService) Position(ctx context.Context, userID string, position shared.GeoPoint) error {
	if !position.IsValid() {
		return shared.ErrInvalidInput("position is out of range")
	}
	if !gs.limiter(userID).Allow() {
		return nil
	}

	var (
		decision   navigation.Decision
		generation uint64
		stepIndex  int
	)
	err := gs.sessions.WithSession(ctx, userID, func(s *navigation.Session) {
		s.RecordPosition(position)
		stepIndex = s.Cursor
		decision = s.Observe(position)
		generation = s.Generation
	})
	if err != nil {
		return err
	}
	if decision.IsZero() {
		return nil
	}

	if decision.Speak != "" {
		gs.speaker.Speak(ctx, userID, decision.Speak)
		gs.publish(ctx, &cqrs.InstructionAnnouncedEvent{
			UserID:      userID,
			Instruction: decision.Speak,
			StepIndex:   stepIndex,
			Position:    position,
			Preview:     !decision.Advanced,
			Timestamp:   time.Now(),
			RequestID:   "nav-instr-" + userID + "-" + time.Now().Format("150405.000"),
		})
	}

	if decision.Deferred != "" {
		gs.deferUtterance(userID, generation, decision)
	}

	return nil
}

// deferUtterance schedules the follow-up utterance a maneuver announcement
// trails behind it. The callback re-checks the session generation so speech
// scheduled before a stop or mute never comes out after it.
func (gs *GuideService) deferUtterance(userID string, generation uint64, decision navigation.Decision) {
	gs.scheduler.After(decision.DeferredBy, func() {
		ctx := context.Background()

		stale := true
		err := gs.sessions.WithSession(ctx, userID, func(s *navigation.Session) {
			stale = s.Generation != generation
		})
		if err != nil || stale {
			return
		}

		gs.speaker.Speak(ctx, userID, decision.Deferred)

		if decision.Arrived {
			gs.finishArrival(ctx, userID, generation)
		}
	})
}

// finishArrival ends the session after the arrival message has been spoken
func (gs *GuideService) finishArrival(ctx context.Context, userID string, generation uint64) {
	completed := false
	err := gs.sessions.WithSession(ctx, userID, func(s *navigation.Session) {
		if s.Generation != generation {
			return
		}
		s.Complete()
		completed = true
	})
	if err != nil || !completed {
		return
	}

	gs.publish(ctx, &cqrs.NavigationEndedEvent{
		UserID:    userID,
		Arrived:   true,
		Timestamp: time.Now(),
		RequestID: "nav-arrived-" + userID,
	})

	gs.logger.Info("Navigation arrived", zap.String("userId", userID))
}

// Voice toggles spoken guidance for the user's session
func (gs *GuideService) Voice(ctx context.Context, userID string, enabled bool) error {
	return gs.sessions.WithSession(ctx, userID, func(s *navigation.Session) {
		s.SetVoice(enabled)
	})
}

// Stop ends guidance for the user. Idempotent; stopping an idle session is
// not an error.
func (gs *GuideService) Stop(ctx context.Context, userID string) error {
	wasActive := false
	err := gs.sessions.WithSession(ctx, userID, func(s *navigation.Session) {
		wasActive = s.Active
		s.Stop()
	})
	if err != nil {
		return err
	}

	if wasActive {
		gs.publish(ctx, &cqrs.NavigationEndedEvent{
			UserID:    userID,
			Arrived:   false,
			Timestamp: time.Now(),
			RequestID: "nav-stop-" + userID,
		})
		gs.logger.Info("Navigation stopped", zap.String("userId", userID))
	}

	return nil
}

// Get returns a snapshot of the user's session, or nil before first use
func (gs *GuideService) Get(ctx context.Context, userID string) (*navigation.Session, error) {
	return gs.sessions.Get(ctx, userID)
}

func (gs *GuideService) limiter(userID string) *rate.Limiter {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	l, ok := gs.limiters[userID]
	if !ok {
		l = rate.NewLimiter(rate.Every(gs.minEvery), 1)
		gs.limiters[userID] = l
	}
	return l
}

func (gs *GuideService) publish(ctx context.Context, event interface{}) {
	if err := gs.eventBus.Publish(ctx, event); err != nil {
		gs.logger.Error("Failed to publish navigation event", zap.Error(err))
	}
}
