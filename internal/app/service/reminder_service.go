package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"

	"github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/internal/domain/schedule"
	"github.com/Harishhackz/seeing-helper/internal/speech"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

// ReminderService drives the reminder clock. A single goroutine polls every
// user's schedule on a fixed interval, speaks the notices the clock fires,
// and publishes the flag transitions so connected clients can re-render.
type ReminderService struct {
	logger       *logger.Logger
	repository   schedule.Repository
	speaker      *speech.Speaker
	eventBus     cqrs.EventPublisher
	tickInterval time.Duration
	stopChan     chan struct{}
	stopOnce     sync.Once
	ticker       *time.Ticker
}

// NewReminderService creates a reminder service polling at the given interval
func NewReminderService(
	log *logger.Logger,
	repository schedule.Repository,
	speaker *speech.Speaker,
	eventBus cqrs.EventPublisher,
	tickInterval time.Duration,
) *ReminderService {
	return &ReminderService{
		logger:       log.WithComponent("reminder-service"),
		repository:   repository,
		speaker:      speaker,
		eventBus:     eventBus,
		tickInterval: tickInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the periodic clock. The first tick runs immediately so items
// added just before startup are not silently skipped for a whole interval.
func (rs *ReminderService) Start(ctx context.Context) {
	rs.ticker = time.NewTicker(rs.tickInterval)

	rs.logger.Info("Starting reminder clock",
		zap.Duration("tick_interval", rs.tickInterval))

	go rs.tickLoop(ctx)
}

// Stop stops the periodic clock. Safe to call more than once; shutdown paths
// overlap when the context is already cancelled.
func (rs *ReminderService) Stop() {
	rs.stopOnce.Do(func() {
		rs.logger.Info("Stopping reminder clock")

		if rs.ticker != nil {
			rs.ticker.Stop()
		}

		close(rs.stopChan)
	})
}

func (rs *ReminderService) tickLoop(ctx context.Context) {
	rs.TickAll(ctx, time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case <-rs.stopChan:
			return
		case now := <-rs.ticker.C:
			rs.TickAll(ctx, now)
		}
	}
}

// TickAll evaluates every user's schedule against one now snapshot. Exported
// so tests can drive the clock without waiting for the ticker.
func (rs *ReminderService) TickAll(ctx context.Context, now time.Time) {
	users, err := rs.repository.Users(ctx)
	if err != nil {
		rs.logger.Error("Failed to list schedule owners", zap.Error(err))
		return
	}

	for _, userID := range users {
		rs.tickUser(ctx, now, userID)
	}
}

// tickUser runs one clock tick for one user. The flag transitions happen
// inside the repository callback so they are atomic with respect to the
// handlers mutating the same collection.
func (rs *ReminderService) tickUser(ctx context.Context, now time.Time, userID string) {
	var (
		result schedule.TickResult
		before map[schedule.ItemID][]byte
	)

	err := rs.repository.WithItems(ctx, userID, func(items []*schedule.Item) {
		before = make(map[schedule.ItemID][]byte, len(items))
		for _, item := range items {
			if raw, err := json.Marshal(item); err == nil {
				before[item.ID] = raw
			}
		}
		result = schedule.Tick(now, items)
	})
	if err != nil {
		rs.logger.Error("Failed to tick schedule",
			zap.String("userId", userID),
			zap.Error(err))
		return
	}

	for _, notice := range result.Fired {
		rs.deliverNotice(ctx, userID, notice)
	}

	for _, item := range result.Updated {
		rs.publishChange(ctx, userID, item, before[item.ID])
	}
}

func (rs *ReminderService) deliverNotice(ctx context.Context, userID string, notice schedule.Notice) {
	utterance := notice.Utterance()
	rs.speaker.Speak(ctx, userID, utterance)

	event := &cqrs.ReminderDueEvent{
		UserID:       userID,
		ItemID:       notice.Item.ID.String(),
		Title:        notice.Item.Title,
		Kind:         notice.Kind,
		DeltaMinutes: notice.DeltaMinutes,
		Utterance:    utterance,
		Timestamp:    time.Now(),
		RequestID:    "reminder-" + notice.Item.ID.String() + "-" + string(notice.Kind),
	}

	if err := rs.eventBus.Publish(ctx, event); err != nil {
		rs.logger.Error("Failed to publish reminder notice",
			zap.String("userId", userID),
			zap.String("itemId", notice.Item.ID.String()),
			zap.Error(err))
		return
	}

	rs.logger.Info("Reminder notice delivered",
		zap.String("userId", userID),
		zap.String("itemId", notice.Item.ID.String()),
		zap.String("kind", string(notice.Kind)),
		zap.Int("delta_minutes", notice.DeltaMinutes))
}

// publishChange emits a merge-patch diff of an item whose notice flags
// flipped, so clients update just that row.
func (rs *ReminderService) publishChange(ctx context.Context, userID string, item *schedule.Item, original []byte) {
	if original == nil {
		return
	}

	modified, err := json.Marshal(item)
	if err != nil {
		rs.logger.Error("Failed to marshal updated item",
			zap.String("itemId", item.ID.String()),
			zap.Error(err))
		return
	}

	changes, err := jsonpatch.CreateMergePatch(original, modified)
	if err != nil {
		rs.logger.Error("Failed to diff updated item",
			zap.String("itemId", item.ID.String()),
			zap.Error(err))
		return
	}

	event := &cqrs.ScheduleChangedEvent{
		UserID:    userID,
		ItemID:    item.ID.String(),
		Changes:   changes,
		Timestamp: time.Now(),
		RequestID: "schedule-" + item.ID.String() + "-" + time.Now().Format("150405.000"),
	}

	if err := rs.eventBus.Publish(ctx, event); err != nil {
		rs.logger.Error("Failed to publish schedule change",
			zap.String("userId", userID),
			zap.String("itemId", item.ID.String()),
			zap.Error(err))
	}
}
