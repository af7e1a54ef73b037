package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/cqrs"
	"github.com/Harishhackz/seeing-helper/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewDefault()
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []interface{}
	err    error
}

func (p *capturingPublisher) Publish(ctx context.Context, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) speechEvents() []*cqrs.SpeechRequestedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*cqrs.SpeechRequestedEvent
	for _, e := range p.events {
		if s, ok := e.(*cqrs.SpeechRequestedEvent); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestSpeaker_SeqIncreasesPerUser(t *testing.T) {
	pub := &capturingPublisher{}
	speaker := NewSpeaker(pub, DefaultParams, testLogger())
	ctx := context.Background()

	speaker.Speak(ctx, "alice", "It's time for Lunch")
	speaker.Speak(ctx, "alice", "Turn left onto Main Street")
	speaker.Speak(ctx, "bob", "Lunch is coming up in 10 minutes")

	events := pub.speechEvents()
	require.Len(t, events, 3)

	assert.Equal(t, uint64(1), events[0].Seq)
	assert.Equal(t, uint64(2), events[1].Seq)
	// bob's counter is independent of alice's
	assert.Equal(t, uint64(1), events[2].Seq)

	assert.Equal(t, "alice", events[0].UserID)
	assert.NotEmpty(t, events[0].UtteranceID)
	assert.NotEqual(t, events[0].UtteranceID, events[1].UtteranceID)
}

func TestSpeaker_CarriesVoiceParams(t *testing.T) {
	pub := &capturingPublisher{}
	params := Params{Rate: 1.2, Pitch: 0.8, Volume: 0.5}
	speaker := NewSpeaker(pub, params, testLogger())

	speaker.Speak(context.Background(), "alice", "hello")

	events := pub.speechEvents()
	require.Len(t, events, 1)
	assert.Equal(t, 1.2, events[0].Rate)
	assert.Equal(t, 0.8, events[0].Pitch)
	assert.Equal(t, 0.5, events[0].Volume)
}

func TestSpeaker_IgnoresEmptyText(t *testing.T) {
	pub := &capturingPublisher{}
	speaker := NewSpeaker(pub, DefaultParams, testLogger())

	speaker.Speak(context.Background(), "alice", "")

	assert.Empty(t, pub.speechEvents())
}

func TestSpeaker_PublishFailureIsSwallowed(t *testing.T) {
	pub := &capturingPublisher{err: errors.New("bus down")}
	speaker := NewSpeaker(pub, DefaultParams, testLogger())

	assert.NotPanics(t, func() {
		speaker.Speak(context.Background(), "alice", "hello")
	})
}

func TestScheduler_RunsAfterDelay(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	done := make(chan struct{})
	s.After(10*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduled function never ran")
	}
}

func TestScheduler_CancelPreventsRun(t *testing.T) {
	s := NewScheduler()
	defer s.Close()

	ran := make(chan struct{}, 1)
	cancel := s.After(30*time.Millisecond, func() { ran <- struct{}{} })
	cancel()
	cancel() // second cancel is a no-op

	select {
	case <-ran:
		t.Fatal("cancelled function ran anyway")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestScheduler_CloseCancelsPendingAndRejectsNew(t *testing.T) {
	s := NewScheduler()

	ran := make(chan struct{}, 2)
	s.After(30*time.Millisecond, func() { ran <- struct{}{} })
	s.Close()
	s.After(10*time.Millisecond, func() { ran <- struct{}{} })

	select {
	case <-ran:
		t.Fatal("function ran after Close")
	case <-time.After(100 * time.Millisecond):
	}
}
