package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// Points around city hall; ~0.001 deg latitude is ~111 m.
var (
	stepOneAt   = shared.NewGeoPoint(37.566500, 126.978000)
	stepTwoAt   = shared.NewGeoPoint(37.570000, 126.978000) // ~390 m north
	farAway     = shared.NewGeoPoint(37.600000, 126.978000)
	inPreview   = shared.NewGeoPoint(37.566860, 126.978000) // ~40 m from step one
	offByMeters = shared.NewGeoPoint(37.566520, 126.978000) // ~2 m from step one
)

func twoStepSession(t *testing.T) *Session {
	t.Helper()
	route, err := NewRoute("City Hall", stepTwoAt, 500, 420, []RouteStep{
		{Instruction: "Turn left onto Main Street", Trigger: stepOneAt, DistanceMeters: 120},
		{Instruction: "Your destination is on the right", Trigger: stepTwoAt, DistanceMeters: 390},
	})
	require.NoError(t, err)

	s := NewSession("user-1")
	require.NoError(t, s.Begin(route))
	return s
}

func TestObserveAnnouncesAndAdvances(t *testing.T) {
	s := twoStepSession(t)

	decision := s.Observe(stepOneAt)
	assert.Equal(t, "Turn left onto Main Street", decision.Speak)
	assert.True(t, decision.Advanced)
	assert.False(t, decision.Arrived)
	assert.True(t, s.Route.Steps[0].Announced)
	assert.Equal(t, 1, s.Cursor)

	// Next step is ~390 m out, so the deferred preview is metric
	assert.Equal(t, nextStepDelay, decision.DeferredBy)
	assert.Contains(t, decision.Deferred, "meters, Your destination is on the right")
}

func TestObserveIsIdempotentAfterAnnouncement(t *testing.T) {
	s := twoStepSession(t)

	first := s.Observe(stepOneAt)
	require.False(t, first.IsZero())

	// Same position again: step 0 is consumed, step 1 is far away
	second := s.Observe(offByMeters)
	assert.True(t, second.IsZero())
	assert.Equal(t, 1, s.Cursor)
}

func TestObserveLastStepArrival(t *testing.T) {
	s := twoStepSession(t)
	s.Observe(stepOneAt)

	decision := s.Observe(stepTwoAt)
	assert.Equal(t, "Your destination is on the right", decision.Speak)
	assert.True(t, decision.Arrived)
	assert.Equal(t, arrivalDelay, decision.DeferredBy)
	assert.Equal(t, "You have arrived at City Hall", decision.Deferred)
	assert.Equal(t, 1, s.Cursor, "cursor does not advance past the last step")
}

func TestObservePreviewBandRepeats(t *testing.T) {
	s := twoStepSession(t)

	// Inside the 30-50 m band: preview on every update, no state change
	for i := 0; i < 3; i++ {
		decision := s.Observe(inPreview)
		assert.Equal(t, "Shortly, Turn left onto Main Street", decision.Speak)
		assert.False(t, decision.Advanced)
		assert.False(t, s.Route.Steps[0].Announced)
		assert.Equal(t, 0, s.Cursor)
	}
}

func TestObserveOutsideBandsDoesNothing(t *testing.T) {
	s := twoStepSession(t)
	assert.True(t, s.Observe(farAway).IsZero())
}

func TestObserveRespectsSessionState(t *testing.T) {
	t.Run("voice off", func(t *testing.T) {
		s := twoStepSession(t)
		s.SetVoice(false)
		assert.True(t, s.Observe(stepOneAt).IsZero())
	})

	t.Run("stopped", func(t *testing.T) {
		s := twoStepSession(t)
		s.Stop()
		assert.True(t, s.Observe(stepOneAt).IsZero())
	})

	t.Run("idle session without route", func(t *testing.T) {
		s := NewSession("user-1")
		assert.True(t, s.Observe(stepOneAt).IsZero())
	})
}

func TestSessionLifecycle(t *testing.T) {
	s := twoStepSession(t)
	gen := s.Generation

	s.Stop()
	assert.False(t, s.Active)
	assert.Nil(t, s.Route)
	assert.Equal(t, 0, s.Cursor)
	assert.Equal(t, gen+1, s.Generation, "stop invalidates deferred speech")

	s.Stop()
	assert.Equal(t, gen+1, s.Generation, "stop is idempotent")
}

func TestSessionVoiceToggle(t *testing.T) {
	s := twoStepSession(t)
	gen := s.Generation

	s.SetVoice(false)
	assert.Equal(t, gen+1, s.Generation, "muting invalidates deferred speech")
	s.SetVoice(false)
	assert.Equal(t, gen+1, s.Generation, "toggle is idempotent")

	s.SetVoice(true)
	assert.Equal(t, gen+1, s.Generation, "unmuting does not invalidate anything")
	assert.True(t, s.VoiceEnabled)
}

func TestPreviewUtterance(t *testing.T) {
	assert.Equal(t, "In 250 meters, Turn right", PreviewUtterance(250.4, "Turn right"))
	assert.Equal(t, "Shortly, Turn right", PreviewUtterance(80, "Turn right"))
	assert.Equal(t, "Shortly, Turn right", PreviewUtterance(100, "Turn right"))
}

func TestNewRouteValidation(t *testing.T) {
	_, err := NewRoute("", stepTwoAt, 1, 1, nil)
	assert.Error(t, err)

	_, err = NewRoute("City Hall", shared.NewGeoPoint(95, 0), 1, 1, nil)
	assert.Error(t, err)

	_, err = NewRoute("City Hall", stepTwoAt, 1, 1, []RouteStep{
		{Instruction: "x", Trigger: shared.NewGeoPoint(0, 200)},
	})
	assert.Error(t, err)
}

func TestBeginRejectsEmptyRoute(t *testing.T) {
	route, err := NewRoute("City Hall", stepTwoAt, 1, 1, nil)
	require.NoError(t, err)

	s := NewSession("user-1")
	assert.Error(t, s.Begin(route))
}
