package navigation

import (
	"fmt"
	"math"
	"time"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

const (
	// announceRadiusMeters is the trigger distance: inside it the current
	// maneuver is spoken and the cursor advances.
	announceRadiusMeters = 30.0
	// previewRadiusMeters bounds the early-warning band. Between the two
	// radii the upcoming maneuver is previewed on every position update;
	// the repetition is the intended behavior, not missing deduplication.
	previewRadiusMeters = 50.0
	// shortlyThresholdMeters decides between a metric preview and "Shortly"
	shortlyThresholdMeters = 100.0

	// nextStepDelay is how long after an announcement the next maneuver
	// preview follows.
	nextStepDelay = 3 * time.Second
	// arrivalDelay is how long after the final announcement the arrival
	// message follows.
	arrivalDelay = 2 * time.Second
)

// Decision is what one position update asks the speech layer to do. Speak is
// uttered immediately; Deferred is uttered after DeferredBy unless the
// session generation has moved on by then.
type Decision struct {
	Speak      string
	Deferred   string
	DeferredBy time.Duration
	Advanced   bool
	Arrived    bool
}

// IsZero reports whether the update produced nothing to do
func (d Decision) IsZero() bool {
	return d.Speak == "" && d.Deferred == ""
}

// Observe consumes one live position and decides what, if anything, to
// announce. It mutates the session: step Announced flags flip one way and
// the cursor only moves forward.
func (s *Session) Observe(position shared.GeoPoint) Decision {
	if !s.Active || !s.VoiceEnabled || s.Route.IsEmpty() {
		return Decision{}
	}
	if s.Cursor < 0 || s.Cursor >= len(s.Route.Steps) {
		return Decision{}
	}

	step := &s.Route.Steps[s.Cursor]
	if step.Announced {
		return Decision{}
	}

	d := position.DistanceTo(step.Trigger)

	switch {
	case d < announceRadiusMeters:
		step.Announced = true
		decision := Decision{Speak: step.Instruction, Advanced: true}

		if s.Cursor < len(s.Route.Steps)-1 {
			s.Cursor++
			next := s.Route.Steps[s.Cursor]
			decision.Deferred = PreviewUtterance(position.DistanceTo(next.Trigger), next.Instruction)
			decision.DeferredBy = nextStepDelay
		} else {
			decision.Arrived = true
			decision.Deferred = fmt.Sprintf("You have arrived at %s", s.Route.Destination)
			decision.DeferredBy = arrivalDelay
		}
		return decision

	case d < previewRadiusMeters:
		return Decision{Speak: PreviewUtterance(d, step.Instruction)}
	}

	return Decision{}
}

// PreviewUtterance phrases an upcoming maneuver with its rounded distance
func PreviewUtterance(distance float64, instruction string) string {
	if distance > shortlyThresholdMeters {
		return fmt.Sprintf("In %d meters, %s", int(math.Round(distance)), instruction)
	}
	return fmt.Sprintf("Shortly, %s", instruction)
}
