package navigation

import (
	"strings"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// RouteStep is one maneuver of a computed route. Announced is a one-way
// flag: it transitions false->true when the instruction has been spoken and
// is never cleared for the life of the route.
type RouteStep struct {
	Instruction    string          `json:"instruction"`
	Trigger        shared.GeoPoint `json:"trigger"`
	DistanceMeters float64         `json:"distance_meters"`
	Announced      bool            `json:"announced"`
}

// Route is an ordered maneuver sequence from the directions provider. It is
// replaced wholesale when a new route is computed and cleared on stop; the
// engine never edits individual steps other than their Announced flag.
type Route struct {
	Destination     string          `json:"destination"`
	DestinationAt   shared.GeoPoint `json:"destination_at"`
	DistanceMeters  float64         `json:"distance_meters"`
	DurationSeconds float64         `json:"duration_seconds"`
	Steps           []RouteStep     `json:"steps"`
}

// NewRoute creates a validated route
func NewRoute(destination string, at shared.GeoPoint, distanceMeters, durationSeconds float64, steps []RouteStep) (*Route, error) {
	if strings.TrimSpace(destination) == "" {
		return nil, shared.ErrInvalidInput("destination cannot be empty")
	}
	if !at.IsValid() {
		return nil, shared.ErrInvalidInput("destination coordinate out of range")
	}
	for _, step := range steps {
		if !step.Trigger.IsValid() {
			return nil, shared.ErrInvalidInput("step trigger coordinate out of range")
		}
	}
	return &Route{
		Destination:     destination,
		DestinationAt:   at,
		DistanceMeters:  distanceMeters,
		DurationSeconds: durationSeconds,
		Steps:           steps,
	}, nil
}

// IsEmpty reports whether the route has no steps
func (r *Route) IsEmpty() bool {
	return r == nil || len(r.Steps) == 0
}
