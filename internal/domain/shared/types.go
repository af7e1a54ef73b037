package shared

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// NewID generates a new unique ID
func NewID() ID {
	return ID(uuid.New().String())
}

// String returns the string representation of ID
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if ID is empty
func (id ID) IsEmpty() bool {
	return string(id) == ""
}

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// GeoPoint represents a WGS 84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewGeoPoint creates a new geographic point
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Lat: lat, Lon: lon}
}

// IsValid checks that the coordinate is within WGS 84 bounds
func (p GeoPoint) IsValid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// DistanceTo returns the great-circle distance to another point in meters,
// computed with the haversine formula.
func (p GeoPoint) DistanceTo(other GeoPoint) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - p.Lat) * math.Pi / 180
	dLon := (other.Lon - p.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// String returns string representation of the point
func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f,%.6f)", p.Lat, p.Lon)
}

// Timestamp represents a point in time
type Timestamp struct {
	value time.Time
}

// NewTimestamp creates a new timestamp
func NewTimestamp() Timestamp {
	return Timestamp{value: time.Now()}
}

// NewTimestampFromTime creates timestamp from time.Time
func NewTimestampFromTime(t time.Time) Timestamp {
	return Timestamp{value: t}
}

// Value returns the time value
func (t Timestamp) Value() time.Time {
	return t.value
}

// IsAfter checks if this timestamp is after another
func (t Timestamp) IsAfter(other Timestamp) bool {
	return t.value.After(other.value)
}

// DurationSince returns duration since this timestamp
func (t Timestamp) DurationSince() time.Duration {
	return time.Since(t.value)
}

// MarshalJSON encodes the timestamp as RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.value.MarshalJSON()
}

// UnmarshalJSON decodes an RFC 3339 timestamp
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	return t.value.UnmarshalJSON(data)
}
