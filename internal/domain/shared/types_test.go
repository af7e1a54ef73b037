package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGeoPointDistanceTo(t *testing.T) {
	t.Run("distance to self is zero", func(t *testing.T) {
		p := NewGeoPoint(37.5665, 126.9780)
		assert.Equal(t, 0.0, p.DistanceTo(p))
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		a := NewGeoPoint(37.5665, 126.9780)
		b := NewGeoPoint(37.5700, 126.9768)
		assert.InDelta(t, a.DistanceTo(b), b.DistanceTo(a), 1e-9)
	})

	t.Run("one millidegree of latitude is about 111 meters", func(t *testing.T) {
		a := NewGeoPoint(37.5665, 126.9780)
		b := NewGeoPoint(37.5675, 126.9780)
		d := a.DistanceTo(b)
		// 0.001 deg latitude ~= 111.19 m, allow 5%
		assert.InDelta(t, 111.19, d, 111.19*0.05)
	})

	t.Run("known city pair", func(t *testing.T) {
		seoul := NewGeoPoint(37.5665, 126.9780)
		busan := NewGeoPoint(35.1796, 129.0756)
		d := seoul.DistanceTo(busan)
		// ~325 km great-circle, allow 2%
		assert.InDelta(t, 325000, d, 325000*0.02)
	})
}

func TestGeoPointIsValid(t *testing.T) {
	assert.True(t, NewGeoPoint(0, 0).IsValid())
	assert.True(t, NewGeoPoint(-90, 180).IsValid())
	assert.False(t, NewGeoPoint(91, 0).IsValid())
	assert.False(t, NewGeoPoint(0, -181).IsValid())
}

func TestErrorCode(t *testing.T) {
	err := NewDomainError(ErrCodeNoMatch, "no time found")
	assert.Equal(t, ErrCodeNoMatch, ErrorCode(err))

	assert.Equal(t, 0, ErrorCode(assert.AnError))
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsEmpty())
	assert.True(t, ID("").IsEmpty())
}
