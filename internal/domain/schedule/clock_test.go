package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustItem(t *testing.T, title string, at TimeOfDay, lead int) *Item {
	t.Helper()
	item, err := NewItem("user-1", title, at, "", lead)
	require.NoError(t, err)
	return item
}

func at(hour, min int) time.Time {
	return time.Date(2025, 3, 14, hour, min, 0, 0, time.Local)
}

func TestTickAdvanceNotice(t *testing.T) {
	item := mustItem(t, "Take medicine", TimeOfDay{Hour: 14, Minute: 0}, 10)

	t.Run("no notice outside the lead window", func(t *testing.T) {
		result := Tick(at(13, 40), []*Item{item})
		assert.Empty(t, result.Fired)
		assert.Empty(t, result.Updated)
		assert.False(t, item.AdvanceGiven)
	})

	t.Run("fires once inside the lead window", func(t *testing.T) {
		result := Tick(at(13, 51), []*Item{item})
		require.Len(t, result.Fired, 1)
		assert.Equal(t, AdvanceNotice, result.Fired[0].Kind)
		assert.Equal(t, 9, result.Fired[0].DeltaMinutes)
		assert.True(t, item.AdvanceGiven)
		assert.False(t, item.ExactGiven)
		require.Len(t, result.Updated, 1)
		assert.Same(t, item, result.Updated[0])
	})

	t.Run("never fires twice", func(t *testing.T) {
		result := Tick(at(13, 55), []*Item{item})
		assert.Empty(t, result.Fired)
	})
}

func TestTickExactNotice(t *testing.T) {
	t.Run("fires at the exact minute", func(t *testing.T) {
		item := mustItem(t, "Lunch", TimeOfDay{Hour: 12, Minute: 30}, 10)
		item.AdvanceGiven = true

		result := Tick(at(12, 30), []*Item{item})
		require.Len(t, result.Fired, 1)
		assert.Equal(t, ExactNotice, result.Fired[0].Kind)
		assert.Equal(t, 0, result.Fired[0].DeltaMinutes)
		assert.True(t, item.ExactGiven)
	})

	t.Run("fires within the tolerance window", func(t *testing.T) {
		item := mustItem(t, "Lunch", TimeOfDay{Hour: 12, Minute: 30}, 10)
		item.AdvanceGiven = true

		// 90 seconds past: deltaMinutes = floor(-1.5) = -2, outside (-2, 0]
		result := Tick(at(12, 30).Add(90*time.Second), []*Item{item})
		assert.Empty(t, result.Fired)

		// 50 seconds past: deltaMinutes = floor(-0.83) = -1, still inside
		result = Tick(at(12, 30).Add(50*time.Second), []*Item{item})
		require.Len(t, result.Fired, 1)
		assert.Equal(t, ExactNotice, result.Fired[0].Kind)
	})

	t.Run("missed by more than the tolerance never fires", func(t *testing.T) {
		item := mustItem(t, "Lunch", TimeOfDay{Hour: 12, Minute: 30}, 10)
		item.AdvanceGiven = true

		result := Tick(at(12, 33), []*Item{item})
		assert.Empty(t, result.Fired)
		assert.False(t, item.ExactGiven)
	})
}

func TestTickFlagsAreOneShot(t *testing.T) {
	item := mustItem(t, "Walk", TimeOfDay{Hour: 14, Minute: 0}, 5)

	advanceCount := 0
	exactCount := 0

	// Sweep a monotonically increasing clock across the whole window at the
	// 30 second poll cadence and count transitions.
	for now := at(13, 50); now.Before(at(14, 10)); now = now.Add(30 * time.Second) {
		result := Tick(now, []*Item{item})
		for _, n := range result.Fired {
			switch n.Kind {
			case AdvanceNotice:
				advanceCount++
			case ExactNotice:
				exactCount++
			}
		}
	}

	assert.Equal(t, 1, advanceCount)
	assert.Equal(t, 1, exactCount)
	assert.True(t, item.AdvanceGiven)
	assert.True(t, item.ExactGiven)
}

func TestTickEndToEndScenario(t *testing.T) {
	item := mustItem(t, "Physio", TimeOfDay{Hour: 14, Minute: 0}, 5)

	result := Tick(at(13, 54), []*Item{item})
	assert.Empty(t, result.Fired, "13:54 is outside the 5 minute lead")

	result = Tick(at(13, 56), []*Item{item})
	require.Len(t, result.Fired, 1)
	assert.Equal(t, AdvanceNotice, result.Fired[0].Kind)
	assert.Equal(t, 4, result.Fired[0].DeltaMinutes)

	result = Tick(at(14, 0), []*Item{item})
	require.Len(t, result.Fired, 1)
	assert.Equal(t, ExactNotice, result.Fired[0].Kind)

	result = Tick(at(14, 1), []*Item{item})
	assert.Empty(t, result.Fired, "both flags already set")
}

func TestTickItemsDueAtTheSameInstantBothFire(t *testing.T) {
	a := mustItem(t, "Pills", TimeOfDay{Hour: 9, Minute: 0}, 10)
	b := mustItem(t, "Breakfast", TimeOfDay{Hour: 9, Minute: 0}, 10)

	result := Tick(at(9, 0), []*Item{a, b})
	assert.Len(t, result.Fired, 2)
	assert.Len(t, result.Updated, 2)
}

func TestTickFlagsNeverReset(t *testing.T) {
	// A daily-recurring item fires once, ever: the clock does not handle day
	// rollover. This pins down the inherited behavior on purpose.
	item := mustItem(t, "Walk", TimeOfDay{Hour: 14, Minute: 0}, 5)
	item.AdvanceGiven = true
	item.ExactGiven = true

	nextDay := at(14, 0).Add(24 * time.Hour)
	result := Tick(nextDay, []*Item{item})
	assert.Empty(t, result.Fired)
}

func TestNoticeUtterance(t *testing.T) {
	item := mustItem(t, "Take medicine", TimeOfDay{Hour: 8, Minute: 0}, 10)

	advance := Notice{Item: item, Kind: AdvanceNotice, DeltaMinutes: 7}
	assert.Equal(t, "Take medicine is coming up in 7 minutes", advance.Utterance())

	exact := Notice{Item: item, Kind: ExactNotice}
	assert.Equal(t, "It's time for Take medicine", exact.Utterance())
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		{input: "08:30", want: TimeOfDay{Hour: 8, Minute: 30}},
		{input: "23:59", want: TimeOfDay{Hour: 23, Minute: 59}},
		{input: "0:05", want: TimeOfDay{Hour: 0, Minute: 5}},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "noon", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
