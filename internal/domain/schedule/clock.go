package schedule

import (
	"fmt"
	"time"
)

// NoticeKind distinguishes the two reminder lifecycle events
type NoticeKind string

const (
	// AdvanceNotice fires LeadMinutes before the scheduled time
	AdvanceNotice NoticeKind = "advance"
	// ExactNotice fires at (or just after) the scheduled time
	ExactNotice NoticeKind = "exact"
)

// exactToleranceMinutes is how far past the scheduled time an exact notice
// may still fire. The poll interval can make deltaMinutes skip from 1 to -1
// without ever being 0, so anything newer than -2 minutes still counts.
const exactToleranceMinutes = -2

// Notice is a reminder event produced by a clock tick
type Notice struct {
	Item         *Item      `json:"item"`
	Kind         NoticeKind `json:"kind"`
	DeltaMinutes int        `json:"delta_minutes"`
}

// Utterance renders the spoken form of the notice
func (n Notice) Utterance() string {
	switch n.Kind {
	case AdvanceNotice:
		return fmt.Sprintf("%s is coming up in %d minutes", n.Item.Title, n.DeltaMinutes)
	default:
		return fmt.Sprintf("It's time for %s", n.Item.Title)
	}
}

// TickResult holds everything one clock tick produced
type TickResult struct {
	Fired   []Notice
	Updated []*Item
}

// Tick evaluates every item against a single now snapshot and fires at most
// two lifecycle notices per item, each exactly once for the life of the item.
//
// Items whose flags do not transition are neither returned nor mutated;
// Updated carries only the items that changed, for the owner to re-render.
func Tick(now time.Time, items []*Item) TickResult {
	var result TickResult

	for _, item := range items {
		delta := deltaMinutes(now, item.Time)

		changed := false
		if !item.AdvanceGiven && delta > 0 && delta <= item.LeadMinutes {
			item.GiveAdvanceNotice()
			result.Fired = append(result.Fired, Notice{Item: item, Kind: AdvanceNotice, DeltaMinutes: delta})
			changed = true
		}
		if !item.ExactGiven && delta > exactToleranceMinutes && delta <= 0 {
			item.GiveExactNotice()
			result.Fired = append(result.Fired, Notice{Item: item, Kind: ExactNotice, DeltaMinutes: delta})
			changed = true
		}
		if changed {
			result.Updated = append(result.Updated, item)
		}
	}

	return result
}

// deltaMinutes returns floor((today@t - now) / 1m), seconds zeroed on the
// scheduled side so the comparison is at minute precision.
func deltaMinutes(now time.Time, t TimeOfDay) int {
	scheduled := time.Date(now.Year(), now.Month(), now.Day(), t.Hour, t.Minute, 0, 0, now.Location())
	d := scheduled.Sub(now)
	m := d / time.Minute
	if d%time.Minute != 0 && d < 0 {
		m-- // floor, not truncation toward zero
	}
	return int(m)
}
