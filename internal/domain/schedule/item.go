package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Harishhackz/seeing-helper/internal/domain/shared"
)

// DefaultLeadMinutes is how many minutes before the scheduled time the
// advance notice fires when the user did not ask for a specific lead.
const DefaultLeadMinutes = 10

// ItemID represents a unique schedule item identifier
type ItemID shared.ID

// NewItemID creates a new item ID
func NewItemID() ItemID {
	return ItemID(shared.NewID())
}

// String returns string representation
func (id ItemID) String() string {
	return string(id)
}

// TimeOfDay is a minute-resolution wall-clock time without a date component.
// A schedule item recurs daily at this time.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" in local 24-hour form
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, shared.ErrInvalidInput("time must be in HH:MM form")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, shared.ErrInvalidInput("time must be in HH:MM form")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, shared.ErrInvalidInput("time must be in HH:MM form")
	}
	return NewTimeOfDay(hour, minute)
}

// NewTimeOfDay creates a validated time of day
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, shared.ErrInvalidInput(fmt.Sprintf("invalid time of day %d:%d", hour, minute))
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// String formats the time as zero-padded HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MarshalJSON encodes the time as "HH:MM"
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON decodes "HH:MM"
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Item represents a daily-recurring schedule entry owned by one user session.
//
// AdvanceGiven and ExactGiven are one-way flags: each transitions false->true
// at most once and the engine never resets them. A recurring item therefore
// only ever fires once per process lifetime; that matches the behavior this
// engine replaces and is preserved deliberately rather than silently changed.
type Item struct {
	ID           ItemID           `json:"id"`
	UserID       string           `json:"user_id"`
	Title        string           `json:"title"`
	Time         TimeOfDay        `json:"time"`
	Description  string           `json:"description,omitempty"`
	LeadMinutes  int              `json:"lead_minutes"`
	AdvanceGiven bool             `json:"advance_given"`
	ExactGiven   bool             `json:"exact_given"`
	CreatedAt    shared.Timestamp `json:"created_at"`
}

// NewItem creates a new schedule item
func NewItem(userID, title string, at TimeOfDay, description string, leadMinutes int) (*Item, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.ErrInvalidInput("title cannot be empty")
	}
	if leadMinutes < 0 {
		return nil, shared.ErrInvalidInput("lead minutes cannot be negative")
	}
	return &Item{
		ID:          NewItemID(),
		UserID:      userID,
		Title:       title,
		Time:        at,
		Description: description,
		LeadMinutes: leadMinutes,
		CreatedAt:   shared.NewTimestamp(),
	}, nil
}

// GiveAdvanceNotice marks the advance notice as delivered. One-way transition.
func (i *Item) GiveAdvanceNotice() {
	i.AdvanceGiven = true
}

// GiveExactNotice marks the exact-time notice as delivered. One-way transition.
func (i *Item) GiveExactNotice() {
	i.ExactGiven = true
}

// Clone returns a copy of the item
func (i *Item) Clone() *Item {
	c := *i
	return &c
}
