package despertador

import (
	"fmt"
	"time"
)

// Alarm is a user-created alarm as persisted by an AlarmStore.
type Alarm struct {
	// ID is assigned by the store, is unique for the lifetime of the
	// database, and doubles as the wake-service registration key.
	ID int64 `json:"id"`

	// FireAt is the absolute instant the alarm should ring next.
	FireAt time.Time `json:"fire_at"`

	Label string `json:"label"`

	// Active is true while the alarm is armed with the wake service.
	Active bool `json:"active"`
}

// DefaultLabel is the label given to alarms created without one.
func DefaultLabel(id int64) string {
	return fmt.Sprintf("Alarm %d", id)
}

// NextFireTime resolves a requested fire time against now. A time already in
// the past is read as "tomorrow at that time": 24 hours are added exactly
// once, never in a loop, so a time 30 hours in the past still gets a single
// day added.
func NextFireTime(now, at time.Time) time.Time {
	if at.After(now) {
		return at
	}
	return at.Add(24 * time.Hour)
}
