package despertador

import (
	"context"
	"time"
)

// AlarmStore is the durable, authoritative collection of alarm records. It is
// the only state shared between the interactive foreground context and the
// background wake context, so every mutation must be durable before the call
// returns.
type AlarmStore interface {
	// Create allocates a fresh id strictly greater than any id allocated
	// before, even across restarts, and stores the record with Active set.
	// An empty label is replaced with DefaultLabel(id).
	Create(ctx context.Context, fireAt time.Time, label string) (Alarm, error)

	// Get returns the record for id, or a not_found error.
	Get(ctx context.Context, id int64) (Alarm, error)

	// Update applies mutate to the record for id as a single atomic
	// read-modify-write and returns the updated record. If the record
	// vanished, mutate is not called and a not_found error is returned;
	// this arbitration is what makes cancel safe to race with fire
	// handling on the same id.
	Update(ctx context.Context, id int64, mutate func(*Alarm) error) (Alarm, error)

	// Delete removes the record for id, or returns a not_found error.
	Delete(ctx context.Context, id int64) error

	// List returns all records in insertion order. Ids are monotonic, so
	// insertion order is ascending id, stable across restarts.
	List(ctx context.Context) ([]Alarm, error)

	// DueBefore returns the ids of active alarms with FireAt at or before
	// the given instant, in insertion order.
	DueBefore(ctx context.Context, at time.Time) ([]int64, error)

	// Current returns the currently ringing alarm id, if any.
	Current(ctx context.Context) (int64, bool, error)

	// SetCurrent marks id as the currently ringing alarm.
	SetCurrent(ctx context.Context, id int64) error

	// ClearCurrent clears the currently ringing alarm.
	ClearCurrent(ctx context.Context) error
}
