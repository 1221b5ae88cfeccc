package despertador

import (
	"context"
	"time"
)

// WakeService is the platform facility that invokes application code at or
// after a scheduled instant, possibly in a freshly restarted process. It
// holds only (id, fire time) pairs, never alarm records.
type WakeService interface {
	// RegisterOneShot arms a single wake-up for id after delay, replacing
	// any earlier registration for the same id. A non-positive delay is an
	// immediate wake. It reports whether the platform accepted the
	// registration.
	RegisterOneShot(ctx context.Context, id int64, delay time.Duration) bool

	// Cancel removes the registration for id, reporting whether one
	// existed. Cancelling an unknown id is not an error.
	Cancel(ctx context.Context, id int64) bool
}
