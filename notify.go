package despertador

import "context"

// RingPayload is the fixed payload tag the presentation layer's
// notification-tap handler matches on to route to the ringing screen. The
// payload carries a unique delivery token after the tag.
const RingPayload = "despertador/ring"

// Notifier is the platform notification display.
type Notifier interface {
	// Show displays a notification. The id keys the notification in the
	// platform tray; payload is opaque to the platform and handed back to
	// the tap handler.
	Show(ctx context.Context, id int64, title, body, payload string) error
}
