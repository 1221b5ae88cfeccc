package despertador

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultEpsilon absorbs wake-service jitter when matching due alarms.
const DefaultEpsilon = 1 * time.Second

// FallbackLabel is shown when a wake arrives but no due alarm can be found.
const FallbackLabel = "Alarm"

// FireHandler runs when the platform wakes the process for a due alarm. The
// wake context shares nothing in memory with the foreground, so the handler
// is stateless: everything it needs comes from the durable store it opens on
// every invocation.
type FireHandler struct {
	// OpenStore returns the alarm store, (re)initializing whatever the
	// process needs to reach it. It is called on every wake and must be
	// idempotent.
	OpenStore func(ctx context.Context) (AlarmStore, error)

	Notify Notifier

	// Now is the time source, time.Now if nil.
	Now func() time.Time

	// Epsilon is the due-time tolerance, DefaultEpsilon if zero.
	Epsilon time.Duration

	// Log receives diagnostics, slog.Default if nil.
	Log *slog.Logger
}

func (h *FireHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *FireHandler) epsilon() time.Duration {
	if h.Epsilon > 0 {
		return h.Epsilon
	}
	return DefaultEpsilon
}

func (h *FireHandler) log() *slog.Logger {
	if h.Log != nil {
		return h.Log
	}
	return slog.Default()
}

// HandleWake processes one wake-up. It finds the first due active alarm in
// insertion order, marks it fired, records it as the ringing alarm, and shows
// its notification. When no due alarm exists (cancelled in flight, clock
// drift, spurious wake) it degrades to a generic notification instead of
// failing: a background wake must never crash.
func (h *FireHandler) HandleWake(ctx context.Context) error {
	store, err := h.OpenStore(ctx)
	if err != nil {
		return err
	}

	now := h.now()
	due, err := store.DueBefore(ctx, now.Add(h.epsilon()))
	if err != nil {
		return err
	}

	for _, id := range due {
		alarm, err := store.Update(ctx, id, func(a *Alarm) error {
			a.Active = false
			return nil
		})
		if err != nil {
			if ErrorCode(err) == ErrNotFound {
				// Lost the race against a cancel. Try the next one.
				continue
			}
			return err
		}
		if err := store.SetCurrent(ctx, id); err != nil {
			return err
		}
		return h.show(ctx, id, alarm.Label)
	}

	h.log().Warn("wake without a due alarm", "at", now)
	return h.show(ctx, 0, FallbackLabel)
}

func (h *FireHandler) show(ctx context.Context, id int64, label string) error {
	// The token after the tag lets the tap handler ignore repeated taps on
	// the same delivery.
	payload := RingPayload + " " + uuid.NewString()
	if err := h.Notify.Show(ctx, id, label, "Wake up! Your alarm is ringing.", payload); err != nil {
		return Errorf(ErrInternal, "show notification for alarm %d: %v", id, err)
	}
	return nil
}
