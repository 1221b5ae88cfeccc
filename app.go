package despertador

import (
	"context"
	"time"
)

// DefaultSnooze is the snooze duration used when the caller supplies none.
const DefaultSnooze = 5 * time.Minute

// App is the narrow surface the presentation layer talks to. Screens never
// touch alarm records directly; every user intent resolves to one of these
// operations so that no core behavior can be bypassed.
type App struct {
	Store AlarmStore
	Sched *Scheduler

	// Snooze is the default snooze duration, DefaultSnooze if zero.
	Snooze time.Duration
}

// ListAlarms returns all alarms in insertion order.
func (a *App) ListAlarms(ctx context.Context) ([]Alarm, error) {
	return a.Store.List(ctx)
}

// CreateAlarm creates and arms a new alarm.
func (a *App) CreateAlarm(ctx context.Context, fireAt time.Time, label string) (Alarm, error) {
	return a.Sched.ScheduleNew(ctx, fireAt, label)
}

// EditAlarm changes an alarm's fire time and, if label is non-empty, its
// label.
func (a *App) EditAlarm(ctx context.Context, id int64, fireAt time.Time, label string) (Alarm, error) {
	return a.Sched.Reschedule(ctx, id, fireAt, label)
}

// DeleteAlarm cancels and removes an alarm.
func (a *App) DeleteAlarm(ctx context.Context, id int64) error {
	return a.Sched.Cancel(ctx, id)
}

// SnoozeCurrent re-arms the ringing alarm after d, or after the default
// snooze duration when d is zero or negative.
func (a *App) SnoozeCurrent(ctx context.Context, d time.Duration) error {
	id, ok, err := a.Store.Current(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return Errorf(ErrNotFound, "no alarm is ringing")
	}
	if d <= 0 {
		d = a.Snooze
	}
	if d <= 0 {
		d = DefaultSnooze
	}
	return a.Sched.Snooze(ctx, id, d)
}

// DismissCurrent stops the ringing alarm.
func (a *App) DismissCurrent(ctx context.Context) error {
	id, ok, err := a.Store.Current(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return Errorf(ErrNotFound, "no alarm is ringing")
	}
	return a.Sched.Dismiss(ctx, id)
}
