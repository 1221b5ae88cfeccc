package despertador

import (
	"context"
	"time"
)

// Scheduler owns the single-active-alarm bookkeeping between the store and
// the platform wake service: every active record has exactly one wake
// registration keyed by its id, with the registered time synchronized with
// the stored FireAt.
type Scheduler struct {
	Store AlarmStore
	Wake  WakeService

	// Now is the time source, time.Now if nil.
	Now func() time.Time
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// ScheduleNew creates and arms a new alarm. A fire time in the past is rolled
// over to the next day (see NextFireTime). The record is persisted first and
// then registered with the wake service; if the registration is rejected the
// record is deleted again and a scheduling_failed error is returned, so a
// persisted alarm never exists without a registration.
func (s *Scheduler) ScheduleNew(ctx context.Context, fireAt time.Time, label string) (Alarm, error) {
	if fireAt.IsZero() {
		return Alarm{}, Errorf(ErrInvalid, "fire time must be set")
	}
	now := s.now()
	fireAt = NextFireTime(now, fireAt)

	alarm, err := s.Store.Create(ctx, fireAt, label)
	if err != nil {
		return Alarm{}, err
	}
	if !s.Wake.RegisterOneShot(ctx, alarm.ID, fireAt.Sub(now)) {
		// Compensating delete; best effort.
		_ = s.Store.Delete(ctx, alarm.ID)
		return Alarm{}, Errorf(ErrSchedulingFailed, "wake service rejected alarm %d", alarm.ID)
	}
	return alarm, nil
}

// Reschedule moves an existing alarm to a new fire time, keeping its id. An
// empty label keeps the stored one. If the new registration is rejected the
// previous record is restored and re-armed, and a scheduling_failed error is
// returned.
func (s *Scheduler) Reschedule(ctx context.Context, id int64, fireAt time.Time, label string) (Alarm, error) {
	if fireAt.IsZero() {
		return Alarm{}, Errorf(ErrInvalid, "fire time must be set")
	}
	prev, err := s.Store.Get(ctx, id)
	if err != nil {
		return Alarm{}, err
	}

	s.Wake.Cancel(ctx, id)

	now := s.now()
	fireAt = NextFireTime(now, fireAt)
	alarm, err := s.Store.Update(ctx, id, func(a *Alarm) error {
		a.FireAt = fireAt
		if label != "" {
			a.Label = label
		}
		a.Active = true
		return nil
	})
	if err != nil {
		return Alarm{}, err
	}
	if !s.Wake.RegisterOneShot(ctx, id, fireAt.Sub(now)) {
		_, _ = s.Store.Update(ctx, id, func(a *Alarm) error {
			*a = prev
			return nil
		})
		if prev.Active {
			s.Wake.RegisterOneShot(ctx, id, prev.FireAt.Sub(now))
		}
		return Alarm{}, Errorf(ErrSchedulingFailed, "wake service rejected alarm %d", id)
	}
	return alarm, nil
}

// Cancel deregisters and deletes an alarm. The wake-service side is
// idempotent: an already fired or never registered id is not an error.
// A second Cancel for the same id returns not_found and changes nothing.
func (s *Scheduler) Cancel(ctx context.Context, id int64) error {
	s.Wake.Cancel(ctx, id)
	if cur, ok, err := s.Store.Current(ctx); err == nil && ok && cur == id {
		if err := s.Store.ClearCurrent(ctx); err != nil {
			return err
		}
	}
	return s.Store.Delete(ctx, id)
}

// Snooze re-arms a ringing alarm after d, reusing its id. The stored FireAt
// and label are untouched; the record is only marked pending again. A
// rejected registration is reported as scheduling_failed with the record
// restored, never silently dropped.
func (s *Scheduler) Snooze(ctx context.Context, id int64, d time.Duration) error {
	if d <= 0 {
		return Errorf(ErrInvalid, "snooze duration must be positive")
	}
	prev, err := s.Store.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.Store.Update(ctx, id, func(a *Alarm) error {
		a.Active = true
		return nil
	}); err != nil {
		return err
	}
	if !s.Wake.RegisterOneShot(ctx, id, d) {
		_, _ = s.Store.Update(ctx, id, func(a *Alarm) error {
			a.Active = prev.Active
			return nil
		})
		return Errorf(ErrSchedulingFailed, "wake service rejected snooze for alarm %d", id)
	}
	if cur, ok, err := s.Store.Current(ctx); err == nil && ok && cur == id {
		if err := s.Store.ClearCurrent(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Dismiss stops a ringing alarm: the record goes inactive, its registration
// (if any is left) is cancelled, and the ringing id is cleared. A record that
// vanished in the meantime is treated as already dismissed.
func (s *Scheduler) Dismiss(ctx context.Context, id int64) error {
	s.Wake.Cancel(ctx, id)
	if _, err := s.Store.Update(ctx, id, func(a *Alarm) error {
		a.Active = false
		return nil
	}); err != nil && ErrorCode(err) != ErrNotFound {
		return err
	}
	if cur, ok, err := s.Store.Current(ctx); err != nil {
		return err
	} else if ok && cur == id {
		return s.Store.ClearCurrent(ctx)
	}
	return nil
}

// Reconcile re-registers every active alarm with the wake service. It is run
// at process start, when registrations held by an in-process wake service are
// gone. Alarms whose fire time passed while the process was down get a
// non-positive delay, which the wake service treats as an immediate wake.
func (s *Scheduler) Reconcile(ctx context.Context) error {
	alarms, err := s.Store.List(ctx)
	if err != nil {
		return err
	}
	now := s.now()
	rejected := 0
	for _, alarm := range alarms {
		if !alarm.Active {
			continue
		}
		if !s.Wake.RegisterOneShot(ctx, alarm.ID, alarm.FireAt.Sub(now)) {
			rejected++
		}
	}
	if rejected > 0 {
		return Errorf(ErrSchedulingFailed, "wake service rejected %d of %d alarms", rejected, len(alarms))
	}
	return nil
}
