package mem

import (
	"context"
	"sync"
	"time"

	"bsid.es/despertador"
)

var _ despertador.AlarmStore = (*Store)(nil)

// Store is an in-memory AlarmStore. It keeps the durable store's semantics
// (monotonic ids, insertion order, atomic updates) without the durability;
// Reopen simulates a process restart over the same data.
type Store struct {
	mu      sync.Mutex
	alarms  map[int64]despertador.Alarm
	order   []int64
	nextID  int64
	current int64 // 0 means no ringing alarm
}

func NewStore() *Store {
	return &Store{
		alarms: make(map[int64]despertador.Alarm),
	}
}

// Reopen returns a deep copy of the store, counter included, as a fresh
// process would see the durable data.
func (s *Store) Reopen() *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := &Store{
		alarms:  make(map[int64]despertador.Alarm, len(s.alarms)),
		order:   append([]int64(nil), s.order...),
		nextID:  s.nextID,
		current: s.current,
	}
	for id, alarm := range s.alarms {
		clone.alarms[id] = alarm
	}
	return clone
}

func (s *Store) Create(ctx context.Context, fireAt time.Time, label string) (despertador.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	if label == "" {
		label = despertador.DefaultLabel(id)
	}
	alarm := despertador.Alarm{
		ID:     id,
		FireAt: fireAt,
		Label:  label,
		Active: true,
	}
	s.alarms[id] = alarm
	s.order = append(s.order, id)
	return alarm, nil
}

func (s *Store) Get(ctx context.Context, id int64) (despertador.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alarm, ok := s.alarms[id]
	if !ok {
		return despertador.Alarm{}, despertador.Errorf(despertador.ErrNotFound, "alarm %d", id)
	}
	return alarm, nil
}

func (s *Store) Update(ctx context.Context, id int64, mutate func(*despertador.Alarm) error) (despertador.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alarm, ok := s.alarms[id]
	if !ok {
		return despertador.Alarm{}, despertador.Errorf(despertador.ErrNotFound, "alarm %d", id)
	}
	if err := mutate(&alarm); err != nil {
		return despertador.Alarm{}, err
	}
	alarm.ID = id
	s.alarms[id] = alarm
	return alarm, nil
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.alarms[id]; !ok {
		return despertador.Errorf(despertador.ErrNotFound, "alarm %d", id)
	}
	delete(s.alarms, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]despertador.Alarm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alarms := make([]despertador.Alarm, 0, len(s.order))
	for _, id := range s.order {
		alarms = append(alarms, s.alarms[id])
	}
	return alarms, nil
}

func (s *Store) DueBefore(ctx context.Context, at time.Time) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []int64
	for _, id := range s.order {
		alarm := s.alarms[id]
		if alarm.Active && !alarm.FireAt.After(at) {
			due = append(due, id)
		}
	}
	return due, nil
}

func (s *Store) Current(ctx context.Context) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.current != 0, nil
}

func (s *Store) SetCurrent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = id
	return nil
}

func (s *Store) ClearCurrent(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = 0
	return nil
}
