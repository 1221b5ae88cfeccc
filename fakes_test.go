package despertador_test

import (
	"context"
	"sync"
	"time"

	"bsid.es/despertador"
)

// fakeWake records registrations instead of sleeping on them.
type fakeWake struct {
	mu      sync.Mutex
	reject  bool
	regs    map[int64]time.Duration
	cancels []int64
}

var _ despertador.WakeService = (*fakeWake)(nil)

func newFakeWake() *fakeWake {
	return &fakeWake{regs: make(map[int64]time.Duration)}
}

func (w *fakeWake) RegisterOneShot(ctx context.Context, id int64, delay time.Duration) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.reject {
		return false
	}
	w.regs[id] = delay
	return true
}

func (w *fakeWake) Cancel(ctx context.Context, id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancels = append(w.cancels, id)
	_, ok := w.regs[id]
	delete(w.regs, id)
	return ok
}

func (w *fakeWake) delay(id int64) (time.Duration, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	d, ok := w.regs[id]
	return d, ok
}

func (w *fakeWake) registered() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.regs)
}

type shownNotification struct {
	id      int64
	title   string
	body    string
	payload string
}

// fakeNotifier records shown notifications.
type fakeNotifier struct {
	mu    sync.Mutex
	shown []shownNotification
}

var _ despertador.Notifier = (*fakeNotifier)(nil)

func (n *fakeNotifier) Show(ctx context.Context, id int64, title, body, payload string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, shownNotification{id, title, body, payload})
	return nil
}

func (n *fakeNotifier) last() (shownNotification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.shown) == 0 {
		return shownNotification{}, false
	}
	return n.shown[len(n.shown)-1], true
}
