package mem

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"bsid.es/despertador"
)

var _ despertador.WakeService = (*WakeService)(nil)

// WakeService is an in-process stand-in for the platform's exact-alarm
// facility. It keeps one pending wake per id in a time-ordered queue and
// invokes the registered handler when the front of the queue comes due. All
// registrations die with the process; the daemon compensates by reconciling
// from the store at boot.
type WakeService struct {
	Now func() time.Time

	ops chan wakeOp

	mu      sync.Mutex
	handler func(ctx context.Context, id int64)

	cancel context.CancelFunc
}

type wakeOp struct {
	cancel bool
	id     int64
	at     time.Time
	reply  chan bool
}

func NewWakeService() *WakeService {
	return &WakeService{
		Now:    time.Now,
		ops:    make(chan wakeOp),
		cancel: func() {},
	}
}

// RegisterFunc installs the wake handler. Each wake is delivered on its own
// goroutine, mirroring the platform's isolated background invocation.
func (w *WakeService) RegisterFunc(fn func(ctx context.Context, id int64)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = fn
}

func (w *WakeService) Run(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
	return nil
}

func (w *WakeService) Interrupt() error {
	w.cancel()
	return nil
}

func (w *WakeService) RegisterOneShot(ctx context.Context, id int64, delay time.Duration) bool {
	return w.send(ctx, wakeOp{
		id:    id,
		at:    w.Now().Add(delay),
		reply: make(chan bool, 1),
	})
}

func (w *WakeService) Cancel(ctx context.Context, id int64) bool {
	return w.send(ctx, wakeOp{
		cancel: true,
		id:     id,
		reply:  make(chan bool, 1),
	})
}

func (w *WakeService) send(ctx context.Context, op wakeOp) bool {
	select {
	case w.ops <- op:
	case <-ctx.Done():
		return false
	}
	select {
	case ok := <-op.reply:
		return ok
	case <-ctx.Done():
		return false
	}
}

func (w *WakeService) run(ctx context.Context) {
	var q wakeQueue

	timer := time.NewTimer(1<<63 - 1)
	timer.Stop()

	rearm := func() {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if len(q) > 0 {
			timer.Reset(q[0].at.Sub(w.Now()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case op := <-w.ops:
			found := q.remove(op.id)
			if op.cancel {
				op.reply <- found
			} else {
				heap.Push(&q, wakeEntry{at: op.at, id: op.id})
				op.reply <- true
			}
			rearm()

		case <-timer.C:
			if len(q) == 0 {
				continue
			}
			now := w.Now()
			at := q[0].at
			if now.Before(at) {
				// Time drift. Sleep again.
				timer.Reset(at.Sub(now))
				continue
			}
			fired := heap.Pop(&q).(wakeEntry)
			w.deliver(ctx, fired.id)
			rearm()
		}
	}
}

func (w *WakeService) deliver(ctx context.Context, id int64) {
	w.mu.Lock()
	fn := w.handler
	w.mu.Unlock()
	if fn == nil {
		return
	}
	go fn(ctx, id)
}

type wakeEntry struct {
	at time.Time
	id int64
}

type wakeQueue []wakeEntry

var _ heap.Interface = (*wakeQueue)(nil)

func (q wakeQueue) Len() int {
	return len(q)
}

func (q wakeQueue) Less(i, j int) bool {
	ti, tj := q[i].at, q[j].at
	return ti.Before(tj)
}

func (q wakeQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *wakeQueue) Push(x any) {
	*q = append(*q, x.(wakeEntry))
}

func (q *wakeQueue) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = wakeEntry{}
	*q = old[:n-1]
	return it
}

// remove drops the entry for id, keeping one registration per id.
func (q *wakeQueue) remove(id int64) bool {
	for i := range *q {
		if (*q)[i].id == id {
			heap.Remove(q, i)
			return true
		}
	}
	return false
}
