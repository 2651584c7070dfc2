package session

import (
	"sync"
	"time"
)

// Scheduler arms a repeating callback. The session depends only on this
// contract, so hosts decide where ticks come from and tests drive them by
// hand.
type Scheduler interface {
	// ScheduleRepeating invokes fn every interval until the returned
	// handle is canceled. Invocations of fn must be sequential, never
	// overlapping.
	ScheduleRepeating(interval time.Duration, fn func()) Handle
}

// Handle cancels a scheduled callback. Cancel must be safe to call more
// than once and must prevent any invocation that has not already started.
type Handle interface {
	Cancel()
}

// TickerScheduler schedules callbacks on a real time.Ticker, one goroutine
// per armed handle.
type TickerScheduler struct{}

func (TickerScheduler) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	if interval <= 0 {
		interval = time.Millisecond
	}

	h := &tickerHandle{done: make(chan struct{})}
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.done:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return h
}

type tickerHandle struct {
	once sync.Once
	done chan struct{}
}

func (h *tickerHandle) Cancel() {
	h.once.Do(func() { close(h.done) })
}

// ManualScheduler holds the armed callback and fires it only when told to,
// giving tests full control over tick timing.
type ManualScheduler struct {
	mu        sync.Mutex
	fn        func()
	seq       int
	scheduled int
	canceled  int
}

func (m *ManualScheduler) ScheduleRepeating(interval time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.fn = fn
	m.scheduled++
	return &manualHandle{owner: m, seq: m.seq}
}

// Fire runs the currently armed callback once, if any. The callback is
// invoked outside the scheduler's lock so it may re-arm or cancel freely.
func (m *ManualScheduler) Fire() {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Armed reports whether a callback is currently scheduled.
func (m *ManualScheduler) Armed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fn != nil
}

// ScheduleCount returns how many times ScheduleRepeating was called.
func (m *ManualScheduler) ScheduleCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduled
}

// CancelCount returns how many handles were canceled.
func (m *ManualScheduler) CancelCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.canceled
}

type manualHandle struct {
	owner *ManualScheduler
	once  sync.Once
	seq   int
}

func (h *manualHandle) Cancel() {
	h.once.Do(func() {
		h.owner.mu.Lock()
		defer h.owner.mu.Unlock()
		h.owner.canceled++
		// Only disarm if this handle is still the armed one; a newer
		// schedule must survive a stale cancel.
		if h.owner.seq == h.seq {
			h.owner.fn = nil
		}
	})
}
