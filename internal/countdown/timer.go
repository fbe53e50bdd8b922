// Package countdown implements a cancellable countdown timer: a tick every
// interval carrying the time left, then a single finish.
package countdown

import (
	"sync"
	"time"
)

// Timer counts down from a fixed total.
//
// Start delivers the first tick immediately with the full remaining time,
// then one tick per interval, then exactly one finish once the deadline has
// passed. Callbacks go through the dispatcher, if any, so the owner can run
// them on its own goroutine. Cancel is final: a callback that was dispatched
// but has not run yet is dropped when it runs after Cancel.
type Timer struct {
	clock    Clock
	total    time.Duration
	interval time.Duration
	onTick   func(remaining time.Duration)
	onFinish func()
	dispatch func(func())

	mu       sync.Mutex
	deadline time.Time
	pending  Stopper
	started  bool
	canceled bool
	done     bool
}

// Option customizes a Timer.
type Option func(*Timer)

// WithClock replaces SystemClock.
func WithClock(c Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithDispatcher routes every callback through dispatch instead of calling
// it on the clock's goroutine.
func WithDispatcher(dispatch func(func())) Option {
	return func(t *Timer) { t.dispatch = dispatch }
}

// New creates a stopped timer. A non-positive interval defaults to one second.
func New(total, interval time.Duration, onTick func(time.Duration), onFinish func(), opts ...Option) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	t := &Timer{
		clock:    SystemClock,
		total:    total,
		interval: interval,
		onTick:   onTick,
		onFinish: onFinish,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start arms the timer. Calling it again, or after Cancel, does nothing.
// The first tick is scheduled rather than run inline, so Start is safe to
// call from the dispatcher's own goroutine.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started || t.canceled {
		return
	}
	t.started = true
	t.deadline = t.clock.Now().Add(t.total)
	t.pending = t.clock.AfterFunc(0, t.fire)
}

// Cancel stops the timer. It is idempotent.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return
	}
	t.canceled = true
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
}

// Canceled reports whether Cancel has been called.
func (t *Timer) Canceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// Finished reports whether the finish callback has been dispatched.
func (t *Timer) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *Timer) fire() {
	t.mu.Lock()
	if t.canceled || t.done {
		t.mu.Unlock()
		return
	}
	left := t.deadline.Sub(t.clock.Now()).Round(time.Millisecond)
	if left <= 0 {
		t.done = true
		t.pending = nil
		t.mu.Unlock()
		t.deliver(func() {
			if t.onFinish != nil {
				t.onFinish()
			}
		})
		return
	}
	t.mu.Unlock()

	t.deliver(func() {
		if t.onTick != nil {
			t.onTick(left)
		}
	})

	delay := t.interval
	if left < delay {
		delay = left
	}
	t.mu.Lock()
	if !t.canceled {
		t.pending = t.clock.AfterFunc(delay, t.fire)
	}
	t.mu.Unlock()
}

func (t *Timer) deliver(f func()) {
	run := func() {
		if t.Canceled() {
			return
		}
		f()
	}
	if t.dispatch != nil {
		t.dispatch(run)
		return
	}
	run()
}
