package review

import (
	"sync"
	"time"
)

// Debouncer delays a call until its input has been idle for delay, but never
// holds a burst longer than maxWait. Only the most recent call runs.
// The zero value is ready to use.
type Debouncer struct {
	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	first   time.Time
	gen     uint64
}

// Handle cancels the call it was returned for, if that call is still pending
type Handle struct {
	d   *Debouncer
	gen uint64
}

// Schedule runs fn once input has been idle for delay, replacing any pending
// call. The burst that started with the first pending call is flushed after
// maxWait at the latest; maxWait below delay is raised to delay.
func (d *Debouncer) Schedule(fn func(), delay, maxWait time.Duration) *Handle {
	d.mu.Lock()
	defer d.mu.Unlock()

	if maxWait < delay {
		maxWait = delay
	}

	now := time.Now()
	if d.pending == nil {
		d.first = now
	}
	d.pending = fn
	d.gen++

	wait := delay
	if deadline := d.first.Add(maxWait); now.Add(wait).After(deadline) {
		wait = deadline.Sub(now)
		if wait < 0 {
			wait = 0
		}
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(wait, func() { d.fire(gen) })

	return &Handle{d: d, gen: gen}
}

// Pending reports whether a call is waiting to run
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Cancel drops any pending call
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked()
}

// Flush runs the pending call now, on the caller's goroutine
func (d *Debouncer) Flush() {
	d.mu.Lock()
	fn := d.pending
	d.clearLocked()
	d.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Cancel drops the call if it is still the pending one
func (h *Handle) Cancel() {
	h.d.mu.Lock()
	defer h.d.mu.Unlock()
	if h.gen == h.d.gen {
		h.d.clearLocked()
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

func (d *Debouncer) clearLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
	d.gen++
}
