package services

import (
	"sync"
	"time"
)

// Timer is the subset of *time.Timer the queue needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Tests swap it for a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SyncQueue coalesces writes: only the most recently scheduled write runs,
// once the queue has been quiet for the configured delay.
type SyncQueue struct {
	mu      sync.Mutex
	writeMu sync.Mutex
	delay   time.Duration
	after   AfterFunc
	timer   Timer
	pending func() error
	onErr   func(error)
	stopped bool
}

func NewSyncQueue(delay time.Duration, onErr func(error)) *SyncQueue {
	return &SyncQueue{delay: delay, after: realAfterFunc, onErr: onErr}
}

// SetAfterFunc replaces the timer factory; call before the first Schedule.
func (q *SyncQueue) SetAfterFunc(f AfterFunc) {
	q.mu.Lock()
	q.after = f
	q.mu.Unlock()
}

// Schedule replaces any pending write with w and restarts the quiet period.
func (q *SyncQueue) Schedule(w func() error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.stopped {
		return
	}
	q.pending = w
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = q.after(q.delay, q.fire)
}

func (q *SyncQueue) take() func() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	w := q.pending
	q.pending = nil
	return w
}

// drain runs the pending write, if any. writeMu is held before the write is
// taken, so a caller also waits out a write already in flight and writes
// land in the order they were scheduled.
func (q *SyncQueue) drain() error {
	q.writeMu.Lock()
	defer q.writeMu.Unlock()
	w := q.take()
	if w == nil {
		return nil
	}
	return w()
}

func (q *SyncQueue) fire() {
	if err := q.drain(); err != nil && q.onErr != nil {
		q.onErr(err)
	}
}

// Pending reports whether a write is waiting for its timer.
func (q *SyncQueue) Pending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending != nil
}

// Flush runs the pending write now, if any, and returns its error. It
// returns only after any in-flight write has finished.
func (q *SyncQueue) Flush() error {
	return q.drain()
}

// Stop drops any pending write and rejects later schedules.
func (q *SyncQueue) Stop() {
	q.take()
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
}
