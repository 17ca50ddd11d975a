package realtime

import (
	"sync"
	"time"

	"task-tracker/internal/domain"
)

// TickFunc receives the running entry and its elapsed time on each tick.
// It runs on the scheduler goroutine and must not do network I/O.
type TickFunc func(entry domain.TimeEntry, elapsed time.Duration, now time.Time)

// ElapsedView recomputes the elapsed time of one active entry on a fixed
// tick. Once closed it never calls its TickFunc again.
type ElapsedView struct {
	entry  domain.TimeEntry
	clock  func() time.Time
	onTick TickFunc

	mu      sync.Mutex
	cancel  func()
	closed  bool
	elapsed time.Duration
}

// NewElapsedView creates a view for entry. It does nothing until Attach
// or Tick is called.
func NewElapsedView(entry domain.TimeEntry, clock func() time.Time, onTick TickFunc) *ElapsedView {
	if clock == nil {
		clock = time.Now
	}
	return &ElapsedView{entry: entry, clock: clock, onTick: onTick}
}

// Attach schedules Tick every interval.
func (v *ElapsedView) Attach(scheduler *Scheduler, interval time.Duration) error {
	cancel, err := scheduler.Every(interval, v.Tick)
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		cancel()
		return nil
	}
	v.cancel = cancel
	return nil
}

// Tick recomputes the elapsed time. The callback runs with the view locked,
// so it must not call Close on its own view.
func (v *ElapsedView) Tick() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	now := v.clock()
	v.elapsed = v.entry.Elapsed(now)
	if v.onTick != nil {
		v.onTick(v.entry, v.elapsed, now)
	}
}

// Elapsed returns the value computed by the last tick.
func (v *ElapsedView) Elapsed() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.elapsed
}

// Entry returns the entry the view follows.
func (v *ElapsedView) Entry() domain.TimeEntry {
	return v.entry
}

// Close cancels the scheduled tick. Calling it again is a no-op.
func (v *ElapsedView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Closed reports whether Close has been called.
func (v *ElapsedView) Closed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.closed
}
