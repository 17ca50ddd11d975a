package realtime

import (
	"sync"
	"time"
)

// DefaultBreakInterval is used when no interval is configured.
const DefaultBreakInterval = 30 * time.Minute

// BreakReminder remembers, per active entry, the highest multiple of the
// interval already signalled.
type BreakReminder struct {
	interval time.Duration

	mu         sync.Mutex
	watermarks map[int64]int
}

// NewBreakReminder creates a reminder firing every interval of work.
func NewBreakReminder(interval time.Duration) *BreakReminder {
	if interval <= 0 {
		interval = DefaultBreakInterval
	}
	return &BreakReminder{interval: interval, watermarks: make(map[int64]int)}
}

// Interval returns the reminder threshold.
func (b *BreakReminder) Interval() time.Duration {
	return b.interval
}

// Evaluate returns the multiple of the interval reached at now and whether
// it is newly crossed. A jump over several multiples fires once, for the
// highest.
func (b *BreakReminder) Evaluate(entryID int64, start, now time.Time) (multiple int, fire bool) {
	if now.Before(start) {
		return 0, false
	}
	multiple = int(now.Sub(start) / b.interval)

	b.mu.Lock()
	defer b.mu.Unlock()
	if multiple <= b.watermarks[entryID] {
		return multiple, false
	}
	b.watermarks[entryID] = multiple
	return multiple, true
}

// Reset forgets the watermark of a closed entry.
func (b *BreakReminder) Reset(entryID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.watermarks, entryID)
}

// Watermark returns the highest multiple signalled for the entry.
func (b *BreakReminder) Watermark(entryID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.watermarks[entryID]
}
