package realtime

import (
	"log/slog"
	"sync"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/logging"
	"task-tracker/internal/services"
)

// HubOptions configures a Hub.
type HubOptions struct {
	TickInterval  time.Duration
	BreakInterval time.Duration
	Clock         func() time.Time
	Notifier      Notifier
	// Render is called with every tick of every view. Optional.
	Render TickFunc
	Logger *slog.Logger
}

// Hub keeps one ElapsedView per running entry, opened and closed by timer
// events, and feeds every tick through the BreakReminder.
type Hub struct {
	scheduler *Scheduler
	reminder  *BreakReminder
	opts      HubOptions

	mu     sync.Mutex
	views  map[int64]*ElapsedView
	closed bool
}

// NewHub creates a hub scheduling its views on scheduler.
func NewHub(scheduler *Scheduler, opts HubOptions) *Hub {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{Logger: opts.Logger}
	}
	return &Hub{
		scheduler: scheduler,
		reminder:  NewBreakReminder(opts.BreakInterval),
		opts:      opts,
		views:     make(map[int64]*ElapsedView),
	}
}

// EntryStarted implements services.TimerObserver.
func (h *Hub) EntryStarted(entry *domain.TimeEntry) {
	if err := h.Watch(*entry); err != nil {
		h.opts.Logger.Error("watch entry failed", slog.Int64("entry_id", entry.ID), slog.Any("error", err))
	}
}

// EntryStopped implements services.TimerObserver.
func (h *Hub) EntryStopped(entry *domain.TimeEntry) {
	h.Unwatch(entry.ID)
}

// Watch opens a view for an active entry. Watching a closed entry or one
// already watched does nothing.
func (h *Hub) Watch(entry domain.TimeEntry) error {
	if !entry.IsActive() {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	if _, ok := h.views[entry.ID]; ok {
		return nil
	}

	view := NewElapsedView(entry, h.opts.Clock, h.onTick)
	if err := view.Attach(h.scheduler, h.opts.TickInterval); err != nil {
		return err
	}
	h.views[entry.ID] = view
	h.opts.Logger.Debug("watching entry", slog.Int64("entry_id", entry.ID), slog.Int64("task_id", entry.TaskID))
	return nil
}

// Unwatch closes the view of an entry and resets its break watermark.
func (h *Hub) Unwatch(entryID int64) {
	h.mu.Lock()
	view, ok := h.views[entryID]
	delete(h.views, entryID)
	h.mu.Unlock()

	if ok {
		view.Close()
	}
	h.reminder.Reset(entryID)
}

// Watching reports how many entries have an open view.
func (h *Hub) Watching() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.views)
}

// Close tears down every view. Later events are ignored.
func (h *Hub) Close() {
	h.mu.Lock()
	views := h.views
	h.views = make(map[int64]*ElapsedView)
	h.closed = true
	h.mu.Unlock()

	for id, view := range views {
		view.Close()
		h.reminder.Reset(id)
	}
}

func (h *Hub) onTick(entry domain.TimeEntry, elapsed time.Duration, now time.Time) {
	if h.opts.Render != nil {
		h.opts.Render(entry, elapsed, now)
	}

	multiple, fire := h.reminder.Evaluate(entry.ID, entry.StartTime, now)
	if !fire {
		return
	}
	h.opts.Notifier.NotifyBreak(Reminder{
		EntryID:  entry.ID,
		TaskID:   entry.TaskID,
		UserID:   entry.UserID,
		Multiple: multiple,
		Elapsed:  elapsed,
	})
}

var _ services.TimerObserver = (*Hub)(nil)
