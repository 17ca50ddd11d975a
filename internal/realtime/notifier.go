package realtime

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Reminder is one break notification.
type Reminder struct {
	EntryID  int64
	TaskID   int64
	UserID   string
	Multiple int
	Elapsed  time.Duration
}

// Message renders the reminder for people.
func (r Reminder) Message() string {
	return fmt.Sprintf("You have been working on task %d for %s. Time for a break?", r.TaskID, FormatElapsed(r.Elapsed))
}

// Notifier delivers break reminders. Called from tick callbacks, so
// implementations must return quickly.
type Notifier interface {
	NotifyBreak(reminder Reminder)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Reminder)

// NotifyBreak implements Notifier.
func (f NotifierFunc) NotifyBreak(r Reminder) { f(r) }

// LogNotifier writes reminders to a structured logger.
type LogNotifier struct {
	Logger *slog.Logger
}

// NotifyBreak implements Notifier.
func (n LogNotifier) NotifyBreak(r Reminder) {
	n.Logger.Info("break reminder",
		slog.Int64("entry_id", r.EntryID),
		slog.Int64("task_id", r.TaskID),
		slog.String("user_id", r.UserID),
		slog.Int("multiple", r.Multiple),
		slog.Duration("elapsed", r.Elapsed))
}

// WriterNotifier prints reminders as lines of text.
type WriterNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterNotifier creates a notifier printing to w.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{w: w}
}

// NotifyBreak implements Notifier.
func (n *WriterNotifier) NotifyBreak(r Reminder) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "\nBreak reminder: %s\n", r.Message())
}

// FormatElapsed renders a duration as "1h 05m 09s" or "5m 09s".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	hours := int(d / time.Hour)
	minutes := int(d % time.Hour / time.Minute)
	seconds := int(d % time.Minute / time.Second)
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm %02ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}
