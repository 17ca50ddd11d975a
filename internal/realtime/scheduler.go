// Package realtime keeps non-persistent projections of running timers:
// a ticking elapsed display and break reminders. Nothing here writes to
// the store.
package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs periodic jobs on a cron instance with second precision.
type Scheduler struct {
	cron *cron.Cron

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a stopped scheduler. A job still running when its
// next tick is due skips that tick.
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Every registers job to run each interval, rounded down to whole seconds
// with a one second floor. The returned cancel removes the job; it is safe
// to call more than once.
func (s *Scheduler) Every(interval time.Duration, job func()) (cancel func(), err error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval must be positive")
	}
	seconds := int(interval / time.Second)
	if seconds <= 0 {
		seconds = 1
	}

	id, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", seconds), job)
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() { s.cron.Remove(id) })
	}, nil
}

// Jobs reports how many jobs are registered.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	ctx := s.cron.Stop()
	<-ctx.Done()
}
