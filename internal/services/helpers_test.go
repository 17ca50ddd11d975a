package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/domain"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/sqlite"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) EntryStarted(entry *domain.TimeEntry) {
	r.record(fmt.Sprintf("started:%d", entry.ID))
}

func (r *recordingObserver) EntryStopped(entry *domain.TimeEntry) {
	r.record(fmt.Sprintf("stopped:%d", entry.ID))
}

func (r *recordingObserver) record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingObserver) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// failingStore injects errors into transactional writes.
type failingStore struct {
	repository.Store
	failCreate   error
	failActivity error
}

func (f *failingStore) WithinTx(ctx context.Context, fn func(tx repository.Tx) error) error {
	return f.Store.WithinTx(ctx, func(tx repository.Tx) error {
		return fn(&failingTx{Tx: tx, store: f})
	})
}

type failingTx struct {
	repository.Tx
	store *failingStore
}

func (f *failingTx) CreateTimeEntry(ctx context.Context, entry *domain.TimeEntry) (repository.InsertResult, error) {
	if f.store.failCreate != nil {
		return repository.InsertResult{}, f.store.failCreate
	}
	return f.Tx.CreateTimeEntry(ctx, entry)
}

func (f *failingTx) AppendActivity(ctx context.Context, taskID int64, text string) error {
	if f.store.failActivity != nil {
		return f.store.failActivity
	}
	return f.Tx.AppendActivity(ctx, taskID, text)
}

var testEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func setupStore(t *testing.T, clock *fakeClock) repository.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tt.db")

	store, err := sqlite.Open(context.Background(), dbPath, sqlite.Options{Clock: clock.Now})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func createTask(t *testing.T, store repository.Store, name string) int64 {
	t.Helper()
	res, err := store.CreateTask(context.Background(), &domain.Task{Name: name})
	require.NoError(t, err)
	return res.ID
}

func createUser(t *testing.T, store repository.Store, id string) {
	t.Helper()
	require.NoError(t, store.CreateUser(context.Background(), &domain.User{ID: id, DisplayName: id}))
}

func countEntries(t *testing.T, store repository.Store, taskID int64) int {
	t.Helper()
	entries, err := store.ListTimeEntries(context.Background(), domain.ListFilter{TaskID: &taskID})
	require.NoError(t, err)
	return len(entries)
}
