package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"task-tracker/internal/api"
	"task-tracker/internal/config"
	"task-tracker/internal/repository/sqlite"
	"task-tracker/internal/services"
)

var testEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// syncBuffer is written from scheduler goroutines by the watch command.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

type testEnv struct {
	t     *testing.T
	clock *testClock
	out   *syncBuffer
	path  string
}

// setupTestEnv swaps timeNow for a controllable clock and points every
// runtime at one temp-file database.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := &testClock{now: testEpoch}
	original := timeNow
	timeNow = clock.Now
	t.Cleanup(func() { timeNow = original })

	return &testEnv{
		t:     t,
		clock: clock,
		out:   &syncBuffer{},
		path:  filepath.Join(t.TempDir(), "tt.db"),
	}
}

func (e *testEnv) bootstrap(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	store, err := sqlite.Open(ctx, e.path, sqlite.Options{Clock: e.clock.Now})
	if err != nil {
		return nil, err
	}
	policy, err := services.ParsePolicy(cfg.Tracking.Policy)
	if err != nil {
		store.Close()
		return nil, err
	}
	svc := services.NewContainer(store, services.Options{Policy: policy, Clock: e.clock.Now})
	return &Runtime{
		API:      api.New(store, svc, e.clock.Now),
		Services: svc,
		Close:    store.Close,
	}, nil
}

// run executes one command line against a fresh root, like a separate
// process invocation would.
func (e *testEnv) run(args ...string) error {
	e.t.Helper()
	root := NewRootCommand(RootOptions{
		Bootstrap: e.bootstrap,
		Loader:    config.NewLoader().WithFile(filepath.Join(e.t.TempDir(), "missing.yaml")),
		Out:       e.out,
		Err:       e.out,
	})
	return root.Execute(context.Background(), args)
}

// mustRun executes a command line and returns what it printed.
func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	e.out.Reset()
	require.NoError(e.t, e.run(args...))
	return e.out.String()
}

// app builds an App directly over the shared database.
func (e *testEnv) app() *App {
	e.t.Helper()
	rt, err := e.bootstrap(context.Background(), config.NewConfig())
	require.NoError(e.t, err)
	e.t.Cleanup(func() { rt.Close() })
	return NewApp(rt, config.NewConfig(), e.out)
}
