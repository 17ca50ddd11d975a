// Package httpapi exposes the time tracking facade over HTTP using gin.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"task-tracker/internal/api"
	"task-tracker/internal/logging"
)

// UserHeader carries the acting user when the default identity is used.
const UserHeader = "X-User-ID"

// IdentityFunc resolves the acting user of a request. An empty id means
// the single-user deployment.
type IdentityFunc func(c *gin.Context) string

// HeaderIdentity reads the acting user from the X-User-ID header.
func HeaderIdentity(c *gin.Context) string {
	return c.GetHeader(UserHeader)
}

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
	Identity        IdentityFunc
}

// Server is the HTTP transport
type Server struct {
	api      api.API
	router   *gin.Engine
	logger   *slog.Logger
	identity IdentityFunc
	addr     string
	shutdown time.Duration
}

// NewServer creates a new HTTP server over a.
func NewServer(a api.API, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Identity == nil {
		opts.Identity = HeaderIdentity
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		api:      a,
		router:   gin.New(),
		logger:   opts.Logger,
		identity: opts.Identity,
		addr:     opts.Addr,
		shutdown: opts.ShutdownTimeout,
	}

	s.router.Use(gin.Recovery(), requestID(), requestLogger(s.logger))
	s.router.GET("/healthz", s.handleHealth)

	// API routes
	routes := s.router.Group("/api")
	{
		routes.POST("/timers/start", s.handleStartTimer)
		routes.POST("/timers/stop", s.handleStopTimer)
		routes.GET("/timers/active", s.handleActiveTimer)
		routes.GET("/timers/current", s.handleCurrentTimers)

		routes.POST("/entries/manual", s.handleManualEntry)
		routes.GET("/entries", s.handleListEntries)
		routes.PATCH("/entries/:id", s.handleUpdateEntry)
		routes.DELETE("/entries/:id", s.handleDeleteEntry)

		routes.POST("/tasks", s.handleCreateTask)
		routes.GET("/tasks", s.handleListTasks)
		routes.GET("/tasks/:id", s.handleGetTask)
		routes.GET("/tasks/:id/history", s.handleTaskHistory)
		routes.POST("/tasks/:id/status", s.handleChangeStatus)

		routes.POST("/users", s.handleCreateUser)
	}

	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests for
// at most the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", s.addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
