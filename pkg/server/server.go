// Package server exposes board generation, import, and extension over HTTP.
//
// Every board lives in the server's base directory as a pair of files: the
// .board descriptor and the .canvas.json layer document. Requests that
// change a board hold a per-board lock for their whole duration, so two
// imports into the same board never interleave.
//
// # Routes
//
//	GET  /healthz
//	POST /v1/boards                  generate a board from layout options
//	GET  /v1/boards/{name}           descriptor with row and column per cell
//	POST /v1/boards/{name}/extend    add one row or column
//	POST /v1/boards/{name}/import    place a batch of images
//	POST /v1/plan                    compute a placement without a board
//
// Image, logo, and overlay paths in request bodies are relative to the base
// directory and may not leave it.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/openboard/pkg/canvas"
	errs "github.com/matzehuels/openboard/pkg/errors"
	"github.com/matzehuels/openboard/pkg/state"
)

// =============================================================================
// Configuration
// =============================================================================

const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultTimeout      = 5 * time.Minute
	ShutdownTimeout     = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// BaseDir holds the board files. It is created when missing.
	BaseDir string
	// Store keeps the last extension direction per board.
	Store  state.DirectionStore
	Prober canvas.Prober
	Logger *log.Logger

	MaxBodyBytes int64
	// Timeout bounds a single request.
	Timeout time.Duration
}

// SetDefaults fills unset optional fields.
func (c *Config) SetDefaults() {
	if c.Store == nil {
		c.Store = state.NewMemoryStore()
	}
	if c.Prober == nil {
		c.Prober = canvas.FileProber{}
	}
	if c.Logger == nil {
		c.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := errs.ValidateDestination(c.BaseDir); err != nil {
		return err
	}
	return nil
}

// =============================================================================
// Server
// =============================================================================

// Server is the HTTP front end of the board engine.
type Server struct {
	cfg     Config
	baseDir string
	router  chi.Router

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ http.Handler = (*Server)(nil)

// New builds a Server with its routes registered.
func New(cfg Config) (*Server, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(cfg.BaseDir)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "resolve base dir %s", cfg.BaseDir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrCodeConfiguration, err, "create base dir %s", dir)
	}

	s := &Server{
		cfg:     cfg,
		baseDir: dir,
		locks:   make(map[string]*sync.Mutex),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.cfg.Timeout))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/plan", s.handlePlan)
		r.Route("/boards", func(r chi.Router) {
			r.Post("/", s.handleCreateBoard)
			r.Route("/{name}", func(r chi.Router) {
				r.Get("/", s.handleGetBoard)
				r.Post("/extend", s.handleExtend)
				r.Post("/import", s.handleImport)
			})
		})
	})
	s.router = r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// BaseDir returns the absolute directory holding the board files.
func (s *Server) BaseDir() string { return s.baseDir }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.cfg.Logger.Info("listening", "addr", addr, "boards", s.baseDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.cfg.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// lock serializes mutations of one board.
func (s *Server) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// resolve maps a request path onto the base directory. Absolute paths and
// paths escaping the directory are rejected.
func (s *Server) resolve(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", nil
	}
	if filepath.IsAbs(p) {
		return "", errs.New(errs.ErrCodeInvalidPath, "path must be relative: %q", p)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errs.New(errs.ErrCodeInvalidPath, "path leaves the board directory: %q", p)
	}
	return filepath.Join(s.baseDir, clean), nil
}
