/*
 * Copyright 2020 grant@lastweekend.com.au
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package server is the static file server integration tests run their pages against.

Files under the configured root are served as is. Any other GET is answered with the index
page, so a test page can use whatever route it likes. Once listening, the server writes its
process id to the pid file so a test runner can stop it.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lwoggardner/integrationtester/internal/log"
)

// ErrPortInUse is returned by Listen when the configured address is already bound
var ErrPortInUse = errors.New("port already in use")

// Server serves the test pages.
type Server struct {
	cfg    *Config
	logger *slog.Logger
	router *chi.Mux
}

// New creates a Server for cfg. A nil logger discards everything.
func New(cfg *Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	s := &Server{
		cfg:    cfg,
		logger: log.WithComponent(logger, "server"),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(log.Requests(s.logger))
	r.Get("/*", s.serve)
	r.Head("/*", s.serve)
	s.router = r
	return s
}

// Handler is the server's router, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// serve answers with the file at the request path if there is one, otherwise the index.
func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	name := filepath.Join(s.cfg.Root, filepath.FromSlash(path.Clean("/"+r.URL.Path)))

	if info, err := os.Stat(name); err == nil {
		if info.IsDir() {
			name = filepath.Join(name, "index.html")
		}
		if served := serveFile(w, r, name); served {
			return
		}
	}

	if !serveFile(w, r, s.cfg.IndexPath()) {
		s.logger.Error("index not found", "index", s.cfg.IndexPath())
		http.NotFound(w, r)
	}
}

// serveFile writes the regular file name, reporting false if there is no such file
func serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// Listen binds the configured address.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return nil, fmt.Errorf("%w: %s", ErrPortInUse, s.cfg.Addr())
		}
		return nil, fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}
	return ln, nil
}

/*
Serve writes the pid file and serves on ln until ctx is cancelled, then shuts down gracefully.

It returns nil after a clean shutdown.
*/
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if err := s.writePID(); err != nil {
		ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("started testing server", "addr", ln.Addr().String(), "root", s.cfg.Root)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down testing server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := s.Listen()
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) writePID() error {
	pidPath := s.cfg.PIDPath()
	if pidPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(pidPath), 0o755); err != nil {
		return fmt.Errorf("failed to create pid file directory: %w", err)
	}
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("failed to write pid file: %w", err)
	}
	return nil
}
