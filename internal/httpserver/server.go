// Package httpserver wraps http.Server with timeouts sized for the RantSmith
// API's short JSON exchanges. The chat websocket is unaffected: once the
// connection is hijacked it manages its own deadlines.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// ShutdownTimeout bounds how long in-flight requests may run once the
// process has been told to stop.
var ShutdownTimeout = 10 * time.Second

// Server serves the API on one port.
type Server struct {
	inner *http.Server
}

// New builds a server for the handler on the given port.
func New(port int, handler http.Handler) *Server {
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Start serves until Shutdown is called or the listener fails. It returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
