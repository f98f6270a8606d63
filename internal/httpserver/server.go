package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultWriteTimeout = 10 * time.Second
	// uploadThroughput is the slowest client transfer rate, in bytes per second,
	// the server waits for when sizing timeouts for uploads.
	uploadThroughput = 1 << 20
	maxUploadTimeout = 30 * time.Minute
)

// ShutdownTimeout controls how long to wait for graceful shutdowns.
var ShutdownTimeout = 10 * time.Second

// Server wraps the http.Server with sensible defaults.
type Server struct {
	inner *http.Server
}

// Option customises the underlying http.Server.
type Option func(*http.Server)

// WithUploadLimit stretches read and write deadlines so a request body of up
// to maxBytes can arrive over a slow link.
func WithUploadLimit(maxBytes int64) Option {
	return func(s *http.Server) {
		if maxBytes <= 0 {
			return
		}
		timeout := time.Duration(maxBytes/uploadThroughput)*time.Second + defaultWriteTimeout
		if timeout > maxUploadTimeout {
			timeout = maxUploadTimeout
		}
		s.ReadTimeout = timeout
		s.WriteTimeout = timeout + defaultWriteTimeout
	}
}

// New constructs a server listening on the provided port.
func New(port int, handler http.Handler, opts ...Option) *Server {
	inner := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}
	for _, opt := range opts {
		opt(inner)
	}
	return &Server{inner: inner}
}

// Addr reports the address the server listens on.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully terminates the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
