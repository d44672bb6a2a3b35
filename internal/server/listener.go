package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotx/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// Listener is a running HTTP server bound to a local address.
type Listener struct {
	srv    *http.Server
	ln     net.Listener
	done   chan error
	logger *log.Logger
}

// Listen binds addr and serves handler in the background until [Listener.Close] or ctx is done.
func Listen(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) (*Listener, error) {
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	l := &Listener{
		srv:    &http.Server{Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		ln:     ln,
		done:   make(chan error, 1),
		logger: logger,
	}

	go func() {
		err := l.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		l.done <- err
	}()

	go func() {
		select {
		case <-ctx.Done():
			_ = l.Close()
		case <-l.done:
		}
	}()

	logger.Debug("listening", "addr", l.Addr())
	return l, nil
}

// Addr returns the address actually bound, which differs from the requested one when port 0 was used.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Close shuts the server down, waiting briefly for in-flight requests.
func (l *Listener) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return l.srv.Shutdown(ctx)
}
