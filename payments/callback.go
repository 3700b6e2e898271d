package payments

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// CallbackStatus is the outcome reported by the hosted checkout redirect.
type CallbackStatus string

const (
	CallbackSuccess   CallbackStatus = "success"
	CallbackCancelled CallbackStatus = "cancelled"
)

// CallbackResult is the parsed redirect: `payment=success|cancelled` plus
// the correlating `session_id`.
type CallbackResult struct {
	Status    CallbackStatus
	SessionID string
}

// Completed reports whether the user finished paying.
func (r CallbackResult) Completed() bool {
	return r.Status == CallbackSuccess
}

// Listener runs a short-lived local HTTP server that receives the
// hosted-checkout redirect. The query-parameter redirect is the one
// authoritative completion signal; there is no polling fallback.
type Listener struct {
	ln  net.Listener
	log zerolog.Logger
}

// ListenerOption modifies a Listener.
type ListenerOption func(*Listener)

// WithListenerLogger attaches a logger.
func WithListenerLogger(log zerolog.Logger) ListenerOption {
	return func(l *Listener) {
		l.log = log
	}
}

// NewListener binds the callback port immediately so an occupied port
// surfaces before the user is sent off to the hosted checkout page.
func NewListener(addr string, options ...ListenerOption) (*Listener, error) {
	l := &Listener{log: zerolog.Nop()}
	for _, opt := range options {
		opt(l)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "[NewListener] Listen")
	}
	l.ln = ln
	return l, nil
}

// Addr returns the bound address, useful when the configured port is 0.
func (l *Listener) Addr() string {
	return l.ln.Addr().String()
}

// Await serves until one redirect arrives or ctx expires. It accepts any
// path so the registered return URL can be whatever the platform uses.
func (l *Listener) Await(ctx context.Context) (CallbackResult, error) {
	results := make(chan CallbackResult, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		payment := q.Get("payment")
		if payment != string(CallbackSuccess) && payment != string(CallbackCancelled) {
			http.NotFound(w, r)
			return
		}

		result := CallbackResult{
			Status:    CallbackStatus(payment),
			SessionID: q.Get("session_id"),
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<html><body><h2>Payment %s</h2><p>You can return to the terminal.</p></body></html>", payment)

		select {
		case results <- result:
		default:
			// A second redirect for the same flow; first one wins.
		}
	})

	server := &http.Server{Handler: mux}
	serveErr := make(chan error, 1)
	go func() {
		if err := server.Serve(l.ln); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	l.log.Info().Str("addr", l.Addr()).Msg("waiting for checkout redirect")

	select {
	case result := <-results:
		l.log.Info().Str("status", string(result.Status)).Msg("checkout redirect received")
		return result, nil
	case err := <-serveErr:
		return CallbackResult{}, errors.Wrap(err, "[Listener.Await] ListenAndServe")
	case <-ctx.Done():
		return CallbackResult{}, errors.Wrap(ctx.Err(), "[Listener.Await] timed out waiting for redirect")
	}
}
