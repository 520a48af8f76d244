// Package checkout drives a single checkout attempt: it asks the backend for a
// hosted payment session and hands the visitor off to it.
//
// An attempt moves idle -> submitting -> (redirecting | failed). Redirecting is
// terminal: control has left the storefront. A failed attempt may be retried.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/metinatakli/storefront/internal/domain"
)

type State int32

const (
	StateIdle State = iota
	StateSubmitting
	StateRedirecting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateRedirecting:
		return "redirecting"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ServerError is an application level failure reported by the session backend,
// as opposed to a transport failure.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("checkout session backend returned %d: %s", e.StatusCode, e.Message)
}

// RedirectError reports a session that was created but could not be handed off
// to the visitor. The session backend may still hold resources for it.
type RedirectError struct {
	SessionID string
	Err       error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("failed to redirect to checkout session %s: %v", e.SessionID, e.Err)
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}

type SessionCreator interface {
	CreateSession(ctx context.Context, items []domain.Item) (*domain.CheckoutSession, error)
}

// SessionCreatorFunc adapts a function to SessionCreator.
type SessionCreatorFunc func(ctx context.Context, items []domain.Item) (*domain.CheckoutSession, error)

func (f SessionCreatorFunc) CreateSession(ctx context.Context, items []domain.Item) (*domain.CheckoutSession, error) {
	return f(ctx, items)
}

// Redirector hands the visitor over to the hosted payment page. A nil error is the
// only signal that the hand-off happened.
type Redirector interface {
	Redirect(ctx context.Context, session *domain.CheckoutSession) error
}

type RedirectFunc func(ctx context.Context, session *domain.CheckoutSession) error

func (f RedirectFunc) Redirect(ctx context.Context, session *domain.CheckoutSession) error {
	return f(ctx, session)
}

// Status is a snapshot of the orchestrator for renderers.
type Status struct {
	State State
	Busy  bool
	Err   error
}

type Orchestrator struct {
	creator SessionCreator
	logger  *slog.Logger

	busy  atomic.Bool
	state atomic.Int32

	mu        sync.Mutex
	lastErr   error
	nextID    int
	listeners map[int]func(Status)
}

func NewOrchestrator(creator SessionCreator, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		creator:   creator,
		logger:    logger,
		listeners: make(map[int]func(Status)),
	}
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Busy reports whether a session request is outstanding.
func (o *Orchestrator) Busy() bool {
	return o.busy.Load()
}

// LastError returns the failure of the most recent attempt, if any.
func (o *Orchestrator) LastError() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.lastErr
}

func (o *Orchestrator) Status() Status {
	return Status{
		State: o.State(),
		Busy:  o.Busy(),
		Err:   o.LastError(),
	}
}

// Subscribe registers fn to be called after every state change.
func (o *Orchestrator) Subscribe(fn func(Status)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	id := o.nextID
	o.nextID++
	o.listeners[id] = fn

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()

		delete(o.listeners, id)
	}
}

// Checkout runs one attempt for items and redirects through r on success.
//
// The busy flag is claimed before any I/O so that a second call landing while a
// request is outstanding returns domain.ErrCheckoutInProgress without reaching the
// backend. Failures are terminal for the attempt and never retried.
func (o *Orchestrator) Checkout(ctx context.Context, items []domain.Item, r Redirector) error {
	if len(items) == 0 {
		return domain.ErrBasketEmpty
	}

	if !o.busy.CompareAndSwap(false, true) {
		o.logger.Warn("checkout attempt rejected: a session request is already outstanding")
		return domain.ErrCheckoutInProgress
	}

	if o.State() == StateRedirecting {
		o.busy.Store(false)
		return domain.ErrCheckoutHandedOff
	}

	o.setState(StateSubmitting, nil)

	session, err := o.creator.CreateSession(ctx, items)
	if err == nil && (session == nil || session.ID == "") {
		err = domain.ErrMissingCheckoutSessionID
	}

	if err != nil {
		var serverErr *ServerError

		switch {
		case errors.As(err, &serverErr):
			o.logger.Error(serverErr.Message, "status_code", serverErr.StatusCode)
		default:
			o.logger.Error("checkout session request failed", "error", err)
		}

		o.finish(StateFailed, err)

		return fmt.Errorf("failed to create checkout session: %w", err)
	}

	o.setState(StateRedirecting, nil)

	err = r.Redirect(ctx, session)
	if err != nil {
		o.logger.Warn("redirect to hosted checkout failed", "session_id", session.ID, "error", err)
		o.finish(StateFailed, err)

		return &RedirectError{SessionID: session.ID, Err: err}
	}

	o.logger.Info("visitor handed off to hosted checkout", "session_id", session.ID)
	o.finish(StateRedirecting, nil)

	return nil
}

func (o *Orchestrator) setState(s State, err error) {
	o.state.Store(int32(s))

	o.mu.Lock()
	o.lastErr = err
	o.mu.Unlock()

	o.notify()
}

// finish records the outcome and clears the busy flag on every path.
func (o *Orchestrator) finish(s State, err error) {
	o.state.Store(int32(s))

	o.mu.Lock()
	o.lastErr = err
	o.mu.Unlock()

	o.busy.Store(false)
	o.notify()
}

func (o *Orchestrator) notify() {
	status := o.Status()

	o.mu.Lock()
	listeners := make([]func(Status), 0, len(o.listeners))
	for _, l := range o.listeners {
		listeners = append(listeners, l)
	}
	o.mu.Unlock()

	for _, l := range listeners {
		l(status)
	}
}
