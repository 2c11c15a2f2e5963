// Package dispatch sequences parsing, resolution, authorization, and
// execution for canonical events. It is the only component that takes
// the per-(server, user) execution token, and it is side-effect-free
// beyond that bookkeeping.
package dispatch

import (
	"context"
	"errors"
	"log"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/keshon/server-banker/internal/command"
	"github.com/keshon/server-banker/internal/event"
	"github.com/keshon/server-banker/internal/ledger"
	"github.com/keshon/server-banker/internal/scopelock"
)

// ErrHandlerTimeout is returned when a handler exceeds the per-invocation
// deadline. The handler is abandoned; its goroutine releases the scope
// lock once it observes cancellation.
var ErrHandlerTimeout = errors.New("handler timed out")

const (
	defaultTimeout       = 10 * time.Second
	defaultMaxConcurrent = 64
)

// Dispatcher serves concurrent invocations from all transports on a
// shared worker pool. Invocations on the same (server, user) scope are
// serialized; disjoint scopes proceed in parallel.
type Dispatcher struct {
	registry *command.Registry
	ledger   *ledger.Ledger
	scopes   *scopelock.Locker
	workers  *semaphore.Weighted
	timeout  time.Duration
}

// Option adjusts Dispatcher construction.
type Option func(*Dispatcher)

// WithTimeout overrides the per-invocation deadline.
func WithTimeout(d time.Duration) Option {
	return func(dp *Dispatcher) { dp.timeout = d }
}

// WithMaxConcurrent bounds the number of handlers running at once.
func WithMaxConcurrent(n int64) Option {
	return func(dp *Dispatcher) { dp.workers = semaphore.NewWeighted(n) }
}

// New creates a Dispatcher. The registry must be frozen before the first
// Dispatch call.
func New(reg *command.Registry, led *ledger.Ledger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: reg,
		ledger:   led,
		scopes:   scopelock.New(),
		workers:  semaphore.NewWeighted(defaultMaxConcurrent),
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs one canonical event through the pipeline and always
// returns a result; errors are reported, never panicked or swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev event.Event) command.Result {
	switch ev.Type {
	case event.TypeEcho:
		// Echo events bypass parsing; the payload is the input itself.
		return command.Result{Success: true, Payload: ev.RawInput}
	case event.TypeSystem:
		return d.dispatchSystem(ctx, ev)
	default:
		return d.dispatchCommand(ctx, ev)
	}
}

// dispatchSystem records channel presence. System events carry no
// command and produce no user-visible reply text.
func (d *Dispatcher) dispatchSystem(ctx context.Context, ev event.Event) command.Result {
	if ev.ChannelID == "" {
		return command.Result{Success: true}
	}
	if err := d.ledger.LogChannelUser(ctx, ev.ServerID, ev.ChannelID, ev.UserID); err != nil {
		return command.Result{Err: err}
	}
	return command.Result{Success: true}
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, ev event.Event) command.Result {
	parsed, err := command.Parse(ev.RawInput)
	if err != nil {
		return command.Result{Err: err}
	}

	cmd, ok := d.registry.Resolve(parsed.Name)
	if !ok {
		return command.Result{Err: &command.UnknownCommandError{Name: parsed.Name}}
	}

	if err := d.workers.Acquire(ctx, 1); err != nil {
		return command.Result{Err: err}
	}

	scope := command.Scope{ServerID: ev.ServerID, ChannelID: ev.ChannelID, UserID: ev.UserID}
	key := ev.ServerID + "/" + ev.UserID

	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan command.Result, 1)
	go func() {
		d.scopes.Lock(key)
		defer func() {
			d.scopes.Unlock(key)
			d.workers.Release(1)
		}()

		payload, err := cmd.Run(&command.Context{
			Ctx:      runCtx,
			Args:     parsed.Args,
			Scope:    scope,
			Ledger:   d.ledger,
			Registry: d.registry,
		})
		if err != nil {
			done <- command.Result{Err: err}
			return
		}
		done <- command.Result{Success: true, Payload: payload}
	}()

	select {
	case res := <-done:
		return res
	case <-runCtx.Done():
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			log.Printf("[WARN] Command %q timed out for %s", parsed.Name, key)
			return command.Result{Err: ErrHandlerTimeout}
		}
		return command.Result{Err: runCtx.Err()}
	}
}
