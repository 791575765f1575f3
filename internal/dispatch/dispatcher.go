// Package dispatch executes trigger actions against external sinks.
//
// Every sink kind sits behind the Transport capability; the dispatcher
// wraps each call in a bounded-retry envelope with exponential backoff and
// reports a typed result instead of panicking or swallowing failures.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quiverhq/quiver/pkg/model"
)

// Transport delivers one message to one sink. Implementations must honor
// the context deadline; a timed-out attempt is reported as an error and
// counts against the retry budget like any other failure.
type Transport interface {
	Send(ctx context.Context, target string, message map[string]interface{}, headers map[string]string) error
}

// Result is the terminal outcome of executing one action, after retries.
type Result struct {
	Action   model.Action
	Attempts int
	Elapsed  time.Duration
	Err      error
}

// Succeeded reports whether the action was delivered.
func (r Result) Succeeded() bool { return r.Err == nil }

// Dispatcher routes actions to transports by kind and applies the retry
// policy. One dispatcher is shared across all triggers and events; it holds
// no per-action state.
type Dispatcher struct {
	log         *zap.Logger
	transports  map[model.ActionKind]Transport
	backoffBase time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBackoffBase overrides the base delay for exponential retry backoff.
// Retry n sleeps base * 2^n before the next attempt.
func WithBackoffBase(base time.Duration) Option {
	return func(d *Dispatcher) { d.backoffBase = base }
}

// NewDispatcher creates a Dispatcher with no transports registered.
func NewDispatcher(log *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:         log,
		transports:  make(map[model.ActionKind]Transport),
		backoffBase: model.DefaultBackoffBase,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Register binds a transport to an action kind, replacing any previous one.
func (d *Dispatcher) Register(kind model.ActionKind, t Transport) {
	d.transports[kind] = t
}

// Execute delivers one action for one event. It attempts the transport up
// to MaxRetries+1 times with exponential backoff between attempts and
// returns the terminal outcome. Execute never panics; all failures come
// back inside the Result.
func (d *Dispatcher) Execute(ctx context.Context, action model.Action, event *model.Event) Result {
	start := time.Now()

	transport, ok := d.transports[action.Kind]
	if !ok {
		// Unknown kinds fail immediately; retrying cannot help.
		return Result{
			Action:  action,
			Elapsed: time.Since(start),
			Err:     fmt.Errorf("%w: %q", model.ErrUnknownKind, action.Kind),
		}
	}

	message := buildMessage(action, event)
	retries := action.Retries()
	timeout := action.AttemptTimeout().Std()

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		err := transport.Send(attemptCtx, action.Target, message, action.Headers)
		cancel()

		if err == nil {
			return Result{Action: action, Attempts: attempt + 1, Elapsed: time.Since(start)}
		}
		lastErr = err

		if attempt < retries {
			delay := d.backoffBase << attempt
			d.log.Debug("action attempt failed, backing off",
				zap.String("kind", string(action.Kind)),
				zap.String("target", action.Target),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(err))
			sleep(ctx, delay)
		}
	}

	return Result{
		Action:   action,
		Attempts: retries + 1,
		Elapsed:  time.Since(start),
		Err: &DeliveryError{
			Kind:     action.Kind,
			Target:   action.Target,
			Attempts: retries + 1,
			Err:      lastErr,
		},
	}
}

// buildMessage merges the action payload with the full event under a fixed
// "event" key.
func buildMessage(action model.Action, event *model.Event) map[string]interface{} {
	message := make(map[string]interface{}, len(action.Payload)+1)
	for k, v := range action.Payload {
		message[k] = v
	}
	message["event"] = event
	return message
}

// sleep suspends only the calling goroutine; sibling actions keep running.
// The context is the ingress layer's outermost boundary, so a cancelled
// submit cuts the backoff short.
func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
