// Package trigger orchestrates event processing: matching events against
// registered triggers, gating fires through the rate limiter, and fanning
// out each fired trigger's actions to the dispatcher.
package trigger

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/quiverhq/quiver/internal/condition"
	"github.com/quiverhq/quiver/internal/dispatch"
	"github.com/quiverhq/quiver/internal/ratelimit"
	"github.com/quiverhq/quiver/internal/registry"
	"github.com/quiverhq/quiver/pkg/model"
)

// Executor runs one action to completion, retries included.
type Executor interface {
	Execute(ctx context.Context, action model.Action, event *model.Event) dispatch.Result
}

// Service is the trigger orchestrator. It holds no per-event state, so any
// number of events may be processed concurrently against the shared
// registry and limiter.
type Service struct {
	log       *zap.Logger
	registry  *registry.Registry
	evaluator *condition.Evaluator
	limiter   *ratelimit.Limiter
	executor  Executor
}

// NewService wires the orchestrator to its collaborators.
func NewService(log *zap.Logger, reg *registry.Registry, eval *condition.Evaluator, limiter *ratelimit.Limiter, executor Executor) *Service {
	return &Service{
		log:       log,
		registry:  reg,
		evaluator: eval,
		limiter:   limiter,
		executor:  executor,
	}
}

// Submit hands an event to the engine without waiting for its triggers to
// finish. Ingress layers that need completion call ProcessEvent instead.
func (s *Service) Submit(event *model.Event) {
	go s.ProcessEvent(context.Background(), event)
}

// ProcessEvent matches the event against every registered trigger and runs
// all matches. Matching never stops at the first hit: one event may fire
// any number of triggers.
func (s *Service) ProcessEvent(ctx context.Context, event *model.Event) {
	defs := s.registry.Snapshot()

	matched := 0
	for _, def := range defs {
		if !def.IsEnabled() {
			continue
		}
		if !s.evaluator.EvaluateAll(def.Conditions, event) {
			continue
		}
		matched++
		s.fire(ctx, def, event)
	}

	s.log.Debug("event processed",
		zap.String("event_id", event.ID),
		zap.String("event_type", event.Type),
		zap.Int("triggers_evaluated", len(defs)),
		zap.Int("triggers_matched", matched))
}

// fire runs one matched trigger: rate gate, then all actions concurrently,
// then stats. A rejected gate is a no-op; stats move only on acceptance.
func (s *Service) fire(ctx context.Context, def *model.TriggerDefinition, event *model.Event) {
	decision := s.limiter.TryAcquire(def.Name, def.RateLimit, def.Cooldown.Std())
	if !decision.Allowed {
		s.log.Warn("trigger fire rejected",
			zap.String("trigger", def.Name),
			zap.String("event_id", event.ID),
			zap.String("cause", string(decision.Cause)))
		return
	}

	s.registry.RecordExecution(def.Name)

	// Fan out every action and wait for all of them. A failing action
	// never cancels its siblings; this is a barrier, not a race.
	results := make([]dispatch.Result, len(def.Actions))
	var wg sync.WaitGroup
	for i, action := range def.Actions {
		wg.Add(1)
		go func(i int, action model.Action) {
			defer wg.Done()
			results[i] = s.executor.Execute(ctx, action, event)
		}(i, action)
	}
	wg.Wait()

	successes, failures := 0, 0
	for _, r := range results {
		if r.Succeeded() {
			successes++
			continue
		}
		failures++
		s.log.Error("action failed",
			zap.String("trigger", def.Name),
			zap.String("event_id", event.ID),
			zap.String("kind", string(r.Action.Kind)),
			zap.String("target", r.Action.Target),
			zap.Int("attempts", r.Attempts),
			zap.Error(r.Err))
	}
	s.registry.RecordOutcomes(def.Name, successes, failures)

	s.log.Info("trigger executed",
		zap.String("trigger", def.Name),
		zap.String("event_id", event.ID),
		zap.Int("successes", successes),
		zap.Int("failures", failures))
}
