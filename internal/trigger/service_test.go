package trigger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quiverhq/quiver/internal/condition"
	"github.com/quiverhq/quiver/internal/dispatch"
	"github.com/quiverhq/quiver/internal/ratelimit"
	"github.com/quiverhq/quiver/internal/registry"
	"github.com/quiverhq/quiver/pkg/model"
)

type MockExecutor struct {
	mock.Mock
}

func (m *MockExecutor) Execute(ctx context.Context, action model.Action, event *model.Event) dispatch.Result {
	args := m.Called(ctx, action, event)
	return args.Get(0).(dispatch.Result)
}

func boolPtr(b bool) *bool { return &b }

func newTestService(executor Executor) (*Service, *registry.Registry) {
	log := zap.NewNop()
	reg := registry.New()
	svc := NewService(log, reg,
		condition.NewEvaluator(log),
		ratelimit.NewLimiter(time.Minute),
		executor)
	return svc, reg
}

func userCreatedEvent() *model.Event {
	return &model.Event{
		ID:        "evt-1",
		Type:      "user.created",
		Source:    "api",
		Timestamp: time.Now(),
		Data:      map[string]interface{}{"email": "a@b.com"},
	}
}

func welcomeTrigger() *model.TriggerDefinition {
	return &model.TriggerDefinition{
		Name: "user-welcome",
		Conditions: []model.Condition{
			{Field: "event_type", Operator: model.OpEq, Value: "user.created"},
			{Field: "data.email", Operator: model.OpContains, Value: "@"},
		},
		Actions: []model.Action{
			{Kind: model.KindHTTP, Target: "http://example.com/welcome"},
			{Kind: model.KindQueue, Target: "user-events"},
		},
	}
}

func TestProcessEvent_MatchRunsAllActions(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)
	require.NoError(t, reg.AddOrReplace(welcomeTrigger()))

	event := userCreatedEvent()
	executor.On("Execute", mock.Anything, mock.Anything, event).
		Return(dispatch.Result{Attempts: 1}).Twice()

	svc.ProcessEvent(context.Background(), event)

	executor.AssertExpectations(t)
	stats := reg.StatsFor("user-welcome")
	assert.Equal(t, int64(1), stats.Executions)
	assert.Equal(t, int64(2), stats.Successes)
	assert.Equal(t, int64(0), stats.Failures)
}

func TestProcessEvent_SiblingFailureDoesNotBlock(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)
	require.NoError(t, reg.AddOrReplace(welcomeTrigger()))

	event := userCreatedEvent()
	failure := dispatch.Result{
		Attempts: 4,
		Err:      &dispatch.DeliveryError{Kind: model.KindHTTP, Target: "http://example.com/welcome", Attempts: 4, Err: errors.New("unreachable")},
	}
	executor.On("Execute", mock.Anything, mock.MatchedBy(func(a model.Action) bool {
		return a.Kind == model.KindHTTP
	}), event).Return(failure).Once()
	executor.On("Execute", mock.Anything, mock.MatchedBy(func(a model.Action) bool {
		return a.Kind == model.KindQueue
	}), event).Return(dispatch.Result{Attempts: 1}).Once()

	svc.ProcessEvent(context.Background(), event)

	// Both actions ran; successes and failures sum to the action count.
	executor.AssertExpectations(t)
	stats := reg.StatsFor("user-welcome")
	assert.Equal(t, int64(1), stats.Executions)
	assert.Equal(t, int64(1), stats.Successes)
	assert.Equal(t, int64(1), stats.Failures)
}

func TestProcessEvent_NoMatch(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)

	require.NoError(t, reg.AddOrReplace(&model.TriggerDefinition{
		Name: "critical-alert",
		Conditions: []model.Condition{
			{Field: "data.severity", Operator: model.OpGte, Value: 8},
		},
		Actions: []model.Action{{Kind: model.KindHTTP, Target: "http://example.com/page"}},
	}))

	svc.ProcessEvent(context.Background(), &model.Event{
		ID:   "evt-2",
		Type: "alert.critical",
		Data: map[string]interface{}{"severity": 5.0},
	})

	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, model.TriggerStats{}, reg.StatsFor("critical-alert"))
}

func TestProcessEvent_DisabledNeverDispatches(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)

	def := welcomeTrigger()
	def.Enabled = boolPtr(false)
	require.NoError(t, reg.AddOrReplace(def))

	svc.ProcessEvent(context.Background(), userCreatedEvent())

	executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, model.TriggerStats{}, reg.StatsFor("user-welcome"))
}

func TestProcessEvent_EmptyConditionsAlwaysMatch(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)

	require.NoError(t, reg.AddOrReplace(&model.TriggerDefinition{
		Name:    "audit-all",
		Actions: []model.Action{{Kind: model.KindQueue, Target: "audit"}},
	}))

	executor.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(dispatch.Result{Attempts: 1}).Once()

	svc.ProcessEvent(context.Background(), &model.Event{ID: "evt-3", Type: "anything"})

	executor.AssertExpectations(t)
}

func TestProcessEvent_RateLimitRejectionIsNoOp(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)

	def := welcomeTrigger()
	def.RateLimit = 1
	require.NoError(t, reg.AddOrReplace(def))

	executor.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(dispatch.Result{Attempts: 1}).Twice()

	svc.ProcessEvent(context.Background(), userCreatedEvent())
	svc.ProcessEvent(context.Background(), userCreatedEvent())

	// Only the first fire went through; the rejection updated nothing.
	executor.AssertNumberOfCalls(t, "Execute", 2)
	stats := reg.StatsFor("user-welcome")
	assert.Equal(t, int64(1), stats.Executions)
	assert.Equal(t, int64(2), stats.Successes)
}

func TestProcessEvent_MatchesAllTriggers(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)

	a := welcomeTrigger()
	a.Name = "a"
	b := welcomeTrigger()
	b.Name = "b"
	b.Actions = b.Actions[:1]
	require.NoError(t, reg.AddOrReplace(a))
	require.NoError(t, reg.AddOrReplace(b))

	executor.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(dispatch.Result{Attempts: 1}).Times(3)

	svc.ProcessEvent(context.Background(), userCreatedEvent())

	// Fan-out model: every matching trigger fires, no first-match-wins.
	executor.AssertExpectations(t)
	assert.Equal(t, int64(1), reg.StatsFor("a").Executions)
	assert.Equal(t, int64(1), reg.StatsFor("b").Executions)
}

func TestProcessEvent_ReplacementUsesLatestDefinition(t *testing.T) {
	executor := new(MockExecutor)
	svc, reg := newTestService(executor)

	first := welcomeTrigger()
	first.Name = "x"
	require.NoError(t, reg.AddOrReplace(first))

	second := &model.TriggerDefinition{
		Name: "x",
		Conditions: []model.Condition{
			{Field: "event_type", Operator: model.OpEq, Value: "user.created"},
		},
		Actions: []model.Action{{Kind: model.KindPubSub, Target: "user-channel"}},
	}
	require.NoError(t, reg.AddOrReplace(second))

	assert.Equal(t, []string{"x"}, reg.List())

	executor.On("Execute", mock.Anything, mock.MatchedBy(func(a model.Action) bool {
		return a.Kind == model.KindPubSub && a.Target == "user-channel"
	}), mock.Anything).Return(dispatch.Result{Attempts: 1}).Once()

	svc.ProcessEvent(context.Background(), userCreatedEvent())

	executor.AssertExpectations(t)
}
