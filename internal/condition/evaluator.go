// Package condition evaluates trigger conditions against events.
//
// Evaluation is pure and never returns an error: anomalies such as unknown
// operators or unresolvable field paths degrade to a non-match so a single
// bad condition can never take down event processing.
package condition

import (
	"strings"

	"go.uber.org/zap"

	"github.com/quiverhq/quiver/pkg/model"
)

// Evaluator evaluates conditions against events.
type Evaluator struct {
	log *zap.Logger
}

// NewEvaluator creates an Evaluator that reports anomalies on log.
func NewEvaluator(log *zap.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// EvaluateAll is a short-circuiting logical AND over conditions. An empty
// condition list matches every event.
func (e *Evaluator) EvaluateAll(conditions []model.Condition, event *model.Event) bool {
	for _, c := range conditions {
		if !e.Evaluate(c, event) {
			return false
		}
	}
	return true
}

// Evaluate reports whether a single condition holds for the event.
//
// Comparisons against an absent field resolve to false, with one exception:
// "ne" against a concrete (non-nil) literal is true, because absent never
// equals a concrete value.
func (e *Evaluator) Evaluate(cond model.Condition, event *model.Event) bool {
	value, found := extractField(cond.Field, event)
	if !found {
		return cond.Operator == model.OpNe && cond.Value != nil
	}

	switch cond.Operator {
	case model.OpEq:
		return looseEqual(value, cond.Value)
	case model.OpNe:
		return !looseEqual(value, cond.Value)
	case model.OpGt, model.OpLt, model.OpGte, model.OpLte:
		return compareOrdered(cond.Operator, value, cond.Value)
	case model.OpContains:
		s, ok := value.(string)
		sub, ok2 := cond.Value.(string)
		return ok && ok2 && strings.Contains(s, sub)
	case model.OpIn:
		return memberOf(value, cond.Value)
	case model.OpNotIn:
		seq, ok := asSequence(cond.Value)
		if !ok {
			return false
		}
		return !memberOfSeq(value, seq)
	default:
		e.log.Warn("unknown condition operator",
			zap.String("operator", string(cond.Operator)),
			zap.String("field", cond.Field))
		return false
	}
}

// extractField resolves a dotted field path against the event. Bare names
// "event_type" and "source" address top-level attributes; "data.<key>" and
// "metadata.<key>" descend one level into the corresponding map. Anything
// else is absent.
func extractField(field string, event *model.Event) (interface{}, bool) {
	switch {
	case field == "event_type":
		return event.Type, true
	case field == "source":
		return event.Source, true
	case strings.HasPrefix(field, "data."):
		v, ok := event.Data[strings.TrimPrefix(field, "data.")]
		return v, ok
	case strings.HasPrefix(field, "metadata."):
		v, ok := event.Metadata[strings.TrimPrefix(field, "metadata.")]
		return v, ok
	default:
		return nil, false
	}
}
