package model

// Operator is the comparison applied by a single condition.
type Operator string

const (
	OpEq       Operator = "eq"
	OpNe       Operator = "ne"
	OpGt       Operator = "gt"
	OpLt       Operator = "lt"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpContains Operator = "contains"
	OpIn       Operator = "in"
	OpNotIn    Operator = "not_in"
)

// KnownOperator reports whether op is part of the supported operator set.
func KnownOperator(op Operator) bool {
	switch op {
	case OpEq, OpNe, OpGt, OpLt, OpGte, OpLte, OpContains, OpIn, OpNotIn:
		return true
	}
	return false
}

// ActionKind selects the sink transport used to deliver an action.
type ActionKind string

const (
	KindHTTP   ActionKind = "http"
	KindQueue  ActionKind = "queue"
	KindPubSub ActionKind = "pubsub"
	KindRPC    ActionKind = "rpc"
)

// KnownKind reports whether kind is a supported action kind.
func KnownKind(kind ActionKind) bool {
	switch kind {
	case KindHTTP, KindQueue, KindPubSub, KindRPC:
		return true
	}
	return false
}

// Condition is one predicate over a single field path of an event.
// Valid paths are "event_type", "source", "data.<key>" and "metadata.<key>";
// any other path resolves to absent and the condition fails closed.
type Condition struct {
	Field    string      `json:"field" yaml:"field"`
	Operator Operator    `json:"operator" yaml:"operator"`
	Value    interface{} `json:"value" yaml:"value"`
}

// Action is one side-effecting dispatch to an external sink.
type Action struct {
	Kind       ActionKind             `json:"kind" yaml:"kind"`
	Target     string                 `json:"target" yaml:"target"`
	Payload    map[string]interface{} `json:"payload,omitempty" yaml:"payload,omitempty"`
	Timeout    Duration               `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	MaxRetries *int                   `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	Headers    map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Retries returns the configured retry count, or DefaultMaxRetries when unset.
// An action is always attempted Retries()+1 times in total.
func (a Action) Retries() int {
	if a.MaxRetries == nil {
		return DefaultMaxRetries
	}
	return *a.MaxRetries
}

// AttemptTimeout returns the per-attempt timeout, or DefaultActionTimeout
// when unset.
func (a Action) AttemptTimeout() Duration {
	if a.Timeout <= 0 {
		return Duration(DefaultActionTimeout)
	}
	return a.Timeout
}

// TriggerDefinition is a named rule: the conditions to match plus the actions
// to run when they all hold. Definitions are immutable once registered;
// updates go through the registry and replace the whole definition.
type TriggerDefinition struct {
	Name       string            `json:"name" yaml:"name"`
	Conditions []Condition       `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Actions    []Action          `json:"actions" yaml:"actions"`
	Enabled    *bool             `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// RateLimit caps fires per rate window. Zero means unlimited.
	RateLimit int `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`

	// Cooldown is the minimum interval between fires. Zero means none.
	// RateLimit and Cooldown are independent gates; both apply when both set.
	Cooldown Duration `json:"cooldown,omitempty" yaml:"cooldown,omitempty"`
}

// IsEnabled reports whether the trigger may dispatch. Triggers are enabled
// unless explicitly disabled.
func (t *TriggerDefinition) IsEnabled() bool {
	return t.Enabled == nil || *t.Enabled
}

// TriggerStats holds monotonically increasing counters for one trigger.
// Counters are reset only by process restart.
type TriggerStats struct {
	Executions int64 `json:"executions"`
	Successes  int64 `json:"successes"`
	Failures   int64 `json:"failures"`
}
