package model

import "strconv"

// Validate checks a trigger definition for structural problems. It returns
// a *ValidationError describing the first problem found, or nil. Validation
// is all-or-nothing: callers must not store a definition that fails here.
func Validate(def *TriggerDefinition) error {
	if def == nil {
		return &ValidationError{Field: "definition", Reason: "must not be nil"}
	}
	if def.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	for i, c := range def.Conditions {
		if c.Field == "" {
			return &ValidationError{Trigger: def.Name, Field: conditionField(i, "field"), Reason: "must not be empty"}
		}
		if !KnownOperator(c.Operator) {
			return &ValidationError{Trigger: def.Name, Field: conditionField(i, "operator"), Reason: "unknown operator " + string(c.Operator)}
		}
	}
	if len(def.Actions) == 0 {
		return &ValidationError{Trigger: def.Name, Field: "actions", Reason: "must not be empty"}
	}
	for i, a := range def.Actions {
		if !KnownKind(a.Kind) {
			return &ValidationError{Trigger: def.Name, Field: actionField(i, "kind"), Reason: "unknown action kind " + string(a.Kind)}
		}
		if a.Target == "" {
			return &ValidationError{Trigger: def.Name, Field: actionField(i, "target"), Reason: "must not be empty"}
		}
		if a.MaxRetries != nil && *a.MaxRetries < 0 {
			return &ValidationError{Trigger: def.Name, Field: actionField(i, "maxRetries"), Reason: "must not be negative"}
		}
	}
	if def.RateLimit < 0 {
		return &ValidationError{Trigger: def.Name, Field: "rateLimit", Reason: "must not be negative"}
	}
	if def.Cooldown < 0 {
		return &ValidationError{Trigger: def.Name, Field: "cooldown", Reason: "must not be negative"}
	}
	return nil
}

func conditionField(i int, name string) string {
	return "conditions[" + strconv.Itoa(i) + "]." + name
}

func actionField(i int, name string) string {
	return "actions[" + strconv.Itoa(i) + "]." + name
}
