package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	retries := 2
	negative := -1

	tests := []struct {
		name      string
		def       *TriggerDefinition
		wantField string
	}{
		{
			name: "valid",
			def: &TriggerDefinition{
				Name: "ok",
				Conditions: []Condition{
					{Field: "event_type", Operator: OpEq, Value: "x"},
				},
				Actions: []Action{
					{Kind: KindHTTP, Target: "http://example.com", MaxRetries: &retries},
				},
			},
		},
		{name: "nil definition", def: nil, wantField: "definition"},
		{name: "missing name", def: &TriggerDefinition{Actions: []Action{{Kind: KindHTTP, Target: "x"}}}, wantField: "name"},
		{name: "no actions", def: &TriggerDefinition{Name: "t"}, wantField: "actions"},
		{
			name: "unknown operator",
			def: &TriggerDefinition{
				Name:       "t",
				Conditions: []Condition{{Field: "event_type", Operator: "regex", Value: "x"}},
				Actions:    []Action{{Kind: KindHTTP, Target: "x"}},
			},
			wantField: "conditions[0].operator",
		},
		{
			name: "empty condition field",
			def: &TriggerDefinition{
				Name:       "t",
				Conditions: []Condition{{Operator: OpEq, Value: "x"}},
				Actions:    []Action{{Kind: KindHTTP, Target: "x"}},
			},
			wantField: "conditions[0].field",
		},
		{
			name: "unknown action kind",
			def: &TriggerDefinition{
				Name:    "t",
				Actions: []Action{{Kind: "email", Target: "a@b.com"}},
			},
			wantField: "actions[0].kind",
		},
		{
			name: "missing target",
			def: &TriggerDefinition{
				Name:    "t",
				Actions: []Action{{Kind: KindHTTP}},
			},
			wantField: "actions[0].target",
		},
		{
			name: "negative retries",
			def: &TriggerDefinition{
				Name:    "t",
				Actions: []Action{{Kind: KindHTTP, Target: "x", MaxRetries: &negative}},
			},
			wantField: "actions[0].maxRetries",
		},
		{
			name: "negative rate limit",
			def: &TriggerDefinition{
				Name:      "t",
				Actions:   []Action{{Kind: KindHTTP, Target: "x"}},
				RateLimit: -1,
			},
			wantField: "rateLimit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.def)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestActionDefaults(t *testing.T) {
	var a Action
	assert.Equal(t, DefaultMaxRetries, a.Retries())
	assert.Equal(t, Duration(DefaultActionTimeout), a.AttemptTimeout())

	zero := 0
	a.MaxRetries = &zero
	assert.Equal(t, 0, a.Retries())
}

func TestTriggerDefinitionEnabled(t *testing.T) {
	var def TriggerDefinition
	assert.True(t, def.IsEnabled())

	disabled := false
	def.Enabled = &disabled
	assert.False(t, def.IsEnabled())
}
