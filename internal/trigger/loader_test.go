package trigger

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhq/quiver/pkg/model"
)

func writeTempFile(t *testing.T, pattern, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), pattern)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestLoadTriggersFromFile_JSON(t *testing.T) {
	path := writeTempFile(t, "triggers-*.json", `[
		{
			"name": "user-welcome",
			"conditions": [
				{"field": "event_type", "operator": "eq", "value": "user.created"}
			],
			"actions": [
				{"kind": "http", "target": "http://example.com/welcome", "timeout": "10s", "maxRetries": 2}
			],
			"rateLimit": 10,
			"cooldown": "5m"
		}
	]`)

	defs, err := LoadTriggersFromFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "user-welcome", def.Name)
	assert.True(t, def.IsEnabled())
	assert.Equal(t, 10, def.RateLimit)
	assert.Equal(t, 5*time.Minute, def.Cooldown.Std())
	require.Len(t, def.Actions, 1)
	assert.Equal(t, 10*time.Second, def.Actions[0].AttemptTimeout().Std())
	assert.Equal(t, 2, def.Actions[0].Retries())
}

func TestLoadTriggersFromFile_YAML(t *testing.T) {
	path := writeTempFile(t, "triggers-*.yaml", `
- name: data-pipeline
  conditions:
    - field: event_type
      operator: eq
      value: data.file_uploaded
    - field: data.file_type
      operator: in
      value: [csv, json, parquet]
  actions:
    - kind: queue
      target: data-processing
    - kind: rpc
      target: data-processor:50051
      timeout: 30
  enabled: false
`)

	defs, err := LoadTriggersFromFile(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)

	def := defs[0]
	assert.Equal(t, "data-pipeline", def.Name)
	assert.False(t, def.IsEnabled())
	require.Len(t, def.Actions, 2)
	assert.Equal(t, model.KindQueue, def.Actions[0].Kind)
	// Bare numbers are seconds.
	assert.Equal(t, 30*time.Second, def.Actions[1].AttemptTimeout().Std())
}

func TestLoadTriggersFromFile_NotFound(t *testing.T) {
	_, err := LoadTriggersFromFile("non-existent-file.json")
	assert.Error(t, err)
}

func TestLoadTriggersFromFile_UnsupportedFormat(t *testing.T) {
	path := writeTempFile(t, "triggers-*.txt", "whatever")
	_, err := LoadTriggersFromFile(path)
	assert.Error(t, err)
}

func TestLoadTriggersFromFile_InvalidDefinitionRejectsFile(t *testing.T) {
	path := writeTempFile(t, "triggers-*.json", `[
		{"name": "ok", "actions": [{"kind": "http", "target": "http://example.com"}]},
		{"name": "bad", "actions": [{"kind": "email", "target": "a@b.com"}]}
	]`)

	_, err := LoadTriggersFromFile(path)
	require.Error(t, err)

	var verr *model.ValidationError
	assert.ErrorAs(t, err, &verr)
}
