package registry

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhq/quiver/pkg/model"
)

func validDefinition(name string) *model.TriggerDefinition {
	return &model.TriggerDefinition{
		Name: name,
		Actions: []model.Action{
			{Kind: model.KindHTTP, Target: "http://example.com/hook"},
		},
	}
}

func TestAddOrReplace(t *testing.T) {
	r := New()

	require.NoError(t, r.AddOrReplace(validDefinition("x")))
	assert.Equal(t, []string{"x"}, r.List())

	// Replacing installs the new definition under the same name.
	replacement := validDefinition("x")
	replacement.Actions = []model.Action{
		{Kind: model.KindQueue, Target: "user-events"},
		{Kind: model.KindHTTP, Target: "http://example.com/other"},
	}
	require.NoError(t, r.AddOrReplace(replacement))

	assert.Equal(t, []string{"x"}, r.List())
	got := r.Get("x")
	require.NotNil(t, got)
	assert.Len(t, got.Actions, 2)
	assert.Equal(t, model.KindQueue, got.Actions[0].Kind)
}

func TestAddOrReplace_RejectsInvalid(t *testing.T) {
	r := New()

	bad := validDefinition("x")
	bad.Conditions = []model.Condition{{Field: "event_type", Operator: "regex", Value: ".*"}}
	err := r.AddOrReplace(bad)
	require.Error(t, err)

	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "x", verr.Trigger)

	// Rejection is all-or-nothing: nothing was stored.
	assert.Empty(t, r.List())
	assert.Nil(t, r.Get("x"))
}

func TestRemove(t *testing.T) {
	r := New()
	require.NoError(t, r.AddOrReplace(validDefinition("x")))

	assert.True(t, r.Remove("x"))
	assert.False(t, r.Remove("x"))
	assert.Empty(t, r.List())
}

func TestSnapshot_Consistency(t *testing.T) {
	r := New()
	require.NoError(t, r.AddOrReplace(validDefinition("a")))

	snap := r.Snapshot()
	require.Len(t, snap, 1)

	// Mutations after the snapshot do not leak into it.
	require.NoError(t, r.AddOrReplace(validDefinition("b")))
	r.Remove("a")
	assert.Len(t, snap, 1)
	assert.Equal(t, "a", snap[0].Name)
}

func TestStats(t *testing.T) {
	r := New()

	r.RecordExecution("x")
	r.RecordOutcomes("x", 1, 1)
	r.RecordExecution("x")
	r.RecordOutcomes("x", 2, 0)

	got := r.StatsFor("x")
	assert.Equal(t, int64(2), got.Executions)
	assert.Equal(t, int64(3), got.Successes)
	assert.Equal(t, int64(1), got.Failures)

	assert.Equal(t, model.TriggerStats{}, r.StatsFor("unknown"))
}

func TestStats_SurviveRemoval(t *testing.T) {
	r := New()
	require.NoError(t, r.AddOrReplace(validDefinition("x")))
	r.RecordExecution("x")

	r.Remove("x")
	assert.Equal(t, int64(1), r.StatsFor("x").Executions)
	assert.Contains(t, r.Stats(), "x")
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	r := New()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "t" + strconv.Itoa(i)
			for j := 0; j < 100; j++ {
				_ = r.AddOrReplace(validDefinition(name))
				r.RecordExecution(name)
				r.Remove(name)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, def := range r.Snapshot() {
					_ = def.Name
				}
				_ = r.List()
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()
}
