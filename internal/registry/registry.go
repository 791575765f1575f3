// Package registry holds the live set of trigger definitions.
//
// Reads vastly outnumber writes: every event snapshots the full trigger set.
// The registry therefore keeps definitions in an immutable map swapped
// atomically on mutation, so the matching path never takes a lock and a
// reader always sees either the old or the new definition, never a partial
// one.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/quiverhq/quiver/pkg/model"
)

// Registry maps trigger names to definitions and tracks per-trigger stats.
type Registry struct {
	// snapshot holds an immutable map[string]*model.TriggerDefinition.
	// Writers copy it, mutate the copy, and swap under writeMu.
	snapshot atomic.Value
	writeMu  sync.Mutex

	// stats entries are created on first execution and never pruned;
	// counters survive trigger replacement and removal until restart.
	stats sync.Map // string -> *triggerCounters
}

type triggerCounters struct {
	executions atomic.Int64
	successes  atomic.Int64
	failures   atomic.Int64
}

// New creates an empty Registry.
func New() *Registry {
	r := &Registry{}
	r.snapshot.Store(map[string]*model.TriggerDefinition{})
	return r
}

// AddOrReplace validates and installs a definition under its name,
// replacing any existing one atomically. A definition that fails
// validation is rejected whole; the registry is left untouched.
func (r *Registry) AddOrReplace(def *model.TriggerDefinition) error {
	if err := model.Validate(def); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := r.snapshot.Load().(map[string]*model.TriggerDefinition)
	next := make(map[string]*model.TriggerDefinition, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	next[def.Name] = def
	r.snapshot.Store(next)
	return nil
}

// Remove deletes the named definition. It reports whether the name was
// present. Stats for the name are retained.
func (r *Registry) Remove(name string) bool {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	cur := r.snapshot.Load().(map[string]*model.TriggerDefinition)
	if _, ok := cur[name]; !ok {
		return false
	}
	next := make(map[string]*model.TriggerDefinition, len(cur)-1)
	for k, v := range cur {
		if k != name {
			next[k] = v
		}
	}
	r.snapshot.Store(next)
	return true
}

// Get returns the named definition, or nil if absent.
func (r *Registry) Get(name string) *model.TriggerDefinition {
	cur := r.snapshot.Load().(map[string]*model.TriggerDefinition)
	return cur[name]
}

// List returns the registered trigger names, sorted.
func (r *Registry) List() []string {
	cur := r.snapshot.Load().(map[string]*model.TriggerDefinition)
	names := make([]string, 0, len(cur))
	for name := range cur {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a consistent view of all definitions. The returned slice
// is owned by the caller; the definitions themselves must be treated as
// read-only.
func (r *Registry) Snapshot() []*model.TriggerDefinition {
	cur := r.snapshot.Load().(map[string]*model.TriggerDefinition)
	defs := make([]*model.TriggerDefinition, 0, len(cur))
	for _, def := range cur {
		defs = append(defs, def)
	}
	return defs
}

// RecordExecution increments the execution counter for name.
func (r *Registry) RecordExecution(name string) {
	r.counters(name).executions.Add(1)
}

// RecordOutcomes adds action successes and failures for name.
func (r *Registry) RecordOutcomes(name string, successes, failures int) {
	c := r.counters(name)
	c.successes.Add(int64(successes))
	c.failures.Add(int64(failures))
}

// Stats returns a point-in-time copy of all per-trigger counters.
func (r *Registry) Stats() map[string]model.TriggerStats {
	out := make(map[string]model.TriggerStats)
	r.stats.Range(func(key, value interface{}) bool {
		c := value.(*triggerCounters)
		out[key.(string)] = model.TriggerStats{
			Executions: c.executions.Load(),
			Successes:  c.successes.Load(),
			Failures:   c.failures.Load(),
		}
		return true
	})
	return out
}

// StatsFor returns the counters for one trigger name.
func (r *Registry) StatsFor(name string) model.TriggerStats {
	if value, ok := r.stats.Load(name); ok {
		c := value.(*triggerCounters)
		return model.TriggerStats{
			Executions: c.executions.Load(),
			Successes:  c.successes.Load(),
			Failures:   c.failures.Load(),
		}
	}
	return model.TriggerStats{}
}

func (r *Registry) counters(name string) *triggerCounters {
	if value, ok := r.stats.Load(name); ok {
		return value.(*triggerCounters)
	}
	value, _ := r.stats.LoadOrStore(name, &triggerCounters{})
	return value.(*triggerCounters)
}
