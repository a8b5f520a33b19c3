// Package registry holds the process-wide table of AgentDefinitions and
// dispatches factory construction by def_name, mirroring the adapter
// registry's register/get shape with panic-on-duplicate-registration
// semantics (definitions are meant to be registered once at process
// startup, not at runtime, so a duplicate is a programmer error).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/amurg-ai/streamkit/agent"
	"github.com/amurg-ai/streamkit/internal/errs"
)

// Registry is the process-wide table of AgentDefinitions.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]agent.Definition
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{defs: make(map[string]agent.Definition)}
}

// Register adds a definition, keyed by its Name. Panics on duplicate
// registration, matching the teacher's adapter registry.
func (r *Registry) Register(def agent.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Name]; exists {
		panic(fmt.Sprintf("agent definition already registered: %s", def.Name))
	}
	r.defs[def.Name] = def
}

// Get returns the definition for name.
func (r *Registry) Get(name string) (agent.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	if !ok {
		return agent.Definition{}, errs.New(errs.AgentDefinitionNotFound, "no agent definition registered for %q", name)
	}
	return d, nil
}

// All returns every registered definition, sorted by Name for stable
// iteration (used by Hub.Definitions, which the inspector serves).
func (r *Registry) All() []agent.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agent.Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns every registered definition name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for n := range r.defs {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
