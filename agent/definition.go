// Package agent defines the contract every agent type implements, the
// metadata (AgentDefinition) the registry and DSL layer need to describe
// one, and the structural AgentSpec/ChannelSpec/AgentStreamSpec shapes
// that make a stream persistable and reusable as JSON.
package agent

import "github.com/amurg-ai/streamkit/value"

// ConfigKind enumerates the allowed types for a configuration entry.
type ConfigKind string

const (
	ConfigUnit    ConfigKind = "unit"
	ConfigBoolean ConfigKind = "boolean"
	ConfigInteger ConfigKind = "integer"
	ConfigNumber  ConfigKind = "number"
	ConfigString  ConfigKind = "string"
	ConfigText    ConfigKind = "text"
	ConfigObject  ConfigKind = "object"
)

// ConfigCustom builds a "custom" ConfigKind tagged with a type name, the
// way the teacher's adapter-specific config structs (ClaudeCodeConfig,
// CodexConfig, ...) each tag a distinct sub-shape.
func ConfigCustom(typeTag string) ConfigKind {
	return ConfigKind("custom:" + typeTag)
}

// ConfigSpec describes one typed, named configuration entry a definition
// exposes.
type ConfigSpec struct {
	Name        string
	Kind        ConfigKind
	Default     value.Value
	Title       string
	Description string
	HideTitle   bool
	ReadOnly    bool
}

// ConfigSpecs is an ordered collection of ConfigSpec, keyed by name for
// lookup but iterated in Order for stable display/serialization.
type ConfigSpecs struct {
	Order []string
	byKey map[string]ConfigSpec
}

// NewConfigSpecs builds a ConfigSpecs from specs in their declared order.
func NewConfigSpecs(specs ...ConfigSpec) ConfigSpecs {
	cs := ConfigSpecs{byKey: make(map[string]ConfigSpec, len(specs))}
	for _, s := range specs {
		if _, exists := cs.byKey[s.Name]; !exists {
			cs.Order = append(cs.Order, s.Name)
		}
		cs.byKey[s.Name] = s
	}
	return cs
}

// Get returns the spec for name, if declared.
func (cs ConfigSpecs) Get(name string) (ConfigSpec, bool) {
	s, ok := cs.byKey[name]
	return s, ok
}

// Defaults materializes an AgentConfigs populated with each spec's default.
func (cs ConfigSpecs) Defaults() Configs {
	out := NewConfigs()
	for _, name := range cs.Order {
		out = out.With(name, cs.byKey[name].Default)
	}
	return out
}

// Merge returns a new ConfigSpecs with other's entries layered on top of
// cs: entries other declares under a name cs already has override that
// entry in place, and entries other declares under a new name are
// appended after cs's own order. Used to combine a definition's
// ConfigSpecs with a per-instance AgentSpec.ConfigSpecs without
// discarding either.
func (cs ConfigSpecs) Merge(other ConfigSpecs) ConfigSpecs {
	out := NewConfigSpecs()
	for _, name := range cs.Order {
		out.Order = append(out.Order, name)
		out.byKey[name] = cs.byKey[name]
	}
	for _, name := range other.Order {
		if _, exists := out.byKey[name]; !exists {
			out.Order = append(out.Order, name)
		}
		out.byKey[name] = other.byKey[name]
	}
	return out
}

// Configs is an immutable, ordered map of instance/global configuration
// values (as opposed to ConfigSpecs, which describes the allowed shape).
type Configs struct {
	order []string
	byKey map[string]value.Value
}

// NewConfigs returns an empty Configs.
func NewConfigs() Configs {
	return Configs{byKey: make(map[string]value.Value)}
}

// With returns a new Configs with key bound to v.
func (c Configs) With(key string, v value.Value) Configs {
	order := c.order
	byKey := make(map[string]value.Value, len(c.byKey)+1)
	for k, existing := range c.byKey {
		byKey[k] = existing
	}
	if _, exists := byKey[key]; !exists {
		order = append(append([]string(nil), order...), key)
	}
	byKey[key] = v
	return Configs{order: order, byKey: byKey}
}

// Merge returns a new Configs with other's entries merged key-by-key on
// top of c.
func (c Configs) Merge(other Configs) Configs {
	out := c
	for _, k := range other.order {
		out = out.With(k, other.byKey[k])
	}
	return out
}

// Get returns the value bound to key, if present.
func (c Configs) Get(key string) (value.Value, bool) {
	v, ok := c.byKey[key]
	return v, ok
}

// Keys returns the configured keys in insertion order.
func (c Configs) Keys() []string {
	return append([]string(nil), c.order...)
}

// Len reports the number of configured keys.
func (c Configs) Len() int { return len(c.byKey) }

// Factory constructs a new Agent instance for a given AgentSpec. hub is
// typed as the HubHandle interface declared in this package, which
// avoids an import cycle between this package and the router package
// that implements HubHandle.
type Factory func(hub HubHandle, id string, spec AgentSpec) (Agent, error)

// Definition is immutable metadata describing one registered agent type.
type Definition struct {
	Name           string
	Kind           string
	Title          string
	Category       string
	Description    string
	Inputs         []string
	Outputs        []string
	ConfigSpecs    ConfigSpecs
	GlobalConfigs  ConfigSpecs
	NativeThread   bool
	New            Factory
}
