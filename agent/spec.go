package agent

import (
	"encoding/json"

	"github.com/amurg-ai/streamkit/value"
)

// AgentSpec is an instance's structural data: everything needed to
// reconstruct it inside a stream. Extensions preserves any JSON fields
// the runtime does not interpret, so round-tripping a stream never
// drops host-defined metadata.
type AgentSpec struct {
	ID          string
	DefName     string
	Inputs      []string
	Outputs     []string
	Configs     Configs
	ConfigSpecs ConfigSpecs
	Disabled    bool
	Extensions  map[string]json.RawMessage
}

// ChannelSpec is the (source, source_pin, target, target_pin) quadruple
// that identifies one channel.
type ChannelSpec struct {
	SourceAgentID string
	SourcePin     string
	TargetAgentID string
	TargetPin     string
}

// WildcardPin is the special pin name that matches any emitted pin on
// the source side, and is substituted with the actual source pin (or
// board name) on the target side.
const WildcardPin = "*"

// AgentStreamSpec is the persistable shape of a stream: its agents, its
// channels, and whether it should run as soon as it's loaded.
type AgentStreamSpec struct {
	Agents     []AgentSpec
	Channels   []ChannelSpec
	RunOnStart bool
	Extensions map[string]json.RawMessage
}

// jsonConfigSpec/jsonAgentSpec/jsonStreamSpec are the wire shapes used
// for marshaling; AgentSpec/AgentStreamSpec themselves are not directly
// JSON-tagged because ConfigSpecs/Configs carry ordering metadata that
// plain struct tags can't express.

type jsonConfigSpec struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	Default     value.Value  `json:"default"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	HideTitle   bool         `json:"hide_title,omitempty"`
	ReadOnly    bool         `json:"readonly,omitempty"`
}

type jsonAgentSpec struct {
	ID          string                     `json:"id"`
	DefName     string                     `json:"def_name"`
	Inputs      []string                   `json:"inputs,omitempty"`
	Outputs     []string                   `json:"outputs,omitempty"`
	Configs     map[string]value.Value     `json:"configs,omitempty"`
	ConfigOrder []string                   `json:"config_order,omitempty"`
	ConfigSpecs []jsonConfigSpec           `json:"config_specs,omitempty"`
	Disabled    bool                       `json:"disabled,omitempty"`
	Extensions  map[string]json.RawMessage `json:"-"`
}

// MarshalJSON flattens Extensions alongside the known fields, the way
// the teacher's config layer preserves unknown keys round-trip.
func (s AgentSpec) MarshalJSON() ([]byte, error) {
	js := jsonAgentSpec{
		ID:          s.ID,
		DefName:     s.DefName,
		Inputs:      s.Inputs,
		Outputs:     s.Outputs,
		Disabled:    s.Disabled,
		ConfigOrder: s.Configs.Keys(),
	}
	if s.Configs.Len() > 0 {
		js.Configs = make(map[string]value.Value, s.Configs.Len())
		for _, k := range s.Configs.Keys() {
			v, _ := s.Configs.Get(k)
			js.Configs[k] = v
		}
	}
	for _, name := range s.ConfigSpecs.Order {
		cs, _ := s.ConfigSpecs.Get(name)
		js.ConfigSpecs = append(js.ConfigSpecs, jsonConfigSpec{
			Name: cs.Name, Kind: string(cs.Kind), Default: cs.Default,
			Title: cs.Title, Description: cs.Description,
			HideTitle: cs.HideTitle, ReadOnly: cs.ReadOnly,
		})
	}

	base, err := json.Marshal(js)
	if err != nil {
		return nil, err
	}
	return mergeExtensions(base, s.Extensions)
}

// UnmarshalJSON restores an AgentSpec, preserving any fields it does
// not recognize into Extensions.
func (s *AgentSpec) UnmarshalJSON(data []byte) error {
	var js jsonAgentSpec
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*s = AgentSpec{
		ID:       js.ID,
		DefName:  js.DefName,
		Inputs:   js.Inputs,
		Outputs:  js.Outputs,
		Disabled: js.Disabled,
	}
	configs := NewConfigs()
	for _, k := range js.ConfigOrder {
		if v, ok := js.Configs[k]; ok {
			configs = configs.With(k, v)
		}
	}
	for k, v := range js.Configs {
		if _, ok := configs.Get(k); !ok {
			configs = configs.With(k, v)
		}
	}
	s.Configs = configs

	var specs []ConfigSpec
	for _, cs := range js.ConfigSpecs {
		specs = append(specs, ConfigSpec{
			Name: cs.Name, Kind: ConfigKind(cs.Kind), Default: cs.Default,
			Title: cs.Title, Description: cs.Description,
			HideTitle: cs.HideTitle, ReadOnly: cs.ReadOnly,
		})
	}
	s.ConfigSpecs = NewConfigSpecs(specs...)

	ext, err := extraFields(data, "id", "def_name", "inputs", "outputs", "configs", "config_order", "config_specs", "disabled")
	if err != nil {
		return err
	}
	s.Extensions = ext
	return nil
}

type jsonChannelSpec struct {
	SourceAgentID string `json:"source"`
	SourcePin     string `json:"source_handle"`
	TargetAgentID string `json:"target"`
	TargetPin     string `json:"target_handle"`
}

func (c ChannelSpec) toJSON() jsonChannelSpec {
	return jsonChannelSpec{c.SourceAgentID, c.SourcePin, c.TargetAgentID, c.TargetPin}
}

type jsonStreamSpec struct {
	Agents     []AgentSpec       `json:"agents"`
	Channels   []jsonChannelSpec `json:"channels"`
	RunOnStart bool              `json:"run_on_start,omitempty"`
}

// MarshalJSON flattens Extensions alongside the known fields.
func (s AgentStreamSpec) MarshalJSON() ([]byte, error) {
	js := jsonStreamSpec{Agents: s.Agents, RunOnStart: s.RunOnStart}
	for _, c := range s.Channels {
		js.Channels = append(js.Channels, c.toJSON())
	}
	base, err := json.Marshal(js)
	if err != nil {
		return nil, err
	}
	return mergeExtensions(base, s.Extensions)
}

// UnmarshalJSON restores an AgentStreamSpec, preserving unrecognized
// fields into Extensions.
func (s *AgentStreamSpec) UnmarshalJSON(data []byte) error {
	var js jsonStreamSpec
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	s.Agents = js.Agents
	s.RunOnStart = js.RunOnStart
	s.Channels = nil
	for _, c := range js.Channels {
		s.Channels = append(s.Channels, ChannelSpec{c.SourceAgentID, c.SourcePin, c.TargetAgentID, c.TargetPin})
	}
	ext, err := extraFields(data, "agents", "channels", "run_on_start")
	if err != nil {
		return err
	}
	s.Extensions = ext
	return nil
}

// mergeExtensions re-opens a marshaled object and injects any
// extension fields the typed struct didn't carry.
func mergeExtensions(base []byte, ext map[string]json.RawMessage) ([]byte, error) {
	if len(ext) == 0 {
		return base, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range ext {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

// extraFields returns every top-level key of a JSON object not in known.
func extraFields(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	skip := make(map[string]bool, len(known))
	for _, k := range known {
		skip[k] = true
	}
	var out map[string]json.RawMessage
	for k, v := range m {
		if skip[k] {
			continue
		}
		if out == nil {
			out = make(map[string]json.RawMessage)
		}
		out[k] = v
	}
	return out, nil
}
