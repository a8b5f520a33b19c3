// Package streamctx implements AgentContext: an event-scoped identity,
// variable bag, and frame stack used to track a single flow of data across
// agents, including the branching lineage produced by fan-out.
package streamctx

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/amurg-ai/streamkit/internal/errs"
	"github.com/amurg-ai/streamkit/value"
)

// idCounter is the process-wide, monotonically increasing context id
// source. Ids start at 1 and are never reused.
var idCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&idCounter, 1)
}

// Frame is a single named entry on a Context's frame stack. The "map"
// frame family carries {index, length} for fan-out lineage tracking.
type Frame struct {
	Name string
	Data value.Value
}

const mapFrameName = "map"

// mapFrameData builds the {index, length} payload of a map-family frame.
func mapFrameData(index, length int) value.Value {
	v, _ := value.Object(nil).Set("index", value.Integer(int64(index)))
	v, _ = v.Set("length", value.Integer(int64(length)))
	return v
}

// Context is the immutable, copy-on-write per-event carrier described in
// spec.md §3/§4.2. All mutators return a new Context sharing structure
// with the receiver; the id is preserved across every derivation.
type Context struct {
	id     uint64
	vars   map[string]value.Value // nil until first WithVar
	frames []Frame                // nil until first PushFrame
}

// New creates a Context with a freshly minted id and no state.
func New() Context {
	return Context{id: nextID()}
}

// ID returns the context's unique identifier.
func (c Context) ID() uint64 { return c.id }

// GetVar retrieves a stored variable, if present.
func (c Context) GetVar(key string) (value.Value, bool) {
	if c.vars == nil {
		return value.Value{}, false
	}
	v, ok := c.vars[key]
	return v, ok
}

// WithVar returns a new Context with key bound to v; the receiver is
// unmodified.
func (c Context) WithVar(key string, v value.Value) Context {
	vars := make(map[string]value.Value, len(c.vars)+1)
	for k, existing := range c.vars {
		vars[k] = existing
	}
	vars[key] = v
	return Context{id: c.id, vars: vars, frames: c.frames}
}

// Frames returns the current frame stack, oldest first.
func (c Context) Frames() []Frame {
	return c.frames
}

// PushFrame appends a new frame to the end of the stack.
func (c Context) PushFrame(name string, data value.Value) Context {
	frames := append(append([]Frame(nil), c.frames...), Frame{Name: name, Data: data})
	return Context{id: c.id, vars: c.vars, frames: frames}
}

// PopFrame removes the most recently pushed frame. If the stack is empty
// it returns (Frame{}, false, c) leaving the context unchanged.
func (c Context) PopFrame() (Frame, bool, Context) {
	if len(c.frames) == 0 {
		return Frame{}, false, c
	}
	last := c.frames[len(c.frames)-1]
	rest := append([]Frame(nil), c.frames[:len(c.frames)-1]...)
	if len(rest) == 0 {
		rest = nil
	}
	return last, true, Context{id: c.id, vars: c.vars, frames: rest}
}

// PushMapFrame pushes a "map" frame carrying {index, length}. It fails
// with InvalidValue if length == 0 or index >= length.
func (c Context) PushMapFrame(index, length int) (Context, error) {
	if length == 0 || index < 0 || index >= length {
		return c, errs.New(errs.InvalidValue, "invalid map frame index=%d length=%d", index, length)
	}
	return c.PushFrame(mapFrameName, mapFrameData(index, length)), nil
}

// PopMapFrame pops the top frame, requiring it to be present and of the
// "map" family. On failure the context is returned unchanged.
func (c Context) PopMapFrame() (Frame, Context, error) {
	if len(c.frames) == 0 {
		return Frame{}, c, errs.New(errs.InvalidValue, "pop_map_frame: empty frame stack")
	}
	top := c.frames[len(c.frames)-1]
	if top.Name != mapFrameName {
		return Frame{}, c, errs.New(errs.InvalidValue, "pop_map_frame: top frame is %q, not %q", top.Name, mapFrameName)
	}
	frame, _, next := c.PopFrame()
	return frame, next, nil
}

// MapFrameIndices collects the (index, length) pair of every "map" frame
// in stack order, for lineage tracking.
func (c Context) MapFrameIndices() [][2]int {
	var out [][2]int
	for _, f := range c.frames {
		if f.Name != mapFrameName {
			continue
		}
		idx, _ := f.Data.GetInt64("index")
		length, _ := f.Data.GetInt64("length")
		out = append(out, [2]int{int(idx), int(length)})
	}
	return out
}

// Key returns the ctx_key used to identify logical children of a fan-out:
// the bare id if there are no map frames, otherwise
// "id:i1:n1,i2:n2,...".
func (c Context) Key() string {
	indices := c.MapFrameIndices()
	if len(indices) == 0 {
		return fmt.Sprintf("%d", c.id)
	}
	pairs := make([]string, len(indices))
	for i, pair := range indices {
		pairs[i] = fmt.Sprintf("%d:%d", pair[0], pair[1])
	}
	return fmt.Sprintf("%d:%s", c.id, strings.Join(pairs, ","))
}
