package tools

import (
	"fmt"

	"github.com/schoolmind/schoolmind/internal/gateway"
)

// Registry is the fixed, statically declared tool set, keyed by tool
// name and resolved at startup.
//
// Registry is immutable after construction and safe for concurrent use
// across in-flight requests.
type Registry struct {
	byName map[string]Tool
	names  []string
}

// NewRegistry builds a registry from the given tools. Duplicate tool
// names are a wiring bug and rejected.
func NewRegistry(ts ...Tool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]Tool, len(ts)),
		names:  make([]string, 0, len(ts)),
	}
	for _, t := range ts {
		name := t.Name()
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		r.byName[name] = t
		r.names = append(r.names, name)
	}
	return r, nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Schemas returns the declarations handed to the model gateway.
func (r *Registry) Schemas() []gateway.ToolSchema {
	schemas := make([]gateway.ToolSchema, 0, len(r.names))
	for _, name := range r.names {
		t := r.byName[name]
		schemas = append(schemas, gateway.ToolSchema{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return schemas
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.names)
}
