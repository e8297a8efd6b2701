// Package tools provides the assistant's callable tool set.
//
// A tool pairs a name and parameter schema, declared to the model, with
// a typed handler. Handlers never propagate errors: any internal
// failure is converted into a human-readable error-text result, because
// the orchestrator feeds tool results back into the model verbatim and
// a hard failure would otherwise abort the whole turn.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/schoolmind/schoolmind/internal/profile"
)

// Result is the outcome of one tool execution. Output is either
// structured data or a human-readable error string; it is always
// renderable and scoped to a single orchestrator turn.
type Result struct {
	Name   string
	Output any
}

// Tool is one callable capability exposed to the model.
type Tool interface {
	// Name returns the unique identifier of the tool.
	Name() string

	// Description tells the model when to call the tool.
	Description() string

	// Parameters returns the tool's parameter schema.
	Parameters() *genai.Schema

	// Execute runs the tool. It never panics and never returns an
	// error; failures are embedded in the Result.
	Execute(ctx context.Context, caller profile.Context, args map[string]any) Result
}

// Unsupported builds the result returned when the model requests a tool
// name that is not in the registry. Fed back like any other result
// rather than aborting the turn.
func Unsupported(name string) Result {
	return Result{
		Name:   name,
		Output: fmt.Sprintf("The tool %q is not supported.", name),
	}
}

// tool is the generic Tool implementation created by [New]. Type
// erasure happens at the handler boundary so heterogeneous tools can
// share one registry while handlers keep compile-time typed inputs.
type tool struct {
	name        string
	description string
	params      *genai.Schema
	handler     func(ctx context.Context, caller profile.Context, args map[string]any) Result
}

func (t *tool) Name() string              { return t.name }
func (t *tool) Description() string       { return t.description }
func (t *tool) Parameters() *genai.Schema { return t.params }

func (t *tool) Execute(ctx context.Context, caller profile.Context, args map[string]any) Result {
	return t.handler(ctx, caller, args)
}

// New creates a tool with a typed parameter struct. The model supplies
// arguments as a map; they are converted to In via a JSON round-trip.
// Handler errors and malformed arguments both become error-text
// results, never propagated errors.
func New[In any](
	name string,
	description string,
	params *genai.Schema,
	handler func(ctx context.Context, caller profile.Context, input In) (any, error),
) Tool {
	return &tool{
		name:        name,
		description: description,
		params:      params,
		handler: func(ctx context.Context, caller profile.Context, args map[string]any) Result {
			var input In
			if len(args) > 0 {
				raw, err := json.Marshal(args)
				if err != nil {
					return errorResult(name, err)
				}
				if err := json.Unmarshal(raw, &input); err != nil {
					return errorResult(name, fmt.Errorf("invalid arguments: %w", err))
				}
			}

			output, err := handler(ctx, caller, input)
			if err != nil {
				return errorResult(name, err)
			}
			return Result{Name: name, Output: output}
		},
	}
}

// errorResult converts a tool failure into a renderable result.
func errorResult(name string, err error) Result {
	return Result{
		Name:   name,
		Output: fmt.Sprintf("The %s tool could not run: %v", name, err),
	}
}
