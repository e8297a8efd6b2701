// Package gateway is a thin client abstraction over the Gemini API.
//
// One conversation turn against the model is an exchange: a Complete
// call carrying the system instruction, tool schemas, history window and
// the new user message, followed by zero or more Continue calls feeding
// tool results back. Every call returns a fresh [Turn] value; the
// gateway never mutates a response in place.
//
// The gateway performs no internal retries. Any transport or API error
// wraps [ErrUnavailable] for the orchestrator to surface.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// ErrUnavailable indicates the model service could not complete a call
// (transport, timeout or quota). Checked with errors.Is().
var ErrUnavailable = errors.New("model unavailable")

// Role identifies the speaker of a history message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one history entry supplied to the model.
type Message struct {
	Role Role
	Text string
}

// ToolSchema declares one callable tool to the model.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  *genai.Schema
}

// ToolCall is a structured request from the model to invoke a tool.
type ToolCall struct {
	Name string
	Args map[string]any
}

// ToolResult carries one tool outcome back to the model. Output is
// either structured data or a human-readable error string; the tool
// contract guarantees it is always renderable.
type ToolResult struct {
	Name   string
	Output any
}

// TurnKind tags the variant of a model turn.
type TurnKind int

const (
	// TurnFinal is a natural-language answer.
	TurnFinal TurnKind = iota

	// TurnToolCalls is a request to execute one or more tools.
	TurnToolCalls
)

// Turn is the tagged result of one model call: either a final answer or
// a batch of tool calls, never both. Zero tool calls always means a
// final answer. Text is populated for both kinds; for TurnToolCalls it
// holds whatever prose accompanied the calls, which becomes the reply
// of record if the loop budget runs out.
type Turn struct {
	Kind  TurnKind
	Text  string
	Calls []ToolCall
}

// Request is the input to one Complete call.
type Request struct {
	System   string
	Tools    []ToolSchema
	History  []Message
	UserText string
}

// Exchange continues a single model conversation after tool execution.
type Exchange interface {
	Continue(ctx context.Context, results []ToolResult) (*Turn, error)
}

// Config contains the parameters for a gateway Client.
type Config struct {
	APIKey string
	Model  string
	Logger *slog.Logger
}

// Client talks to the Gemini API. It is safe for concurrent use; each
// Complete call produces an independent exchange.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewClient creates a gateway client for the Gemini API.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("model name is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	return &Client{client: client, model: cfg.Model, logger: logger}, nil
}

// Complete starts a model exchange and returns its first turn together
// with the Exchange handle used to feed tool results back.
func (c *Client) Complete(ctx context.Context, req Request) (*Turn, Exchange, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		var role genai.Role = genai.RoleUser
		if m.Role == RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.UserText, genai.RoleUser))

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			}
		}
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	ex := &exchange{client: c, contents: contents, config: cfg}
	turn, err := ex.generate(ctx)
	if err != nil {
		return nil, nil, err
	}

	c.logger.Debug("model exchange started",
		"model", c.model,
		"history", len(req.History),
		"tools", len(req.Tools),
		"tool_calls", len(turn.Calls))

	return turn, ex, nil
}

// exchange accumulates the contents of one model conversation. It is
// used by a single orchestrator turn and is not safe for concurrent use.
type exchange struct {
	client   *Client
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

// Continue feeds a batch of tool results back and returns the next turn.
func (e *exchange) Continue(ctx context.Context, results []ToolResult) (*Turn, error) {
	parts := make([]*genai.Part, 0, len(results))
	for _, r := range results {
		parts = append(parts, genai.NewPartFromFunctionResponse(r.Name, responsePayload(r.Output)))
	}
	e.contents = append(e.contents, &genai.Content{
		Role:  genai.RoleUser,
		Parts: parts,
	})

	return e.generate(ctx)
}

// generate performs one GenerateContent call, records the model's reply
// in the running contents, and returns it as a fresh Turn.
func (e *exchange) generate(ctx context.Context) (*Turn, error) {
	resp, err := e.client.client.Models.GenerateContent(ctx, e.client.model, e.contents, e.config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		e.contents = append(e.contents, resp.Candidates[0].Content)
	}

	return turnFromResponse(resp), nil
}

// turnFromResponse maps an API response onto the tagged Turn variant.
// A response with zero function calls is always a final answer, even
// when its text is empty.
func turnFromResponse(resp *genai.GenerateContentResponse) *Turn {
	turn := &Turn{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return turn
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.Text != "" {
			text += part.Text
		}
		if part.FunctionCall != nil {
			turn.Calls = append(turn.Calls, ToolCall{
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
		}
	}

	turn.Text = text
	if len(turn.Calls) > 0 {
		turn.Kind = TurnToolCalls
	}
	return turn
}

// responsePayload shapes a tool output for the function-response part.
// Structured maps pass through; everything else is wrapped.
func responsePayload(output any) map[string]any {
	if m, ok := output.(map[string]any); ok {
		return m
	}
	return map[string]any{"output": output}
}
