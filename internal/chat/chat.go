// Package chat orchestrates one conversational turn: it resolves the
// caller's context, persists the user message, runs the bounded
// model/tool loop against the gateway, and persists the reply.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/schoolmind/schoolmind/internal/gateway"
	"github.com/schoolmind/schoolmind/internal/profile"
	"github.com/schoolmind/schoolmind/internal/session"
	"github.com/schoolmind/schoolmind/internal/tools"
)

// Sentinel errors for configuration and input validation.
var (
	ErrConfigNil    = errors.New("chat: config is nil")
	ErrNoGateway    = errors.New("chat: gateway is required")
	ErrNoSessions   = errors.New("chat: session store is required")
	ErrNoResolver   = errors.New("chat: context resolver is required")
	ErrNoRegistry   = errors.New("chat: tool registry is required")
	ErrEmptyMessage = errors.New("chat: message is empty")
)

// ModelGateway is the model access the assistant depends on. Complete
// opens an exchange; the returned [gateway.Exchange] continues it after
// tool execution.
type ModelGateway interface {
	Complete(ctx context.Context, req gateway.Request) (*gateway.Turn, gateway.Exchange, error)
}

// SessionStore is the persistence surface the assistant depends on.
// Implemented by session.Store.
type SessionStore interface {
	CreateSession(ctx context.Context, ownerID, firstMessage string) (*session.Session, error)
	OwnedSession(ctx context.Context, id uuid.UUID, ownerID string) (*session.Session, error)
	AddMessage(ctx context.Context, sessionID uuid.UUID, role, content string) (*session.Message, error)
	RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int32) ([]*session.Message, error)
}

// ContextResolver resolves a caller identity into conversation context.
// Implemented by profile.Resolver.
type ContextResolver interface {
	Resolve(ctx context.Context, callerID string) profile.Context
}

// Config contains the dependencies and tuning knobs for an Assistant.
type Config struct {
	Gateway  ModelGateway
	Sessions SessionStore
	Resolver ContextResolver
	Registry *tools.Registry
	Logger   *slog.Logger

	// MaxToolRounds bounds how many times one turn may go back to the
	// model with tool results. The initial call is not counted.
	MaxToolRounds int

	// HistoryWindow is the number of prior messages supplied to the
	// model as conversation history.
	HistoryWindow int

	// Limiter throttles model calls across all callers. Optional.
	Limiter *rate.Limiter
}

func (c *Config) validate() error {
	if c == nil {
		return ErrConfigNil
	}
	if c.Gateway == nil {
		return ErrNoGateway
	}
	if c.Sessions == nil {
		return ErrNoSessions
	}
	if c.Resolver == nil {
		return ErrNoResolver
	}
	if c.Registry == nil {
		return ErrNoRegistry
	}
	if c.MaxToolRounds < 1 {
		return fmt.Errorf("chat: max tool rounds must be at least 1, got %d", c.MaxToolRounds)
	}
	if c.HistoryWindow < 1 {
		return fmt.Errorf("chat: history window must be at least 1, got %d", c.HistoryWindow)
	}
	return nil
}

// Reply is the assistant's answer to one user message.
type Reply struct {
	SessionID uuid.UUID
	Text      string
	CreatedAt time.Time
}

// Assistant turns user messages into grounded replies.
//
// Assistant is safe for concurrent use by multiple goroutines.
type Assistant struct {
	gateway   ModelGateway
	sessions  SessionStore
	resolver  ContextResolver
	registry  *tools.Registry
	logger    *slog.Logger
	maxRounds int
	window    int32
	limiter   *rate.Limiter
}

// New creates an Assistant from cfg.
func New(cfg *Config) (*Assistant, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Assistant{
		gateway:   cfg.Gateway,
		sessions:  cfg.Sessions,
		resolver:  cfg.Resolver,
		registry:  cfg.Registry,
		logger:    logger,
		maxRounds: cfg.MaxToolRounds,
		window:    int32(cfg.HistoryWindow),
		limiter:   cfg.Limiter,
	}, nil
}

// Handle processes one user message and returns the assistant's reply.
//
// A zero sessionID starts a new session titled from the message. The
// user message is persisted before the model is called, so a model
// failure still leaves the message in the transcript; no assistant
// message is recorded in that case.
func (a *Assistant) Handle(ctx context.Context, callerID string, sessionID uuid.UUID, text string) (*Reply, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	sess, err := a.resolveSession(ctx, callerID, sessionID, text)
	if err != nil {
		return nil, err
	}

	caller := a.resolver.Resolve(ctx, callerID)

	// Load the prior window before appending the new message, so the
	// model sees the message once, as the live user turn.
	history, err := a.sessions.RecentMessages(ctx, sess.ID, a.window)
	if err != nil {
		return nil, err
	}

	if _, err := a.sessions.AddMessage(ctx, sess.ID, session.RoleUser, text); err != nil {
		return nil, err
	}

	turn, err := a.converse(ctx, caller, history, text)
	if err != nil {
		return nil, err
	}

	msg, err := a.sessions.AddMessage(ctx, sess.ID, session.RoleAssistant, turn.Text)
	if err != nil {
		return nil, err
	}

	return &Reply{SessionID: sess.ID, Text: turn.Text, CreatedAt: msg.CreatedAt}, nil
}

// resolveSession loads the caller's session or lazily creates one.
func (a *Assistant) resolveSession(ctx context.Context, callerID string, sessionID uuid.UUID, firstMessage string) (*session.Session, error) {
	if sessionID == uuid.Nil {
		return a.sessions.CreateSession(ctx, callerID, firstMessage)
	}
	return a.sessions.OwnedSession(ctx, sessionID, callerID)
}

// converse runs the bounded model/tool loop and returns the turn whose
// text becomes the reply of record.
func (a *Assistant) converse(ctx context.Context, caller profile.Context, history []*session.Message, text string) (*gateway.Turn, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for model slot: %w", err)
		}
	}

	req := gateway.Request{
		System:   SystemInstruction(caller, a.registry.Names()),
		Tools:    a.registry.Schemas(),
		History:  gatewayHistory(history),
		UserText: text,
	}

	turn, exch, err := a.gateway.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	for rounds := 0; turn.Kind == gateway.TurnToolCalls; rounds++ {
		if rounds >= a.maxRounds {
			// Out of budget: answer with whatever prose the model
			// sent alongside its last tool request.
			a.logger.Warn("tool round budget exhausted",
				"rounds", rounds, "pending_calls", len(turn.Calls))
			break
		}

		results := a.executeCalls(ctx, caller, turn.Calls)

		turn, err = exch.Continue(ctx, results)
		if err != nil {
			return nil, err
		}
	}

	return turn, nil
}

// executeCalls runs one batch of tool calls concurrently, preserving
// the model's call order in the results. Tools report failures as
// renderable output, never as errors.
func (a *Assistant) executeCalls(ctx context.Context, caller profile.Context, calls []gateway.ToolCall) []gateway.ToolResult {
	results := make([]gateway.ToolResult, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			var res tools.Result
			if tool, ok := a.registry.Lookup(call.Name); ok {
				res = tool.Execute(gctx, caller, call.Args)
			} else {
				a.logger.Warn("model requested unknown tool", "tool", call.Name)
				res = tools.Unsupported(call.Name)
			}
			results[i] = gateway.ToolResult{Name: res.Name, Output: res.Output}
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	return results
}

// gatewayHistory maps persisted messages onto model history entries.
func gatewayHistory(messages []*session.Message) []gateway.Message {
	if len(messages) == 0 {
		return nil
	}
	out := make([]gateway.Message, len(messages))
	for i, m := range messages {
		role := gateway.RoleModel
		if m.Role == session.RoleUser {
			role = gateway.RoleUser
		}
		out[i] = gateway.Message{Role: role, Text: m.Content}
	}
	return out
}
