package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Querier defines the database operations the Store depends on. The
// interface is defined here, by the consumer, so the Store can be unit
// tested against a mock while production uses the pgx-backed [Queries].
type Querier interface {
	InsertSession(ctx context.Context, id uuid.UUID, ownerID, title string) (*Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*Session, error)
	ListSessionsByOwner(ctx context.Context, ownerID string) ([]Summary, error)
	InsertMessage(ctx context.Context, id, sessionID uuid.UUID, role, content string) (*Message, error)
	RecentMessagesDesc(ctx context.Context, sessionID uuid.UUID, limit int32) ([]*Message, error)
	MessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*Message, error)
	TouchSession(ctx context.Context, id uuid.UUID) error
}

// Store manages session and message persistence.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	querier Querier
	logger  *slog.Logger
}

// New creates a new Store.
func New(querier Querier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{querier: querier, logger: logger}
}

// CreateSession creates a new session owned by ownerID. The title is
// derived from the first message and fixed for the session's lifetime.
func (s *Store) CreateSession(ctx context.Context, ownerID, firstMessage string) (*Session, error) {
	sess, err := s.querier.InsertSession(ctx, uuid.New(), ownerID, DeriveTitle(firstMessage))
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	s.logger.Debug("created session", "id", sess.ID, "owner", sess.OwnerID)
	return sess, nil
}

// Session retrieves a session by id. Returns [ErrNotFound] if it does
// not exist.
func (s *Store) Session(ctx context.Context, id uuid.UUID) (*Session, error) {
	sess, err := s.querier.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session %s: %w", id, err)
	}
	return sess, nil
}

// OwnedSession retrieves a session by id and verifies ownership.
// A session belonging to a different owner is reported as [ErrNotFound]
// rather than revealing its existence.
func (s *Store) OwnedSession(ctx context.Context, id uuid.UUID, ownerID string) (*Session, error) {
	sess, err := s.Session(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return sess, nil
}

// SessionsByOwner lists the owner's sessions with message counts,
// most recently active first.
func (s *Store) SessionsByOwner(ctx context.Context, ownerID string) ([]Summary, error) {
	summaries, err := s.querier.ListSessionsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	return summaries, nil
}

// AddMessage appends one message to a session. The insert is a single
// atomic statement; the session's activity timestamp is refreshed
// best-effort afterwards.
func (s *Store) AddMessage(ctx context.Context, sessionID uuid.UUID, role, content string) (*Message, error) {
	if role != RoleUser && role != RoleAssistant {
		return nil, fmt.Errorf("invalid message role %q", role)
	}

	msg, err := s.querier.InsertMessage(ctx, uuid.New(), sessionID, role, content)
	if err != nil {
		return nil, fmt.Errorf("appending message: %w", err)
	}

	if err := s.querier.TouchSession(ctx, sessionID); err != nil {
		s.logger.Warn("refreshing session activity", "session_id", sessionID, "error", err)
	}

	return msg, nil
}

// RecentMessages returns up to limit of the most recent messages in the
// session, ordered oldest to newest.
func (s *Store) RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int32) ([]*Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	messages, err := s.querier.RecentMessagesDesc(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recent messages: %w", err)
	}

	// The query returns newest-first; flip to chronological order.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// SessionMessages returns the full ordered message sequence of a
// session. Returns [ErrNotFound] if the session does not exist.
func (s *Store) SessionMessages(ctx context.Context, sessionID uuid.UUID) ([]*Message, error) {
	if _, err := s.Session(ctx, sessionID); err != nil {
		return nil, err
	}

	messages, err := s.querier.MessagesBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading messages: %w", err)
	}
	return messages, nil
}
