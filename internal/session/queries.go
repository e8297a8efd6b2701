package session

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx pool/connection behavior the queries need.
// Both *pgxpool.Pool and pgx.Tx satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries is the PostgreSQL implementation of [Querier].
type Queries struct {
	db DBTX
}

// NewQueries creates a Queries instance over the given database handle.
func NewQueries(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) InsertSession(ctx context.Context, id uuid.UUID, ownerID, title string) (*Session, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO sessions (id, owner_id, title)
		 VALUES ($1, $2, $3)
		 RETURNING id, owner_id, title, created_at, updated_at`,
		id, ownerID, title)

	var s Session
	if err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (q *Queries) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	row := q.db.QueryRow(ctx,
		`SELECT id, owner_id, title, created_at, updated_at
		 FROM sessions WHERE id = $1`,
		id)

	var s Session
	if err := row.Scan(&s.ID, &s.OwnerID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (q *Queries) ListSessionsByOwner(ctx context.Context, ownerID string) ([]Summary, error) {
	rows, err := q.db.Query(ctx,
		`SELECT s.id, s.owner_id, s.title, s.created_at, s.updated_at,
		        count(m.id) AS message_count
		 FROM sessions s
		 LEFT JOIN messages m ON m.session_id = s.id
		 WHERE s.owner_id = $1
		 GROUP BY s.id
		 ORDER BY s.updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var sm Summary
		if err := rows.Scan(&sm.ID, &sm.OwnerID, &sm.Title, &sm.CreatedAt, &sm.UpdatedAt, &sm.MessageCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, sm)
	}
	return summaries, rows.Err()
}

func (q *Queries) InsertMessage(ctx context.Context, id, sessionID uuid.UUID, role, content string) (*Message, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO messages (id, session_id, role, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, session_id, role, content, created_at`,
		id, sessionID, role, content)

	var m Message
	if err := row.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecentMessagesDesc returns up to limit messages newest-first. The
// Store flips them to chronological order.
func (q *Queries) RecentMessagesDesc(ctx context.Context, sessionID uuid.UUID, limit int32) ([]*Message, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM messages WHERE session_id = $1
		 ORDER BY seq DESC
		 LIMIT $2`,
		sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (q *Queries) MessagesBySession(ctx context.Context, sessionID uuid.UUID) ([]*Message, error) {
	rows, err := q.db.Query(ctx,
		`SELECT id, session_id, role, content, created_at
		 FROM messages WHERE session_id = $1
		 ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func (q *Queries) TouchSession(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE sessions SET updated_at = now() WHERE id = $1`, id)
	return err
}

func scanMessages(rows pgx.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
