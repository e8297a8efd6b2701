// Package directory provides read-only lookups against the school
// directory: member profiles, subjects and notices. The tables are
// owned by the surrounding platform; this package only reads them.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrProfileNotFound indicates the caller identity has no profile row.
var ErrProfileNotFound = errors.New("profile not found")

// Profile is a member's directory entry, joined with their organization.
type Profile struct {
	UserID      string
	DisplayName string
	Role        string
	OrgID       uuid.UUID
	OrgName     string
}

// Notice is one announcement within an organization.
type Notice struct {
	Title      string
	Body       string
	AuthorName string
	PostedAt   time.Time
	ExpiresAt  *time.Time // nil = never expires
}

// DBTX is the subset of pgx pool/connection behavior the store needs.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads directory data from PostgreSQL.
//
// Store is safe for concurrent use; it holds no mutable state.
type Store struct {
	db     DBTX
	logger *slog.Logger
}

// New creates a directory store.
func New(db DBTX, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Profile returns the directory profile for a caller identity.
// Returns [ErrProfileNotFound] when no row exists.
func (s *Store) Profile(ctx context.Context, userID string) (*Profile, error) {
	row := s.db.QueryRow(ctx,
		`SELECT u.id, u.display_name, u.role, u.org_id, o.name
		 FROM users u
		 JOIN organizations o ON o.id = u.org_id
		 WHERE u.id = $1`,
		userID)

	var p Profile
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.Role, &p.OrgID, &p.OrgName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("looking up profile %s: %w", userID, err)
	}
	return &p, nil
}

// ListSubjects returns up to limit subject names in the organization,
// alphabetically ordered.
func (s *Store) ListSubjects(ctx context.Context, orgID uuid.UUID, limit int32) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name FROM subjects
		 WHERE org_id = $1
		 ORDER BY name ASC
		 LIMIT $2`,
		orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing subjects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListNotices returns up to limit active notices in the organization,
// newest first. A notice is active when it has no expiry or the expiry
// is in the future.
func (s *Store) ListNotices(ctx context.Context, orgID uuid.UUID, limit int32) ([]Notice, error) {
	rows, err := s.db.Query(ctx,
		`SELECT title, body, author_name, posted_at, expires_at
		 FROM notices
		 WHERE org_id = $1
		   AND (expires_at IS NULL OR expires_at > now())
		 ORDER BY posted_at DESC
		 LIMIT $2`,
		orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notices: %w", err)
	}
	defer rows.Close()

	var notices []Notice
	for rows.Next() {
		var n Notice
		if err := rows.Scan(&n.Title, &n.Body, &n.AuthorName, &n.PostedAt, &n.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scanning notice: %w", err)
		}
		notices = append(notices, n)
	}
	return notices, rows.Err()
}
