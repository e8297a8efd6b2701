package session

import (
	"time"

	"github.com/google/uuid"
)

// Role constants define valid message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// TitleMaxLength is the maximum number of runes kept from the first
// message when deriving a session title.
const TitleMaxLength = 50

// titleEllipsis marks a truncated title.
const titleEllipsis = "..."

// Session represents one ongoing conversation thread.
// The owner is immutable after creation.
type Session struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summary is a session together with its message count, as returned by
// owner-scoped listings.
type Summary struct {
	Session
	MessageCount int `json:"message_count"`
}

// Message is one turn within a session.
type Message struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// DeriveTitle derives a session title from the first user message: the
// first TitleMaxLength runes, with an ellipsis appended only when the
// original text was longer. The derivation is idempotent with respect to
// its input and counts runes, not bytes.
func DeriveTitle(firstMessage string) string {
	runes := []rune(firstMessage)
	if len(runes) <= TitleMaxLength {
		return firstMessage
	}
	return string(runes[:TitleMaxLength]) + titleEllipsis
}
