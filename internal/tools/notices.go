package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/schoolmind/schoolmind/internal/directory"
	"github.com/schoolmind/schoolmind/internal/profile"
)

// NoticesToolName is the registry key of the built-in announcements tool.
const NoticesToolName = "get_recent_notices"

const (
	noticesDefaultLimit = 5
	// noticesMaxLimit caps the model-supplied limit so a single tool
	// call cannot drag an unbounded result set into the prompt.
	noticesMaxLimit = 50

	noNoticesMessage = "No active notices found."

	noticeTimeLayout = "Jan 2, 2006 15:04 MST"
)

// NoticeLister is the announcements lookup the tool depends on.
// Implemented by directory.Store.
type NoticeLister interface {
	ListNotices(ctx context.Context, orgID uuid.UUID, limit int32) ([]directory.Notice, error)
}

// noticesInput is the typed parameter struct for the notices tool.
type noticesInput struct {
	Limit int `json:"limit,omitempty"`
}

// NewRecentNotices creates the built-in "fetch recent announcements"
// tool. It reads active notices for the caller's organization, newest
// first, and renders them for the model; it never writes.
func NewRecentNotices(lister NoticeLister) Tool {
	params := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"limit": {
				Type:        genai.TypeInteger,
				Description: fmt.Sprintf("Maximum number of notices to return (default %d, max %d).", noticesDefaultLimit, noticesMaxLimit),
			},
		},
	}

	return New(NoticesToolName,
		"Fetch the most recent school announcements (notices) for the caller's organization, newest first.",
		params,
		func(ctx context.Context, caller profile.Context, input noticesInput) (any, error) {
			limit := clampNoticeLimit(input.Limit)

			notices, err := lister.ListNotices(ctx, caller.OrgID, limit)
			if err != nil {
				return nil, fmt.Errorf("fetching notices: %w", err)
			}
			if len(notices) == 0 {
				return noNoticesMessage, nil
			}

			return renderNotices(notices), nil
		})
}

// clampNoticeLimit applies the default and the hard cap.
func clampNoticeLimit(limit int) int32 {
	switch {
	case limit <= 0:
		return noticesDefaultLimit
	case limit > noticesMaxLimit:
		return noticesMaxLimit
	default:
		return int32(limit)
	}
}

// renderNotices formats notices for the model, preserving their
// newest-first order. A missing expiry renders as "Never".
func renderNotices(notices []directory.Notice) string {
	var b strings.Builder
	for i, n := range notices {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, n.Title)
		fmt.Fprintf(&b, "   Posted by %s on %s (expires: %s)\n", n.AuthorName, n.PostedAt.Format(noticeTimeLayout), formatExpiry(n.ExpiresAt))
		fmt.Fprintf(&b, "   %s", n.Body)
	}
	return b.String()
}

func formatExpiry(t *time.Time) string {
	if t == nil {
		return "Never"
	}
	return t.Format(noticeTimeLayout)
}
