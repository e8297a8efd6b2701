package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/schoolmind/schoolmind/internal/directory"
	"github.com/schoolmind/schoolmind/internal/profile"
)

type mockNoticeLister struct {
	notices []directory.Notice
	err     error

	gotOrgID uuid.UUID
	gotLimit int32
}

func (m *mockNoticeLister) ListNotices(_ context.Context, orgID uuid.UUID, limit int32) ([]directory.Notice, error) {
	m.gotOrgID = orgID
	m.gotLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	return m.notices, nil
}

func noticesCaller() profile.Context {
	return profile.Context{
		DisplayName: "Dana",
		Role:        profile.RoleEducator,
		OrgID:       uuid.New(),
		OrgName:     "Northside High",
	}
}

func TestRecentNoticesEmpty(t *testing.T) {
	t.Parallel()

	lister := &mockNoticeLister{}
	tool := NewRecentNotices(lister)
	caller := noticesCaller()

	result := tool.Execute(context.Background(), caller, nil)

	if result.Output != "No active notices found." {
		t.Errorf("output = %v, want %q", result.Output, "No active notices found.")
	}
	if lister.gotOrgID != caller.OrgID {
		t.Errorf("queried org = %s, want %s", lister.gotOrgID, caller.OrgID)
	}
	if lister.gotLimit != 5 {
		t.Errorf("default limit = %d, want 5", lister.gotLimit)
	}
}

func TestRecentNoticesRendering(t *testing.T) {
	t.Parallel()

	posted := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
	expires := posted.AddDate(0, 1, 0)
	lister := &mockNoticeLister{notices: []directory.Notice{
		{Title: "Spirit Week", Body: "Dress-up themes all week.", AuthorName: "Principal Ortiz", PostedAt: posted.Add(48 * time.Hour), ExpiresAt: &expires},
		{Title: "Library Hours", Body: "Open until 6pm.", AuthorName: "Ms. Keel", PostedAt: posted},
	}}
	tool := NewRecentNotices(lister)

	result := tool.Execute(context.Background(), noticesCaller(), map[string]any{"limit": float64(2)})

	out, ok := result.Output.(string)
	if !ok {
		t.Fatalf("output type = %T, want string", result.Output)
	}
	first := strings.Index(out, "Spirit Week")
	second := strings.Index(out, "Library Hours")
	if first < 0 || second < 0 || first > second {
		t.Errorf("notices out of order or missing:\n%s", out)
	}
	if !strings.Contains(out, "Principal Ortiz") {
		t.Errorf("missing author in output:\n%s", out)
	}
	if !strings.Contains(out, "expires: Never") {
		t.Errorf("nil expiry not rendered as Never:\n%s", out)
	}
	if lister.gotLimit != 2 {
		t.Errorf("limit = %d, want 2", lister.gotLimit)
	}
}

func TestRecentNoticesLimitClamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input map[string]any
		want  int32
	}{
		{name: "missing uses default", input: nil, want: 5},
		{name: "zero uses default", input: map[string]any{"limit": float64(0)}, want: 5},
		{name: "negative uses default", input: map[string]any{"limit": float64(-3)}, want: 5},
		{name: "in range passes through", input: map[string]any{"limit": float64(12)}, want: 12},
		{name: "over cap clamps", input: map[string]any{"limit": float64(500)}, want: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lister := &mockNoticeLister{}
			tool := NewRecentNotices(lister)

			tool.Execute(context.Background(), noticesCaller(), tt.input)

			if lister.gotLimit != tt.want {
				t.Errorf("limit = %d, want %d", lister.gotLimit, tt.want)
			}
		})
	}
}

func TestRecentNoticesListerError(t *testing.T) {
	t.Parallel()

	lister := &mockNoticeLister{err: errors.New("connection refused")}
	tool := NewRecentNotices(lister)

	result := tool.Execute(context.Background(), noticesCaller(), nil)

	out, ok := result.Output.(string)
	if !ok {
		t.Fatalf("output type = %T, want string error text", result.Output)
	}
	if !strings.Contains(out, "connection refused") {
		t.Errorf("output = %q, want underlying cause", out)
	}
}

func TestRecentNoticesName(t *testing.T) {
	t.Parallel()

	tool := NewRecentNotices(&mockNoticeLister{})
	if tool.Name() != "get_recent_notices" {
		t.Errorf("Name() = %q, want %q", tool.Name(), "get_recent_notices")
	}
	if tool.Parameters() == nil {
		t.Error("Parameters() = nil, want schema")
	}
}
