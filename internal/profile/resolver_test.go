package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/schoolmind/schoolmind/internal/directory"
	"github.com/schoolmind/schoolmind/internal/log"
)

// mockDirectory implements Directory for testing.
type mockDirectory struct {
	profile     *directory.Profile
	profileErr  error
	subjects    []string
	subjectsErr error

	lastSubjectLimit int32
	subjectCalls     int
}

func (m *mockDirectory) Profile(_ context.Context, userID string) (*directory.Profile, error) {
	if m.profileErr != nil {
		return nil, m.profileErr
	}
	return m.profile, nil
}

func (m *mockDirectory) ListSubjects(_ context.Context, orgID uuid.UUID, limit int32) ([]string, error) {
	m.subjectCalls++
	m.lastSubjectLimit = limit
	if m.subjectsErr != nil {
		return nil, m.subjectsErr
	}
	return m.subjects, nil
}

func TestResolve_UnresolvedIdentityFallsBackToDefault(t *testing.T) {
	dir := &mockDirectory{profileErr: directory.ErrProfileNotFound}
	r := NewResolver(dir, log.NewNop())

	cc := r.Resolve(context.Background(), "ghost")

	if cc.DisplayName != "User" {
		t.Errorf("DisplayName = %q, want User", cc.DisplayName)
	}
	if cc.Role != RoleOther {
		t.Errorf("Role = %q, want other", cc.Role)
	}
	if len(cc.Subjects) != 0 {
		t.Errorf("Subjects = %v, want empty", cc.Subjects)
	}
	if cc.OrgName != "" || cc.OrgID != uuid.Nil {
		t.Errorf("organization = %q/%v, want empty", cc.OrgName, cc.OrgID)
	}
}

func TestResolve_LearnerLoadsCappedSubjects(t *testing.T) {
	orgID := uuid.New()
	dir := &mockDirectory{
		profile: &directory.Profile{
			UserID:      "stu-1",
			DisplayName: "Maya",
			Role:        "learner",
			OrgID:       orgID,
			OrgName:     "Northgate High",
		},
		subjects: []string{"Biology", "Chemistry", "History"},
	}
	r := NewResolver(dir, log.NewNop())

	cc := r.Resolve(context.Background(), "stu-1")

	if cc.Role != RoleLearner {
		t.Fatalf("Role = %q, want learner", cc.Role)
	}
	if dir.lastSubjectLimit != 5 {
		t.Errorf("subject limit = %d, want fixed cap of 5", dir.lastSubjectLimit)
	}
	if len(cc.Subjects) != 3 {
		t.Errorf("Subjects = %v", cc.Subjects)
	}
	if cc.OrgName != "Northgate High" {
		t.Errorf("OrgName = %q", cc.OrgName)
	}
}

func TestResolve_NonLearnerSkipsSubjects(t *testing.T) {
	dir := &mockDirectory{
		profile: &directory.Profile{
			DisplayName: "Mr. Okafor",
			Role:        "educator",
			OrgID:       uuid.New(),
			OrgName:     "Northgate High",
		},
	}
	r := NewResolver(dir, log.NewNop())

	cc := r.Resolve(context.Background(), "t-1")

	if cc.Role != RoleEducator {
		t.Errorf("Role = %q, want educator", cc.Role)
	}
	if dir.subjectCalls != 0 {
		t.Errorf("subject lookups = %d, want 0 for non-learner", dir.subjectCalls)
	}
}

func TestResolve_SubjectFailureDegradesToEmptyEnrichment(t *testing.T) {
	dir := &mockDirectory{
		profile: &directory.Profile{
			DisplayName: "Maya",
			Role:        "learner",
			OrgID:       uuid.New(),
			OrgName:     "Northgate High",
		},
		subjectsErr: errors.New("timeout"),
	}
	r := NewResolver(dir, log.NewNop())

	cc := r.Resolve(context.Background(), "stu-1")

	if cc.Role != RoleLearner || cc.DisplayName != "Maya" {
		t.Errorf("profile fields lost on subject failure: %+v", cc)
	}
	if len(cc.Subjects) != 0 {
		t.Errorf("Subjects = %v, want empty on lookup failure", cc.Subjects)
	}
}

func TestParseRole_UnknownMapsToOther(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"learner", RoleLearner},
		{"educator", RoleEducator},
		{"administrator", RoleAdministrator},
		{"other", RoleOther},
		{"principal", RoleOther},
		{"", RoleOther},
	}
	for _, tt := range tests {
		if got := parseRole(tt.in); got != tt.want {
			t.Errorf("parseRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
