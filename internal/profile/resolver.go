// Package profile resolves a caller identity into the ephemeral context
// a conversation turn is grounded on: display name, role, organization
// and role-specific enrichment. The context is derived per request and
// never persisted.
package profile

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/schoolmind/schoolmind/internal/directory"
)

// Role is the closed set of caller roles the assistant distinguishes.
type Role string

const (
	RoleLearner       Role = "learner"
	RoleEducator      Role = "educator"
	RoleAdministrator Role = "administrator"
	RoleOther         Role = "other"
)

// subjectCap is the fixed maximum number of enrichment subjects loaded
// for a learner. Not configurable per call.
const subjectCap int32 = 5

// Context is the caller context for one conversation turn.
type Context struct {
	DisplayName string
	Role        Role
	OrgID       uuid.UUID
	OrgName     string
	Subjects    []string // learner enrichment, capped at subjectCap
}

// DefaultContext is the degraded context substituted when the caller
// identity cannot be resolved. The assistant must remain usable even
// with an unresolved identity.
func DefaultContext() Context {
	return Context{DisplayName: "User", Role: RoleOther}
}

// Directory is the profile/subject lookup the resolver depends on.
type Directory interface {
	Profile(ctx context.Context, userID string) (*directory.Profile, error)
	ListSubjects(ctx context.Context, orgID uuid.UUID, limit int32) ([]string, error)
}

// Resolver loads caller context from the directory.
//
// Resolver is a pure read path: no side effects, no retries. A lookup
// failure falls back to the default context immediately.
type Resolver struct {
	dir    Directory
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(dir Directory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dir: dir, logger: logger}
}

// Resolve returns the caller context for callerID. It never fails: an
// unresolvable identity yields [DefaultContext], and a failed subject
// lookup yields the profile context without enrichment.
func (r *Resolver) Resolve(ctx context.Context, callerID string) Context {
	p, err := r.dir.Profile(ctx, callerID)
	if err != nil {
		r.logger.Warn("resolving caller context, using defaults",
			"caller_id", callerID, "error", err)
		return DefaultContext()
	}

	cc := Context{
		DisplayName: p.DisplayName,
		Role:        parseRole(p.Role),
		OrgID:       p.OrgID,
		OrgName:     p.OrgName,
	}

	if cc.Role == RoleLearner {
		subjects, err := r.dir.ListSubjects(ctx, p.OrgID, subjectCap)
		if err != nil {
			// Degrade to an empty enrichment list, not a failed turn.
			r.logger.Warn("loading learner subjects", "caller_id", callerID, "error", err)
		} else {
			cc.Subjects = subjects
		}
	}

	return cc
}

// parseRole maps a stored role string onto the closed role set.
// Anything unrecognized is RoleOther.
func parseRole(s string) Role {
	switch Role(s) {
	case RoleLearner, RoleEducator, RoleAdministrator:
		return Role(s)
	default:
		return RoleOther
	}
}
