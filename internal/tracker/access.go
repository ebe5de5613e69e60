package tracker

import "trackd/internal/model"

// Access policy for project-scoped resources. These are pure predicates over
// in-memory snapshots: they never touch storage and never mutate anything.
//
// Project creation always inserts the owner into TeamMembers with role admin,
// so IsMember and IsAdminOrOwner agree about the owner. IsAdminOrOwner still
// checks OwnerID directly as a backstop for records predating that invariant.

// IsMember reports whether userID appears in the project's team.
func IsMember(p *model.Project, userID string) bool {
	for _, m := range p.TeamMembers {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// RoleOf returns the membership role of userID, if present.
func RoleOf(p *model.Project, userID string) (model.ProjectRole, bool) {
	for _, m := range p.TeamMembers {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// IsAdminOrOwner reports whether userID holds the project admin role or owns
// the project.
func IsAdminOrOwner(p *model.Project, userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	role, ok := RoleOf(p, userID)
	return ok && role == model.ProjectRoleAdmin
}

// CanViewProject gates reads of the project and everything under it
// (tickets, comments, activity, stats). Plain membership suffices.
func CanViewProject(p *model.Project, userID string) bool {
	return IsMember(p, userID)
}

// CanCreateTicket gates ticket and comment creation. Any member may create.
func CanCreateTicket(p *model.Project, userID string) bool {
	return IsMember(p, userID)
}

// CanUpdateTicket gates ticket field updates. Intentionally permissive: any
// member, regardless of role, may update any ticket.
func CanUpdateTicket(p *model.Project, userID string) bool {
	return IsMember(p, userID)
}

// CanManageProject gates project updates and team membership changes.
func CanManageProject(p *model.Project, userID string) bool {
	return IsAdminOrOwner(p, userID)
}

// CanDeleteProject gates project deletion. Only the owner may delete.
func CanDeleteProject(p *model.Project, userID string) bool {
	return p.OwnerID == userID
}

// CanDeleteTicket allows the ticket reporter, a project admin, or the owner.
func CanDeleteTicket(p *model.Project, t *model.Ticket, userID string) bool {
	return t.ReporterID == userID || IsAdminOrOwner(p, userID)
}

// CanDeleteComment allows the comment author, a project admin, or the owner.
func CanDeleteComment(p *model.Project, c *model.Comment, userID string) bool {
	return c.UserID == userID || IsAdminOrOwner(p, userID)
}

// CanRemoveMember reports whether actorID may remove memberID from the team.
// The owner's own membership row can never be removed, regardless of caller.
func CanRemoveMember(p *model.Project, actorID, memberID string) bool {
	if memberID == p.OwnerID {
		return false
	}
	return IsAdminOrOwner(p, actorID)
}
