package tracker

import (
	"context"
	"fmt"
	"strings"

	"trackd/internal/model"
)

// CreateProjectInput carries the fields accepted at project creation.
type CreateProjectInput struct {
	Title       string
	Description string
	Key         string
}

// UpdateProjectInput carries the mutable project fields; nil means unchanged.
// The key is immutable after creation and deliberately absent here.
type UpdateProjectInput struct {
	Title       *string
	Description *string
	Status      *model.ProjectStatus
}

// Projects lists the projects the user is a team member of, newest first.
func (s *Service) Projects(ctx context.Context, userID string) ([]model.Project, error) {
	projects, err := s.store.ProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// Project returns a single project, for members only.
func (s *Service) Project(ctx context.Context, projectID, userID string) (*model.Project, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(p, userID) {
		return nil, fmt.Errorf("viewing project %s: %w", projectID, ErrUnauthorized)
	}
	return p, nil
}

// CreateProject creates a project owned by userID. The key is uppercased and
// must be unique; the owner is inserted into the team with role admin so the
// membership and ownership checks can never disagree.
func (s *Service) CreateProject(ctx context.Context, userID string, in CreateProjectInput) (*model.Project, error) {
	title := strings.TrimSpace(in.Title)
	key := strings.ToUpper(strings.TrimSpace(in.Key))
	if title == "" || in.Description == "" || key == "" {
		return nil, fmt.Errorf("title, description and key are required: %w", ErrValidation)
	}
	if len(key) > model.MaxProjectKeyLength {
		return nil, fmt.Errorf("project key longer than %d characters: %w", model.MaxProjectKeyLength, ErrValidation)
	}

	existing, err := s.store.ProjectByKey(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("checking project key: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("project key %s already exists: %w", key, ErrConflict)
	}

	now := s.clock.Now()
	p := &model.Project{
		ID:          s.idgen.New(),
		Title:       title,
		Description: in.Description,
		Key:         key,
		OwnerID:     userID,
		Status:      model.ProjectStatusActive,
		TeamMembers: []model.TeamMember{
			{UserID: userID, Role: model.ProjectRoleAdmin, AddedAt: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created", "project", p.ID, "key", p.Key, "owner", userID)
	return p, nil
}

// UpdateProject changes title, description or status. Admins and the owner
// only.
func (s *Service) UpdateProject(ctx context.Context, projectID, actorID string, in UpdateProjectInput) (*model.Project, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanManageProject(p, actorID) {
		return nil, fmt.Errorf("updating project %s: %w", projectID, ErrUnauthorized)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("project title cannot be empty: %w", ErrValidation)
		}
		p.Title = title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		if !model.ValidProjectStatus(*in.Status) {
			return nil, fmt.Errorf("unknown project status %q: %w", *in.Status, ErrValidation)
		}
		p.Status = *in.Status
	}
	p.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}
	return p, nil
}

// DeleteProject removes the project and its membership rows. Owner only.
// Tickets under the project are deliberately left behind; PruneOrphans is
// the explicit cleanup path.
func (s *Service) DeleteProject(ctx context.Context, projectID, actorID string) error {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return err
	}
	if !CanDeleteProject(p, actorID) {
		return fmt.Errorf("deleting project %s: %w", projectID, ErrUnauthorized)
	}
	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	s.logger.Info("project deleted", "project", projectID, "key", p.Key, "actor", actorID)
	return nil
}

// AddMember adds the user with the given email to the team. Admins and the
// owner only. The new member is notified after the membership is committed.
func (s *Service) AddMember(ctx context.Context, projectID, actorID, email string, role model.ProjectRole) (*model.Project, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanManageProject(p, actorID) {
		return nil, fmt.Errorf("adding member to project %s: %w", projectID, ErrUnauthorized)
	}

	if role == "" {
		role = model.ProjectRoleDeveloper
	}
	if !model.ValidProjectRole(role) {
		return nil, fmt.Errorf("unknown project role %q: %w", role, ErrValidation)
	}

	u, err := s.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if IsMember(p, u.ID) {
		return nil, fmt.Errorf("user is already a team member: %w", ErrValidation)
	}

	m := model.TeamMember{UserID: u.ID, Role: role, AddedAt: s.clock.Now()}
	if err := s.store.AddTeamMember(ctx, projectID, m); err != nil {
		return nil, fmt.Errorf("adding team member: %w", err)
	}
	p.TeamMembers = append(p.TeamMembers, m)

	s.notifier.ProjectMemberAdded(ctx, p, u.ID, actorID)
	return p, nil
}

// ChangeMemberRole updates an existing member's role. Admins and the owner
// only; the owner's own row keeps role admin and cannot be changed.
func (s *Service) ChangeMemberRole(ctx context.Context, projectID, actorID, memberID string, role model.ProjectRole) (*model.Project, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanManageProject(p, actorID) {
		return nil, fmt.Errorf("changing member role in project %s: %w", projectID, ErrUnauthorized)
	}
	if memberID == p.OwnerID {
		return nil, fmt.Errorf("cannot change the project owner's role: %w", ErrValidation)
	}
	if !model.ValidProjectRole(role) {
		return nil, fmt.Errorf("unknown project role %q: %w", role, ErrValidation)
	}
	if !IsMember(p, memberID) {
		return nil, fmt.Errorf("member %s: %w", memberID, ErrNotFound)
	}

	if err := s.store.UpdateTeamMemberRole(ctx, projectID, memberID, role); err != nil {
		return nil, fmt.Errorf("updating member role: %w", err)
	}
	for i := range p.TeamMembers {
		if p.TeamMembers[i].UserID == memberID {
			p.TeamMembers[i].Role = role
		}
	}

	s.notifier.ProjectRoleChanged(ctx, p, memberID, role, actorID)
	return p, nil
}

// RemoveMember removes a member from the team. Admins and the owner only;
// the owner's own membership row can never be removed.
func (s *Service) RemoveMember(ctx context.Context, projectID, actorID, memberID string) (*model.Project, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanRemoveMember(p, actorID, memberID) {
		if memberID == p.OwnerID {
			return nil, fmt.Errorf("cannot remove the project owner: %w", ErrValidation)
		}
		return nil, fmt.Errorf("removing member from project %s: %w", projectID, ErrUnauthorized)
	}
	if !IsMember(p, memberID) {
		return nil, fmt.Errorf("member %s: %w", memberID, ErrNotFound)
	}

	if err := s.store.RemoveTeamMember(ctx, projectID, memberID); err != nil {
		return nil, fmt.Errorf("removing team member: %w", err)
	}
	kept := p.TeamMembers[:0]
	for _, m := range p.TeamMembers {
		if m.UserID != memberID {
			kept = append(kept, m)
		}
	}
	p.TeamMembers = kept
	return p, nil
}
