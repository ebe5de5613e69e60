package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackd/internal/model"
)

const projectColumns = `id, title, description, key, owner_id, status, created_at, updated_at`

// CreateProject inserts the project and its initial membership list in one
// transaction.
func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Title, p.Description, p.Key, p.OwnerID, p.Status,
			p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return conflict(fmt.Errorf("inserting project: %w", err), "project key already in use")
		}
		for _, m := range p.TeamMembers {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO team_members (project_id, user_id, role, added_at)
				VALUES (?, ?, ?, ?)`,
				p.ID, m.UserID, m.Role, m.AddedAt)
			if err != nil {
				return fmt.Errorf("inserting team member: %w", err)
			}
		}
		return nil
	})
}

func (s *Store) ProjectByID(ctx context.Context, id string) (*model.Project, error) {
	return s.projectBy(ctx, "id", id)
}

func (s *Store) ProjectByKey(ctx context.Context, key string) (*model.Project, error) {
	return s.projectBy(ctx, "key", key)
}

func (s *Store) projectBy(ctx context.Context, column, value string) (*model.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE `+column+` = ?`, value)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading project by %s: %w", column, err)
	}
	if err := s.loadMembers(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ProjectsForUser lists projects where the user appears in team_members,
// newest first.
func (s *Store) ProjectsForUser(ctx context.Context, userID string) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.title, p.description, p.key, p.owner_id, p.status,
			p.created_at, p.updated_at
		FROM projects p
		JOIN team_members tm ON tm.project_id = p.id
		WHERE tm.user_id = ?
		ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	for i := range projects {
		if err := s.loadMembers(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE projects SET title = ?, description = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		p.Title, p.Description, p.Status, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("updating project: %w", err)
	}
	return nil
}

// DeleteProject removes the project row; team_members cascade with it.
// Tickets and their children stay behind until a prune run.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

func (s *Store) AddTeamMember(ctx context.Context, projectID string, m model.TeamMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO team_members (project_id, user_id, role, added_at)
		VALUES (?, ?, ?, ?)`,
		projectID, m.UserID, m.Role, m.AddedAt)
	if err != nil {
		return conflict(fmt.Errorf("inserting team member: %w", err), "already a member")
	}
	return nil
}

func (s *Store) UpdateTeamMemberRole(ctx context.Context, projectID, userID string, role model.ProjectRole) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE team_members SET role = ?
		WHERE project_id = ? AND user_id = ?`,
		role, projectID, userID)
	if err != nil {
		return fmt.Errorf("updating team member role: %w", err)
	}
	return nil
}

func (s *Store) RemoveTeamMember(ctx context.Context, projectID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM team_members WHERE project_id = ? AND user_id = ?`,
		projectID, userID)
	if err != nil {
		return fmt.Errorf("removing team member: %w", err)
	}
	return nil
}

func (s *Store) loadMembers(ctx context.Context, p *model.Project) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, role, added_at
		FROM team_members WHERE project_id = ?
		ORDER BY added_at, user_id`, p.ID)
	if err != nil {
		return fmt.Errorf("loading team members: %w", err)
	}
	defer rows.Close()

	p.TeamMembers = []model.TeamMember{}
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.UserID, &m.Role, &m.AddedAt); err != nil {
			return fmt.Errorf("scanning team member: %w", err)
		}
		p.TeamMembers = append(p.TeamMembers, m)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading team members: %w", err)
	}
	return nil
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Key, &p.OwnerID,
		&p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
