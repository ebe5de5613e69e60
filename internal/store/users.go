package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackd/internal/model"
)

const userColumns = `id, name, email, password_hash, role,
	pref_email_notifications, pref_issue_assigned, pref_issue_updated,
	pref_comments, pref_mentions, pref_theme, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
		u.Preferences.EmailNotifications, u.Preferences.IssueAssigned,
		u.Preferences.IssueUpdated, u.Preferences.Comments,
		u.Preferences.Mentions, u.Preferences.Theme,
		u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return conflict(fmt.Errorf("inserting user: %w", err), "email already registered")
	}
	return nil
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userBy(ctx, "id", id)
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userBy(ctx, "email", email)
}

func (s *Store) userBy(ctx context.Context, column, value string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+column+` = ?`, value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user by %s: %w", column, err)
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, email = ?, password_hash = ?, role = ?,
			pref_email_notifications = ?, pref_issue_assigned = ?,
			pref_issue_updated = ?, pref_comments = ?, pref_mentions = ?,
			pref_theme = ?, updated_at = ?
		WHERE id = ?`,
		u.Name, u.Email, u.PasswordHash, u.Role,
		u.Preferences.EmailNotifications, u.Preferences.IssueAssigned,
		u.Preferences.IssueUpdated, u.Preferences.Comments,
		u.Preferences.Mentions, u.Preferences.Theme,
		u.UpdatedAt, u.ID)
	if err != nil {
		return conflict(fmt.Errorf("updating user: %w", err), "email already registered")
	}
	return nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role,
		&u.Preferences.EmailNotifications, &u.Preferences.IssueAssigned,
		&u.Preferences.IssueUpdated, &u.Preferences.Comments,
		&u.Preferences.Mentions, &u.Preferences.Theme,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
