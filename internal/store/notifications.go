package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackd/internal/model"
)

const notificationColumns = `id, user_id, type, title, message, link,
	ticket_id, project_id, action_by, read, created_at`

func (s *Store) CreateNotification(ctx context.Context, n *model.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Link,
		n.TicketID, n.ProjectID, n.ActionByID, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

func (s *Store) NotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading notification: %w", err)
	}
	return n, nil
}

// NotificationsForUser returns the newest notifications first, capped at
// limit.
func (s *Store) NotificationsForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifications, nil
}

func (s *Store) CountUnreadNotifications(ctx context.Context, userID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND read = 0`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return n, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	return nil
}

func (s *Store) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = 1 WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

func (s *Store) DeleteNotification(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	return nil
}

func (s *Store) DeleteReadNotifications(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id = ? AND read = 1`, userID); err != nil {
		return fmt.Errorf("deleting read notifications: %w", err)
	}
	return nil
}

func scanNotification(row rowScanner) (*model.Notification, error) {
	var n model.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link,
		&n.TicketID, &n.ProjectID, &n.ActionByID, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
