package tracker

import (
	"context"
	"fmt"

	"trackd/internal/model"
)

// NotificationList pairs a user's most recent notifications with their
// unread count.
type NotificationList struct {
	Notifications []model.Notification `json:"notifications"`
	UnreadCount   int                  `json:"unreadCount"`
}

// Notifications returns the user's notifications newest-first, capped at 50,
// plus the unread count across all of them.
func (s *Service) Notifications(ctx context.Context, userID string) (*NotificationList, error) {
	items, err := s.store.NotificationsForUser(ctx, userID, 50)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	unread, err := s.store.CountUnreadNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("counting unread notifications: %w", err)
	}
	return &NotificationList{Notifications: items, UnreadCount: unread}, nil
}

// MarkNotificationRead marks one notification read. Recipients may only
// touch their own.
func (s *Service) MarkNotificationRead(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	n, err := s.ownedNotification(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkNotificationRead(ctx, n.ID); err != nil {
		return nil, fmt.Errorf("marking notification read: %w", err)
	}
	n.Read = true
	return n, nil
}

// MarkAllNotificationsRead marks every unread notification of the user read.
func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if err := s.store.MarkAllNotificationsRead(ctx, userID); err != nil {
		return fmt.Errorf("marking notifications read: %w", err)
	}
	return nil
}

// DeleteNotification removes one notification. Recipients only.
func (s *Service) DeleteNotification(ctx context.Context, notificationID, userID string) error {
	n, err := s.ownedNotification(ctx, notificationID, userID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteNotification(ctx, n.ID); err != nil {
		return fmt.Errorf("deleting notification: %w", err)
	}
	return nil
}

// ClearReadNotifications deletes every read notification of the user.
func (s *Service) ClearReadNotifications(ctx context.Context, userID string) error {
	if err := s.store.DeleteReadNotifications(ctx, userID); err != nil {
		return fmt.Errorf("clearing read notifications: %w", err)
	}
	return nil
}

func (s *Service) ownedNotification(ctx context.Context, notificationID, userID string) (*model.Notification, error) {
	n, err := s.store.NotificationByID(ctx, notificationID)
	if err != nil {
		return nil, fmt.Errorf("loading notification: %w", err)
	}
	if n == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, ErrNotFound)
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification %s belongs to another user: %w", notificationID, ErrUnauthorized)
	}
	return n, nil
}
