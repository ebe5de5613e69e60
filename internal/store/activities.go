package store

import (
	"context"
	"fmt"

	"trackd/internal/model"
)

func (s *Store) CreateActivity(ctx context.Context, a *model.Activity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, ticket_id, user_id, action, field,
			old_value, new_value, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TicketID, a.UserID, a.Action, a.Field,
		a.OldValue, a.NewValue, a.Description, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

// ActivitiesForTicket returns the newest entries first. The rowid tiebreak
// keeps same-timestamp entries in reverse insertion order.
func (s *Store) ActivitiesForTicket(ctx context.Context, ticketID string, limit int) ([]model.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticket_id, user_id, action, field, old_value, new_value,
			description, created_at
		FROM activities WHERE ticket_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, ticketID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	defer rows.Close()

	var activities []model.Activity
	for rows.Next() {
		var a model.Activity
		err := rows.Scan(&a.ID, &a.TicketID, &a.UserID, &a.Action, &a.Field,
			&a.OldValue, &a.NewValue, &a.Description, &a.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return activities, nil
}
