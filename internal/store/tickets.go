package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"trackd/internal/model"
	"trackd/internal/tracker"
)

const ticketColumns = `id, project_id, ticket_number, ticket_key, title,
	description, type, priority, status, assignee_id, reporter_id, due_date,
	tags, created_at, updated_at`

// createTicketAttempts bounds retries when a concurrent insert takes the
// number this transaction computed.
const createTicketAttempts = 3

// CreateTicket assigns the next per-project ticket number and inserts the
// row in a single transaction. The UNIQUE (project_id, ticket_number)
// constraint backstops the MAX+1 read; on a collision the whole transaction
// is retried with a freshly computed number.
func (s *Store) CreateTicket(ctx context.Context, t *model.Ticket, projectKey string) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < createTicketAttempts; attempt++ {
		err := s.withTx(ctx, func(tx *sql.Tx) error {
			var next int
			err := tx.QueryRowContext(ctx, `
				SELECT COALESCE(MAX(ticket_number), 0) + 1
				FROM tickets WHERE project_id = ?`, t.ProjectID).Scan(&next)
			if err != nil {
				return fmt.Errorf("computing ticket number: %w", err)
			}
			t.Number = next
			t.Key = projectKey + "-" + strconv.Itoa(next)

			_, err = tx.ExecContext(ctx, `
				INSERT INTO tickets (`+ticketColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				t.ID, t.ProjectID, t.Number, t.Key, t.Title,
				t.Description, t.Type, t.Priority, t.Status,
				nullString(t.AssigneeID), t.ReporterID, nullTime(t.DueDate),
				tags, t.CreatedAt, t.UpdatedAt)
			if err != nil {
				return fmt.Errorf("inserting ticket: %w", err)
			}
			return nil
		})
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("assigning ticket number after %d attempts: %w (%v)",
		createTicketAttempts, tracker.ErrConflict, lastErr)
}

func (s *Store) TicketByID(ctx context.Context, id string) (*model.Ticket, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading ticket: %w", err)
	}
	return t, nil
}

// TicketsForProject lists tickets newest first.
func (s *Store) TicketsForProject(ctx context.Context, projectID string) ([]model.Ticket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+ticketColumns+` FROM tickets
		WHERE project_id = ?
		ORDER BY created_at DESC, ticket_number DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	defer rows.Close()

	var tickets []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	return tickets, nil
}

// UpdateTicket persists the mutable ticket fields. Number, key, project and
// reporter are never rewritten.
func (s *Store) UpdateTicket(ctx context.Context, t *model.Ticket) error {
	tags, err := encodeTags(t.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE tickets SET title = ?, description = ?, type = ?, priority = ?,
			status = ?, assignee_id = ?, due_date = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		t.Title, t.Description, t.Type, t.Priority, t.Status,
		nullString(t.AssigneeID), nullTime(t.DueDate), tags, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("updating ticket: %w", err)
	}
	return nil
}

// DeleteTicket removes the ticket row only. Comments, activities and
// notifications referencing it stay behind until a prune run.
func (s *Store) DeleteTicket(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting ticket: %w", err)
	}
	return nil
}

// TicketStats aggregates ticket counts for a project by status, priority
// and type.
func (s *Store) TicketStats(ctx context.Context, projectID string) (*model.TicketStats, error) {
	stats := &model.TicketStats{
		ByStatus:   map[model.TicketStatus]int{},
		ByPriority: map[model.TicketPriority]int{},
		ByType:     map[model.TicketType]int{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT status, priority, type, COUNT(*)
		FROM tickets WHERE project_id = ?
		GROUP BY status, priority, type`, projectID)
	if err != nil {
		return nil, fmt.Errorf("aggregating ticket stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status   model.TicketStatus
			priority model.TicketPriority
			typ      model.TicketType
			n        int
		)
		if err := rows.Scan(&status, &priority, &typ, &n); err != nil {
			return nil, fmt.Errorf("scanning ticket stats: %w", err)
		}
		stats.ByStatus[status] += n
		stats.ByPriority[priority] += n
		stats.ByType[typ] += n
		stats.Total += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregating ticket stats: %w", err)
	}
	return stats, nil
}

func scanTicket(row rowScanner) (*model.Ticket, error) {
	var (
		t        model.Ticket
		assignee sql.NullString
		due      sql.NullTime
		tags     string
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Number, &t.Key, &t.Title,
		&t.Description, &t.Type, &t.Priority, &t.Status, &assignee,
		&t.ReporterID, &due, &tags, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.AssigneeID = assignee.String
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	t.Tags, err = decodeTags(tags)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
