package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trackd/internal/model"
)

// CreateTicketInput carries the fields accepted at ticket creation. Type and
// priority default to bug/medium when empty; status always starts at todo.
type CreateTicketInput struct {
	Title       string
	Description string
	Type        model.TicketType
	Priority    model.TicketPriority
	AssigneeID  string
	DueDate     *time.Time
	Tags        []string
}

// UpdateTicketInput carries ticket field updates; nil means unchanged. An
// AssigneeID pointing at the empty string unassigns the ticket.
type UpdateTicketInput struct {
	Title       *string
	Description *string
	Type        *model.TicketType
	Priority    *model.TicketPriority
	Status      *model.TicketStatus
	AssigneeID  *string
	DueDate     *time.Time
	Tags        []string
}

// Tickets lists a project's tickets newest-first, for members only.
func (s *Service) Tickets(ctx context.Context, projectID, userID string) ([]model.Ticket, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(p, userID) {
		return nil, fmt.Errorf("listing tickets in project %s: %w", projectID, ErrUnauthorized)
	}
	tickets, err := s.store.TicketsForProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing tickets: %w", err)
	}
	return tickets, nil
}

// Ticket returns a single ticket, for members of its project only.
func (s *Service) Ticket(ctx context.Context, ticketID, userID string) (*model.Ticket, error) {
	t, p, err := s.ticketProject(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(p, userID) {
		return nil, fmt.Errorf("viewing ticket %s: %w", ticketID, ErrUnauthorized)
	}
	return t, nil
}

// CreateTicket files a new ticket. The sequential number and derived key are
// assigned inside the insert transaction. Exactly one "created" activity is
// recorded; if an assignee other than the actor is set, they are notified.
func (s *Service) CreateTicket(ctx context.Context, projectID, actorID string, in CreateTicketInput) (*model.Ticket, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Description == "" {
		return nil, fmt.Errorf("title and description are required: %w", ErrValidation)
	}

	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanCreateTicket(p, actorID) {
		return nil, fmt.Errorf("creating ticket in project %s: %w", projectID, ErrUnauthorized)
	}

	typ := in.Type
	if typ == "" {
		typ = model.TicketTypeBug
	}
	priority := in.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidTicketType(typ) {
		return nil, fmt.Errorf("unknown ticket type %q: %w", typ, ErrValidation)
	}
	if !model.ValidTicketPriority(priority) {
		return nil, fmt.Errorf("unknown ticket priority %q: %w", priority, ErrValidation)
	}

	now := s.clock.Now()
	t := &model.Ticket{
		ID:          s.idgen.New(),
		ProjectID:   projectID,
		Title:       title,
		Description: in.Description,
		Type:        typ,
		Priority:    priority,
		Status:      model.StatusTodo,
		AssigneeID:  in.AssigneeID,
		ReporterID:  actorID,
		DueDate:     in.DueDate,
		Tags:        in.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTicket(ctx, t, p.Key); err != nil {
		return nil, fmt.Errorf("creating ticket: %w", err)
	}

	s.recordActivity(ctx, s.creationActivity(t, actorID))
	s.logger.Info("ticket created", "ticket", t.Key, "project", p.Key, "reporter", actorID)

	if t.AssigneeID != "" {
		s.notifier.TicketAssigned(ctx, t, t.AssigneeID, actorID)
	}
	return t, nil
}

// UpdateTicket applies field changes. Any project member may update any
// field. Changes to title, status and priority are recorded as activities in
// that order; the team is notified of the update, and a newly set assignee
// is notified separately.
func (s *Service) UpdateTicket(ctx context.Context, ticketID, actorID string, in UpdateTicketInput) (*model.Ticket, error) {
	t, p, err := s.ticketProject(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanUpdateTicket(p, actorID) {
		return nil, fmt.Errorf("updating ticket %s: %w", ticketID, ErrUnauthorized)
	}

	if in.Type != nil && !model.ValidTicketType(*in.Type) {
		return nil, fmt.Errorf("unknown ticket type %q: %w", *in.Type, ErrValidation)
	}
	if in.Priority != nil && !model.ValidTicketPriority(*in.Priority) {
		return nil, fmt.Errorf("unknown ticket priority %q: %w", *in.Priority, ErrValidation)
	}
	if in.Status != nil && !model.ValidTicketStatus(*in.Status) {
		return nil, fmt.Errorf("unknown ticket status %q: %w", *in.Status, ErrValidation)
	}
	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("ticket title cannot be empty: %w", ErrValidation)
		}
		// Diff and store the same normalized value.
		in.Title = &trimmed
	}

	// Diff against the pre-mutation snapshot before assigning anything.
	changes := TicketChanges(t, in)
	prevAssignee := t.AssigneeID

	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = *in.Description
	}
	if in.Type != nil {
		t.Type = *in.Type
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	if in.Status != nil {
		t.Status = *in.Status
	}
	if in.AssigneeID != nil {
		t.AssigneeID = *in.AssigneeID
	}
	if in.DueDate != nil {
		t.DueDate = in.DueDate
	}
	if in.Tags != nil {
		t.Tags = in.Tags
	}
	t.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("updating ticket: %w", err)
	}

	// Audit entries persist in field-evaluation order, after the mutation
	// committed. Best-effort: a failed entry is logged, never surfaced.
	for _, c := range changes {
		s.recordActivity(ctx, s.activityForChange(t.ID, actorID, c))
	}

	s.notifier.TicketUpdated(ctx, t, actorID, p.TeamMembers)
	if in.AssigneeID != nil && t.AssigneeID != "" && t.AssigneeID != prevAssignee {
		s.notifier.TicketAssigned(ctx, t, t.AssigneeID, actorID)
	}
	return t, nil
}

// DeleteTicket removes a ticket. The reporter, a project admin, or the owner
// only. Comments and activities under the ticket are deliberately left for
// PruneOrphans.
func (s *Service) DeleteTicket(ctx context.Context, ticketID, actorID string) error {
	t, p, err := s.ticketProject(ctx, ticketID)
	if err != nil {
		return err
	}
	if !CanDeleteTicket(p, t, actorID) {
		return fmt.Errorf("deleting ticket %s: %w", ticketID, ErrUnauthorized)
	}
	if err := s.store.DeleteTicket(ctx, ticketID); err != nil {
		return fmt.Errorf("deleting ticket: %w", err)
	}
	s.logger.Info("ticket deleted", "ticket", t.Key, "actor", actorID)
	return nil
}

// TicketStats aggregates a project's tickets by status, priority and type,
// for members only.
func (s *Service) TicketStats(ctx context.Context, projectID, userID string) (*model.TicketStats, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(p, userID) {
		return nil, fmt.Errorf("viewing stats for project %s: %w", projectID, ErrUnauthorized)
	}
	stats, err := s.store.TicketStats(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("aggregating ticket stats: %w", err)
	}
	return stats, nil
}

// TicketActivity returns the ticket's audit trail, newest first, capped at
// 50 entries. Members only.
func (s *Service) TicketActivity(ctx context.Context, ticketID, userID string) ([]model.Activity, error) {
	t, p, err := s.ticketProject(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(p, userID) {
		return nil, fmt.Errorf("viewing activity for ticket %s: %w", ticketID, ErrUnauthorized)
	}
	activities, err := s.store.ActivitiesForTicket(ctx, t.ID, 50)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return activities, nil
}

// recordActivity persists one audit entry, logging instead of failing: the
// trail must never roll back or block the primary mutation.
func (s *Service) recordActivity(ctx context.Context, a model.Activity) {
	if err := s.store.CreateActivity(ctx, &a); err != nil {
		s.logger.Error("recording activity", "ticket", a.TicketID, "action", a.Action, "error", err)
	}
}
