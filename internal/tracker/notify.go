package tracker

import (
	"context"
	"fmt"

	"trackd/internal/model"
)

// notifyTruncateLen caps the comment excerpt carried in a notification.
const notifyTruncateLen = 50

// Dispatcher fans domain events out as in-app notifications, one method per
// event type. Implementations are invoked only after the triggering mutation
// has committed, own their failures (log, never propagate), and must treat
// each recipient independently: one failed creation never aborts the rest.
// Delivery beyond the persisted record (email, push) is out of scope.
type Dispatcher interface {
	TicketAssigned(ctx context.Context, ticket *model.Ticket, assigneeID, assignedByID string)
	TicketUpdated(ctx context.Context, ticket *model.Ticket, updatedByID string, team []model.TeamMember)
	TicketCommented(ctx context.Context, ticket *model.Ticket, commentText, commentByID string, team []model.TeamMember)
	ProjectMemberAdded(ctx context.Context, project *model.Project, userID, addedByID string)
	ProjectRoleChanged(ctx context.Context, project *model.Project, userID string, newRole model.ProjectRole, changedByID string)
}

// StoreDispatcher persists one notification row per recipient.
type StoreDispatcher struct {
	store  Store
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

var _ Dispatcher = (*StoreDispatcher)(nil)

func NewStoreDispatcher(store Store, logger Logger, clock Clock, idgen IDGenerator) *StoreDispatcher {
	return &StoreDispatcher{store: store, logger: logger, clock: clock, idgen: idgen}
}

// TicketAssigned notifies the assignee, unless they assigned it to themselves.
func (d *StoreDispatcher) TicketAssigned(ctx context.Context, ticket *model.Ticket, assigneeID, assignedByID string) {
	if assigneeID == "" || assigneeID == assignedByID {
		return
	}
	d.create(ctx, model.Notification{
		UserID:     assigneeID,
		Type:       model.NotifyTicketAssigned,
		Title:      "New ticket assigned",
		Message:    fmt.Sprintf("You've been assigned to %s: %s", ticket.Key, ticket.Title),
		Link:       ticketLink(ticket),
		TicketID:   ticket.ID,
		ProjectID:  ticket.ProjectID,
		ActionByID: assignedByID,
	})
}

// TicketUpdated notifies every team member except the actor.
func (d *StoreDispatcher) TicketUpdated(ctx context.Context, ticket *model.Ticket, updatedByID string, team []model.TeamMember) {
	for _, m := range team {
		if m.UserID == updatedByID {
			continue
		}
		d.create(ctx, model.Notification{
			UserID:     m.UserID,
			Type:       model.NotifyTicketUpdated,
			Title:      "Ticket updated",
			Message:    fmt.Sprintf("%s was updated: %s", ticket.Key, ticket.Title),
			Link:       ticketLink(ticket),
			TicketID:   ticket.ID,
			ProjectID:  ticket.ProjectID,
			ActionByID: updatedByID,
		})
	}
}

// TicketCommented notifies every team member except the comment author. The
// message carries the comment text truncated to 50 characters, with an
// ellipsis marker when something was cut.
func (d *StoreDispatcher) TicketCommented(ctx context.Context, ticket *model.Ticket, commentText, commentByID string, team []model.TeamMember) {
	excerpt := TruncateMessage(commentText, notifyTruncateLen)
	for _, m := range team {
		if m.UserID == commentByID {
			continue
		}
		d.create(ctx, model.Notification{
			UserID:     m.UserID,
			Type:       model.NotifyTicketCommented,
			Title:      "New comment",
			Message:    fmt.Sprintf("New comment on %s: %s", ticket.Key, excerpt),
			Link:       ticketLink(ticket),
			TicketID:   ticket.ID,
			ProjectID:  ticket.ProjectID,
			ActionByID: commentByID,
		})
	}
}

// ProjectMemberAdded notifies the new member, unless they added themselves.
func (d *StoreDispatcher) ProjectMemberAdded(ctx context.Context, project *model.Project, userID, addedByID string) {
	if userID == addedByID {
		return
	}
	d.create(ctx, model.Notification{
		UserID:     userID,
		Type:       model.NotifyProjectAdded,
		Title:      "Added to project",
		Message:    fmt.Sprintf("You've been added to %s", project.Title),
		Link:       projectLink(project),
		ProjectID:  project.ID,
		ActionByID: addedByID,
	})
}

// ProjectRoleChanged notifies the affected member, unless they changed their
// own role.
func (d *StoreDispatcher) ProjectRoleChanged(ctx context.Context, project *model.Project, userID string, newRole model.ProjectRole, changedByID string) {
	if userID == changedByID {
		return
	}
	d.create(ctx, model.Notification{
		UserID:     userID,
		Type:       model.NotifyProjectRoleChanged,
		Title:      "Role updated",
		Message:    fmt.Sprintf("Your role in %s was changed to %s", project.Title, newRole),
		Link:       projectLink(project),
		ProjectID:  project.ID,
		ActionByID: changedByID,
	})
}

// create persists a single notification. Failures are logged and dropped so
// one recipient's error can't block the others or the primary response.
func (d *StoreDispatcher) create(ctx context.Context, n model.Notification) {
	n.ID = d.idgen.New()
	n.CreatedAt = d.clock.Now()
	if err := d.store.CreateNotification(ctx, &n); err != nil {
		d.logger.Error("creating notification", "user", n.UserID, "type", n.Type, "error", err)
	}
}

// TruncateMessage shortens s to at most limit characters, appending "..."
// when anything was cut. Limits count runes, not bytes.
func TruncateMessage(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func ticketLink(t *model.Ticket) string {
	return fmt.Sprintf("/projects/%s/tickets/%s", t.ProjectID, t.ID)
}

func projectLink(p *model.Project) string {
	return fmt.Sprintf("/projects/%s", p.ID)
}

// NopDispatcher ignores all events. Use where fan-out is irrelevant.
type NopDispatcher struct{}

var _ Dispatcher = (*NopDispatcher)(nil)

func (NopDispatcher) TicketAssigned(context.Context, *model.Ticket, string, string) {}
func (NopDispatcher) TicketUpdated(context.Context, *model.Ticket, string, []model.TeamMember) {
}
func (NopDispatcher) TicketCommented(context.Context, *model.Ticket, string, string, []model.TeamMember) {
}
func (NopDispatcher) ProjectMemberAdded(context.Context, *model.Project, string, string) {}
func (NopDispatcher) ProjectRoleChanged(context.Context, *model.Project, string, model.ProjectRole, string) {
}
