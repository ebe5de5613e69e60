package testutil

import (
	"context"
	"sync"

	"trackd/internal/model"
	"trackd/internal/tracker"
)

// DispatchedEvent records a single dispatcher invocation.
type DispatchedEvent struct {
	Kind       string // "assigned", "updated", "commented", "member_added", "role_changed"
	Recipients []string
	ActorID    string
	TicketID   string
	ProjectID  string
	Text       string
}

// CaptureDispatcher records dispatched events instead of persisting
// notifications. Safe for concurrent use.
type CaptureDispatcher struct {
	mu     sync.Mutex
	Events []DispatchedEvent
}

var _ tracker.Dispatcher = (*CaptureDispatcher)(nil)

func NewCaptureDispatcher() *CaptureDispatcher {
	return &CaptureDispatcher{}
}

func (d *CaptureDispatcher) record(e DispatchedEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Events = append(d.Events, e)
}

// ByKind returns the recorded events of one kind, in order.
func (d *CaptureDispatcher) ByKind(kind string) []DispatchedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []DispatchedEvent
	for _, e := range d.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (d *CaptureDispatcher) TicketAssigned(_ context.Context, t *model.Ticket, assigneeID, assignedByID string) {
	d.record(DispatchedEvent{
		Kind:       "assigned",
		Recipients: []string{assigneeID},
		ActorID:    assignedByID,
		TicketID:   t.ID,
		ProjectID:  t.ProjectID,
	})
}

func (d *CaptureDispatcher) TicketUpdated(_ context.Context, t *model.Ticket, updatedByID string, team []model.TeamMember) {
	d.record(DispatchedEvent{
		Kind:       "updated",
		Recipients: memberIDs(team),
		ActorID:    updatedByID,
		TicketID:   t.ID,
		ProjectID:  t.ProjectID,
	})
}

func (d *CaptureDispatcher) TicketCommented(_ context.Context, t *model.Ticket, commentText, commentByID string, team []model.TeamMember) {
	d.record(DispatchedEvent{
		Kind:       "commented",
		Recipients: memberIDs(team),
		ActorID:    commentByID,
		TicketID:   t.ID,
		ProjectID:  t.ProjectID,
		Text:       commentText,
	})
}

func (d *CaptureDispatcher) ProjectMemberAdded(_ context.Context, p *model.Project, userID, addedByID string) {
	d.record(DispatchedEvent{
		Kind:       "member_added",
		Recipients: []string{userID},
		ActorID:    addedByID,
		ProjectID:  p.ID,
	})
}

func (d *CaptureDispatcher) ProjectRoleChanged(_ context.Context, p *model.Project, userID string, newRole model.ProjectRole, changedByID string) {
	d.record(DispatchedEvent{
		Kind:       "role_changed",
		Recipients: []string{userID},
		ActorID:    changedByID,
		ProjectID:  p.ID,
		Text:       string(newRole),
	})
}

func memberIDs(team []model.TeamMember) []string {
	ids := make([]string, 0, len(team))
	for _, m := range team {
		ids = append(ids, m.UserID)
	}
	return ids
}
