package tracker

import (
	"fmt"

	"trackd/internal/model"
)

// Change records one tracked field moving from Old to New.
type Change struct {
	Field string
	Old   string
	New   string
}

// TicketChanges compares a ticket's pre-mutation snapshot against the
// requested update and returns a change record per tracked field that
// actually differs. Tracked fields are title, status, and priority,
// evaluated in that order; the order determines the order the resulting
// activity entries are persisted in. Fields the update leaves nil, and
// fields whose new value equals the old one, produce nothing.
func TicketChanges(before *model.Ticket, upd UpdateTicketInput) []Change {
	var changes []Change
	if upd.Title != nil && *upd.Title != before.Title {
		changes = append(changes, Change{Field: "title", Old: before.Title, New: *upd.Title})
	}
	if upd.Status != nil && *upd.Status != before.Status {
		changes = append(changes, Change{Field: "status", Old: string(before.Status), New: string(*upd.Status)})
	}
	if upd.Priority != nil && *upd.Priority != before.Priority {
		changes = append(changes, Change{Field: "priority", Old: string(before.Priority), New: string(*upd.Priority)})
	}
	return changes
}

// activityForChange builds the audit entry for a single field change.
// Status changes get their own action; everything else is a plain update.
func (s *Service) activityForChange(ticketID, actorID string, c Change) model.Activity {
	action := model.ActionUpdated
	if c.Field == "status" {
		action = model.ActionStatusChanged
	}
	return model.Activity{
		ID:          s.idgen.New(),
		TicketID:    ticketID,
		UserID:      actorID,
		Action:      action,
		Field:       c.Field,
		OldValue:    c.Old,
		NewValue:    c.New,
		Description: fmt.Sprintf("Changed %s from %q to %q", c.Field, c.Old, c.New),
		CreatedAt:   s.clock.Now(),
	}
}

// creationActivity builds the single entry every new ticket gets.
func (s *Service) creationActivity(t *model.Ticket, actorID string) model.Activity {
	return model.Activity{
		ID:          s.idgen.New(),
		TicketID:    t.ID,
		UserID:      actorID,
		Action:      model.ActionCreated,
		Description: fmt.Sprintf("Created ticket %s", t.Key),
		CreatedAt:   s.clock.Now(),
	}
}
