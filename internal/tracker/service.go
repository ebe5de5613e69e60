package tracker

import (
	"context"
	"fmt"

	"trackd/internal/model"
)

// Service is the orchestration layer for all tracker operations. Every
// mutating method follows the same shape: load the target and its project,
// apply the access policy, mutate, record activities in field order, then
// hand derived events to the dispatcher after the mutation has committed.
type Service struct {
	store    Store
	notifier Dispatcher
	logger   Logger
	clock    Clock
	idgen    IDGenerator
}

// NewService creates a Service with the provided dependencies.
func NewService(store Store, notifier Dispatcher, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
		clock:    clock,
		idgen:    idgen,
	}
}

// project loads a project or reports ErrNotFound.
func (s *Service) project(ctx context.Context, id string) (*model.Project, error) {
	p, err := s.store.ProjectByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return p, nil
}

// ticket loads a ticket or reports ErrNotFound.
func (s *Service) ticket(ctx context.Context, id string) (*model.Ticket, error) {
	t, err := s.store.TicketByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading ticket: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("ticket %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// ticketProject loads a ticket together with its project. A ticket whose
// project has been deleted is reported as missing, not as a denial.
func (s *Service) ticketProject(ctx context.Context, ticketID string) (*model.Ticket, *model.Project, error) {
	t, err := s.ticket(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.project(ctx, t.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}
