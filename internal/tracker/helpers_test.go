package tracker_test

import (
	"context"
	"testing"

	"trackd/internal/model"
	"trackd/internal/store"
	"trackd/internal/testutil"
	"trackd/internal/tracker"
)

const testPassword = "hunter2secret"

// newTestService wires a Service against an in-memory store with a capture
// dispatcher, a fixed clock and sequential IDs.
func newTestService(t *testing.T) (*tracker.Service, *store.Store, *testutil.CaptureDispatcher) {
	t.Helper()
	st := testutil.NewTestStore(t)
	disp := testutil.NewCaptureDispatcher()
	svc := tracker.NewService(st, disp, tracker.NewNopLogger(), testutil.FixedClock(), testutil.NewStubIDGenerator())
	return svc, st, disp
}

// newNotifyingService wires a Service whose dispatcher persists real
// notification rows, for tests asserting on notification content.
func newNotifyingService(t *testing.T) (*tracker.Service, *store.Store) {
	t.Helper()
	st := testutil.NewTestStore(t)
	clock := testutil.FixedClock()
	idgen := testutil.NewStubIDGenerator()
	disp := tracker.NewStoreDispatcher(st, tracker.NewNopLogger(), clock, idgen)
	svc := tracker.NewService(st, disp, tracker.NewNopLogger(), clock, idgen)
	return svc, st
}

func registerUser(t *testing.T, svc *tracker.Service, name, email string) *model.User {
	t.Helper()
	u, err := svc.Register(context.Background(), tracker.RegisterInput{
		Name:     name,
		Email:    email,
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("Register(%s) error = %v", email, err)
	}
	return u
}

func createProject(t *testing.T, svc *tracker.Service, ownerID, key string) *model.Project {
	t.Helper()
	p, err := svc.CreateProject(context.Background(), ownerID, tracker.CreateProjectInput{
		Title:       "Project " + key,
		Description: "test project",
		Key:         key,
	})
	if err != nil {
		t.Fatalf("CreateProject(%s) error = %v", key, err)
	}
	return p
}

func addMember(t *testing.T, svc *tracker.Service, projectID, actorID, email string, role model.ProjectRole) {
	t.Helper()
	if _, err := svc.AddMember(context.Background(), projectID, actorID, email, role); err != nil {
		t.Fatalf("AddMember(%s) error = %v", email, err)
	}
}

func createTicket(t *testing.T, svc *tracker.Service, projectID, actorID, title string) *model.Ticket {
	t.Helper()
	tk, err := svc.CreateTicket(context.Background(), projectID, actorID, tracker.CreateTicketInput{
		Title:       title,
		Description: "test ticket",
	})
	if err != nil {
		t.Fatalf("CreateTicket(%s) error = %v", title, err)
	}
	return tk
}

func strPtr(s string) *string { return &s }

func statusPtr(s model.TicketStatus) *model.TicketStatus { return &s }

func prioPtr(p model.TicketPriority) *model.TicketPriority { return &p }
