package tracker_test

import (
	"context"
	"errors"
	"testing"

	"trackd/internal/model"
	"trackd/internal/tracker"
)

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("owner lands in the team as admin", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")

		p := createProject(t, svc, owner.ID, "ENG")
		if p.OwnerID != owner.ID {
			t.Errorf("owner = %s, want %s", p.OwnerID, owner.ID)
		}
		role, ok := tracker.RoleOf(p, owner.ID)
		if !ok || role != model.ProjectRoleAdmin {
			t.Errorf("owner role = %s/%v, want admin member", role, ok)
		}

		// The invariant also holds on a fresh load.
		loaded, err := svc.Project(ctx, p.ID, owner.ID)
		if err != nil {
			t.Fatalf("Project() error = %v", err)
		}
		if role, ok := tracker.RoleOf(loaded, owner.ID); !ok || role != model.ProjectRoleAdmin {
			t.Errorf("loaded owner role = %s/%v, want admin member", role, ok)
		}
	})

	t.Run("key is uppercased", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")

		p, err := svc.CreateProject(ctx, owner.ID, tracker.CreateProjectInput{
			Title:       "Lowercase",
			Description: "x",
			Key:         "eng",
		})
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if p.Key != "ENG" {
			t.Errorf("key = %s, want ENG", p.Key)
		}
	})

	t.Run("duplicate key conflicts case-insensitively", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		createProject(t, svc, owner.ID, "ENG")

		_, err := svc.CreateProject(ctx, owner.ID, tracker.CreateProjectInput{
			Title:       "Duplicate",
			Description: "x",
			Key:         "eng",
		})
		if !errors.Is(err, tracker.ErrConflict) {
			t.Errorf("CreateProject() error = %v, want ErrConflict", err)
		}
	})

	t.Run("key length is capped", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")

		_, err := svc.CreateProject(ctx, owner.ID, tracker.CreateProjectInput{
			Title:       "Long key",
			Description: "x",
			Key:         "ENGINEERING",
		})
		if !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("CreateProject() error = %v, want ErrValidation", err)
		}
	})
}

func TestProjectVisibility(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	owner := registerUser(t, svc, "Alice", "alice@example.com")
	outsider := registerUser(t, svc, "Mallory", "mallory@example.com")
	p := createProject(t, svc, owner.ID, "ENG")

	t.Run("listing shows only memberships", func(t *testing.T) {
		mine, err := svc.Projects(ctx, owner.ID)
		if err != nil {
			t.Fatalf("Projects() error = %v", err)
		}
		if len(mine) != 1 || mine[0].ID != p.ID {
			t.Errorf("owner projects = %v, want [%s]", mine, p.ID)
		}

		theirs, err := svc.Projects(ctx, outsider.ID)
		if err != nil {
			t.Fatalf("Projects() error = %v", err)
		}
		if len(theirs) != 0 {
			t.Errorf("outsider sees %d projects, want 0", len(theirs))
		}
	})

	t.Run("non-members cannot fetch the project", func(t *testing.T) {
		if _, err := svc.Project(ctx, p.ID, outsider.ID); !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("Project() error = %v, want ErrUnauthorized", err)
		}
	})
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("admins may update, developers may not", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		dev := registerUser(t, svc, "Bob", "bob@example.com")
		p := createProject(t, svc, owner.ID, "ENG")
		addMember(t, svc, p.ID, owner.ID, dev.Email, model.ProjectRoleDeveloper)

		archived := model.ProjectStatusArchived
		got, err := svc.UpdateProject(ctx, p.ID, owner.ID, tracker.UpdateProjectInput{Status: &archived})
		if err != nil {
			t.Fatalf("UpdateProject() error = %v", err)
		}
		if got.Status != model.ProjectStatusArchived {
			t.Errorf("status = %s, want archived", got.Status)
		}

		_, err = svc.UpdateProject(ctx, p.ID, dev.ID, tracker.UpdateProjectInput{Title: strPtr("Renamed")})
		if !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("developer UpdateProject() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		p := createProject(t, svc, owner.ID, "ENG")

		bad := model.ProjectStatus("paused")
		if _, err := svc.UpdateProject(ctx, p.ID, owner.ID, tracker.UpdateProjectInput{Status: &bad}); !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("UpdateProject() error = %v, want ErrValidation", err)
		}
	})
}

func TestTeamMembership(t *testing.T) {
	ctx := context.Background()

	t.Run("adding defaults to developer and notifies the member", func(t *testing.T) {
		svc, _, disp := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		dev := registerUser(t, svc, "Bob", "bob@example.com")
		p := createProject(t, svc, owner.ID, "ENG")

		got, err := svc.AddMember(ctx, p.ID, owner.ID, dev.Email, "")
		if err != nil {
			t.Fatalf("AddMember() error = %v", err)
		}
		role, ok := tracker.RoleOf(got, dev.ID)
		if !ok || role != model.ProjectRoleDeveloper {
			t.Errorf("member role = %s/%v, want developer", role, ok)
		}

		added := disp.ByKind("member_added")
		if len(added) != 1 || added[0].Recipients[0] != dev.ID {
			t.Errorf("member_added events = %+v, want one for %s", added, dev.ID)
		}
	})

	t.Run("adding twice is a validation error", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		dev := registerUser(t, svc, "Bob", "bob@example.com")
		p := createProject(t, svc, owner.ID, "ENG")
		addMember(t, svc, p.ID, owner.ID, dev.Email, model.ProjectRoleDeveloper)

		if _, err := svc.AddMember(ctx, p.ID, owner.ID, dev.Email, ""); !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("AddMember() error = %v, want ErrValidation", err)
		}
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		p := createProject(t, svc, owner.ID, "ENG")

		if _, err := svc.AddMember(ctx, p.ID, owner.ID, "nobody@example.com", ""); !errors.Is(err, tracker.ErrNotFound) {
			t.Errorf("AddMember() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("role change notifies the member and spares the owner row", func(t *testing.T) {
		svc, _, disp := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		dev := registerUser(t, svc, "Bob", "bob@example.com")
		p := createProject(t, svc, owner.ID, "ENG")
		addMember(t, svc, p.ID, owner.ID, dev.Email, model.ProjectRoleDeveloper)

		got, err := svc.ChangeMemberRole(ctx, p.ID, owner.ID, dev.ID, model.ProjectRoleAdmin)
		if err != nil {
			t.Fatalf("ChangeMemberRole() error = %v", err)
		}
		if role, _ := tracker.RoleOf(got, dev.ID); role != model.ProjectRoleAdmin {
			t.Errorf("role = %s, want admin", role)
		}
		if changed := disp.ByKind("role_changed"); len(changed) != 1 {
			t.Errorf("role_changed events = %d, want 1", len(changed))
		}

		if _, err := svc.ChangeMemberRole(ctx, p.ID, dev.ID, owner.ID, model.ProjectRoleViewer); !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("ChangeMemberRole(owner) error = %v, want ErrValidation", err)
		}
	})

	t.Run("removing the owner row is refused", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		owner := registerUser(t, svc, "Alice", "alice@example.com")
		dev := registerUser(t, svc, "Bob", "bob@example.com")
		p := createProject(t, svc, owner.ID, "ENG")
		addMember(t, svc, p.ID, owner.ID, dev.Email, model.ProjectRoleAdmin)

		if _, err := svc.RemoveMember(ctx, p.ID, dev.ID, owner.ID); !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("RemoveMember(owner) error = %v, want ErrValidation", err)
		}

		got, err := svc.RemoveMember(ctx, p.ID, owner.ID, dev.ID)
		if err != nil {
			t.Fatalf("RemoveMember() error = %v", err)
		}
		if tracker.IsMember(got, dev.ID) {
			t.Error("removed member still in team")
		}
	})
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	owner := registerUser(t, svc, "Alice", "alice@example.com")
	admin := registerUser(t, svc, "Bob", "bob@example.com")
	p := createProject(t, svc, owner.ID, "ENG")
	addMember(t, svc, p.ID, owner.ID, admin.Email, model.ProjectRoleAdmin)

	if err := svc.DeleteProject(ctx, p.ID, admin.ID); !errors.Is(err, tracker.ErrUnauthorized) {
		t.Errorf("admin DeleteProject() error = %v, want ErrUnauthorized", err)
	}
	if err := svc.DeleteProject(ctx, p.ID, owner.ID); err != nil {
		t.Fatalf("owner DeleteProject() error = %v", err)
	}
	if _, err := svc.Project(ctx, p.ID, owner.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("Project() after delete error = %v, want ErrNotFound", err)
	}
}
