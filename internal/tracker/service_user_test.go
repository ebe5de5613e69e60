package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"trackd/internal/model"
	"trackd/internal/testutil"
	"trackd/internal/tracker"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("email is lowercased and trimmed", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		u, err := svc.Register(ctx, tracker.RegisterInput{
			Name:     "Alice",
			Email:    "  Alice@Example.COM ",
			Password: testPassword,
		})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		if u.Email != "alice@example.com" {
			t.Errorf("email = %q, want alice@example.com", u.Email)
		}
		if u.Role != model.UserRoleUser {
			t.Errorf("role = %s, want user", u.Role)
		}
		if u.Preferences != model.DefaultPreferences() {
			t.Errorf("preferences = %+v, want defaults", u.Preferences)
		}
	})

	t.Run("duplicate email conflicts regardless of case", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		registerUser(t, svc, "Alice", "alice@example.com")

		_, err := svc.Register(ctx, tracker.RegisterInput{
			Name:     "Imposter",
			Email:    "ALICE@example.com",
			Password: testPassword,
		})
		if !errors.Is(err, tracker.ErrConflict) {
			t.Errorf("Register() error = %v, want ErrConflict", err)
		}
	})

	t.Run("rejects malformed email and short password", func(t *testing.T) {
		svc, _, _ := newTestService(t)

		cases := []struct {
			name  string
			input tracker.RegisterInput
		}{
			{"no at sign", tracker.RegisterInput{Name: "A", Email: "not-an-email", Password: testPassword}},
			{"short password", tracker.RegisterInput{Name: "A", Email: "a@example.com", Password: "short"}},
			{"empty name", tracker.RegisterInput{Name: "  ", Email: "a@example.com", Password: testPassword}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if _, err := svc.Register(ctx, tc.input); !errors.Is(err, tracker.ErrValidation) {
					t.Errorf("Register() error = %v, want ErrValidation", err)
				}
			})
		}
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	registerUser(t, svc, "Alice", "alice@example.com")

	t.Run("correct credentials succeed", func(t *testing.T) {
		u, err := svc.Authenticate(ctx, "Alice@Example.com", testPassword)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if u.Email != "alice@example.com" {
			t.Errorf("email = %q", u.Email)
		}
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		_, badPass := svc.Authenticate(ctx, "alice@example.com", "wrong-password")
		_, badEmail := svc.Authenticate(ctx, "nobody@example.com", testPassword)
		for _, err := range []error{badPass, badEmail} {
			if !errors.Is(err, tracker.ErrUnauthorized) {
				t.Errorf("Authenticate() error = %v, want ErrUnauthorized", err)
			}
		}
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	alice := registerUser(t, svc, "Alice", "alice@example.com")
	registerUser(t, svc, "Bob", "bob@example.com")

	t.Run("updates name and email", func(t *testing.T) {
		u, err := svc.UpdateProfile(ctx, alice.ID, "Alice B", "Alice.B@Example.com")
		if err != nil {
			t.Fatalf("UpdateProfile() error = %v", err)
		}
		if u.Name != "Alice B" || u.Email != "alice.b@example.com" {
			t.Errorf("profile = %s/%s", u.Name, u.Email)
		}
	})

	t.Run("refuses an email held by another account", func(t *testing.T) {
		if _, err := svc.UpdateProfile(ctx, alice.ID, "Alice", "bob@example.com"); !errors.Is(err, tracker.ErrConflict) {
			t.Errorf("UpdateProfile() error = %v, want ErrConflict", err)
		}
	})

	t.Run("keeping your own email is fine", func(t *testing.T) {
		if _, err := svc.UpdateProfile(ctx, alice.ID, "Alice", "alice.b@example.com"); err != nil {
			t.Errorf("UpdateProfile() error = %v", err)
		}
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	alice := registerUser(t, svc, "Alice", "alice@example.com")

	t.Run("wrong current password is refused", func(t *testing.T) {
		err := svc.ChangePassword(ctx, alice.ID, "not-it", "replacement123", "replacement123")
		if !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("ChangePassword() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("mismatched confirmation is refused", func(t *testing.T) {
		err := svc.ChangePassword(ctx, alice.ID, testPassword, "replacement123", "replacement124")
		if !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("ChangePassword() error = %v, want ErrValidation", err)
		}
	})

	t.Run("re-using the current password is refused", func(t *testing.T) {
		err := svc.ChangePassword(ctx, alice.ID, testPassword, testPassword, testPassword)
		if !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("ChangePassword() error = %v, want ErrValidation", err)
		}
	})

	t.Run("valid change takes effect", func(t *testing.T) {
		if err := svc.ChangePassword(ctx, alice.ID, testPassword, "replacement123", "replacement123"); err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}
		if _, err := svc.Authenticate(ctx, alice.Email, testPassword); !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("old password still works: %v", err)
		}
		if _, err := svc.Authenticate(ctx, alice.Email, "replacement123"); err != nil {
			t.Errorf("new password rejected: %v", err)
		}
	})
}

func TestUpdatePreferences(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	alice := registerUser(t, svc, "Alice", "alice@example.com")

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		off := false
		dark := model.ThemeDark
		prefs, err := svc.UpdatePreferences(ctx, alice.ID, tracker.PreferencesUpdate{
			EmailNotifications: &off,
			Theme:              &dark,
		})
		if err != nil {
			t.Fatalf("UpdatePreferences() error = %v", err)
		}
		if prefs.EmailNotifications {
			t.Error("emailNotifications still on")
		}
		if prefs.Theme != model.ThemeDark {
			t.Errorf("theme = %s, want dark", prefs.Theme)
		}
		if !prefs.IssueAssigned || !prefs.Comments {
			t.Errorf("untouched fields changed: %+v", prefs)
		}
	})

	t.Run("rejects an unknown theme", func(t *testing.T) {
		bad := model.Theme("solarized")
		if _, err := svc.UpdatePreferences(ctx, alice.ID, tracker.PreferencesUpdate{Theme: &bad}); !errors.Is(err, tracker.ErrValidation) {
			t.Errorf("UpdatePreferences() error = %v, want ErrValidation", err)
		}
	})
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	alice := registerUser(t, svc, "Alice", "alice@example.com")

	if err := svc.DeleteAccount(ctx, alice.ID, "wrong"); !errors.Is(err, tracker.ErrUnauthorized) {
		t.Errorf("DeleteAccount(wrong password) error = %v, want ErrUnauthorized", err)
	}
	if err := svc.DeleteAccount(ctx, alice.ID, testPassword); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if _, err := svc.User(ctx, alice.ID); !errors.Is(err, tracker.ErrNotFound) {
		t.Errorf("User() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	ttl := 24 * time.Hour

	t.Run("login issues a resolvable token", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		alice := registerUser(t, svc, "Alice", "alice@example.com")

		sess, u, err := svc.Login(ctx, alice.Email, testPassword, ttl)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if u.ID != alice.ID {
			t.Errorf("login user = %s, want %s", u.ID, alice.ID)
		}

		got, err := svc.SessionUser(ctx, sess.Token)
		if err != nil {
			t.Fatalf("SessionUser() error = %v", err)
		}
		if got.ID != alice.ID {
			t.Errorf("session user = %s, want %s", got.ID, alice.ID)
		}
	})

	t.Run("logout invalidates the token and is idempotent", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		alice := registerUser(t, svc, "Alice", "alice@example.com")
		sess, _, err := svc.Login(ctx, alice.Email, testPassword, ttl)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		if err := svc.Logout(ctx, sess.Token); err != nil {
			t.Fatalf("Logout() error = %v", err)
		}
		if err := svc.Logout(ctx, sess.Token); err != nil {
			t.Errorf("second Logout() error = %v, want nil", err)
		}
		if _, err := svc.SessionUser(ctx, sess.Token); !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("SessionUser() after logout error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("tokens expire with the clock", func(t *testing.T) {
		st := testutil.NewTestStore(t)
		clock := testutil.FixedClock()
		svc := tracker.NewService(st, testutil.NewCaptureDispatcher(), tracker.NewNopLogger(), clock, testutil.NewStubIDGenerator())
		alice := registerUser(t, svc, "Alice", "alice@example.com")

		sess, _, err := svc.Login(ctx, alice.Email, testPassword, ttl)
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}

		clock.Advance(ttl - time.Minute)
		if _, err := svc.SessionUser(ctx, sess.Token); err != nil {
			t.Errorf("SessionUser() before expiry error = %v", err)
		}

		clock.Advance(2 * time.Minute)
		if _, err := svc.SessionUser(ctx, sess.Token); !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("SessionUser() after expiry error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("empty token is unauthorized", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.SessionUser(ctx, ""); !errors.Is(err, tracker.ErrUnauthorized) {
			t.Errorf("SessionUser(\"\") error = %v, want ErrUnauthorized", err)
		}
	})
}
