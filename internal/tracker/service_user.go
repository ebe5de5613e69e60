package tracker

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"trackd/internal/auth"
	"trackd/internal/model"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     model.UserRole // defaults to user; admin only via the CLI
}

// PreferencesUpdate carries partial preference changes; nil means unchanged.
type PreferencesUpdate struct {
	EmailNotifications *bool
	IssueAssigned      *bool
	IssueUpdated       *bool
	Comments           *bool
	Mentions           *bool
	Theme              *model.Theme
}

// Register creates a new account. Emails are lowercased and unique; the
// password is bcrypt-hashed before it ever reaches the store.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", ErrValidation)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, fmt.Errorf("password shorter than %d characters: %w", auth.MinPasswordLength, ErrValidation)
	}

	existing, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s already registered: %w", email, ErrConflict)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = model.UserRoleUser
	}

	now := s.clock.Now()
	u := &model.User{
		ID:           s.idgen.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Preferences:  model.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", "user", u.ID, "email", u.Email)
	return u, nil
}

// Authenticate verifies email+password and returns the account. A wrong
// password and an unknown email both surface as ErrUnauthorized so callers
// can't probe which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.store.UserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	}
	return u, nil
}

// User returns an account by id.
func (s *Service) User(ctx context.Context, id string) (*model.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return u, nil
}

// UpdateProfile changes name and email. A new email must not belong to
// another account.
func (s *Service) UpdateProfile(ctx context.Context, userID, name, email string) (*model.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("name and email are required: %w", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email address: %w", ErrValidation)
	}

	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != u.Email {
		other, err := s.store.UserByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("checking email: %w", err)
		}
		if other != nil && other.ID != userID {
			return nil, fmt.Errorf("email %s already in use: %w", email, ErrConflict)
		}
	}

	u.Name = name
	u.Email = email
	u.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return u, nil
}

// ChangePassword verifies the current password and replaces it. The new
// password must match its confirmation and differ from the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, newPassword, confirm string) error {
	if current == "" || newPassword == "" || confirm == "" {
		return fmt.Errorf("all password fields are required: %w", ErrValidation)
	}
	if newPassword != confirm {
		return fmt.Errorf("new passwords do not match: %w", ErrValidation)
	}
	if len(newPassword) < auth.MinPasswordLength {
		return fmt.Errorf("password shorter than %d characters: %w", auth.MinPasswordLength, ErrValidation)
	}

	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return fmt.Errorf("current password is incorrect: %w", ErrUnauthorized)
	}
	if auth.CheckPassword(u.PasswordHash, newPassword) {
		return fmt.Errorf("new password must differ from the current one: %w", ErrValidation)
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	s.logger.Info("password changed", "user", userID)
	return nil
}

// UpdatePreferences applies a partial preference update and returns the
// resulting block.
func (s *Service) UpdatePreferences(ctx context.Context, userID string, upd PreferencesUpdate) (*model.Preferences, error) {
	u, err := s.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefs := u.Preferences
	if upd.EmailNotifications != nil {
		prefs.EmailNotifications = *upd.EmailNotifications
	}
	if upd.IssueAssigned != nil {
		prefs.IssueAssigned = *upd.IssueAssigned
	}
	if upd.IssueUpdated != nil {
		prefs.IssueUpdated = *upd.IssueUpdated
	}
	if upd.Comments != nil {
		prefs.Comments = *upd.Comments
	}
	if upd.Mentions != nil {
		prefs.Mentions = *upd.Mentions
	}
	if upd.Theme != nil {
		switch *upd.Theme {
		case model.ThemeLight, model.ThemeDark, model.ThemeAuto:
		default:
			return nil, fmt.Errorf("unknown theme %q: %w", *upd.Theme, ErrValidation)
		}
		prefs.Theme = *upd.Theme
	}

	u.Preferences = prefs
	u.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("updating preferences: %w", err)
	}
	return &u.Preferences, nil
}

// DeleteAccount removes the account after re-verifying the password. Owned
// projects, tickets and comments are deliberately left behind; PruneOrphans
// is the explicit cleanup path.
func (s *Service) DeleteAccount(ctx context.Context, userID, password string) error {
	if password == "" {
		return fmt.Errorf("password is required: %w", ErrValidation)
	}
	u, err := s.User(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return fmt.Errorf("password is incorrect: %w", ErrUnauthorized)
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}
	s.logger.Info("account deleted", "user", userID)
	return nil
}

// PruneOrphans removes records whose parent entity is gone: tickets of
// deleted projects, comments and activities of deleted tickets, and
// notifications of deleted users. Cleanup is an explicit batch operation
// rather than an implicit cascade.
func (s *Service) PruneOrphans(ctx context.Context) (model.PruneReport, error) {
	report, err := s.store.PruneOrphans(ctx)
	if err != nil {
		return model.PruneReport{}, fmt.Errorf("pruning orphans: %w", err)
	}
	s.logger.Info("orphans pruned",
		"tickets", report.Tickets,
		"comments", report.Comments,
		"activities", report.Activities,
		"notifications", report.Notifications,
	)
	return report, nil
}
