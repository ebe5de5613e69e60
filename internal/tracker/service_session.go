package tracker

import (
	"context"
	"fmt"
	"time"

	"trackd/internal/model"
)

// Login authenticates the credentials and opens a bearer-token session
// valid for ttl.
func (s *Service) Login(ctx context.Context, email, password string, ttl time.Duration) (*model.Session, *model.User, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	sess := &model.Session{
		ID:        s.idgen.New(),
		UserID:    u.ID,
		Token:     s.idgen.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, u, nil
}

// Logout discards the session for the given token. Unknown tokens are a
// no-op: logging out twice is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SessionUser resolves a bearer token to its account. Expired or unknown
// tokens surface as ErrUnauthorized.
func (s *Service) SessionUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, fmt.Errorf("missing session token: %w", ErrUnauthorized)
	}
	sess, err := s.store.SessionByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if sess == nil || s.clock.Now().After(sess.ExpiresAt) {
		return nil, fmt.Errorf("session expired or unknown: %w", ErrUnauthorized)
	}
	u, err := s.store.UserByID(ctx, sess.UserID)
	if err != nil {
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("session user gone: %w", ErrUnauthorized)
	}
	return u, nil
}
