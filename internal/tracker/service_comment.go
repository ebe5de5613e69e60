package tracker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"trackd/internal/model"
)

// Comments lists a ticket's comments oldest-first, for members only.
func (s *Service) Comments(ctx context.Context, ticketID, userID string) ([]model.Comment, error) {
	t, p, err := s.ticketProject(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanViewProject(p, userID) {
		return nil, fmt.Errorf("listing comments on ticket %s: %w", ticketID, ErrUnauthorized)
	}
	comments, err := s.store.CommentsForTicket(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

// CreateComment adds a comment to a ticket. Any member may comment. parentID,
// when set, must name an existing comment on the same ticket. The team is
// notified after the comment has committed.
func (s *Service) CreateComment(ctx context.Context, ticketID, actorID, text, parentID string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return nil, fmt.Errorf("comment longer than %d characters: %w", model.MaxCommentLength, ErrValidation)
	}

	t, p, err := s.ticketProject(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !CanCreateTicket(p, actorID) {
		return nil, fmt.Errorf("commenting on ticket %s: %w", ticketID, ErrUnauthorized)
	}

	if parentID != "" {
		parent, err := s.store.CommentByID(ctx, parentID)
		if err != nil {
			return nil, fmt.Errorf("loading parent comment: %w", err)
		}
		if parent == nil || parent.TicketID != t.ID {
			return nil, fmt.Errorf("parent comment %s: %w", parentID, ErrNotFound)
		}
	}

	now := s.clock.Now()
	c := &model.Comment{
		ID:        s.idgen.New(),
		TicketID:  t.ID,
		UserID:    actorID,
		Text:      text,
		ParentID:  parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("creating comment: %w", err)
	}

	s.notifier.TicketCommented(ctx, t, c.Text, actorID, p.TeamMembers)
	return c, nil
}

// UpdateComment edits a comment's text. Author only; marks it edited.
func (s *Service) UpdateComment(ctx context.Context, commentID, actorID, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("comment text is required: %w", ErrValidation)
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return nil, fmt.Errorf("comment longer than %d characters: %w", model.MaxCommentLength, ErrValidation)
	}

	c, err := s.store.CommentByID(ctx, commentID)
	if err != nil {
		return nil, fmt.Errorf("loading comment: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	if c.UserID != actorID {
		return nil, fmt.Errorf("editing comment %s: %w", commentID, ErrUnauthorized)
	}

	now := s.clock.Now()
	c.Text = text
	c.Edited = true
	c.EditedAt = &now
	c.UpdatedAt = now
	if err := s.store.UpdateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("updating comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a comment and its direct replies. The author, a
// project admin, or the owner only. Replies-of-replies are untouched: the
// cascade is one level, never transitive.
func (s *Service) DeleteComment(ctx context.Context, commentID, actorID string) error {
	c, err := s.store.CommentByID(ctx, commentID)
	if err != nil {
		return fmt.Errorf("loading comment: %w", err)
	}
	if c == nil {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}

	_, p, err := s.ticketProject(ctx, c.TicketID)
	if err != nil {
		return err
	}
	if !CanDeleteComment(p, c, actorID) {
		return fmt.Errorf("deleting comment %s: %w", commentID, ErrUnauthorized)
	}

	if err := s.store.DeleteCommentCascade(ctx, commentID); err != nil {
		return fmt.Errorf("deleting comment: %w", err)
	}
	return nil
}
