package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trackd/internal/model"
)

const commentColumns = `id, ticket_id, user_id, text, parent_id, edited,
	edited_at, created_at, updated_at`

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO comments (`+commentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.TicketID, c.UserID, c.Text, nullString(c.ParentID),
		c.Edited, nullTime(c.EditedAt), c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (s *Store) CommentByID(ctx context.Context, id string) (*model.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading comment: %w", err)
	}
	return c, nil
}

// CommentsForTicket lists comments oldest first so threads read top-down.
func (s *Store) CommentsForTicket(ctx context.Context, ticketID string) ([]model.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+` FROM comments
		WHERE ticket_id = ?
		ORDER BY created_at, id`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	return comments, nil
}

func (s *Store) UpdateComment(ctx context.Context, c *model.Comment) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE comments SET text = ?, edited = ?, edited_at = ?, updated_at = ?
		WHERE id = ?`,
		c.Text, c.Edited, nullTime(c.EditedAt), c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("updating comment: %w", err)
	}
	return nil
}

// DeleteCommentCascade removes the comment and its direct replies in one
// transaction. Replies-of-replies keep their parent_id and survive.
func (s *Store) DeleteCommentCascade(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE parent_id = ?`, id); err != nil {
			return fmt.Errorf("deleting replies: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}
		return nil
	})
}

func scanComment(row rowScanner) (*model.Comment, error) {
	var (
		c        model.Comment
		parent   sql.NullString
		editedAt sql.NullTime
	)
	err := row.Scan(&c.ID, &c.TicketID, &c.UserID, &c.Text, &parent,
		&c.Edited, &editedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.ParentID = parent.String
	if editedAt.Valid {
		e := editedAt.Time
		c.EditedAt = &e
	}
	return &c, nil
}
