package store

import (
	"context"
	"database/sql"
	"fmt"

	"trackd/internal/model"
)

// PruneOrphans deletes records whose parent no longer exists. Deleting a
// project or ticket does not cascade to these tables, so this runs as an
// explicit maintenance pass: tickets of deleted projects first, then
// comments and activities of deleted tickets, then notifications whose
// ticket or recipient is gone.
func (s *Store) PruneOrphans(ctx context.Context) (model.PruneReport, error) {
	var report model.PruneReport
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		steps := []struct {
			count *int
			query string
		}{
			{&report.Tickets, `
				DELETE FROM tickets
				WHERE project_id NOT IN (SELECT id FROM projects)`},
			{&report.Comments, `
				DELETE FROM comments
				WHERE ticket_id NOT IN (SELECT id FROM tickets)`},
			{&report.Activities, `
				DELETE FROM activities
				WHERE ticket_id NOT IN (SELECT id FROM tickets)`},
			{&report.Notifications, `
				DELETE FROM notifications
				WHERE (ticket_id != '' AND ticket_id NOT IN (SELECT id FROM tickets))
				   OR user_id NOT IN (SELECT id FROM users)`},
		}
		for _, step := range steps {
			res, err := tx.ExecContext(ctx, step.query)
			if err != nil {
				return fmt.Errorf("pruning orphans: %w", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("counting pruned rows: %w", err)
			}
			*step.count = int(n)
		}
		return nil
	})
	if err != nil {
		return model.PruneReport{}, err
	}
	return report, nil
}
