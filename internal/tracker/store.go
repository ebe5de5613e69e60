package tracker

import (
	"context"
	"time"

	"trackd/internal/model"
)

// Store provides persistence for all tracker entities. Lookups return
// (nil, nil) when the id does not resolve; services turn that into
// ErrNotFound. Implementations must enforce uniqueness of user emails,
// project keys, and (project, ticket number) pairs, surfacing violations
// as errors wrapping ErrConflict.
type Store interface {
	// User operations

	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, u *model.User) error
	DeleteUser(ctx context.Context, id string) error

	// Session operations

	CreateSession(ctx context.Context, s *model.Session) error
	SessionByToken(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) error

	// Project operations. Projects load with their full membership list.

	CreateProject(ctx context.Context, p *model.Project) error
	ProjectByID(ctx context.Context, id string) (*model.Project, error)
	ProjectByKey(ctx context.Context, key string) (*model.Project, error)
	ProjectsForUser(ctx context.Context, userID string) ([]model.Project, error)
	UpdateProject(ctx context.Context, p *model.Project) error
	DeleteProject(ctx context.Context, id string) error

	// Membership operations, serialized per project by the implementation.

	AddTeamMember(ctx context.Context, projectID string, m model.TeamMember) error
	UpdateTeamMemberRole(ctx context.Context, projectID, userID string, role model.ProjectRole) error
	RemoveTeamMember(ctx context.Context, projectID, userID string) error

	// Ticket operations. CreateTicket assigns Number and Key atomically
	// with the insert and retries on a numbering collision.

	CreateTicket(ctx context.Context, t *model.Ticket, projectKey string) error
	TicketByID(ctx context.Context, id string) (*model.Ticket, error)
	TicketsForProject(ctx context.Context, projectID string) ([]model.Ticket, error)
	UpdateTicket(ctx context.Context, t *model.Ticket) error
	DeleteTicket(ctx context.Context, id string) error
	TicketStats(ctx context.Context, projectID string) (*model.TicketStats, error)

	// Comment operations. DeleteCommentCascade removes the comment and its
	// direct replies (one level, never transitive).

	CreateComment(ctx context.Context, c *model.Comment) error
	CommentByID(ctx context.Context, id string) (*model.Comment, error)
	CommentsForTicket(ctx context.Context, ticketID string) ([]model.Comment, error)
	UpdateComment(ctx context.Context, c *model.Comment) error
	DeleteCommentCascade(ctx context.Context, id string) error

	// Activity operations. The trail is append-only.

	CreateActivity(ctx context.Context, a *model.Activity) error
	ActivitiesForTicket(ctx context.Context, ticketID string, limit int) ([]model.Activity, error)

	// Notification operations

	CreateNotification(ctx context.Context, n *model.Notification) error
	NotificationByID(ctx context.Context, id string) (*model.Notification, error)
	NotificationsForUser(ctx context.Context, userID string, limit int) ([]model.Notification, error)
	CountUnreadNotifications(ctx context.Context, userID string) (int, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, id string) error
	DeleteReadNotifications(ctx context.Context, userID string) error

	// Maintenance

	PruneOrphans(ctx context.Context) (model.PruneReport, error)

	Close() error
}
