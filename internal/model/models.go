package model

import "time"

// UserRole is the global account role, distinct from per-project roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// Theme is the UI theme stored in user preferences.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

// Preferences is the per-user notification/theme preference block.
type Preferences struct {
	EmailNotifications bool  `json:"emailNotifications"`
	IssueAssigned      bool  `json:"issueAssigned"`
	IssueUpdated       bool  `json:"issueUpdated"`
	Comments           bool  `json:"comments"`
	Mentions           bool  `json:"mentions"`
	Theme              Theme `json:"theme"`
}

// DefaultPreferences returns the preference block assigned at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		IssueAssigned:      true,
		IssueUpdated:       true,
		Comments:           true,
		Mentions:           true,
		Theme:              ThemeLight,
	}
}

// User is a registered account. Email is stored lowercased and is unique.
type User struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	Role         UserRole    `json:"role"`
	Preferences  Preferences `json:"preferences"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Session is a bearer-token login session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ProjectRole is a user's role within a single project.
type ProjectRole string

const (
	ProjectRoleAdmin     ProjectRole = "admin"
	ProjectRoleDeveloper ProjectRole = "developer"
	ProjectRoleViewer    ProjectRole = "viewer"
)

// ValidProjectRole reports whether r is one of the known project roles.
func ValidProjectRole(r ProjectRole) bool {
	switch r {
	case ProjectRoleAdmin, ProjectRoleDeveloper, ProjectRoleViewer:
		return true
	}
	return false
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
	ProjectStatusOnHold   ProjectStatus = "on-hold"
)

// ValidProjectStatus reports whether s is one of the known project statuses.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusActive, ProjectStatusArchived, ProjectStatusOnHold:
		return true
	}
	return false
}

// TeamMember associates a user with a project and a role.
type TeamMember struct {
	UserID  string      `json:"userId"`
	Role    ProjectRole `json:"role"`
	AddedAt time.Time   `json:"addedAt"`
}

// Project groups tickets and a team. Key is uppercase, unique, and immutable
// after creation. The owner always appears in TeamMembers with role admin;
// project creation enforces that invariant.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Key         string        `json:"key"`
	OwnerID     string        `json:"ownerId"`
	TeamMembers []TeamMember  `json:"teamMembers"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// MaxProjectKeyLength is the longest accepted project key.
const MaxProjectKeyLength = 10

// TicketType classifies a ticket.
type TicketType string

const (
	TicketTypeBug         TicketType = "bug"
	TicketTypeFeature     TicketType = "feature"
	TicketTypeImprovement TicketType = "improvement"
	TicketTypeTask        TicketType = "task"
)

// ValidTicketType reports whether t is one of the known ticket types.
func ValidTicketType(t TicketType) bool {
	switch t {
	case TicketTypeBug, TicketTypeFeature, TicketTypeImprovement, TicketTypeTask:
		return true
	}
	return false
}

// TicketPriority orders tickets by urgency.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// ValidTicketPriority reports whether p is one of the known priorities.
func ValidTicketPriority(p TicketPriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// TicketStatus is the workflow state of a ticket.
type TicketStatus string

const (
	StatusTodo       TicketStatus = "todo"
	StatusInProgress TicketStatus = "in-progress"
	StatusDone       TicketStatus = "done"
)

// ValidTicketStatus reports whether s is one of the known ticket statuses.
func ValidTicketStatus(s TicketStatus) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Ticket is a tracked issue. (ProjectID, Number) is unique and Number is
// assigned sequentially per project starting at 1. Key is derived as
// "{project key}-{number}" and never changes. ReporterID is set at creation
// and is immutable. An empty AssigneeID means unassigned.
type Ticket struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"projectId"`
	Number      int            `json:"ticketNumber"`
	Key         string         `json:"ticketKey"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        TicketType     `json:"type"`
	Priority    TicketPriority `json:"priority"`
	Status      TicketStatus   `json:"status"`
	AssigneeID  string         `json:"assigneeId,omitempty"`
	ReporterID  string         `json:"reporterId"`
	DueDate     *time.Time     `json:"dueDate,omitempty"`
	Tags        []string       `json:"tags"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Comment is a note on a ticket. ParentID, when set, points at the comment
// this one replies to. Deleting a comment removes its direct replies only.
type Comment struct {
	ID        string     `json:"id"`
	TicketID  string     `json:"ticketId"`
	UserID    string     `json:"userId"`
	Text      string     `json:"text"`
	ParentID  string     `json:"parentCommentId,omitempty"`
	Edited    bool       `json:"edited"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// MaxCommentLength is the longest accepted comment text, in runes.
const MaxCommentLength = 1000

// ActivityAction identifies what a ticket activity entry records.
type ActivityAction string

const (
	ActionCreated         ActivityAction = "created"
	ActionUpdated         ActivityAction = "updated"
	ActionDeleted         ActivityAction = "deleted"
	ActionStatusChanged   ActivityAction = "status_changed"
	ActionPriorityChanged ActivityAction = "priority_changed"
	ActionAssigned        ActivityAction = "assigned"
	ActionUnassigned      ActivityAction = "unassigned"
	ActionCommented       ActivityAction = "commented"
	ActionDuplicated      ActivityAction = "duplicated"
)

// Activity is an immutable audit-trail entry for a ticket mutation.
type Activity struct {
	ID          string         `json:"id"`
	TicketID    string         `json:"ticketId"`
	UserID      string         `json:"userId"`
	Action      ActivityAction `json:"action"`
	Field       string         `json:"field,omitempty"`
	OldValue    string         `json:"oldValue,omitempty"`
	NewValue    string         `json:"newValue,omitempty"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// NotificationType identifies the event a notification was created for.
type NotificationType string

const (
	NotifyTicketAssigned     NotificationType = "ticket_assigned"
	NotifyTicketUpdated      NotificationType = "ticket_updated"
	NotifyTicketCommented    NotificationType = "ticket_commented"
	NotifyTicketMentioned    NotificationType = "ticket_mentioned"
	NotifyProjectAdded       NotificationType = "project_added"
	NotifyProjectRoleChanged NotificationType = "project_role_changed"
)

// Notification is an in-app record alerting a user to a relevant event.
// Created by the dispatcher; only the read flag is ever mutated afterwards.
type Notification struct {
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Link       string           `json:"link,omitempty"`
	TicketID   string           `json:"ticketId,omitempty"`
	ProjectID  string           `json:"projectId,omitempty"`
	ActionByID string           `json:"actionBy,omitempty"`
	Read       bool             `json:"read"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// TicketStats is a read-only aggregation of a project's tickets.
type TicketStats struct {
	ByStatus   map[TicketStatus]int   `json:"byStatus"`
	ByPriority map[TicketPriority]int `json:"byPriority"`
	ByType     map[TicketType]int     `json:"byType"`
	Total      int                    `json:"total"`
}

// PruneReport counts the orphaned records removed by an explicit cleanup run.
type PruneReport struct {
	Tickets       int `json:"tickets"`
	Comments      int `json:"comments"`
	Activities    int `json:"activities"`
	Notifications int `json:"notifications"`
}
