package api

import (
	"net/http"
	"time"

	"trackd/internal/model"
	"trackd/internal/tracker"
)

func (s *Server) registerTicketRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects/{id}/tickets", s.authed(s.handleListTickets))
	mux.HandleFunc("POST /api/projects/{id}/tickets", s.authed(s.handleCreateTicket))
	mux.HandleFunc("GET /api/tickets/{id}", s.authed(s.handleGetTicket))
	mux.HandleFunc("PUT /api/tickets/{id}", s.authed(s.handleUpdateTicket))
	mux.HandleFunc("DELETE /api/tickets/{id}", s.authed(s.handleDeleteTicket))
	mux.HandleFunc("GET /api/tickets/{id}/activity", s.authed(s.handleTicketActivity))

	mux.HandleFunc("GET /api/tickets/{id}/comments", s.authed(s.handleListComments))
	mux.HandleFunc("POST /api/tickets/{id}/comments", s.authed(s.handleCreateComment))
	mux.HandleFunc("PUT /api/comments/{id}", s.authed(s.handleUpdateComment))
	mux.HandleFunc("DELETE /api/comments/{id}", s.authed(s.handleDeleteComment))
}

func (s *Server) handleListTickets(w http.ResponseWriter, r *http.Request, user *model.User) {
	tickets, err := s.svc.Tickets(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Title       string               `json:"title"`
		Description string               `json:"description"`
		Type        model.TicketType     `json:"type"`
		Priority    model.TicketPriority `json:"priority"`
		AssigneeID  string               `json:"assigneeId"`
		DueDate     *time.Time           `json:"dueDate"`
		Tags        []string             `json:"tags"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := s.svc.CreateTicket(r.Context(), r.PathValue("id"), user.ID, tracker.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request, user *model.User) {
	t, err := s.svc.Ticket(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Title       *string               `json:"title"`
		Description *string               `json:"description"`
		Type        *model.TicketType     `json:"type"`
		Priority    *model.TicketPriority `json:"priority"`
		Status      *model.TicketStatus   `json:"status"`
		AssigneeID  *string               `json:"assigneeId"`
		DueDate     *time.Time            `json:"dueDate"`
		Tags        []string              `json:"tags"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	t, err := s.svc.UpdateTicket(r.Context(), r.PathValue("id"), user.ID, tracker.UpdateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Priority:    req.Priority,
		Status:      req.Status,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTicket(w http.ResponseWriter, r *http.Request, user *model.User) {
	if err := s.svc.DeleteTicket(r.Context(), r.PathValue("id"), user.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTicketActivity(w http.ResponseWriter, r *http.Request, user *model.User) {
	activities, err := s.svc.TicketActivity(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request, user *model.User) {
	comments, err := s.svc.Comments(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Text     string `json:"text"`
		ParentID string `json:"parentCommentId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.svc.CreateComment(r.Context(), r.PathValue("id"), user.ID, req.Text, req.ParentID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	c, err := s.svc.UpdateComment(r.Context(), r.PathValue("id"), user.ID, req.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request, user *model.User) {
	if err := s.svc.DeleteComment(r.Context(), r.PathValue("id"), user.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
