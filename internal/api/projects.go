package api

import (
	"net/http"

	"trackd/internal/model"
	"trackd/internal/tracker"
)

func (s *Server) registerProjectRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects", s.authed(s.handleListProjects))
	mux.HandleFunc("POST /api/projects", s.authed(s.handleCreateProject))
	mux.HandleFunc("GET /api/projects/{id}", s.authed(s.handleGetProject))
	mux.HandleFunc("PUT /api/projects/{id}", s.authed(s.handleUpdateProject))
	mux.HandleFunc("DELETE /api/projects/{id}", s.authed(s.handleDeleteProject))

	mux.HandleFunc("POST /api/projects/{id}/members", s.authed(s.handleAddMember))
	mux.HandleFunc("PUT /api/projects/{id}/members/{userID}", s.authed(s.handleChangeMemberRole))
	mux.HandleFunc("DELETE /api/projects/{id}/members/{userID}", s.authed(s.handleRemoveMember))

	mux.HandleFunc("GET /api/projects/{id}/stats", s.authed(s.handleTicketStats))
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request, user *model.User) {
	projects, err := s.svc.Projects(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Key         string `json:"key"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.svc.CreateProject(r.Context(), user.ID, tracker.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Key:         req.Key,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request, user *model.User) {
	p, err := s.svc.Project(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Status      *model.ProjectStatus `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.svc.UpdateProject(r.Context(), r.PathValue("id"), user.ID, tracker.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request, user *model.User) {
	if err := s.svc.DeleteProject(r.Context(), r.PathValue("id"), user.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Email string            `json:"email"`
		Role  model.ProjectRole `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.svc.AddMember(r.Context(), r.PathValue("id"), user.ID, req.Email, req.Role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleChangeMemberRole(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Role model.ProjectRole `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.svc.ChangeMemberRole(r.Context(), r.PathValue("id"), user.ID, r.PathValue("userID"), req.Role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRemoveMember(w http.ResponseWriter, r *http.Request, user *model.User) {
	p, err := s.svc.RemoveMember(r.Context(), r.PathValue("id"), user.ID, r.PathValue("userID"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleTicketStats(w http.ResponseWriter, r *http.Request, user *model.User) {
	stats, err := s.svc.TicketStats(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
