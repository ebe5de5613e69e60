package api

import (
	"net/http"

	"trackd/internal/model"
)

func (s *Server) registerNotificationRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/notifications", s.authed(s.handleListNotifications))
	mux.HandleFunc("PUT /api/notifications/read-all", s.authed(s.handleMarkAllRead))
	mux.HandleFunc("DELETE /api/notifications/read", s.authed(s.handleClearRead))
	mux.HandleFunc("PUT /api/notifications/{id}/read", s.authed(s.handleMarkRead))
	mux.HandleFunc("DELETE /api/notifications/{id}", s.authed(s.handleDeleteNotification))
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request, user *model.User) {
	list, err := s.svc.Notifications(r.Context(), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if list.Notifications == nil {
		list.Notifications = []model.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request, user *model.User) {
	n, err := s.svc.MarkNotificationRead(r.Context(), r.PathValue("id"), user.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request, user *model.User) {
	if err := s.svc.MarkAllNotificationsRead(r.Context(), user.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleClearRead(w http.ResponseWriter, r *http.Request, user *model.User) {
	if err := s.svc.ClearReadNotifications(r.Context(), user.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request, user *model.User) {
	if err := s.svc.DeleteNotification(r.Context(), r.PathValue("id"), user.ID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
