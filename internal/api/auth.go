package api

import (
	"errors"
	"net/http"

	"trackd/internal/model"
	"trackd/internal/tracker"
)

func (s *Server) registerAuthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", s.authedToken(s.handleLogout))
	mux.HandleFunc("GET /api/auth/me", s.authed(s.handleMe))

	mux.HandleFunc("PUT /api/users/me", s.authed(s.handleUpdateProfile))
	mux.HandleFunc("PUT /api/users/me/password", s.authed(s.handleChangePassword))
	mux.HandleFunc("PUT /api/users/me/preferences", s.authed(s.handleUpdatePreferences))
	mux.HandleFunc("DELETE /api/users/me", s.authed(s.handleDeleteAccount))
}

// authedToken is authed for handlers that also need the raw token.
func (s *Server) authedToken(h func(w http.ResponseWriter, r *http.Request, user *model.User, token string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		user, err := s.svc.SessionUser(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		h(w, r, user, token)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.svc.Register(r.Context(), tracker.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	sess, _, err := s.svc.Login(r.Context(), u.Email, req.Password, s.sessionTTL)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"token": sess.Token, "user": u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	sess, u, err := s.svc.Login(r.Context(), req.Email, req.Password, s.sessionTTL)
	if err != nil {
		// Bad credentials on login are a 401, not a 403.
		if errors.Is(err, tracker.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": sess.Token, "user": u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ *model.User, token string) {
	if err := s.svc.Logout(r.Context(), token); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, user *model.User) {
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := s.svc.UpdateProfile(r.Context(), user.ID, req.Name, req.Email)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := s.svc.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		EmailNotifications *bool        `json:"emailNotifications"`
		IssueAssigned      *bool        `json:"issueAssigned"`
		IssueUpdated       *bool        `json:"issueUpdated"`
		Comments           *bool        `json:"comments"`
		Mentions           *bool        `json:"mentions"`
		Theme              *model.Theme `json:"theme"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	prefs, err := s.svc.UpdatePreferences(r.Context(), user.ID, tracker.PreferencesUpdate{
		EmailNotifications: req.EmailNotifications,
		IssueAssigned:      req.IssueAssigned,
		IssueUpdated:       req.IssueUpdated,
		Comments:           req.Comments,
		Mentions:           req.Mentions,
		Theme:              req.Theme,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, user *model.User) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.svc.DeleteAccount(r.Context(), user.ID, req.Password); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
