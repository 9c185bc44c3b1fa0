// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/views"
)

type AccountHandler struct {
	base
	sessions *auth.Sessions
}

func NewAccountHandler(svc *election.Service, v *views.Renderer, sessions *auth.Sessions) *AccountHandler {
	return &AccountHandler{base: base{svc: svc, views: v}, sessions: sessions}
}

// Home handles GET /
func (h *AccountHandler) Home(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.render(w, r, ident, http.StatusOK, "home", "Home", nil)
}

// VoterLoginForm handles GET /voter_login/
func (h *AccountHandler) VoterLoginForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.loginForm(w, r, ident, models.RoleVoter)
}

// AdminLoginForm handles GET /admin_login/
func (h *AccountHandler) AdminLoginForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.loginForm(w, r, ident, models.RoleAdmin)
}

// VoterLogin handles POST /voter_login/
func (h *AccountHandler) VoterLogin(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.login(w, r, ident, models.RoleVoter)
}

// AdminLogin handles POST /admin_login/
func (h *AccountHandler) AdminLogin(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.login(w, r, ident, models.RoleAdmin)
}

func (h *AccountHandler) loginForm(w http.ResponseWriter, r *http.Request, ident auth.Identity, role string) {
	if ident.IsAuthenticated() {
		http.Redirect(w, r, dashboardFor(ident), http.StatusFound)
		return
	}

	title := "Voter login"
	if role == models.RoleAdmin {
		title = "Admin login"
	}
	h.render(w, r, ident, http.StatusOK, "login", title, views.LoginData{Role: role})
}

func (h *AccountHandler) login(w http.ResponseWriter, r *http.Request, ident auth.Identity, role string) {
	loginPath := loginPathFor(role)
	if err := r.ParseForm(); err != nil {
		middleware.Redirect(w, r, loginPath, models.FlashError, "Invalid form submission.")
		return
	}

	user, err := h.svc.Login(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"), role)
	if err != nil {
		h.fail(w, r, ident, err, loginPath, "failed to log in")
		return
	}

	ident = auth.IdentityFor(user)
	token, expiresAt, err := h.sessions.Issue(ident)
	if err != nil {
		h.serverError(w, r, auth.Identity{}, "failed to issue session", err)
		return
	}
	middleware.SetSession(w, token, expiresAt)

	middleware.Redirect(w, r, dashboardFor(ident), models.FlashSuccess, fmt.Sprintf("Welcome, %s!", user.Username))
}

// RegisterForm handles GET /register/
func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	if ident.IsAuthenticated() {
		http.Redirect(w, r, dashboardFor(ident), http.StatusFound)
		return
	}
	h.render(w, r, ident, http.StatusOK, "register", "Register", views.RegisterData{Role: models.RoleVoter})
}

// Register handles POST /register/
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	if err := r.ParseForm(); err != nil {
		middleware.Redirect(w, r, "/register/", models.FlashError, "Invalid form submission.")
		return
	}

	in := election.RegisterInput{
		FirstName: r.PostFormValue("firstname"),
		LastName:  r.PostFormValue("lastname"),
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
		Role:      r.PostFormValue("role"),
	}
	user, err := h.svc.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, ident, err, "/register/", "failed to register account")
		return
	}

	role := models.RoleVoter
	if user.IsAdmin {
		role = models.RoleAdmin
	}
	middleware.Redirect(w, r, loginPathFor(role), models.FlashSuccess,
		fmt.Sprintf("Registration successful! Account created for %s! Please log in.", user.Username))
}

// Logout handles GET and POST /logout/
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	middleware.ClearSession(w)
	if ident.IsAuthenticated() {
		slog.Info("user logged out", "user_id", ident.UserID, "request_id", middleware.RequestID(r.Context()))
	}
	middleware.Redirect(w, r, "/", models.FlashSuccess, "You have been logged out.")
}

// Dashboard handles GET /dashboard/ by sending each role to its own page
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	http.Redirect(w, r, dashboardFor(ident), http.StatusFound)
}

// NotFound renders the 404 page for paths no route claims
func (h *AccountHandler) NotFound(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.notFound(w, r, ident)
}
