// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/models"
)

// Entry points the gate sends callers to
const (
	VoterLoginPath     = "/voter_login/"
	VoterDashboardPath = "/voter_dashboard/"
	AdminDashboardPath = "/admin_dashboard/"
)

// HandlerFunc is a handler that receives the caller's resolved identity
// instead of reading it from the session itself.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, ident auth.Identity)

// Gate resolves identities from the session cookie and applies the
// role policy before a handler runs.
type Gate struct {
	sessions *auth.Sessions
	enforcer *auth.Enforcer
}

func NewGate(sessions *auth.Sessions, enforcer *auth.Enforcer) *Gate {
	return &Gate{sessions: sessions, enforcer: enforcer}
}

// Identify returns the identity carried by the request's session cookie.
// A missing, expired or tampered cookie yields the anonymous identity.
func (g *Gate) Identify(r *http.Request) auth.Identity {
	c, err := r.Cookie(auth.SessionCookie)
	if err != nil || c.Value == "" {
		return auth.Identity{}
	}

	ident, err := g.sessions.Parse(c.Value)
	if err != nil {
		slog.Debug("ignoring session cookie", "error", err, "request_id", RequestID(r.Context()))
		return auth.Identity{}
	}
	return ident
}

// Public runs next for everyone, anonymous callers included.
func (g *Gate) Public(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		next(w, r, g.Identify(r))
	}
}

// Authenticated runs next for any logged-in account.
func (g *Gate) Authenticated(next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := g.Identify(r)
		if !ident.IsAuthenticated() {
			Redirect(w, r, VoterLoginPath, models.FlashError, "Please log in to continue.")
			return
		}
		next(w, r, ident)
	}
}

// Require runs next only when the caller's role may perform act on obj.
// Denials are redirects, not error responses: anonymous callers go to the
// voter login, voters to their dashboard and admins to theirs.
func (g *Gate) Require(obj, act string, next HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ident := g.Identify(r)
		if !ident.IsAuthenticated() {
			Redirect(w, r, VoterLoginPath, models.FlashError, "Please log in to continue.")
			return
		}

		if !g.enforcer.CheckPermission(ident, obj, act) {
			slog.Info("access denied",
				"request_id", RequestID(r.Context()),
				"user_id", ident.UserID,
				"role", ident.Role,
				"object", obj,
				"action", act,
			)
			if ident.IsAdmin() {
				msg := "That page is for voters."
				if obj == auth.ObjVote && act == auth.ActCast {
					msg = "Admins cannot vote."
				}
				Redirect(w, r, AdminDashboardPath, models.FlashError, msg)
				return
			}
			Redirect(w, r, VoterDashboardPath, "", "")
			return
		}

		next(w, r, ident)
	}
}

// SetSession stores a session token in an HttpOnly cookie
func SetSession(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSession removes the session cookie
func ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
