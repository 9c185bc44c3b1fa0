// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/views"
)

type AdminHandler struct {
	base
}

func NewAdminHandler(svc *election.Service, v *views.Renderer) *AdminHandler {
	return &AdminHandler{base: base{svc: svc, views: v}}
}

// Dashboard handles GET /admin_dashboard/
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	stats, err := h.svc.Dashboard(r.Context())
	if err != nil {
		h.serverError(w, r, ident, "failed to load dashboard", err)
		return
	}
	h.render(w, r, ident, http.StatusOK, "admin_dashboard", "Dashboard", stats)
}

// Votes handles GET /votes/
func (h *AdminHandler) Votes(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	votes, err := h.svc.ListVotes(r.Context())
	if err != nil {
		h.serverError(w, r, ident, "failed to list votes", err)
		return
	}
	h.render(w, r, ident, http.StatusOK, "votes", "Votes", votes)
}
