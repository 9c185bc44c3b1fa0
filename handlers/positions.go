// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/views"
)

const positionsPath = "/positions/"

type PositionHandler struct {
	base
}

func NewPositionHandler(svc *election.Service, v *views.Renderer) *PositionHandler {
	return &PositionHandler{base: base{svc: svc, views: v}}
}

func readPositionForm(r *http.Request) election.PositionInput {
	// A non-numeric count becomes 0 and fails validation
	winners, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("maximum_winners")))
	return election.PositionInput{
		Description:    r.PostFormValue("description"),
		MaximumWinners: winners,
	}
}

// List handles GET /positions/
func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	positions, err := h.svc.ListPositions(r.Context())
	if err != nil {
		h.serverError(w, r, ident, "failed to list positions", err)
		return
	}
	h.render(w, r, ident, http.StatusOK, "positions", "Positions", positions)
}

// AddForm handles GET /positions/add/
func (h *PositionHandler) AddForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.render(w, r, ident, http.StatusOK, "position_form", "Add position", views.PositionFormData{
		Position: models.Position{MaximumWinners: 1},
	})
}

// Add handles POST /positions/add/
func (h *PositionHandler) Add(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	if err := r.ParseForm(); err != nil {
		middleware.Redirect(w, r, "/positions/add/", models.FlashError, "Invalid form submission.")
		return
	}

	p, err := h.svc.CreatePosition(r.Context(), readPositionForm(r))
	if err != nil {
		h.fail(w, r, ident, err, "/positions/add/", "failed to create position")
		return
	}

	middleware.Redirect(w, r, positionsPath, models.FlashSuccess, fmt.Sprintf("Position %q added.", p.Description))
}

// EditForm handles GET /positions/edit/{id}/
func (h *PositionHandler) EditForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, ident)
		return
	}

	p, err := h.svc.GetPosition(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, positionsPath, "failed to load position")
		return
	}
	h.render(w, r, ident, http.StatusOK, "position_form", "Edit position", views.PositionFormData{Position: *p})
}

// Edit handles POST /positions/edit/{id}/
func (h *PositionHandler) Edit(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		middleware.Redirect(w, r, positionsPath, models.FlashError, "Position not found")
		return
	}
	if err := r.ParseForm(); err != nil {
		middleware.Redirect(w, r, positionsPath, models.FlashError, "Invalid form submission.")
		return
	}

	p, err := h.svc.UpdatePosition(r.Context(), id, readPositionForm(r))
	if err != nil {
		h.fail(w, r, ident, err, fmt.Sprintf("/positions/edit/%d/", id), "failed to update position")
		return
	}

	middleware.Redirect(w, r, positionsPath, models.FlashSuccess, fmt.Sprintf("Position %q updated.", p.Description))
}

// Delete handles POST /positions/delete/{id}/. Its candidates and their
// votes go with it.
func (h *PositionHandler) Delete(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		middleware.Redirect(w, r, positionsPath, models.FlashError, "Position not found")
		return
	}

	if err := h.svc.DeletePosition(r.Context(), id); err != nil {
		h.fail(w, r, ident, err, positionsPath, "failed to delete position")
		return
	}

	middleware.Redirect(w, r, positionsPath, models.FlashSuccess, "Position deleted.")
}
