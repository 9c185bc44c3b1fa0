// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/media"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/views"
)

const (
	candidatesAdminPath = "/candidates_admin/"
	candidatePhotoDir   = "candidates"
)

type CandidateHandler struct {
	base
	photoUploads
}

func NewCandidateHandler(svc *election.Service, v *views.Renderer, store *media.Store, maxUpload int64) *CandidateHandler {
	return &CandidateHandler{
		base:         base{svc: svc, views: v},
		photoUploads: photoUploads{media: store, maxUpload: maxUpload},
	}
}

// readForm parses a candidate form and stores the uploaded photo, if any.
func (h *CandidateHandler) readForm(w http.ResponseWriter, r *http.Request) (election.CandidateInput, error) {
	if err := h.parseForm(w, r); err != nil {
		return election.CandidateInput{}, err
	}

	in := election.CandidateInput{
		FirstName:  r.PostFormValue("firstname"),
		LastName:   r.PostFormValue("lastname"),
		Email:      r.PostFormValue("email"),
		Manifesto:  r.PostFormValue("manifesto"),
		PositionID: optionalID(r.PostFormValue("position")),
	}

	var err error
	in.Photo, err = h.savePhoto(r, candidatePhotoDir)
	return in, err
}

// ApplyForm handles GET /candidate_apply/
func (h *CandidateHandler) ApplyForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	positions, err := h.svc.ListPositions(r.Context())
	if err != nil {
		h.serverError(w, r, ident, "failed to list positions", err)
		return
	}
	h.render(w, r, ident, http.StatusOK, "candidate_apply", "Apply", views.CandidateFormData{Positions: positions})
}

// Apply handles POST /candidate_apply/
func (h *CandidateHandler) Apply(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	in, err := h.readForm(w, r)
	if err != nil {
		h.uploadFailed(w, r, ident, err, "/candidate_apply/")
		return
	}

	if _, err := h.svc.Apply(r.Context(), in); err != nil {
		h.removePhoto(in.Photo)
		h.fail(w, r, ident, err, "/candidate_apply/", "failed to submit application")
		return
	}

	middleware.Redirect(w, r, "/", models.FlashSuccess, "Application submitted successfully!")
}

// List handles GET /candidates_admin/, optionally filtered by ?status=
func (h *CandidateHandler) List(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	status := models.CandidateStatus(r.URL.Query().Get("status"))
	candidates, err := h.svc.ListCandidates(r.Context(), status)
	if err != nil {
		h.fail(w, r, ident, err, candidatesAdminPath, "failed to list candidates")
		return
	}
	h.render(w, r, ident, http.StatusOK, "candidates_admin", "Candidates", candidates)
}

// Detail handles GET /candidate_detail/{id}/
func (h *CandidateHandler) Detail(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, ident)
		return
	}

	c, err := h.svc.GetCandidate(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, candidatesAdminPath, "failed to load candidate")
		return
	}
	h.render(w, r, ident, http.StatusOK, "candidate_detail", c.FullName(), c)
}

// Platform handles GET /candidate_platform/{id}/platform/. Only approved
// candidates are public; admins can preview the rest.
func (h *CandidateHandler) Platform(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, ident)
		return
	}

	c, err := h.svc.GetCandidate(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, ballotPath, "failed to load candidate")
		return
	}
	if c.Status != models.StatusApproved && !ident.IsAdmin() {
		h.notFound(w, r, ident)
		return
	}
	h.render(w, r, ident, http.StatusOK, "candidate_platform", c.FullName(), c)
}

// Approve handles POST /approve_candidate/{id}/
func (h *CandidateHandler) Approve(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.setStatus(w, r, ident, models.StatusApproved)
}

// Reject handles POST /reject_candidate/{id}/
func (h *CandidateHandler) Reject(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.setStatus(w, r, ident, models.StatusRejected)
}

func (h *CandidateHandler) setStatus(w http.ResponseWriter, r *http.Request, ident auth.Identity, status models.CandidateStatus) {
	id, ok := pathID(r)
	if !ok {
		middleware.Redirect(w, r, candidatesAdminPath, models.FlashError, "Candidate not found")
		return
	}

	c, err := h.svc.SetCandidateStatus(r.Context(), id, status)
	if err != nil {
		h.fail(w, r, ident, err, candidatesAdminPath, "failed to update candidate status")
		return
	}

	verb := "approved"
	if status == models.StatusRejected {
		verb = "rejected"
	}
	middleware.Redirect(w, r, candidatesAdminPath, models.FlashSuccess, fmt.Sprintf("%s has been %s!", c.FullName(), verb))
}

// Delete handles POST /delete_candidate/{id}/
func (h *CandidateHandler) Delete(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		middleware.Redirect(w, r, candidatesAdminPath, models.FlashError, "Candidate not found")
		return
	}

	c, err := h.svc.DeleteCandidate(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, candidatesAdminPath, "failed to delete candidate")
		return
	}
	h.removePhoto(c.Photo)

	middleware.Redirect(w, r, candidatesAdminPath, models.FlashSuccess, "Candidate deleted successfully.")
}

// EditForm handles GET /edit_candidates/{id}/edit/
func (h *CandidateHandler) EditForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, ident)
		return
	}

	c, err := h.svc.GetCandidate(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, candidatesAdminPath, "failed to load candidate")
		return
	}
	positions, err := h.svc.ListPositions(r.Context())
	if err != nil {
		h.serverError(w, r, ident, "failed to list positions", err)
		return
	}

	h.render(w, r, ident, http.StatusOK, "candidate_form", "Edit candidate", views.CandidateFormData{
		Positions: positions,
		Candidate: *c,
	})
}

// Edit handles POST /edit_candidates/{id}/edit/. A new photo replaces the
// stored one; without an upload the current photo stays.
func (h *CandidateHandler) Edit(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		middleware.Redirect(w, r, candidatesAdminPath, models.FlashError, "Candidate not found")
		return
	}
	editPath := fmt.Sprintf("/edit_candidates/%d/edit/", id)

	current, err := h.svc.GetCandidate(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, candidatesAdminPath, "failed to load candidate")
		return
	}

	in, err := h.readForm(w, r)
	if err != nil {
		h.uploadFailed(w, r, ident, err, editPath)
		return
	}

	updated, err := h.svc.UpdateCandidate(r.Context(), id, in)
	if err != nil {
		h.removePhoto(in.Photo)
		h.fail(w, r, ident, err, editPath, "failed to update candidate")
		return
	}
	h.replaced(current.Photo, in.Photo)

	middleware.Redirect(w, r, candidatesAdminPath, models.FlashSuccess, fmt.Sprintf("%s has been updated.", updated.FullName()))
}
