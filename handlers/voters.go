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
	votersPath    = "/voters/"
	addVoterPath  = "/voters/add/"
	voterPhotoDir = "voters"
)

type VoterHandler struct {
	base
	photoUploads
}

func NewVoterHandler(svc *election.Service, v *views.Renderer, store *media.Store, maxUpload int64) *VoterHandler {
	return &VoterHandler{
		base:         base{svc: svc, views: v},
		photoUploads: photoUploads{media: store, maxUpload: maxUpload},
	}
}

// List handles GET /voters/
func (h *VoterHandler) List(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	voters, err := h.svc.ListVoters(r.Context())
	if err != nil {
		h.serverError(w, r, ident, "failed to list voters", err)
		return
	}
	h.render(w, r, ident, http.StatusOK, "voters", "Voters", voters)
}

// AddForm handles GET /voters/add/
func (h *VoterHandler) AddForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.render(w, r, ident, http.StatusOK, "voter_form", "Add voter", views.VoterFormData{})
}

// Add handles POST /voters/add/. It creates the account and its profile,
// with an optional photo.
func (h *VoterHandler) Add(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	if err := h.parseForm(w, r); err != nil {
		h.uploadFailed(w, r, ident, err, addVoterPath)
		return
	}
	photo, err := h.savePhoto(r, voterPhotoDir)
	if err != nil {
		h.uploadFailed(w, r, ident, err, addVoterPath)
		return
	}

	voter, err := h.svc.AddVoter(r.Context(), election.AddVoterInput{
		FirstName: r.PostFormValue("firstname"),
		LastName:  r.PostFormValue("lastname"),
		Username:  r.PostFormValue("username"),
		Email:     r.PostFormValue("email"),
		Password:  r.PostFormValue("password"),
		Photo:     photo,
	})
	if err != nil {
		h.removePhoto(photo)
		h.fail(w, r, ident, err, addVoterPath, "failed to add voter")
		return
	}

	middleware.Redirect(w, r, votersPath, models.FlashSuccess, fmt.Sprintf("Voter %s added.", voter.VoterCode))
}

// EditForm handles GET /voters/edit/{id}/
func (h *VoterHandler) EditForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r, ident)
		return
	}

	voter, err := h.svc.GetVoter(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, votersPath, "failed to load voter")
		return
	}
	h.render(w, r, ident, http.StatusOK, "voter_form", "Edit voter", views.VoterFormData{
		Voter:    *voter,
		Username: voter.Username,
	})
}

// Edit handles POST /voters/edit/{id}/. A new photo replaces the stored one.
func (h *VoterHandler) Edit(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		middleware.Redirect(w, r, votersPath, models.FlashError, "Voter not found")
		return
	}
	editPath := fmt.Sprintf("/voters/edit/%d/", id)

	current, err := h.svc.GetVoter(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, votersPath, "failed to load voter")
		return
	}

	if err := h.parseForm(w, r); err != nil {
		h.uploadFailed(w, r, ident, err, editPath)
		return
	}
	photo, err := h.savePhoto(r, voterPhotoDir)
	if err != nil {
		h.uploadFailed(w, r, ident, err, editPath)
		return
	}

	voter, err := h.svc.UpdateVoter(r.Context(), id, election.VoterInput{
		FirstName: r.PostFormValue("firstname"),
		LastName:  r.PostFormValue("lastname"),
		Photo:     photo,
	})
	if err != nil {
		h.removePhoto(photo)
		h.fail(w, r, ident, err, editPath, "failed to update voter")
		return
	}
	h.replaced(current.Photo, photo)

	middleware.Redirect(w, r, votersPath, models.FlashSuccess, fmt.Sprintf("Voter %s updated.", voter.VoterCode))
}

// Delete handles POST /delete-voter/{id}/
func (h *VoterHandler) Delete(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	id, ok := pathID(r)
	if !ok {
		middleware.Redirect(w, r, votersPath, models.FlashError, "Voter not found")
		return
	}

	voter, err := h.svc.DeleteVoter(r.Context(), id)
	if err != nil {
		h.fail(w, r, ident, err, votersPath, "failed to delete voter")
		return
	}
	h.removePhoto(voter.Photo)

	middleware.Redirect(w, r, votersPath, models.FlashSuccess, "Voter deleted.")
}
