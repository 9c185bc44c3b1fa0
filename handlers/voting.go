// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/views"
)

const (
	ballotPath = "/ballot_position/"

	// voteSuccessSeconds is how long the success page waits before going home
	voteSuccessSeconds = 30
)

type VotingHandler struct {
	base
	ipSalt string
}

func NewVotingHandler(svc *election.Service, v *views.Renderer, ipSalt string) *VotingHandler {
	return &VotingHandler{base: base{svc: svc, views: v}, ipSalt: ipSalt}
}

// Ballot handles GET /ballot_position/
func (h *VotingHandler) Ballot(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	ballot, err := h.svc.Ballot(r.Context(), ident.UserID)
	if err != nil {
		h.serverError(w, r, ident, "failed to load ballot", err)
		return
	}
	h.render(w, r, ident, http.StatusOK, "ballot", "Ballot", ballot)
}

// VoteForm handles GET /vote/; voting happens from the ballot page
func (h *VotingHandler) VoteForm(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	http.Redirect(w, r, ballotPath, http.StatusFound)
}

// Vote handles POST /vote/
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	if err := r.ParseForm(); err != nil {
		middleware.Redirect(w, r, ballotPath, models.FlashError, "Invalid form submission.")
		return
	}

	candidateID, err := strconv.ParseInt(strings.TrimSpace(r.PostFormValue("candidate")), 10, 64)
	if err != nil {
		middleware.Redirect(w, r, ballotPath, models.FlashError, "Invalid candidate selection.")
		return
	}

	meta := election.VoteMeta{
		IPHash:    auth.HashIP(middleware.GetClientIP(r), h.ipSalt),
		UserAgent: r.UserAgent(),
	}
	_, err = h.svc.CastVote(r.Context(), ident, candidateID, meta)
	if errors.Is(err, election.ErrAuthorizationDenied) && !ident.IsAdmin() {
		// The account was deleted while the session was still valid
		middleware.ClearSession(w)
		middleware.Redirect(w, r, middleware.VoterLoginPath, models.FlashError, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, ident, err, ballotPath, "failed to cast vote")
		return
	}

	middleware.Redirect(w, r, "/vote_success/", models.FlashSuccess, "Your vote has been submitted successfully!")
}

// VoteSuccess handles GET /vote_success/
func (h *VotingHandler) VoteSuccess(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	h.render(w, r, ident, http.StatusOK, "vote_success", "Ballot submitted", views.VoteSuccessData{
		RedirectURL:     "/",
		RedirectSeconds: voteSuccessSeconds,
	})
}

// Results handles GET /result/
func (h *VotingHandler) Results(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	results, err := h.svc.Results(r.Context())
	if err != nil {
		h.serverError(w, r, ident, "failed to compute results", err)
		return
	}
	h.render(w, r, ident, http.StatusOK, "result", "Results", results)
}

// VoterDashboard handles GET /voter_dashboard/. A voter profile is created
// here when the account does not have one yet.
func (h *VotingHandler) VoterDashboard(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	ctx := r.Context()

	voter, err := h.svc.GetVoterByUser(ctx, ident.UserID)
	if errors.Is(err, election.ErrNotFound) {
		var user *models.User
		user, err = h.svc.GetUser(ctx, ident.UserID)
		if errors.Is(err, election.ErrNotFound) {
			// The account was deleted while the session was still valid
			middleware.ClearSession(w)
			middleware.Redirect(w, r, middleware.VoterLoginPath, models.FlashError, "Your account no longer exists.")
			return
		}
		if err == nil {
			voter, err = h.svc.EnsureVoter(ctx, user)
		}
	}
	if err != nil {
		h.serverError(w, r, ident, "failed to load voter profile", err)
		return
	}

	ballot, err := h.svc.Ballot(ctx, ident.UserID)
	if err != nil {
		h.serverError(w, r, ident, "failed to load ballot", err)
		return
	}
	data := views.VoterDashboardData{Voter: voter, PositionsTotal: len(ballot)}
	for _, bp := range ballot {
		if bp.VotedFor != nil {
			data.PositionsVoted++
		}
	}

	h.render(w, r, ident, http.StatusOK, "voter_dashboard", "Voter card", data)
}
