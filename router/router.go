// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/handlers"
	"github.com/danielhkuo/ballotbox/media"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/views"
)

// NewRouter wires every page to its handler behind the access gate. A nil
// cache leaves results uncached.
func NewRouter(db *sql.DB, cfg cliparse.Config, cache election.ResultCache) (*http.ServeMux, error) {
	renderer, err := views.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	enforcer, err := auth.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("failed to build access policy: %w", err)
	}
	store, err := media.NewStore(cfg.MediaDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open media store: %w", err)
	}

	opts := []election.Option{election.WithPasswordCost(cfg.PasswordCost)}
	if cache != nil {
		opts = append(opts, election.WithCache(cache))
	}
	svc := election.NewService(db, opts...)
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	gate := middleware.NewGate(sessions, enforcer)

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(svc, renderer, sessions)
	votingHandler := handlers.NewVotingHandler(svc, renderer, cfg.SessionSecret)
	candidateHandler := handlers.NewCandidateHandler(svc, renderer, store, cfg.MaxUploadBytes)
	positionHandler := handlers.NewPositionHandler(svc, renderer)
	voterHandler := handlers.NewVoterHandler(svc, renderer, store, cfg.MaxUploadBytes)
	adminHandler := handlers.NewAdminHandler(svc, renderer)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, middleware.WithLogging(h))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	mux.Handle("GET "+media.URLPrefix, store.Handler())

	// Accounts (public)
	handle("GET /{$}", gate.Public(accountHandler.Home))
	handle("GET /voter_login/", gate.Public(accountHandler.VoterLoginForm))
	handle("POST /voter_login/", gate.Public(accountHandler.VoterLogin))
	handle("GET /admin_login/", gate.Public(accountHandler.AdminLoginForm))
	handle("POST /admin_login/", gate.Public(accountHandler.AdminLogin))
	handle("GET /register/", gate.Public(accountHandler.RegisterForm))
	handle("POST /register/", gate.Public(accountHandler.Register))
	handle("GET /logout/", gate.Public(accountHandler.Logout))
	handle("POST /logout/", gate.Public(accountHandler.Logout))
	handle("GET /dashboard/", gate.Authenticated(accountHandler.Dashboard))

	// Dashboards
	handle("GET /admin_dashboard/", gate.Require(auth.ObjAdminDashboard, auth.ActRead, adminHandler.Dashboard))
	handle("GET /voter_dashboard/", gate.Require(auth.ObjVoterDashboard, auth.ActRead, votingHandler.VoterDashboard))

	// Voting
	handle("GET /ballot_position/", gate.Public(votingHandler.Ballot))
	handle("GET /vote/", gate.Require(auth.ObjVote, auth.ActCast, votingHandler.VoteForm))
	handle("POST /vote/", gate.Require(auth.ObjVote, auth.ActCast, votingHandler.Vote))
	handle("GET /vote_success/", gate.Require(auth.ObjBallot, auth.ActRead, votingHandler.VoteSuccess))
	handle("GET /result/", gate.Require(auth.ObjResult, auth.ActRead, votingHandler.Results))

	// Candidates
	handle("GET /candidate_apply/", gate.Public(candidateHandler.ApplyForm))
	handle("POST /candidate_apply/", gate.Public(candidateHandler.Apply))
	handle("GET /candidate_platform/{id}/platform/", gate.Public(candidateHandler.Platform))
	handle("GET /candidates_admin/", gate.Require(auth.ObjCandidate, auth.ActRead, candidateHandler.List))
	handle("GET /candidate_detail/{id}/", gate.Require(auth.ObjCandidate, auth.ActRead, candidateHandler.Detail))
	handle("POST /approve_candidate/{id}/", gate.Require(auth.ObjCandidate, auth.ActWrite, candidateHandler.Approve))
	handle("POST /reject_candidate/{id}/", gate.Require(auth.ObjCandidate, auth.ActWrite, candidateHandler.Reject))
	handle("POST /delete_candidate/{id}/", gate.Require(auth.ObjCandidate, auth.ActWrite, candidateHandler.Delete))
	handle("GET /edit_candidates/{id}/edit/", gate.Require(auth.ObjCandidate, auth.ActWrite, candidateHandler.EditForm))
	handle("POST /edit_candidates/{id}/edit/", gate.Require(auth.ObjCandidate, auth.ActWrite, candidateHandler.Edit))

	// Positions
	handle("GET /positions/", gate.Require(auth.ObjPosition, auth.ActRead, positionHandler.List))
	handle("GET /positions/add/", gate.Require(auth.ObjPosition, auth.ActWrite, positionHandler.AddForm))
	handle("POST /positions/add/", gate.Require(auth.ObjPosition, auth.ActWrite, positionHandler.Add))
	handle("GET /positions/edit/{id}/", gate.Require(auth.ObjPosition, auth.ActWrite, positionHandler.EditForm))
	handle("POST /positions/edit/{id}/", gate.Require(auth.ObjPosition, auth.ActWrite, positionHandler.Edit))
	handle("POST /positions/delete/{id}/", gate.Require(auth.ObjPosition, auth.ActWrite, positionHandler.Delete))

	// Voters
	handle("GET /voters/", gate.Require(auth.ObjVoter, auth.ActRead, voterHandler.List))
	handle("GET /voters/add/", gate.Require(auth.ObjVoter, auth.ActWrite, voterHandler.AddForm))
	handle("POST /voters/add/", gate.Require(auth.ObjVoter, auth.ActWrite, voterHandler.Add))
	handle("GET /voters/edit/{id}/", gate.Require(auth.ObjVoter, auth.ActWrite, voterHandler.EditForm))
	handle("POST /voters/edit/{id}/", gate.Require(auth.ObjVoter, auth.ActWrite, voterHandler.Edit))
	handle("POST /delete-voter/{id}/", gate.Require(auth.ObjVoter, auth.ActWrite, voterHandler.Delete))

	handle("GET /votes/", gate.Require(auth.ObjVote, auth.ActRead, adminHandler.Votes))

	// Anything else
	handle("GET /", gate.Public(accountHandler.NotFound))

	return mux, nil
}
