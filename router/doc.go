// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes for Ballotbox.

# Route Registration

NewRouter builds the templates, access policy, media store and election
service, then returns a configured http.ServeMux:

	mux, err := router.NewRouter(db, cfg, cache)

Every page route is wrapped in middleware.WithLogging and one of the gate
checks: Public, Authenticated or Require(object, action).

# Endpoints

Public:

	GET      /                                - Home
	GET      /health                          - Liveness check
	GET|POST /voter_login/, /admin_login/     - Log in
	GET|POST /register/                       - Create a voter account
	GET|POST /logout/                         - Log out
	GET      /ballot_position/                - Ballot
	GET|POST /candidate_apply/                - Candidate application
	GET      /candidate_platform/{id}/platform/
	GET      /media/...                       - Uploaded photos

Voters:

	GET      /voter_dashboard/
	GET|POST /vote/
	GET      /vote_success/
	GET      /result/                         - Also open to admins

Admins:

	GET      /admin_dashboard/
	GET      /candidates_admin/, /candidate_detail/{id}/
	POST     /approve_candidate/{id}/, /reject_candidate/{id}/, /delete_candidate/{id}/
	GET|POST /edit_candidates/{id}/edit/
	GET      /positions/
	GET|POST /positions/add/, /positions/edit/{id}/
	POST     /positions/delete/{id}/
	GET      /voters/
	GET|POST /voters/add/, /voters/edit/{id}/
	POST     /delete-voter/{id}/
	GET      /votes/

Any other GET renders the 404 page.
*/
package router
