// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP request handlers for Ballotbox.

# Handler Types

Each handler is a struct holding the election service and the page
renderer, plus whatever else its area needs:

  - AccountHandler: home, login, registration, logout, dashboard redirect
  - VotingHandler: ballot, vote casting, results, voter dashboard
  - CandidateHandler: applications, approval, edits, photo uploads
  - PositionHandler: position CRUD
  - VoterHandler: voter CRUD
  - AdminHandler: admin dashboard and the votes list

Handler methods take the caller's identity as a parameter:

	func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request, ident auth.Identity)

The router resolves the identity through middleware.Gate. Tests call the
methods directly with whatever identity they need.

# Errors

Domain errors from the election service become a flash message and a
redirect back to the form or list the request came from. A missing record
on a page view renders a 404 page. Store failures are logged with the
request id and render a 500 page.

# Voting

	POST /vote/ candidate=<id>

Each vote stores a keyed hash of the client IP and the user agent. A second
vote in the same position is refused with "You have already voted for this
position."
*/
package handlers
