// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /health", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). Each request gets a request_id, taken from X-Request-ID
when present and generated otherwise, echoed in the response header and
available through RequestID(ctx).

# Identity and Access

Gate resolves the caller's identity from the session cookie and passes it
to handlers explicitly:

	gate := middleware.NewGate(sessions, enforcer)
	mux.HandleFunc("GET /", gate.Public(h.Home))
	mux.HandleFunc("GET /dashboard/", gate.Authenticated(h.Dashboard))
	mux.HandleFunc("POST /positions/add/", gate.Require(auth.ObjPosition, auth.ActWrite, h.Create))

A denied request is redirected, never rejected with an error status:

  - anonymous callers go to /voter_login/
  - voters go to /voter_dashboard/ without a message
  - admins go to /admin_dashboard/ with a message

# Flash Messages and Redirects

	middleware.Redirect(w, r, "/ballot_position/", models.FlashError, err.Error())

The message travels in a short-lived cookie and is read once with PopFlash
when the next page renders.

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for the keyed IP hash stored with each vote.
*/
package middleware
