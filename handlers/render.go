// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/views"
)

// base carries what every handler needs to answer a request
type base struct {
	svc   *election.Service
	views *views.Renderer
}

// render writes a page, taking the pending flash message with it
func (b *base) render(w http.ResponseWriter, r *http.Request, ident auth.Identity, status int, name, title string, data any) {
	page := views.Page{
		Title:    title,
		Identity: ident,
		Flash:    middleware.PopFlash(w, r),
		Data:     data,
	}
	if err := b.views.Render(w, status, name, page); err != nil {
		slog.Error("failed to render page", "error", err, "template", name, "request_id", middleware.RequestID(r.Context()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (b *base) serverError(w http.ResponseWriter, r *http.Request, ident auth.Identity, msg string, err error) {
	slog.Error(msg, "error", err, "path", r.URL.Path, "request_id", middleware.RequestID(r.Context()))
	b.render(w, r, ident, http.StatusInternalServerError, "error", "Error", views.ErrorData{
		Status:  http.StatusInternalServerError,
		Message: "Something went wrong. Please try again.",
	})
}

func (b *base) notFound(w http.ResponseWriter, r *http.Request, ident auth.Identity) {
	b.render(w, r, ident, http.StatusNotFound, "error", "Not found", views.ErrorData{
		Status:  http.StatusNotFound,
		Message: "Page not found.",
	})
}

// fail answers a failed service call. Domain errors become a flash message
// and a redirect; a missing record on a page view is a 404; anything else
// is logged and shown as a 500 page.
func (b *base) fail(w http.ResponseWriter, r *http.Request, ident auth.Identity, err error, redirectTo, logMsg string) {
	switch {
	case errors.Is(err, election.ErrNotFound) && r.Method == http.MethodGet:
		b.notFound(w, r, ident)
	case election.IsDomainError(err):
		middleware.Redirect(w, r, redirectTo, models.FlashError, err.Error())
	default:
		b.serverError(w, r, ident, logMsg, err)
	}
}

// pathID parses the {id} path segment
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// optionalID reads an optional id form field. A blank field is nil; a
// value that is not a number is 0, which never matches a record.
func optionalID(value string) *int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		id = 0
	}
	return &id
}

func loginPathFor(role string) string {
	if role == models.RoleAdmin {
		return "/admin_login/"
	}
	return middleware.VoterLoginPath
}

func dashboardFor(ident auth.Identity) string {
	switch {
	case ident.IsAdmin():
		return middleware.AdminDashboardPath
	case ident.IsAuthenticated():
		return middleware.VoterDashboardPath
	}
	return middleware.VoterLoginPath
}
