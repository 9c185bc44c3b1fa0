// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/media"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

// uploadError is a rejected upload, reported to the user as is
type uploadError struct {
	msg string
}

func (e *uploadError) Error() string { return e.msg }

// photoUploads handles forms that may carry a "photo" file
type photoUploads struct {
	media     *media.Store
	maxUpload int64
}

// parseForm reads a multipart or urlencoded form, bounded by maxUpload.
func (p *photoUploads) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, p.maxUpload)
	err := r.ParseMultipartForm(p.maxUpload)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &uploadError{msg: fmt.Sprintf("Photo must be smaller than %d bytes.", p.maxUpload)}
	}
	return &uploadError{msg: "Invalid form submission."}
}

// savePhoto stores the uploaded photo under dir and returns its path.
// Without an upload it returns "". The caller owns the stored photo and
// must remove it if the write it belongs to fails.
func (p *photoUploads) savePhoto(r *http.Request, dir string) (string, error) {
	_, fh, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if err != nil {
		return "", &uploadError{msg: "Could not read the uploaded photo."}
	}

	rel, err := p.media.Save(dir, fh)
	if errors.Is(err, media.ErrUnsupportedType) {
		return "", &uploadError{msg: "Photo must be a JPEG, PNG, GIF or WebP image."}
	}
	return rel, err
}

// removePhoto deletes a stored photo, logging failures
func (p *photoUploads) removePhoto(rel string) {
	if rel == "" {
		return
	}
	if err := p.media.Remove(rel); err != nil {
		slog.Warn("failed to remove photo", "error", err, "photo", rel)
	}
}

// replaced removes the old photo once a write that uploaded a new one
// has gone through
func (p *photoUploads) replaced(old, uploaded string) {
	if uploaded != "" && old != uploaded {
		p.removePhoto(old)
	}
}

// uploadFailed answers a form whose upload could not be read or stored
func (b *base) uploadFailed(w http.ResponseWriter, r *http.Request, ident auth.Identity, err error, redirectTo string) {
	var ue *uploadError
	if errors.As(err, &ue) {
		middleware.Redirect(w, r, redirectTo, models.FlashError, ue.msg)
		return
	}
	b.serverError(w, r, ident, "failed to store photo", err)
}
