// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package views renders the server-side HTML pages.

Templates are embedded from templates/*.html. Every page defines a
"content" block that layout.html wraps with the navigation and the flash
message:

	renderer, err := views.NewRenderer()
	err = renderer.Render(w, http.StatusOK, "result", views.Page{
		Title:    "Results",
		Identity: ident,
		Data:     results,
	})

# Template Functions

  - ago: relative time ("3 minutes ago")
  - comma: thousands separators for counts
  - ordinal: rank labels ("1st", "2nd")
  - media: public URL of a stored photo
  - percent: integer share of a total, 0 when the total is 0
  - isID: compares an optional id with an id
*/
package views
