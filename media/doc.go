// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package media stores uploaded candidate and voter photos on local disk and serves
// them under /media/. Files get random UUID names; only image types are
// accepted, checked by extension and by sniffing the content.
package media
