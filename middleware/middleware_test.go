// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
)

func TestWithLogging(t *testing.T) {
	// Create a simple handler that returns OK
	handlerCalled := false
	var seenID string
	testHandler := func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		seenID = RequestID(r.Context())
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}

	// Wrap with logging middleware
	wrappedHandler := WithLogging(testHandler)

	req := httptest.NewRequest("GET", "/test-path", nil)
	w := httptest.NewRecorder()

	wrappedHandler(w, req)

	if !handlerCalled {
		t.Error("Expected handler to be called")
	}
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "success" {
		t.Errorf("Expected body 'success', got '%s'", w.Body.String())
	}
	if seenID == "" {
		t.Error("Expected a request id in the context")
	}
	if got := w.Header().Get("X-Request-ID"); got != seenID {
		t.Errorf("X-Request-ID = %q, want %q", got, seenID)
	}
}

func TestWithLogging_KeepsIncomingRequestID(t *testing.T) {
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()

	handler(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestWithLogging_PreservesResponse(t *testing.T) {
	// Logging must not interfere with response codes
	testCases := []struct {
		name       string
		statusCode int
		body       string
	}{
		{"OK", http.StatusOK, "ok"},
		{"Found", http.StatusFound, ""},
		{"BadRequest", http.StatusBadRequest, "bad request"},
		{"NotFound", http.StatusNotFound, "not found"},
		{"InternalError", http.StatusInternalServerError, "error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				w.Write([]byte(tc.body))
			})

			req := httptest.NewRequest("POST", "/vote/", nil)
			w := httptest.NewRecorder()

			handler(w, req)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if w.Body.String() != tc.body {
				t.Errorf("Expected body %q, got %q", tc.body, w.Body.String())
			}
		})
	}
}

// carryCookies copies Set-Cookie headers from a response onto a new request
func carryCookies(w *httptest.ResponseRecorder, req *http.Request) {
	for _, c := range w.Result().Cookies() {
		req.AddCookie(c)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	w := httptest.NewRecorder()
	SetFlash(w, models.FlashSuccess, "Your vote has been recorded.")

	req := httptest.NewRequest("GET", "/vote_success/", nil)
	carryCookies(w, req)

	w2 := httptest.NewRecorder()
	flash := PopFlash(w2, req)
	if flash == nil {
		t.Fatal("Expected a flash message")
	}
	if flash.Kind != models.FlashSuccess || flash.Message != "Your vote has been recorded." {
		t.Errorf("PopFlash() = %+v", flash)
	}

	// Popping clears the cookie
	cleared := false
	for _, c := range w2.Result().Cookies() {
		if c.Name == FlashCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected PopFlash to expire the flash cookie")
	}
}

func TestPopFlashRejectsBadCookies(t *testing.T) {
	testCases := []struct {
		name  string
		value string
	}{
		{"not base64", "%%%"},
		{"no separator", "aGVsbG8"},        // "hello"
		{"unknown kind", "d2FybgpoZWxsbw"}, // "warn\nhello"
		{"empty message", "c3VjY2Vzcwo"},   // "success\n"
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.AddCookie(&http.Cookie{Name: FlashCookie, Value: tc.value})
			if flash := PopFlash(httptest.NewRecorder(), req); flash != nil {
				t.Errorf("PopFlash() = %+v, want nil", flash)
			}
		})
	}

	if flash := PopFlash(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil)); flash != nil {
		t.Errorf("PopFlash() without cookie = %+v, want nil", flash)
	}
}

func TestRedirect(t *testing.T) {
	req := httptest.NewRequest("POST", "/vote/", nil)
	w := httptest.NewRecorder()

	Redirect(w, req, "/ballot_position/", models.FlashError, "You have already voted for this position.")

	if w.Code != http.StatusFound {
		t.Errorf("Expected status 302, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/ballot_position/" {
		t.Errorf("Location = %q", loc)
	}

	next := httptest.NewRequest("GET", "/ballot_position/", nil)
	carryCookies(w, next)
	flash := PopFlash(httptest.NewRecorder(), next)
	if flash == nil || flash.Kind != models.FlashError {
		t.Errorf("Expected an error flash, got %+v", flash)
	}

	// No message, no flash cookie
	w = httptest.NewRecorder()
	Redirect(w, req, "/", "", "")
	if len(w.Result().Cookies()) != 0 {
		t.Error("Expected no cookie for a silent redirect")
	}
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"proxy chain uses the first hop", "198.51.100.7 , 10.1.1.1", "", "10.0.0.2:443", "198.51.100.7"},
		{"forwarded beats real ip", "198.51.100.7", "198.51.100.99", "10.0.0.2:443", "198.51.100.7"},
		{"real ip beats the socket", "", "198.51.100.99", "10.0.0.2:443", "198.51.100.99"},
		{"socket address", "", "", "172.16.4.20:61000", "172.16.4.20"},
		{"bare socket address", "", "", "172.16.4.20", "172.16.4.20"},
		{"bracketed ipv6 socket", "", "", "[fe80::2]:8080", "fe80::2"},
		{"ipv6 forwarded", "2001:db8::42", "", "[::1]:8080", "2001:db8::42"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/vote/", nil)
			req.RemoteAddr = tc.remote
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			if ip := GetClientIP(req); ip != tc.want {
				t.Errorf("GetClientIP() = %q, want %q", ip, tc.want)
			}
		})
	}
}
