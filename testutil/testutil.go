// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

// TestPassword is the password of every account created by CreateTestUser
const TestPassword = "password123"

// SetupTestDB creates a fresh sqlite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DialectSQLite, "file:"+filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig(t *testing.T) cliparse.Config {
	t.Helper()

	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     "file:test.db",
		DatabaseType:    db.DialectSQLite,
		SessionSecret:   "test-session-secret",
		SessionTTL:      time.Hour,
		ResultsCacheTTL: time.Minute,
		MediaDir:        t.TempDir(),
		MaxUploadBytes:  1 << 20,
		PasswordCost:    bcrypt.MinCost,
		LogFormat:       "text",
		LogLevel:        "error",
	}
}

// CreateTestUser creates an account with TestPassword
func CreateTestUser(t *testing.T, conn *sql.DB, username string, isAdmin bool) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    strings.ToUpper(username[:1]) + username[1:],
		LastName:     "Tester",
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now().UTC(),
	}

	err = conn.QueryRow(`
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsAdmin, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestVoter creates a voter profile with the given code for an account
func CreateTestVoter(t *testing.T, conn *sql.DB, user *models.User, voterCode string) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO voters (user_id, first_name, last_name, voter_code, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, user.ID, user.FirstName, user.LastName, voterCode, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return id
}

// CreateTestPosition creates a position and returns its ID
func CreateTestPosition(t *testing.T, conn *sql.DB, description string, maxWinners int) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO positions (description, maximum_winners) VALUES ($1, $2) RETURNING id
	`, description, maxWinners).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test position: %v", err)
	}

	return id
}

// CreateTestCandidate creates a candidate for a position and returns its ID
func CreateTestCandidate(t *testing.T, conn *sql.DB, positionID int64, firstName string, status models.CandidateStatus) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO candidates (first_name, last_name, email, manifesto, status, position_id, applied_at)
		VALUES ($1, 'Candidate', $2, 'A test manifesto', $3, $4, $5)
		RETURNING id
	`, firstName, strings.ToLower(firstName)+"@example.com", status, positionID, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}

	return id
}

// CreateTestVote records a vote directly, bypassing the checks CastVote makes
func CreateTestVote(t *testing.T, conn *sql.DB, userID, candidateID, positionID int64) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO votes (user_id, candidate_id, position_id, cast_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, candidateID, positionID, time.Now().UTC()).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	return id
}

// CountRows counts rows in a table matching an optional WHERE clause
func CountRows(t *testing.T, conn *sql.DB, table, where string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if where != "" {
		query += " WHERE " + where
	}

	var n int
	if err := conn.QueryRow(query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request. A non-nil form is sent
// URL-encoded as the body.
func MakeRequest(method, path string, form url.Values, headers map[string]string) *http.Request {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect checks for a 302 to the expected location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Errorf("Expected status %d, got %d. Body: %s", http.StatusFound, w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("Expected redirect to %q, got %q", location, got)
	}
}

// AssertBodyContains checks that the response body contains every substring
func AssertBodyContains(t *testing.T, w *httptest.ResponseRecorder, want ...string) {
	t.Helper()
	body := w.Body.String()
	for _, s := range want {
		if !strings.Contains(body, s) {
			t.Errorf("Expected body to contain %q. Body: %s", s, body)
		}
	}
}
