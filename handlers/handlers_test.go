// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/cliparse"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/media"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
	"github.com/danielhkuo/ballotbox/views"
)

// testEnv holds every handler wired to one test database
type testEnv struct {
	conn     *sql.DB
	cfg      cliparse.Config
	sessions *auth.Sessions
	store    *media.Store

	accounts   *AccountHandler
	voting     *VotingHandler
	candidates *CandidateHandler
	positions  *PositionHandler
	voters     *VoterHandler
	admin      *AdminHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig(t)

	renderer, err := views.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	store, err := media.NewStore(cfg.MediaDir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	svc := election.NewService(conn, election.WithPasswordCost(cfg.PasswordCost))
	sessions := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)

	return &testEnv{
		conn:       conn,
		cfg:        cfg,
		sessions:   sessions,
		store:      store,
		accounts:   NewAccountHandler(svc, renderer, sessions),
		voting:     NewVotingHandler(svc, renderer, cfg.SessionSecret),
		candidates: NewCandidateHandler(svc, renderer, store, cfg.MaxUploadBytes),
		positions:  NewPositionHandler(svc, renderer),
		voters:     NewVoterHandler(svc, renderer, store, cfg.MaxUploadBytes),
		admin:      NewAdminHandler(svc, renderer),
	}
}

func (e *testEnv) voter(t *testing.T, username string) auth.Identity {
	t.Helper()
	return auth.IdentityFor(testutil.CreateTestUser(t, e.conn, username, false))
}

func (e *testEnv) adminUser(t *testing.T) auth.Identity {
	t.Helper()
	return auth.IdentityFor(testutil.CreateTestUser(t, e.conn, "root", true))
}

// withID sets the {id} path value the router would normally fill in
func withID(req *http.Request, id string) *http.Request {
	req.SetPathValue("id", id)
	return req
}

// flashOf returns the flash message a response left for the next page
func flashOf(w *httptest.ResponseRecorder) *models.Flash {
	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.FlashCookie {
			req.AddCookie(c)
		}
	}
	return middleware.PopFlash(httptest.NewRecorder(), req)
}

func assertFlash(t *testing.T, w *httptest.ResponseRecorder, kind, message string) {
	t.Helper()
	flash := flashOf(w)
	if flash == nil {
		t.Errorf("Expected %s flash %q, got none", kind, message)
		return
	}
	if flash.Kind != kind || flash.Message != message {
		t.Errorf("flash = %s %q, want %s %q", flash.Kind, flash.Message, kind, message)
	}
}
