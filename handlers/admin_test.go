// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func TestPositionHandlers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t)

	w := httptest.NewRecorder()
	env.positions.AddForm(w, httptest.NewRequest("GET", "/positions/add/", nil), admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Add position", `action="/positions/add/"`)

	form := url.Values{"description": {"President"}, "maximum_winners": {"1"}}
	w = httptest.NewRecorder()
	env.positions.Add(w, testutil.MakeRequest("POST", "/positions/add/", form, nil), admin)
	testutil.AssertRedirect(t, w, "/positions/")
	assertFlash(t, w, models.FlashSuccess, `Position "President" added.`)

	// Duplicate description
	w = httptest.NewRecorder()
	env.positions.Add(w, testutil.MakeRequest("POST", "/positions/add/", form, nil), admin)
	testutil.AssertRedirect(t, w, "/positions/add/")
	assertFlash(t, w, models.FlashError, `Position "President" already exists`)

	// Non-numeric winners
	w = httptest.NewRecorder()
	env.positions.Add(w, testutil.MakeRequest("POST", "/positions/add/", url.Values{"description": {"Treasurer"}, "maximum_winners": {"many"}}, nil), admin)
	assertFlash(t, w, models.FlashError, "Maximum winners must be at least 1")

	var id int64
	if err := env.conn.QueryRow(`SELECT id FROM positions WHERE description = 'President'`).Scan(&id); err != nil {
		t.Fatalf("Failed to read position: %v", err)
	}
	idStr := strconv.FormatInt(id, 10)

	w = httptest.NewRecorder()
	env.positions.EditForm(w, withID(httptest.NewRequest("GET", "/positions/edit/"+idStr+"/", nil), idStr), admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Edit position", `value="President"`)

	w = httptest.NewRecorder()
	edit := url.Values{"description": {"Chair"}, "maximum_winners": {"2"}}
	env.positions.Edit(w, withID(testutil.MakeRequest("POST", "/positions/edit/"+idStr+"/", edit, nil), idStr), admin)
	testutil.AssertRedirect(t, w, "/positions/")
	if n := testutil.CountRows(t, env.conn, "positions", "description = 'Chair' AND maximum_winners = 2"); n != 1 {
		t.Error("Expected the position to be updated")
	}

	w = httptest.NewRecorder()
	env.positions.List(w, httptest.NewRequest("GET", "/positions/", nil), admin)
	testutil.AssertBodyContains(t, w, "Chair")

	w = httptest.NewRecorder()
	env.positions.Delete(w, withID(httptest.NewRequest("POST", "/positions/delete/"+idStr+"/", nil), idStr), admin)
	testutil.AssertRedirect(t, w, "/positions/")
	if n := testutil.CountRows(t, env.conn, "positions", ""); n != 0 {
		t.Errorf("Expected no positions, got %d", n)
	}

	w = httptest.NewRecorder()
	env.positions.Delete(w, withID(httptest.NewRequest("POST", "/positions/delete/"+idStr+"/", nil), idStr), admin)
	assertFlash(t, w, models.FlashError, "Position not found")

	w = httptest.NewRecorder()
	env.positions.EditForm(w, withID(httptest.NewRequest("GET", "/positions/edit/"+idStr+"/", nil), idStr), admin)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}

func TestVoterHandlers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t)

	form := url.Values{
		"firstname": {"Bob"},
		"lastname":  {"Builder"},
		"username":  {"bob"},
		"email":     {"bob@example.com"},
		"password":  {"can-we-fix-it"},
	}
	w := httptest.NewRecorder()
	env.voters.Add(w, testutil.MakeRequest("POST", "/voters/add/", form, nil), admin)
	testutil.AssertRedirect(t, w, "/voters/")
	assertFlash(t, w, models.FlashSuccess, "Voter VOTER-0001 added.")

	// Same username again
	w = httptest.NewRecorder()
	env.voters.Add(w, testutil.MakeRequest("POST", "/voters/add/", form, nil), admin)
	testutil.AssertRedirect(t, w, "/voters/add/")
	assertFlash(t, w, models.FlashError, "Username already taken")

	var id int64
	if err := env.conn.QueryRow(`SELECT id FROM voters WHERE voter_code = 'VOTER-0001'`).Scan(&id); err != nil {
		t.Fatalf("Failed to read voter: %v", err)
	}
	idStr := strconv.FormatInt(id, 10)

	w = httptest.NewRecorder()
	env.voters.List(w, httptest.NewRequest("GET", "/voters/", nil), admin)
	testutil.AssertBodyContains(t, w, "VOTER-0001", "Bob Builder", "bob")

	w = httptest.NewRecorder()
	env.voters.EditForm(w, withID(httptest.NewRequest("GET", "/voters/edit/"+idStr+"/", nil), idStr), admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Edit voter VOTER-0001")

	w = httptest.NewRecorder()
	edit := url.Values{"firstname": {"Robert"}, "lastname": {"Builder"}}
	env.voters.Edit(w, withID(testutil.MakeRequest("POST", "/voters/edit/"+idStr+"/", edit, nil), idStr), admin)
	testutil.AssertRedirect(t, w, "/voters/")
	if n := testutil.CountRows(t, env.conn, "voters", "first_name = 'Robert' AND voter_code = 'VOTER-0001'"); n != 1 {
		t.Error("Expected the name to change and the code to stay")
	}

	w = httptest.NewRecorder()
	env.voters.Edit(w, withID(testutil.MakeRequest("POST", "/voters/edit/"+idStr+"/", url.Values{"firstname": {" "}}, nil), idStr), admin)
	testutil.AssertRedirect(t, w, "/voters/edit/"+idStr+"/")
	assertFlash(t, w, models.FlashError, "First name is required")

	w = httptest.NewRecorder()
	env.voters.Delete(w, withID(httptest.NewRequest("POST", "/delete-voter/"+idStr+"/", nil), idStr), admin)
	testutil.AssertRedirect(t, w, "/voters/")
	if n := testutil.CountRows(t, env.conn, "users", "username = 'bob'"); n != 0 {
		t.Error("Expected the voter's account to be deleted")
	}
}

func TestVoterPhotoHandlers(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t)
	photoOf := func(code string) string {
		t.Helper()
		var photo string
		if err := env.conn.QueryRow(`SELECT photo FROM voters WHERE voter_code = $1`, code).Scan(&photo); err != nil {
			t.Fatalf("Failed to read photo: %v", err)
		}
		return photo
	}
	stored := func(rel string) bool {
		_, err := os.Stat(filepath.Join(env.cfg.MediaDir, filepath.FromSlash(rel)))
		return err == nil
	}

	fields := map[string]string{
		"firstname": "Bob",
		"username":  "bob",
		"email":     "bob@example.com",
		"password":  "can-we-fix-it",
	}
	w := httptest.NewRecorder()
	env.voters.Add(w, multipartRequest(t, "/voters/add/", fields, "bob.png", pngHeader), admin)
	testutil.AssertRedirect(t, w, "/voters/")
	first := photoOf("VOTER-0001")
	if filepath.Dir(filepath.FromSlash(first)) != "voters" || !stored(first) {
		t.Fatalf("Expected a stored photo under voters/, got %q", first)
	}

	w = httptest.NewRecorder()
	env.voters.List(w, httptest.NewRequest("GET", "/voters/", nil), admin)
	testutil.AssertBodyContains(t, w, `src="/media/`+first+`"`)

	// A rejected add keeps no photo behind
	w = httptest.NewRecorder()
	env.voters.Add(w, multipartRequest(t, "/voters/add/", fields, "again.png", pngHeader), admin)
	assertFlash(t, w, models.FlashError, "Username already taken")
	if matches, _ := filepath.Glob(filepath.Join(env.cfg.MediaDir, "voters", "*")); len(matches) != 1 {
		t.Errorf("Expected only the first photo stored, found %v", matches)
	}

	w = httptest.NewRecorder()
	env.voters.Add(w, multipartRequest(t, "/voters/add/", map[string]string{"firstname": "Eve"}, "eve.txt", []byte("hello")), admin)
	testutil.AssertRedirect(t, w, "/voters/add/")
	assertFlash(t, w, models.FlashError, "Photo must be a JPEG, PNG, GIF or WebP image.")

	var id int64
	if err := env.conn.QueryRow(`SELECT id FROM voters WHERE voter_code = 'VOTER-0001'`).Scan(&id); err != nil {
		t.Fatalf("Failed to read voter: %v", err)
	}
	idStr := strconv.FormatInt(id, 10)

	// Editing without an upload keeps the photo; a new upload replaces it
	w = httptest.NewRecorder()
	env.voters.Edit(w, withID(multipartRequest(t, "/", map[string]string{"firstname": "Robert"}, "", nil), idStr), admin)
	testutil.AssertRedirect(t, w, "/voters/")
	if got := photoOf("VOTER-0001"); got != first {
		t.Errorf("photo = %q, want %q kept", got, first)
	}

	w = httptest.NewRecorder()
	env.voters.Edit(w, withID(multipartRequest(t, "/", map[string]string{"firstname": "Robert"}, "new.png", pngHeader), idStr), admin)
	testutil.AssertRedirect(t, w, "/voters/")
	second := photoOf("VOTER-0001")
	if second == first || !stored(second) {
		t.Errorf("Expected a new stored photo, got %q", second)
	}
	if stored(first) {
		t.Error("Expected the old photo to be removed")
	}

	w = httptest.NewRecorder()
	env.voters.Delete(w, withID(httptest.NewRequest("POST", "/delete-voter/"+idStr+"/", nil), idStr), admin)
	testutil.AssertRedirect(t, w, "/voters/")
	if stored(second) {
		t.Error("Expected the photo to go with the voter")
	}
}

func TestAdminDashboardPage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t)
	president := testutil.CreateTestPosition(t, env.conn, "President", 1)
	ann := testutil.CreateTestCandidate(t, env.conn, president, "Ann", models.StatusApproved)
	testutil.CreateTestCandidate(t, env.conn, president, "Ben", models.StatusApproved)
	alice := env.voter(t, "alice")
	testutil.CreateTestVote(t, env.conn, alice.UserID, ann, president)

	w := httptest.NewRecorder()
	env.admin.Dashboard(w, httptest.NewRequest("GET", "/admin_dashboard/", nil), admin)

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Election overview", "President", "Ann Candidate", "Ben Candidate", "width: 100%")
}

func TestVotesPage(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminUser(t)
	president := testutil.CreateTestPosition(t, env.conn, "President", 1)
	ann := testutil.CreateTestCandidate(t, env.conn, president, "Ann", models.StatusApproved)
	alice := env.voter(t, "alice")
	testutil.CreateTestVote(t, env.conn, alice.UserID, ann, president)

	w := httptest.NewRecorder()
	env.admin.Votes(w, httptest.NewRequest("GET", "/votes/", nil), admin)

	testutil.AssertStatus(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "President", "alice", "Ann Candidate")
}
