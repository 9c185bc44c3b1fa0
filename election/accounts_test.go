// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/models"
	"github.com/danielhkuo/ballotbox/testutil"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *sql.DB) {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	opts = append([]Option{WithPasswordCost(bcrypt.MinCost)}, opts...)
	return NewService(conn, opts...), conn
}

func registerInput(username string) RegisterInput {
	return RegisterInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Username:  username,
		Email:     username + "@example.com",
		Password1: "s3cret-pass",
		Password2: "s3cret-pass",
	}
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		username  string
		role      string
		wantAdmin bool
	}{
		{"default role", "ada", "", false},
		{"voter role", "grace", models.RoleVoter, false},
		{"admin role", "root", models.RoleAdmin, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput(tt.username)
			in.Role = tt.role

			user, err := svc.Register(ctx, in)
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if user.ID == 0 {
				t.Error("Expected user id to be set")
			}
			if user.IsAdmin != tt.wantAdmin {
				t.Errorf("IsAdmin = %v, want %v", user.IsAdmin, tt.wantAdmin)
			}
			if user.PasswordHash == in.Password1 {
				t.Error("Password stored in plain text")
			}

			stored, err := svc.GetUser(ctx, user.ID)
			if err != nil {
				t.Fatalf("GetUser() error = %v", err)
			}
			if stored.Username != tt.username || stored.IsAdmin != tt.wantAdmin {
				t.Errorf("GetUser() = %+v", stored)
			}
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name    string
		mutate  func(*RegisterInput)
		wantMsg string
	}{
		{"passwords differ", func(in *RegisterInput) { in.Password2 = "other" }, "Passwords do not match"},
		{"blank username", func(in *RegisterInput) { in.Username = "   " }, "Username is required"},
		{"blank email", func(in *RegisterInput) { in.Email = "" }, "Email is required"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "Enter a valid email address"},
		{"blank password", func(in *RegisterInput) { in.Password1, in.Password2 = "", "" }, "Password is required"},
		{"long password", func(in *RegisterInput) {
			in.Password1 = strings.Repeat("p", 73)
			in.Password2 = in.Password1
		}, "Password must be at most 72 bytes"},
		{"unknown role", func(in *RegisterInput) { in.Role = "superuser" }, `Unknown role "superuser"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput("ada")
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Register() error = %v, want ErrValidation", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Register() message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerInput("ada")); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []struct {
		name    string
		in      RegisterInput
		wantMsg string
	}{
		{"same username", func() RegisterInput {
			in := registerInput("ada")
			in.Email = "other@example.com"
			return in
		}(), "Username already taken"},
		{"same email", func() RegisterInput {
			in := registerInput("ada2")
			in.Email = "ada@example.com"
			return in
		}(), "Email already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.in)
			if !errors.Is(err, ErrAlreadyExists) {
				t.Fatalf("Register() error = %v, want ErrAlreadyExists", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Register() message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}

	if n := testutil.CountRows(t, conn, "users", ""); n != 1 {
		t.Errorf("Expected 1 account, got %d", n)
	}
}

func TestAuthenticate(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	testutil.CreateTestUser(t, conn, "alice", false)

	if _, err := svc.Authenticate(ctx, "alice", testutil.TestPassword); err != nil {
		t.Errorf("Authenticate() error = %v", err)
	}

	for _, tc := range []struct{ user, pass string }{
		{"alice", "wrong"},
		{"nobody", testutil.TestPassword},
	} {
		_, err := svc.Authenticate(ctx, tc.user, tc.pass)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate(%q) error = %v, want ErrInvalidCredentials", tc.user, err)
		}
	}
}

func TestLogin(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	voter := testutil.CreateTestUser(t, conn, "alice", false)
	testutil.CreateTestUser(t, conn, "root", true)

	tests := []struct {
		name     string
		username string
		password string
		role     string
		wantErr  error
		wantMsg  string
	}{
		{"voter at voter login", "alice", testutil.TestPassword, models.RoleVoter, nil, ""},
		{"admin at admin login", "root", testutil.TestPassword, models.RoleAdmin, nil, ""},
		{"admin at voter login", "root", testutil.TestPassword, models.RoleVoter, ErrAuthorizationDenied, "Admins must login from the admin page."},
		{"voter at admin login", "alice", testutil.TestPassword, models.RoleAdmin, ErrInvalidCredentials, "Invalid admin credentials"},
		{"wrong password admin", "root", "nope", models.RoleAdmin, ErrInvalidCredentials, "Invalid admin credentials"},
		{"wrong password voter", "alice", "nope", models.RoleVoter, ErrInvalidCredentials, "Invalid username or password"},
		{"unknown entry point", "alice", testutil.TestPassword, "guest", ErrValidation, `Unknown role "guest"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Login(ctx, tt.username, tt.password, tt.role)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Login() error = %v", err)
				}
				if user.Username != tt.username {
					t.Errorf("Login() user = %q, want %q", user.Username, tt.username)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Login() message = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}

	// The voter's first login created their profile
	profile, err := svc.GetVoterByUser(ctx, voter.ID)
	if err != nil {
		t.Fatalf("GetVoterByUser() error = %v", err)
	}
	if profile.VoterCode != "VOTER-0001" {
		t.Errorf("VoterCode = %q, want VOTER-0001", profile.VoterCode)
	}
	if n := testutil.CountRows(t, conn, "voters", ""); n != 1 {
		t.Errorf("Expected only the voter to get a profile, got %d profiles", n)
	}
}

func TestCreateAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateAdmin(context.Background(), "root", "root@example.com", "admin-pass")
	if err != nil {
		t.Fatalf("CreateAdmin() error = %v", err)
	}
	if !user.IsAdmin {
		t.Error("CreateAdmin() did not elevate the account")
	}
}

func TestGetUserNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.GetUser(context.Background(), 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser() error = %v, want ErrNotFound", err)
	}
}
