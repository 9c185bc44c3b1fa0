// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

const maxUsernameLen = 150

// RegisterInput is the account registration form.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password1 string
	Password2 string
	Role      string // voter (default) or admin
}

const userColumns = `id, username, email, first_name, last_name, password_hash, is_admin, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// queryRower is a *sql.DB or a *sql.Tx
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Register creates an account. The role selects whether it is elevated.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	user, err := s.newUser(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := insertUser(ctx, s.db, user); err != nil {
		return nil, err
	}

	slog.Info("account registered", "user_id", user.ID, "admin", user.IsAdmin)

	return user, nil
}

// newUser validates a registration and hashes its password. The account
// is not stored.
func (s *Service) newUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := clean(in.Username)
	email := clean(in.Email)

	isAdmin := false
	switch in.Role {
	case "", models.RoleVoter:
	case models.RoleAdmin:
		isAdmin = true
	default:
		return nil, newError(ErrValidation, "Unknown role %q", in.Role)
	}

	if username == "" {
		return nil, newError(ErrValidation, "Username is required")
	}
	if len(username) > maxUsernameLen {
		return nil, newError(ErrValidation, "Username must be at most %d characters", maxUsernameLen)
	}
	if email == "" {
		return nil, newError(ErrValidation, "Email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, newError(ErrValidation, "Enter a valid email address")
	}
	if in.Password1 == "" {
		return nil, newError(ErrValidation, "Password is required")
	}
	if in.Password1 != in.Password2 {
		return nil, newError(ErrValidation, "Passwords do not match")
	}
	if len(in.Password1) > auth.MaxPasswordBytes {
		return nil, newError(ErrValidation, "Password must be at most %d bytes", auth.MaxPasswordBytes)
	}

	var taken bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, newError(ErrAlreadyExists, "Username already taken")
	}

	err = s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&taken)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, newError(ErrAlreadyExists, "Email already registered")
	}

	hash, err := auth.HashPassword(in.Password1, s.passwordCost)
	if err != nil {
		return nil, err
	}

	return &models.User{
		Username:     username,
		Email:        email,
		FirstName:    clean(in.FirstName),
		LastName:     clean(in.LastName),
		PasswordHash: hash,
		IsAdmin:      isAdmin,
		CreatedAt:    s.timestamp(),
	}, nil
}

// insertUser stores a new account and sets its id. The unique constraints
// catch a registration that raced past the checks in newUser.
func insertUser(ctx context.Context, q queryRower, user *models.User) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO users (username, email, first_name, last_name, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, user.Username, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.IsAdmin, user.CreatedAt).Scan(&user.ID)
	if db.IsUniqueViolation(err) {
		return newError(ErrAlreadyExists, "Username or email already registered")
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// Authenticate checks a username and password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE username = $1
	`, clean(username)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrInvalidCredentials, "Invalid username or password")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, newError(ErrInvalidCredentials, "Invalid username or password")
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}

	return user, nil
}

// Login authenticates through the entry point for role. Admin accounts must
// use the admin entry point and ordinary accounts the voter one. A voter's
// profile is created on their first login.
func (s *Service) Login(ctx context.Context, username, password, role string) (*models.User, error) {
	user, err := s.Authenticate(ctx, username, password)

	switch role {
	case models.RoleAdmin:
		if err != nil || !user.IsAdmin {
			if err != nil && !IsDomainError(err) {
				return nil, err
			}
			return nil, newError(ErrInvalidCredentials, "Invalid admin credentials")
		}
	case models.RoleVoter:
		if err != nil {
			return nil, err
		}
		if user.IsAdmin {
			return nil, newError(ErrAuthorizationDenied, "Admins must login from the admin page.")
		}
		if _, err := s.EnsureVoter(ctx, user); err != nil {
			return nil, err
		}
	default:
		return nil, newError(ErrValidation, "Unknown role %q", role)
	}

	slog.Info("account logged in", "user_id", user.ID, "role", role)

	return user, nil
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "Account not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// CreateAdmin creates an elevated account without the confirmation field.
func (s *Service) CreateAdmin(ctx context.Context, username, email, password string) (*models.User, error) {
	return s.Register(ctx, RegisterInput{
		Username:  username,
		Email:     email,
		Password1: password,
		Password2: password,
		Role:      models.RoleAdmin,
	})
}
