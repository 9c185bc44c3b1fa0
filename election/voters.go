// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

// maxVoterCodeAttempts bounds retries when a concurrent insert took the next code.
const maxVoterCodeAttempts = 5

// NextVoterCode returns the identifier that follows last.
// An empty or unrecognized last code starts the sequence at VOTER-0001.
func NextVoterCode(last string) string {
	n := 0
	if digits, ok := strings.CutPrefix(last, models.VoterIDPrefix); ok {
		if parsed, err := strconv.Atoi(digits); err == nil && parsed > 0 {
			n = parsed
		}
	}
	return fmt.Sprintf("%s%04d", models.VoterIDPrefix, n+1)
}

const voterColumns = `v.id, v.user_id, u.username, v.first_name, v.last_name, v.photo, v.voter_code, v.created_at`

const voterFrom = ` FROM voters v JOIN users u ON u.id = v.user_id`

func scanVoter(row rowScanner) (*models.Voter, error) {
	var v models.Voter
	if err := row.Scan(&v.ID, &v.UserID, &v.Username, &v.FirstName, &v.LastName, &v.Photo, &v.VoterCode, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

// retryVoterCode runs insert again while it collides on a voter code, up to
// maxVoterCodeAttempts times. Other errors are returned at once.
func retryVoterCode(insert func() (*models.Voter, error)) (*models.Voter, error) {
	for attempt := 1; ; attempt++ {
		voter, err := insert()
		if err == nil || !db.IsUniqueViolation(err) {
			return voter, err
		}
		if attempt == maxVoterCodeAttempts {
			return nil, fmt.Errorf("failed to assign voter code after %d attempts: %w", attempt, err)
		}
		slog.Debug("voter code collision, retrying", "attempt", attempt)
	}
}

// CreateVoter creates the voter profile of an account and assigns the next
// voter code. An account has at most one profile.
func (s *Service) CreateVoter(ctx context.Context, userID int64, firstName, lastName string) (*models.Voter, error) {
	firstName, lastName = clean(firstName), clean(lastName)

	voter, err := retryVoterCode(func() (*models.Voter, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer rollback(tx)

		voter := &models.Voter{UserID: userID, FirstName: firstName, LastName: lastName}
		if err := s.insertVoter(ctx, tx, voter); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit voter: %w", err)
		}
		return voter, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("voter created", "voter_id", voter.ID, "user_id", userID, "voter_code", voter.VoterCode)
	return voter, nil
}

// insertVoter reads the latest code and inserts its successor for
// voter.UserID inside tx, filling in the generated fields. A unique
// violation is returned unwrapped for the caller to retry.
func (s *Service) insertVoter(ctx context.Context, tx *sql.Tx, voter *models.Voter) error {
	err := tx.QueryRowContext(ctx, `SELECT username FROM users WHERE id = $1`, voter.UserID).Scan(&voter.Username)
	if errors.Is(err, sql.ErrNoRows) {
		return newError(ErrNotFound, "Account not found")
	}
	if err != nil {
		return fmt.Errorf("failed to query user: %w", err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM voters WHERE user_id = $1)`, voter.UserID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check voter profile: %w", err)
	}
	if exists {
		return newError(ErrAlreadyExists, "This account already has a voter profile")
	}

	var last string
	err = tx.QueryRowContext(ctx, `SELECT voter_code FROM voters ORDER BY id DESC LIMIT 1`).Scan(&last)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to query latest voter code: %w", err)
	}

	voter.VoterCode = NextVoterCode(last)
	voter.CreatedAt = s.timestamp()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO voters (user_id, first_name, last_name, photo, voter_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, voter.UserID, voter.FirstName, voter.LastName, voter.Photo, voter.VoterCode, voter.CreatedAt).Scan(&voter.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to insert voter: %w", err)
	}
	return nil
}

// EnsureVoter returns the account's voter profile, creating it from the
// account names if it does not exist yet.
func (s *Service) EnsureVoter(ctx context.Context, user *models.User) (*models.Voter, error) {
	voter, err := s.GetVoterByUser(ctx, user.ID)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return voter, err
	}

	voter, err = s.CreateVoter(ctx, user.ID, user.FirstName, user.LastName)
	if errors.Is(err, ErrAlreadyExists) {
		// Another request created it first
		return s.GetVoterByUser(ctx, user.ID)
	}
	return voter, err
}

// AddVoterInput is the admin form for adding a voter with a new account.
type AddVoterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
	Photo     string // media-relative path, optional
}

// AddVoter creates an ordinary account and its voter profile. Both are
// written in one transaction, so a failed profile leaves no account behind.
func (s *Service) AddVoter(ctx context.Context, in AddVoterInput) (*models.Voter, error) {
	if clean(in.FirstName) == "" {
		return nil, newError(ErrValidation, "First name is required")
	}

	user, err := s.newUser(ctx, RegisterInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Email:     in.Email,
		Password1: in.Password,
		Password2: in.Password,
		Role:      models.RoleVoter,
	})
	if err != nil {
		return nil, err
	}

	voter, err := retryVoterCode(func() (*models.Voter, error) {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer rollback(tx)

		if err := insertUser(ctx, tx, user); err != nil {
			return nil, err
		}
		voter := &models.Voter{UserID: user.ID, FirstName: user.FirstName, LastName: user.LastName, Photo: in.Photo}
		if err := s.insertVoter(ctx, tx, voter); err != nil {
			return nil, err
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit voter: %w", err)
		}
		return voter, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("voter added", "voter_id", voter.ID, "user_id", user.ID, "voter_code", voter.VoterCode)
	return voter, nil
}

// GetVoter loads a voter profile by id.
func (s *Service) GetVoter(ctx context.Context, id int64) (*models.Voter, error) {
	voter, err := scanVoter(s.db.QueryRowContext(ctx, `SELECT `+voterColumns+voterFrom+` WHERE v.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "Voter not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}
	return voter, nil
}

// GetVoterByUser loads the voter profile of an account.
func (s *Service) GetVoterByUser(ctx context.Context, userID int64) (*models.Voter, error) {
	voter, err := scanVoter(s.db.QueryRowContext(ctx, `SELECT `+voterColumns+voterFrom+` WHERE v.user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "Voter not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}
	return voter, nil
}

// ListVoters returns every voter profile in creation order.
func (s *Service) ListVoters(ctx context.Context) ([]models.Voter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+voterColumns+voterFrom+` ORDER BY v.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query voters: %w", err)
	}
	defer rows.Close()

	voters := []models.Voter{}
	for rows.Next() {
		voter, err := scanVoter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, *voter)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voters: %w", err)
	}

	return voters, nil
}

// VoterInput is the admin form for editing a voter.
type VoterInput struct {
	FirstName string
	LastName  string
	Photo     string // media-relative path; empty keeps the current photo
}

// UpdateVoter changes a voter's names and photo. The voter code never changes.
func (s *Service) UpdateVoter(ctx context.Context, id int64, in VoterInput) (*models.Voter, error) {
	firstName, lastName := clean(in.FirstName), clean(in.LastName)
	if firstName == "" {
		return nil, newError(ErrValidation, "First name is required")
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE voters SET first_name = $1, last_name = $2, photo = COALESCE(NULLIF($3, ''), photo) WHERE id = $4
	`, firstName, lastName, in.Photo, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update voter: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, newError(ErrNotFound, "Voter not found")
	}

	return s.GetVoter(ctx, id)
}

// DeleteVoter removes a voter profile together with its account and
// returns the removed profile. The account's votes go with it.
func (s *Service) DeleteVoter(ctx context.Context, id int64) (*models.Voter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	voter, err := scanVoter(tx.QueryRowContext(ctx, `SELECT `+voterColumns+voterFrom+` WHERE v.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "Voter not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query voter: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, voter.UserID); err != nil {
		return nil, fmt.Errorf("failed to delete voter account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit voter deletion: %w", err)
	}

	s.invalidateResults(ctx)
	slog.Info("voter deleted", "voter_id", id, "user_id", voter.UserID)

	return voter, nil
}
