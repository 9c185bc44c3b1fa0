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

	"github.com/danielhkuo/ballotbox/models"
)

// CandidateInput is the candidate application and edit form.
type CandidateInput struct {
	FirstName  string
	LastName   string
	Email      string
	Manifesto  string
	Photo      string // stored photo path; empty keeps the current one on edit
	PositionID *int64
}

func (in CandidateInput) validate() (CandidateInput, error) {
	in.FirstName = clean(in.FirstName)
	in.LastName = clean(in.LastName)
	in.Email = clean(in.Email)
	in.Manifesto = clean(in.Manifesto)

	if in.FirstName == "" {
		return in, newError(ErrValidation, "First name is required")
	}
	if in.Email != "" {
		if _, err := mail.ParseAddress(in.Email); err != nil {
			return in, newError(ErrValidation, "Enter a valid email address")
		}
	}
	return in, nil
}

const candidateColumns = `c.id, c.first_name, c.last_name, c.email, c.manifesto, c.photo, c.status,
	c.position_id, COALESCE(p.description, ''), c.applied_at`

const candidateFrom = ` FROM candidates c LEFT JOIN positions p ON p.id = c.position_id`

func scanCandidate(row rowScanner, extra ...any) (*models.Candidate, error) {
	var c models.Candidate
	var positionID sql.NullInt64
	dest := []any{&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Manifesto, &c.Photo, &c.Status,
		&positionID, &c.PositionDescription, &c.AppliedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if positionID.Valid {
		c.PositionID = &positionID.Int64
	}
	return &c, nil
}

func (s *Service) positionExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM positions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check position: %w", err)
	}
	return exists, nil
}

// Apply submits a candidate application. It starts Pending and must name
// an existing position.
func (s *Service) Apply(ctx context.Context, in CandidateInput) (*models.Candidate, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	if in.PositionID == nil {
		return nil, newError(ErrValidation, "Please select a valid position.")
	}
	ok, err := s.positionExists(ctx, *in.PositionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(ErrValidation, "Please select a valid position.")
	}

	c := &models.Candidate{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		Email:      in.Email,
		Manifesto:  in.Manifesto,
		Photo:      in.Photo,
		Status:     models.StatusPending,
		PositionID: in.PositionID,
		AppliedAt:  s.timestamp(),
	}

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO candidates (first_name, last_name, email, manifesto, photo, status, position_id, applied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, c.FirstName, c.LastName, c.Email, c.Manifesto, c.Photo, c.Status, *c.PositionID, c.AppliedAt).Scan(&c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert candidate: %w", err)
	}

	slog.Info("candidate applied", "candidate_id", c.ID, "position_id", *c.PositionID)

	return c, nil
}

// UpdateCandidate edits a candidate's details. Status is left alone.
// A nil position detaches the candidate from the ballot. A candidate with
// votes cannot leave the position those votes were cast for.
func (s *Service) UpdateCandidate(ctx context.Context, id int64, in CandidateInput) (*models.Candidate, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	current, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	var positionID sql.NullInt64
	if in.PositionID != nil {
		ok, err := s.positionExists(ctx, *in.PositionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, newError(ErrValidation, "Please select a valid position.")
		}
		positionID = sql.NullInt64{Int64: *in.PositionID, Valid: true}
	}

	photo := current.Photo
	if in.Photo != "" {
		photo = in.Photo
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	// Votes are never rewritten, so a candidate holding votes stays in
	// the position they were cast for.
	var stranded int
	if positionID.Valid {
		err = tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM votes WHERE candidate_id = $1 AND position_id <> $2
		`, id, positionID.Int64).Scan(&stranded)
	} else {
		err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE candidate_id = $1`, id).Scan(&stranded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count candidate votes: %w", err)
	}
	if stranded > 0 {
		return nil, newError(ErrValidation, "This candidate already has votes and cannot change position.")
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE candidates
		SET first_name = $1, last_name = $2, email = $3, manifesto = $4, photo = $5, position_id = $6
		WHERE id = $7
	`, in.FirstName, in.LastName, in.Email, in.Manifesto, photo, positionID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, newError(ErrNotFound, "Candidate not found")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit candidate: %w", err)
	}

	s.invalidateResults(ctx)
	slog.Info("candidate updated", "candidate_id", id)

	return s.GetCandidate(ctx, id)
}

// Approve puts a candidate on the ballot.
func (s *Service) Approve(ctx context.Context, id int64) (*models.Candidate, error) {
	return s.SetCandidateStatus(ctx, id, models.StatusApproved)
}

// Reject keeps a candidate off the ballot.
func (s *Service) Reject(ctx context.Context, id int64) (*models.Candidate, error) {
	return s.SetCandidateStatus(ctx, id, models.StatusRejected)
}

// SetCandidateStatus overwrites a candidate's status whatever it was before.
// Only Approved and Rejected can be set.
func (s *Service) SetCandidateStatus(ctx context.Context, id int64, status models.CandidateStatus) (*models.Candidate, error) {
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, newError(ErrValidation, "Status must be %s or %s", models.StatusApproved, models.StatusRejected)
	}

	res, err := s.db.ExecContext(ctx, `UPDATE candidates SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update candidate status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, newError(ErrNotFound, "Candidate not found")
	}

	s.invalidateResults(ctx)
	slog.Info("candidate status changed", "candidate_id", id, "status", status)

	return s.GetCandidate(ctx, id)
}

// DeleteCandidate removes a candidate and its votes, returning what was deleted.
func (s *Service) DeleteCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	c, err := s.GetCandidate(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete candidate: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, newError(ErrNotFound, "Candidate not found")
	}

	s.invalidateResults(ctx)
	slog.Info("candidate deleted", "candidate_id", id)

	return c, nil
}

// GetCandidate loads a candidate by id.
func (s *Service) GetCandidate(ctx context.Context, id int64) (*models.Candidate, error) {
	c, err := scanCandidate(s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+candidateFrom+` WHERE c.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "Candidate not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate: %w", err)
	}
	return c, nil
}

// ListCandidates returns candidates in application order. A non-empty
// status limits the list to that status.
func (s *Service) ListCandidates(ctx context.Context, status models.CandidateStatus) ([]models.Candidate, error) {
	query := `SELECT ` + candidateColumns + candidateFrom
	var args []any
	if status != "" {
		if !status.Valid() {
			return nil, newError(ErrValidation, "Unknown status %q", status)
		}
		query += ` WHERE c.status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY c.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}

	return candidates, nil
}

// Ballot lists every position with its Approved candidates, marking the
// candidate the account already voted for in each.
func (s *Service) Ballot(ctx context.Context, userID int64) ([]models.BallotPosition, error) {
	positions, err := s.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	approved, err := s.ListCandidates(ctx, models.StatusApproved)
	if err != nil {
		return nil, err
	}

	voted, err := s.votedCandidates(ctx, userID)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[int64][]models.Candidate)
	for _, c := range approved {
		if c.PositionID != nil {
			byPosition[*c.PositionID] = append(byPosition[*c.PositionID], c)
		}
	}

	ballot := make([]models.BallotPosition, 0, len(positions))
	for _, p := range positions {
		bp := models.BallotPosition{Position: p, Candidates: byPosition[p.ID]}
		if bp.Candidates == nil {
			bp.Candidates = []models.Candidate{}
		}
		if candidateID, ok := voted[p.ID]; ok {
			bp.VotedFor = &candidateID
		}
		ballot = append(ballot, bp)
	}

	return ballot, nil
}
