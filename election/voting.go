// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

// VoteMeta is request provenance stored with a vote. Neither field is ever shown.
type VoteMeta struct {
	IPHash    string
	UserAgent string
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CastVote records the identity's vote for a candidate.
//
// Checks run in order: the account must still exist
// (ErrAuthorizationDenied), the candidate must exist (ErrNotFound), must be an
// Approved candidate with a position (ErrValidation), and the account must
// not have voted for that position yet (ErrAlreadyVoted). The last check is
// the (user, position) unique constraint on insert, so two concurrent votes
// cannot both succeed.
func (s *Service) CastVote(ctx context.Context, ident auth.Identity, candidateID int64, meta VoteMeta) (*models.Vote, error) {
	if !ident.IsAuthenticated() {
		return nil, newError(ErrAuthorizationDenied, "Please log in to vote.")
	}
	if ident.IsAdmin() {
		return nil, newError(ErrAuthorizationDenied, "Admins cannot vote.")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	// The session can outlive an account deleted by an admin
	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, ident.UserID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check account: %w", err)
	}
	if !exists {
		return nil, newError(ErrAuthorizationDenied, "Your account no longer exists.")
	}

	var status models.CandidateStatus
	var positionID sql.NullInt64
	err = tx.QueryRowContext(ctx, `
		SELECT status, position_id FROM candidates WHERE id = $1
	`, candidateID).Scan(&status, &positionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "Invalid candidate selection.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query candidate: %w", err)
	}

	if status != models.StatusApproved || !positionID.Valid {
		return nil, newError(ErrValidation, "Candidate is not on the ballot.")
	}

	vote := &models.Vote{
		UserID:      ident.UserID,
		CandidateID: candidateID,
		PositionID:  positionID.Int64,
		IPHash:      nullable(meta.IPHash),
		UserAgent:   nullable(meta.UserAgent),
		CastAt:      s.timestamp(),
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO votes (user_id, candidate_id, position_id, ip_hash, user_agent, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, vote.UserID, vote.CandidateID, vote.PositionID, vote.IPHash, vote.UserAgent, vote.CastAt).Scan(&vote.ID)
	if db.IsUniqueViolation(err) {
		return nil, newError(ErrAlreadyVoted, "You have already voted for this position.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert vote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit vote: %w", err)
	}

	s.invalidateResults(ctx)
	slog.Info("vote cast", "vote_id", vote.ID, "position_id", vote.PositionID, "candidate_id", vote.CandidateID)

	return vote, nil
}

// votedCandidates maps position id to the candidate the account voted for.
func (s *Service) votedCandidates(ctx context.Context, userID int64) (map[int64]int64, error) {
	voted := make(map[int64]int64)
	if userID == 0 {
		return voted, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT position_id, candidate_id FROM votes WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var positionID, candidateID int64
		if err := rows.Scan(&positionID, &candidateID); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		voted[positionID] = candidateID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return voted, nil
}

// ListVotes returns every vote with the names it references, grouped by position.
func (s *Service) ListVotes(ctx context.Context) ([]models.VoteRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT v.id, u.username, c.first_name, c.last_name, p.description, v.cast_at
		FROM votes v
		JOIN users u ON u.id = v.user_id
		JOIN candidates c ON c.id = v.candidate_id
		JOIN positions p ON p.id = v.position_id
		ORDER BY p.description, v.cast_at, v.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer rows.Close()

	votes := []models.VoteRecord{}
	for rows.Next() {
		var rec models.VoteRecord
		var c models.Candidate
		if err := rows.Scan(&rec.ID, &rec.Username, &c.FirstName, &c.LastName, &rec.PositionDescription, &rec.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		rec.CandidateName = c.FullName()
		votes = append(votes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}
