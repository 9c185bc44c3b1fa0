// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"strings"
	"time"
)

// CandidateStatus is the approval state of a candidate application.
type CandidateStatus string

// Candidate status constants
const (
	StatusPending  CandidateStatus = "Pending"
	StatusApproved CandidateStatus = "Approved"
	StatusRejected CandidateStatus = "Rejected"
)

// Valid reports whether s is one of the known statuses.
func (s CandidateStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Account roles
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// VoterIDPrefix starts every generated voter identifier.
const VoterIDPrefix = "VOTER-"

// Flash kinds
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Domain types

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Position struct {
	ID             int64  `json:"id"`
	Description    string `json:"description"`
	MaximumWinners int    `json:"maximum_winners"`
}

type Candidate struct {
	ID                  int64           `json:"id"`
	FirstName           string          `json:"first_name"`
	LastName            string          `json:"last_name"`
	Email               string          `json:"email"`
	Manifesto           string          `json:"manifesto"`
	Photo               string          `json:"photo,omitempty"`
	Status              CandidateStatus `json:"status"`
	PositionID          *int64          `json:"position_id,omitempty"`
	PositionDescription string          `json:"position,omitempty"`
	AppliedAt           time.Time       `json:"applied_at"`
}

// FullName joins first and last name.
func (c Candidate) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Voter struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Photo     string    `json:"photo,omitempty"`
	VoterCode string    `json:"voter_code"`
	CreatedAt time.Time `json:"created_at"`
}

// FullName joins first and last name.
func (v Voter) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

type Vote struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	CandidateID int64     `json:"candidate_id"`
	PositionID  int64     `json:"position_id"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
	CastAt      time.Time `json:"cast_at"`
}

// VoteRecord is a vote joined with the names it references, for listings.
type VoteRecord struct {
	ID                  int64     `json:"id"`
	Username            string    `json:"username"`
	CandidateName       string    `json:"candidate"`
	PositionDescription string    `json:"position"`
	CastAt              time.Time `json:"cast_at"`
}

// Result types

type CandidateTally struct {
	Candidate Candidate `json:"candidate"`
	Votes     int       `json:"votes"`
	Rank      int       `json:"rank"` // 1-indexed ranking
	Winner    bool      `json:"winner"`
}

type PositionResult struct {
	Position   Position         `json:"position"`
	Candidates []CandidateTally `json:"candidates"`
	TotalVotes int              `json:"total_votes"`
}

type BallotPosition struct {
	Position   Position    `json:"position"`
	Candidates []Candidate `json:"candidates"`
	// VotedFor is the candidate the current voter chose, if any
	VotedFor *int64 `json:"voted_for,omitempty"`
}

type DashboardStats struct {
	TotalPositions  int              `json:"total_positions"`
	TotalCandidates int              `json:"total_candidates"`
	TotalVoters     int              `json:"total_voters"`
	VotersVoted     int              `json:"voters_voted"`
	Results         []PositionResult `json:"results"`
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}
