// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import "github.com/danielhkuo/ballotbox/models"

// Page data for templates that need more than one model value

type LoginData struct {
	Role     string
	Username string
}

type RegisterData struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Role      string
}

type VoterDashboardData struct {
	Voter          *models.Voter
	PositionsTotal int
	PositionsVoted int
}

type CandidateFormData struct {
	Positions []models.Position
	Candidate models.Candidate
}

type PositionFormData struct {
	Position models.Position
}

type VoterFormData struct {
	Voter    models.Voter
	Username string
	Email    string
}

type VoteSuccessData struct {
	RedirectURL     string
	RedirectSeconds int
}

type ErrorData struct {
	Status  int
	Message string
}
