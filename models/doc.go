// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the domain and view types shared by every layer.

# Entities

  - User: an account; IsAdmin marks the elevated role
  - Position: an electable office with a maximum number of winners
  - Candidate: an application for a position, with an approval status
  - Voter: a voter profile linked to one account, with a generated voter ID
  - Vote: one account's choice of one candidate for one position

# View Types

  - VoteRecord: a vote joined with usernames and descriptions
  - CandidateTally, PositionResult: ranked results per position
  - BallotPosition: a position and its approved candidates
  - DashboardStats: admin aggregates
  - Flash: a one-shot page message

# Constants

Candidate statuses:

	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"

Roles:

	RoleVoter = "voter"
	RoleAdmin = "admin"

Voter IDs look like VOTER-0001 (VoterIDPrefix followed by a zero-padded number).
*/
package models
