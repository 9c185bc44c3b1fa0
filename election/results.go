// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/danielhkuo/ballotbox/models"
)

// Results tallies every position from the vote records. Candidates appear
// if they are Approved or hold votes; Pending and Rejected candidates
// without votes are left out.
func (s *Service) Results(ctx context.Context) ([]models.PositionResult, error) {
	var gen int64
	cacheable := false
	if s.cache != nil {
		results, g, ok, err := s.cache.Load(ctx)
		if err != nil {
			slog.Warn("failed to load cached results", "error", err)
		} else if ok {
			return results, nil
		} else {
			gen, cacheable = g, true
		}
	}

	results, err := s.tally(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Store(ctx, gen, results); err != nil {
			slog.Warn("failed to cache results", "error", err)
		}
	}

	return results, nil
}

func (s *Service) tally(ctx context.Context) ([]models.PositionResult, error) {
	positions, err := s.ListPositions(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+candidateColumns+`, COUNT(v.id)`+candidateFrom+`
		LEFT JOIN votes v ON v.candidate_id = c.id AND v.position_id = c.position_id
		WHERE c.position_id IS NOT NULL
		GROUP BY c.id, c.first_name, c.last_name, c.email, c.manifesto, c.photo, c.status,
			c.position_id, p.description, c.applied_at
		HAVING c.status = $1 OR COUNT(v.id) > 0
		ORDER BY c.position_id, c.id
	`, models.StatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query tallies: %w", err)
	}
	defer rows.Close()

	byPosition := make(map[int64][]models.CandidateTally)
	for rows.Next() {
		var votes int
		c, err := scanCandidate(rows, &votes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tally: %w", err)
		}
		byPosition[*c.PositionID] = append(byPosition[*c.PositionID], models.CandidateTally{Candidate: *c, Votes: votes})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tallies: %w", err)
	}

	results := make([]models.PositionResult, 0, len(positions))
	for _, p := range positions {
		tallies := RankTallies(byPosition[p.ID], p.MaximumWinners)
		total := 0
		for _, t := range tallies {
			total += t.Votes
		}
		results = append(results, models.PositionResult{Position: p, Candidates: tallies, TotalVotes: total})
	}

	return results, nil
}

// RankTallies orders tallies by votes, highest first, keeping the input
// order between equal counts. Equal counts share a rank. The first
// maxWinners Approved candidates with at least one vote are winners.
func RankTallies(tallies []models.CandidateTally, maxWinners int) []models.CandidateTally {
	ranked := make([]models.CandidateTally, len(tallies))
	copy(ranked, tallies)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})

	winners := 0
	for i := range ranked {
		if i > 0 && ranked[i].Votes == ranked[i-1].Votes {
			ranked[i].Rank = ranked[i-1].Rank
		} else {
			ranked[i].Rank = i + 1
		}

		ranked[i].Winner = false
		if winners < maxWinners && ranked[i].Votes > 0 && ranked[i].Candidate.Status == models.StatusApproved {
			ranked[i].Winner = true
			winners++
		}
	}

	return ranked
}

// Dashboard computes the admin overview. Counts come from the same vote
// records as Results.
func (s *Service) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.TotalPositions, `SELECT COUNT(*) FROM positions`, nil},
		{&stats.TotalCandidates, `SELECT COUNT(*) FROM candidates`, nil},
		{&stats.TotalVoters, `SELECT COUNT(*) FROM users WHERE is_admin = $1`, []any{false}},
		{&stats.VotersVoted, `SELECT COUNT(DISTINCT user_id) FROM votes`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to count dashboard totals: %w", err)
		}
	}

	results, err := s.Results(ctx)
	if err != nil {
		return nil, err
	}
	stats.Results = results

	return &stats, nil
}
