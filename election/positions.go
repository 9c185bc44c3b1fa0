// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/danielhkuo/ballotbox/db"
	"github.com/danielhkuo/ballotbox/models"
)

const maxPositionDescriptionLen = 100

// PositionInput is the position add/edit form.
type PositionInput struct {
	Description    string
	MaximumWinners int
}

func (in PositionInput) validate() (PositionInput, error) {
	in.Description = clean(in.Description)
	if in.Description == "" {
		return in, newError(ErrValidation, "Description is required")
	}
	if utf8.RuneCountInString(in.Description) > maxPositionDescriptionLen {
		return in, newError(ErrValidation, "Description must be at most %d characters", maxPositionDescriptionLen)
	}
	if in.MaximumWinners < 1 {
		return in, newError(ErrValidation, "Maximum winners must be at least 1")
	}
	return in, nil
}

func scanPosition(row rowScanner) (*models.Position, error) {
	var p models.Position
	if err := row.Scan(&p.ID, &p.Description, &p.MaximumWinners); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePosition adds an electable position. Descriptions are unique.
func (s *Service) CreatePosition(ctx context.Context, in PositionInput) (*models.Position, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	p := &models.Position{Description: in.Description, MaximumWinners: in.MaximumWinners}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO positions (description, maximum_winners) VALUES ($1, $2) RETURNING id
	`, p.Description, p.MaximumWinners).Scan(&p.ID)
	if db.IsUniqueViolation(err) {
		return nil, newError(ErrAlreadyExists, "Position %q already exists", p.Description)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert position: %w", err)
	}

	s.invalidateResults(ctx)
	slog.Info("position created", "position_id", p.ID)

	return p, nil
}

// UpdatePosition changes a position's description and winner count.
func (s *Service) UpdatePosition(ctx context.Context, id int64, in PositionInput) (*models.Position, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE positions SET description = $1, maximum_winners = $2 WHERE id = $3
	`, in.Description, in.MaximumWinners, id)
	if db.IsUniqueViolation(err) {
		return nil, newError(ErrAlreadyExists, "Position %q already exists", in.Description)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update position: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, newError(ErrNotFound, "Position not found")
	}

	s.invalidateResults(ctx)
	slog.Info("position updated", "position_id", id)

	return &models.Position{ID: id, Description: in.Description, MaximumWinners: in.MaximumWinners}, nil
}

// DeletePosition removes a position. Its candidates and their votes cascade.
func (s *Service) DeletePosition(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM positions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return newError(ErrNotFound, "Position not found")
	}

	s.invalidateResults(ctx)
	slog.Info("position deleted", "position_id", id)

	return nil
}

// GetPosition loads a position by id.
func (s *Service) GetPosition(ctx context.Context, id int64) (*models.Position, error) {
	p, err := scanPosition(s.db.QueryRowContext(ctx, `
		SELECT id, description, maximum_winners FROM positions WHERE id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, newError(ErrNotFound, "Position not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query position: %w", err)
	}
	return p, nil
}

// ListPositions returns every position in creation order.
func (s *Service) ListPositions(ctx context.Context) ([]models.Position, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, description, maximum_winners FROM positions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	positions := []models.Position{}
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate positions: %w", err)
	}

	return positions, nil
}
