// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package election

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/ballotbox/models"
)

// ResultCache holds the last computed results between writes.
//
// Invalidate starts a new generation. Load reports the generation current
// when it ran and Store drops results whose generation is no longer
// current, so a tally that overlaps a write is never cached.
type ResultCache interface {
	Load(ctx context.Context) ([]models.PositionResult, int64, bool, error)
	Store(ctx context.Context, gen int64, results []models.PositionResult) error
	Invalidate(ctx context.Context) error
}

// Service implements the election workflow over the database.
type Service struct {
	db           *sql.DB
	cache        ResultCache
	passwordCost int
	now          func() time.Time
}

type Option func(*Service)

// WithCache enables result caching.
func WithCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithPasswordCost sets the bcrypt cost for new passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:           db,
		passwordCost: bcrypt.DefaultCost,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) timestamp() time.Time {
	return s.now().UTC()
}

// invalidateResults drops cached results after a write that can change them.
// A failure is logged; the cache entry expires on its own.
func (s *Service) invalidateResults(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.Warn("failed to invalidate results cache", "error", err)
	}
}

// rollback is deferred after BeginTx; it is a no-op once the tx is committed.
func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		slog.Warn("failed to roll back transaction", "error", err)
	}
}

func clean(s string) string {
	return strings.TrimSpace(s)
}
