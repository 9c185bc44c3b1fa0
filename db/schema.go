// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB, dialect string) error {
	idColumn, err := idColumnFor(dialect)
	if err != nil {
		return err
	}

	_, err = db.Exec(fmt.Sprintf(schema, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func idColumnFor(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "INTEGER PRIMARY KEY AUTOINCREMENT", nil
	case DialectPostgres:
		return "BIGSERIAL PRIMARY KEY", nil
	default:
		return "", fmt.Errorf("unsupported database type %q", dialect)
	}
}

// Column types below are accepted by both sqlite and postgres; only the
// surrogate key differs (%[1]s).
const schema = `
-- Accounts
CREATE TABLE IF NOT EXISTS users (
    id %[1]s,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    is_admin BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Positions
CREATE TABLE IF NOT EXISTS positions (
    id %[1]s,
    description TEXT NOT NULL UNIQUE CHECK (description <> ''),
    maximum_winners INTEGER NOT NULL DEFAULT 1 CHECK (maximum_winners >= 1)
);

-- Candidates
CREATE TABLE IF NOT EXISTS candidates (
    id %[1]s,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT '',
    manifesto TEXT NOT NULL DEFAULT '',
    photo TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'Pending' CHECK (status IN ('Pending', 'Approved', 'Rejected')),
    position_id BIGINT REFERENCES positions(id) ON DELETE CASCADE,
    applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_candidates_position_id ON candidates(position_id);
CREATE INDEX IF NOT EXISTS idx_candidates_status ON candidates(status);

-- Voter profiles
CREATE TABLE IF NOT EXISTS voters (
    id %[1]s,
    user_id BIGINT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
    first_name TEXT NOT NULL DEFAULT '',
    last_name TEXT NOT NULL DEFAULT '',
    photo TEXT NOT NULL DEFAULT '',
    voter_code TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Votes
CREATE TABLE IF NOT EXISTS votes (
    id %[1]s,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    candidate_id BIGINT NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
    position_id BIGINT NOT NULL REFERENCES positions(id) ON DELETE CASCADE,
    ip_hash TEXT,
    user_agent TEXT,
    cast_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (user_id, position_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_candidate_id ON votes(candidate_id);
CREATE INDEX IF NOT EXISTS idx_votes_position_id ON votes(position_id);
`
