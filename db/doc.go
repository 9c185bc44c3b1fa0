// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Two database types are supported, sqlite (modernc.org/sqlite, the default)
and postgres (github.com/lib/pq):

	conn, err := db.Open(db.DialectSQLite, "file:ballotbox.db")

Sqlite connections get foreign keys and a busy timeout through DSN pragmas
and are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn, db.DialectSQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - users: accounts, is_admin marks the elevated role
  - positions: electable offices, description unique
  - candidates: applications with status Pending/Approved/Rejected
  - voters: voter profiles, one per account, voter_code unique
  - votes: one row per (user, position)

# Relationships

	positions 1──* candidates
	users     1──1 voters
	users     1──* votes
	candidates 1──* votes
	positions  1──* votes

All foreign keys use ON DELETE CASCADE, so deleting a position removes its
candidates and every vote that referenced them.

# Constraint Violations

IsUniqueViolation recognizes duplicate-key errors from both drivers. Callers
use it to turn an insert that lost a race into a domain error instead of
checking first.
*/
package db
